package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Markers records which stacks have been brought up. Each marker is a file
// named after the mode whose content is the rendered manifest path.
type Markers struct {
	dir string
}

// NewMarkers creates a new Markers instance rooted at dir
func NewMarkers(dir string) *Markers {
	return &Markers{
		dir: dir,
	}
}

// validateMarkerName ensures the marker name is safe and doesn't contain path traversal characters
func validateMarkerName(name string) error {
	if name == "" {
		return fmt.Errorf("marker name cannot be empty")
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("marker name cannot contain path separators: %s", name)
	}
	if name == ".." || name == "." {
		return fmt.Errorf("marker name cannot be '.' or '..': %s", name)
	}
	return nil
}

// Record writes a marker pointing at manifestPath (idempotent)
func (m *Markers) Record(name, manifestPath string) error {
	if err := validateMarkerName(name); err != nil {
		return err
	}

	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return fmt.Errorf("failed to create marker directory: %w", err)
	}

	markerPath := filepath.Join(m.dir, name)
	if err := os.WriteFile(markerPath, []byte(manifestPath+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to create marker file: %w", err)
	}

	return nil
}

// Lookup returns the manifest path recorded for name.
// Returns (path, exists, error) where error indicates a problem checking (e.g., permission denied)
func (m *Markers) Lookup(name string) (string, bool, error) {
	if err := validateMarkerName(name); err != nil {
		return "", false, err
	}

	content, err := os.ReadFile(filepath.Join(m.dir, name))
	if err == nil {
		return strings.TrimSpace(string(content)), true, nil
	}
	if os.IsNotExist(err) {
		return "", false, nil
	}
	return "", false, fmt.Errorf("failed to read marker: %w", err)
}

// Remove deletes a marker file
func (m *Markers) Remove(name string) error {
	if err := validateMarkerName(name); err != nil {
		return err
	}

	err := os.Remove(filepath.Join(m.dir, name))
	if os.IsNotExist(err) {
		return nil // Not an error if it doesn't exist
	}
	return err
}

// List returns all marker names in sorted order
func (m *Markers) List() ([]string, error) {
	if _, err := os.Stat(m.dir); os.IsNotExist(err) {
		return []string{}, nil
	}

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read marker directory: %w", err)
	}

	var markers []string
	for _, entry := range entries {
		if !entry.IsDir() {
			markers = append(markers, entry.Name())
		}
	}
	sort.Strings(markers)

	return markers, nil
}

// Dir returns the marker directory path
func (m *Markers) Dir() string {
	return m.dir
}
