// Package secrets keeps the madara RPC API secret on disk. The launcher script
// of modes that sync from L1 reads the endpoint from this file at start-up.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/madara-alliance/madara-cli/internal/common"
	"github.com/madara-alliance/madara-cli/internal/params"
	"github.com/madara-alliance/madara-cli/internal/resolve"
)

const (
	// DirName is the secrets directory inside the madara stack directory
	DirName = ".secrets"
	// FileName holds the L1 RPC endpoint
	FileName = "rpc_api.secret"
)

// SecretRecord is a secret file and the value written to it
type SecretRecord struct {
	Path  string
	Value string
	// Required is true when the launcher refuses to start without a value
	Required bool
}

// Manager ensures the secret required by a mode exists
type Manager struct {
	dir    string
	prompt resolve.Prompter
	logger *zap.Logger
}

// New creates a manager storing secrets in dir
func New(dir string, p resolve.Prompter, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{dir: dir, prompt: p, logger: logger}
}

// Path returns the RPC API secret file path
func (m *Manager) Path() string {
	return filepath.Join(m.dir, FileName)
}

// Read returns the persisted secret and whether the file exists
func (m *Manager) Read() (string, bool, error) {
	data, err := os.ReadFile(m.Path())
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, common.IOError(m.Path(), err)
	}
	return strings.TrimSpace(string(data)), true, nil
}

// Ensure makes sure the secret needed by b is on disk. An explicit value
// always overwrites; otherwise an existing file is kept (Devnet, Sequencer
// without endpoint) or confirmed (FullNode), and a missing one is created.
func (m *Manager) Ensure(b params.Bundle) (SecretRecord, error) {
	switch v := b.(type) {
	case *params.AppChainParams:
		// The L1 endpoint travels inline in the manifest.
		return SecretRecord{}, nil

	case *params.DevnetParams:
		return m.keepOrPlaceholder()

	case *params.SequencerParams:
		if endpoint, ok := params.Endpoint(v.L1Endpoint); ok {
			return m.store(endpoint, true)
		}
		return m.keepOrPlaceholder()

	case *params.FullNodeParams:
		if endpoint, ok := params.Endpoint(v.RPCAPIURL); ok {
			return m.store(endpoint, true)
		}
		return m.confirm()

	default:
		return SecretRecord{}, common.Unsupported(fmt.Sprintf("bundle %T", b))
	}
}

// keepOrPlaceholder writes an empty secret unless one already exists
func (m *Manager) keepOrPlaceholder() (SecretRecord, error) {
	current, exists, err := m.Read()
	if err != nil {
		return SecretRecord{}, err
	}
	if exists {
		m.logger.Debug("keeping existing secret", zap.String("path", m.Path()))
		return SecretRecord{Path: m.Path(), Value: current}, nil
	}
	return m.store("", false)
}

// confirm prompts for the endpoint, seeded with the persisted value
func (m *Manager) confirm() (SecretRecord, error) {
	current, _, err := m.Read()
	if err != nil {
		return SecretRecord{}, err
	}

	value, err := m.prompt.AskSecret("RPC API URL", current, common.ValidateURL)
	if err != nil {
		return SecretRecord{}, fmt.Errorf("failed to read RPC API URL: %w", err)
	}
	if value == "" {
		return SecretRecord{}, common.MissingField("rpc_api_url")
	}
	if err := common.ValidateURL(value); err != nil {
		return SecretRecord{}, common.ValidationError("rpc_api_url", err)
	}

	return m.store(value, true)
}

func (m *Manager) store(value string, required bool) (SecretRecord, error) {
	if err := os.MkdirAll(m.dir, 0700); err != nil {
		return SecretRecord{}, common.IOError(m.dir, err)
	}

	path := m.Path()
	if err := writeAtomic(path, []byte(value)); err != nil {
		return SecretRecord{}, common.IOError(path, err)
	}

	m.logger.Info("secret written", zap.String("path", path), zap.Bool("empty", value == ""))
	return SecretRecord{Path: path, Value: value, Required: required}, nil
}

// writeAtomic writes data with mode 0600 through a temp file and rename
func writeAtomic(path string, data []byte) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Chmod(0600); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
