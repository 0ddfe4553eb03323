// Package render compiles resolved bundles into the files the container
// runtime consumes: launcher scripts, .env files and compose manifests.
// Text generation is pure; Renderer writes the results into the stack layout.
package render

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/madara-alliance/madara-cli/internal/common"
	"github.com/madara-alliance/madara-cli/internal/config"
	"github.com/madara-alliance/madara-cli/internal/params"
	"github.com/madara-alliance/madara-cli/internal/secrets"
)

// Layout maps artifacts to paths under the stack directory
type Layout struct {
	Root string
}

// Dir returns the directory of a service (its image build context)
func (l Layout) Dir(service string) string {
	return filepath.Join(l.Root, service)
}

func (l Layout) SecretsDir() string {
	return filepath.Join(l.Dir("madara"), secrets.DirName)
}

func (l Layout) EnvFile() string {
	return filepath.Join(l.Dir("madara"), ".env")
}

func (l Layout) RunnerScript(mode params.Mode) string {
	return filepath.Join(l.Dir("madara"), RunnerScriptName(mode))
}

// Manifest returns the compose file of a mode. The app-chain manifest sits
// at the root because it references every service directory.
func (l Layout) Manifest(mode params.Mode) string {
	if mode == params.ModeAppChain {
		return filepath.Join(l.Root, "compose."+mode.String()+".yaml")
	}
	return filepath.Join(l.Dir("madara"), "compose."+mode.String()+".yaml")
}

// MarkersDir holds the launch markers
func (l Layout) MarkersDir() string {
	return filepath.Join(l.Root, ".launched")
}

// Artifacts lists the files written for one bundle
type Artifacts struct {
	Manifest       string
	LauncherScript string
	// EnvFile is empty for modes without one
	EnvFile    string
	Companions []string
}

// Files returns every written path
func (a Artifacts) Files() []string {
	files := []string{a.LauncherScript}
	if a.EnvFile != "" {
		files = append(files, a.EnvFile)
	}
	files = append(files, a.Companions...)
	return append(files, a.Manifest)
}

type file struct {
	path    string
	content string
	perm    os.FileMode
}

// Renderer writes the artifacts of resolved bundles
type Renderer struct {
	layout Layout
	global config.Global
	images Images
	logger *zap.Logger
}

// New creates a renderer. global supplies the wallet and chain values of the
// bootstrapper.
func New(layout Layout, global config.Global, images Images, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{layout: layout, global: global, images: images, logger: logger}
}

// Layout returns the stack layout
func (r *Renderer) Layout() Layout {
	return r.layout
}

// Images returns the image policy
func (r *Renderer) Images() Images {
	return r.images
}

// Render compiles every artifact of b before writing any of them
func (r *Renderer) Render(b params.Bundle) (Artifacts, error) {
	files, art, err := r.compile(b)
	if err != nil {
		return Artifacts{}, err
	}

	for _, f := range files {
		if err := writeFile(f.path, f.content, f.perm); err != nil {
			return Artifacts{}, err
		}
		r.logger.Debug("artifact written", zap.String("path", f.path), zap.Stringer("perm", f.perm))
	}
	return art, nil
}

func (r *Renderer) compile(b params.Bundle) ([]file, Artifacts, error) {
	args, err := Args(b)
	if err != nil {
		return nil, Artifacts{}, err
	}

	mode := b.Mode()
	art := Artifacts{
		Manifest:       r.layout.Manifest(mode),
		LauncherScript: r.layout.RunnerScript(mode),
	}
	files := []file{{art.LauncherScript, LauncherScript("madara", NeedsSecretGuard(mode), args), 0755}}

	env, ok, err := EnvFile(b)
	if err != nil {
		return nil, Artifacts{}, err
	}
	if ok {
		art.EnvFile = r.layout.EnvFile()
		files = append(files, file{art.EnvFile, env, 0644})
	}

	if ac, isAppChain := b.(*params.AppChainParams); isAppChain {
		companions, err := r.companions(ac)
		if err != nil {
			return nil, Artifacts{}, err
		}
		for _, c := range companions {
			art.Companions = append(art.Companions, c.path)
		}
		files = append(files, companions...)
	}

	manifest, err := Manifest(b, r.images)
	if err != nil {
		return nil, Artifacts{}, err
	}
	files = append(files, file{art.Manifest, manifest, 0644})

	return files, art, nil
}

func (r *Renderer) companions(ac *params.AppChainParams) ([]file, error) {
	pathfinder, err := PathfinderArgs(ac.Pathfinder)
	if err != nil {
		return nil, err
	}
	orchestrator, err := OrchestratorArgs(ac)
	if err != nil {
		return nil, err
	}
	bootstrapper, err := BootstrapperEnv(ac, r.global)
	if err != nil {
		return nil, err
	}
	orchestratorEnv, err := OrchestratorEnv(ac.Prover)
	if err != nil {
		return nil, err
	}

	return []file{
		{filepath.Join(r.layout.Dir("pathfinder"), "pathfinder-runner.sh"), LauncherScript("pathfinder", false, pathfinder), 0755},
		{filepath.Join(r.layout.Dir("orchestrator"), "orchestrator-runner.sh"), LauncherScript("orchestrator", false, orchestrator), 0755},
		{filepath.Join(r.layout.Dir("orchestrator"), ".env"), orchestratorEnv, 0600},
		{filepath.Join(r.layout.Dir("bootstrapper"), ".env"), bootstrapper, 0600},
	}, nil
}

// writeFile replaces path with content and enforces perm
func writeFile(path, content string, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return common.IOError(filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), perm); err != nil {
		return common.IOError(path, err)
	}
	// WriteFile keeps the mode of an existing file
	if err := os.Chmod(path, perm); err != nil {
		return common.IOError(path, fmt.Errorf("failed to set permissions: %w", err))
	}
	return nil
}
