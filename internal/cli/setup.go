// Package cli wires the launcher together: it loads configuration, detects
// unattended runs, builds the resolver, secrets manager, renderer and
// container runtime, and exposes the flows behind each command and the
// interactive menu.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/madara-alliance/madara-cli/internal/config"
	"github.com/madara-alliance/madara-cli/internal/deploy"
	"github.com/madara-alliance/madara-cli/internal/render"
	"github.com/madara-alliance/madara-cli/internal/resolve"
	"github.com/madara-alliance/madara-cli/internal/runtime"
	"github.com/madara-alliance/madara-cli/internal/secrets"
	"github.com/madara-alliance/madara-cli/internal/ui"
)

// DefaultStackDir holds the service build contexts and rendered artifacts
const DefaultStackDir = "deps"

// Options are the global command-line settings
type Options struct {
	StackDir   string
	ConfigFile string
	// UseDefaults answers every prompt with its default
	UseDefaults bool
	Verbose     bool

	// Output receives console output; nil means stderr
	Output io.Writer
	// Runner executes container engine commands; nil runs them on the host
	Runner runtime.CommandRunner
	// StdinTerminal reports whether stdin is interactive; nil checks os.Stdin
	StdinTerminal func() bool
}

// AppContext holds all dependencies needed by the commands
type AppContext struct {
	Config    *config.Config
	Global    config.Global
	UI        *ui.UI
	Logger    *zap.Logger
	Layout    render.Layout
	Markers   *config.Markers
	Overrides config.Overrides
	// Unattended is set under CI or without a terminal on stdin
	Unattended bool

	runner  runtime.CommandRunner
	runtime runtime.Runtime
}

func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// NewAppContext loads configuration and initializes the console
func NewAppContext(opts Options) (*AppContext, error) {
	if opts.StackDir == "" {
		opts.StackDir = DefaultStackDir
	}
	if opts.StdinTerminal == nil {
		opts.StdinTerminal = stdinIsTerminal
	}
	if opts.Runner == nil {
		opts.Runner = runtime.NewCommandRunner()
	}

	logger, err := NewLogger(opts.Verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	configPath := opts.ConfigFile
	if configPath == "" {
		configPath = config.DefaultPath(opts.StackDir)
	}
	cfg := config.New(configPath)
	if err := cfg.Load(); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	global, err := cfg.Data()
	if err != nil {
		return nil, err
	}
	if cfg.Exists() {
		if err := global.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
		}
	} else if opts.ConfigFile != "" {
		return nil, fmt.Errorf("config file %s does not exist", opts.ConfigFile)
	}

	overrides := config.LoadOverrides()
	unattended := overrides.CI || !opts.StdinTerminal()

	u := ui.New()
	if opts.Output != nil {
		u = ui.NewWithWriter(opts.Output)
	}
	u.SetNonInteractive(unattended || opts.UseDefaults)

	layout := render.Layout{Root: opts.StackDir}
	logger.Debug("app context ready",
		zap.String("stack_dir", opts.StackDir),
		zap.String("config", configPath),
		zap.Bool("config_exists", cfg.Exists()),
		zap.Bool("unattended", unattended))

	return &AppContext{
		Config:     cfg,
		Global:     global,
		UI:         u,
		Logger:     logger,
		Layout:     layout,
		Markers:    config.NewMarkers(layout.MarkersDir()),
		Overrides:  overrides,
		Unattended: unattended,
		runner:     opts.Runner,
	}, nil
}

// Prompter returns the prompt capability handed to the resolver
func (a *AppContext) Prompter() resolve.Prompter {
	return a.UI
}

// Images returns the image naming in effect. Unattended runs pull the
// prebuilt registry images instead of building locally.
func (a *AppContext) Images() render.Images {
	return render.Images{Registry: a.Overrides.Registry, Pinned: a.Unattended}
}

// Secrets returns the secrets manager of the stack directory
func (a *AppContext) Secrets() *secrets.Manager {
	return secrets.New(a.Layout.SecretsDir(), a.Prompter(), a.Logger)
}

// Sources collects the values persisted by earlier runs
func (a *AppContext) Sources() (resolve.Sources, error) {
	env, err := config.ReadEnvFile(a.Layout.EnvFile())
	if err != nil {
		return resolve.Sources{}, fmt.Errorf("failed to read previous environment: %w", err)
	}
	secret, _, err := a.Secrets().Read()
	if err != nil {
		return resolve.Sources{}, fmt.Errorf("failed to read persisted secret: %w", err)
	}
	return resolve.Sources{Global: a.Global, Env: env, Secret: secret}, nil
}

// Runtime detects the container runtime on first use
func (a *AppContext) Runtime(ctx context.Context) (runtime.Runtime, error) {
	if a.runtime != nil {
		return a.runtime, nil
	}
	rt, err := runtime.New(ctx, a.runner, a.Overrides.Runtime, a.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to detect container runtime: %w", err)
	}
	a.runtime = rt
	return rt, nil
}

// SetRuntime replaces the detected container runtime
func (a *AppContext) SetRuntime(rt runtime.Runtime) {
	a.runtime = rt
}

// Driver assembles a deployment driver. The runtime may be nil for callers
// that only inspect launch markers.
func (a *AppContext) Driver(rt runtime.Runtime) (*deploy.Driver, error) {
	src, err := a.Sources()
	if err != nil {
		return nil, err
	}
	images := a.Images()

	return deploy.New(deploy.Options{
		Resolver: resolve.New(a.Prompter(), src, a.Logger),
		Secrets:  a.Secrets(),
		Renderer: render.New(a.Layout, a.Global, images, a.Logger),
		Runtime:  rt,
		Markers:  a.Markers,
		Layout:   a.Layout,
		Images:   images,
		Reporter: a.UI,
		Logger:   a.Logger,
		Detached: true,
	}), nil
}

// Close flushes the logger
func (a *AppContext) Close() {
	_ = a.Logger.Sync()
}
