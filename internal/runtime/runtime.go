// Package runtime drives the container engine: image builds, compose up and
// down, and the diagnostics used by status and doctor. Commands go through a
// CommandRunner so tests can substitute a fake.
package runtime

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/madara-alliance/madara-cli/internal/common"
)

// Runtime is the container runtime capability used by the deployment driver
type Runtime interface {
	Up(ctx context.Context, manifest string, detached bool) error
	Down(ctx context.Context, manifest string) error
	BuildImage(ctx context.Context, contextPath, tag string) error
	Run(ctx context.Context, image string, args []string) error
}

// Engine is a container engine binary
type Engine string

const (
	EngineDocker Engine = "docker"
	EnginePodman Engine = "podman"
)

// DetectEngine picks the engine named by preferred, or the first installed of
// docker and podman
func DetectEngine(runner CommandRunner, preferred string) (Engine, error) {
	if preferred != "" {
		e := Engine(strings.ToLower(preferred))
		if e != EngineDocker && e != EnginePodman {
			return "", common.ValidationError("runtime", fmt.Errorf("unsupported runtime %q (want docker or podman)", preferred))
		}
		if _, err := runner.LookPath(string(e)); err != nil {
			return "", fmt.Errorf("runtime %s not found: %w", e, err)
		}
		return e, nil
	}

	for _, e := range []Engine{EngineDocker, EnginePodman} {
		if _, err := runner.LookPath(string(e)); err == nil {
			return e, nil
		}
	}
	return "", fmt.Errorf("no container runtime found (docker or podman)")
}

// composeCommand returns the compose invocation for engine: the compose
// plugin when available, else the standalone binary
func composeCommand(ctx context.Context, runner CommandRunner, engine Engine) ([]string, error) {
	if _, err := runner.Run(ctx, string(engine), "compose", "version"); err == nil {
		return []string{string(engine), "compose"}, nil
	}

	standalone := string(engine) + "-compose"
	if _, err := runner.LookPath(standalone); err == nil {
		return []string{standalone}, nil
	}
	return nil, fmt.Errorf("neither %s compose plugin nor %s found", engine, standalone)
}

// Compose implements Runtime with a container engine and its compose tool
type Compose struct {
	engine  Engine
	compose []string
	runner  CommandRunner
	logger  *zap.Logger
}

// New detects the engine and compose command
func New(ctx context.Context, runner CommandRunner, preferred string, logger *zap.Logger) (*Compose, error) {
	engine, err := DetectEngine(runner, preferred)
	if err != nil {
		return nil, err
	}
	return NewCompose(ctx, runner, engine, logger)
}

// NewCompose creates a runtime for a known engine
func NewCompose(ctx context.Context, runner CommandRunner, engine Engine, logger *zap.Logger) (*Compose, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	compose, err := composeCommand(ctx, runner, engine)
	if err != nil {
		return nil, err
	}
	logger.Debug("container runtime detected",
		zap.String("engine", string(engine)),
		zap.String("compose", strings.Join(compose, " ")))

	return &Compose{engine: engine, compose: compose, runner: runner, logger: logger}, nil
}

// Engine returns the detected engine
func (c *Compose) Engine() Engine {
	return c.engine
}

// ComposeCommand returns the compose invocation, e.g. "docker compose"
func (c *Compose) ComposeCommand() string {
	return strings.Join(c.compose, " ")
}

func (c *Compose) run(ctx context.Context, argv ...string) (string, error) {
	cmdline := strings.Join(argv, " ")
	c.logger.Debug("running command", zap.String("cmd", cmdline))

	output, err := c.runner.Run(ctx, argv[0], argv[1:]...)
	if err != nil {
		return output, common.RuntimeError(cmdline, strings.TrimSpace(output), err)
	}
	return output, nil
}

func (c *Compose) composeArgs(args ...string) []string {
	return append(append([]string{}, c.compose...), args...)
}

// Up starts the services of manifest
func (c *Compose) Up(ctx context.Context, manifest string, detached bool) error {
	args := c.composeArgs("-f", manifest, "up")
	if detached {
		args = append(args, "-d")
	}
	_, err := c.run(ctx, args...)
	return err
}

// Down stops the services of manifest and removes their volumes
func (c *Compose) Down(ctx context.Context, manifest string) error {
	_, err := c.run(ctx, c.composeArgs("-f", manifest, "down", "-v")...)
	return err
}

// BuildImage builds tag from the Dockerfile in contextPath
func (c *Compose) BuildImage(ctx context.Context, contextPath, tag string) error {
	_, err := c.run(ctx, string(c.engine), "build", "-t", tag, contextPath)
	return err
}

// Run starts a one-off container
func (c *Compose) Run(ctx context.Context, image string, args []string) error {
	argv := append([]string{string(c.engine), "run"}, args...)
	_, err := c.run(ctx, append(argv, image)...)
	return err
}

// Version returns the engine version string
func (c *Compose) Version(ctx context.Context) (string, error) {
	output, err := c.run(ctx, string(c.engine), "--version")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(output), nil
}

// RunningContainers lists the names of running containers
func (c *Compose) RunningContainers(ctx context.Context) ([]string, error) {
	output, err := c.run(ctx, string(c.engine), "ps", "--format", "{{.Names}}")
	if err != nil {
		return nil, err
	}

	var containers []string
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if line != "" {
			containers = append(containers, line)
		}
	}
	return containers, nil
}

// ContainerLogs returns the last lines of a container's logs
func (c *Compose) ContainerLogs(ctx context.Context, name string, lines int) (string, error) {
	return c.run(ctx, string(c.engine), "logs", "--tail", fmt.Sprintf("%d", lines), name)
}
