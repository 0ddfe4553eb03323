package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/madara-alliance/madara-cli/internal/params"
	"github.com/madara-alliance/madara-cli/internal/render"
	"github.com/madara-alliance/madara-cli/internal/runtime"
	"github.com/madara-alliance/madara-cli/internal/system"
)

// minFreeDisk is the free space below which the layout check warns
const minFreeDisk = 20 << 30

// logTail is how many log lines are read from a stopped container
const logTail = 20

// CheckStatus is the outcome of a diagnostic
type CheckStatus int

const (
	CheckOK CheckStatus = iota
	CheckWarn
	CheckFail
)

// Check is one diagnostic result
type Check struct {
	Group  string
	Name   string
	Status CheckStatus
	Detail string
}

// Diagnostics groups the doctor checks to run
type Diagnostics struct {
	Runtime bool
	Config  bool
	Layout  bool
	Network bool
}

// AllDiagnostics enables every group
var AllDiagnostics = Diagnostics{Runtime: true, Config: true, Layout: true, Network: true}

// Doctor runs the selected diagnostics
func Doctor(ctx context.Context, app *AppContext, d Diagnostics) []Check {
	var checks []Check
	if d.Runtime {
		checks = append(checks, runtimeChecks(ctx, app)...)
	}
	if d.Config {
		checks = append(checks, configChecks(app)...)
	}
	if d.Layout {
		checks = append(checks, layoutChecks(app)...)
	}
	if d.Network {
		checks = append(checks, networkChecks(ctx, app)...)
	}
	return checks
}

func runtimeChecks(ctx context.Context, app *AppContext) []Check {
	const group = "Container runtime"

	engine, err := runtime.DetectEngine(app.runner, app.Overrides.Runtime)
	if err != nil {
		return []Check{{group, "engine", CheckFail, err.Error()}}
	}
	checks := []Check{{group, "engine", CheckOK, string(engine)}}

	compose, err := runtime.NewCompose(ctx, app.runner, engine, app.Logger)
	if err != nil {
		return append(checks, Check{group, "compose", CheckFail, err.Error()})
	}
	checks = append(checks, Check{group, "compose", CheckOK, compose.ComposeCommand()})

	if v, err := compose.Version(ctx); err != nil {
		checks = append(checks, Check{group, "version", CheckWarn, err.Error()})
	} else {
		checks = append(checks, Check{group, "version", CheckOK, v})
	}

	names, err := compose.RunningContainers(ctx)
	if err != nil {
		return append(checks, Check{group, "containers", CheckWarn, err.Error()})
	}
	checks = append(checks, Check{group, "containers", CheckOK, fmt.Sprintf("%d running", len(names))})
	return append(checks, stoppedContainers(ctx, app, compose, names)...)
}

// stoppedContainers reports launched services whose container is not running,
// with the last line the container logged
func stoppedContainers(ctx context.Context, app *AppContext, compose *runtime.Compose, running []string) []Check {
	const group = "Container runtime"

	stacks, err := Status(ctx, app, nil)
	if err != nil {
		return []Check{{group, "launched stacks", CheckWarn, err.Error()}}
	}

	var checks []Check
	for _, st := range stacks {
		for _, svc := range st.Services {
			if svc.Container == "" || slices.Contains(running, svc.Container) {
				continue
			}
			detail := "not running"
			logs, err := compose.ContainerLogs(ctx, svc.Container, logTail)
			if err != nil {
				app.Logger.Debug("could not read container logs", zap.String("container", svc.Container), zap.Error(err))
				detail += ", no logs available"
			} else if line := lastLine(logs); line != "" {
				detail += ", last log: " + line
			}
			checks = append(checks, Check{group, svc.Container, CheckWarn, detail})
		}
	}
	return checks
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

func configChecks(app *AppContext) []Check {
	const group = "Configuration"

	path := app.Config.FilePath()
	if !app.Config.Exists() {
		return []Check{{group, "config file", CheckWarn, fmt.Sprintf("%s not found, using built-in defaults", path)}}
	}
	checks := []Check{{group, "config file", CheckOK, path}}
	if err := app.Global.Validate(); err != nil {
		checks = append(checks, Check{group, "config values", CheckFail, err.Error()})
	} else {
		checks = append(checks, Check{group, "config values", CheckOK, "valid"})
	}

	if secret, exists, err := app.Secrets().Read(); err != nil {
		checks = append(checks, Check{group, "rpc secret", CheckFail, err.Error()})
	} else if !exists {
		checks = append(checks, Check{group, "rpc secret", CheckWarn, "not created yet"})
	} else if secret == "" {
		checks = append(checks, Check{group, "rpc secret", CheckOK, "placeholder"})
	} else {
		checks = append(checks, Check{group, "rpc secret", CheckOK, "set"})
	}
	return checks
}

func layoutChecks(app *AppContext) []Check {
	const group = "Stack layout"

	var checks []Check
	if _, err := os.Stat(app.Layout.Root); err != nil {
		return []Check{{group, "stack dir", CheckFail, err.Error()}}
	}
	checks = append(checks, Check{group, "stack dir", CheckOK, app.Layout.Root})

	if _, _, free, err := system.DiskUsage(app.Layout.Root); err != nil {
		checks = append(checks, Check{group, "disk", CheckWarn, err.Error()})
	} else if free < minFreeDisk {
		checks = append(checks, Check{group, "disk", CheckWarn, system.HumanBytes(free) + " free, node databases grow quickly"})
	} else {
		checks = append(checks, Check{group, "disk", CheckOK, system.HumanBytes(free) + " free"})
	}

	status := CheckFail
	if app.Images().Pinned {
		// Registry images are pulled, a missing build context is harmless
		status = CheckWarn
	}
	for _, svc := range render.Services(params.ModeAppChain) {
		dockerfile := filepath.Join(app.Layout.Dir(svc), "Dockerfile")
		if _, err := os.Stat(dockerfile); err != nil {
			checks = append(checks, Check{group, svc, status, "missing " + dockerfile})
			continue
		}
		checks = append(checks, Check{group, svc, CheckOK, dockerfile})
	}

	if names, err := app.Markers.List(); err != nil {
		checks = append(checks, Check{group, "launched stacks", CheckWarn, err.Error()})
	} else {
		for _, name := range names {
			manifest, _, err := app.Markers.Lookup(name)
			if err != nil {
				checks = append(checks, Check{group, name, CheckWarn, err.Error()})
				continue
			}
			if _, err := os.Stat(manifest); err != nil {
				checks = append(checks, Check{group, name, CheckWarn, "launched but manifest missing: " + manifest})
				continue
			}
			checks = append(checks, Check{group, name, CheckOK, "launched from " + manifest})
		}
	}
	return checks
}

func networkChecks(ctx context.Context, app *AppContext) []Check {
	const group = "Network"
	n := system.NewNetwork(system.DefaultTimeout)

	launched := false
	if names, err := app.Markers.List(); err == nil && len(names) > 0 {
		launched = true
	}

	var checks []Check
	for _, port := range system.StackPorts {
		name := fmt.Sprintf("port %d", port)
		switch {
		case n.PortAvailable(port):
			checks = append(checks, Check{group, name, CheckOK, "free"})
		case launched:
			checks = append(checks, Check{group, name, CheckOK, "in use, a stack is launched"})
		default:
			checks = append(checks, Check{group, name, CheckWarn, "in use by another process"})
		}
	}

	// The secret holds an endpoint URL; only its reachability is reported
	secret, _, err := app.Secrets().Read()
	if err != nil || secret == "" {
		return checks
	}
	if ok, err := n.EndpointReachable(ctx, secret); err != nil {
		checks = append(checks, Check{group, "rpc endpoint", CheckWarn, "stored endpoint is not a valid URL"})
	} else if !ok {
		checks = append(checks, Check{group, "rpc endpoint", CheckWarn, "unreachable"})
	} else {
		checks = append(checks, Check{group, "rpc endpoint", CheckOK, "reachable"})
	}
	return checks
}
