package cli

import (
	"context"
	"os"
	"slices"

	"github.com/madara-alliance/madara-cli/internal/params"
	"github.com/madara-alliance/madara-cli/internal/render"
	"github.com/madara-alliance/madara-cli/internal/runtime"
)

// ServiceStatus is one service of a launched stack
type ServiceStatus struct {
	Name      string
	Image     string
	Container string
	// Running is only meaningful when StackStatus.Probed is set
	Running bool
}

// StackStatus describes a launched stack
type StackStatus struct {
	Mode     params.Mode
	Manifest string
	Services []ServiceStatus
	// Probed is set when the container runtime reported running containers
	Probed bool
	// Err is set when the manifest could not be read
	Err error
}

type containerLister interface {
	RunningContainers(ctx context.Context) ([]string, error)
}

// Status reports the launched stacks. When the runtime can list containers,
// each service is marked running or not.
func Status(ctx context.Context, app *AppContext, rt runtime.Runtime) ([]StackStatus, error) {
	driver, err := app.Driver(nil)
	if err != nil {
		return nil, err
	}
	launches, err := driver.Launched()
	if err != nil {
		return nil, err
	}

	var running []string
	probed := false
	if lister, ok := rt.(containerLister); ok {
		if running, err = lister.RunningContainers(ctx); err == nil {
			probed = true
		} else {
			app.Logger.Debug("could not list running containers")
		}
	}

	var stacks []StackStatus
	for _, l := range launches {
		st := StackStatus{Mode: l.Mode, Manifest: l.Manifest, Probed: probed}

		data, err := os.ReadFile(l.Manifest)
		if err != nil {
			st.Err = err
			stacks = append(stacks, st)
			continue
		}
		compose, err := render.ParseManifest(data)
		if err != nil {
			st.Err = err
			stacks = append(stacks, st)
			continue
		}

		for _, name := range compose.ServiceNames() {
			svc := compose.Services[name]
			st.Services = append(st.Services, ServiceStatus{
				Name:      name,
				Image:     svc.Image,
				Container: svc.ContainerName,
				Running:   slices.Contains(running, svc.ContainerName),
			})
		}
		stacks = append(stacks, st)
	}
	return stacks, nil
}
