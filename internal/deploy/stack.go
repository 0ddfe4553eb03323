package deploy

import (
	"context"
	"fmt"

	"github.com/madara-alliance/madara-cli/internal/params"
	"github.com/madara-alliance/madara-cli/internal/render"
)

// ImageBuild is one local image build
type ImageBuild struct {
	Service string
	Context string
	Tag     string
}

// ImagePlan lists the images a mode builds locally. Pinned registry images
// are pulled by compose and need no build.
func ImagePlan(mode params.Mode, layout render.Layout, images render.Images) []ImageBuild {
	if images.Pinned {
		return nil
	}

	var plan []ImageBuild
	for _, svc := range render.Services(mode) {
		plan = append(plan, ImageBuild{
			Service: svc,
			Context: layout.Dir(svc),
			Tag:     images.Ref(svc),
		})
	}
	return plan
}

// Launch is a stack recorded as brought up
type Launch struct {
	Mode     params.Mode
	Manifest string
}

// Launched lists the stacks with a launch marker
func (d *Driver) Launched() ([]Launch, error) {
	if d.opts.Markers == nil {
		return nil, nil
	}

	names, err := d.opts.Markers.List()
	if err != nil {
		return nil, err
	}

	var launches []Launch
	for _, name := range names {
		mode, err := params.ParseMode(name)
		if err != nil {
			d.opts.Reporter.Info(fmt.Sprintf("Ignoring unknown launch marker %q", name))
			continue
		}
		manifest, ok, err := d.opts.Markers.Lookup(name)
		if err != nil {
			return nil, err
		}
		if ok {
			launches = append(launches, Launch{Mode: mode, Manifest: manifest})
		}
	}
	return launches, nil
}

// Down stops the stack launched for mode and clears its marker
func (d *Driver) Down(ctx context.Context, mode params.Mode) error {
	if d.opts.Markers == nil {
		return fmt.Errorf("launch markers are not configured")
	}

	manifest, ok, err := d.opts.Markers.Lookup(mode.String())
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no launched %s stack found", mode.DisplayName())
	}

	if err := d.opts.Runtime.Down(ctx, manifest); err != nil {
		return err
	}
	if err := d.opts.Markers.Remove(mode.String()); err != nil {
		return fmt.Errorf("failed to clear launch marker: %w", err)
	}

	d.opts.Reporter.Success(fmt.Sprintf("%s stack is down", mode.DisplayName()))
	return nil
}
