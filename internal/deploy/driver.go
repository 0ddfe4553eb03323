// Package deploy sequences a launch: select the mode, resolve its bundle,
// ensure secrets, render artifacts, acquire images and bring the stack up.
// A failing stage halts the run; files already written are left in place and
// a re-run overwrites them.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/madara-alliance/madara-cli/internal/config"
	"github.com/madara-alliance/madara-cli/internal/params"
	"github.com/madara-alliance/madara-cli/internal/render"
	"github.com/madara-alliance/madara-cli/internal/runtime"
	"github.com/madara-alliance/madara-cli/internal/secrets"
)

// Stage is a state of the launch state machine
type Stage string

const (
	StageSelectMode      Stage = "SelectMode"
	StageResolveConfig   Stage = "ResolveConfig"
	StageEnsureSecrets   Stage = "EnsureSecrets"
	StageRenderArtifacts Stage = "RenderArtifacts"
	StageAcquireImages   Stage = "AcquireImages"
	StageRuntimeUp       Stage = "RuntimeUp"
	StageDone            Stage = "Done"
)

// Stages lists the working stages in execution order
var Stages = []Stage{
	StageSelectMode,
	StageResolveConfig,
	StageEnsureSecrets,
	StageRenderArtifacts,
	StageAcquireImages,
	StageRuntimeUp,
}

var stageTitles = map[Stage]string{
	StageSelectMode:      "Select mode",
	StageResolveConfig:   "Resolve configuration",
	StageEnsureSecrets:   "Ensure secrets",
	StageRenderArtifacts: "Render artifacts",
	StageAcquireImages:   "Acquire images",
	StageRuntimeUp:       "Start containers",
}

// StageError reports the stage a launch halted in
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// FailedStage returns the stage err halted in, if any
func FailedStage(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}

// Resolver completes partial bundles
type Resolver interface {
	SelectMode() (params.Mode, error)
	Resolve(partial params.Bundle) (params.Bundle, error)
}

// SecretStore ensures the secret a bundle needs is on disk
type SecretStore interface {
	Ensure(b params.Bundle) (secrets.SecretRecord, error)
}

// ArtifactRenderer writes the artifacts of a resolved bundle
type ArtifactRenderer interface {
	Render(b params.Bundle) (render.Artifacts, error)
}

// Reporter shows progress to the operator
type Reporter interface {
	Stage(n, total int, name string)
	Info(msg string)
	Success(msg string)
}

type nopReporter struct{}

func (nopReporter) Stage(int, int, string) {}
func (nopReporter) Info(string)            {}
func (nopReporter) Success(string)         {}

// Options wires the driver's collaborators
type Options struct {
	Resolver Resolver
	Secrets  SecretStore
	Renderer ArtifactRenderer
	Runtime  runtime.Runtime
	Markers  *config.Markers
	Layout   render.Layout
	Images   render.Images
	Reporter Reporter
	Logger   *zap.Logger
	// Detached starts the stack in the background
	Detached bool
}

// Result describes a completed launch
type Result struct {
	Bundle    params.Bundle
	Secret    secrets.SecretRecord
	Artifacts render.Artifacts
	Built     []ImageBuild
	Stage     Stage
}

// Driver runs launches
type Driver struct {
	opts Options
}

// New creates a driver
func New(opts Options) *Driver {
	if opts.Reporter == nil {
		opts.Reporter = nopReporter{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Driver{opts: opts}
}

func (d *Driver) enter(stage Stage) {
	for i, s := range Stages {
		if s == stage {
			d.opts.Reporter.Stage(i+1, len(Stages), stageTitles[s])
		}
	}
	d.opts.Logger.Debug("entering stage", zap.String("stage", string(stage)))
}

func fail(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}

// Run launches partial. A nil bundle starts with a mode selection prompt.
func (d *Driver) Run(ctx context.Context, partial params.Bundle) (Result, error) {
	res := Result{Stage: StageSelectMode}

	d.enter(StageSelectMode)
	if partial == nil || reflect.ValueOf(partial).IsNil() {
		mode, err := d.opts.Resolver.SelectMode()
		if err != nil {
			return res, fail(StageSelectMode, err)
		}
		if partial, err = params.New(mode); err != nil {
			return res, fail(StageSelectMode, err)
		}
	}
	mode := partial.Mode()
	d.opts.Reporter.Info("Mode: " + mode.DisplayName())

	res.Stage = StageResolveConfig
	d.enter(StageResolveConfig)
	bundle, err := d.opts.Resolver.Resolve(partial)
	if err != nil {
		return res, fail(StageResolveConfig, err)
	}
	res.Bundle = bundle

	res.Stage = StageEnsureSecrets
	d.enter(StageEnsureSecrets)
	if res.Secret, err = d.opts.Secrets.Ensure(bundle); err != nil {
		return res, fail(StageEnsureSecrets, err)
	}

	res.Stage = StageRenderArtifacts
	d.enter(StageRenderArtifacts)
	if res.Artifacts, err = d.opts.Renderer.Render(bundle); err != nil {
		return res, fail(StageRenderArtifacts, err)
	}
	d.opts.Logger.Info("artifacts rendered", zap.Strings("files", res.Artifacts.Files()))

	res.Stage = StageAcquireImages
	d.enter(StageAcquireImages)
	if res.Built, err = d.acquireImages(ctx, mode); err != nil {
		return res, fail(StageAcquireImages, err)
	}

	res.Stage = StageRuntimeUp
	d.enter(StageRuntimeUp)
	if err := d.opts.Runtime.Up(ctx, res.Artifacts.Manifest, d.opts.Detached); err != nil {
		return res, fail(StageRuntimeUp, err)
	}
	if d.opts.Markers != nil {
		if err := d.opts.Markers.Record(mode.String(), res.Artifacts.Manifest); err != nil {
			// The stack is up; only status/down bookkeeping is lost.
			d.opts.Logger.Warn("failed to record launch marker", zap.Error(err))
		}
	}

	res.Stage = StageDone
	d.opts.Reporter.Success(fmt.Sprintf("%s stack is up (%s)", mode.DisplayName(), res.Artifacts.Manifest))
	return res, nil
}

func (d *Driver) acquireImages(ctx context.Context, mode params.Mode) ([]ImageBuild, error) {
	plan := ImagePlan(mode, d.opts.Layout, d.opts.Images)
	if len(plan) == 0 {
		d.opts.Reporter.Info("Using registry images, skipping local builds")
		return nil, nil
	}

	for _, b := range plan {
		d.opts.Reporter.Info(fmt.Sprintf("Building %s from %s", b.Tag, b.Context))
		if err := d.opts.Runtime.BuildImage(ctx, b.Context, b.Tag); err != nil {
			return nil, fmt.Errorf("failed to build %s image: %w", b.Service, err)
		}
	}
	return plan, nil
}
