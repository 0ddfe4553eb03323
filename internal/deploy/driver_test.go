package deploy

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/madara-alliance/madara-cli/internal/common"
	"github.com/madara-alliance/madara-cli/internal/config"
	"github.com/madara-alliance/madara-cli/internal/params"
	"github.com/madara-alliance/madara-cli/internal/render"
	"github.com/madara-alliance/madara-cli/internal/resolve"
	"github.com/madara-alliance/madara-cli/internal/secrets"
)

type call struct {
	op   string
	args []string
}

type fakeRuntime struct {
	calls  []call
	failOn string
}

func (f *fakeRuntime) record(op string, args ...string) error {
	f.calls = append(f.calls, call{op, args})
	if op == f.failOn {
		return common.RuntimeError(op, "boom", errors.New("exit status 1"))
	}
	return nil
}

func (f *fakeRuntime) Up(_ context.Context, manifest string, detached bool) error {
	if detached {
		return f.record("up", manifest, "-d")
	}
	return f.record("up", manifest)
}

func (f *fakeRuntime) Down(_ context.Context, manifest string) error {
	return f.record("down", manifest)
}

func (f *fakeRuntime) BuildImage(_ context.Context, contextPath, tag string) error {
	return f.record("build", contextPath, tag)
}

func (f *fakeRuntime) Run(_ context.Context, image string, args []string) error {
	return f.record("run", append([]string{image}, args...)...)
}

func (f *fakeRuntime) ops() []string {
	var ops []string
	for _, c := range f.calls {
		ops = append(ops, c.op)
	}
	return ops
}

type stageRecorder struct {
	stages []string
}

func (s *stageRecorder) Stage(_, _ int, name string) { s.stages = append(s.stages, name) }
func (s *stageRecorder) Info(string)                 {}
func (s *stageRecorder) Success(string)              {}

type harness struct {
	driver   *Driver
	runtime  *fakeRuntime
	reporter *stageRecorder
	layout   render.Layout
	markers  *config.Markers
}

func newHarness(t *testing.T, images render.Images) *harness {
	t.Helper()
	logger := zaptest.NewLogger(t)
	layout := render.Layout{Root: filepath.Join(t.TempDir(), "deps")}
	global := config.Defaults()

	h := &harness{
		runtime:  &fakeRuntime{},
		reporter: &stageRecorder{},
		layout:   layout,
		markers:  config.NewMarkers(layout.MarkersDir()),
	}
	h.driver = New(Options{
		Resolver: resolve.New(resolve.Defaults{}, resolve.Sources{Global: global}, logger),
		Secrets:  secrets.New(layout.SecretsDir(), resolve.Defaults{}, logger),
		Renderer: render.New(layout, global, images, logger),
		Runtime:  h.runtime,
		Markers:  h.markers,
		Layout:   layout,
		Images:   images,
		Reporter: h.reporter,
		Logger:   logger,
		Detached: true,
	})
	return h
}

func TestRunDevnet(t *testing.T) {
	h := newHarness(t, render.Images{})

	res, err := h.driver.Run(context.Background(), &params.DevnetParams{BasePath: params.Ptr("./data")})
	require.NoError(t, err)

	assert.Equal(t, StageDone, res.Stage)
	assert.Equal(t, params.ModeDevnet, res.Bundle.Mode())
	manifest := h.layout.Manifest(params.ModeDevnet)
	assert.Equal(t, manifest, res.Artifacts.Manifest)

	assert.Equal(t, []call{
		{"build", []string{h.layout.Dir("madara"), "madara:latest"}},
		{"up", []string{manifest, "-d"}},
	}, h.runtime.calls)

	assert.Len(t, h.reporter.stages, len(Stages))

	recorded, ok, err := h.markers.Lookup("devnet")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, manifest, recorded)

	secret, err := os.ReadFile(filepath.Join(h.layout.SecretsDir(), secrets.FileName))
	require.NoError(t, err)
	assert.Empty(t, secret)
}

func TestRunSelectsModeWhenNoBundle(t *testing.T) {
	h := newHarness(t, render.Images{})

	res, err := h.driver.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, params.ModeDevnet, res.Bundle.Mode())
}

func TestRunPinnedImagesSkipBuilds(t *testing.T) {
	h := newHarness(t, render.Images{Registry: config.DefaultRegistry, Pinned: true})

	res, err := h.driver.Run(context.Background(), &params.AppChainParams{})
	require.NoError(t, err)

	assert.Empty(t, res.Built)
	assert.Equal(t, []string{"up"}, h.runtime.ops())

	data, err := os.ReadFile(res.Artifacts.Manifest)
	require.NoError(t, err)
	c, err := render.ParseManifest(data)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultRegistry+"/orchestrator:latest", c.Services["orchestrator"].Image)
}

func TestRunAppChainBuildsEveryService(t *testing.T) {
	h := newHarness(t, render.Images{})

	res, err := h.driver.Run(context.Background(), &params.AppChainParams{})
	require.NoError(t, err)

	var tags []string
	for _, b := range res.Built {
		tags = append(tags, b.Tag)
	}
	assert.Equal(t, []string{
		"anvil:latest", "bootstrapper:latest", "madara:latest", "pathfinder:latest", "orchestrator:latest",
	}, tags)
	assert.Equal(t, []string{"build", "build", "build", "build", "build", "up"}, h.runtime.ops())
	assert.Equal(t, filepath.Join(h.layout.Root, "compose.app-chain.yaml"), res.Artifacts.Manifest)
}

func TestRunResolveFailureTouchesNothing(t *testing.T) {
	h := newHarness(t, render.Images{})

	_, err := h.driver.Run(context.Background(), &params.SequencerParams{L1Endpoint: params.Ptr("ftp://eth.example.com")})
	require.ErrorIs(t, err, common.ErrValidation)

	stage, ok := FailedStage(err)
	require.True(t, ok)
	assert.Equal(t, StageResolveConfig, stage)
	assert.Empty(t, h.runtime.calls)

	_, statErr := os.Stat(h.layout.Root)
	assert.True(t, os.IsNotExist(statErr), "no file may be written when resolution fails")
}

func TestRunFullNodeUnattendedWithoutSecret(t *testing.T) {
	h := newHarness(t, render.Images{})

	_, err := h.driver.Run(context.Background(), &params.FullNodeParams{Network: params.Ptr(params.NetworkMainnet)})
	require.ErrorIs(t, err, common.ErrMissingRequiredField)

	stage, _ := FailedStage(err)
	assert.Equal(t, StageEnsureSecrets, stage)
	assert.Empty(t, h.runtime.calls)
}

func TestRunBuildFailureStopsBeforeUp(t *testing.T) {
	h := newHarness(t, render.Images{})
	h.runtime.failOn = "build"

	_, err := h.driver.Run(context.Background(), &params.DevnetParams{})
	require.ErrorIs(t, err, common.ErrRuntimeInvocation)

	stage, _ := FailedStage(err)
	assert.Equal(t, StageAcquireImages, stage)
	assert.Equal(t, []string{"build"}, h.runtime.ops())

	names, err := h.markers.List()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestDownAndLaunched(t *testing.T) {
	h := newHarness(t, render.Images{})
	ctx := context.Background()

	_, err := h.driver.Run(ctx, &params.DevnetParams{})
	require.NoError(t, err)

	launches, err := h.driver.Launched()
	require.NoError(t, err)
	require.Len(t, launches, 1)
	assert.Equal(t, params.ModeDevnet, launches[0].Mode)

	require.NoError(t, h.driver.Down(ctx, params.ModeDevnet))
	last := h.runtime.calls[len(h.runtime.calls)-1]
	assert.Equal(t, call{"down", []string{h.layout.Manifest(params.ModeDevnet)}}, last)

	launches, err = h.driver.Launched()
	require.NoError(t, err)
	assert.Empty(t, launches)

	assert.Error(t, h.driver.Down(ctx, params.ModeDevnet))
}

func TestImagePlan(t *testing.T) {
	layout := render.Layout{Root: "deps"}

	plan := ImagePlan(params.ModeSequencer, layout, render.Images{})
	assert.Equal(t, []ImageBuild{{Service: "madara", Context: filepath.Join("deps", "madara"), Tag: "madara:latest"}}, plan)

	assert.Empty(t, ImagePlan(params.ModeAppChain, layout, render.Images{Registry: "r", Pinned: true}))
	assert.Len(t, ImagePlan(params.ModeAppChain, layout, render.Images{}), 5)
}
