package engine

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-polyline/common"
	"github.com/Carmen-Shannon/oxy-polyline/engine/asset"
	"github.com/Carmen-Shannon/oxy-polyline/engine/polyline"
	"github.com/Carmen-Shannon/oxy-polyline/engine/render_asset"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/render_device"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/render_device/devicetest"
	"github.com/Carmen-Shannon/oxy-polyline/engine/scene"
	"github.com/Carmen-Shannon/oxy-polyline/engine/view"
	"github.com/Carmen-Shannon/oxy-polyline/engine/world"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type headlessBackend struct {
	device   *devicetest.Device
	sizes    [][2]int
	presents int
}

var _ renderer.RendererBackend = &headlessBackend{}

func (b *headlessBackend) Device() render_device.RenderDevice  { return b.device }
func (b *headlessBackend) SurfaceFormat() wgpu.TextureFormat   { return wgpu.TextureFormatBGRA8Unorm }
func (b *headlessBackend) SampleCount() uint32                 { return 1 }
func (b *headlessBackend) SetPresentMode(renderer.PresentMode) {}
func (b *headlessBackend) BeginFrame() error                   { return nil }
func (b *headlessBackend) EndViewPass()                        {}
func (b *headlessBackend) EndFrame() error                     { return nil }
func (b *headlessBackend) Present()                            { b.presents++ }
func (b *headlessBackend) Release()                            {}

func (b *headlessBackend) ConfigureSurface(width, height int) {
	b.sizes = append(b.sizes, [2]int{width, height})
}

func (b *headlessBackend) BeginViewPass(renderer.ViewTarget) (render_device.TrackedRenderPass, error) {
	return &devicetest.Pass{}, nil
}

func newHeadlessEngine(t *testing.T, opts ...EngineBuilderOption) (*engine, *headlessBackend) {
	t.Helper()
	backend := &headlessBackend{device: devicetest.NewDevice()}
	s := scene.NewScene("main")
	r := renderer.NewRenderer(renderer.BackendTypeWGPU, nil, s.World(),
		renderer.WithBackend(backend),
		renderer.WithPipelineCache(pipeline.NewPipelineCache(pipeline.WithPipelineReleaser(func(*wgpu.RenderPipeline) {}))),
		renderer.WithPlugins(polyline.NewPlugin(
			polyline.WithResourceReleasers(func(bind_group_provider.BindGroupProvider) {}, func(*wgpu.Buffer) {}),
			polyline.WithRenderAssetsOptions(render_asset.WithReleaser[polyline.Polyline](func(*polyline.GpuPolyline) {})),
		)),
	)
	e := NewEngine(append([]EngineBuilderOption{WithScene(s), WithRenderer(r)}, opts...)...).(*engine)
	return e, backend
}

func TestTickThenRenderDrawsVisibleLine(t *testing.T) {
	e, backend := newHeadlessEngine(t)
	s := e.Scene()
	s.With(func(w *world.World) {
		h := s.Polylines().Add(polyline.FromPoints(mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{1, 0, 0}))
		b := polyline.NewBundle(h, asset.Handle[struct{}]{})
		b.Transform = common.TransformFromTranslation(0, 0, -5)
		b.Spawn(w)
	})

	var ticks int
	e.SetTickCallback(func(float32) { ticks++ })
	var rendered []renderer.FrameStats
	e.SetRenderCallback(func(stats renderer.FrameStats) { rendered = append(rendered, stats) })

	e.pendingResize.Store(&[2]int{640, 480})
	e.tick(1.0 / 60)
	assert.Equal(t, 1, ticks)

	stats, ok := e.renderOnce()
	require.True(t, ok)
	assert.Equal(t, [][2]int{{640, 480}}, backend.sizes)
	assert.Equal(t, view.TargetSize{Width: 640, Height: 480}, world.MustResource[view.TargetSize](s.World()))
	assert.Equal(t, 1, stats.Views)
	assert.Equal(t, 1, stats.Drawn)
	assert.Equal(t, 2, stats.Instances)
	assert.Equal(t, []renderer.FrameStats{stats}, rendered)
	assert.Equal(t, 1, backend.presents)

	_, _ = e.renderOnce()
	assert.Len(t, backend.sizes, 1, "resize applied once")
}

func TestInactiveSceneIsSkipped(t *testing.T) {
	e, backend := newHeadlessEngine(t)
	e.Scene().SetActive(false)

	var ticks int
	e.SetTickCallback(func(float32) { ticks++ })
	e.tick(0.1)
	assert.Equal(t, 1, ticks, "the callback runs without a scene update")

	_, ok := e.renderOnce()
	assert.False(t, ok)
	assert.Zero(t, backend.presents)
}

func TestEngineOptions(t *testing.T) {
	e, _ := newHeadlessEngine(t, WithTickRate(120), WithRenderFrameLimit(30), WithProfiling(true))
	assert.Equal(t, int64(8333333), e.engineTickRate.Nanoseconds())
	assert.Equal(t, int64(33333333), e.renderFrameLimit.Nanoseconds())
	assert.True(t, e.profilingEnabled.Load())

	e.DisableProfiler()
	assert.False(t, e.profilingEnabled.Load())
	e.SetTickRate(0)
	assert.Equal(t, int64(16666666), e.engineTickRate.Nanoseconds())
	e.SetRenderFrameLimit(0)
	assert.Zero(t, e.renderFrameLimit)

	assert.Panics(t, func() { NewEngine() })
	assert.Panics(t, func() { e.Run() })
}

func TestQuitIsIdempotent(t *testing.T) {
	e, _ := newHeadlessEngine(t)
	e.Quit()
	e.Quit()
	select {
	case <-e.quitChannel:
	default:
		t.Fatal("quit channel still open")
	}
}
