package material

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-polyline/common"
	"github.com/Carmen-Shannon/oxy-polyline/engine/asset"
	"github.com/Carmen-Shannon/oxy-polyline/engine/camera"
	"github.com/Carmen-Shannon/oxy-polyline/engine/polyline"
	"github.com/Carmen-Shannon/oxy-polyline/engine/render_asset"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/phase"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/render_device"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/render_device/devicetest"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/schedule"
	"github.com/Carmen-Shannon/oxy-polyline/engine/transform"
	"github.com/Carmen-Shannon/oxy-polyline/engine/view"
	"github.com/Carmen-Shannon/oxy-polyline/engine/visibility"
	"github.com/Carmen-Shannon/oxy-polyline/engine/world"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	main     *world.World
	render   *world.World
	device   *devicetest.Device
	cache    pipeline.PipelineCache
	schedule schedule.Schedule
	frame    uint64
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		main:     world.NewWorld("main"),
		render:   world.NewWorld("render"),
		device:   devicetest.NewDevice(),
		cache:    pipeline.NewPipelineCache(),
		schedule: schedule.NewSchedule(),
	}
	world.SetResource[render_device.RenderDevice](h.render, h.device)
	world.SetResource(h.render, testFormats)
	world.SetResource(h.render, phase.NewDrawFunctions[phase.Opaque3d]())
	world.SetResource(h.render, phase.NewDrawFunctions[phase.Transparent3d]())
	world.SetResource(h.render, view.NewViewUniforms(256))
	world.SetResource(h.main, view.TargetSize{Width: 800, Height: 600})

	h.schedule.AddSystem(schedule.StageExtract, "extract_cameras", func(ctx *schedule.Context) error {
		view.ExtractCameras(ctx.Main, ctx.Render)
		return nil
	})
	h.schedule.AddSystem(schedule.StagePrepare, "prepare_views", func(ctx *schedule.Context) error {
		return view.PrepareViewUniforms(ctx.Render, ctx.Device)
	})

	NewPlugin(
		WithCoreOptions(
			polyline.WithResourceReleasers(func(bind_group_provider.BindGroupProvider) {}, func(*wgpu.Buffer) {}),
			polyline.WithRenderAssetsOptions(render_asset.WithReleaser[polyline.Polyline](func(*polyline.GpuPolyline) {})),
		),
		WithMaterialAssetsOptions(render_asset.WithReleaser[PolylineMaterial](noRelease)),
	).Build(h.schedule, h.main, h.render)

	cam := h.main.Spawn()
	world.Insert(h.main, cam, camera.NewCamera())
	world.Insert(h.main, cam, transform.GlobalFromTransform(common.TransformFromTranslation(0, 0, 10)))
	return h
}

func (h *harness) spawn(z float32, m *PolylineMaterial) world.EntityID {
	lines := world.MustResource[*asset.Assets[polyline.Polyline]](h.main)
	var mh asset.Handle[PolylineMaterial]
	if m != nil {
		mh = world.MustResource[*asset.Assets[PolylineMaterial]](h.main).Add(m)
	}
	b := polyline.NewBundle(lines.Add(polyline.FromPoints(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0})), mh)
	b.GlobalTransform = transform.GlobalFromTransform(common.TransformFromTranslation(0, 0, z))
	b.ViewVisibility = true
	return b.Spawn(h.main)
}

func (h *harness) runFrame(t *testing.T) {
	t.Helper()
	h.frame++
	require.NoError(t, h.schedule.Run(&schedule.Context{
		Main:      h.main,
		Render:    h.render,
		Device:    h.device,
		Pipelines: h.cache,
		Frame:     h.frame,
		Commands:  world.NewCommands(),
	}))
	require.NoError(t, h.cache.ProcessQueue(h.device))
}

func TestPluginQueuesByMaterial(t *testing.T) {
	h := newHarness(t)
	plain := h.spawn(0, nil)
	solid := h.spawn(1, NewPolylineMaterial(WithColor(mgl32.Vec4{1, 0, 0, 1})))
	glass := h.spawn(2, NewPolylineMaterial(WithColor(mgl32.Vec4{0, 0, 1, 0.5}), WithPerspective()))
	h.runFrame(t)

	views := view.Views(h.render)
	require.Len(t, views, 1)
	v := views[0].Entity
	opaque := phase.PhaseOf(h.render, v, phase.NewOpaque3dPhase)
	transparent := phase.PhaseOf(h.render, v, phase.NewTransparent3dPhase)
	require.Equal(t, 2, opaque.Len())
	require.Equal(t, 1, transparent.Len())
	assert.Equal(t, glass, transparent.Items()[0].Entity())
	assert.InDelta(t, 8, transparent.Items()[0].SortKey(), 1e-5)

	byEntity := map[world.EntityID]phase.Opaque3d{}
	for _, item := range opaque.Items() {
		byEntity[item.Entity()] = item
	}
	coreDesc, ok := h.cache.Descriptor(byEntity[plain].PipelineID)
	require.True(t, ok)
	assert.True(t, coreDesc.UsesShader(polyline.ShaderKey))
	assert.Len(t, coreDesc.Layout, 2)

	solidDesc, ok := h.cache.Descriptor(byEntity[solid].PipelineID)
	require.True(t, ok)
	assert.True(t, solidDesc.UsesShader(ShaderKey))
	assert.Equal(t, "opaque_polyline_pipeline", solidDesc.Label)

	glassDesc, ok := h.cache.Descriptor(transparent.Items()[0].PipelineID)
	require.True(t, ok)
	assert.Equal(t, "transparent_polyline_pipeline", glassDesc.Label)
	assert.False(t, glassDesc.DepthStencil.DepthWriteEnabled)

	ctx := &phase.RenderContext{World: h.render, View: v, Pipelines: h.cache}
	pass := &devicetest.Pass{}
	opaqueStats := opaque.Render(ctx, pass, world.MustResource[*phase.DrawFunctions[phase.Opaque3d]](h.render))
	assert.Equal(t, phase.RenderStats{Drawn: 2}, opaqueStats)
	transparentStats := transparent.Render(ctx, pass, world.MustResource[*phase.DrawFunctions[phase.Transparent3d]](h.render))
	assert.Equal(t, phase.RenderStats{Drawn: 1}, transparentStats)
	assert.Len(t, pass.Draws, 3)

	// core chain binds groups 0 and 1, material chains 0, 1 and 2
	assert.Len(t, pass.BindGroups, 2+3+3)
}

func TestPluginSetup(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, []string{SystemQueue}, h.schedule.Systems(schedule.StageQueue), "core queue disabled")
	assert.Contains(t, h.schedule.Systems(schedule.StageExtract), polyline.SystemExtract)
	assert.Contains(t, h.schedule.Systems(schedule.StageExtract), SystemExtract)
	_, ok := world.Resource[*asset.Assets[PolylineMaterial]](h.main)
	assert.True(t, ok)

	assert.Panics(t, func() {
		NewPlugin().Build(schedule.NewSchedule(), world.NewWorld("main"), world.NewWorld("render"))
	})
}

func TestQueuePolylinesWaitsForMaterial(t *testing.T) {
	h := newHarness(t)
	h.spawn(0, NewPolylineMaterial())
	h.runFrame(t)

	// added after the frame's extract, so never prepared
	pending := h.render.Spawn()
	world.Insert(h.render, pending, asset.Handle[polyline.Polyline]{})
	world.Insert(h.render, pending, polyline.PolylineUniform{Transform: mgl32.Ident4()})
	unprepared := world.MustResource[*asset.Assets[PolylineMaterial]](h.main).Add(NewPolylineMaterial())
	world.Insert(h.render, pending, unprepared.Weak())

	stats, err := QueuePolylines(h.render, h.cache)
	require.NoError(t, err)
	assert.Equal(t, QueueStats{Opaque: 1, Waiting: 1}, stats)

	_, err = QueuePolylines(world.NewWorld("render"), h.cache)
	assert.Error(t, err)
}

func TestExtractMaterialHandles(t *testing.T) {
	h := newHarness(t)
	shown := h.spawn(0, NewPolylineMaterial())
	hidden := h.spawn(0, NewPolylineMaterial())
	world.Insert(h.main, hidden, visibility.InheritedVisibility(false))
	noLine := h.main.Spawn()
	world.Insert(h.main, noLine, world.MustResource[*asset.Assets[PolylineMaterial]](h.main).Add(NewPolylineMaterial()))

	cmds := world.NewCommands()
	assert.Equal(t, 1, ExtractMaterialHandles(h.main, cmds))
	cmds.Apply(h.render)
	got, ok := world.Get[asset.Handle[PolylineMaterial]](h.render, shown)
	require.True(t, ok)
	assert.True(t, got.IsWeak())
	assert.False(t, world.Has[asset.Handle[PolylineMaterial]](h.render, hidden))
	assert.False(t, world.Has[asset.Handle[PolylineMaterial]](h.render, noLine))
}
