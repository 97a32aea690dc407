package polyline

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-polyline/common"
	"github.com/Carmen-Shannon/oxy-polyline/engine/asset"
	"github.com/Carmen-Shannon/oxy-polyline/engine/camera"
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

type frameHarness struct {
	main     *world.World
	render   *world.World
	device   *devicetest.Device
	cache    pipeline.PipelineCache
	schedule schedule.Schedule
	frame    uint64
}

// newFrameHarness wires the resources a renderer provides and a minimal view plugin around
// the polyline plugin.
func newFrameHarness(t *testing.T, opts ...PluginBuilderOption) *frameHarness {
	t.Helper()
	h := &frameHarness{
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

	defaults := []PluginBuilderOption{
		WithResourceReleasers(func(bind_group_provider.BindGroupProvider) {}, func(*wgpu.Buffer) {}),
		WithRenderAssetsOptions(render_asset.WithReleaser[Polyline](noRelease)),
	}
	NewPlugin(append(defaults, opts...)...).Build(h.schedule, h.main, h.render)
	return h
}

func (h *frameHarness) spawnCamera(z float32, opts ...camera.CameraBuilderOption) world.EntityID {
	id := h.main.Spawn()
	world.Insert(h.main, id, camera.NewCamera(opts...))
	world.Insert(h.main, id, transform.GlobalFromTransform(common.TransformFromTranslation(0, 0, z)))
	return id
}

func (h *frameHarness) spawnLine(points ...mgl32.Vec3) (world.EntityID, asset.Handle[Polyline]) {
	assets := world.MustResource[*asset.Assets[Polyline]](h.main)
	handle := assets.Add(FromPoints(points...))
	b := NewBundle[struct{}](handle, asset.Handle[struct{}]{})
	b.ViewVisibility = true
	return b.Spawn(h.main), handle
}

func (h *frameHarness) runFrame(t *testing.T) {
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

func TestPluginRendersFrame(t *testing.T) {
	h := newFrameHarness(t)
	h.spawnCamera(5)
	line, handle := h.spawnLine(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{1, 1, 0})
	h.runFrame(t)

	views := view.Views(h.render)
	require.Len(t, views, 1)
	opaque := phase.PhaseOf(h.render, views[0].Entity, phase.NewOpaque3dPhase)
	require.Equal(t, 1, opaque.Len())
	assert.Equal(t, line, opaque.Items()[0].Entity())
	assert.InDelta(t, 5, opaque.Items()[0].SortKey(), 1e-5)

	pass := &devicetest.Pass{}
	draws := world.MustResource[*phase.DrawFunctions[phase.Opaque3d]](h.render)
	stats := opaque.Render(&phase.RenderContext{World: h.render, View: views[0].Entity, Pipelines: h.cache}, pass, draws)
	assert.Equal(t, phase.RenderStats{Drawn: 1}, stats)

	require.Len(t, pass.BindGroups, 2)
	assert.Equal(t, uint32(0), pass.BindGroups[0].Index)
	assert.Equal(t, uint32(1), pass.BindGroups[1].Index)
	assert.Equal(t, []uint32{0}, pass.BindGroups[1].Offsets)
	assert.Equal(t, []devicetest.Draw{{
		Vertices:  render_device.Range{Start: 0, End: 6},
		Instances: render_device.Range{Start: 0, End: 3},
	}}, pass.Draws)

	ra := world.MustResource[RenderAssets](h.render)
	assert.Equal(t, uint64(1), ra.Generation(handle))

	created, ok := h.device.BufferByLabel(VertexBufferLabel)
	require.True(t, ok)
	assert.Len(t, created.Contents, 4*VertexStride)
}

func TestPluginReuploadsModifiedPolyline(t *testing.T) {
	h := newFrameHarness(t)
	h.spawnCamera(5)
	_, handle := h.spawnLine(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0})
	h.runFrame(t)

	assets := world.MustResource[*asset.Assets[Polyline]](h.main)
	assets.Mutate(handle, func(p *Polyline) { p.AddVertex(mgl32.Vec3{2, 0, 0}, false) })
	h.runFrame(t)

	ra := world.MustResource[RenderAssets](h.render)
	assert.Equal(t, uint64(2), ra.Generation(handle))
	gpu, ok := ra.Get(handle)
	require.True(t, ok)
	assert.Equal(t, uint32(3), gpu.VertexCount)
}

func TestPluginSkipsHiddenPolylines(t *testing.T) {
	h := newFrameHarness(t)
	h.spawnCamera(5)
	hidden, _ := h.spawnLine(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0})
	world.Insert(h.main, hidden, visibility.ViewVisibility(false))
	h.runFrame(t)

	views := view.Views(h.render)
	require.Len(t, views, 1)
	assert.Equal(t, 0, phase.PhaseOf(h.render, views[0].Entity, phase.NewOpaque3dPhase).Len())
	assert.False(t, world.Has[PolylineUniform](h.render, hidden))
}

func TestQueuePolylinesSpecializesPerView(t *testing.T) {
	h := newFrameHarness(t)
	world.SetResource(h.render, view.Msaa{Samples: 4})
	h.spawnCamera(5, camera.WithOrder(0))
	h.spawnCamera(10, camera.WithOrder(1), camera.WithHdr())
	h.spawnLine(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0})
	h.spawnLine(mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	h.runFrame(t)

	specialized := world.MustResource[*SpecializedPipelines](h.render)
	assert.Equal(t, 2, specialized.Len())

	views := view.Views(h.render)
	require.Len(t, views, 2)
	ldr := phase.PhaseOf(h.render, views[0].Entity, phase.NewOpaque3dPhase)
	hdr := phase.PhaseOf(h.render, views[1].Entity, phase.NewOpaque3dPhase)
	require.Equal(t, 2, ldr.Len())
	require.Equal(t, 2, hdr.Len())

	desc, ok := h.cache.Descriptor(hdr.Items()[0].Pipeline())
	require.True(t, ok)
	assert.Equal(t, view.HdrTextureFormat, desc.Fragment.Targets[0].Format)
	assert.Equal(t, uint32(4), desc.Multisample.Count)

	assert.Equal(t, ViewKey(views[1].Component, view.Msaa{Samples: 4}), PolylinePipelineKeyHDR|FromMSAASamples(4))
}

func TestQueuePolylinesRequiresResources(t *testing.T) {
	_, err := QueuePolylines(world.NewWorld("render"), pipeline.NewPipelineCache())
	assert.Error(t, err)
}

func TestPluginSetup(t *testing.T) {
	h := newFrameHarness(t)
	assert.Equal(t, []string{SystemQueue}, h.schedule.Systems(schedule.StageQueue))
	assert.Equal(t, []string{SystemPolylineBindGroup, SystemViewBindGroups}, h.schedule.Systems(schedule.StagePrepareBindGroups))
	_, ok := world.Resource[DrawFunctionIDs](h.render)
	assert.True(t, ok)
	_, ok = world.MustResource[*phase.DrawFunctions[phase.Transparent3d]](h.render).Get(0)
	assert.False(t, ok, "the default pipeline registers no transparent draw")
	_, ok = world.Resource[Extractor](h.render)
	assert.True(t, ok)

	noQueue := newFrameHarness(t, WithoutQueue())
	assert.Empty(t, noQueue.schedule.Systems(schedule.StageQueue))

	assert.Panics(t, func() {
		NewPlugin().Build(schedule.NewSchedule(), world.NewWorld("main"), world.NewWorld("render"))
	})
}

func TestPluginExtractsOnRenderWorldPool(t *testing.T) {
	render := world.NewWorld("render")
	world.SetResource[render_device.RenderDevice](render, devicetest.NewDevice())
	world.SetResource(render, testFormats)
	world.SetResource(render, phase.NewDrawFunctions[phase.Opaque3d]())
	world.SetResource(render, phase.NewDrawFunctions[phase.Transparent3d]())
	pool := worker.NewDynamicWorkerPool(2, 8, 1*time.Second)
	world.SetResource[worker.DynamicWorkerPool](render, pool)

	NewPlugin().Build(schedule.NewSchedule(), world.NewWorld("main"), render)
	e, ok := world.MustResource[Extractor](render).(*extractor)
	require.True(t, ok)
	assert.True(t, e.hasPool)
	assert.Equal(t, pool, e.pool)
}

func TestUpdateAabbs(t *testing.T) {
	main := world.NewWorld("main")
	assets := asset.NewAssets[Polyline]()
	full := NewBundle[struct{}](assets.Add(FromPoints(mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{1, 2, 0})), asset.Handle[struct{}]{}).Spawn(main)
	empty := NewBundle[struct{}](assets.Add(NewPolyline(WithCapacity(2))), asset.Handle[struct{}]{}).Spawn(main)
	missing := main.Spawn()
	world.Insert(main, missing, asset.Handle[Polyline]{})
	world.Insert(main, missing, common.Aabb{})

	assert.Equal(t, 1, UpdateAabbs(main, assets))
	aabb, ok := world.Get[common.Aabb](main, full)
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, aabb.Center)
	assert.Equal(t, mgl32.Vec3{1, 1, 0}, aabb.HalfExtents)
	assert.False(t, world.Has[common.Aabb](main, empty))
	assert.False(t, world.Has[common.Aabb](main, missing))
}

func TestBundleSpawn(t *testing.T) {
	w := world.NewWorld("main")
	materials := asset.NewAssets[string]()
	polylines := asset.NewAssets[Polyline]()
	ph := polylines.Add(NewPolyline(WithCapacity(4)))

	bare := NewBundle[string](ph, asset.Handle[string]{}).Spawn(w)
	assert.False(t, world.Has[asset.Handle[string]](w, bare))
	assert.True(t, world.Has[asset.Handle[Polyline]](w, bare))
	iv, _ := world.Get[visibility.InheritedVisibility](w, bare)
	assert.True(t, bool(iv))
	vv, _ := world.Get[visibility.ViewVisibility](w, bare)
	assert.False(t, bool(vv))

	mh := materials.Add(new(string))
	withMaterial := NewBundle(ph, mh).Spawn(w)
	got, ok := world.Get[asset.Handle[string]](w, withMaterial)
	require.True(t, ok)
	assert.True(t, got.Same(mh))
}
