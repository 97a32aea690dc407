package polyline

import (
	"fmt"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-polyline/engine/asset"
	"github.com/Carmen-Shannon/oxy-polyline/engine/render_asset"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/phase"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/render_device"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/schedule"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/uniform"
	"github.com/Carmen-Shannon/oxy-polyline/engine/view"
	"github.com/Carmen-Shannon/oxy-polyline/engine/world"
	"github.com/cogentcore/webgpu/wgpu"
)

// System names registered by the plugin.
const (
	SystemExtract           = "extract_polylines"
	SystemPrepareAssets     = "prepare_polylines"
	SystemPrepareUniforms   = "prepare_polyline_uniforms"
	SystemQueue             = "queue_polylines"
	SystemPolylineBindGroup = "prepare_polyline_bind_group"
	SystemViewBindGroups    = "prepare_polyline_view_bind_groups"
	SystemCleanup           = "release_polyline_resources"
)

// plugin is the implementation of schedule.Plugin for polylines.
type plugin struct {
	shader         shader.Shader
	queue          bool
	framesInFlight int
	extractorOpts  []ExtractorBuilderOption
	assetOpts      []render_asset.RenderAssetsBuilderOption[Polyline, *GpuPolyline]

	releaseGroup  func(bind_group_provider.BindGroupProvider)
	releaseBuffer func(*wgpu.Buffer)
}

var _ schedule.Plugin = &plugin{}

// NewPlugin creates the plugin that registers polyline rendering on a renderer.
//
// Build installs, in the main world, the *asset.Assets[Polyline] store when absent. In the
// render world it installs the RenderAssets mirror, the PolylinePipeline, the
// SpecializedPipelines memo, the polyline uniforms, both bind group resources and the
// DrawFunctionIDs, and registers a draw function on the Opaque3d registry. The default pipeline
// is opaque only; transparent draws belong to the material plugin.
// It reads the render_device.RenderDevice, view.TargetFormats and Opaque3d
// *phase.DrawFunctions resources, and panics when one is missing or the shader is invalid.
// A worker.DynamicWorkerPool resource, when present, runs extraction in chunks.
//
// Parameters:
//   - opts: a variadic list of PluginBuilderOption functions
//
// Returns:
//   - schedule.Plugin: the plugin
func NewPlugin(opts ...PluginBuilderOption) schedule.Plugin {
	p := &plugin{
		queue:          true,
		framesInFlight: 2,
		releaseGroup:   func(g bind_group_provider.BindGroupProvider) { g.Release() },
		releaseBuffer:  func(b *wgpu.Buffer) { b.Release() },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *plugin) Build(s schedule.Schedule, main, render *world.World) {
	if _, ok := world.Resource[*asset.Assets[Polyline]](main); !ok {
		world.SetResource(main, asset.NewAssets[Polyline]())
	}

	device, ok := world.Resource[render_device.RenderDevice](render)
	if !ok {
		panic("polyline: plugin requires a RenderDevice resource")
	}
	formats, ok := world.Resource[view.TargetFormats](render)
	if !ok {
		panic("polyline: plugin requires a TargetFormats resource")
	}
	opaqueDraws, ok := world.Resource[*phase.DrawFunctions[phase.Opaque3d]](render)
	if !ok {
		panic("polyline: plugin requires the Opaque3d draw functions")
	}

	var pipelineOpts []PolylinePipelineBuilderOption
	if p.shader != nil {
		pipelineOpts = append(pipelineOpts, WithShader(p.shader))
	}
	pl, err := NewPolylinePipeline(device, formats, pipelineOpts...)
	if err != nil {
		panic(fmt.Sprintf("polyline: %v", err))
	}

	assetOpts := append([]render_asset.RenderAssetsBuilderOption[Polyline, *GpuPolyline]{
		render_asset.WithFramesInFlight[Polyline, *GpuPolyline](p.framesInFlight),
	}, p.assetOpts...)
	renderAssets := NewPolylineRenderAssets(assetOpts...)
	extractorOpts := p.extractorOpts
	if pool, ok := world.Resource[worker.DynamicWorkerPool](render); ok {
		extractorOpts = append([]ExtractorBuilderOption{WithExtractionPool(pool)}, extractorOpts...)
	}
	extractor := NewExtractor(extractorOpts...)
	uniforms := uniform.NewComponentUniforms[PolylineUniform]("Polyline Uniforms", device.Limits().MinUniformBufferOffsetAlignment)

	world.SetResource(render, pl)
	world.SetResource(render, renderAssets)
	world.SetResource(render, extractor)
	world.SetResource(render, uniforms)
	world.SetResource(render, NewPolylineBindGroup())
	world.SetResource(render, NewViewBindGroups())
	world.SetResource(render, pipeline.NewSpecializedRenderPipelines[PolylinePipelineKey]())
	world.SetResource(render, DrawFunctionIDs{
		Opaque: opaqueDraws.Add(DrawPolylineCommands[phase.Opaque3d]()),
	})

	s.AddSystem(schedule.StageExtract, SystemExtract, func(ctx *schedule.Context) error {
		if assets, ok := world.Resource[*asset.Assets[Polyline]](ctx.Main); ok {
			renderAssets.Extract(assets)
		}
		extractor.Extract(ctx.Main, ctx.Commands)
		return nil
	})
	s.AddSystem(schedule.StagePrepareAssets, SystemPrepareAssets, func(ctx *schedule.Context) error {
		_, err := renderAssets.Prepare(ctx.Device, ctx.Frame)
		renderAssets.Retire(ctx.Frame)
		return err
	})
	s.AddSystem(schedule.StagePrepare, SystemPrepareUniforms, func(ctx *schedule.Context) error {
		return uniform.PrepareComponentUniforms[PolylineUniform](ctx.Render, ctx.Device)
	})
	if p.queue {
		s.AddSystem(schedule.StageQueue, SystemQueue, func(ctx *schedule.Context) error {
			_, err := QueuePolylines(ctx.Render, ctx.Pipelines)
			return err
		})
	}
	s.AddSystem(schedule.StagePrepareBindGroups, SystemPolylineBindGroup, func(ctx *schedule.Context) error {
		return PreparePolylineBindGroup(ctx.Render, ctx.Device)
	})
	s.AddSystem(schedule.StagePrepareBindGroups, SystemViewBindGroups, func(ctx *schedule.Context) error {
		return PrepareViewBindGroups(ctx.Render, ctx.Device)
	})
	s.AddSystem(schedule.StageCleanup, SystemCleanup, func(ctx *schedule.Context) error {
		for _, g := range world.MustResource[*PolylineBindGroup](ctx.Render).DrainRetired() {
			p.releaseGroup(g)
		}
		for _, g := range world.MustResource[*ViewBindGroups](ctx.Render).DrainRetired() {
			p.releaseGroup(g)
		}
		for _, b := range uniforms.Uniforms.DrainRetired() {
			p.releaseBuffer(b)
		}
		return nil
	})
}
