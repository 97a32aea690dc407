package material

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-polyline/engine/asset"
	"github.com/Carmen-Shannon/oxy-polyline/engine/polyline"
	"github.com/Carmen-Shannon/oxy-polyline/engine/render_asset"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/phase"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/render_device"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/schedule"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-polyline/engine/world"
)

// System names registered by the plugin.
const (
	SystemExtract       = "extract_polyline_materials"
	SystemPrepareAssets = "prepare_polyline_materials"
	SystemQueue         = "queue_material_polylines"
)

// plugin is the implementation of schedule.Plugin for polyline materials.
type plugin struct {
	shader         shader.Shader
	framesInFlight int
	coreOpts       []polyline.PluginBuilderOption
	assetOpts      []render_asset.RenderAssetsBuilderOption[PolylineMaterial, *GpuMaterial]
}

var _ schedule.Plugin = &plugin{}

// NewPlugin creates the plugin that renders polylines with materials. It builds the polyline
// core plugin itself with queueing disabled and queues every polyline, with or without a
// material, through QueuePolylines.
//
// Parameters:
//   - opts: a variadic list of PluginBuilderOption functions
//
// Returns:
//   - schedule.Plugin: the plugin
func NewPlugin(opts ...PluginBuilderOption) schedule.Plugin {
	p := &plugin{framesInFlight: 2}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *plugin) Build(s schedule.Schedule, main, render *world.World) {
	coreOpts := append([]polyline.PluginBuilderOption{polyline.WithFramesInFlight(p.framesInFlight)}, p.coreOpts...)
	polyline.NewPlugin(append(coreOpts, polyline.WithoutQueue())...).Build(s, main, render)

	if _, ok := world.Resource[*asset.Assets[PolylineMaterial]](main); !ok {
		world.SetResource(main, asset.NewAssets[PolylineMaterial]())
	}
	device := world.MustResource[render_device.RenderDevice](render)
	core := world.MustResource[polyline.PolylinePipeline](render)

	var pipelineOpts []MaterialPipelineBuilderOption
	if p.shader != nil {
		pipelineOpts = append(pipelineOpts, WithShader(p.shader))
	}
	mp, err := NewMaterialPipeline(device, core, pipelineOpts...)
	if err != nil {
		panic(fmt.Sprintf("material: %v", err))
	}

	assetOpts := append([]render_asset.RenderAssetsBuilderOption[PolylineMaterial, *GpuMaterial]{
		render_asset.WithFramesInFlight[PolylineMaterial, *GpuMaterial](p.framesInFlight),
	}, p.assetOpts...)
	materials := NewMaterialAssets(mp.MaterialLayout(), assetOpts...)

	world.SetResource(render, mp)
	world.SetResource(render, materials)
	world.SetResource(render, NewSpecializedPipelines())
	world.SetResource(render, DrawFunctionIDs{
		Opaque:      world.MustResource[*phase.DrawFunctions[phase.Opaque3d]](render).Add(DrawMaterialPolylineCommands[phase.Opaque3d]()),
		Transparent: world.MustResource[*phase.DrawFunctions[phase.Transparent3d]](render).Add(DrawMaterialPolylineCommands[phase.Transparent3d]()),
	})

	s.AddSystem(schedule.StageExtract, SystemExtract, func(ctx *schedule.Context) error {
		if assets, ok := world.Resource[*asset.Assets[PolylineMaterial]](ctx.Main); ok {
			materials.Extract(assets)
		}
		ExtractMaterialHandles(ctx.Main, ctx.Commands)
		return nil
	})
	s.AddSystem(schedule.StagePrepareAssets, SystemPrepareAssets, func(ctx *schedule.Context) error {
		_, err := materials.Prepare(ctx.Device, ctx.Frame)
		materials.Retire(ctx.Frame)
		return err
	})
	s.AddSystem(schedule.StageQueue, SystemQueue, func(ctx *schedule.Context) error {
		_, err := QueuePolylines(ctx.Render, ctx.Pipelines)
		return err
	})
}
