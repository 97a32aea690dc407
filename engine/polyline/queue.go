package polyline

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-polyline/engine/asset"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/phase"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-polyline/engine/view"
	"github.com/Carmen-Shannon/oxy-polyline/engine/world"
)

// DrawFunctionIDs is the render-world resource naming the draw function the plugin
// registered for polylines without a material. Those always draw in the opaque phase.
type DrawFunctionIDs struct {
	Opaque phase.DrawFunctionID
}

// SpecializedPipelines is the render-world resource memoizing polyline pipeline variants.
type SpecializedPipelines = pipeline.SpecializedRenderPipelines[PolylinePipelineKey]

// ViewKey returns the key bits a view contributes: its sample count and HDR flag.
//
// Parameters:
//   - v: the view
//   - msaa: the main target's sample setting
//
// Returns:
//   - PolylinePipelineKey: the view part of the key
func ViewKey(v view.ExtractedView, msaa view.Msaa) PolylinePipelineKey {
	return FromMSAASamples(msaa.SampleCount()).Union(FromHDR(v.Hdr))
}

// QueuePolylines adds every extracted polyline to the opaque phase of every view with the
// default pipeline specialized for that view.
//
// Parameters:
//   - render: the render world
//   - cache: the pipeline cache variants are queued on
//
// Returns:
//   - int: the number of phase items added across all views
//   - error: an error if a resource installed by the plugin is missing
func QueuePolylines(render *world.World, cache pipeline.PipelineCache) (int, error) {
	pl, ok := world.Resource[PolylinePipeline](render)
	if !ok {
		return 0, errors.New("polyline: no PolylinePipeline resource")
	}
	specialized, ok := world.Resource[*SpecializedPipelines](render)
	if !ok {
		return 0, errors.New("polyline: no SpecializedPipelines resource")
	}
	draws, ok := world.Resource[DrawFunctionIDs](render)
	if !ok {
		return 0, errors.New("polyline: no DrawFunctionIDs resource")
	}
	msaa, _ := world.Resource[view.Msaa](render)

	handles := world.Query[asset.Handle[Polyline]](render)
	queued := 0
	for _, v := range view.Views(render) {
		id := specialized.Specialize(cache, pl, ViewKey(v.Component, msaa))
		opaque := phase.PhaseOf(render, v.Entity, phase.NewOpaque3dPhase)
		for _, h := range handles {
			u, ok := world.Get[PolylineUniform](render, h.Entity)
			if !ok {
				continue
			}
			opaque.Add(phase.Opaque3d{
				EntityID:   h.Entity,
				PipelineID: id,
				DrawFn:     draws.Opaque,
				Distance:   v.Component.Distance(u.Transform),
			})
			queued++
		}
	}
	return queued, nil
}
