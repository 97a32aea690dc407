package material

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-polyline/engine/asset"
	"github.com/Carmen-Shannon/oxy-polyline/engine/polyline"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/phase"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-polyline/engine/view"
	"github.com/Carmen-Shannon/oxy-polyline/engine/world"
)

// DrawFunctionIDs is the render-world resource naming the draw functions registered for
// material-shaded polylines.
type DrawFunctionIDs struct {
	Opaque      phase.DrawFunctionID
	Transparent phase.DrawFunctionID
}

// SpecializedPipelines memoizes material pipeline variants. It is a distinct resource from
// polyline.SpecializedPipelines because both families share the key type.
type SpecializedPipelines struct {
	*pipeline.SpecializedRenderPipelines[polyline.PolylinePipelineKey]
}

// NewSpecializedPipelines creates an empty memo.
func NewSpecializedPipelines() *SpecializedPipelines {
	return &SpecializedPipelines{SpecializedRenderPipelines: pipeline.NewSpecializedRenderPipelines[polyline.PolylinePipelineKey]()}
}

// QueueStats counts the phase items one QueuePolylines call added.
type QueueStats struct {
	Opaque      int
	Transparent int
	// Default counts polylines without a material, drawn with the core pipeline.
	Default int
	// Waiting counts polylines whose material has not been prepared yet.
	Waiting int
}

type queueResources struct {
	core      polyline.PolylinePipeline
	coreSpec  *polyline.SpecializedPipelines
	coreDraws polyline.DrawFunctionIDs
	material  MaterialPipeline
	spec      *SpecializedPipelines
	draws     DrawFunctionIDs
	materials MaterialAssets
	msaa      view.Msaa
}

func loadQueueResources(render *world.World) (queueResources, error) {
	var r queueResources
	var ok bool
	if r.material, ok = world.Resource[MaterialPipeline](render); !ok {
		return r, errors.New("material: no MaterialPipeline resource")
	}
	if r.spec, ok = world.Resource[*SpecializedPipelines](render); !ok {
		return r, errors.New("material: no SpecializedPipelines resource")
	}
	if r.draws, ok = world.Resource[DrawFunctionIDs](render); !ok {
		return r, errors.New("material: no DrawFunctionIDs resource")
	}
	if r.materials, ok = world.Resource[MaterialAssets](render); !ok {
		return r, errors.New("material: no MaterialAssets resource")
	}
	if r.coreSpec, ok = world.Resource[*polyline.SpecializedPipelines](render); !ok {
		return r, errors.New("material: no polyline SpecializedPipelines resource")
	}
	if r.coreDraws, ok = world.Resource[polyline.DrawFunctionIDs](render); !ok {
		return r, errors.New("material: no polyline DrawFunctionIDs resource")
	}
	r.core = r.material.Core()
	r.msaa, _ = world.Resource[view.Msaa](render)
	return r, nil
}

// QueuePolylines adds every extracted polyline to the phases of every view. Polylines with a
// prepared material use the material pipeline keyed by the view and the material: transparent
// materials go to the Transparent3d phase, the rest to Opaque3d. Polylines without a material
// go to Opaque3d with the core pipeline. Polylines whose material is not prepared yet are
// skipped for the frame.
//
// Parameters:
//   - render: the render world
//   - cache: the pipeline cache variants are queued on
//
// Returns:
//   - QueueStats: the items added across all views
//   - error: an error if a resource installed by the plugins is missing
func QueuePolylines(render *world.World, cache pipeline.PipelineCache) (QueueStats, error) {
	var stats QueueStats
	r, err := loadQueueResources(render)
	if err != nil {
		return stats, err
	}

	handles := world.Query[asset.Handle[polyline.Polyline]](render)
	for _, v := range view.Views(render) {
		viewKey := polyline.ViewKey(v.Component, r.msaa)
		opaque := phase.PhaseOf(render, v.Entity, phase.NewOpaque3dPhase)
		transparent := phase.PhaseOf(render, v.Entity, phase.NewTransparent3dPhase)

		for _, h := range handles {
			u, ok := world.Get[polyline.PolylineUniform](render, h.Entity)
			if !ok {
				continue
			}
			distance := v.Component.Distance(u.Transform)

			mh, ok := world.Get[asset.Handle[PolylineMaterial]](render, h.Entity)
			if !ok {
				opaque.Add(phase.Opaque3d{
					EntityID:   h.Entity,
					PipelineID: r.coreSpec.Specialize(cache, r.core, viewKey),
					DrawFn:     r.coreDraws.Opaque,
					Distance:   distance,
				})
				stats.Default++
				continue
			}
			gpu, ok := r.materials.Get(mh)
			if !ok {
				stats.Waiting++
				continue
			}
			id := r.spec.Specialize(cache, r.material, viewKey.Union(gpu.Key))
			if gpu.IsTransparent() {
				transparent.Add(phase.Transparent3d{
					EntityID:   h.Entity,
					PipelineID: id,
					DrawFn:     r.draws.Transparent,
					Distance:   distance,
				})
				stats.Transparent++
				continue
			}
			opaque.Add(phase.Opaque3d{
				EntityID:   h.Entity,
				PipelineID: id,
				DrawFn:     r.draws.Opaque,
				Distance:   distance,
			})
			stats.Opaque++
		}
	}
	return stats, nil
}
