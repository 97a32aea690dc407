package material

import (
	"github.com/Carmen-Shannon/oxy-polyline/engine/asset"
	"github.com/Carmen-Shannon/oxy-polyline/engine/polyline"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/phase"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/render_device"
	"github.com/Carmen-Shannon/oxy-polyline/engine/world"
)

// SetMaterialBindGroup binds the item entity's prepared material group at Index. It fails
// while the material has not been prepared.
type SetMaterialBindGroup[P phase.PhaseItem] struct {
	Index uint32
}

func (c SetMaterialBindGroup[P]) Render(ctx *phase.RenderContext, item P, pass render_device.TrackedRenderPass) phase.RenderCommandResult {
	materials, ok := world.Resource[MaterialAssets](ctx.World)
	if !ok {
		return phase.Failure
	}
	handle, ok := world.Get[asset.Handle[PolylineMaterial]](ctx.World, item.Entity())
	if !ok {
		return phase.Failure
	}
	gpu, ok := materials.Get(handle)
	if !ok || gpu.BindGroup() == nil {
		return phase.Failure
	}
	pass.SetBindGroup(c.Index, gpu.BindGroup(), nil)
	return phase.Success
}

// DrawMaterialPolylineCommands is the command chain of material-shaded polylines: the item
// pipeline, the view group at 0, the material group at 1, the polyline group at 2 and the draw.
func DrawMaterialPolylineCommands[P phase.PhaseItem]() phase.RenderCommand[P] {
	return phase.Chain[P](
		phase.SetItemPipeline[P]{},
		phase.SetViewBindGroup[P, polyline.PolylineViewBindGroup]{Index: 0},
		SetMaterialBindGroup[P]{Index: 1},
		polyline.SetPolylineBindGroup[P]{Index: 2},
		polyline.DrawPolyline[P]{},
	)
}
