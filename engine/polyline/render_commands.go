package polyline

import (
	"github.com/Carmen-Shannon/oxy-polyline/engine/asset"
	"github.com/Carmen-Shannon/oxy-polyline/engine/render_asset"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/phase"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/render_device"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/uniform"
	"github.com/Carmen-Shannon/oxy-polyline/engine/world"
	"github.com/cogentcore/webgpu/wgpu"
)

// quadVertices is the vertex range of the two triangles the shader expands each segment into.
var quadVertices = render_device.Range{Start: 0, End: 6}

// RenderAssets is the render-world resource mirroring polyline assets.
type RenderAssets = render_asset.RenderAssets[Polyline, *GpuPolyline]

// SetPolylineBindGroup binds the polyline instance group at Index with the item entity's
// PolylineUniform offset. It fails until the group and the entity's offset exist.
type SetPolylineBindGroup[P phase.PhaseItem] struct {
	Index uint32
}

func (c SetPolylineBindGroup[P]) Render(ctx *phase.RenderContext, item P, pass render_device.TrackedRenderPass) phase.RenderCommandResult {
	groups, ok := world.Resource[*PolylineBindGroup](ctx.World)
	if !ok {
		return phase.Failure
	}
	group := groups.BindGroup()
	if group == nil {
		return phase.Failure
	}
	index, ok := world.Get[uniform.DynamicUniformIndex[PolylineUniform]](ctx.World, item.Entity())
	if !ok {
		return phase.Failure
	}
	pass.SetBindGroup(c.Index, group, []uint32{index.Offset()})
	return phase.Success
}

// DrawPolyline draws the item entity's prepared polyline. It fails while the asset has not
// been prepared.
type DrawPolyline[P phase.PhaseItem] struct{}

func (DrawPolyline[P]) Render(ctx *phase.RenderContext, item P, pass render_device.TrackedRenderPass) phase.RenderCommandResult {
	assets, ok := world.Resource[RenderAssets](ctx.World)
	if !ok {
		return phase.Failure
	}
	handle, ok := world.Get[asset.Handle[Polyline]](ctx.World, item.Entity())
	if !ok {
		return phase.Failure
	}
	gpu, ok := assets.Get(handle)
	if !ok {
		return phase.Failure
	}
	DrawGpuPolyline(gpu, pass)
	return phase.Success
}

// DrawGpuPolyline binds the vertex buffer of g at slot 0 and issues one six-vertex instanced
// draw per non-sentinel range, with the range as the instance range.
//
// Parameters:
//   - g: the prepared polyline
//   - pass: the pass to draw into
//
// Returns:
//   - int: the number of draws issued
func DrawGpuPolyline(g *GpuPolyline, pass render_device.TrackedRenderPass) int {
	pass.SetVertexBuffer(0, g.VertexBuffer, 0, wgpu.WholeSize)
	draws := 0
	for _, r := range g.IndexRanges {
		if r.IsEmpty() {
			continue
		}
		pass.Draw(quadVertices, render_device.Range{Start: r.Start, End: r.End})
		draws++
	}
	return draws
}

// DrawPolylineCommands is the command chain of polylines drawn without a material: the item
// pipeline, the view group at 0, the polyline group at 1 and the draw.
func DrawPolylineCommands[P phase.PhaseItem]() phase.RenderCommand[P] {
	return phase.Chain[P](
		phase.SetItemPipeline[P]{},
		phase.SetViewBindGroup[P, PolylineViewBindGroup]{Index: 0},
		SetPolylineBindGroup[P]{Index: 1},
		DrawPolyline[P]{},
	)
}
