package phase

import (
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/render_device"
	"github.com/Carmen-Shannon/oxy-polyline/engine/view"
	"github.com/Carmen-Shannon/oxy-polyline/engine/world"
	"github.com/cogentcore/webgpu/wgpu"
)

// BindGroupSource is a component that owns a bind group.
type BindGroupSource interface {
	BindGroup() *wgpu.BindGroup
}

// SetItemPipeline binds the item's cached pipeline. It fails while the pipeline is not ready.
type SetItemPipeline[P PhaseItem] struct{}

func (SetItemPipeline[P]) Render(ctx *RenderContext, item P, pass render_device.TrackedRenderPass) RenderCommandResult {
	if ctx.Pipelines == nil {
		return Failure
	}
	p, ok := ctx.Pipelines.RenderPipeline(item.Pipeline())
	if !ok {
		return Failure
	}
	pass.SetPipeline(p)
	return Success
}

// SetViewBindGroup binds the view's G component at Index with the view's uniform offset as
// its single dynamic offset.
type SetViewBindGroup[P PhaseItem, G BindGroupSource] struct {
	Index uint32
}

func (c SetViewBindGroup[P, G]) Render(ctx *RenderContext, _ P, pass render_device.TrackedRenderPass) RenderCommandResult {
	group, ok := world.Get[G](ctx.World, ctx.View)
	if !ok || group.BindGroup() == nil {
		return Failure
	}
	offset, ok := world.Get[view.ViewUniformOffset](ctx.World, ctx.View)
	if !ok {
		return Failure
	}
	pass.SetBindGroup(c.Index, group.BindGroup(), []uint32{offset.Offset})
	return Success
}
