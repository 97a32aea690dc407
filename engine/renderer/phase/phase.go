// Package phase holds the per-view lists of things to draw and the render commands that draw
// them. Queue systems add phase items to each view's RenderPhase; the phase is sorted and
// then rendered by looking up each item's draw function, a chain of render commands.
package phase

import (
	"cmp"
	"slices"

	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/render_device"
	"github.com/Carmen-Shannon/oxy-polyline/engine/world"
)

// DrawFunctionID identifies a draw function registered on a DrawFunctions registry.
type DrawFunctionID uint32

// PhaseItem is one entity queued for drawing in a view.
type PhaseItem interface {
	// Entity returns the render-world entity the item draws.
	Entity() world.EntityID

	// Pipeline returns the cached pipeline the item is drawn with.
	Pipeline() pipeline.CachedPipelineID

	// DrawFunction returns the draw function that renders the item.
	DrawFunction() DrawFunctionID

	// SortKey returns the item's view-space distance.
	SortKey() float32
}

// Opaque3d is a phase item of the opaque pass. Opaque items are drawn front to back,
// grouped by pipeline.
type Opaque3d struct {
	EntityID   world.EntityID
	PipelineID pipeline.CachedPipelineID
	DrawFn     DrawFunctionID
	Distance   float32
}

func (o Opaque3d) Entity() world.EntityID              { return o.EntityID }
func (o Opaque3d) Pipeline() pipeline.CachedPipelineID { return o.PipelineID }
func (o Opaque3d) DrawFunction() DrawFunctionID        { return o.DrawFn }
func (o Opaque3d) SortKey() float32                    { return o.Distance }

// Transparent3d is a phase item of the transparent pass. Transparent items are drawn back to
// front.
type Transparent3d struct {
	EntityID   world.EntityID
	PipelineID pipeline.CachedPipelineID
	DrawFn     DrawFunctionID
	Distance   float32
}

func (t Transparent3d) Entity() world.EntityID              { return t.EntityID }
func (t Transparent3d) Pipeline() pipeline.CachedPipelineID { return t.PipelineID }
func (t Transparent3d) DrawFunction() DrawFunctionID        { return t.DrawFn }
func (t Transparent3d) SortKey() float32                    { return t.Distance }

// RenderPhase is the list of items of one kind queued for one view this frame. It is stored
// as a pointer component on the view entity.
type RenderPhase[P PhaseItem] struct {
	items   []P
	compare func(a, b P) int
}

// NewRenderPhase creates an empty phase sorted with compare.
func NewRenderPhase[P PhaseItem](compare func(a, b P) int) *RenderPhase[P] {
	return &RenderPhase[P]{compare: compare}
}

// NewOpaque3dPhase creates an opaque phase: items sort by pipeline, then nearest first.
func NewOpaque3dPhase() *RenderPhase[Opaque3d] {
	return NewRenderPhase(func(a, b Opaque3d) int {
		return cmp.Or(
			cmp.Compare(a.PipelineID, b.PipelineID),
			cmp.Compare(a.Distance, b.Distance),
			cmp.Compare(a.EntityID, b.EntityID),
		)
	})
}

// NewTransparent3dPhase creates a transparent phase: items sort farthest first.
func NewTransparent3dPhase() *RenderPhase[Transparent3d] {
	return NewRenderPhase(func(a, b Transparent3d) int {
		return cmp.Or(
			cmp.Compare(b.Distance, a.Distance),
			cmp.Compare(a.EntityID, b.EntityID),
		)
	})
}

// Add queues an item.
func (p *RenderPhase[P]) Add(item P) {
	p.items = append(p.items, item)
}

// Items returns the queued items in their current order.
func (p *RenderPhase[P]) Items() []P {
	return p.items
}

// Len returns the number of queued items.
func (p *RenderPhase[P]) Len() int {
	return len(p.items)
}

// Clear drops every item, keeping the backing storage for the next frame.
func (p *RenderPhase[P]) Clear() {
	p.items = p.items[:0]
}

// Sort orders the items with the phase's comparison.
func (p *RenderPhase[P]) Sort() {
	if p.compare != nil {
		slices.SortStableFunc(p.items, p.compare)
	}
}

// RenderStats counts the outcome of rendering a phase.
type RenderStats struct {
	Drawn   int
	Failed  int
	Missing int
}

// Render runs the draw function of every item into pass. Items whose draw function is not
// registered are counted as missing; a failing item does not stop the phase.
//
// Parameters:
//   - ctx: the render context of the view being drawn
//   - pass: the pass to record into
//   - draws: the registry the items' draw functions are looked up in
//
// Returns:
//   - RenderStats: how many items drew, failed or had no draw function
func (p *RenderPhase[P]) Render(ctx *RenderContext, pass render_device.TrackedRenderPass, draws *DrawFunctions[P]) RenderStats {
	var stats RenderStats
	for _, item := range p.items {
		draw, ok := draws.Get(item.DrawFunction())
		if !ok {
			stats.Missing++
			continue
		}
		if draw.Render(ctx, item, pass) == Failure {
			stats.Failed++
			continue
		}
		stats.Drawn++
	}
	return stats
}

// PhaseOf returns the RenderPhase[P] of view in w, attaching an empty one created with
// create when the view has none yet.
func PhaseOf[P PhaseItem](w *world.World, view world.EntityID, create func() *RenderPhase[P]) *RenderPhase[P] {
	if p, ok := world.Get[*RenderPhase[P]](w, view); ok && p != nil {
		return p
	}
	p := create()
	world.Insert(w, view, p)
	return p
}

// SortPhases sorts the RenderPhase[P] of every view in w.
func SortPhases[P PhaseItem](w *world.World) {
	for _, e := range world.Query[*RenderPhase[P]](w) {
		e.Component.Sort()
	}
}
