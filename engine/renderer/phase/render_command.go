package phase

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/render_device"
	"github.com/Carmen-Shannon/oxy-polyline/engine/world"
)

// RenderCommandResult reports whether a render command recorded its work.
type RenderCommandResult int

const (
	// Success means the command recorded its work.
	Success RenderCommandResult = iota

	// Failure means a dependency of the command is not ready this frame. The item is skipped
	// and queued again next frame.
	Failure
)

// String returns the result name.
func (r RenderCommandResult) String() string {
	if r == Failure {
		return "failure"
	}
	return "success"
}

// RenderContext is what a render command can read while drawing one view.
type RenderContext struct {
	World     *world.World
	View      world.EntityID
	Pipelines pipeline.PipelineCache
}

// RenderCommand records one step of drawing a phase item, such as binding a group or issuing
// the draw. Commands are composed into a draw function with Chain.
type RenderCommand[P PhaseItem] interface {
	// Render records the command for item into pass.
	//
	// Parameters:
	//   - ctx: the render context of the current view
	//   - item: the phase item being drawn
	//   - pass: the pass to record into
	//
	// Returns:
	//   - RenderCommandResult: Success, or Failure if a dependency is not ready
	Render(ctx *RenderContext, item P, pass render_device.TrackedRenderPass) RenderCommandResult
}

// RenderCommandFunc adapts a plain function to the RenderCommand interface.
type RenderCommandFunc[P PhaseItem] func(ctx *RenderContext, item P, pass render_device.TrackedRenderPass) RenderCommandResult

// Render calls f.
func (f RenderCommandFunc[P]) Render(ctx *RenderContext, item P, pass render_device.TrackedRenderPass) RenderCommandResult {
	return f(ctx, item, pass)
}

type chain[P PhaseItem] []RenderCommand[P]

// Chain composes commands into one that runs them in order and stops at the first Failure.
func Chain[P PhaseItem](commands ...RenderCommand[P]) RenderCommand[P] {
	return chain[P](commands)
}

func (c chain[P]) Render(ctx *RenderContext, item P, pass render_device.TrackedRenderPass) RenderCommandResult {
	for _, cmd := range c {
		if cmd.Render(ctx, item, pass) == Failure {
			return Failure
		}
	}
	return Success
}

// DrawFunctions is the registry of draw functions for one phase item type. It is a
// render-world resource.
type DrawFunctions[P PhaseItem] struct {
	mu    sync.RWMutex
	draws []RenderCommand[P]
}

// NewDrawFunctions creates an empty registry.
func NewDrawFunctions[P PhaseItem]() *DrawFunctions[P] {
	return &DrawFunctions[P]{}
}

// Add registers a draw function and returns its ID.
func (d *DrawFunctions[P]) Add(draw RenderCommand[P]) DrawFunctionID {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.draws = append(d.draws, draw)
	return DrawFunctionID(len(d.draws) - 1)
}

// Get returns the draw function registered under id.
func (d *DrawFunctions[P]) Get(id DrawFunctionID) (RenderCommand[P], bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if int(id) >= len(d.draws) {
		return nil, false
	}
	return d.draws[id], true
}
