package render_device

import (
	"slices"

	"github.com/cogentcore/webgpu/wgpu"
)

// Range is a half-open [Start, End) range of vertices or instances.
type Range struct {
	Start, End uint32
}

// Len returns End - Start, or 0 for an inverted range.
func (r Range) Len() uint32 {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

// PassStats counts the commands a TrackedRenderPass forwarded to the GPU and the redundant
// state changes it dropped.
type PassStats struct {
	DrawCalls    int
	Instances    int
	StateChanges int
	SkippedBinds int
}

// TrackedRenderPass records the state last bound on a render pass and drops redundant binds.
type TrackedRenderPass interface {
	// SetPipeline binds a render pipeline unless it is already bound.
	//
	// Parameters:
	//   - p: the pipeline
	SetPipeline(p *wgpu.RenderPipeline)

	// SetBindGroup binds a bind group at index with dynamic offsets unless the same group
	// and offsets are already bound there.
	//
	// Parameters:
	//   - index: the pipeline bind group slot
	//   - group: the bind group
	//   - dynamicOffsets: one offset per dynamic binding in the group
	SetBindGroup(index uint32, group *wgpu.BindGroup, dynamicOffsets []uint32)

	// SetVertexBuffer binds a vertex buffer region at slot unless it is already bound.
	//
	// Parameters:
	//   - slot: the vertex buffer slot
	//   - buffer: the buffer
	//   - offset: byte offset into the buffer
	//   - size: byte size of the region, wgpu.WholeSize for the remainder
	SetVertexBuffer(slot uint32, buffer *wgpu.Buffer, offset, size uint64)

	// Draw issues a non-indexed draw over a vertex range and an instance range.
	//
	// Parameters:
	//   - vertices: the vertex range
	//   - instances: the instance range
	Draw(vertices, instances Range)

	// Stats returns the counters accumulated since the pass began.
	//
	// Returns:
	//   - PassStats: the counters
	Stats() PassStats
}

// passFuncs is the set of encoder calls a tracked pass forwards to.
type passFuncs struct {
	setPipeline     func(p *wgpu.RenderPipeline)
	setBindGroup    func(index uint32, group *wgpu.BindGroup, offsets []uint32)
	setVertexBuffer func(slot uint32, buffer *wgpu.Buffer, offset, size uint64)
	draw            func(vertexCount, instanceCount, firstVertex, firstInstance uint32)
}

type boundGroup struct {
	group   *wgpu.BindGroup
	offsets []uint32
}

type boundVertexBuffer struct {
	buffer       *wgpu.Buffer
	offset, size uint64
}

// trackedRenderPass is the implementation of TrackedRenderPass.
type trackedRenderPass struct {
	funcs passFuncs

	pipeline      *wgpu.RenderPipeline
	bindGroups    map[uint32]boundGroup
	vertexBuffers map[uint32]boundVertexBuffer

	stats PassStats
}

var _ TrackedRenderPass = &trackedRenderPass{}

// NewTrackedRenderPass wraps an active wgpu render pass encoder.
//
// Parameters:
//   - pass: the encoder returned by BeginRenderPass
//
// Returns:
//   - TrackedRenderPass: the tracking wrapper
func NewTrackedRenderPass(pass *wgpu.RenderPassEncoder) TrackedRenderPass {
	return newTrackedRenderPass(passFuncs{
		setPipeline: func(p *wgpu.RenderPipeline) {
			pass.SetPipeline(p)
		},
		setBindGroup: func(index uint32, group *wgpu.BindGroup, offsets []uint32) {
			pass.SetBindGroup(index, group, offsets)
		},
		setVertexBuffer: func(slot uint32, buffer *wgpu.Buffer, offset, size uint64) {
			pass.SetVertexBuffer(slot, buffer, offset, size)
		},
		draw: func(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
			pass.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
		},
	})
}

func newTrackedRenderPass(funcs passFuncs) *trackedRenderPass {
	return &trackedRenderPass{
		funcs:         funcs,
		bindGroups:    make(map[uint32]boundGroup),
		vertexBuffers: make(map[uint32]boundVertexBuffer),
	}
}

func (t *trackedRenderPass) SetPipeline(p *wgpu.RenderPipeline) {
	if p == t.pipeline {
		t.stats.SkippedBinds++
		return
	}
	t.pipeline = p
	t.stats.StateChanges++
	t.funcs.setPipeline(p)
}

func (t *trackedRenderPass) SetBindGroup(index uint32, group *wgpu.BindGroup, dynamicOffsets []uint32) {
	if cur, ok := t.bindGroups[index]; ok && cur.group == group && slices.Equal(cur.offsets, dynamicOffsets) {
		t.stats.SkippedBinds++
		return
	}
	t.bindGroups[index] = boundGroup{group: group, offsets: slices.Clone(dynamicOffsets)}
	t.stats.StateChanges++
	t.funcs.setBindGroup(index, group, dynamicOffsets)
}

func (t *trackedRenderPass) SetVertexBuffer(slot uint32, buffer *wgpu.Buffer, offset, size uint64) {
	next := boundVertexBuffer{buffer: buffer, offset: offset, size: size}
	if cur, ok := t.vertexBuffers[slot]; ok && cur == next {
		t.stats.SkippedBinds++
		return
	}
	t.vertexBuffers[slot] = next
	t.stats.StateChanges++
	t.funcs.setVertexBuffer(slot, buffer, offset, size)
}

func (t *trackedRenderPass) Draw(vertices, instances Range) {
	t.stats.DrawCalls++
	t.stats.Instances += int(instances.Len())
	t.funcs.draw(vertices.Len(), instances.Len(), vertices.Start, instances.Start)
}

func (t *trackedRenderPass) Stats() PassStats {
	return t.stats
}
