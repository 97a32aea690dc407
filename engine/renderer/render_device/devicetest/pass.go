package devicetest

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/render_device"
	"github.com/cogentcore/webgpu/wgpu"
)

// Draw records one draw call.
type Draw struct {
	Vertices, Instances render_device.Range
}

// BindGroupCall records one SetBindGroup call.
type BindGroupCall struct {
	Index   uint32
	Group   *wgpu.BindGroup
	Offsets []uint32
}

// VertexBufferCall records one SetVertexBuffer call.
type VertexBufferCall struct {
	Slot         uint32
	Buffer       *wgpu.Buffer
	Offset, Size uint64
}

// Pass is a TrackedRenderPass that records every call without deduplication.
type Pass struct {
	Pipelines     []*wgpu.RenderPipeline
	BindGroups    []BindGroupCall
	VertexBuffers []VertexBufferCall
	Draws         []Draw
}

var _ render_device.TrackedRenderPass = &Pass{}

func (p *Pass) SetPipeline(pl *wgpu.RenderPipeline) {
	p.Pipelines = append(p.Pipelines, pl)
}

func (p *Pass) SetBindGroup(index uint32, group *wgpu.BindGroup, dynamicOffsets []uint32) {
	p.BindGroups = append(p.BindGroups, BindGroupCall{Index: index, Group: group, Offsets: slices.Clone(dynamicOffsets)})
}

func (p *Pass) SetVertexBuffer(slot uint32, buffer *wgpu.Buffer, offset, size uint64) {
	p.VertexBuffers = append(p.VertexBuffers, VertexBufferCall{Slot: slot, Buffer: buffer, Offset: offset, Size: size})
}

func (p *Pass) Draw(vertices, instances render_device.Range) {
	p.Draws = append(p.Draws, Draw{Vertices: vertices, Instances: instances})
}

func (p *Pass) Stats() render_device.PassStats {
	s := render_device.PassStats{DrawCalls: len(p.Draws)}
	for _, d := range p.Draws {
		s.Instances += int(d.Instances.Len())
	}
	return s
}
