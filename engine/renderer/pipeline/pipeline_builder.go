package pipeline

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// DescriptorBuilderOption is a functional option used to configure a RenderPipelineDescriptor during construction.
type DescriptorBuilderOption func(*RenderPipelineDescriptor)

// WithLayout sets the bind group layouts of the pipeline, in group index order.
//
// Parameters:
//   - layouts: the bind group layouts, index i is bound at @group(i)
//
// Returns:
//   - DescriptorBuilderOption: a function that sets the pipeline layout
func WithLayout(layouts ...*wgpu.BindGroupLayout) DescriptorBuilderOption {
	return func(d *RenderPipelineDescriptor) {
		d.Layout = slices.Clone(layouts)
	}
}

// WithVertexState sets the vertex stage of the pipeline.
//
// Parameters:
//   - s: the shader holding the vertex entry point
//   - entryPoint: the vertex entry point name
//   - buffers: the vertex buffer layouts read by the stage
//
// Returns:
//   - DescriptorBuilderOption: a function that sets the vertex stage
func WithVertexState(s shader.Shader, entryPoint string, buffers ...wgpu.VertexBufferLayout) DescriptorBuilderOption {
	return func(d *RenderPipelineDescriptor) {
		d.Vertex = VertexState{
			Shader:     s,
			EntryPoint: entryPoint,
			Buffers:    slices.Clone(buffers),
		}
	}
}

// WithFragmentState sets the fragment stage of the pipeline.
//
// Parameters:
//   - s: the shader holding the fragment entry point
//   - entryPoint: the fragment entry point name
//   - targets: the color targets written by the stage
//
// Returns:
//   - DescriptorBuilderOption: a function that sets the fragment stage
func WithFragmentState(s shader.Shader, entryPoint string, targets ...wgpu.ColorTargetState) DescriptorBuilderOption {
	return func(d *RenderPipelineDescriptor) {
		d.Fragment = &FragmentState{
			Shader:     s,
			EntryPoint: entryPoint,
			Targets:    slices.Clone(targets),
		}
	}
}

// WithTopology sets the primitive topology of the pipeline.
func WithTopology(topology wgpu.PrimitiveTopology) DescriptorBuilderOption {
	return func(d *RenderPipelineDescriptor) {
		d.Primitive.Topology = topology
	}
}

// WithFrontFace sets the front face winding order of the pipeline.
func WithFrontFace(face wgpu.FrontFace) DescriptorBuilderOption {
	return func(d *RenderPipelineDescriptor) {
		d.Primitive.FrontFace = face
	}
}

// WithCullMode sets the cull mode of the pipeline.
func WithCullMode(mode wgpu.CullMode) DescriptorBuilderOption {
	return func(d *RenderPipelineDescriptor) {
		d.Primitive.CullMode = mode
	}
}

// WithDepthStencil sets the depth stencil state of the pipeline.
//
// Parameters:
//   - state: the depth stencil state, copied into the descriptor
//
// Returns:
//   - DescriptorBuilderOption: a function that sets the depth stencil state
func WithDepthStencil(state wgpu.DepthStencilState) DescriptorBuilderOption {
	return func(d *RenderPipelineDescriptor) {
		d.DepthStencil = &state
	}
}

// WithDepthBias sets the constant and slope-scaled depth bias. It has no effect unless a depth
// stencil state was set first.
//
// Parameters:
//   - bias: the constant depth bias to apply
//   - slopeScale: the slope scale depth bias to apply
//
// Returns:
//   - DescriptorBuilderOption: a function that sets the depth bias parameters
func WithDepthBias(bias int32, slopeScale float32) DescriptorBuilderOption {
	return func(d *RenderPipelineDescriptor) {
		if d.DepthStencil == nil {
			return
		}
		d.DepthStencil.DepthBias = bias
		d.DepthStencil.DepthBiasSlopeScale = slopeScale
	}
}

// WithMultisample sets the sample count of the pipeline. A count of zero is treated as one.
func WithMultisample(count uint32) DescriptorBuilderOption {
	return func(d *RenderPipelineDescriptor) {
		d.Multisample.Count = max(count, 1)
	}
}
