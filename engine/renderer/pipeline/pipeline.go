package pipeline

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// BlendStateAlphaBlending blends the source over the destination by source alpha.
var BlendStateAlphaBlending = wgpu.BlendState{
	Color: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorSrcAlpha,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
	Alpha: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
}

// BlendStateReplace overwrites the destination with the source.
var BlendStateReplace = wgpu.BlendState{
	Color: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorZero,
		Operation: wgpu.BlendOperationAdd,
	},
	Alpha: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorZero,
		Operation: wgpu.BlendOperationAdd,
	},
}

// VertexState names the shader and entry point of the vertex stage together with the
// vertex buffer layouts it reads.
type VertexState struct {
	Shader     shader.Shader
	EntryPoint string
	Buffers    []wgpu.VertexBufferLayout
}

// FragmentState names the shader and entry point of the fragment stage together with its
// color targets.
type FragmentState struct {
	Shader     shader.Shader
	EntryPoint string
	Targets    []wgpu.ColorTargetState
}

// RenderPipelineDescriptor is a device-independent description of a render pipeline.
// Descriptors are plain values: two descriptors built from the same inputs compare equal,
// which lets specializers be checked for determinism.
type RenderPipelineDescriptor struct {
	Label        string
	Layout       []*wgpu.BindGroupLayout
	Vertex       VertexState
	Fragment     *FragmentState
	Primitive    wgpu.PrimitiveState
	DepthStencil *wgpu.DepthStencilState
	Multisample  wgpu.MultisampleState
}

// NewRenderPipelineDescriptor creates a descriptor with triangle-list topology, counter-clockwise
// front faces, no culling and single-sampled output, then applies opts in order.
//
// Parameters:
//   - label: the debug label of the pipeline
//   - opts: a variadic list of DescriptorBuilderOption functions to configure the descriptor
//
// Returns:
//   - RenderPipelineDescriptor: the configured descriptor
func NewRenderPipelineDescriptor(label string, opts ...DescriptorBuilderOption) RenderPipelineDescriptor {
	d := RenderPipelineDescriptor{
		Label: label,
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// Validate reports whether the descriptor can be turned into a device pipeline.
//
// Returns:
//   - error: a description of the first problem found, or nil
func (d RenderPipelineDescriptor) Validate() error {
	if d.Vertex.Shader == nil {
		return errors.New("pipeline: vertex shader is required")
	}
	if d.Vertex.EntryPoint == "" {
		return fmt.Errorf("pipeline: %s: vertex entry point is required", d.Label)
	}
	if d.Vertex.Shader.EntryPoint(shader.ShaderTypeVertex) != d.Vertex.EntryPoint {
		return fmt.Errorf("pipeline: %s: shader %s has no vertex entry point %q", d.Label, d.Vertex.Shader.Key(), d.Vertex.EntryPoint)
	}
	if d.Fragment != nil {
		if d.Fragment.Shader == nil {
			return fmt.Errorf("pipeline: %s: fragment shader is required", d.Label)
		}
		if d.Fragment.Shader.EntryPoint(shader.ShaderTypeFragment) != d.Fragment.EntryPoint {
			return fmt.Errorf("pipeline: %s: shader %s has no fragment entry point %q", d.Label, d.Fragment.Shader.Key(), d.Fragment.EntryPoint)
		}
		if len(d.Fragment.Targets) == 0 {
			return fmt.Errorf("pipeline: %s: fragment stage has no color targets", d.Label)
		}
	}
	if d.Multisample.Count == 0 {
		return fmt.Errorf("pipeline: %s: sample count must be at least 1", d.Label)
	}
	return nil
}

// UsesShader reports whether either stage of the descriptor reads the shader with key.
func (d RenderPipelineDescriptor) UsesShader(key string) bool {
	if d.Vertex.Shader != nil && d.Vertex.Shader.Key() == key {
		return true
	}
	return d.Fragment != nil && d.Fragment.Shader != nil && d.Fragment.Shader.Key() == key
}

// shaders returns the distinct shaders referenced by the descriptor.
func (d RenderPipelineDescriptor) shaders() []shader.Shader {
	out := []shader.Shader{d.Vertex.Shader}
	if d.Fragment != nil && d.Fragment.Shader.Key() != d.Vertex.Shader.Key() {
		out = append(out, d.Fragment.Shader)
	}
	return out
}
