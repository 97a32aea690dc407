package material

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-polyline/engine/polyline"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/render_device"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// materialPipeline is the implementation of the MaterialPipeline interface.
type materialPipeline struct {
	core           polyline.PolylinePipeline
	shader         shader.Shader
	materialLayout *wgpu.BindGroupLayout
}

// MaterialPipeline specializes the polyline pipeline family for material-shaded lines. It
// keeps the core's key table and replaces the shader and the bind group layouts.
type MaterialPipeline interface {
	// Specialize builds the descriptor for key: the core descriptor for key with the material
	// shader in both stages and the layouts (view, material, polyline).
	//
	// Parameters:
	//   - key: the pipeline variant
	//
	// Returns:
	//   - pipeline.RenderPipelineDescriptor: the descriptor to queue on the pipeline cache
	Specialize(key polyline.PolylinePipelineKey) pipeline.RenderPipelineDescriptor

	// MaterialLayout returns the layout of the material group bound at slot 1.
	MaterialLayout() *wgpu.BindGroupLayout

	// Core returns the polyline pipeline this pipeline wraps.
	Core() polyline.PolylinePipeline

	// Shader returns the material shader.
	Shader() shader.Shader
}

var _ MaterialPipeline = &materialPipeline{}
var _ pipeline.Specializer[polyline.PolylinePipelineKey] = &materialPipeline{}

// NewMaterialPipeline creates the material group layout on device and checks the material
// shader against the polyline shader contract.
//
// Parameters:
//   - device: the device the layout is created on
//   - core: the polyline pipeline providing the view and polyline layouts
//   - opts: a variadic list of MaterialPipelineBuilderOption functions
//
// Returns:
//   - MaterialPipeline: the pipeline resource
//   - error: an error if the layout could not be created or the shader breaks the contract
func NewMaterialPipeline(device render_device.RenderDevice, core polyline.PolylinePipeline, opts ...MaterialPipelineBuilderOption) (MaterialPipeline, error) {
	p := &materialPipeline{core: core}
	for _, opt := range opts {
		opt(p)
	}
	if p.shader == nil {
		p.shader = NewDefaultShader()
	}
	if err := polyline.ValidateShader(p.shader); err != nil {
		return nil, fmt.Errorf("material: %w", err)
	}
	desc := LayoutDescriptor()
	layout, err := device.CreateBindGroupLayout(&desc)
	if err != nil {
		return nil, fmt.Errorf("material: failed to create material layout: %w", err)
	}
	p.materialLayout = layout
	return p, nil
}

// LayoutDescriptor describes the material group: the MaterialUniform at binding 0, visible
// to both stages, without a dynamic offset.
func LayoutDescriptor() wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Label: "polyline_material_layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: uint64(MaterialUniform{}.Size()),
				},
			},
		},
	}
}

func (p *materialPipeline) Specialize(key polyline.PolylinePipelineKey) pipeline.RenderPipelineDescriptor {
	d := p.core.Specialize(key)
	d.Layout = []*wgpu.BindGroupLayout{p.core.ViewLayout(), p.materialLayout, p.core.PolylineLayout()}
	d.Vertex.Shader = p.shader
	if d.Fragment != nil {
		fragment := *d.Fragment
		fragment.Shader = p.shader
		d.Fragment = &fragment
	}
	return d
}

func (p *materialPipeline) MaterialLayout() *wgpu.BindGroupLayout {
	return p.materialLayout
}

func (p *materialPipeline) Core() polyline.PolylinePipeline {
	return p.core
}

func (p *materialPipeline) Shader() shader.Shader {
	return p.shader
}
