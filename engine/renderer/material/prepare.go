package material

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-polyline/engine/polyline"
	"github.com/Carmen-Shannon/oxy-polyline/engine/render_asset"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/render_device"
	"github.com/cogentcore/webgpu/wgpu"
)

// UniformBufferLabel is the debug label of every material uniform buffer.
const UniformBufferLabel = "Polyline Material Uniform"

// GpuMaterial is the prepared form of a PolylineMaterial: the bind group over its uniform
// buffer and the key bits the material selected when it was prepared.
type GpuMaterial struct {
	Provider bind_group_provider.BindGroupProvider
	Key      polyline.PolylinePipelineKey
}

// BindGroup returns the material group.
func (g *GpuMaterial) BindGroup() *wgpu.BindGroup {
	return g.Provider.BindGroup()
}

// MaterialAssets is the render-world resource mirroring material assets.
type MaterialAssets = render_asset.RenderAssets[PolylineMaterial, *GpuMaterial]

// NewMaterialPreparer returns the preparer that uploads a material into its own uniform
// buffer and builds its bind group against layout.
//
// Parameters:
//   - layout: the material group layout
//
// Returns:
//   - render_asset.Preparer[PolylineMaterial, *GpuMaterial]: the preparer
func NewMaterialPreparer(layout *wgpu.BindGroupLayout) render_asset.Preparer[PolylineMaterial, *GpuMaterial] {
	return func(m *PolylineMaterial, device render_device.RenderDevice) (*GpuMaterial, error) {
		u := m.Uniform()
		buf, err := device.CreateBufferInit(&wgpu.BufferInitDescriptor{
			Label:    UniformBufferLabel,
			Contents: u.Marshal(),
			Usage:    wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return nil, fmt.Errorf("material: failed to create uniform buffer: %w: %w", render_asset.ErrRetryNextFrame, err)
		}
		provider := bind_group_provider.NewBindGroupProvider("polyline_material_bind_group",
			bind_group_provider.WithBindGroupLayout(layout),
			bind_group_provider.WithOwnedBuffer(0, buf, uint64(u.Size())),
		)
		if err := provider.Init(device); err != nil {
			provider.Release()
			return nil, fmt.Errorf("material: %w", err)
		}
		return &GpuMaterial{
			Provider: provider,
			Key:      m.Key(),
		}, nil
	}
}

// ReleaseGpuMaterial frees the bind group and uniform buffer of g.
func ReleaseGpuMaterial(g *GpuMaterial) {
	if g != nil && g.Provider != nil {
		g.Provider.Release()
	}
}

// NewMaterialAssets creates the render-side mirror of material assets.
//
// Parameters:
//   - layout: the material group layout prepared groups are created against
//   - opts: additional options, applied after the material defaults
//
// Returns:
//   - MaterialAssets: the mirror
func NewMaterialAssets(layout *wgpu.BindGroupLayout, opts ...render_asset.RenderAssetsBuilderOption[PolylineMaterial, *GpuMaterial]) MaterialAssets {
	defaults := []render_asset.RenderAssetsBuilderOption[PolylineMaterial, *GpuMaterial]{
		render_asset.WithReleaser[PolylineMaterial](ReleaseGpuMaterial),
	}
	return render_asset.NewRenderAssets[PolylineMaterial, *GpuMaterial](NewMaterialPreparer(layout), append(defaults, opts...)...)
}

// IsTransparent reports whether the material was prepared for the transparent phase.
func (g *GpuMaterial) IsTransparent() bool {
	return g.Key.Contains(polyline.PolylinePipelineKeyTransparentMainPass)
}
