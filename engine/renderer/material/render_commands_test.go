package material

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-polyline/engine/asset"
	"github.com/Carmen-Shannon/oxy-polyline/engine/render_asset"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/phase"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/render_device/devicetest"
	"github.com/Carmen-Shannon/oxy-polyline/engine/world"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetMaterialBindGroup(t *testing.T) {
	render := world.NewWorld("render")
	entity := render.Spawn()
	ctx := &phase.RenderContext{World: render}
	item := phase.Transparent3d{EntityID: entity}
	cmd := SetMaterialBindGroup[phase.Transparent3d]{Index: 1}
	pass := &devicetest.Pass{}

	assert.Equal(t, phase.Failure, cmd.Render(ctx, item, pass), "no material assets")

	materials := NewMaterialAssets(&wgpu.BindGroupLayout{}, render_asset.WithReleaser[PolylineMaterial](noRelease))
	world.SetResource(render, materials)
	assert.Equal(t, phase.Failure, cmd.Render(ctx, item, pass), "no handle")

	assets := asset.NewAssets[PolylineMaterial]()
	h := assets.Add(NewPolylineMaterial())
	world.Insert(render, entity, h.Weak())
	assert.Equal(t, phase.Failure, cmd.Render(ctx, item, pass), "not prepared")

	materials.Extract(assets)
	_, err := materials.Prepare(devicetest.NewDevice(), 1)
	require.NoError(t, err)
	assert.Equal(t, phase.Success, cmd.Render(ctx, item, pass))

	gpu, _ := materials.Get(h)
	require.Len(t, pass.BindGroups, 1)
	assert.Equal(t, uint32(1), pass.BindGroups[0].Index)
	assert.Same(t, gpu.BindGroup(), pass.BindGroups[0].Group)
	assert.Empty(t, pass.BindGroups[0].Offsets)
}
