package material

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-polyline/engine/asset"
	"github.com/Carmen-Shannon/oxy-polyline/engine/polyline"
	"github.com/Carmen-Shannon/oxy-polyline/engine/render_asset"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/render_device/devicetest"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noRelease(*GpuMaterial) {}

func TestMaterialPreparer(t *testing.T) {
	device := devicetest.NewDevice()
	layout := &wgpu.BindGroupLayout{}
	m := NewPolylineMaterial(WithColor(mgl32.Vec4{1, 0, 0, 0.5}), WithPerspective())

	gpu, err := NewMaterialPreparer(layout)(m, device)
	require.NoError(t, err)
	assert.True(t, gpu.IsTransparent())
	assert.Equal(t, polyline.PolylinePipelineKeyTransparentMainPass|polyline.PolylinePipelineKeyPerspective, gpu.Key)
	assert.NotNil(t, gpu.BindGroup())

	created, ok := device.BufferByLabel(UniformBufferLabel)
	require.True(t, ok)
	assert.Equal(t, m.Uniform().Marshal(), created.Contents)
	assert.Equal(t, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst, created.Usage)

	require.Len(t, device.BindGroups, 1)
	assert.Same(t, layout, device.BindGroups[0].Layout)
	require.Len(t, device.BindGroups[0].Entries, 1)
	assert.Same(t, created.Buffer, device.BindGroups[0].Entries[0].Buffer)
	assert.Equal(t, uint64(32), device.BindGroups[0].Entries[0].Size)
}

func TestMaterialPreparerRetries(t *testing.T) {
	device := devicetest.NewDevice()
	device.FailBufferCreates = 1

	_, err := NewMaterialPreparer(&wgpu.BindGroupLayout{})(NewPolylineMaterial(), device)
	require.Error(t, err)
	assert.True(t, errors.Is(err, render_asset.ErrRetryNextFrame))
}

func TestMaterialAssetsReplaceOnChange(t *testing.T) {
	device := devicetest.NewDevice()
	var released int
	ma := NewMaterialAssets(&wgpu.BindGroupLayout{}, render_asset.WithReleaser[PolylineMaterial](func(*GpuMaterial) { released++ }))
	assets := asset.NewAssets[PolylineMaterial]()
	h := assets.Add(NewPolylineMaterial())

	ma.Extract(assets)
	_, err := ma.Prepare(device, 1)
	require.NoError(t, err)
	first, ok := ma.Get(h)
	require.True(t, ok)
	assert.False(t, first.IsTransparent())

	assets.Mutate(h, func(m *PolylineMaterial) { m.Color = mgl32.Vec4{1, 1, 1, 0.25} })
	ma.Extract(assets)
	_, err = ma.Prepare(device, 2)
	require.NoError(t, err)
	second, ok := ma.Get(h)
	require.True(t, ok)
	assert.True(t, second.IsTransparent())
	assert.Equal(t, 1, ma.Retire(4))
	assert.Equal(t, 1, released)
}
