package material

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-polyline/engine/polyline"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/render_device/devicetest"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-polyline/engine/view"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFormats = view.TargetFormats{Surface: wgpu.TextureFormatBGRA8UnormSrgb, Hdr: view.HdrTextureFormat}

func newTestPipeline(t *testing.T, device *devicetest.Device) MaterialPipeline {
	t.Helper()
	core, err := polyline.NewPolylinePipeline(device, testFormats)
	require.NoError(t, err)
	mp, err := NewMaterialPipeline(device, core)
	require.NoError(t, err)
	return mp
}

func TestNewMaterialPipelineLayout(t *testing.T) {
	device := devicetest.NewDevice()
	mp := newTestPipeline(t, device)

	require.Len(t, device.Layouts, 3)
	entry := device.Layouts[2].Entries[0]
	assert.Equal(t, "polyline_material_layout", device.Layouts[2].Label)
	assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, entry.Visibility)
	assert.False(t, entry.Buffer.HasDynamicOffset)
	assert.Equal(t, uint64(32), entry.Buffer.MinBindingSize)
	assert.NotNil(t, mp.MaterialLayout())
	assert.Equal(t, ShaderKey, mp.Shader().Key())
}

func TestMaterialSpecializeWrapsCore(t *testing.T) {
	mp := newTestPipeline(t, devicetest.NewDevice())
	core := mp.Core()

	for _, key := range []polyline.PolylinePipelineKey{
		polyline.PolylinePipelineKeyNone,
		polyline.PolylinePipelineKeyTransparentMainPass,
		polyline.PolylinePipelineKeyPerspective | polyline.FromMSAASamples(4),
		polyline.PolylinePipelineKeyHDR,
	} {
		t.Run(key.String(), func(t *testing.T) {
			want := core.Specialize(key)
			got := mp.Specialize(key)

			assert.Equal(t, want.Label, got.Label)
			assert.Equal(t, want.DepthStencil, got.DepthStencil)
			assert.Equal(t, want.Multisample, got.Multisample)
			assert.Equal(t, want.Vertex.Buffers, got.Vertex.Buffers)
			assert.Equal(t, want.Fragment.Targets, got.Fragment.Targets)
			assert.Equal(t, []*wgpu.BindGroupLayout{core.ViewLayout(), mp.MaterialLayout(), core.PolylineLayout()}, got.Layout)
			assert.Equal(t, ShaderKey, got.Vertex.Shader.Key())
			assert.Equal(t, ShaderKey, got.Fragment.Shader.Key())
			assert.True(t, got.UsesShader(ShaderKey))
			assert.False(t, got.UsesShader(polyline.ShaderKey))
			assert.NoError(t, got.Validate())

			// the core descriptor is left untouched
			assert.Equal(t, polyline.ShaderKey, core.Specialize(key).Fragment.Shader.Key())
		})
	}
}

func TestNewMaterialPipelineRejectsShader(t *testing.T) {
	device := devicetest.NewDevice()
	core, err := polyline.NewPolylinePipeline(device, testFormats)
	require.NoError(t, err)

	bad := shader.NewShader("bad", shader.WithSource(`@vertex
fn main() -> @builtin(position) vec4<f32> {
    return vec4<f32>(0.0);
}
`))
	_, err = NewMaterialPipeline(device, core, WithShader(bad))
	assert.Error(t, err)
}
