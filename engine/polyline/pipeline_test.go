package polyline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/render_device/devicetest"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-polyline/engine/view"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFormats = view.TargetFormats{Surface: wgpu.TextureFormatBGRA8UnormSrgb, Hdr: view.HdrTextureFormat}

func newTestPipeline(t *testing.T) (PolylinePipeline, *devicetest.Device) {
	t.Helper()
	device := devicetest.NewDevice()
	pl, err := NewPolylinePipeline(device, testFormats)
	require.NoError(t, err)
	return pl, device
}

func TestPipelineKeyMSAARoundTrip(t *testing.T) {
	for _, n := range []uint32{1, 2, 4, 8, 16, 32, 64, 128} {
		assert.Equal(t, n, FromMSAASamples(n).MSAASamples(), "samples %d", n)
	}
	assert.Equal(t, uint32(4), FromMSAASamples(4).MSAASamples())
	assert.Equal(t, uint32(1), PolylinePipelineKeyNone.MSAASamples())
}

func TestPipelineKeyBits(t *testing.T) {
	key := FromMSAASamples(8).Union(PolylinePipelineKeyPerspective).Union(FromHDR(true))

	assert.True(t, key.Contains(PolylinePipelineKeyPerspective))
	assert.True(t, key.Contains(PolylinePipelineKeyHDR))
	assert.False(t, key.Contains(PolylinePipelineKeyTransparentMainPass))
	assert.Equal(t, uint32(8), key.MSAASamples())
	assert.Equal(t, PolylinePipelineKey(3<<29|1|4), key)
	assert.Equal(t, PolylinePipelineKeyNone, FromHDR(false))

	assert.Equal(t, "PERSPECTIVE|HDR|MSAA8", key.String())
	assert.Equal(t, "NONE|MSAA1", PolylinePipelineKeyNone.String())
}

func TestNewPolylinePipelineCreatesLayouts(t *testing.T) {
	pl, device := newTestPipeline(t)

	require.Len(t, device.Layouts, 2)
	viewEntry := device.Layouts[0].Entries[0]
	assert.Equal(t, uint32(0), viewEntry.Binding)
	assert.Equal(t, wgpu.ShaderStageVertex, viewEntry.Visibility)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, viewEntry.Buffer.Type)
	assert.True(t, viewEntry.Buffer.HasDynamicOffset)
	assert.Equal(t, uint64(view.ViewUniform{}.Size()), viewEntry.Buffer.MinBindingSize)

	polylineEntry := device.Layouts[1].Entries[0]
	assert.True(t, polylineEntry.Buffer.HasDynamicOffset)
	assert.Equal(t, uint64(64), polylineEntry.Buffer.MinBindingSize)

	assert.NotNil(t, pl.ViewLayout())
	assert.NotNil(t, pl.PolylineLayout())
	assert.Equal(t, ShaderKey, pl.Shader().Key())
	assert.Equal(t, testFormats, pl.Formats())
}

func TestSpecializeTable(t *testing.T) {
	pl, _ := newTestPipeline(t)

	tests := []struct {
		name       string
		key        PolylinePipelineKey
		label      string
		blend      wgpu.BlendState
		depthWrite bool
	}{
		{"transparent", PolylinePipelineKeyTransparentMainPass, "transparent_polyline_pipeline", pipeline.BlendStateAlphaBlending, false},
		{"perspective", PolylinePipelineKeyPerspective, "transparent_polyline_pipeline", pipeline.BlendStateAlphaBlending, true},
		{"transparent perspective", PolylinePipelineKeyTransparentMainPass | PolylinePipelineKeyPerspective, "transparent_polyline_pipeline", pipeline.BlendStateAlphaBlending, false},
		{"none", PolylinePipelineKeyNone, "opaque_polyline_pipeline", pipeline.BlendStateReplace, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := pl.Specialize(tt.key)
			assert.Equal(t, tt.label, d.Label)
			require.NotNil(t, d.Fragment)
			require.Len(t, d.Fragment.Targets, 1)
			require.NotNil(t, d.Fragment.Targets[0].Blend)
			assert.Equal(t, tt.blend, *d.Fragment.Targets[0].Blend)
			require.NotNil(t, d.DepthStencil)
			assert.Equal(t, tt.depthWrite, d.DepthStencil.DepthWriteEnabled)
			assert.NoError(t, d.Validate())
		})
	}
}

func TestSpecializeFixedState(t *testing.T) {
	pl, _ := newTestPipeline(t)
	d := pl.Specialize(PolylinePipelineKeyNone)

	assert.Equal(t, testFormats.Surface, d.Fragment.Targets[0].Format)
	assert.Equal(t, wgpu.ColorWriteMaskAll, d.Fragment.Targets[0].WriteMask)
	assert.Equal(t, "vertex", d.Vertex.EntryPoint)
	assert.Equal(t, "fragment", d.Fragment.EntryPoint)
	assert.Equal(t, []*wgpu.BindGroupLayout{pl.ViewLayout(), pl.PolylineLayout()}, d.Layout)

	require.Len(t, d.Vertex.Buffers, 1)
	buf := d.Vertex.Buffers[0]
	assert.Equal(t, uint64(12), buf.ArrayStride)
	assert.Equal(t, wgpu.VertexStepModeInstance, buf.StepMode)
	assert.Equal(t, []wgpu.VertexAttribute{
		{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
		{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
	}, buf.Attributes)

	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, d.Primitive.Topology)
	assert.Equal(t, wgpu.FrontFaceCCW, d.Primitive.FrontFace)
	assert.Equal(t, wgpu.CullModeNone, d.Primitive.CullMode)

	depth := d.DepthStencil
	assert.Equal(t, wgpu.TextureFormatDepth32Float, depth.Format)
	assert.Equal(t, wgpu.CompareFunctionGreater, depth.DepthCompare)
	assert.Equal(t, uint32(0), depth.StencilReadMask)
	assert.Equal(t, uint32(0), depth.StencilWriteMask)
	assert.Equal(t, wgpu.CompareFunctionAlways, depth.StencilFront.Compare)
	assert.Equal(t, int32(0), depth.DepthBias)

	assert.Equal(t, uint32(1), d.Multisample.Count)
	assert.Equal(t, uint32(0xFFFFFFFF), d.Multisample.Mask)
	assert.False(t, d.Multisample.AlphaToCoverageEnabled)
}

func TestSpecializeHdrAndMSAA(t *testing.T) {
	pl, _ := newTestPipeline(t)
	d := pl.Specialize(PolylinePipelineKeyHDR | FromMSAASamples(4))

	assert.Equal(t, view.HdrTextureFormat, d.Fragment.Targets[0].Format)
	assert.Equal(t, uint32(4), d.Multisample.Count)
}

func TestSpecializeIsDeterministic(t *testing.T) {
	pl, _ := newTestPipeline(t)
	for _, key := range []PolylinePipelineKey{
		PolylinePipelineKeyNone,
		PolylinePipelineKeyPerspective,
		PolylinePipelineKeyTransparentMainPass | FromMSAASamples(4),
		PolylinePipelineKeyHDR | FromMSAASamples(2),
	} {
		assert.Equal(t, pl.Specialize(key), pl.Specialize(key), "key %s", key)
	}
}

func TestSpecializedPipelinesQueueOncePerKey(t *testing.T) {
	pl, _ := newTestPipeline(t)
	cache := pipeline.NewPipelineCache()
	specialized := pipeline.NewSpecializedRenderPipelines[PolylinePipelineKey]()

	a := specialized.Specialize(cache, pl, FromMSAASamples(4))
	b := specialized.Specialize(cache, pl, FromMSAASamples(4))
	c := specialized.Specialize(cache, pl, FromMSAASamples(4)|PolylinePipelineKeyHDR)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, 2, cache.Len())
	require.NoError(t, cache.ProcessQueue(devicetest.NewDevice()))
	assert.Equal(t, pipeline.CachedPipelineStateReady, cache.State(a))
}

func TestValidateShader(t *testing.T) {
	const body = `
@fragment
fn fragment() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0);
}
`
	tests := []struct {
		name   string
		source string
	}{
		{"wrong vertex entry", `struct VertexInput {
    @location(0) a: vec3<f32>,
    @location(1) b: vec3<f32>,
};
@vertex
fn main(in: VertexInput) -> @builtin(position) vec4<f32> {
    return vec4<f32>(in.a, 1.0);
}` + body},
		{"missing second endpoint", `struct VertexInput {
    @location(0) a: vec3<f32>,
};
@vertex
fn vertex(in: VertexInput) -> @builtin(position) vec4<f32> {
    return vec4<f32>(in.a, 1.0);
}` + body},
		{"wrong endpoint type", `struct VertexInput {
    @location(0) a: vec3<f32>,
    @location(1) b: vec2<f32>,
};
@vertex
fn vertex(in: VertexInput) -> @builtin(position) vec4<f32> {
    return vec4<f32>(in.a, 1.0);
}` + body},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := shader.NewShader("bad", shader.WithSource(tt.source))
			assert.Error(t, ValidateShader(s))
			_, err := NewPolylinePipeline(devicetest.NewDevice(), testFormats, WithShader(s))
			assert.Error(t, err)
		})
	}

	assert.NoError(t, ValidateShader(NewDefaultShader()))
}
