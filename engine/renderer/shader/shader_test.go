package shader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testViewStruct = `struct ViewUniform {
    view_proj: mat4x4<f32>,
    world_position: vec3<f32>,
};`

const testSource = `//@oxy:include view
//@oxy:group 0 0 storage_uniform view view

/* @vertex fn commented_out() {} */
// @fragment fn also_commented() {}

struct VertexInput {
    @location(1) point_b: vec3<f32>,
    @location(0) point_a: vec3<f32>,
};

struct VertexOutput {
    @builtin(position) clip_position: vec4<f32>,
    @location(0) color: vec4<f32>,
};

@vertex
fn vertex(in: VertexInput, @builtin(vertex_index) index: u32) -> VertexOutput {
    var out: VertexOutput;
    out.clip_position = view.view_proj * vec4<f32>(in.point_a, 1.0);
    return out;
}

@fragment
fn fragment(in: VertexOutput) -> @location(0) vec4<f32> {
    return in.color;
}
`

func withView() ShaderBuilderOption {
	return WithIncludes(WithStruct("view", testViewStruct, "ViewUniform"))
}

func TestPreProcessorIncludeAndGroup(t *testing.T) {
	pp := NewPreProcessor(WithStruct("view", testViewStruct, "ViewUniform"))
	out, err := pp.Process("//@oxy:include view\n//@oxy:include view\n//@oxy:group 1 2 storage_read views view\n")
	require.NoError(t, err)

	assert.Contains(t, out, "struct ViewUniform")
	assert.Equal(t, 1, strings.Count(out, "struct ViewUniform"), "structs are injected once")
	assert.Contains(t, out, "@group(1) @binding(2) var<storage, read> views: ViewUniform;")

	decls := pp.Declarations()
	require.Len(t, decls, 1)
	assert.Equal(t, AnnotationTypeBindingGroup, decls[0].Type)
	assert.Equal(t, 1, *decls[0].Group)
	assert.Equal(t, 2, *decls[0].Binding)
	assert.Equal(t, AnnotationArg("views"), decls[0].Args[1])
}

func TestPreProcessorErrors(t *testing.T) {
	pp := NewPreProcessor()
	tests := []struct {
		name   string
		source string
	}{
		{"unknown include", "//@oxy:include missing"},
		{"empty", "//@oxy:"},
		{"unknown type", "//@oxy:bogus 1"},
		{"bad group", "//@oxy:group x 0 storage_uniform v view"},
		{"bad address space", "//@oxy:group 0 0 private v view"},
		{"arity", "//@oxy:group 0 0 storage_uniform"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pp.Process(tt.source)
			assert.Error(t, err)
		})
	}
}

func TestNewShaderParsesContract(t *testing.T) {
	s := NewShader("test", WithSource(testSource), withView())

	assert.Equal(t, "vertex", s.EntryPoint(ShaderTypeVertex))
	assert.Equal(t, "fragment", s.EntryPoint(ShaderTypeFragment))
	assert.Equal(t, uint64(1), s.Generation())
	assert.Equal(t, "test", s.Module().Label)
	assert.Equal(t, s.Source(), s.Module().WGSLDescriptor.Code)

	inputs := s.VertexInputs()
	require.Len(t, inputs, 2)
	assert.Equal(t, VertexInput{Location: 0, Name: "point_a", Format: wgpu.VertexFormatFloat32x3, Size: 12}, inputs[0])
	assert.Equal(t, uint32(1), inputs[1].Location)

	layouts := s.BindGroupLayoutDescriptors()
	require.Contains(t, layouts, 0)
	require.Len(t, layouts[0].Entries, 1)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, layouts[0].Entries[0].Buffer.Type)
	assert.Equal(t, uint64(80), layouts[0].Entries[0].Buffer.MinBindingSize)

	size, ok := s.StructSize("ViewUniform")
	assert.True(t, ok)
	assert.Equal(t, uint64(80), size)
	require.Len(t, s.Declarations(), 1)
}

func TestNewShaderPanicsWithoutSource(t *testing.T) {
	assert.Panics(t, func() { NewShader("empty") })
	assert.Panics(t, func() { NewShader("bad", WithSource("//@oxy:include nope")) })
	assert.Panics(t, func() { NewShader("missing", WithSourceFromPath(filepath.Join(t.TempDir(), "none.wgsl"))) })
}

func TestReloadKeepsPreviousSourceOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "line.wgsl")
	require.NoError(t, os.WriteFile(path, []byte(testSource), 0o644))
	s := NewShader("line", WithSourceFromPath(path), withView())

	require.NoError(t, os.WriteFile(path, []byte("//@oxy:include unknown\n"), 0o644))
	assert.Error(t, s.Reload())
	assert.Equal(t, "vertex", s.EntryPoint(ShaderTypeVertex))
	assert.Equal(t, uint64(1), s.Generation())

	renamed := `@vertex fn vs_main() -> @builtin(position) vec4<f32> { return vec4<f32>(0.0); }`
	require.NoError(t, os.WriteFile(path, []byte(renamed), 0o644))
	require.NoError(t, s.Reload())
	assert.Equal(t, "vs_main", s.EntryPoint(ShaderTypeVertex))
	assert.Equal(t, uint64(2), s.Generation())

	assert.Error(t, NewShader("mem", WithSource(testSource), withView()).Reload())
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watched.wgsl")
	require.NoError(t, os.WriteFile(path, []byte(testSource), 0o644))
	s := NewShader("watched", WithSourceFromPath(path), withView())

	w, err := NewWatcher()
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Watch(s))
	assert.Error(t, w.Watch(NewShader("mem", WithSource(testSource), withView())))

	updated := `@vertex fn moved() -> @builtin(position) vec4<f32> { return vec4<f32>(0.0); }`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	select {
	case got := <-w.Reloaded():
		assert.Equal(t, "watched", got.Key())
		assert.Equal(t, "moved", got.EntryPoint(ShaderTypeVertex))
	case <-time.After(5 * time.Second):
		t.Fatal("shader was not reloaded")
	}
}
