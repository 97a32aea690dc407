package material

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-polyline/common"
	"github.com/Carmen-Shannon/oxy-polyline/engine/polyline"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPolylineMaterialDefaults(t *testing.T) {
	m := NewPolylineMaterial()
	assert.Equal(t, float32(10), m.Width)
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, m.Color)
	assert.False(t, m.IsTransparent())
	assert.Equal(t, polyline.PolylinePipelineKeyNone, m.Key())
}

func TestMaterialKey(t *testing.T) {
	tests := []struct {
		name string
		opts []MaterialBuilderOption
		want polyline.PolylinePipelineKey
	}{
		{"opaque", nil, polyline.PolylinePipelineKeyNone},
		{"translucent", []MaterialBuilderOption{WithColor(mgl32.Vec4{1, 0, 0, 0.5})}, polyline.PolylinePipelineKeyTransparentMainPass},
		{"perspective", []MaterialBuilderOption{WithPerspective()}, polyline.PolylinePipelineKeyPerspective},
		{"both", []MaterialBuilderOption{WithPerspective(), WithColor(mgl32.Vec4{0, 0, 0, 0})}, polyline.PolylinePipelineKeyPerspective | polyline.PolylinePipelineKeyTransparentMainPass},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewPolylineMaterial(tt.opts...).Key())
		})
	}
}

func TestMaterialUniformMarshal(t *testing.T) {
	m := NewPolylineMaterial(WithColor(mgl32.Vec4{0.1, 0.2, 0.3, 0.4}), WithWidth(3), WithDepthBias(0.5), WithPerspective())
	buf := m.Uniform().Marshal()

	require.Len(t, buf, 32)
	assert.Equal(t, common.SliceToBytes([]float32{0.1, 0.2, 0.3, 0.4}), buf[0:16])
	assert.Equal(t, common.SliceToBytes([]float32{0.5, 3, 1, 0}), buf[16:32])
}

func TestMaterialUniformLayoutMatchesWGSL(t *testing.T) {
	s := NewDefaultShader()
	size, ok := s.StructSize("PolylineMaterialUniform")
	require.True(t, ok)
	assert.Equal(t, uint64(MaterialUniform{}.Size()), size)
	assert.NoError(t, polyline.ValidateShader(s))
}
