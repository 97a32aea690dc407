// Package material layers a per-entity PolylineMaterial over the polyline core: line color,
// width, depth bias and perspective scaling. Materials are assets; each prepared material owns
// a small uniform buffer and the bind group over it, bound at group 1 between the view and the
// polyline instance groups.
package material

import (
	"github.com/Carmen-Shannon/oxy-polyline/engine/polyline"
	"github.com/go-gl/mathgl/mgl32"
)

// PolylineMaterial describes how a polyline is shaded.
type PolylineMaterial struct {
	// Width is the line width in pixels, or in world units when Perspective is set.
	Width float32
	// Color is the linear RGBA line color. An alpha below 1 draws the line in the
	// transparent phase.
	Color mgl32.Vec4
	// DepthBias moves the line toward the camera in clip space; positive values win depth
	// ties against coplanar geometry.
	DepthBias float32
	// Perspective draws Width in world units so the line thins with distance.
	Perspective bool
}

// NewPolylineMaterial creates an opaque white material 10 pixels wide.
//
// Parameters:
//   - opts: a variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - *PolylineMaterial: the new material
func NewPolylineMaterial(opts ...MaterialBuilderOption) *PolylineMaterial {
	m := &PolylineMaterial{
		Width: 10,
		Color: mgl32.Vec4{1, 1, 1, 1},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// IsTransparent reports whether the material blends with what is behind it.
func (m *PolylineMaterial) IsTransparent() bool {
	return m.Color.W() < 1
}

// Key returns the pipeline key bits the material contributes.
//
// Returns:
//   - polyline.PolylinePipelineKey: TRANSPARENT_MAIN_PASS and PERSPECTIVE as set by the material
func (m *PolylineMaterial) Key() polyline.PolylinePipelineKey {
	key := polyline.PolylinePipelineKeyNone
	if m.IsTransparent() {
		key |= polyline.PolylinePipelineKeyTransparentMainPass
	}
	if m.Perspective {
		key |= polyline.PolylinePipelineKeyPerspective
	}
	return key
}

// Uniform returns the GPU form of the material.
func (m *PolylineMaterial) Uniform() MaterialUniform {
	u := MaterialUniform{
		Color:     m.Color,
		DepthBias: m.DepthBias,
		Width:     m.Width,
	}
	if m.Perspective {
		u.Perspective = 1
	}
	return u
}
