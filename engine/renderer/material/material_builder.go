package material

import "github.com/go-gl/mathgl/mgl32"

// MaterialBuilderOption is a functional option used to configure a PolylineMaterial during construction.
type MaterialBuilderOption func(*PolylineMaterial)

// WithWidth sets the line width.
//
// Parameters:
//   - width: pixels, or world units for perspective materials
//
// Returns:
//   - MaterialBuilderOption: a function that sets the width
func WithWidth(width float32) MaterialBuilderOption {
	return func(m *PolylineMaterial) {
		m.Width = width
	}
}

// WithColor sets the linear RGBA color.
//
// Parameters:
//   - color: the line color; alpha below 1 makes the material transparent
//
// Returns:
//   - MaterialBuilderOption: a function that sets the color
func WithColor(color mgl32.Vec4) MaterialBuilderOption {
	return func(m *PolylineMaterial) {
		m.Color = color
	}
}

// WithDepthBias sets the clip-space depth bias.
//
// Parameters:
//   - bias: the bias; positive values move the line toward the camera
//
// Returns:
//   - MaterialBuilderOption: a function that sets the depth bias
func WithDepthBias(bias float32) MaterialBuilderOption {
	return func(m *PolylineMaterial) {
		m.DepthBias = bias
	}
}

// WithPerspective draws the width in world units.
func WithPerspective() MaterialBuilderOption {
	return func(m *PolylineMaterial) {
		m.Perspective = true
	}
}
