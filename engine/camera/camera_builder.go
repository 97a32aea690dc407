package camera

import "github.com/Carmen-Shannon/oxy-polyline/common"

type CameraBuilderOption func(*cameraImpl)

// WithFov sets the camera's vertical field of view in radians.
//
// Parameters:
//   - fov: field of view in radians
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's field of view
func WithFov(fov float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov = fov
	}
}

// WithNear sets the near clipping plane distance.
//
// Parameters:
//   - near: near plane distance
//
// Returns:
//   - CameraBuilderOption: a function that sets the near plane
func WithNear(near float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if near > 0 {
			c.near = near
		}
	}
}

// WithOrder sets the camera's draw order.
//
// Parameters:
//   - order: lower orders render first
//
// Returns:
//   - CameraBuilderOption: a function that sets the order
func WithOrder(order int) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.order = order
	}
}

// WithHdr makes the camera render into a high dynamic range target.
//
// Returns:
//   - CameraBuilderOption: a function that enables HDR
func WithHdr() CameraBuilderOption {
	return func(c *cameraImpl) {
		c.hdr = true
	}
}

// WithClearColor sets the color the camera's target is cleared to.
//
// Parameters:
//   - r, g, b, a: color components in [0, 1]
//
// Returns:
//   - CameraBuilderOption: a function that sets the clear color
func WithClearColor(r, g, b, a float64) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.clearColor = [4]float64{r, g, b, a}
	}
}

// WithViewport restricts the camera to a sub-rectangle of its render target.
//
// Parameters:
//   - vp: the viewport in pixels
//
// Returns:
//   - CameraBuilderOption: a function that sets the viewport
func WithViewport(vp common.Viewport) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.viewport = &vp
	}
}
