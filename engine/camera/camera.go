// Package camera defines the perspective camera component and an orbit controller that drives
// a camera entity's transform.
package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-polyline/common"
	"github.com/Carmen-Shannon/oxy-polyline/engine/transform"
	"github.com/go-gl/mathgl/mgl32"
)

type cameraImpl struct {
	mu *sync.Mutex

	fov    float32
	near   float32
	order  int
	active bool
	hdr    bool

	clearColor [4]float64
	viewport   *common.Viewport
}

// Camera is a perspective camera component. Its world position and orientation come from the
// entity's GlobalTransform; the camera holds only the projection and target settings.
// Projections use an infinite far plane with reversed depth.
type Camera interface {
	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Order returns the draw order of the camera. Lower orders render first.
	//
	// Returns:
	//   - int: the camera order
	Order() int

	// IsActive reports whether the camera renders this frame.
	//
	// Returns:
	//   - bool: true if active
	IsActive() bool

	// Hdr reports whether the camera renders into a high dynamic range target.
	//
	// Returns:
	//   - bool: true if HDR
	Hdr() bool

	// ClearColor returns the RGBA color the camera's target is cleared to.
	//
	// Returns:
	//   - [4]float64: the clear color
	ClearColor() [4]float64

	// Viewport returns the camera's sub-rectangle of the target, resolving to the full target
	// when the camera has none.
	//
	// Parameters:
	//   - targetWidth, targetHeight: the render target size in pixels
	//
	// Returns:
	//   - common.Viewport: the viewport in pixels
	Viewport(targetWidth, targetHeight uint32) common.Viewport

	// Projection computes the projection matrix for the given aspect ratio.
	//
	// Parameters:
	//   - aspect: viewport width / height
	//
	// Returns:
	//   - mgl32.Mat4: the reverse-Z infinite perspective projection
	Projection(aspect float32) mgl32.Mat4

	// Frustum computes the world-space frustum of the camera placed at global.
	//
	// Parameters:
	//   - global: the camera entity's world transform
	//   - aspect: viewport width / height
	//
	// Returns:
	//   - common.Frustum: the view frustum
	Frustum(global transform.GlobalTransform, aspect float32) common.Frustum

	// SetFov sets the vertical field of view in radians.
	//
	// Parameters:
	//   - fov: field of view in radians
	SetFov(fov float32)

	// SetActive enables or disables rendering for the camera.
	//
	// Parameters:
	//   - active: whether the camera renders
	SetActive(active bool)

	// SetHdr toggles high dynamic range output.
	//
	// Parameters:
	//   - hdr: whether the camera renders HDR
	SetHdr(hdr bool)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new active Camera with default perspective settings.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:         &sync.Mutex{},
		fov:        45.0 * (math.Pi / 180.0), // radians
		near:       0.1,
		active:     true,
		clearColor: [4]float64{0, 0, 0, 1},
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Order() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order
}

func (c *cameraImpl) IsActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *cameraImpl) Hdr() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hdr
}

func (c *cameraImpl) ClearColor() [4]float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clearColor
}

func (c *cameraImpl) Viewport(targetWidth, targetHeight uint32) common.Viewport {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.viewport == nil {
		return common.Viewport{Width: targetWidth, Height: targetHeight}
	}
	vp := *c.viewport
	vp.Width = min(vp.Width, targetWidth-min(vp.X, targetWidth))
	vp.Height = min(vp.Height, targetHeight-min(vp.Y, targetHeight))
	return vp
}

func (c *cameraImpl) Projection(aspect float32) mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return common.PerspectiveInfiniteReverseZ(c.fov, aspect, c.near)
}

func (c *cameraImpl) Frustum(global transform.GlobalTransform, aspect float32) common.Frustum {
	view := global.ComputeMatrix().Inv()
	return common.ExtractFrustumFromMatrix(c.Projection(aspect).Mul4(view))
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
}

func (c *cameraImpl) SetActive(active bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = active
}

func (c *cameraImpl) SetHdr(hdr bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hdr = hdr
}
