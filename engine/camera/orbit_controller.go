package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-polyline/common"
	"github.com/go-gl/mathgl/mgl32"
)

// orbitControllerImpl orbits a camera around a target point using spherical coordinates
// (radius, azimuth, elevation) relative to the target.
type orbitControllerImpl struct {
	mu *sync.Mutex

	target mgl32.Vec3

	radius    float32
	azimuth   float32 // horizontal angle around Y, 0 = +Z
	elevation float32 // vertical angle from the horizontal plane

	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32

	orbitSpeed float32
	zoomSpeed  float32
}

// OrbitController produces a camera Transform orbiting a target point. The scene applies
// Transform to the controlled camera entity every tick.
type OrbitController interface {
	// OrbitLeft rotates the camera left around the target by one orbit speed step.
	OrbitLeft()

	// OrbitRight rotates the camera right around the target by one orbit speed step.
	OrbitRight()

	// OrbitUp tilts the camera upward by one orbit speed step, clamped to max elevation.
	OrbitUp()

	// OrbitDown tilts the camera downward by one orbit speed step, clamped to min elevation.
	OrbitDown()

	// Rotate turns the camera around the target by the given angles, clamping elevation.
	//
	// Parameters:
	//   - dAzimuth: horizontal angle change in radians
	//   - dElevation: vertical angle change in radians
	Rotate(dAzimuth, dElevation float32)

	// Zoom adjusts the orbit radius. Positive delta moves closer to the target.
	//
	// Parameters:
	//   - delta: zoom amount scaled by the zoom speed
	Zoom(delta float32)

	// HandleKey applies the orbit binding of a pressed key: the arrow keys orbit.
	//
	// Parameters:
	//   - key: the key code (see common.Key*)
	//
	// Returns:
	//   - bool: true if the key was consumed
	HandleKey(key int) bool

	// Target returns the orbit pivot.
	//
	// Returns:
	//   - mgl32.Vec3: world-space pivot
	Target() mgl32.Vec3

	// SetTarget moves the orbit pivot.
	//
	// Parameters:
	//   - target: world-space pivot
	SetTarget(target mgl32.Vec3)

	// Radius returns the current distance from the target.
	//
	// Returns:
	//   - float32: the orbit radius
	Radius() float32

	// Azimuth returns the current horizontal angle in radians.
	//
	// Returns:
	//   - float32: the azimuth
	Azimuth() float32

	// Elevation returns the current vertical angle in radians.
	//
	// Returns:
	//   - float32: the elevation
	Elevation() float32

	// Position returns the world-space camera position derived from the spherical coordinates.
	//
	// Returns:
	//   - mgl32.Vec3: the camera position
	Position() mgl32.Vec3

	// Transform returns the camera transform at Position looking at Target.
	//
	// Returns:
	//   - common.Transform: the camera's local transform
	Transform() common.Transform
}

var _ OrbitController = &orbitControllerImpl{}

// NewOrbitController creates an orbit controller with sensible defaults.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - OrbitController: the newly created controller
func NewOrbitController(options ...OrbitControllerOption) OrbitController {
	oc := &orbitControllerImpl{
		mu: &sync.Mutex{},

		radius:    10.0,
		elevation: float32(math.Pi / 6),

		minRadius:    1.0,
		maxRadius:    500.0,
		minElevation: float32(-math.Pi/2 + 0.1),
		maxElevation: float32(math.Pi/2 - 0.1),

		orbitSpeed: 0.03,
		zoomSpeed:  1.0,
	}
	for _, option := range options {
		option(oc)
	}
	oc.clamp()
	return oc
}

// clamp keeps radius and elevation inside their bounds. Caller must hold the mutex.
func (oc *orbitControllerImpl) clamp() {
	oc.radius = common.Clamp(oc.radius, oc.minRadius, oc.maxRadius)
	oc.elevation = common.Clamp(oc.elevation, oc.minElevation, oc.maxElevation)
}

// position computes the camera position. Caller must hold the mutex.
func (oc *orbitControllerImpl) position() mgl32.Vec3 {
	cosElev := float32(math.Cos(float64(oc.elevation)))
	sinElev := float32(math.Sin(float64(oc.elevation)))
	cosAzim := float32(math.Cos(float64(oc.azimuth)))
	sinAzim := float32(math.Sin(float64(oc.azimuth)))
	return oc.target.Add(mgl32.Vec3{
		oc.radius * cosElev * sinAzim,
		oc.radius * sinElev,
		oc.radius * cosElev * cosAzim,
	})
}

func (oc *orbitControllerImpl) OrbitLeft() {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.azimuth -= oc.orbitSpeed
}

func (oc *orbitControllerImpl) OrbitRight() {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.azimuth += oc.orbitSpeed
}

func (oc *orbitControllerImpl) OrbitUp() {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.elevation += oc.orbitSpeed
	oc.clamp()
}

func (oc *orbitControllerImpl) OrbitDown() {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.elevation -= oc.orbitSpeed
	oc.clamp()
}

func (oc *orbitControllerImpl) Rotate(dAzimuth, dElevation float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.azimuth += dAzimuth
	oc.elevation += dElevation
	oc.clamp()
}

func (oc *orbitControllerImpl) Zoom(delta float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.radius -= delta * oc.zoomSpeed
	oc.clamp()
}

func (oc *orbitControllerImpl) HandleKey(key int) bool {
	switch key {
	case common.KeyLeft:
		oc.OrbitLeft()
	case common.KeyRight:
		oc.OrbitRight()
	case common.KeyUp:
		oc.OrbitUp()
	case common.KeyDown:
		oc.OrbitDown()
	default:
		return false
	}
	return true
}

func (oc *orbitControllerImpl) Target() mgl32.Vec3 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.target
}

func (oc *orbitControllerImpl) SetTarget(target mgl32.Vec3) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.target = target
}

func (oc *orbitControllerImpl) Radius() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.radius
}

func (oc *orbitControllerImpl) Azimuth() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.azimuth
}

func (oc *orbitControllerImpl) Elevation() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.elevation
}

func (oc *orbitControllerImpl) Position() mgl32.Vec3 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.position()
}

func (oc *orbitControllerImpl) Transform() common.Transform {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	p := oc.position()
	t := common.TransformFromTranslation(p[0], p[1], p[2])
	return t.LookingAt(oc.target, mgl32.Vec3{0, 1, 0})
}
