package camera

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-polyline/common"
	"github.com/Carmen-Shannon/oxy-polyline/engine/transform"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestCameraDefaults(t *testing.T) {
	c := NewCamera()
	assert.True(t, c.IsActive())
	assert.False(t, c.Hdr())
	assert.InDelta(t, math.Pi/4, c.Fov(), 1e-6)
	assert.Equal(t, float32(0.1), c.Near())
	assert.Equal(t, [4]float64{0, 0, 0, 1}, c.ClearColor())
	assert.Equal(t, common.Viewport{Width: 800, Height: 600}, c.Viewport(800, 600))
}

func TestCameraViewportClamped(t *testing.T) {
	c := NewCamera(WithViewport(common.Viewport{X: 600, Y: 0, Width: 400, Height: 300}))
	assert.Equal(t, common.Viewport{X: 600, Width: 200, Height: 300}, c.Viewport(800, 600))
}

func TestCameraProjectionReverseZ(t *testing.T) {
	c := NewCamera(WithNear(0.5))
	p := c.Projection(1)
	clip := p.Mul4x1(mgl32.Vec4{0, 0, -0.5, 1})
	assert.InDelta(t, 1.0, clip[2]/clip[3], 1e-5)
	far := p.Mul4x1(mgl32.Vec4{0, 0, -1e6, 1})
	assert.Less(t, far[2]/far[3], float32(1e-5))
}

func TestCameraFrustumFollowsTransform(t *testing.T) {
	c := NewCamera(WithFov(mgl32.DegToRad(60)))
	global := transform.GlobalFromTransform(common.TransformFromTranslation(0, 0, 10).LookingAt(mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}))
	f := c.Frustum(global, 1)
	box := common.Aabb{HalfExtents: mgl32.Vec3{0.5, 0.5, 0.5}}
	assert.True(t, f.IntersectsAabb(box, mgl32.Ident4()))
	assert.False(t, f.IntersectsAabb(box, mgl32.Translate3D(0, 0, 20)))
}

func TestOrbitControllerClampsAndLooksAtTarget(t *testing.T) {
	oc := NewOrbitController(WithRadius(5), WithRadiusBounds(2, 8), WithElevation(0), WithTarget(mgl32.Vec3{1, 0, 0}))
	assert.True(t, oc.Position().ApproxEqualThreshold(mgl32.Vec3{1, 0, 5}, 1e-5))

	oc.Zoom(100)
	assert.Equal(t, float32(2), oc.Radius())
	oc.Zoom(-100)
	assert.Equal(t, float32(8), oc.Radius())

	for i := 0; i < 200; i++ {
		oc.OrbitUp()
	}
	assert.InDelta(t, math.Pi/2-0.1, oc.Elevation(), 1e-5)

	oc.Rotate(0.5, -10)
	assert.InDelta(t, 0.5, oc.Azimuth(), 1e-6)
	assert.InDelta(t, -math.Pi/2+0.1, oc.Elevation(), 1e-5)

	assert.True(t, oc.HandleKey(common.KeyLeft))
	assert.False(t, oc.HandleKey(common.KeyA))

	g := transform.GlobalFromTransform(oc.Transform())
	toTarget := oc.Target().Sub(oc.Position()).Normalize()
	assert.True(t, g.Forward().ApproxEqualThreshold(toTarget, 1e-4), "forward %v want %v", g.Forward(), toTarget)
}
