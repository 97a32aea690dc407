package transform

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-polyline/common"
	"github.com/Carmen-Shannon/oxy-polyline/engine/world"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropagateHierarchy(t *testing.T) {
	w := world.NewWorld("main")
	root := w.Spawn()
	child := w.Spawn()
	grandchild := w.Spawn()

	rootT := common.TransformFromTranslation(10, 0, 0)
	rootT.Scale = mgl32.Vec3{2, 2, 2}
	world.Insert(w, root, rootT)
	world.Insert(w, child, common.TransformFromTranslation(0, 1, 0))
	world.Insert(w, child, Parent{Entity: root})
	world.Insert(w, grandchild, common.TransformFromTranslation(0, 0, 1))
	world.Insert(w, grandchild, Parent{Entity: child})

	Propagate(w)

	g, ok := world.Get[GlobalTransform](w, grandchild)
	require.True(t, ok)
	assert.True(t, g.Translation().ApproxEqual(mgl32.Vec3{10, 2, 2}), "got %v", g.Translation())

	g, _ = world.Get[GlobalTransform](w, root)
	assert.True(t, g.Translation().ApproxEqual(mgl32.Vec3{10, 0, 0}))
}

func TestPropagateTreatsMissingParentAsRoot(t *testing.T) {
	w := world.NewWorld("main")
	orphan := w.Spawn()
	world.Insert(w, orphan, common.TransformFromTranslation(1, 2, 3))
	world.Insert(w, orphan, Parent{Entity: 999})

	Propagate(w)
	g, _ := world.Get[GlobalTransform](w, orphan)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, g.Translation())
}

func TestPropagateSurvivesCycles(t *testing.T) {
	w := world.NewWorld("main")
	a := w.Spawn()
	b := w.Spawn()
	world.Insert(w, a, common.TransformFromTranslation(1, 0, 0))
	world.Insert(w, b, common.TransformFromTranslation(1, 0, 0))
	world.Insert(w, a, Parent{Entity: b})
	world.Insert(w, b, Parent{Entity: a})

	assert.NotPanics(t, func() { Propagate(w) })
	assert.Equal(t, 2, world.Count[GlobalTransform](w))
}

func TestGlobalTransformForward(t *testing.T) {
	g := GlobalFromTransform(common.IdentityTransform().LookingAt(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}))
	assert.True(t, g.Forward().ApproxEqualThreshold(mgl32.Vec3{1, 0, 0}, 1e-5), "got %v", g.Forward())
	assert.True(t, IdentityGlobalTransform().ComputeMatrix().ApproxEqual(mgl32.Ident4()))
}
