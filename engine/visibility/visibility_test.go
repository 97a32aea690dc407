package visibility

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-polyline/common"
	"github.com/Carmen-Shannon/oxy-polyline/engine/transform"
	"github.com/Carmen-Shannon/oxy-polyline/engine/world"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func forwardFrustum() common.Frustum {
	proj := common.PerspectiveInfiniteReverseZ(mgl32.DegToRad(90), 1, 0.1)
	return common.ExtractFrustumFromMatrix(proj)
}

func TestPropagateHiddenParent(t *testing.T) {
	w := world.NewWorld("main")
	parent := w.Spawn()
	inheriting := w.Spawn()
	forced := w.Spawn()
	world.Insert(w, parent, Hidden)
	world.Insert(w, inheriting, Inherited)
	world.Insert(w, inheriting, transform.Parent{Entity: parent})
	world.Insert(w, forced, Visible)
	world.Insert(w, forced, transform.Parent{Entity: parent})

	Propagate(w)

	v, _ := world.Get[InheritedVisibility](w, parent)
	assert.False(t, bool(v))
	v, _ = world.Get[InheritedVisibility](w, inheriting)
	assert.False(t, bool(v))
	v, _ = world.Get[InheritedVisibility](w, forced)
	assert.True(t, bool(v))
}

func TestCheckCullsOutsideFrustum(t *testing.T) {
	w := world.NewWorld("main")
	front := w.Spawn()
	behind := w.Spawn()
	unbounded := w.Spawn()
	box := common.Aabb{HalfExtents: mgl32.Vec3{0.5, 0.5, 0.5}}
	for _, id := range []world.EntityID{front, behind, unbounded} {
		world.Insert(w, id, Inherited)
	}
	world.Insert(w, front, box)
	world.Insert(w, front, transform.GlobalFromTransform(common.TransformFromTranslation(0, 0, -5)))
	world.Insert(w, behind, box)
	world.Insert(w, behind, transform.GlobalFromTransform(common.TransformFromTranslation(0, 0, 5)))

	Propagate(w)
	n := Check(w, []common.Frustum{forwardFrustum()})

	assert.Equal(t, 2, n)
	assert.True(t, IsVisible(w, front))
	assert.False(t, IsVisible(w, behind))
	assert.True(t, IsVisible(w, unbounded))
}

func TestCheckNoFrustumCullingAndNoViews(t *testing.T) {
	w := world.NewWorld("main")
	id := w.Spawn()
	world.Insert(w, id, Visible)
	world.Insert(w, id, common.Aabb{HalfExtents: mgl32.Vec3{1, 1, 1}})
	world.Insert(w, id, transform.GlobalFromTransform(common.TransformFromTranslation(0, 0, 50)))
	world.Insert(w, id, NoFrustumCulling{})

	Propagate(w)
	assert.Equal(t, 1, Check(w, []common.Frustum{forwardFrustum()}))
	assert.Equal(t, 0, Check(w, nil))
	assert.False(t, IsVisible(w, id))
}

func TestVisibilityString(t *testing.T) {
	assert.Equal(t, "Inherited", Inherited.String())
	assert.Equal(t, "Visible", Visible.String())
	assert.Equal(t, "Hidden", Hidden.String())
}
