// Package visibility computes which entities are drawn by each view: user visibility,
// hierarchy inheritance and frustum culling against world-space bounds.
package visibility

import (
	"github.com/Carmen-Shannon/oxy-polyline/common"
	"github.com/Carmen-Shannon/oxy-polyline/engine/transform"
	"github.com/Carmen-Shannon/oxy-polyline/engine/world"
)

const maxDepth = 64

// Visibility is the user-controlled visibility of an entity.
type Visibility int

const (
	// Inherited takes the visibility of the parent, or visible for roots.
	Inherited Visibility = iota
	// Visible forces the entity visible regardless of its parent.
	Visible
	// Hidden hides the entity and every descendant that inherits from it.
	Hidden
)

// String returns the visibility name.
func (v Visibility) String() string {
	switch v {
	case Visible:
		return "Visible"
	case Hidden:
		return "Hidden"
	default:
		return "Inherited"
	}
}

// InheritedVisibility is whether the entity is visible in the hierarchy, written by Propagate.
type InheritedVisibility bool

// ViewVisibility is whether the entity is visible from at least one view this frame, written by
// Check. Only entities with ViewVisibility true are extracted.
type ViewVisibility bool

// NoFrustumCulling marks an entity as exempt from frustum tests.
type NoFrustumCulling struct{}

// Propagate resolves InheritedVisibility for every entity carrying a Visibility.
//
// Parameters:
//   - w: the application world
func Propagate(w *world.World) {
	entries := world.Query[Visibility](w)
	byID := make(map[world.EntityID]Visibility, len(entries))
	for _, e := range entries {
		byID[e.Entity] = e.Component
	}
	resolved := make(map[world.EntityID]bool, len(entries))

	var resolve func(id world.EntityID, depth int) bool
	resolve = func(id world.EntityID, depth int) bool {
		if v, ok := resolved[id]; ok {
			return v
		}
		visible := true
		switch byID[id] {
		case Hidden:
			visible = false
		case Inherited:
			if p, ok := world.Get[transform.Parent](w, id); ok && depth < maxDepth && p.Entity != id {
				if _, tracked := byID[p.Entity]; tracked {
					visible = resolve(p.Entity, depth+1)
				}
			}
		}
		resolved[id] = visible
		return visible
	}

	batch := make([]world.Entry[InheritedVisibility], 0, len(entries))
	for _, e := range entries {
		batch = append(batch, world.Entry[InheritedVisibility]{Entity: e.Entity, Component: InheritedVisibility(resolve(e.Entity, 0))})
	}
	world.InsertOrSpawnBatch(w, batch)
}

// Check resets every ViewVisibility and marks visible each entity that is visible in the
// hierarchy and whose bounds intersect at least one of the frustums. Entities without an Aabb
// or with NoFrustumCulling skip the frustum test.
//
// Parameters:
//   - w: the application world
//   - frustums: the world-space frustums of the active views
//
// Returns:
//   - int: the number of entities marked visible
func Check(w *world.World, frustums []common.Frustum) int {
	inherited := world.Query[InheritedVisibility](w)
	batch := make([]world.Entry[ViewVisibility], 0, len(inherited))
	visibleCount := 0
	for _, e := range inherited {
		visible := bool(e.Component) && len(frustums) > 0
		if visible && !world.Has[NoFrustumCulling](w, e.Entity) {
			if aabb, ok := world.Get[common.Aabb](w, e.Entity); ok {
				model := transform.IdentityGlobalTransform().ComputeMatrix()
				if g, ok := world.Get[transform.GlobalTransform](w, e.Entity); ok {
					model = g.ComputeMatrix()
				}
				visible = false
				for i := range frustums {
					if frustums[i].IntersectsAabb(aabb, model) {
						visible = true
						break
					}
				}
			}
		}
		if visible {
			visibleCount++
		}
		batch = append(batch, world.Entry[ViewVisibility]{Entity: e.Entity, Component: ViewVisibility(visible)})
	}
	world.InsertOrSpawnBatch(w, batch)
	return visibleCount
}

// IsVisible reports whether id was marked visible by the last Check.
func IsVisible(w *world.World, id world.EntityID) bool {
	v, ok := world.Get[ViewVisibility](w, id)
	return ok && bool(v)
}
