package polyline

import (
	"github.com/Carmen-Shannon/oxy-polyline/common"
	"github.com/Carmen-Shannon/oxy-polyline/engine/asset"
	"github.com/Carmen-Shannon/oxy-polyline/engine/transform"
	"github.com/Carmen-Shannon/oxy-polyline/engine/visibility"
	"github.com/Carmen-Shannon/oxy-polyline/engine/world"
)

// Bundle is the set of components a drawable polyline entity carries. M is the material
// asset type; polylines drawn with the default pipeline use a zero Material handle.
type Bundle[M any] struct {
	Polyline            asset.Handle[Polyline]
	Material            asset.Handle[M]
	Transform           common.Transform
	GlobalTransform     transform.GlobalTransform
	Visibility          visibility.Visibility
	InheritedVisibility visibility.InheritedVisibility
	ViewVisibility      visibility.ViewVisibility
}

// NewBundle creates a bundle at the origin that inherits its visibility. ViewVisibility starts
// false and is set by the first visibility check.
//
// Parameters:
//   - polyline: the polyline asset
//   - material: the material asset, or the zero handle
//
// Returns:
//   - Bundle[M]: the bundle
func NewBundle[M any](polyline asset.Handle[Polyline], material asset.Handle[M]) Bundle[M] {
	return Bundle[M]{
		Polyline:            polyline,
		Material:            material,
		Transform:           common.IdentityTransform(),
		GlobalTransform:     transform.IdentityGlobalTransform(),
		Visibility:          visibility.Inherited,
		InheritedVisibility: true,
	}
}

// Spawn creates an entity in w carrying every component of b. A zero Material handle is not
// inserted.
//
// Parameters:
//   - w: the application world
//
// Returns:
//   - world.EntityID: the new entity
func (b Bundle[M]) Spawn(w *world.World) world.EntityID {
	id := w.Spawn()
	world.Insert(w, id, b.Polyline)
	if b.Material.IsValid() {
		world.Insert(w, id, b.Material)
	}
	world.Insert(w, id, b.Transform)
	world.Insert(w, id, b.GlobalTransform)
	world.Insert(w, id, b.Visibility)
	world.Insert(w, id, b.InheritedVisibility)
	world.Insert(w, id, b.ViewVisibility)
	return id
}
