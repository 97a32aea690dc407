// Package transform defines world-space transforms and the hierarchy propagation system.
package transform

import (
	"github.com/Carmen-Shannon/oxy-polyline/common"
	"github.com/Carmen-Shannon/oxy-polyline/engine/world"
	"github.com/go-gl/mathgl/mgl32"
)

// maxDepth bounds hierarchy walks so a malformed parent cycle cannot recurse forever.
const maxDepth = 64

// GlobalTransform is the world-space affine transform of an entity, written by Propagate.
type GlobalTransform struct {
	matrix mgl32.Mat4
}

// IdentityGlobalTransform returns the global transform at the world origin.
func IdentityGlobalTransform() GlobalTransform {
	return GlobalTransform{matrix: mgl32.Ident4()}
}

// GlobalFromTransform returns the global transform of a root entity with local transform t.
func GlobalFromTransform(t common.Transform) GlobalTransform {
	return GlobalTransform{matrix: t.Matrix()}
}

// GlobalFromMatrix wraps an affine matrix.
func GlobalFromMatrix(m mgl32.Mat4) GlobalTransform {
	return GlobalTransform{matrix: m}
}

// ComputeMatrix returns the 4x4 world matrix.
func (g GlobalTransform) ComputeMatrix() mgl32.Mat4 {
	return g.matrix
}

// Translation returns the world-space position.
func (g GlobalTransform) Translation() mgl32.Vec3 {
	return g.matrix.Col(3).Vec3()
}

// Forward returns the world-space direction of the local -Z axis.
func (g GlobalTransform) Forward() mgl32.Vec3 {
	return g.matrix.Col(2).Vec3().Mul(-1).Normalize()
}

// MulTransform returns the global transform of a child with local transform t.
func (g GlobalTransform) MulTransform(t common.Transform) GlobalTransform {
	return GlobalTransform{matrix: g.matrix.Mul4(t.Matrix())}
}

// Parent links an entity to the entity its transform and visibility are relative to.
type Parent struct {
	Entity world.EntityID
}

// Propagate writes a GlobalTransform for every entity with a common.Transform, composing the
// local transforms along each Parent chain. Entities whose parent has no Transform are
// treated as roots.
//
// Parameters:
//   - w: the application world
func Propagate(w *world.World) {
	locals := world.Query[common.Transform](w)
	byID := make(map[world.EntityID]common.Transform, len(locals))
	for _, e := range locals {
		byID[e.Entity] = e.Component
	}
	resolved := make(map[world.EntityID]GlobalTransform, len(locals))

	var resolve func(id world.EntityID, depth int) GlobalTransform
	resolve = func(id world.EntityID, depth int) GlobalTransform {
		if g, ok := resolved[id]; ok {
			return g
		}
		local := byID[id]
		g := GlobalFromTransform(local)
		if p, ok := world.Get[Parent](w, id); ok && depth < maxDepth {
			if _, hasLocal := byID[p.Entity]; hasLocal && p.Entity != id {
				g = resolve(p.Entity, depth+1).MulTransform(local)
			}
		}
		resolved[id] = g
		return g
	}

	batch := make([]world.Entry[GlobalTransform], 0, len(locals))
	for _, e := range locals {
		batch = append(batch, world.Entry[GlobalTransform]{Entity: e.Entity, Component: resolve(e.Entity, 0)})
	}
	world.InsertOrSpawnBatch(w, batch)
}
