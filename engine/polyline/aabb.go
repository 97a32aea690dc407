package polyline

import (
	"github.com/Carmen-Shannon/oxy-polyline/common"
	"github.com/Carmen-Shannon/oxy-polyline/engine/asset"
	"github.com/Carmen-Shannon/oxy-polyline/engine/world"
)

// UpdateAabbs sets the common.Aabb of every polyline entity from the live vertices of its
// asset, so frustum culling sees the line's current extent. Entities whose polyline is
// missing or empty lose their Aabb and are not culled.
//
// Parameters:
//   - main: the application world
//   - polylines: the polyline assets
//
// Returns:
//   - int: the number of entities given bounds
func UpdateAabbs(main *world.World, polylines *asset.Assets[Polyline]) int {
	entries := world.Query[asset.Handle[Polyline]](main)
	batch := make([]world.Entry[common.Aabb], 0, len(entries))
	for _, e := range entries {
		p, ok := polylines.Get(e.Component)
		if !ok {
			world.Remove[common.Aabb](main, e.Entity)
			continue
		}
		aabb, ok := p.Aabb()
		if !ok {
			world.Remove[common.Aabb](main, e.Entity)
			continue
		}
		batch = append(batch, world.Entry[common.Aabb]{Entity: e.Entity, Component: aabb})
	}
	world.InsertOrSpawnBatch(main, batch)
	return len(batch)
}
