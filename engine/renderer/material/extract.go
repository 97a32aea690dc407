package material

import (
	"github.com/Carmen-Shannon/oxy-polyline/engine/asset"
	"github.com/Carmen-Shannon/oxy-polyline/engine/polyline"
	"github.com/Carmen-Shannon/oxy-polyline/engine/visibility"
	"github.com/Carmen-Shannon/oxy-polyline/engine/world"
)

// ExtractMaterialHandles records a weak material handle on cmds for every main-world entity
// the polyline extractor also takes: a polyline handle and both visibility flags set.
//
// Parameters:
//   - main: the application world
//   - cmds: the render world command buffer
//
// Returns:
//   - int: the number of handles extracted
func ExtractMaterialHandles(main *world.World, cmds *world.Commands) int {
	entries := world.Query[asset.Handle[PolylineMaterial]](main)
	batch := make([]world.Entry[asset.Handle[PolylineMaterial]], 0, len(entries))
	for _, e := range entries {
		if !world.Has[asset.Handle[polyline.Polyline]](main, e.Entity) {
			continue
		}
		inherited, ok := world.Get[visibility.InheritedVisibility](main, e.Entity)
		if !ok || !bool(inherited) || !visibility.IsVisible(main, e.Entity) {
			continue
		}
		batch = append(batch, world.Entry[asset.Handle[PolylineMaterial]]{Entity: e.Entity, Component: e.Component.Weak()})
	}
	world.InsertOrSpawnBatchCommand(cmds, batch)
	return len(batch)
}
