// Package world holds entity ids and typed component and resource storage. The same type
// backs both the application (main) world and the render world; entity ids are shared so an
// extracted entity keeps the id it had in the main world.
package world

import (
	"reflect"
	"slices"
	"sync"
	"sync/atomic"
)

// EntityID identifies an entity. The zero value is never allocated.
type EntityID uint64

// storage is the type-erased view of a component column used for entity-wide operations.
type storage interface {
	remove(id EntityID)
	clear()
}

// column stores the components of a single type keyed by entity.
type column[T any] struct {
	values map[EntityID]T
}

func (c *column[T]) remove(id EntityID) {
	delete(c.values, id)
}

func (c *column[T]) clear() {
	clear(c.values)
}

// World is a set of entities with typed component columns and singleton resources.
// All access is synchronized; queries return snapshots so callers may iterate without holding locks.
type World struct {
	mu *sync.RWMutex

	// label names the world in log output ("main", "render").
	label string

	// ids is shared between worlds built with the same allocator so ids never collide.
	ids *atomic.Uint64

	entities  map[EntityID]struct{}
	columns   map[reflect.Type]storage
	resources map[reflect.Type]any
}

// NewWorld creates an empty world with its own id allocator.
//
// Parameters:
//   - label: a debug name for the world
//
// Returns:
//   - *World: the new world
func NewWorld(label string) *World {
	return &World{
		mu:        &sync.RWMutex{},
		label:     label,
		ids:       &atomic.Uint64{},
		entities:  make(map[EntityID]struct{}),
		columns:   make(map[reflect.Type]storage),
		resources: make(map[reflect.Type]any),
	}
}

// NewLinkedWorld creates an empty world that allocates ids from the same sequence as other,
// so entities spawned in either world never collide.
//
// Parameters:
//   - label: a debug name for the world
//   - other: the world whose allocator is shared
//
// Returns:
//   - *World: the new world
func NewLinkedWorld(label string, other *World) *World {
	w := NewWorld(label)
	w.ids = other.ids
	return w
}

// Label returns the debug name of the world.
func (w *World) Label() string {
	return w.label
}

// Spawn allocates a new entity with no components.
//
// Returns:
//   - EntityID: the id of the new entity
func (w *World) Spawn() EntityID {
	id := EntityID(w.ids.Add(1))
	w.mu.Lock()
	w.entities[id] = struct{}{}
	w.mu.Unlock()
	return id
}

// Alive reports whether id exists in this world.
func (w *World) Alive(id EntityID) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.entities[id]
	return ok
}

// Despawn removes an entity and all of its components. Unknown ids are ignored.
func (w *World) Despawn(id EntityID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.entities, id)
	for _, c := range w.columns {
		c.remove(id)
	}
}

// Len returns the number of live entities.
func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.entities)
}

// Entities returns all live entity ids in ascending order.
func (w *World) Entities() []EntityID {
	w.mu.RLock()
	ids := make([]EntityID, 0, len(w.entities))
	for id := range w.entities {
		ids = append(ids, id)
	}
	w.mu.RUnlock()
	slices.Sort(ids)
	return ids
}

// ClearEntities despawns every entity while keeping resources. The render world calls this
// at the end of each frame so the next extraction starts from an empty mirror.
func (w *World) ClearEntities() {
	w.mu.Lock()
	defer w.mu.Unlock()
	clear(w.entities)
	for _, c := range w.columns {
		c.clear()
	}
}

// columnFor returns the column for T, creating it when create is set. Callers hold w.mu.
func columnFor[T any](w *World, create bool) *column[T] {
	key := reflect.TypeFor[T]()
	if c, ok := w.columns[key]; ok {
		return c.(*column[T])
	}
	if !create {
		return nil
	}
	c := &column[T]{values: make(map[EntityID]T)}
	w.columns[key] = c
	return c
}
