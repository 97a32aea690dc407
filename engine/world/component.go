package world

import (
	"cmp"
	"reflect"
	"slices"
)

// Entry pairs an entity with one of its components.
type Entry[T any] struct {
	Entity    EntityID
	Component T
}

// Insert sets the T component of id, replacing any existing value. Inserting on an id the
// world has not seen makes it live, which is how ids from another world are adopted.
//
// Parameters:
//   - w: the world
//   - id: the entity
//   - value: the component value
func Insert[T any](w *World, id EntityID, value T) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entities[id] = struct{}{}
	columnFor[T](w, true).values[id] = value
}

// Get returns the T component of id.
//
// Returns:
//   - T: the component, or the zero value
//   - bool: true if the entity has the component
func Get[T any](w *World, id EntityID) (T, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	var zero T
	c := columnFor[T](w, false)
	if c == nil {
		return zero, false
	}
	v, ok := c.values[id]
	return v, ok
}

// Has reports whether id carries a T component.
func Has[T any](w *World, id EntityID) bool {
	_, ok := Get[T](w, id)
	return ok
}

// Remove deletes the T component of id, keeping the entity alive.
func Remove[T any](w *World, id EntityID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if c := columnFor[T](w, false); c != nil {
		delete(c.values, id)
	}
}

// Count returns how many entities carry a T component.
func Count[T any](w *World) int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	c := columnFor[T](w, false)
	if c == nil {
		return 0
	}
	return len(c.values)
}

// Query returns a snapshot of every T component ordered by entity id.
//
// Parameters:
//   - w: the world
//
// Returns:
//   - []Entry[T]: the entities and their components
func Query[T any](w *World) []Entry[T] {
	w.mu.RLock()
	c := columnFor[T](w, false)
	if c == nil {
		w.mu.RUnlock()
		return nil
	}
	out := make([]Entry[T], 0, len(c.values))
	for id, v := range c.values {
		out = append(out, Entry[T]{Entity: id, Component: v})
	}
	w.mu.RUnlock()
	slices.SortFunc(out, func(a, b Entry[T]) int {
		return cmp.Compare(a.Entity, b.Entity)
	})
	return out
}

// InsertOrSpawnBatch inserts every entry in a single critical section. Entities that do not
// exist yet are spawned with the given id.
//
// Parameters:
//   - w: the world
//   - batch: the entity/component pairs to install
func InsertOrSpawnBatch[T any](w *World, batch []Entry[T]) {
	if len(batch) == 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	c := columnFor[T](w, true)
	for _, e := range batch {
		w.entities[e.Entity] = struct{}{}
		c.values[e.Entity] = e.Component
	}
}

// SetResource stores the singleton T, replacing any previous value.
func SetResource[T any](w *World, value T) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.resources[reflect.TypeFor[T]()] = value
}

// Resource returns the singleton T.
//
// Returns:
//   - T: the resource, or the zero value
//   - bool: true if the resource is present
func Resource[T any](w *World) (T, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	v, ok := w.resources[reflect.TypeFor[T]()]
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// MustResource returns the singleton T and panics when it was never registered.
// Systems use this for resources their plugin installs at build time.
func MustResource[T any](w *World) T {
	v, ok := Resource[T](w)
	if !ok {
		panic("world: missing resource " + reflect.TypeFor[T]().String() + " in " + w.label + " world")
	}
	return v
}

// RemoveResource deletes the singleton T.
func RemoveResource[T any](w *World) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.resources, reflect.TypeFor[T]())
}
