package asset

import (
	"cmp"
	"slices"
	"sync"
)

// EventKind identifies an asset lifecycle transition.
type EventKind int

const (
	// EventAdded is reported once when an asset is first stored.
	EventAdded EventKind = iota

	// EventModified is reported whenever an asset is mutated or replaced.
	EventModified

	// EventRemoved is reported when an asset is dropped from the registry.
	EventRemoved
)

func (k EventKind) String() string {
	switch k {
	case EventAdded:
		return "added"
	case EventModified:
		return "modified"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event describes a lifecycle transition of one asset.
type Event[T any] struct {
	Kind   EventKind
	Handle Handle[T]
}

// Assets is the registry for assets of type T. The application is the single writer;
// readers on other goroutines see a consistent value per call.
type Assets[T any] struct {
	mu     *sync.RWMutex
	nextID uint64
	values map[uint64]*T
	events []Event[T]
}

// NewAssets creates an empty registry.
func NewAssets[T any]() *Assets[T] {
	return &Assets[T]{
		mu:     &sync.RWMutex{},
		values: make(map[uint64]*T),
	}
}

// Add stores value and returns a strong handle to it.
//
// Parameters:
//   - value: the asset to store; the registry takes ownership of the pointer
//
// Returns:
//   - Handle[T]: a strong handle to the new asset
func (a *Assets[T]) Add(value *T) Handle[T] {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nextID++
	h := Handle[T]{id: a.nextID}
	a.values[h.id] = value
	a.events = append(a.events, Event[T]{Kind: EventAdded, Handle: h})
	return h
}

// Get returns the asset for h.
//
// Returns:
//   - *T: the stored asset, or nil
//   - bool: true if the asset exists
func (a *Assets[T]) Get(h Handle[T]) (*T, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	v, ok := a.values[h.id]
	return v, ok
}

// Mutate runs fn on the asset for h under the write lock and reports a modification.
//
// Parameters:
//   - h: the asset to mutate
//   - fn: the mutation
//
// Returns:
//   - bool: false if the asset does not exist
func (a *Assets[T]) Mutate(h Handle[T], fn func(*T)) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	v, ok := a.values[h.id]
	if !ok {
		return false
	}
	fn(v)
	a.markModified(h)
	return true
}

// Set replaces the asset for h with value, reporting a modification, or stores it under h's
// id if absent, reporting an addition.
func (a *Assets[T]) Set(h Handle[T], value *T) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.values[h.id]; ok {
		a.values[h.id] = value
		a.markModified(h)
		return
	}
	a.values[h.id] = value
	a.nextID = max(a.nextID, h.id)
	a.events = append(a.events, Event[T]{Kind: EventAdded, Handle: Handle[T]{id: h.id}})
}

// Remove drops the asset for h. Removing an unknown handle is a no-op.
//
// Returns:
//   - bool: true if an asset was removed
func (a *Assets[T]) Remove(h Handle[T]) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.values[h.id]; !ok {
		return false
	}
	delete(a.values, h.id)
	a.events = append(a.events, Event[T]{Kind: EventRemoved, Handle: Handle[T]{id: h.id}})
	return true
}

// Len returns the number of stored assets.
func (a *Assets[T]) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.values)
}

// Handles returns strong handles to every stored asset ordered by id.
func (a *Assets[T]) Handles() []Handle[T] {
	a.mu.RLock()
	out := make([]Handle[T], 0, len(a.values))
	for id := range a.values {
		out = append(out, Handle[T]{id: id})
	}
	a.mu.RUnlock()
	slices.SortFunc(out, func(x, y Handle[T]) int {
		return cmp.Compare(x.id, y.id)
	})
	return out
}

// DrainEvents returns the events recorded since the previous drain, in order.
func (a *Assets[T]) DrainEvents() []Event[T] {
	a.mu.Lock()
	defer a.mu.Unlock()
	events := a.events
	a.events = nil
	return events
}

// markModified appends a modified event unless the most recent pending event for h already
// covers it. Callers hold a.mu.
func (a *Assets[T]) markModified(h Handle[T]) {
	for i := len(a.events) - 1; i >= 0; i-- {
		if a.events[i].Handle.id != h.id {
			continue
		}
		if a.events[i].Kind != EventRemoved {
			return
		}
		break
	}
	a.events = append(a.events, Event[T]{Kind: EventModified, Handle: Handle[T]{id: h.id}})
}
