// Package asset provides typed handles and an in-memory asset registry that reports
// additions, modifications and removals as drainable events.
package asset

import "fmt"

// Handle refers to an asset of type T stored in an Assets[T]. A strong handle is what the
// application holds; a weak handle is a copy that never keeps the asset alive and is what
// the render world stores after extraction.
type Handle[T any] struct {
	id   uint64
	weak bool
}

// ID returns the asset id. The zero handle has id 0 and refers to nothing.
func (h Handle[T]) ID() uint64 {
	return h.id
}

// IsWeak reports whether this is a weak handle.
func (h Handle[T]) IsWeak() bool {
	return h.weak
}

// IsValid reports whether the handle refers to an allocated id.
func (h Handle[T]) IsValid() bool {
	return h.id != 0
}

// Weak returns a weak copy of the handle referring to the same asset.
func (h Handle[T]) Weak() Handle[T] {
	return Handle[T]{id: h.id, weak: true}
}

// Same reports whether two handles refer to the same asset regardless of strength.
func (h Handle[T]) Same(other Handle[T]) bool {
	return h.id == other.id
}

func (h Handle[T]) String() string {
	if h.weak {
		return fmt.Sprintf("Handle(%d, weak)", h.id)
	}
	return fmt.Sprintf("Handle(%d)", h.id)
}
