// Package render_asset mirrors application assets into prepared GPU forms. Each mirror entry
// is keyed by the asset handle, replaced wholesale when the source asset changes, and
// released only after the frames that may still reference it have completed.
package render_asset

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-polyline/engine/asset"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/render_device"
)

// ErrRetryNextFrame is wrapped by a preparer to request that the asset be prepared again on
// the next frame, typically after a device allocation failure.
var ErrRetryNextFrame = errors.New("render asset: retry next frame")

// Preparer translates a snapshot of an application asset into its prepared form.
type Preparer[A, P any] func(source *A, device render_device.RenderDevice) (P, error)

// entry is one prepared asset.
type entry[P any] struct {
	value      P
	generation uint64
}

// retiredEntry is a prepared asset waiting for in-flight frames to complete.
type retiredEntry[P any] struct {
	value     P
	retiredAt uint64
}

// PrepareStats summarizes one Prepare call.
type PrepareStats struct {
	Prepared int
	Retried  int
	Failed   int
	Removed  int
}

// renderAssets is the implementation of RenderAssets.
type renderAssets[A, P any] struct {
	mu *sync.Mutex

	prepare        Preparer[A, P]
	release        func(P)
	clone          func(*A) *A
	framesInFlight uint64

	prepared    map[uint64]entry[P]
	generations map[uint64]uint64
	queued      map[uint64]*A
	removed     []uint64
	retired     []retiredEntry[P]
}

// RenderAssets is the render-side mirror of an asset registry.
type RenderAssets[A, P any] interface {
	// Extract drains the registry's events and snapshots every added or modified asset for
	// preparation. It runs during extraction while the application world is held stable.
	//
	// Parameters:
	//   - assets: the application registry
	Extract(assets *asset.Assets[A])

	// Prepare runs the preparer over queued snapshots. Assets whose preparer returned an error
	// wrapping ErrRetryNextFrame stay queued; other errors drop the snapshot and are joined
	// into the returned error. Replaced and removed entries are retired at frame.
	//
	// Parameters:
	//   - device: the device handed to the preparer
	//   - frame: the current frame number
	//
	// Returns:
	//   - PrepareStats: counts of outcomes
	//   - error: the joined non-retry errors, or nil
	Prepare(device render_device.RenderDevice, frame uint64) (PrepareStats, error)

	// Get returns the prepared form of h.
	//
	// Parameters:
	//   - h: the asset handle, strong or weak
	//
	// Returns:
	//   - P: the prepared asset
	//   - bool: true if the asset has been prepared
	Get(h asset.Handle[A]) (P, bool)

	// Generation returns how many times h has been prepared; 0 if never.
	//
	// Parameters:
	//   - h: the asset handle
	//
	// Returns:
	//   - uint64: the generation counter
	Generation(h asset.Handle[A]) uint64

	// Retire releases retired entries once framesInFlight frames have passed since they were
	// retired.
	//
	// Parameters:
	//   - completedFrame: the most recent frame whose GPU work has been submitted
	//
	// Returns:
	//   - int: the number of entries released
	Retire(completedFrame uint64) int

	// Len returns the number of prepared assets.
	Len() int

	// Pending returns the number of snapshots waiting for preparation.
	Pending() int
}

var _ RenderAssets[struct{}, struct{}] = &renderAssets[struct{}, struct{}]{}

// NewRenderAssets creates an empty mirror that prepares assets with prepare.
//
// Parameters:
//   - prepare: the translation from asset snapshot to prepared form
//   - opts: a variadic list of RenderAssetsBuilderOption functions
//
// Returns:
//   - RenderAssets[A, P]: the new mirror
func NewRenderAssets[A, P any](prepare Preparer[A, P], opts ...RenderAssetsBuilderOption[A, P]) RenderAssets[A, P] {
	if prepare == nil {
		panic("render_asset: a preparer is required")
	}
	r := &renderAssets[A, P]{
		mu:             &sync.Mutex{},
		prepare:        prepare,
		release:        func(P) {},
		clone:          func(a *A) *A { c := *a; return &c },
		framesInFlight: 2,
		prepared:       make(map[uint64]entry[P]),
		generations:    make(map[uint64]uint64),
		queued:         make(map[uint64]*A),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *renderAssets[A, P]) Extract(assets *asset.Assets[A]) {
	events := assets.DrainEvents()
	if len(events) == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ev := range events {
		id := ev.Handle.ID()
		switch ev.Kind {
		case asset.EventAdded, asset.EventModified:
			src, ok := assets.Get(ev.Handle)
			if !ok {
				continue
			}
			r.queued[id] = r.clone(src)
		case asset.EventRemoved:
			delete(r.queued, id)
			r.removed = append(r.removed, id)
		}
	}
}

func (r *renderAssets[A, P]) Prepare(device render_device.RenderDevice, frame uint64) (PrepareStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var stats PrepareStats
	for _, id := range r.removed {
		if old, ok := r.prepared[id]; ok {
			r.retired = append(r.retired, retiredEntry[P]{value: old.value, retiredAt: frame})
			delete(r.prepared, id)
			stats.Removed++
		}
		delete(r.generations, id)
	}
	r.removed = r.removed[:0]

	ids := make([]uint64, 0, len(r.queued))
	for id := range r.queued {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var errs []error
	for _, id := range ids {
		p, err := r.prepare(r.queued[id], device)
		if err != nil {
			if errors.Is(err, ErrRetryNextFrame) {
				stats.Retried++
				continue
			}
			stats.Failed++
			errs = append(errs, fmt.Errorf("asset %d: %w", id, err))
			delete(r.queued, id)
			continue
		}
		delete(r.queued, id)
		if old, ok := r.prepared[id]; ok {
			r.retired = append(r.retired, retiredEntry[P]{value: old.value, retiredAt: frame})
		}
		r.generations[id]++
		r.prepared[id] = entry[P]{value: p, generation: r.generations[id]}
		stats.Prepared++
	}
	return stats, errors.Join(errs...)
}

func (r *renderAssets[A, P]) Get(h asset.Handle[A]) (P, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.prepared[h.ID()]
	return e.value, ok
}

func (r *renderAssets[A, P]) Generation(h asset.Handle[A]) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.prepared[h.ID()].generation
}

func (r *renderAssets[A, P]) Retire(completedFrame uint64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	released := 0
	kept := r.retired[:0]
	for _, e := range r.retired {
		if e.retiredAt+r.framesInFlight <= completedFrame {
			r.release(e.value)
			released++
			continue
		}
		kept = append(kept, e)
	}
	clear(r.retired[len(kept):])
	r.retired = kept
	return released
}

func (r *renderAssets[A, P]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.prepared)
}

func (r *renderAssets[A, P]) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queued)
}
