package polyline

import (
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-polyline/engine/asset"
	"github.com/Carmen-Shannon/oxy-polyline/engine/transform"
	"github.com/Carmen-Shannon/oxy-polyline/engine/visibility"
	"github.com/Carmen-Shannon/oxy-polyline/engine/world"
)

// defaultChunkSize is the number of entities one extraction task handles.
const defaultChunkSize = 256

// ExtractedPolyline is one entity of the extraction batch.
type ExtractedPolyline struct {
	Handle  asset.Handle[Polyline]
	Uniform PolylineUniform
}

// extractor is the implementation of the Extractor interface.
type extractor struct {
	mu *sync.Mutex

	pool      worker.DynamicWorkerPool
	hasPool   bool
	chunkSize int

	lastCount int
}

// Extractor copies visible polyline entities from the main world into the render world.
type Extractor interface {
	// Collect builds the extraction batch: one entry per entity carrying a polyline handle, a
	// GlobalTransform and both visibility flags set, ordered by entity. The batch is pre-sized
	// to the previous call's count.
	//
	// Parameters:
	//   - main: the application world
	//
	// Returns:
	//   - []world.Entry[ExtractedPolyline]: the batch
	Collect(main *world.World) []world.Entry[ExtractedPolyline]

	// Extract collects the batch and records its insertion into the render world on cmds as
	// a weak asset.Handle[Polyline] and a PolylineUniform per entity.
	//
	// Parameters:
	//   - main: the application world
	//   - cmds: the render world command buffer, applied after extraction
	//
	// Returns:
	//   - int: the number of extracted entities
	Extract(main *world.World, cmds *world.Commands) int

	// LastCount returns the size of the most recent batch.
	//
	// Returns:
	//   - int: the entity count
	LastCount() int
}

var _ Extractor = &extractor{}

// NewExtractor creates an Extractor. Without a worker pool the batch is built on the
// calling goroutine.
//
// Parameters:
//   - opts: a variadic list of ExtractorBuilderOption functions
//
// Returns:
//   - Extractor: the new extractor
func NewExtractor(opts ...ExtractorBuilderOption) Extractor {
	e := &extractor{
		mu:        &sync.Mutex{},
		chunkSize: defaultChunkSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *extractor) Collect(main *world.World) []world.Entry[ExtractedPolyline] {
	handles := world.Query[asset.Handle[Polyline]](main)

	e.mu.Lock()
	capacity := e.lastCount
	e.mu.Unlock()

	var out []world.Entry[ExtractedPolyline]
	if !e.hasPool || len(handles) <= e.chunkSize {
		out = make([]world.Entry[ExtractedPolyline], 0, capacity)
		out = appendExtracted(out, main, handles)
	} else {
		chunks := make([][]world.Entry[ExtractedPolyline], (len(handles)+e.chunkSize-1)/e.chunkSize)
		var wg sync.WaitGroup
		for i := range chunks {
			lo := i * e.chunkSize
			hi := min(lo+e.chunkSize, len(handles))
			idx := i
			wg.Add(1)
			e.pool.SubmitTask(worker.Task{
				ID: idx,
				Do: func() (any, error) {
					defer wg.Done()
					chunks[idx] = appendExtracted(nil, main, handles[lo:hi])
					return nil, nil
				},
			})
		}
		wg.Wait()
		out = make([]world.Entry[ExtractedPolyline], 0, max(capacity, len(handles)))
		for _, c := range chunks {
			out = append(out, c...)
		}
	}

	e.mu.Lock()
	e.lastCount = len(out)
	e.mu.Unlock()
	return out
}

// appendExtracted appends the visible entities of handles to out.
func appendExtracted(out []world.Entry[ExtractedPolyline], main *world.World, handles []world.Entry[asset.Handle[Polyline]]) []world.Entry[ExtractedPolyline] {
	for _, h := range handles {
		inherited, ok := world.Get[visibility.InheritedVisibility](main, h.Entity)
		if !ok || !bool(inherited) {
			continue
		}
		viewVisible, ok := world.Get[visibility.ViewVisibility](main, h.Entity)
		if !ok || !bool(viewVisible) {
			continue
		}
		global, ok := world.Get[transform.GlobalTransform](main, h.Entity)
		if !ok {
			continue
		}
		out = append(out, world.Entry[ExtractedPolyline]{
			Entity: h.Entity,
			Component: ExtractedPolyline{
				Handle:  h.Component.Weak(),
				Uniform: PolylineUniform{Transform: global.ComputeMatrix()},
			},
		})
	}
	return out
}

func (e *extractor) Extract(main *world.World, cmds *world.Commands) int {
	batch := e.Collect(main)
	handles := make([]world.Entry[asset.Handle[Polyline]], len(batch))
	uniforms := make([]world.Entry[PolylineUniform], len(batch))
	for i, b := range batch {
		handles[i] = world.Entry[asset.Handle[Polyline]]{Entity: b.Entity, Component: b.Component.Handle}
		uniforms[i] = world.Entry[PolylineUniform]{Entity: b.Entity, Component: b.Component.Uniform}
	}
	world.InsertOrSpawnBatchCommand(cmds, handles)
	world.InsertOrSpawnBatchCommand(cmds, uniforms)
	return len(batch)
}

func (e *extractor) LastCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastCount
}
