package polyline

import "github.com/Carmen-Shannon/automation/tools/worker"

// ExtractorBuilderOption is a functional option used to configure an Extractor during construction.
type ExtractorBuilderOption func(*extractor)

// WithExtractionPool splits extraction into chunks run on pool.
//
// Parameters:
//   - pool: the worker pool chunks are submitted to
//
// Returns:
//   - ExtractorBuilderOption: a function that sets the pool
func WithExtractionPool(pool worker.DynamicWorkerPool) ExtractorBuilderOption {
	return func(e *extractor) {
		e.pool = pool
		e.hasPool = true
	}
}

// WithChunkSize sets how many entities one extraction task handles. Values below 1 are ignored.
//
// Parameters:
//   - n: the chunk size
//
// Returns:
//   - ExtractorBuilderOption: a function that sets the chunk size
func WithChunkSize(n int) ExtractorBuilderOption {
	return func(e *extractor) {
		if n > 0 {
			e.chunkSize = n
		}
	}
}
