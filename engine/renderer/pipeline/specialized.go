package pipeline

import "sync"

// Specializer builds the pipeline descriptor for one variant of a pipeline family. Specialize
// must be deterministic: equal keys produce equal descriptors.
type Specializer[K comparable] interface {
	Specialize(key K) RenderPipelineDescriptor
}

// SpecializerFunc adapts a plain function to the Specializer interface.
type SpecializerFunc[K comparable] func(key K) RenderPipelineDescriptor

// Specialize calls f(key).
func (f SpecializerFunc[K]) Specialize(key K) RenderPipelineDescriptor {
	return f(key)
}

// SpecializedRenderPipelines memoizes the pipeline queued for each key so every variant is
// specialized and created at most once.
type SpecializedRenderPipelines[K comparable] struct {
	mu    sync.Mutex
	cache map[K]CachedPipelineID
}

// NewSpecializedRenderPipelines creates an empty key to pipeline map.
func NewSpecializedRenderPipelines[K comparable]() *SpecializedRenderPipelines[K] {
	return &SpecializedRenderPipelines[K]{cache: make(map[K]CachedPipelineID)}
}

// Specialize returns the pipeline ID for key, asking s for a descriptor and queueing it on
// pipelines the first time key is seen.
//
// Parameters:
//   - pipelines: the cache new descriptors are queued on
//   - s: the specializer for this pipeline family
//   - key: the variant key
//
// Returns:
//   - CachedPipelineID: the queued pipeline for key
func (p *SpecializedRenderPipelines[K]) Specialize(pipelines PipelineCache, s Specializer[K], key K) CachedPipelineID {
	p.mu.Lock()
	defer p.mu.Unlock()
	if id, ok := p.cache[key]; ok {
		return id
	}
	id := pipelines.QueueRenderPipeline(s.Specialize(key))
	p.cache[key] = id
	return id
}

// Len returns the number of distinct keys specialized so far.
func (p *SpecializedRenderPipelines[K]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.cache)
}
