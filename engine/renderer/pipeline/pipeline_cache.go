package pipeline

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/render_device"
	"github.com/cogentcore/webgpu/wgpu"
)

// CachedPipelineID identifies a pipeline queued on a PipelineCache. IDs are never reused.
type CachedPipelineID uint32

// CachedPipelineState describes where a queued pipeline is in its lifecycle.
type CachedPipelineState int

const (
	// CachedPipelineStateQueued means the pipeline is waiting for the next ProcessQueue.
	CachedPipelineStateQueued CachedPipelineState = iota

	// CachedPipelineStateReady means the device pipeline exists and can be bound.
	CachedPipelineStateReady

	// CachedPipelineStateFailed means creation failed; the pipeline stays failed until its
	// shader is invalidated.
	CachedPipelineStateFailed
)

// String returns a readable name for the state.
func (s CachedPipelineState) String() string {
	switch s {
	case CachedPipelineStateReady:
		return "ready"
	case CachedPipelineStateFailed:
		return "failed"
	default:
		return "queued"
	}
}

type cachedPipeline struct {
	desc     RenderPipelineDescriptor
	state    CachedPipelineState
	pipeline *wgpu.RenderPipeline
	err      error
}

type cachedModule struct {
	generation uint64
	module     *wgpu.ShaderModule
}

// pipelineCache is the implementation of the PipelineCache interface.
type pipelineCache struct {
	mu *sync.Mutex

	pipelines []*cachedPipeline
	modules   map[string]cachedModule
	retired   []*wgpu.RenderPipeline
	release   func(*wgpu.RenderPipeline)
}

// PipelineCache turns RenderPipelineDescriptors into device pipelines. Queueing is cheap and can
// happen from any system; creation happens in ProcessQueue, once per frame, on the render thread.
type PipelineCache interface {
	// QueueRenderPipeline registers a descriptor for creation and returns its ID immediately.
	//
	// Parameters:
	//   - desc: the pipeline descriptor
	//
	// Returns:
	//   - CachedPipelineID: the ID the pipeline can be looked up with once ready
	QueueRenderPipeline(desc RenderPipelineDescriptor) CachedPipelineID

	// ProcessQueue creates every queued pipeline on the device. A pipeline whose creation fails
	// is marked failed and does not stop the others.
	//
	// Parameters:
	//   - device: the device pipelines and shader modules are created on
	//
	// Returns:
	//   - error: the joined creation errors of this pass, or nil
	ProcessQueue(device render_device.RenderDevice) error

	// RenderPipeline returns the device pipeline for id if it is ready.
	//
	// Parameters:
	//   - id: the cached pipeline ID
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the device pipeline, or nil
	//   - bool: true if the pipeline is ready
	RenderPipeline(id CachedPipelineID) (*wgpu.RenderPipeline, bool)

	// Descriptor returns the descriptor queued under id.
	Descriptor(id CachedPipelineID) (RenderPipelineDescriptor, bool)

	// State returns the lifecycle state of id. Unknown IDs report CachedPipelineStateFailed.
	State(id CachedPipelineID) CachedPipelineState

	// Err returns the creation error of a failed pipeline.
	Err(id CachedPipelineID) error

	// InvalidateShader requeues every pipeline that reads the shader with key, so it is rebuilt
	// from the shader's current source on the next ProcessQueue. The previous device pipeline
	// stays bound until the rebuild succeeds.
	//
	// Parameters:
	//   - key: the shader key
	//
	// Returns:
	//   - int: the number of pipelines requeued
	InvalidateShader(key string) int

	// Len returns the number of pipelines queued over the cache's lifetime.
	Len() int
}

var _ PipelineCache = &pipelineCache{}

// NewPipelineCache creates an empty PipelineCache.
//
// Parameters:
//   - opts: a variadic list of PipelineCacheBuilderOption functions to configure the cache
//
// Returns:
//   - PipelineCache: the new cache
func NewPipelineCache(opts ...PipelineCacheBuilderOption) PipelineCache {
	c := &pipelineCache{
		mu:      &sync.Mutex{},
		modules: make(map[string]cachedModule),
		release: func(p *wgpu.RenderPipeline) { p.Release() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *pipelineCache) QueueRenderPipeline(desc RenderPipelineDescriptor) CachedPipelineID {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pipelines = append(c.pipelines, &cachedPipeline{desc: desc, state: CachedPipelineStateQueued})
	return CachedPipelineID(len(c.pipelines) - 1)
}

func (c *pipelineCache) ProcessQueue(device render_device.RenderDevice) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Pipelines replaced last pass are no longer referenced by any recorded pass.
	for _, p := range c.retired {
		c.release(p)
	}
	c.retired = c.retired[:0]

	var errs []error
	for id, cp := range c.pipelines {
		if cp.state != CachedPipelineStateQueued {
			continue
		}
		created, err := c.create(device, cp.desc)
		if err != nil {
			cp.state = CachedPipelineStateFailed
			cp.err = fmt.Errorf("pipeline %d (%s): %w", id, cp.desc.Label, err)
			errs = append(errs, cp.err)
			continue
		}
		if cp.pipeline != nil {
			c.retired = append(c.retired, cp.pipeline)
		}
		cp.pipeline = created
		cp.state = CachedPipelineStateReady
		cp.err = nil
	}
	return errors.Join(errs...)
}

func (c *pipelineCache) create(device render_device.RenderDevice, desc RenderPipelineDescriptor) (*wgpu.RenderPipeline, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	for _, s := range desc.shaders() {
		if _, err := c.module(device, s.Key(), s.Generation(), s.Module()); err != nil {
			return nil, err
		}
	}

	layout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            desc.Label,
		BindGroupLayouts: desc.Layout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline layout: %w", err)
	}

	wd := &wgpu.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     c.modules[desc.Vertex.Shader.Key()].module,
			EntryPoint: desc.Vertex.EntryPoint,
			Buffers:    desc.Vertex.Buffers,
		},
		Primitive:    desc.Primitive,
		DepthStencil: desc.DepthStencil,
		Multisample:  desc.Multisample,
	}
	if desc.Fragment != nil {
		wd.Fragment = &wgpu.FragmentState{
			Module:     c.modules[desc.Fragment.Shader.Key()].module,
			EntryPoint: desc.Fragment.EntryPoint,
			Targets:    desc.Fragment.Targets,
		}
	}

	created, err := device.CreateRenderPipeline(wd)
	if err != nil {
		return nil, fmt.Errorf("failed to create render pipeline: %w", err)
	}
	return created, nil
}

// module returns the shader module for key, compiling it again when the shader's generation
// has moved past the cached one.
func (c *pipelineCache) module(device render_device.RenderDevice, key string, generation uint64, desc *wgpu.ShaderModuleDescriptor) (*wgpu.ShaderModule, error) {
	if cached, ok := c.modules[key]; ok && cached.generation == generation {
		return cached.module, nil
	}
	m, err := device.CreateShaderModule(desc)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader module %s: %w", key, err)
	}
	c.modules[key] = cachedModule{generation: generation, module: m}
	return m, nil
}

func (c *pipelineCache) RenderPipeline(id CachedPipelineID) (*wgpu.RenderPipeline, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if int(id) >= len(c.pipelines) {
		return nil, false
	}
	cp := c.pipelines[id]
	if cp.pipeline == nil {
		return nil, false
	}
	return cp.pipeline, true
}

func (c *pipelineCache) Descriptor(id CachedPipelineID) (RenderPipelineDescriptor, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if int(id) >= len(c.pipelines) {
		return RenderPipelineDescriptor{}, false
	}
	return c.pipelines[id].desc, true
}

func (c *pipelineCache) State(id CachedPipelineID) CachedPipelineState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if int(id) >= len(c.pipelines) {
		return CachedPipelineStateFailed
	}
	return c.pipelines[id].state
}

func (c *pipelineCache) Err(id CachedPipelineID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if int(id) >= len(c.pipelines) {
		return fmt.Errorf("pipeline: unknown pipeline %d", id)
	}
	return c.pipelines[id].err
}

func (c *pipelineCache) InvalidateShader(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, cp := range c.pipelines {
		if cp.desc.UsesShader(key) {
			cp.state = CachedPipelineStateQueued
			n++
		}
	}
	return n
}

func (c *pipelineCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pipelines)
}
