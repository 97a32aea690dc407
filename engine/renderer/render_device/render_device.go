// Package render_device abstracts the GPU device and render pass used by the render world.
// Systems depend on these interfaces so they can run against a recording fake in tests.
package render_device

import (
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// renderDevice is the wgpu implementation of RenderDevice.
type renderDevice struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue
	limits wgpu.Limits
}

// RenderDevice is the subset of GPU device operations used by render systems: buffer creation
// and writes, bind group and pipeline object creation, and the device limits.
type RenderDevice interface {
	// CreateBufferInit creates a buffer initialized with the descriptor's contents.
	//
	// Parameters:
	//   - desc: label, contents and usage of the buffer
	//
	// Returns:
	//   - *wgpu.Buffer: the created buffer
	//   - error: an error if the allocation failed
	CreateBufferInit(desc *wgpu.BufferInitDescriptor) (*wgpu.Buffer, error)

	// CreateBuffer creates an uninitialized buffer.
	//
	// Parameters:
	//   - desc: label, size and usage of the buffer
	//
	// Returns:
	//   - *wgpu.Buffer: the created buffer
	//   - error: an error if the allocation failed
	CreateBuffer(desc *wgpu.BufferDescriptor) (*wgpu.Buffer, error)

	// WriteBuffers enqueues each write on the device queue, skipping writes with a nil buffer.
	//
	// Parameters:
	//   - writes: the buffer writes to perform in order
	WriteBuffers(writes []BufferWrite)

	// CreateBindGroupLayout creates a bind group layout.
	//
	// Parameters:
	//   - desc: the layout descriptor
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the created layout
	//   - error: an error if creation failed
	CreateBindGroupLayout(desc *wgpu.BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error)

	// CreateBindGroup creates a bind group.
	//
	// Parameters:
	//   - desc: the bind group descriptor
	//
	// Returns:
	//   - *wgpu.BindGroup: the created bind group
	//   - error: an error if creation failed
	CreateBindGroup(desc *wgpu.BindGroupDescriptor) (*wgpu.BindGroup, error)

	// CreateShaderModule compiles a shader module.
	//
	// Parameters:
	//   - desc: the shader module descriptor
	//
	// Returns:
	//   - *wgpu.ShaderModule: the created module
	//   - error: an error if compilation failed
	CreateShaderModule(desc *wgpu.ShaderModuleDescriptor) (*wgpu.ShaderModule, error)

	// CreatePipelineLayout creates a pipeline layout.
	//
	// Parameters:
	//   - desc: the pipeline layout descriptor
	//
	// Returns:
	//   - *wgpu.PipelineLayout: the created layout
	//   - error: an error if creation failed
	CreatePipelineLayout(desc *wgpu.PipelineLayoutDescriptor) (*wgpu.PipelineLayout, error)

	// CreateRenderPipeline creates a render pipeline.
	//
	// Parameters:
	//   - desc: the render pipeline descriptor
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the created pipeline
	//   - error: an error if creation failed
	CreateRenderPipeline(desc *wgpu.RenderPipelineDescriptor) (*wgpu.RenderPipeline, error)

	// Limits returns the limits the device was created with.
	//
	// Returns:
	//   - wgpu.Limits: the device limits
	Limits() wgpu.Limits
}

var _ RenderDevice = &renderDevice{}

// NewRenderDevice wraps a wgpu device and its queue.
//
// Parameters:
//   - device: the wgpu device
//   - queue: the device queue
//   - limits: the limits the device was requested with
//
// Returns:
//   - RenderDevice: the wrapped device
func NewRenderDevice(device *wgpu.Device, queue *wgpu.Queue, limits wgpu.Limits) RenderDevice {
	if device == nil || queue == nil {
		panic("render_device: device and queue are required")
	}
	return &renderDevice{
		mu:     &sync.Mutex{},
		device: device,
		queue:  queue,
		limits: limits,
	}
}

func (d *renderDevice) CreateBufferInit(desc *wgpu.BufferInitDescriptor) (*wgpu.Buffer, error) {
	return d.device.CreateBufferInit(desc)
}

func (d *renderDevice) CreateBuffer(desc *wgpu.BufferDescriptor) (*wgpu.Buffer, error) {
	return d.device.CreateBuffer(desc)
}

func (d *renderDevice) WriteBuffers(writes []BufferWrite) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, w := range writes {
		if w.Buffer == nil || len(w.Data) == 0 {
			continue
		}
		d.queue.WriteBuffer(w.Buffer, w.Offset, w.Data)
	}
}

func (d *renderDevice) CreateBindGroupLayout(desc *wgpu.BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error) {
	return d.device.CreateBindGroupLayout(desc)
}

func (d *renderDevice) CreateBindGroup(desc *wgpu.BindGroupDescriptor) (*wgpu.BindGroup, error) {
	return d.device.CreateBindGroup(desc)
}

func (d *renderDevice) CreateShaderModule(desc *wgpu.ShaderModuleDescriptor) (*wgpu.ShaderModule, error) {
	return d.device.CreateShaderModule(desc)
}

func (d *renderDevice) CreatePipelineLayout(desc *wgpu.PipelineLayoutDescriptor) (*wgpu.PipelineLayout, error) {
	return d.device.CreatePipelineLayout(desc)
}

func (d *renderDevice) CreateRenderPipeline(desc *wgpu.RenderPipelineDescriptor) (*wgpu.RenderPipeline, error) {
	return d.device.CreateRenderPipeline(desc)
}

func (d *renderDevice) Limits() wgpu.Limits {
	return d.limits
}
