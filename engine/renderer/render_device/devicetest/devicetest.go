// Package devicetest provides recording fakes of render_device.RenderDevice and
// render_device.TrackedRenderPass for tests that exercise render systems without a GPU.
package devicetest

import (
	"errors"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/render_device"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrOutOfMemory is returned by Device when a failure has been scheduled.
var ErrOutOfMemory = errors.New("devicetest: out of memory")

// CreatedBuffer records one buffer creation.
type CreatedBuffer struct {
	Buffer   *wgpu.Buffer
	Label    string
	Contents []byte
	Size     uint64
	Usage    wgpu.BufferUsage
}

// Device is a RenderDevice that records every call and hands out placeholder GPU objects.
type Device struct {
	mu *sync.Mutex

	// FailBufferCreates makes the next N buffer creations fail with ErrOutOfMemory.
	FailBufferCreates int
	// FailPipelines makes every render pipeline creation fail.
	FailPipelines bool

	Buffers         []CreatedBuffer
	Writes          []render_device.BufferWrite
	Layouts         []wgpu.BindGroupLayoutDescriptor
	BindGroups      []wgpu.BindGroupDescriptor
	ShaderModules   []wgpu.ShaderModuleDescriptor
	PipelineLayouts []wgpu.PipelineLayoutDescriptor
	RenderPipelines []wgpu.RenderPipelineDescriptor
	DeviceLimits    wgpu.Limits
}

var _ render_device.RenderDevice = &Device{}

// NewDevice returns a fake device with the WebGPU default limits. The offset alignments,
// which DefaultLimits leaves undefined, are set to 256 as an adapter reports them.
func NewDevice() *Device {
	limits := wgpu.DefaultLimits()
	limits.MinUniformBufferOffsetAlignment = 256
	limits.MinStorageBufferOffsetAlignment = 256
	return &Device{
		mu:           &sync.Mutex{},
		DeviceLimits: limits,
	}
}

func (d *Device) failBuffer() bool {
	if d.FailBufferCreates > 0 {
		d.FailBufferCreates--
		return true
	}
	return false
}

func (d *Device) CreateBufferInit(desc *wgpu.BufferInitDescriptor) (*wgpu.Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failBuffer() {
		return nil, ErrOutOfMemory
	}
	b := &wgpu.Buffer{}
	d.Buffers = append(d.Buffers, CreatedBuffer{
		Buffer:   b,
		Label:    desc.Label,
		Contents: slices.Clone(desc.Contents),
		Size:     uint64(len(desc.Contents)),
		Usage:    desc.Usage,
	})
	return b, nil
}

func (d *Device) CreateBuffer(desc *wgpu.BufferDescriptor) (*wgpu.Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failBuffer() {
		return nil, ErrOutOfMemory
	}
	b := &wgpu.Buffer{}
	d.Buffers = append(d.Buffers, CreatedBuffer{
		Buffer: b,
		Label:  desc.Label,
		Size:   desc.Size,
		Usage:  desc.Usage,
	})
	return b, nil
}

func (d *Device) WriteBuffers(writes []render_device.BufferWrite) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, w := range writes {
		if w.Buffer == nil || len(w.Data) == 0 {
			continue
		}
		w.Data = slices.Clone(w.Data)
		d.Writes = append(d.Writes, w)
	}
}

func (d *Device) CreateBindGroupLayout(desc *wgpu.BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Layouts = append(d.Layouts, *desc)
	return &wgpu.BindGroupLayout{}, nil
}

func (d *Device) CreateBindGroup(desc *wgpu.BindGroupDescriptor) (*wgpu.BindGroup, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.BindGroups = append(d.BindGroups, *desc)
	return &wgpu.BindGroup{}, nil
}

func (d *Device) CreateShaderModule(desc *wgpu.ShaderModuleDescriptor) (*wgpu.ShaderModule, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ShaderModules = append(d.ShaderModules, *desc)
	return &wgpu.ShaderModule{}, nil
}

func (d *Device) CreatePipelineLayout(desc *wgpu.PipelineLayoutDescriptor) (*wgpu.PipelineLayout, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.PipelineLayouts = append(d.PipelineLayouts, *desc)
	return &wgpu.PipelineLayout{}, nil
}

func (d *Device) CreateRenderPipeline(desc *wgpu.RenderPipelineDescriptor) (*wgpu.RenderPipeline, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailPipelines {
		return nil, errors.New("devicetest: pipeline creation failed")
	}
	d.RenderPipelines = append(d.RenderPipelines, *desc)
	return &wgpu.RenderPipeline{}, nil
}

func (d *Device) Limits() wgpu.Limits {
	return d.DeviceLimits
}

// BufferByLabel returns the most recent buffer created with label.
func (d *Device) BufferByLabel(label string) (CreatedBuffer, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := len(d.Buffers) - 1; i >= 0; i-- {
		if d.Buffers[i].Label == label {
			return d.Buffers[i], true
		}
	}
	return CreatedBuffer{}, false
}
