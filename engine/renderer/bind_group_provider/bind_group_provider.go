package bind_group_provider

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/render_device"
	"github.com/cogentcore/webgpu/wgpu"
)

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	// label is a debug label added for convenience.
	label string

	// bindGroupLayout is borrowed from the pipeline that declared it and is never released here.
	bindGroupLayout *wgpu.BindGroupLayout
	// entries are the resources bound by Init, in binding order.
	entries []wgpu.BindGroupEntry

	// The following fields are GPU allocated resources owned by this provider and released by Release.

	// bindGroup is the GPU bind group created by Init, or nil before Init.
	bindGroup *wgpu.BindGroup
	// buffers holds buffers this provider allocated itself, keyed by binding index.
	buffers map[int]*wgpu.Buffer
}

// BindGroupProvider owns one GPU bind group together with the layout it was created from and
// any buffers allocated specifically for it.
//
// Usage pattern:
//  1. A prepare system creates a provider with the layout and bind group entries
//  2. The system calls Init to create the GPU bind group
//  3. The provider is stored as a render-world resource or component
//  4. Render commands read BindGroup() when binding
//  5. The provider is released when replaced or when its owner is dropped
type BindGroupProvider interface {
	// Init creates the GPU bind group from the layout and entries.
	//
	// Parameters:
	//   - device: the device to create the bind group with
	//
	// Returns:
	//   - error: an error if the layout is missing or creation failed
	Init(device render_device.RenderDevice) error

	// Release releases the bind group and every owned buffer.
	Release()

	// Label returns the debug label for this provider.
	// Used for debugging and profiling purposes.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// BindGroup returns the created bind group for shader binding.
	// Returns nil if Init has not succeeded.
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group or nil
	BindGroup() *wgpu.BindGroup

	// BindGroupLayout returns the layout the bind group is created against.
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the bind group layout or nil
	BindGroupLayout() *wgpu.BindGroupLayout

	// Entries returns the bind group entries.
	//
	// Returns:
	//   - []wgpu.BindGroupEntry: the entries in binding order
	Entries() []wgpu.BindGroupEntry

	// Buffer returns an owned buffer for a binding.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer or nil
	Buffer(binding int) *wgpu.Buffer
}

// Compile-time check that bindGroupProvider implements BindGroupProvider
var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates a new BindGroupProvider with the provided options.
//
// Parameters:
//   - label: the debug label, also used as the GPU bind group label
//   - options: a variadic list of options to configure the provider
//
// Returns:
//   - BindGroupProvider: a new instance of BindGroupProvider configured with the provided options
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:   label,
		buffers: make(map[int]*wgpu.Buffer),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Init(device render_device.RenderDevice) error {
	if p.bindGroupLayout == nil {
		return fmt.Errorf("bind group %q: no layout", p.label)
	}
	bg, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   p.label,
		Layout:  p.bindGroupLayout,
		Entries: p.entries,
	})
	if err != nil {
		return fmt.Errorf("bind group %q: %w", p.label, err)
	}
	p.bindGroup = bg
	return nil
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) BindGroupLayout() *wgpu.BindGroupLayout {
	return p.bindGroupLayout
}

func (p *bindGroupProvider) Entries() []wgpu.BindGroupEntry {
	return p.entries
}

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	return p.buffers[binding]
}

func (p *bindGroupProvider) Release() {
	for i, buf := range p.buffers {
		if buf != nil {
			buf.Release()
			delete(p.buffers, i)
		}
	}
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
}
