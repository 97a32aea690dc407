package bind_group_provider

import "github.com/cogentcore/webgpu/wgpu"

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithBindGroupLayout sets the bind group layout for this provider.
//
// Parameters:
//   - bgl: the bind group layout to use for this provider
//
// Returns:
//   - BindGroupProviderOption: a function that sets the bind group layout for this provider
func WithBindGroupLayout(bgl *wgpu.BindGroupLayout) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.bindGroupLayout = bgl
	}
}

// WithEntries appends bind group entries for this provider.
//
// Parameters:
//   - entries: the entries to bind, one per binding index
//
// Returns:
//   - BindGroupProviderOption: a function that appends the entries
func WithEntries(entries ...wgpu.BindGroupEntry) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.entries = append(p.entries, entries...)
	}
}

// WithOwnedBuffer binds a whole buffer that the provider takes ownership of.
//
// Parameters:
//   - binding: the binding index for this buffer
//   - buf: the buffer to associate with this binding
//   - size: the bound byte size
//
// Returns:
//   - BindGroupProviderOption: a function that adds the buffer entry and records ownership
func WithOwnedBuffer(binding int, buf *wgpu.Buffer, size uint64) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.buffers[binding] = buf
		p.entries = append(p.entries, wgpu.BindGroupEntry{
			Binding: uint32(binding),
			Buffer:  buf,
			Size:    size,
		})
	}
}
