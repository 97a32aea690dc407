// Package uniform packs per-entity GPU structs into a single uniform buffer addressed by
// dynamic offsets.
package uniform

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/render_device"
	"github.com/cogentcore/webgpu/wgpu"
)

// defaultOffsetAlignment is the WebGPU default for minUniformBufferOffsetAlignment.
const defaultOffsetAlignment = 256

// GPUType is a struct with a fixed std140-compatible byte layout.
type GPUType interface {
	// Size returns the byte size of the serialized struct.
	Size() int

	// Marshal serializes the struct for GPU upload.
	Marshal() []byte
}

// DynamicUniformIndex is the byte offset of one T inside a DynamicUniformBuffer[T], attached
// to the render-world entity whose data was pushed.
type DynamicUniformIndex[T any] struct {
	offset uint32
}

// Offset returns the byte offset to pass as the dynamic offset when binding.
func (i DynamicUniformIndex[T]) Offset() uint32 {
	return i.offset
}

// dynamicUniformBuffer is the implementation of DynamicUniformBuffer.
type dynamicUniformBuffer[T GPUType] struct {
	mu *sync.Mutex

	label     string
	alignment uint64
	itemSize  uint64

	data     []byte
	count    int
	buffer   *wgpu.Buffer
	capacity uint64
	retired  []*wgpu.Buffer
}

// DynamicUniformBuffer accumulates values of T each frame, each aligned to the device's
// minimum uniform offset alignment, and uploads them into one growable GPU buffer.
//
// Usage pattern:
//  1. Clear at the start of the prepare stage
//  2. Push one value per entity and store the returned index on the entity
//  3. Write once to upload
//  4. Binding supplies the bind group entry once a buffer exists
type DynamicUniformBuffer[T GPUType] interface {
	// Clear drops the values pushed during the previous frame. The GPU buffer is kept.
	Clear()

	// Push appends value and returns its dynamic offset.
	//
	// Parameters:
	//   - value: the struct to append
	//
	// Returns:
	//   - DynamicUniformIndex[T]: the byte offset of the value
	Push(value T) DynamicUniformIndex[T]

	// Len returns how many values are pushed this frame.
	//
	// Returns:
	//   - int: the value count
	Len() int

	// Write uploads the pushed values, growing the GPU buffer when it is too small. A replaced
	// buffer is kept in the retired list until DrainRetired is called.
	//
	// Parameters:
	//   - device: the device to allocate and write with
	//
	// Returns:
	//   - error: an error if the buffer could not be allocated
	Write(device render_device.RenderDevice) error

	// Binding returns the bind group entry for the buffer, sized to one element.
	// It reports false until the first successful Write.
	//
	// Parameters:
	//   - binding: the binding index of the entry
	//
	// Returns:
	//   - wgpu.BindGroupEntry: the entry
	//   - bool: true if a buffer exists
	Binding(binding uint32) (wgpu.BindGroupEntry, bool)

	// Buffer returns the current GPU buffer or nil.
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer
	Buffer() *wgpu.Buffer

	// MinSize returns the byte size of one T, used as the layout's minimum binding size.
	//
	// Returns:
	//   - uint64: the element size
	MinSize() uint64

	// DrainRetired returns and forgets the buffers replaced by earlier growth.
	//
	// Returns:
	//   - []*wgpu.Buffer: the replaced buffers
	DrainRetired() []*wgpu.Buffer
}

var _ DynamicUniformBuffer[GPUType] = &dynamicUniformBuffer[GPUType]{}

// NewDynamicUniformBuffer creates an empty buffer for values of T.
//
// Parameters:
//   - label: the GPU debug label
//   - alignment: minimum uniform offset alignment of the device; 0 or wgpu.LimitU32Undefined
//     selects the WebGPU default
//
// Returns:
//   - DynamicUniformBuffer[T]: the new buffer
func NewDynamicUniformBuffer[T GPUType](label string, alignment uint32) DynamicUniformBuffer[T] {
	var zero T
	a := uint64(alignment)
	if alignment == 0 || alignment == wgpu.LimitU32Undefined {
		a = defaultOffsetAlignment
	}
	return &dynamicUniformBuffer[T]{
		mu:        &sync.Mutex{},
		label:     label,
		alignment: a,
		itemSize:  uint64(zero.Size()),
	}
}

// alignUp rounds size up to a multiple of align.
func alignUp(size, align uint64) uint64 {
	if size%align == 0 {
		return size
	}
	return (size/align + 1) * align
}

func (b *dynamicUniformBuffer[T]) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = b.data[:0]
	b.count = 0
}

func (b *dynamicUniformBuffer[T]) Push(value T) DynamicUniformIndex[T] {
	b.mu.Lock()
	defer b.mu.Unlock()
	offset := uint64(len(b.data))
	stride := alignUp(b.itemSize, b.alignment)
	b.data = append(b.data, value.Marshal()...)
	b.data = append(b.data, make([]byte, offset+stride-uint64(len(b.data)))...)
	b.count++
	return DynamicUniformIndex[T]{offset: uint32(offset)}
}

func (b *dynamicUniformBuffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

func (b *dynamicUniformBuffer[T]) Write(device render_device.RenderDevice) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	needed := uint64(len(b.data))
	if needed == 0 {
		return nil
	}
	if b.buffer == nil || b.capacity < needed {
		capacity := max(needed, b.capacity*2)
		buf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: b.label,
			Size:  capacity,
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("failed to allocate %s (%d bytes): %w", b.label, capacity, err)
		}
		if b.buffer != nil {
			b.retired = append(b.retired, b.buffer)
		}
		b.buffer = buf
		b.capacity = capacity
	}
	device.WriteBuffers([]render_device.BufferWrite{{Buffer: b.buffer, Offset: 0, Data: b.data}})
	return nil
}

func (b *dynamicUniformBuffer[T]) Binding(binding uint32) (wgpu.BindGroupEntry, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.buffer == nil {
		return wgpu.BindGroupEntry{}, false
	}
	return wgpu.BindGroupEntry{
		Binding: binding,
		Buffer:  b.buffer,
		Offset:  0,
		Size:    b.itemSize,
	}, true
}

func (b *dynamicUniformBuffer[T]) Buffer() *wgpu.Buffer {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffer
}

func (b *dynamicUniformBuffer[T]) MinSize() uint64 {
	return b.itemSize
}

func (b *dynamicUniformBuffer[T]) DrainRetired() []*wgpu.Buffer {
	b.mu.Lock()
	defer b.mu.Unlock()
	r := b.retired
	b.retired = nil
	return r
}
