package render_device

import "github.com/cogentcore/webgpu/wgpu"

// BufferWrite describes a single queue write of Data into Buffer at a byte offset.
type BufferWrite struct {
	Buffer *wgpu.Buffer
	Offset uint64
	Data   []byte
}
