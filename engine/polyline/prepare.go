package polyline

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-polyline/common"
	"github.com/Carmen-Shannon/oxy-polyline/engine/render_asset"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/render_device"
	"github.com/cogentcore/webgpu/wgpu"
)

// VertexStride is the byte stride of one packed float32x3 vertex.
const VertexStride = 12

// VertexBufferLabel is the debug label of every polyline vertex buffer.
const VertexBufferLabel = "Polyline Vertex Buffer"

// GpuPolyline is the prepared form of a Polyline: the uploaded vertex ring and the ranges
// that were live when it was uploaded.
type GpuPolyline struct {
	VertexBuffer *wgpu.Buffer
	// VertexCount is the number of packed vertices in VertexBuffer, one more than the
	// polyline's capacity.
	VertexCount uint32
	IndexRanges []IndexRange
}

// VertexBytes packs the vertex ring as float32x3 with a stride of 12 bytes, followed by one
// copy of the last slot so that the final instance of a range ending at capacity still reads
// its second endpoint inside the buffer.
//
// Parameters:
//   - p: the polyline
//
// Returns:
//   - []byte: (capacity + 1) * 12 bytes
func VertexBytes(p *Polyline) []byte {
	vertices := p.Vertices()
	buf := make([]byte, (len(vertices)+1)*VertexStride)
	off := 0
	for _, v := range vertices {
		off = common.PutFloat32s(buf, off, v[:]...)
	}
	last := vertices[len(vertices)-1]
	common.PutFloat32s(buf, off, last[:]...)
	return buf
}

// PreparePolyline uploads a snapshot of p into a new vertex buffer. A failed allocation is
// reported wrapping render_asset.ErrRetryNextFrame.
//
// Parameters:
//   - p: the polyline snapshot
//   - device: the device to allocate on
//
// Returns:
//   - *GpuPolyline: the prepared polyline
//   - error: an error if the vertex buffer could not be created
func PreparePolyline(p *Polyline, device render_device.RenderDevice) (*GpuPolyline, error) {
	contents := VertexBytes(p)
	buf, err := device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    VertexBufferLabel,
		Contents: contents,
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		return nil, fmt.Errorf("polyline: failed to create vertex buffer (%d bytes): %w: %w", len(contents), render_asset.ErrRetryNextFrame, err)
	}
	ranges := make([]IndexRange, len(p.IndexRanges()))
	copy(ranges, p.IndexRanges())
	return &GpuPolyline{
		VertexBuffer: buf,
		VertexCount:  uint32(len(contents) / VertexStride),
		IndexRanges:  ranges,
	}, nil
}

// ReleaseGpuPolyline frees the vertex buffer of g.
func ReleaseGpuPolyline(g *GpuPolyline) {
	if g != nil && g.VertexBuffer != nil {
		g.VertexBuffer.Release()
	}
}

// NewPolylineRenderAssets creates the render-side mirror of polyline assets. Snapshots are
// deep copies taken with Clone.
//
// Parameters:
//   - opts: additional options, applied after the polyline defaults
//
// Returns:
//   - render_asset.RenderAssets[Polyline, *GpuPolyline]: the mirror
func NewPolylineRenderAssets(opts ...render_asset.RenderAssetsBuilderOption[Polyline, *GpuPolyline]) render_asset.RenderAssets[Polyline, *GpuPolyline] {
	defaults := []render_asset.RenderAssetsBuilderOption[Polyline, *GpuPolyline]{
		render_asset.WithCloner[Polyline, *GpuPolyline]((*Polyline).Clone),
		render_asset.WithReleaser[Polyline](ReleaseGpuPolyline),
	}
	return render_asset.NewRenderAssets[Polyline, *GpuPolyline](PreparePolyline, append(defaults, opts...)...)
}
