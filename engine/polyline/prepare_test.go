package polyline

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-polyline/common"
	"github.com/Carmen-Shannon/oxy-polyline/engine/asset"
	"github.com/Carmen-Shannon/oxy-polyline/engine/render_asset"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/render_device/devicetest"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVertexBytesPadsLastSlot(t *testing.T) {
	p := FromPoints(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{4, 5, 6}, mgl32.Vec3{7, 8, 9})
	buf := VertexBytes(p)

	require.Len(t, buf, 4*VertexStride)
	assert.Equal(t, common.SliceToBytes([]float32{1, 2, 3}), buf[0:12])
	assert.Equal(t, common.SliceToBytes([]float32{7, 8, 9}), buf[24:36])
	assert.Equal(t, buf[24:36], buf[36:48], "padding repeats the last slot")
}

func TestPreparePolyline(t *testing.T) {
	device := devicetest.NewDevice()
	p := NewPolyline(WithCapacity(8))
	p.AddVertex(mgl32.Vec3{0, 0, 0}, false)
	p.AddVertex(mgl32.Vec3{1, 0, 0}, true)
	p.AddVertex(mgl32.Vec3{1, 1, 0}, true)

	gpu, err := PreparePolyline(p, device)
	require.NoError(t, err)
	assert.Equal(t, uint32(9), gpu.VertexCount)
	assert.Equal(t, p.IndexRanges(), gpu.IndexRanges)

	created, ok := device.BufferByLabel(VertexBufferLabel)
	require.True(t, ok)
	assert.Same(t, gpu.VertexBuffer, created.Buffer)
	assert.Equal(t, wgpu.BufferUsageVertex, created.Usage)
	assert.Equal(t, VertexBytes(p), created.Contents)

	// the prepared ranges are a snapshot
	p.AddVertex(mgl32.Vec3{5, 5, 5}, false)
	assert.NotEqual(t, p.IndexRanges(), gpu.IndexRanges)
}

func TestPreparePolylineRetriesOnAllocationFailure(t *testing.T) {
	device := devicetest.NewDevice()
	device.FailBufferCreates = 1

	_, err := PreparePolyline(FromPoints(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}), device)
	require.Error(t, err)
	assert.True(t, errors.Is(err, render_asset.ErrRetryNextFrame))
	assert.True(t, errors.Is(err, devicetest.ErrOutOfMemory))
}

func TestPolylineRenderAssetsLifecycle(t *testing.T) {
	device := devicetest.NewDevice()
	var released []*GpuPolyline
	ra := NewPolylineRenderAssets(render_asset.WithReleaser[Polyline](func(g *GpuPolyline) {
		released = append(released, g)
	}))

	assets := asset.NewAssets[Polyline]()
	h := assets.Add(FromPoints(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}))

	device.FailBufferCreates = 1
	ra.Extract(assets)
	stats, err := ra.Prepare(device, 1)
	require.NoError(t, err)
	assert.Equal(t, render_asset.PrepareStats{Retried: 1}, stats)
	assert.Equal(t, 1, ra.Pending())

	stats, err = ra.Prepare(device, 2)
	require.NoError(t, err)
	assert.Equal(t, render_asset.PrepareStats{Prepared: 1}, stats)
	first, ok := ra.Get(h.Weak())
	require.True(t, ok)

	// mutation after extraction does not reach the snapshot
	assets.Mutate(h, func(p *Polyline) { p.AddVertex(mgl32.Vec3{2, 0, 0}, true) })
	ra.Extract(assets)
	assets.Mutate(h, func(p *Polyline) { p.Clear() })

	_, err = ra.Prepare(device, 3)
	require.NoError(t, err)
	second, ok := ra.Get(h)
	require.True(t, ok)
	assert.NotSame(t, first, second)
	// the wrap splits the line: slot 0 starts a new range and trims the old one
	assert.Equal(t, []IndexRange{{Start: 0, End: 1}, {Start: 1, End: 2}}, second.IndexRanges)
	assert.Equal(t, uint64(2), ra.Generation(h))

	assert.Equal(t, 0, ra.Retire(4))
	assert.Equal(t, 1, ra.Retire(5))
	assert.Equal(t, []*GpuPolyline{first}, released)
}
