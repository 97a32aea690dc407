package uniform

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/render_device/devicetest"
	"github.com/Carmen-Shannon/oxy-polyline/engine/world"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type vec4Uniform struct{ v [4]byte }

func (u vec4Uniform) Size() int       { return 16 }
func (u vec4Uniform) Marshal() []byte { b := make([]byte, 16); copy(b, u.v[:]); return b }

func TestPushAlignsOffsets(t *testing.T) {
	buf := NewDynamicUniformBuffer[vec4Uniform]("test", 0)
	a := buf.Push(vec4Uniform{v: [4]byte{1}})
	b := buf.Push(vec4Uniform{v: [4]byte{2}})
	c := buf.Push(vec4Uniform{v: [4]byte{3}})

	assert.Equal(t, uint32(0), a.Offset())
	assert.Equal(t, uint32(256), b.Offset())
	assert.Equal(t, uint32(512), c.Offset())
	assert.Equal(t, 3, buf.Len())
	assert.Equal(t, uint64(16), buf.MinSize())
}

func TestAlignmentFromDeviceLimits(t *testing.T) {
	limits := devicetest.NewDevice().Limits()
	require.Equal(t, uint32(256), limits.MinUniformBufferOffsetAlignment)

	for name, alignment := range map[string]uint32{
		"device":    limits.MinUniformBufferOffsetAlignment,
		"undefined": wgpu.LimitU32Undefined,
	} {
		t.Run(name, func(t *testing.T) {
			buf := NewDynamicUniformBuffer[vec4Uniform]("test", alignment)
			buf.Push(vec4Uniform{})
			second := buf.Push(vec4Uniform{})
			assert.Equal(t, uint32(256), second.Offset())
		})
	}
}

func TestBindingUnavailableUntilWritten(t *testing.T) {
	dev := devicetest.NewDevice()
	buf := NewDynamicUniformBuffer[vec4Uniform]("test", 64)

	_, ok := buf.Binding(0)
	assert.False(t, ok)

	require.NoError(t, buf.Write(dev), "empty write is a no-op")
	_, ok = buf.Binding(0)
	assert.False(t, ok)
	assert.Empty(t, dev.Buffers)

	buf.Push(vec4Uniform{v: [4]byte{7}})
	buf.Push(vec4Uniform{v: [4]byte{8}})
	require.NoError(t, buf.Write(dev))

	entry, ok := buf.Binding(3)
	require.True(t, ok)
	assert.Equal(t, uint32(3), entry.Binding)
	assert.Equal(t, uint64(16), entry.Size)
	assert.Same(t, buf.Buffer(), entry.Buffer)

	require.Len(t, dev.Buffers, 1)
	assert.Equal(t, uint64(128), dev.Buffers[0].Size)
	assert.Equal(t, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst, dev.Buffers[0].Usage)
	require.Len(t, dev.Writes, 1)
	assert.Equal(t, byte(7), dev.Writes[0].Data[0])
	assert.Equal(t, byte(8), dev.Writes[0].Data[64])
}

func TestWriteGrowsAndRetires(t *testing.T) {
	dev := devicetest.NewDevice()
	buf := NewDynamicUniformBuffer[vec4Uniform]("test", 0)

	buf.Push(vec4Uniform{})
	require.NoError(t, buf.Write(dev))
	first := buf.Buffer()

	buf.Clear()
	buf.Push(vec4Uniform{})
	require.NoError(t, buf.Write(dev))
	assert.Same(t, first, buf.Buffer(), "same size reuses the buffer")
	assert.Empty(t, buf.DrainRetired())

	for range 3 {
		buf.Push(vec4Uniform{})
	}
	require.NoError(t, buf.Write(dev))
	assert.NotSame(t, first, buf.Buffer())
	assert.Equal(t, []*wgpu.Buffer{first}, buf.DrainRetired())
	assert.Empty(t, buf.DrainRetired())
	assert.Equal(t, uint64(1024), dev.Buffers[1].Size)
}

func TestWriteAllocationFailureKeepsOldBuffer(t *testing.T) {
	dev := devicetest.NewDevice()
	buf := NewDynamicUniformBuffer[vec4Uniform]("test", 0)
	buf.Push(vec4Uniform{})

	dev.FailBufferCreates = 1
	err := buf.Write(dev)
	require.ErrorIs(t, err, devicetest.ErrOutOfMemory)
	_, ok := buf.Binding(0)
	assert.False(t, ok)

	require.NoError(t, buf.Write(dev))
	_, ok = buf.Binding(0)
	assert.True(t, ok)
}

func TestPrepareComponentUniforms(t *testing.T) {
	w := world.NewWorld("render")
	dev := devicetest.NewDevice()

	a := w.Spawn()
	b := w.Spawn()
	world.Insert(w, a, vec4Uniform{v: [4]byte{7}})
	world.Insert(w, b, vec4Uniform{v: [4]byte{9}})

	require.Error(t, PrepareComponentUniforms[vec4Uniform](w, dev))

	world.SetResource(w, NewComponentUniforms[vec4Uniform]("Test Uniforms", 0))
	require.NoError(t, PrepareComponentUniforms[vec4Uniform](w, dev))

	ia, ok := world.Get[DynamicUniformIndex[vec4Uniform]](w, a)
	require.True(t, ok)
	ib, ok := world.Get[DynamicUniformIndex[vec4Uniform]](w, b)
	require.True(t, ok)
	assert.Equal(t, uint32(0), ia.Offset())
	assert.Equal(t, uint32(256), ib.Offset())

	require.Len(t, dev.Writes, 1)
	assert.Equal(t, byte(7), dev.Writes[0].Data[0])
	assert.Equal(t, byte(9), dev.Writes[0].Data[256])
}
