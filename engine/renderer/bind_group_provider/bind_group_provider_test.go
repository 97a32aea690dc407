package bind_group_provider

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/render_device/devicetest"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitCreatesBindGroup(t *testing.T) {
	dev := devicetest.NewDevice()
	layout := &wgpu.BindGroupLayout{}
	buf := &wgpu.Buffer{}

	p := NewBindGroupProvider("polyline_bind_group",
		WithBindGroupLayout(layout),
		WithEntries(wgpu.BindGroupEntry{Binding: 0, Buffer: buf, Size: 64}),
	)
	assert.Nil(t, p.BindGroup())
	require.NoError(t, p.Init(dev))

	assert.NotNil(t, p.BindGroup())
	assert.Equal(t, "polyline_bind_group", p.Label())
	require.Len(t, dev.BindGroups, 1)
	assert.Equal(t, "polyline_bind_group", dev.BindGroups[0].Label)
	assert.Same(t, layout, dev.BindGroups[0].Layout)
	assert.Equal(t, p.Entries(), dev.BindGroups[0].Entries)
	assert.Nil(t, p.Buffer(0), "external buffers are not owned")
}

func TestInitWithoutLayoutFails(t *testing.T) {
	p := NewBindGroupProvider("orphan")
	assert.Error(t, p.Init(devicetest.NewDevice()))
}

func TestWithOwnedBufferAddsEntry(t *testing.T) {
	buf := &wgpu.Buffer{}
	p := NewBindGroupProvider("material", WithOwnedBuffer(0, buf, 32))
	assert.Same(t, buf, p.Buffer(0))
	require.Len(t, p.Entries(), 1)
	assert.Equal(t, uint64(32), p.Entries()[0].Size)
}
