package asset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mesh struct{ points int }

func TestHandle(t *testing.T) {
	var zero Handle[mesh]
	assert.False(t, zero.IsValid())

	a := NewAssets[mesh]()
	h := a.Add(&mesh{})
	assert.True(t, h.IsValid())
	assert.False(t, h.IsWeak())

	w := h.Weak()
	assert.True(t, w.IsWeak())
	assert.True(t, w.Same(h))
	assert.Equal(t, h.ID(), w.ID())
	assert.Equal(t, "Handle(1, weak)", w.String())
}

func TestAssetsLifecycleEvents(t *testing.T) {
	a := NewAssets[mesh]()
	h1 := a.Add(&mesh{points: 1})
	h2 := a.Add(&mesh{points: 2})

	require.True(t, a.Mutate(h1, func(m *mesh) { m.points = 10 }))
	events := a.DrainEvents()
	require.Len(t, events, 2, "a mutation right after add is folded into the add")
	assert.Equal(t, EventAdded, events[0].Kind)
	assert.Equal(t, EventAdded, events[1].Kind)
	assert.Empty(t, a.DrainEvents())

	a.Mutate(h2, func(m *mesh) { m.points++ })
	a.Mutate(h2, func(m *mesh) { m.points++ })
	assert.True(t, a.Remove(h1))
	assert.False(t, a.Remove(h1))

	events = a.DrainEvents()
	require.Len(t, events, 2)
	assert.Equal(t, Event[mesh]{Kind: EventModified, Handle: h2}, events[0])
	assert.Equal(t, Event[mesh]{Kind: EventRemoved, Handle: h1}, events[1])

	m, ok := a.Get(h2)
	require.True(t, ok)
	assert.Equal(t, 4, m.points)
	_, ok = a.Get(h1)
	assert.False(t, ok)
	assert.Equal(t, 1, a.Len())
	assert.False(t, a.Mutate(h1, func(*mesh) {}))
}

func TestAssetsSet(t *testing.T) {
	a := NewAssets[mesh]()
	h := a.Add(&mesh{points: 1})
	a.DrainEvents()

	a.Set(h, &mesh{points: 5})
	m, _ := a.Get(h)
	assert.Equal(t, 5, m.points)
	assert.Equal(t, []Event[mesh]{{Kind: EventModified, Handle: h}}, a.DrainEvents())

	a.Remove(h)
	a.Set(h.Weak(), &mesh{points: 6})
	events := a.DrainEvents()
	require.Len(t, events, 2)
	assert.Equal(t, EventAdded, events[1].Kind)
	assert.False(t, events[1].Handle.IsWeak())

	next := a.Add(&mesh{})
	assert.Greater(t, next.ID(), h.ID())
	assert.Equal(t, []Handle[mesh]{h, next}, a.Handles())
}
