package world

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type position struct{ X, Y float32 }
type label string

func TestSpawnInsertGet(t *testing.T) {
	w := NewWorld("main")
	a := w.Spawn()
	b := w.Spawn()
	require.NotEqual(t, a, b)
	assert.NotZero(t, a)

	Insert(w, a, position{1, 2})
	Insert(w, b, label("b"))

	p, ok := Get[position](w, a)
	require.True(t, ok)
	assert.Equal(t, position{1, 2}, p)

	_, ok = Get[position](w, b)
	assert.False(t, ok)
	assert.True(t, Has[label](w, b))
	assert.Equal(t, 1, Count[position](w))

	Remove[label](w, b)
	assert.False(t, Has[label](w, b))
	assert.True(t, w.Alive(b))
}

func TestDespawnRemovesAllComponents(t *testing.T) {
	w := NewWorld("main")
	id := w.Spawn()
	Insert(w, id, position{})
	Insert(w, id, label("x"))

	w.Despawn(id)
	assert.False(t, w.Alive(id))
	assert.False(t, Has[position](w, id))
	assert.False(t, Has[label](w, id))
	assert.Equal(t, 0, w.Len())
}

func TestQueryIsSortedSnapshot(t *testing.T) {
	w := NewWorld("main")
	ids := make([]EntityID, 5)
	for i := range ids {
		ids[i] = w.Spawn()
	}
	for i := len(ids) - 1; i >= 0; i-- {
		Insert(w, ids[i], position{X: float32(i)})
	}

	got := Query[position](w)
	require.Len(t, got, 5)
	for i, e := range got {
		assert.Equal(t, ids[i], e.Entity)
		assert.Equal(t, float32(i), e.Component.X)
	}

	Insert(w, ids[0], position{X: 99})
	assert.Equal(t, float32(0), got[0].Component.X)
	assert.Nil(t, Query[label](w))
}

func TestInsertOrSpawnBatchAdoptsForeignIDs(t *testing.T) {
	main := NewWorld("main")
	render := NewLinkedWorld("render", main)
	a := main.Spawn()
	b := main.Spawn()

	InsertOrSpawnBatch(render, []Entry[label]{{a, "a"}, {b, "b"}})
	assert.True(t, render.Alive(a))
	assert.True(t, render.Alive(b))
	assert.Equal(t, []EntityID{a, b}, render.Entities())

	c := render.Spawn()
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, b, c)

	render.ClearEntities()
	assert.Equal(t, 0, render.Len())
	assert.Equal(t, 0, Count[label](render))
}

func TestResources(t *testing.T) {
	w := NewWorld("render")
	_, ok := Resource[label](w)
	assert.False(t, ok)
	assert.Panics(t, func() { MustResource[label](w) })

	SetResource(w, label("frame"))
	assert.Equal(t, label("frame"), MustResource[label](w))

	w.ClearEntities()
	assert.Equal(t, label("frame"), MustResource[label](w))

	RemoveResource[label](w)
	_, ok = Resource[label](w)
	assert.False(t, ok)
}

func TestCommandsDeferUntilApply(t *testing.T) {
	w := NewWorld("render")
	cmds := NewCommands()

	var wg sync.WaitGroup
	for i := 1; i <= 4; i++ {
		wg.Add(1)
		go func(id EntityID) {
			defer wg.Done()
			InsertOrSpawnBatchCommand(cmds, []Entry[position]{{id, position{X: float32(id)}}})
		}(EntityID(i))
	}
	wg.Wait()
	SetResourceCommand(cmds, label("done"))

	assert.Equal(t, 5, cmds.Len())
	assert.Equal(t, 0, w.Len())

	cmds.Apply(w)
	assert.Equal(t, 4, Count[position](w))
	assert.Equal(t, label("done"), MustResource[label](w))
	assert.Equal(t, 0, cmds.Len())
}
