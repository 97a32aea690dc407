package world

import "sync"

// Commands buffers world mutations so they can be applied after a read phase completes.
// It is safe to record from multiple goroutines.
type Commands struct {
	mu  *sync.Mutex
	ops []func(*World)
}

// NewCommands creates an empty command buffer.
func NewCommands() *Commands {
	return &Commands{mu: &sync.Mutex{}}
}

// Push records an arbitrary mutation.
func (c *Commands) Push(op func(*World)) {
	c.mu.Lock()
	c.ops = append(c.ops, op)
	c.mu.Unlock()
}

// Len returns the number of recorded mutations.
func (c *Commands) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.ops)
}

// Apply runs every recorded mutation against w in record order and empties the buffer.
func (c *Commands) Apply(w *World) {
	c.mu.Lock()
	ops := c.ops
	c.ops = nil
	c.mu.Unlock()
	for _, op := range ops {
		op(w)
	}
}

// InsertOrSpawnBatchCommand records an InsertOrSpawnBatch of batch.
func InsertOrSpawnBatchCommand[T any](c *Commands, batch []Entry[T]) {
	c.Push(func(w *World) {
		InsertOrSpawnBatch(w, batch)
	})
}

// SetResourceCommand records a SetResource of value.
func SetResourceCommand[T any](c *Commands, value T) {
	c.Push(func(w *World) {
		SetResource(w, value)
	})
}
