package uniform

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/render_device"
	"github.com/Carmen-Shannon/oxy-polyline/engine/world"
)

// ComponentUniforms is the render-world resource holding the per-entity values of T for the
// current frame.
type ComponentUniforms[T GPUType] struct {
	Uniforms DynamicUniformBuffer[T]
}

// NewComponentUniforms creates the resource for components of type T.
//
// Parameters:
//   - label: the GPU debug label of the backing buffer
//   - alignment: minimum uniform offset alignment of the device, 0 for the WebGPU default
//
// Returns:
//   - *ComponentUniforms[T]: the new resource
func NewComponentUniforms[T GPUType](label string, alignment uint32) *ComponentUniforms[T] {
	return &ComponentUniforms[T]{Uniforms: NewDynamicUniformBuffer[T](label, alignment)}
}

// PrepareComponentUniforms pushes the T component of every render-world entity into the
// ComponentUniforms[T] resource, attaches the resulting DynamicUniformIndex[T] to the entity
// and uploads the buffer.
//
// Parameters:
//   - w: the render world
//   - device: the device the buffer is written on
//
// Returns:
//   - error: an error if the resource is missing or the upload fails
func PrepareComponentUniforms[T GPUType](w *world.World, device render_device.RenderDevice) error {
	u, ok := world.Resource[*ComponentUniforms[T]](w)
	if !ok {
		var zero T
		return fmt.Errorf("uniform: no ComponentUniforms resource for %T", zero)
	}
	u.Uniforms.Clear()
	entries := world.Query[T](w)
	indices := make([]world.Entry[DynamicUniformIndex[T]], 0, len(entries))
	for _, e := range entries {
		indices = append(indices, world.Entry[DynamicUniformIndex[T]]{
			Entity:    e.Entity,
			Component: u.Uniforms.Push(e.Component),
		})
	}
	world.InsertOrSpawnBatch(w, indices)
	if err := u.Uniforms.Write(device); err != nil {
		return fmt.Errorf("uniform: %w", err)
	}
	return nil
}
