package polyline

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/render_device"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/uniform"
	"github.com/Carmen-Shannon/oxy-polyline/engine/view"
	"github.com/Carmen-Shannon/oxy-polyline/engine/world"
	"github.com/cogentcore/webgpu/wgpu"
)

// uniformBindGroup is a bind group over a single dynamic uniform buffer. It is rebuilt only
// when the buffer behind the binding changes; replaced groups wait in retired until drained.
type uniformBindGroup struct {
	mu    *sync.Mutex
	label string

	provider bind_group_provider.BindGroupProvider
	buffer   *wgpu.Buffer
	retired  []bind_group_provider.BindGroupProvider
}

func newUniformBindGroup(label string) uniformBindGroup {
	return uniformBindGroup{mu: &sync.Mutex{}, label: label}
}

// update returns the bind group for entry, creating it against layout when entry names a
// buffer other than the one the current group was built over.
func (u *uniformBindGroup) update(device render_device.RenderDevice, layout *wgpu.BindGroupLayout, entry wgpu.BindGroupEntry) (*wgpu.BindGroup, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.provider != nil && u.buffer == entry.Buffer {
		return u.provider.BindGroup(), nil
	}
	p := bind_group_provider.NewBindGroupProvider(u.label,
		bind_group_provider.WithBindGroupLayout(layout),
		bind_group_provider.WithEntries(entry),
	)
	if err := p.Init(device); err != nil {
		return nil, err
	}
	if u.provider != nil {
		u.retired = append(u.retired, u.provider)
	}
	u.provider = p
	u.buffer = entry.Buffer
	return p.BindGroup(), nil
}

// BindGroup returns the current bind group, or nil before the first successful update.
func (u *uniformBindGroup) BindGroup() *wgpu.BindGroup {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.provider == nil {
		return nil
	}
	return u.provider.BindGroup()
}

// DrainRetired returns and forgets the groups replaced since the previous drain.
func (u *uniformBindGroup) DrainRetired() []bind_group_provider.BindGroupProvider {
	u.mu.Lock()
	defer u.mu.Unlock()
	r := u.retired
	u.retired = nil
	return r
}

// PolylineBindGroup is the render-world resource holding the polyline instance group over
// the ComponentUniforms[PolylineUniform] buffer.
type PolylineBindGroup struct {
	uniformBindGroup
}

// NewPolylineBindGroup creates the resource with no group yet.
func NewPolylineBindGroup() *PolylineBindGroup {
	return &PolylineBindGroup{uniformBindGroup: newUniformBindGroup("polyline_bind_group")}
}

// ViewBindGroups is the render-world resource holding the view group. Every view shares the
// one group over the ViewUniforms buffer and selects its data with its dynamic offset.
type ViewBindGroups struct {
	uniformBindGroup
}

// NewViewBindGroups creates the resource with no group yet.
func NewViewBindGroups() *ViewBindGroups {
	return &ViewBindGroups{uniformBindGroup: newUniformBindGroup("polyline_view_bind_group")}
}

// PolylineViewBindGroup is the view group attached to each extracted view entity.
type PolylineViewBindGroup struct {
	Group *wgpu.BindGroup
}

// BindGroup returns the view group.
func (g PolylineViewBindGroup) BindGroup() *wgpu.BindGroup {
	return g.Group
}

// PreparePolylineBindGroup builds the polyline instance group once the polyline uniform
// buffer exists. Before the first upload it does nothing and the draw commands fail for the
// frame.
//
// Parameters:
//   - render: the render world
//   - device: the device the group is created on
//
// Returns:
//   - error: an error if a required resource is missing or the group could not be created
func PreparePolylineBindGroup(render *world.World, device render_device.RenderDevice) error {
	pl, ok := world.Resource[PolylinePipeline](render)
	if !ok {
		return errors.New("polyline: no PolylinePipeline resource")
	}
	uniforms, ok := world.Resource[*uniform.ComponentUniforms[PolylineUniform]](render)
	if !ok {
		return errors.New("polyline: no polyline uniforms resource")
	}
	entry, ok := uniforms.Uniforms.Binding(0)
	if !ok {
		return nil
	}
	groups, ok := world.Resource[*PolylineBindGroup](render)
	if !ok {
		return errors.New("polyline: no PolylineBindGroup resource")
	}
	if _, err := groups.update(device, pl.PolylineLayout(), entry); err != nil {
		return fmt.Errorf("polyline: %w", err)
	}
	return nil
}

// PrepareViewBindGroups builds the view group once the view uniform buffer exists and
// attaches it to every extracted view.
//
// Parameters:
//   - render: the render world
//   - device: the device the group is created on
//
// Returns:
//   - error: an error if a required resource is missing or the group could not be created
func PrepareViewBindGroups(render *world.World, device render_device.RenderDevice) error {
	pl, ok := world.Resource[PolylinePipeline](render)
	if !ok {
		return errors.New("polyline: no PolylinePipeline resource")
	}
	uniforms, ok := world.Resource[*view.ViewUniforms](render)
	if !ok {
		return errors.New("polyline: no ViewUniforms resource")
	}
	entry, ok := uniforms.Uniforms.Binding(0)
	if !ok {
		return nil
	}
	groups, ok := world.Resource[*ViewBindGroups](render)
	if !ok {
		return errors.New("polyline: no ViewBindGroups resource")
	}
	group, err := groups.update(device, pl.ViewLayout(), entry)
	if err != nil {
		return fmt.Errorf("polyline: %w", err)
	}
	views := view.Views(render)
	batch := make([]world.Entry[PolylineViewBindGroup], 0, len(views))
	for _, v := range views {
		batch = append(batch, world.Entry[PolylineViewBindGroup]{Entity: v.Entity, Component: PolylineViewBindGroup{Group: group}})
	}
	world.InsertOrSpawnBatch(render, batch)
	return nil
}
