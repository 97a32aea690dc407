// Package view turns cameras into render-world views: it extracts each active camera, packs
// its matrices into a ViewUniform and records the dynamic offset every view-dependent bind
// group is bound with.
package view

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-polyline/common"
	"github.com/Carmen-Shannon/oxy-polyline/engine/camera"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/render_device"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/uniform"
	"github.com/Carmen-Shannon/oxy-polyline/engine/transform"
	"github.com/Carmen-Shannon/oxy-polyline/engine/world"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// HdrTextureFormat is the color format of HDR view targets.
const HdrTextureFormat = wgpu.TextureFormatRGBA16Float

// ExtractedView is the render-world copy of one active camera.
type ExtractedView struct {
	Projection mgl32.Mat4
	Transform  transform.GlobalTransform
	Viewport   common.Viewport
	Hdr        bool
	Order      int
	ClearColor [4]float64
}

// ViewProjection returns Projection * inverse(Transform).
func (v ExtractedView) ViewProjection() mgl32.Mat4 {
	return v.Projection.Mul4(v.Transform.ComputeMatrix().Inv())
}

// Distance returns how far in front of the view the origin of model lies, measured along
// the view's forward axis.
func (v ExtractedView) Distance(model mgl32.Mat4) float32 {
	p := v.Transform.ComputeMatrix().Inv().Mul4x1(model.Col(3))
	return -p.Z()
}

// Uniform packs the view into its GPU form.
func (v ExtractedView) Uniform() ViewUniform {
	vp := v.Viewport
	return ViewUniform{
		ViewProj:      v.ViewProjection(),
		InverseView:   v.Transform.ComputeMatrix(),
		Projection:    v.Projection,
		WorldPosition: v.Transform.Translation(),
		Viewport:      mgl32.Vec4{float32(vp.X), float32(vp.Y), float32(vp.Width), float32(vp.Height)},
	}
}

// Msaa is the render-world resource holding the sample count of the main color target.
type Msaa struct {
	Samples uint32
}

// SampleCount returns the sample count, treating zero as one.
func (m Msaa) SampleCount() uint32 {
	return max(m.Samples, 1)
}

// TargetSize is the size in pixels of the surface views render into. It is a main-world
// resource updated by the window on resize.
type TargetSize struct {
	Width, Height uint32
}

// TargetFormats is the render-world resource naming the color formats views render into.
type TargetFormats struct {
	Surface wgpu.TextureFormat
	Hdr     wgpu.TextureFormat
}

// Format returns the HDR format when hdr is set and the surface format otherwise.
func (f TargetFormats) Format(hdr bool) wgpu.TextureFormat {
	if hdr {
		return f.Hdr
	}
	return f.Surface
}

// ViewUniformOffset is attached to each view entity once its uniform has been pushed.
type ViewUniformOffset struct {
	Offset uint32
}

// ViewUniforms is the render-world resource holding every view's uniform for the frame.
type ViewUniforms struct {
	Uniforms uniform.DynamicUniformBuffer[ViewUniform]
}

// NewViewUniforms creates the resource for a device with the given uniform offset alignment.
func NewViewUniforms(alignment uint32) *ViewUniforms {
	return &ViewUniforms{Uniforms: uniform.NewDynamicUniformBuffer[ViewUniform]("View Uniforms", alignment)}
}

// ExtractCameras copies every active camera of main into render as an ExtractedView carrying
// the camera's entity id. Views are spawned in ascending Order.
//
// Parameters:
//   - main: the main world holding camera.Camera and transform.GlobalTransform components
//   - render: the render world receiving ExtractedView components
//
// Returns:
//   - int: the number of views extracted
func ExtractCameras(main, render *world.World) int {
	size, _ := world.Resource[TargetSize](main)
	var batch []world.Entry[ExtractedView]
	for _, e := range world.Query[camera.Camera](main) {
		cam := e.Component
		if cam == nil || !cam.IsActive() {
			continue
		}
		global, ok := world.Get[transform.GlobalTransform](main, e.Entity)
		if !ok {
			continue
		}
		vp := cam.Viewport(size.Width, size.Height)
		if vp.Width == 0 || vp.Height == 0 {
			continue
		}
		batch = append(batch, world.Entry[ExtractedView]{
			Entity:    e.Entity,
			Component: ExtractedView{
				Projection: cam.Projection(vp.Aspect()),
				Transform:  global,
				Viewport:   vp,
				Hdr:        cam.Hdr(),
				Order:      cam.Order(),
				ClearColor: cam.ClearColor(),
			},
		})
	}
	slices.SortStableFunc(batch, func(a, b world.Entry[ExtractedView]) int {
		return cmp.Compare(a.Component.Order, b.Component.Order)
	})
	world.InsertOrSpawnBatch(render, batch)
	return len(batch)
}

// Views returns the extracted views of render in ascending Order.
func Views(render *world.World) []world.Entry[ExtractedView] {
	views := world.Query[ExtractedView](render)
	slices.SortStableFunc(views, func(a, b world.Entry[ExtractedView]) int {
		return cmp.Compare(a.Component.Order, b.Component.Order)
	})
	return views
}

// PrepareViewUniforms pushes the uniform of every extracted view, attaches its
// ViewUniformOffset and uploads the buffer.
//
// Parameters:
//   - render: the render world holding the ViewUniforms resource
//   - device: the device the buffer is written on
//
// Returns:
//   - error: an error if the resource is missing or the upload fails
func PrepareViewUniforms(render *world.World, device render_device.RenderDevice) error {
	uniforms, ok := world.Resource[*ViewUniforms](render)
	if !ok {
		return fmt.Errorf("view: ViewUniforms resource is not registered")
	}
	uniforms.Uniforms.Clear()
	for _, v := range Views(render) {
		index := uniforms.Uniforms.Push(v.Component.Uniform())
		world.Insert(render, v.Entity, ViewUniformOffset{Offset: index.Offset()})
	}
	if err := uniforms.Uniforms.Write(device); err != nil {
		return fmt.Errorf("view: failed to write view uniforms: %w", err)
	}
	return nil
}

// CameraFrustums returns the world-space frustum of every active camera of main, for culling.
func CameraFrustums(main *world.World) []common.Frustum {
	size, _ := world.Resource[TargetSize](main)
	var out []common.Frustum
	for _, e := range world.Query[camera.Camera](main) {
		if e.Component == nil || !e.Component.IsActive() {
			continue
		}
		global, ok := world.Get[transform.GlobalTransform](main, e.Entity)
		if !ok {
			continue
		}
		vp := e.Component.Viewport(size.Width, size.Height)
		out = append(out, e.Component.Frustum(global, vp.Aspect()))
	}
	return out
}
