// Package renderer runs the render schedule against a GPU backend. It owns the render world,
// the pipeline cache and the plugins that fill the schedule, and records one render pass per
// extracted view between the bind group and cleanup stages.
package renderer

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/phase"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/render_device"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/schedule"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-polyline/engine/view"
	"github.com/Carmen-Shannon/oxy-polyline/engine/window"
	"github.com/Carmen-Shannon/oxy-polyline/engine/world"
)

// FrameStats summarizes one rendered frame.
type FrameStats struct {
	Frame     uint64
	Views     int
	Drawn     int
	Failed    int
	Missing   int
	DrawCalls int
	Instances int
	Duration  time.Duration
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     RendererBackend

	main      *world.World
	render    *world.World
	schedule  schedule.Schedule
	pipelines pipeline.PipelineCache
	pool      worker.DynamicWorkerPool
	watcher   shader.Watcher

	plugins []schedule.Plugin
	frame   uint64
	last    FrameStats

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
	shaderHotReload      bool
	width, height        int
}

// Renderer runs the render schedule once per frame and presents the result.
//
// The Renderer owns the render world. Every frame it extracts from the main world, runs the
// prepare, queue and sort stages, compiles queued pipelines, draws the phases of each view in
// camera order and finally despawns every render-world entity so the next extraction starts
// from an empty mirror.
type Renderer interface {
	// RenderWorld returns the render world plugins store their resources in.
	RenderWorld() *world.World

	// Schedule returns the render schedule.
	Schedule() schedule.Schedule

	// Pipelines returns the pipeline cache.
	Pipelines() pipeline.PipelineCache

	// Pool returns the worker pool parallel stages run on. Plugins may share it, e.g. for
	// chunked extraction.
	Pool() worker.DynamicWorkerPool

	// AddPlugin builds p against the renderer's schedule and worlds.
	//
	// Parameters:
	//   - p: the plugin to build
	AddPlugin(p schedule.Plugin)

	// WatchShader reloads s when its source file changes and requeues every pipeline built
	// from it. It is a no-op unless shader hot reload is enabled.
	//
	// Parameters:
	//   - s: a shader created with shader.WithSourceFromPath
	//
	// Returns:
	//   - error: an error if the shader cannot be watched
	WatchShader(s shader.Shader) error

	// Resize reconfigures the surface and updates the main world's view.TargetSize.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetPresentMode sets the surface present mode and reconfigures the surface.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// RenderFrame renders one frame. mainLock, when not nil, is held while systems read the
	// main world during extraction.
	//
	// Parameters:
	//   - mainLock: the lock guarding the main world against the tick loop
	//
	// Returns:
	//   - FrameStats: what the frame drew
	//   - error: the joined errors of the frame's systems and passes
	RenderFrame(mainLock sync.Locker) (FrameStats, error)

	// LastFrame returns the stats of the most recent frame.
	LastFrame() FrameStats

	// Release stops the watcher and releases the backend.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer drawing into the window's surface. The render world shares
// its id allocator with main so that render-only entities never collide with extracted ones.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - win: the window whose surface is presented; may be nil when WithBackend is given
//   - main: the main world extraction reads from
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
func NewRenderer(backendType RendererBackendType, win window.Window, main *world.World, options ...RendererBuilderOption) Renderer {
	if main == nil {
		panic("renderer: main world is required")
	}
	r := &renderer{
		mu:          &sync.Mutex{},
		backendType: backendType,
		main:        main,
		render:      world.NewLinkedWorld("render", main),
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	msaa := MSAA4x
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}
	if r.backend == nil {
		if win == nil {
			panic("renderer: a window or a backend is required")
		}
		switch backendType {
		case BackendTypeWGPU:
			fallthrough
		default:
			r.backend = newWGPURendererBackend(win.SurfaceDescriptor(), r.forceFallbackAdapter, msaa)
		}
		r.width, r.height = win.Width(), win.Height()
	}
	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	if r.pool == nil {
		r.pool = worker.NewDynamicWorkerPool(4, 16, time.Second)
	}
	if r.pipelines == nil {
		r.pipelines = pipeline.NewPipelineCache()
	}
	r.schedule = schedule.NewSchedule(
		schedule.WithWorkerPool(r.pool),
		schedule.WithParallelStage(schedule.StagePrepareBindGroups),
	)
	if r.shaderHotReload {
		w, err := shader.NewWatcher()
		if err != nil {
			log.Printf("[Renderer] shader hot reload disabled: %v", err)
		} else {
			r.watcher = w
		}
	}

	r.insertResources()
	r.AddPlugin(NewViewPlugin())
	for _, p := range r.plugins {
		r.AddPlugin(p)
	}
	if r.width > 0 && r.height > 0 {
		r.Resize(r.width, r.height)
	}
	log.Printf("[Renderer] ready: surface %v, msaa %dx", r.backend.SurfaceFormat(), r.backend.SampleCount())
	return r
}

// insertResources adds the render-world resources every render plugin expects.
func (r *renderer) insertResources() {
	device := r.backend.Device()
	world.SetResource[render_device.RenderDevice](r.render, device)
	world.SetResource[worker.DynamicWorkerPool](r.render, r.pool)
	world.SetResource(r.render, view.TargetFormats{Surface: r.backend.SurfaceFormat(), Hdr: view.HdrTextureFormat})
	world.SetResource(r.render, view.Msaa{Samples: r.backend.SampleCount()})
	world.SetResource(r.render, phase.NewDrawFunctions[phase.Opaque3d]())
	world.SetResource(r.render, phase.NewDrawFunctions[phase.Transparent3d]())
	world.SetResource(r.render, view.NewViewUniforms(max(device.Limits().MinUniformBufferOffsetAlignment, 1)))
}

func (r *renderer) RenderWorld() *world.World {
	return r.render
}

func (r *renderer) Schedule() schedule.Schedule {
	return r.schedule
}

func (r *renderer) Pipelines() pipeline.PipelineCache {
	return r.pipelines
}

func (r *renderer) Pool() worker.DynamicWorkerPool {
	return r.pool
}

func (r *renderer) AddPlugin(p schedule.Plugin) {
	p.Build(r.schedule, r.main, r.render)
}

func (r *renderer) WatchShader(s shader.Shader) error {
	if r.watcher == nil {
		return nil
	}
	return r.watcher.Watch(s)
}

func (r *renderer) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if width <= 0 || height <= 0 {
		return
	}
	r.width, r.height = width, height
	r.backend.ConfigureSurface(width, height)
	world.SetResource(r.main, view.TargetSize{Width: uint32(width), Height: uint32(height)})
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.SetPresentMode(mode)
	if r.width > 0 && r.height > 0 {
		r.backend.ConfigureSurface(r.width, r.height)
	}
}

func (r *renderer) LastFrame() FrameStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func (r *renderer) RenderFrame(mainLock sync.Locker) (FrameStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	r.frame++
	r.applyShaderReloads()

	ctx := &schedule.Context{
		Main:      r.main,
		Render:    r.render,
		Device:    r.backend.Device(),
		Pipelines: r.pipelines,
		Frame:     r.frame,
		Commands:  world.NewCommands(),
	}
	stats := FrameStats{Frame: r.frame}

	var errs []error
	for _, stage := range schedule.Stages() {
		if stage == schedule.StageRender {
			if err := r.pipelines.ProcessQueue(ctx.Device); err != nil {
				log.Printf("[Renderer] pipeline creation failed: %v", err)
			}
			if err := r.renderViews(&stats); err != nil {
				errs = append(errs, err)
			}
		}
		if stage == schedule.StageExtract && mainLock != nil {
			mainLock.Lock()
		}
		err := r.schedule.RunStage(stage, ctx)
		if stage == schedule.StageExtract && mainLock != nil {
			mainLock.Unlock()
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	r.render.ClearEntities()

	stats.Duration = time.Since(start)
	r.last = stats
	return stats, errors.Join(errs...)
}

// renderViews records the opaque then transparent phase of every view in camera order.
func (r *renderer) renderViews(stats *FrameStats) error {
	views := view.Views(r.render)
	if err := r.backend.BeginFrame(); err != nil {
		return fmt.Errorf("renderer: begin frame: %w", err)
	}

	opaqueDraws := world.MustResource[*phase.DrawFunctions[phase.Opaque3d]](r.render)
	transparentDraws := world.MustResource[*phase.DrawFunctions[phase.Transparent3d]](r.render)

	var errs []error
	cleared := false
	for _, v := range views {
		pass, err := r.backend.BeginViewPass(ViewTarget{
			Hdr:        v.Component.Hdr,
			Clear:      !cleared || v.Component.Hdr,
			ClearColor: v.Component.ClearColor,
			Viewport:   v.Component.Viewport,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("renderer: view %d: %w", v.Entity, err))
			continue
		}
		if !v.Component.Hdr {
			cleared = true
		}
		ctx := &phase.RenderContext{World: r.render, View: v.Entity, Pipelines: r.pipelines}
		if p, ok := world.Get[*phase.RenderPhase[phase.Opaque3d]](r.render, v.Entity); ok {
			stats.add(p.Render(ctx, pass, opaqueDraws))
		}
		if p, ok := world.Get[*phase.RenderPhase[phase.Transparent3d]](r.render, v.Entity); ok {
			stats.add(p.Render(ctx, pass, transparentDraws))
		}
		ps := pass.Stats()
		stats.DrawCalls += ps.DrawCalls
		stats.Instances += ps.Instances
		stats.Views++
		r.backend.EndViewPass()
	}
	if len(views) == 0 {
		// still clear the surface so a frame without cameras does not show stale content
		if _, err := r.backend.BeginViewPass(ViewTarget{Clear: true}); err == nil {
			r.backend.EndViewPass()
		}
	}

	if err := r.backend.EndFrame(); err != nil {
		errs = append(errs, err)
	}
	r.backend.Present()
	return errors.Join(errs...)
}

func (s *FrameStats) add(rs phase.RenderStats) {
	s.Drawn += rs.Drawn
	s.Failed += rs.Failed
	s.Missing += rs.Missing
}

// applyShaderReloads requeues the pipelines of every shader reloaded since the last frame.
func (r *renderer) applyShaderReloads() {
	if r.watcher == nil {
		return
	}
	for {
		select {
		case s := <-r.watcher.Reloaded():
			n := r.pipelines.InvalidateShader(s.Key())
			log.Printf("[Renderer] shader %s changed, requeued %d pipelines", s.Key(), n)
		default:
			return
		}
	}
}

func (r *renderer) Release() {
	if r.watcher != nil {
		if err := r.watcher.Close(); err != nil {
			log.Printf("[Renderer] closing shader watcher: %v", err)
		}
	}
	r.backend.Release()
}
