// Package scene hosts the application world a renderer extracts from: its assets, its main
// camera and the per-tick systems that keep transforms, bounds and visibility current.
package scene

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-polyline/common"
	"github.com/Carmen-Shannon/oxy-polyline/engine/asset"
	"github.com/Carmen-Shannon/oxy-polyline/engine/camera"
	"github.com/Carmen-Shannon/oxy-polyline/engine/polyline"
	"github.com/Carmen-Shannon/oxy-polyline/engine/transform"
	"github.com/Carmen-Shannon/oxy-polyline/engine/view"
	"github.com/Carmen-Shannon/oxy-polyline/engine/visibility"
	"github.com/Carmen-Shannon/oxy-polyline/engine/world"
)

const dragRadiansPerPixel = 0.005

// System is a named per-tick update run against the scene's world.
type System struct {
	Name string
	Run  func(w *world.World, dt float32)
}

// UpdateStats summarizes one Update.
type UpdateStats struct {
	Tick      uint64
	Bounds    int
	Visible   int
	Frustums  int
	Systems   int
	CameraSet bool
}

type sceneImpl struct {
	mu *sync.RWMutex

	name   string
	active bool

	world     *world.World
	polylines *asset.Assets[polyline.Polyline]
	camera    world.EntityID
	orbit     camera.OrbitController

	systems        []System
	cullingEnabled bool
	tick           uint64
}

// Scene owns the main world and serializes access to it: Update and With take the write lock,
// while renderers extract under RLocker. Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Active returns whether this scene is updated and rendered.
	Active() bool

	// SetActive sets whether this scene is updated and rendered.
	SetActive(active bool)

	// World returns the main world. Callers mutating it outside With must hold the scene lock.
	//
	// Returns:
	//   - *world.World: the main world
	World() *world.World

	// Polylines returns the polyline asset store of the world. Safe to call inside With.
	//
	// Returns:
	//   - *asset.Assets[polyline.Polyline]: the polyline assets
	Polylines() *asset.Assets[polyline.Polyline]

	// Camera returns the main camera entity.
	//
	// Returns:
	//   - world.EntityID: the camera entity
	Camera() world.EntityID

	// OrbitController returns the controller driving the main camera, or nil.
	OrbitController() camera.OrbitController

	// SetOrbitController replaces the controller driving the main camera. A nil controller
	// leaves the camera transform to the application.
	//
	// Parameters:
	//   - oc: the orbit controller
	SetOrbitController(oc camera.OrbitController)

	// AddSystem appends a system run every Update before transforms are propagated.
	//
	// Parameters:
	//   - name: the system name
	//   - run: the update function
	AddSystem(name string, run func(w *world.World, dt float32))

	// Systems returns the registered system names in run order.
	Systems() []string

	// With runs fn with the write lock held.
	//
	// Parameters:
	//   - fn: the function to run against the world
	With(fn func(w *world.World))

	// RLocker returns the read half of the scene lock. Renderers hold it while extracting.
	//
	// Returns:
	//   - sync.Locker: the read locker
	RLocker() sync.Locker

	// HandleKey forwards a pressed key to the orbit controller.
	//
	// Parameters:
	//   - key: the key code (see common.Key*)
	//
	// Returns:
	//   - bool: true if the key was consumed
	HandleKey(key int) bool

	// Drag rotates the orbit controller by a cursor movement in pixels.
	//
	// Parameters:
	//   - dx, dy: the cursor movement
	Drag(dx, dy float32)

	// Zoom forwards a scroll delta to the orbit controller.
	//
	// Parameters:
	//   - delta: the scroll amount
	Zoom(delta float32)

	// Update runs one tick under the write lock: the systems in order, the orbit controller,
	// transform and visibility propagation, polyline bounds and frustum culling against every
	// active camera.
	//
	// Parameters:
	//   - dt: seconds since the previous tick
	//
	// Returns:
	//   - UpdateStats: what the tick touched
	Update(dt float32) UpdateStats
}

var _ Scene = &sceneImpl{}

// NewScene creates an active scene with an empty world, a polyline asset store and a main
// camera entity at the origin.
//
// Parameters:
//   - name: the scene's identifier
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &sceneImpl{
		mu:             &sync.RWMutex{},
		name:           name,
		active:         true,
		cullingEnabled: true,
	}
	s.world = world.NewWorld(name)
	s.polylines = asset.NewAssets[polyline.Polyline]()
	world.SetResource(s.world, s.polylines)

	s.camera = s.world.Spawn()
	world.Insert(s.world, s.camera, camera.NewCamera())
	world.Insert(s.world, s.camera, common.IdentityTransform())
	world.Insert(s.world, s.camera, transform.IdentityGlobalTransform())

	for _, opt := range options {
		opt(s)
	}
	return s
}

// AssetsOf returns the world's asset store for T, creating it on first use.
//
// Parameters:
//   - s: the scene
//
// Returns:
//   - *asset.Assets[T]: the asset store
func AssetsOf[T any](s Scene) *asset.Assets[T] {
	var out *asset.Assets[T]
	s.With(func(w *world.World) {
		if a, ok := world.Resource[*asset.Assets[T]](w); ok {
			out = a
			return
		}
		out = asset.NewAssets[T]()
		world.SetResource(w, out)
	})
	return out
}

func (s *sceneImpl) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *sceneImpl) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *sceneImpl) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *sceneImpl) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *sceneImpl) World() *world.World {
	return s.world
}

func (s *sceneImpl) Polylines() *asset.Assets[polyline.Polyline] {
	return s.polylines
}

func (s *sceneImpl) Camera() world.EntityID {
	return s.camera
}

func (s *sceneImpl) OrbitController() camera.OrbitController {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.orbit
}

func (s *sceneImpl) SetOrbitController(oc camera.OrbitController) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orbit = oc
}

func (s *sceneImpl) AddSystem(name string, run func(w *world.World, dt float32)) {
	if run == nil {
		panic("scene: nil system " + name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.systems = append(s.systems, System{Name: name, Run: run})
}

func (s *sceneImpl) Systems() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, len(s.systems))
	for i, sys := range s.systems {
		names[i] = sys.Name
	}
	return names
}

func (s *sceneImpl) With(fn func(w *world.World)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.world)
}

func (s *sceneImpl) RLocker() sync.Locker {
	return s.mu.RLocker()
}

func (s *sceneImpl) HandleKey(key int) bool {
	oc := s.OrbitController()
	return oc != nil && oc.HandleKey(key)
}

func (s *sceneImpl) Drag(dx, dy float32) {
	if oc := s.OrbitController(); oc != nil {
		oc.Rotate(-dx*dragRadiansPerPixel, dy*dragRadiansPerPixel)
	}
}

func (s *sceneImpl) Zoom(delta float32) {
	if oc := s.OrbitController(); oc != nil {
		oc.Zoom(delta)
	}
}

func (s *sceneImpl) Update(dt float32) UpdateStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tick++
	stats := UpdateStats{Tick: s.tick, Systems: len(s.systems)}
	for _, sys := range s.systems {
		sys.Run(s.world, dt)
	}
	if s.orbit != nil && s.world.Alive(s.camera) {
		world.Insert(s.world, s.camera, s.orbit.Transform())
		stats.CameraSet = true
	}

	transform.Propagate(s.world)
	visibility.Propagate(s.world)
	stats.Bounds = polyline.UpdateAabbs(s.world, s.polylines)

	if !s.cullingEnabled {
		stats.Visible = s.showInherited()
		return stats
	}
	frustums := view.CameraFrustums(s.world)
	stats.Frustums = len(frustums)
	stats.Visible = visibility.Check(s.world, frustums)
	return stats
}

// showInherited marks every entity visible in the hierarchy as view-visible. Caller must hold
// the write lock.
func (s *sceneImpl) showInherited() int {
	inherited := world.Query[visibility.InheritedVisibility](s.world)
	batch := make([]world.Entry[visibility.ViewVisibility], 0, len(inherited))
	visible := 0
	for _, e := range inherited {
		if e.Component {
			visible++
		}
		batch = append(batch, world.Entry[visibility.ViewVisibility]{Entity: e.Entity, Component: visibility.ViewVisibility(e.Component)})
	}
	world.InsertOrSpawnBatch(s.world, batch)
	return visible
}
