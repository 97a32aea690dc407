package scene

import (
	"github.com/Carmen-Shannon/oxy-polyline/common"
	"github.com/Carmen-Shannon/oxy-polyline/engine/camera"
	"github.com/Carmen-Shannon/oxy-polyline/engine/world"
)

// SceneBuilderOption is a functional option for configuring a Scene.
type SceneBuilderOption func(*sceneImpl)

// WithActive sets whether the scene starts active.
//
// Parameters:
//   - active: whether the scene is updated and rendered
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *sceneImpl) {
		s.active = active
	}
}

// WithCamera replaces the main camera component and places the camera entity at t.
//
// Parameters:
//   - cam: the camera component
//   - t: the camera's local transform
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCamera(cam camera.Camera, t common.Transform) SceneBuilderOption {
	return func(s *sceneImpl) {
		world.Insert(s.world, s.camera, cam)
		world.Insert(s.world, s.camera, t)
	}
}

// WithOrbitController drives the main camera with oc.
//
// Parameters:
//   - oc: the orbit controller
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithOrbitController(oc camera.OrbitController) SceneBuilderOption {
	return func(s *sceneImpl) {
		s.orbit = oc
	}
}

// WithSystem registers a per-tick system during construction.
//
// Parameters:
//   - name: the system name
//   - run: the update function
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithSystem(name string, run func(w *world.World, dt float32)) SceneBuilderOption {
	return func(s *sceneImpl) {
		if run == nil {
			panic("scene: nil system " + name)
		}
		s.systems = append(s.systems, System{Name: name, Run: run})
	}
}

// WithCullingDisabled skips frustum tests: every entity visible in the hierarchy is drawn.
//
// Parameters:
//   - disabled: true to disable frustum culling
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCullingDisabled(disabled bool) SceneBuilderOption {
	return func(s *sceneImpl) {
		s.cullingEnabled = !disabled
	}
}
