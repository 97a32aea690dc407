package schedule

import "github.com/Carmen-Shannon/oxy-polyline/engine/world"

// Plugin registers the resources and systems of one rendering feature.
type Plugin interface {
	// Build inserts the plugin's resources into the worlds and its systems into s.
	//
	// Parameters:
	//   - s: the render schedule
	//   - main: the main world
	//   - render: the render world
	Build(s Schedule, main, render *world.World)
}

// PluginFunc adapts a plain function to the Plugin interface.
type PluginFunc func(s Schedule, main, render *world.World)

// Build calls f(s, main, render).
func (f PluginFunc) Build(s Schedule, main, render *world.World) {
	f(s, main, render)
}
