package renderer

import (
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/phase"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/schedule"
	"github.com/Carmen-Shannon/oxy-polyline/engine/view"
	"github.com/Carmen-Shannon/oxy-polyline/engine/world"
)

// View plugin system names.
const (
	SystemExtractCameras  = "extract_cameras"
	SystemPrepareViews    = "prepare_view_uniforms"
	SystemSortOpaque      = "sort_opaque_3d"
	SystemSortTransparent = "sort_transparent_3d"
)

// NewViewPlugin creates the plugin every renderer starts with: it extracts cameras into
// views, uploads their uniforms and sorts both 3D phases of every view.
//
// Returns:
//   - schedule.Plugin: the view plugin
func NewViewPlugin() schedule.Plugin {
	return schedule.PluginFunc(func(s schedule.Schedule, main, render *world.World) {
		s.AddSystem(schedule.StageExtract, SystemExtractCameras, func(ctx *schedule.Context) error {
			view.ExtractCameras(ctx.Main, ctx.Render)
			return nil
		})
		s.AddSystem(schedule.StagePrepare, SystemPrepareViews, func(ctx *schedule.Context) error {
			return view.PrepareViewUniforms(ctx.Render, ctx.Device)
		})
		s.AddSystem(schedule.StagePhaseSort, SystemSortOpaque, func(ctx *schedule.Context) error {
			phase.SortPhases[phase.Opaque3d](ctx.Render)
			return nil
		})
		s.AddSystem(schedule.StagePhaseSort, SystemSortTransparent, func(ctx *schedule.Context) error {
			phase.SortPhases[phase.Transparent3d](ctx.Render)
			return nil
		})
	})
}
