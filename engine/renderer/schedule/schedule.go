// Package schedule orders the render systems of a frame into fixed stages. Extraction copies
// main-world state into the render world, the prepare stages upload it, queue builds render
// phases and render records the passes.
package schedule

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer/render_device"
	"github.com/Carmen-Shannon/oxy-polyline/engine/world"
)

// Stage is one step of the render schedule. Stages run in declaration order.
type Stage int

const (
	// StageExtract copies main-world data into the render world.
	StageExtract Stage = iota

	// StagePrepareAssets uploads extracted assets to the device.
	StagePrepareAssets

	// StagePrepare writes per-frame uniforms and specializes pipelines.
	StagePrepare

	// StageQueue adds phase items for every visible entity to each view.
	StageQueue

	// StagePhaseSort sorts the phase items of every view.
	StagePhaseSort

	// StagePrepareBindGroups creates bind groups over the buffers written this frame.
	StagePrepareBindGroups

	// StageRender records the render passes.
	StageRender

	// StageCleanup clears per-frame render-world state.
	StageCleanup

	stageCount
)

var stageNames = [stageCount]string{
	"extract",
	"prepare_assets",
	"prepare",
	"queue",
	"phase_sort",
	"prepare_bind_groups",
	"render",
	"cleanup",
}

// String returns the stage's name.
func (s Stage) String() string {
	if s < 0 || s >= stageCount {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// Stages returns every stage in run order.
func Stages() []Stage {
	out := make([]Stage, stageCount)
	for i := range out {
		out[i] = Stage(i)
	}
	return out
}

// Context is handed to every system of a frame.
type Context struct {
	Main      *world.World
	Render    *world.World
	Device    render_device.RenderDevice
	Pipelines pipeline.PipelineCache
	Frame     uint64

	// Commands collects deferred render-world mutations; they are applied when the stage
	// that pushed them finishes.
	Commands *world.Commands
}

// SystemFunc is the body of a system.
type SystemFunc func(ctx *Context) error

type system struct {
	name string
	run  SystemFunc
}

// schedule is the implementation of the Schedule interface.
type schedule struct {
	mu *sync.Mutex

	stages   [stageCount][]system
	parallel [stageCount]bool
	pool     worker.DynamicWorkerPool
	hasPool  bool
}

// Schedule holds the systems of each stage and runs them once per frame.
type Schedule interface {
	// AddSystem appends a system to a stage. Systems of a stage run in insertion order unless
	// the stage is parallel.
	//
	// Parameters:
	//   - stage: the stage to run the system in
	//   - name: the system name used in error messages
	//   - run: the system body
	AddSystem(stage Stage, name string, run SystemFunc)

	// Run executes every stage in order. A failing system does not stop the frame; the errors
	// of all systems are joined and returned. Deferred commands are applied after each stage.
	//
	// Parameters:
	//   - ctx: the frame context
	//
	// Returns:
	//   - error: the joined system errors, or nil
	Run(ctx *Context) error

	// RunStage executes the systems of one stage.
	//
	// Parameters:
	//   - stage: the stage to run
	//   - ctx: the frame context
	//
	// Returns:
	//   - error: the joined system errors, or nil
	RunStage(stage Stage, ctx *Context) error

	// Systems returns the names of the systems registered on stage, in insertion order.
	Systems(stage Stage) []string
}

var _ Schedule = &schedule{}

// NewSchedule creates an empty schedule.
//
// Parameters:
//   - opts: a variadic list of ScheduleBuilderOption functions to configure the schedule
//
// Returns:
//   - Schedule: the new schedule
func NewSchedule(opts ...ScheduleBuilderOption) Schedule {
	s := &schedule{mu: &sync.Mutex{}}
	for _, opt := range opts {
		opt(s)
	}
	for st := range s.parallel {
		if s.parallel[st] && !s.hasPool {
			panic("schedule: parallel stages require a worker pool")
		}
	}
	return s
}

func (s *schedule) AddSystem(stage Stage, name string, run SystemFunc) {
	if stage < 0 || stage >= stageCount {
		panic(fmt.Sprintf("schedule: unknown stage %d", int(stage)))
	}
	if run == nil {
		panic(fmt.Sprintf("schedule: system %s has no body", name))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stages[stage] = append(s.stages[stage], system{name: name, run: run})
}

func (s *schedule) Run(ctx *Context) error {
	var errs []error
	for _, st := range Stages() {
		if err := s.RunStage(st, ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *schedule) RunStage(stage Stage, ctx *Context) error {
	if stage < 0 || stage >= stageCount {
		return fmt.Errorf("schedule: unknown stage %d", int(stage))
	}
	s.mu.Lock()
	systems := append([]system(nil), s.stages[stage]...)
	parallel := s.parallel[stage]
	s.mu.Unlock()

	if len(systems) == 0 {
		return nil
	}
	errs := make([]error, len(systems))
	if parallel && len(systems) > 1 {
		var wg sync.WaitGroup
		for i, sys := range systems {
			wg.Add(1)
			idx, sysCap := i, sys
			s.pool.SubmitTask(worker.Task{
				ID: idx,
				Do: func() (any, error) {
					defer wg.Done()
					errs[idx] = runSystem(stage, sysCap, ctx)
					return nil, nil
				},
			})
		}
		wg.Wait()
	} else {
		for i, sys := range systems {
			errs[i] = runSystem(stage, sys, ctx)
		}
	}
	if ctx.Commands != nil && ctx.Render != nil {
		ctx.Commands.Apply(ctx.Render)
	}
	return errors.Join(errs...)
}

func runSystem(stage Stage, sys system, ctx *Context) error {
	if err := sys.run(ctx); err != nil {
		return fmt.Errorf("%s/%s: %w", stage, sys.name, err)
	}
	return nil
}

func (s *schedule) Systems(stage Stage) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stage < 0 || stage >= stageCount {
		return nil
	}
	names := make([]string, len(s.stages[stage]))
	for i, sys := range s.stages[stage] {
		names[i] = sys.name
	}
	return names
}
