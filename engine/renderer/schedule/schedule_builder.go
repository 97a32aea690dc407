package schedule

import "github.com/Carmen-Shannon/automation/tools/worker"

// ScheduleBuilderOption is a functional option used to configure a Schedule during construction.
type ScheduleBuilderOption func(*schedule)

// WithWorkerPool sets the pool that parallel stages submit their systems to.
//
// Parameters:
//   - pool: the shared worker pool
//
// Returns:
//   - ScheduleBuilderOption: a function that sets the worker pool
func WithWorkerPool(pool worker.DynamicWorkerPool) ScheduleBuilderOption {
	return func(s *schedule) {
		s.pool = pool
		s.hasPool = true
	}
}

// WithParallelStage runs the systems of stage concurrently on the worker pool. Systems of a
// parallel stage must not depend on each other's output.
//
// Parameters:
//   - stage: the stage to parallelize
//
// Returns:
//   - ScheduleBuilderOption: a function that marks the stage parallel
func WithParallelStage(stage Stage) ScheduleBuilderOption {
	return func(s *schedule) {
		if stage >= 0 && stage < stageCount {
			s.parallel[stage] = true
		}
	}
}
