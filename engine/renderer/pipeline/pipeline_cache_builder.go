package pipeline

import "github.com/cogentcore/webgpu/wgpu"

// PipelineCacheBuilderOption is a functional option used to configure a PipelineCache during construction.
type PipelineCacheBuilderOption func(*pipelineCache)

// WithPipelineReleaser replaces the function used to free device pipelines that were rebuilt.
// The default calls Release on the pipeline.
//
// Parameters:
//   - release: the function called once per replaced pipeline
//
// Returns:
//   - PipelineCacheBuilderOption: a function that sets the releaser
func WithPipelineReleaser(release func(*wgpu.RenderPipeline)) PipelineCacheBuilderOption {
	return func(c *pipelineCache) {
		if release != nil {
			c.release = release
		}
	}
}
