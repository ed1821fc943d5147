package renderer

import (
	"github.com/Carmen-Shannon/oxy-swarm/engine/profiler"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithStage appends a stage to the renderer's frame graph. Stages run in the order they are added.
//
// Parameters:
//   - s: the stage to append
//
// Returns:
//   - RendererBuilderOption: a function that appends the stage
func WithStage(s Stage) RendererBuilderOption {
	return func(r *renderer) {
		r.graph.Add(s)
	}
}

// WithPipelineWorkers sets how many pipelines may compile concurrently. Defaults to 2.
//
// Parameters:
//   - n: the number of compile workers
//
// Returns:
//   - RendererBuilderOption: a function that applies the worker count
func WithPipelineWorkers(n int) RendererBuilderOption {
	return func(r *renderer) {
		r.pipelineWorkers = n
	}
}

// WithPipelineLookup replaces the lookup stages resolve pipelines through. Pipelines are still
// queued on the renderer's cache; only readiness is decided by lookup. Useful to hold every
// pipeline back, or to serve pipelines compiled elsewhere.
//
// Parameters:
//   - lookup: the lookup to use
//
// Returns:
//   - RendererBuilderOption: a function that applies the lookup
func WithPipelineLookup(lookup PipelineLookup) RendererBuilderOption {
	return func(r *renderer) {
		r.lookup = lookup
	}
}

// WithProfiler records per stage timings and skips into p.
//
// Parameters:
//   - p: the profiler
//
// Returns:
//   - RendererBuilderOption: a function that applies the profiler
func WithProfiler(p *profiler.Profiler) RendererBuilderOption {
	return func(r *renderer) {
		r.profiler = p
	}
}
