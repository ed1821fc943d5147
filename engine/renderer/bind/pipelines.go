package bind

import (
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/shader"
)

// FullscreenTriPipeline describes a pipeline that covers its targets with one three vertex triangle
// and runs the fragment stage once per texel. It has no depth test and no blending, which makes it
// the shape every simulation, minimap and composite pass uses.
//
// Parameters:
//   - label: the pipeline key
//   - s: a shader with `vertex` and `fragment` entry points
//   - layouts: the bind group layouts, indexed by group
//   - targets: the color target formats in attachment order
//
// Returns:
//   - pipeline.Pipeline: the pipeline description, ready to queue
//   - error: a structural error found while checking the shader against the layouts
func FullscreenTriPipeline(label string, s shader.Shader, layouts []Layout, targets ...gpu.TextureFormat) (pipeline.Pipeline, error) {
	opts := baseOptions(s, layouts, targets)
	return pipeline.NewPipeline(label, opts...)
}

// OpaquePipeline describes a geometry pipeline writing into the G-buffer: reversed-Z depth test
// with GreaterEqual, depth writes on, no blending and no culling.
//
// Parameters:
//   - label: the pipeline key
//   - s: a shader with `vertex` and `fragment` entry points
//   - layouts: the bind group layouts, indexed by group
//   - targets: the color target formats in attachment order
//
// Returns:
//   - pipeline.Pipeline: the pipeline description, ready to queue
//   - error: a structural error found while checking the shader against the layouts
func OpaquePipeline(label string, s shader.Shader, layouts []Layout, targets ...gpu.TextureFormat) (pipeline.Pipeline, error) {
	opts := baseOptions(s, layouts, targets)
	opts = append(opts,
		pipeline.WithDepthTestEnabled(true),
		pipeline.WithDepthWriteEnabled(true),
		pipeline.WithDepthFormat(gpu.TextureFormatDepth32Float),
		pipeline.WithDepthCompare(gpu.CompareFunctionGreaterEqual),
	)
	return pipeline.NewPipeline(label, opts...)
}

func baseOptions(s shader.Shader, layouts []Layout, targets []gpu.TextureFormat) []pipeline.PipelineBuilderOption {
	opts := []pipeline.PipelineBuilderOption{
		pipeline.WithShader(s),
		pipeline.WithCullMode(gpu.CullModeNone),
		pipeline.WithBlendEnabled(false),
	}
	for _, l := range layouts {
		opts = append(opts, pipeline.WithLayout(l.Descriptor(), l.Handle()))
	}
	for _, t := range targets {
		opts = append(opts, pipeline.WithColorTarget(t))
	}
	return opts
}
