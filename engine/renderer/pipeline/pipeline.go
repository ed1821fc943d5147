package pipeline

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/shader"
)

// layoutSlot pairs a compiled bind group layout with the descriptor it was created from.
// The descriptor is kept so the shader can be checked against it before compilation.
type layoutSlot struct {
	desc   gpu.BindGroupLayoutDescriptor
	layout gpu.BindGroupLayout
}

// pipeline is the implementation of the Pipeline interface.
// It holds everything needed to compile a render pipeline but never the compiled object itself;
// compilation is owned by the pipeline cache.
type pipeline struct {
	// pipelineKey is the unique identifier for this pipeline, used as the pipeline label and cache key
	pipelineKey string

	// shader holds both the vertex and fragment entry points of the pipeline
	shader shader.Shader

	// layouts are the bind group layouts, indexed by group
	layouts []layoutSlot

	// targets are the color outputs of the fragment stage in attachment order
	targets []gpu.ColorTargetState

	// The following properties are toggled with the builder options.

	depthTestEnabled  bool
	depthWriteEnabled bool
	depthFormat       gpu.TextureFormat
	depthCompare      gpu.CompareFunction
	blendEnabled      bool
	cullMode          gpu.CullMode
}

// Pipeline describes a render pipeline: one shader with a vertex and fragment entry point, its bind group
// layouts, color targets, and fixed-function depth, blend and cull state.
type Pipeline interface {
	// PipelineKey returns the unique key associated with this pipeline, used for caching and lookups.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// Shader retrieves the shader module the pipeline compiles from.
	//
	// Returns:
	//   - shader.Shader: the pipeline's shader
	Shader() shader.Shader

	// Targets returns the color target states of the fragment stage.
	//
	// Returns:
	//   - []gpu.ColorTargetState: the color targets in attachment order
	Targets() []gpu.ColorTargetState

	// DepthTestEnabled returns whether depth testing is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if depth testing is enabled, false otherwise
	DepthTestEnabled() bool

	// DepthWriteEnabled returns whether depth writing is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if depth writing is enabled, false otherwise
	DepthWriteEnabled() bool

	// BlendEnabled returns whether blending is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if blending is enabled, false otherwise
	BlendEnabled() bool

	// CullMode returns the cull mode configured for this pipeline.
	//
	// Returns:
	//   - gpu.CullMode: the cull mode for this pipeline
	CullMode() gpu.CullMode

	// Descriptor builds the backend neutral descriptor the device compiles.
	//
	// Returns:
	//   - *gpu.RenderPipelineDescriptor: the render pipeline descriptor
	Descriptor() *gpu.RenderPipelineDescriptor
}

var _ Pipeline = &pipeline{}

// NewPipeline is the entry point to create a new Pipeline. The configuration is checked up front:
// the shader must declare both entry points, every binding it declares must be satisfied by the
// layouts, and the targets must use renderable formats. These are programmer errors, so the caller
// is expected to fail initialization on them.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline instance with the specified configuration
//   - error: an error describing the first structural problem found
func NewPipeline(pipelineKey string, opts ...PipelineBuilderOption) (Pipeline, error) {
	p := &pipeline{
		pipelineKey:       pipelineKey,
		depthTestEnabled:  false,
		depthWriteEnabled: false,
		depthFormat:       gpu.TextureFormatDepth32Float,
		depthCompare:      gpu.CompareFunctionGreaterEqual,
		blendEnabled:      false,
		cullMode:          gpu.CullModeNone,
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.check(); err != nil {
		return nil, fmt.Errorf("pipeline %q: %w", pipelineKey, err)
	}
	return p, nil
}

func (p *pipeline) check() error {
	if p.shader == nil {
		return fmt.Errorf("no shader set")
	}
	if _, ok := p.shader.EntryPoint(shader.StageVertex); !ok {
		return fmt.Errorf("shader %q has no vertex entry point", p.shader.Key())
	}
	if _, ok := p.shader.EntryPoint(shader.StageFragment); !ok {
		return fmt.Errorf("shader %q has no fragment entry point", p.shader.Key())
	}
	if len(p.targets) == 0 {
		return fmt.Errorf("no color targets")
	}
	for i, t := range p.targets {
		if err := gpu.ValidateFormat(t.Format); err != nil {
			return fmt.Errorf("target %d: %w", i, err)
		}
		if gpu.IsDepth(t.Format) {
			return fmt.Errorf("target %d: depth format %s used as a color target", i, t.Format)
		}
	}
	if p.depthTestEnabled && !gpu.IsDepth(p.depthFormat) {
		return fmt.Errorf("depth format %s is not a depth format", p.depthFormat)
	}
	for _, b := range p.shader.Bindings() {
		if int(b.Group) >= len(p.layouts) {
			return fmt.Errorf("shader binds group %d but only %d layouts are set", b.Group, len(p.layouts))
		}
	}
	for i, slot := range p.layouts {
		if err := p.shader.CheckLayout(uint32(i), slot.desc); err != nil {
			return err
		}
	}
	return nil
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Shader() shader.Shader {
	return p.shader
}

func (p *pipeline) Targets() []gpu.ColorTargetState {
	return p.targets
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) CullMode() gpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Descriptor() *gpu.RenderPipelineDescriptor {
	vertexEntry, _ := p.shader.EntryPoint(shader.StageVertex)
	fragmentEntry, _ := p.shader.EntryPoint(shader.StageFragment)

	layouts := make([]gpu.BindGroupLayout, len(p.layouts))
	for i, slot := range p.layouts {
		layouts[i] = slot.layout
	}

	targets := make([]gpu.ColorTargetState, len(p.targets))
	for i, t := range p.targets {
		targets[i] = gpu.ColorTargetState{Format: t.Format, Blend: t.Blend || p.blendEnabled}
	}

	desc := &gpu.RenderPipelineDescriptor{
		Label:    p.pipelineKey,
		Layouts:  layouts,
		Vertex:   gpu.ShaderStageDescriptor{Label: p.shader.Key(), Source: p.shader.Source(), EntryPoint: vertexEntry},
		Fragment: gpu.ShaderStageDescriptor{Label: p.shader.Key(), Source: p.shader.Source(), EntryPoint: fragmentEntry},
		Targets:  targets,
		CullMode: p.cullMode,
	}
	if p.depthTestEnabled {
		desc.DepthStencil = &gpu.DepthStencilState{
			Format:            p.depthFormat,
			DepthWriteEnabled: p.depthWriteEnabled,
			DepthCompare:      p.depthCompare,
		}
	}
	return desc
}
