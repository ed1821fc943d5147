package deferred

import (
	_ "embed"
	"fmt"

	"github.com/Carmen-Shannon/oxy-swarm/engine/light"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/bind"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/shader"
)

var (
	//go:embed assets/gbuffer.wgsl
	GBufferSource string

	//go:embed assets/lighting.wgsl
	lightingSource string

	//go:embed assets/tonemap.wgsl
	tonemapSource string
)

const (
	LightingPipelineLabel = "deferred_lighting_pipeline"
	TonemapPipelineLabel  = "tonemap_pipeline"
)

// node is the implementation of the Node interface.
type node struct {
	sun        light.Light
	background [3]float32
	validate   bool

	lightingLayout bind.Layout
	tonemapLayout  bind.Layout

	lighting renderer.PipelineID
	tonemap  renderer.PipelineID
}

// Node is the deferred renderer around the simulation: it prepares and clears the view targets,
// resolves the G-buffer into the main color texture and writes the final image to the surface.
type Node interface {
	// PrepareStage returns the stage that acquires and clears the view targets. It must run
	// before any stage drawing into the G-buffer.
	//
	// Returns:
	//   - renderer.Stage: the prepare stage, labeled "deferred_prepare"
	PrepareStage() renderer.Stage

	// LightingStage returns the stage shading the G-buffer into the main color texture.
	//
	// Returns:
	//   - renderer.Stage: the lighting stage, labeled "deferred_lighting"
	LightingStage() renderer.Stage

	// TonemapStage returns the stage writing the main color texture to the surface.
	//
	// Returns:
	//   - renderer.Stage: the tonemap stage, labeled "tonemap"
	TonemapStage() renderer.Stage

	// PipelineIDs returns the ids of every pipeline the node queued.
	//
	// Returns:
	//   - []renderer.PipelineID: the queued pipeline ids
	PipelineIDs() []renderer.PipelineID

	// Release releases the node's layouts.
	Release()
}

var _ Node = &node{}

// NewNode creates the layouts of the deferred renderer and queues its pipelines on the renderer's cache.
//
// Parameters:
//   - r: the renderer whose device and pipeline cache are used
//   - opts: a variadic list of NodeBuilderOption functions
//
// Returns:
//   - Node: the deferred node
//   - error: a structural error in the shaders or layouts
func NewNode(r renderer.Renderer, opts ...NodeBuilderOption) (Node, error) {
	n := &node{
		sun:        light.NewLight(),
		background: [3]float32{0.08, 0.11, 0.07},
		validate:   true,
	}
	for _, opt := range opts {
		opt(n)
	}

	device := r.Device()
	var err error
	n.lightingLayout, err = bind.NewLayout(device, "deferred_lighting_layout",
		bind.ViewUniform(0),
		bind.GlobalsUniform(9),
		bind.UintTexture(101, gpu.TextureViewDimension2D),
		bind.UintTexture(102, gpu.TextureViewDimension2D),
	)
	if err != nil {
		return nil, err
	}
	n.tonemapLayout, err = bind.NewLayout(device, "tonemap_layout",
		bind.ViewUniform(0),
		bind.GlobalsUniform(9),
		bind.TextureEntry(101, gpu.TextureViewDimension2D, gpu.TextureSampleTypeUnfilterableFloat),
	)
	if err != nil {
		return nil, err
	}

	includes := renderer.CommonIncludes()
	includes["gbuffer"] = GBufferSource
	dir, radiance := n.sun.ToLight(), n.sun.Radiance()
	defines := map[string]string{
		"LIGHT_DIR":  fmt.Sprintf("%g, %g, %g", dir[0], dir[1], dir[2]),
		"RADIANCE":   fmt.Sprintf("%g, %g, %g", radiance[0], radiance[1], radiance[2]),
		"AMBIENT":    fmt.Sprintf("%g", n.sun.Ambient()),
		"BACKGROUND": fmt.Sprintf("%g, %g, %g", n.background[0], n.background[1], n.background[2]),
	}

	lightingShader, err := shader.NewShader("deferred_lighting", lightingSource,
		shader.WithIncludes(includes), shader.WithDefines(defines), shader.WithValidation(n.validate))
	if err != nil {
		return nil, err
	}
	lighting, err := bind.FullscreenTriPipeline(LightingPipelineLabel, lightingShader,
		[]bind.Layout{n.lightingLayout}, MainFormat)
	if err != nil {
		return nil, err
	}

	tonemapShader, err := shader.NewShader("tonemap", tonemapSource,
		shader.WithIncludes(includes), shader.WithValidation(n.validate))
	if err != nil {
		return nil, err
	}
	surfaceFormat := gpu.TextureFormatBGRA8Unorm
	if s := r.Surface(); s != nil {
		surfaceFormat = s.Format()
	}
	tonemap, err := bind.FullscreenTriPipeline(TonemapPipelineLabel, tonemapShader,
		[]bind.Layout{n.tonemapLayout}, surfaceFormat)
	if err != nil {
		return nil, err
	}

	n.lighting = r.Pipelines().Queue(lighting)
	n.tonemap = r.Pipelines().Queue(tonemap)
	return n, nil
}

func (n *node) PrepareStage() renderer.Stage {
	return renderer.StageFunc{Name: "deferred_prepare", Fn: n.prepare}
}

func (n *node) LightingStage() renderer.Stage {
	return renderer.StageFunc{Name: "deferred_lighting", Fn: n.resolve}
}

func (n *node) TonemapStage() renderer.Stage {
	return renderer.StageFunc{Name: "tonemap", Fn: n.blit}
}

func (n *node) PipelineIDs() []renderer.PipelineID {
	return []renderer.PipelineID{n.lighting, n.tonemap}
}

func (n *node) Release() {
	n.lightingLayout.Release()
	n.tonemapLayout.Release()
}

func (n *node) prepare(frame *renderer.FrameContext, view *renderer.ViewContext) error {
	renderer.RemoveComponent[ViewTargets](view)

	targets, err := acquireTargets(frame.Textures, view)
	if err != nil {
		return err
	}

	pass, err := frame.Encoder.BeginRenderPass(&gpu.RenderPassDescriptor{
		Label: "deferred_clear_pass",
		ColorAttachments: []gpu.ColorAttachment{
			bind.ClearColor(targets.GBuffer),
			bind.ClearColor(targets.LightingID),
		},
		DepthAttachment: bind.ClearDepth(targets.Depth),
	})
	if err != nil {
		return err
	}
	if err := pass.End(); err != nil {
		return err
	}

	renderer.SetComponent(view, targets)
	return nil
}

func (n *node) resolve(frame *renderer.FrameContext, view *renderer.ViewContext) error {
	pipeline, err := frame.Pipeline(n.lighting)
	if err != nil {
		return err
	}
	targets, err := renderer.GetComponent[ViewTargets](view)
	if err != nil {
		return err
	}

	group, err := bind.NewBindGroup(frame.Device, "deferred_lighting_bind_group", n.lightingLayout,
		bind.Buffer(0, view.UniformBuffer()),
		bind.Buffer(9, frame.GlobalsBuffer),
		bind.Texture(101, targets.GBuffer),
		bind.Texture(102, targets.LightingID),
	)
	if err != nil {
		return err
	}
	frame.Defer(group)

	return fullscreen(frame, "deferred_lighting_pass", pipeline, group, targets.Main())
}

func (n *node) blit(frame *renderer.FrameContext, view *renderer.ViewContext) error {
	if frame.Target == nil {
		return fmt.Errorf("no surface texture: %w", gpu.ErrMissingResource)
	}
	pipeline, err := frame.Pipeline(n.tonemap)
	if err != nil {
		return err
	}
	targets, err := renderer.GetComponent[ViewTargets](view)
	if err != nil {
		return err
	}

	group, err := bind.NewBindGroup(frame.Device, "tonemap_bind_group", n.tonemapLayout,
		bind.Buffer(0, view.UniformBuffer()),
		bind.Buffer(9, frame.GlobalsBuffer),
		bind.Texture(101, targets.Main()),
	)
	if err != nil {
		return err
	}
	frame.Defer(group)

	return fullscreen(frame, "tonemap_pass", pipeline, group, frame.Target)
}

// fullscreen records one three vertex draw covering target.
func fullscreen(frame *renderer.FrameContext, label string, p gpu.RenderPipeline, group gpu.BindGroup, target gpu.Texture) error {
	pass, err := frame.Encoder.BeginRenderPass(&gpu.RenderPassDescriptor{
		Label:            label,
		ColorAttachments: []gpu.ColorAttachment{bind.ClearColor(target)},
	})
	if err != nil {
		return err
	}
	pass.SetPipeline(p)
	pass.SetBindGroup(0, group)
	pass.Draw(3, 1)
	return pass.End()
}
