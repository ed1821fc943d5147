package units

import (
	_ "embed"
	"fmt"

	"github.com/Carmen-Shannon/oxy-swarm/engine/deferred"
	"github.com/Carmen-Shannon/oxy-swarm/engine/logger"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/bind"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/shader"
)

var (
	//go:embed assets/unit_types.wgsl
	UnitTypesSource string

	//go:embed assets/unit_evaluate.wgsl
	evaluateSource string

	//go:embed assets/unit_update.wgsl
	updateSource string

	//go:embed assets/large_unit_update.wgsl
	largeUpdateSource string

	//go:embed assets/unit_material.wgsl
	materialSource string

	//go:embed assets/unit_projectile_material.wgsl
	projectileSource string
)

const (
	EvaluatePipelineLabel    = "unit_evaluate_pipeline"
	UpdatePipelineLabel      = "unit_update_pipeline"
	LargeUpdatePipelineLabel = "large_unit_update_pipeline"
	DrawPipelineLabel        = "unit_draw_pipeline"
	ProjectilePipelineLabel  = "unit_projectile_draw_pipeline"
)

// SpriteSource provides the unit sprite sheet: a float 2D array texture with one layer per
// team and pose. It reports gpu.ErrNotReady while the sheet is still loading.
type SpriteSource interface {
	SpriteTexture(device gpu.Device) (gpu.Texture, error)
}

// node is the implementation of the Node interface.
type node struct {
	large    LargeGrid
	mailbox  *Mailbox
	sprites  SpriteSource
	validate bool

	unitLayout  bind.Layout
	largeLayout bind.Layout
	sampler     gpu.Sampler
	placeholder gpu.Texture

	evaluate    renderer.PipelineID
	update      renderer.PipelineID
	largeUpdate renderer.PipelineID
	draw        renderer.PipelineID
	projectiles renderer.PipelineID
}

// Node is the unit simulation: it owns the per-view state textures, advances them once per frame
// with the Evaluate, Update and Large-Unit Update passes and draws units and projectiles into the
// G-buffer.
//
// Every stage checks all of the node's pipelines and its own inputs before recording. When any is not
// ready the stage returns a skippable error having recorded nothing, so a view's state and parity
// stay exactly as they were.
type Node interface {
	// PrepareStage returns the stage that acquires the view's simulation textures and publishes
	// them as a Textures component.
	//
	// Returns:
	//   - renderer.Stage: the prepare stage, labeled "units_prepare"
	PrepareStage() renderer.Stage

	// SimulateStage returns the stage recording Evaluate, Update and Large-Unit Update.
	// It expects the minimap chain of the view to be published.
	//
	// Returns:
	//   - renderer.Stage: the simulate stage, labeled "units_simulate"
	SimulateStage() renderer.Stage

	// DrawStage returns the stage drawing units and projectiles into the G-buffer.
	//
	// Returns:
	//   - renderer.Stage: the draw stage, labeled "units_draw"
	DrawStage() renderer.Stage

	// LargeGrid returns the large unit grid size the node was built for.
	//
	// Returns:
	//   - LargeGrid: the large unit grid
	LargeGrid() LargeGrid

	// PipelineIDs returns the ids of every pipeline the node queued.
	//
	// Returns:
	//   - []renderer.PipelineID: the queued pipeline ids
	PipelineIDs() []renderer.PipelineID

	// Release releases the layouts, sampler and placeholder sprite sheet.
	Release()
}

var _ Node = &node{}

// NewNode creates the unit layouts, validates the shaders and queues every unit pipeline
// on the renderer's cache. Shader and layout mistakes are reported here, not at frame time.
//
// Parameters:
//   - r: the renderer whose device and pipeline cache are used
//   - mailbox: the command mailbox read once per frame
//   - opts: a variadic list of NodeBuilderOption functions
//
// Returns:
//   - Node: the unit node
//   - error: a structural error in the configuration, shaders or layouts
func NewNode(r renderer.Renderer, mailbox *Mailbox, opts ...NodeBuilderOption) (Node, error) {
	n := &node{
		large:    DefaultLargeGrid(),
		mailbox:  mailbox,
		validate: true,
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.mailbox == nil {
		n.mailbox = &Mailbox{}
	}
	if err := n.large.Validate(); err != nil {
		return nil, err
	}

	device := r.Device()
	if err := n.createResources(device); err != nil {
		return nil, err
	}

	pipelines, err := n.describePipelines()
	if err != nil {
		return nil, err
	}
	cache := r.Pipelines()
	n.evaluate = cache.Queue(pipelines[0])
	n.update = cache.Queue(pipelines[1])
	n.largeUpdate = cache.Queue(pipelines[2])
	n.draw = cache.Queue(pipelines[3])
	n.projectiles = cache.Queue(pipelines[4])

	logger.Logger().Debug("unit node created", "large_grid", fmt.Sprintf("%dx%d", n.large.Width, n.large.Height))
	return n, nil
}

func (n *node) createResources(device gpu.Device) error {
	var err error
	n.unitLayout, err = bind.NewLayout(device, "unit_layout",
		bind.ViewUniform(0),
		bind.GlobalsUniform(9),
		bind.UintTexture(101, gpu.TextureViewDimension2D),
		bind.Uniform(102, CommandSize),
		bind.UintTexture(103, gpu.TextureViewDimension2D),
		bind.FloatTextureArray(104),
		bind.FilteringSampler(105),
		bind.UintTexture(106, gpu.TextureViewDimension2D),
	)
	if err != nil {
		return err
	}
	n.largeLayout, err = bind.NewLayout(device, "large_unit_layout",
		bind.ViewUniform(0),
		bind.GlobalsUniform(9),
		bind.UintTexture(101, gpu.TextureViewDimension2D),
		bind.Uniform(102, CommandSize),
		bind.UintTexture(103, gpu.TextureViewDimension2D),
	)
	if err != nil {
		return err
	}
	n.sampler, err = bind.LinearSampler(device)
	if err != nil {
		return err
	}

	// A white four-layer sheet stands in until real sprites are provided.
	n.placeholder, err = device.CreateTexture(&gpu.TextureDescriptor{
		Label:         "unit_sprite_placeholder",
		Format:        gpu.TextureFormatRGBA8Unorm,
		Size:          gpu.Extent{Width: 1, Height: 1, Layers: 4},
		Usage:         gpu.TextureUsageTextureBinding | gpu.TextureUsageCopyDst,
		ViewDimension: gpu.TextureViewDimension2DArray,
	})
	if err != nil {
		return err
	}
	for layer := uint32(0); layer < 4; layer++ {
		if err := device.WriteTexture(n.placeholder, layer, []byte{255, 255, 255, 255}); err != nil {
			return err
		}
	}
	return nil
}

func (n *node) describePipelines() ([]pipeline.Pipeline, error) {
	includes := renderer.CommonIncludes()
	includes["unit_types"] = UnitTypesSource
	includes["gbuffer"] = deferred.GBufferSource
	defines := ShaderDefs(n.large)

	newShader := func(key, source string) (shader.Shader, error) {
		return shader.NewShader(key, source,
			shader.WithIncludes(includes),
			shader.WithDefines(defines),
			shader.WithValidation(n.validate),
		)
	}

	unitLayouts := []bind.Layout{n.unitLayout}
	type spec struct {
		label, key, source string
		build              func(label string, s shader.Shader) (pipeline.Pipeline, error)
	}
	specs := []spec{
		{EvaluatePipelineLabel, "unit_evaluate", evaluateSource, func(label string, s shader.Shader) (pipeline.Pipeline, error) {
			return bind.FullscreenTriPipeline(label, s, unitLayouts, DataFormat, AttackFormat)
		}},
		{UpdatePipelineLabel, "unit_update", updateSource, func(label string, s shader.Shader) (pipeline.Pipeline, error) {
			return bind.FullscreenTriPipeline(label, s, unitLayouts, DataFormat)
		}},
		{LargeUpdatePipelineLabel, "large_unit_update", largeUpdateSource, func(label string, s shader.Shader) (pipeline.Pipeline, error) {
			return bind.FullscreenTriPipeline(label, s, []bind.Layout{n.largeLayout}, DataFormat)
		}},
		{DrawPipelineLabel, "unit_material", materialSource, func(label string, s shader.Shader) (pipeline.Pipeline, error) {
			return bind.OpaquePipeline(label, s, unitLayouts, deferred.GBufferFormat, deferred.LightingIDFormat)
		}},
		{ProjectilePipelineLabel, "unit_projectile_material", projectileSource, func(label string, s shader.Shader) (pipeline.Pipeline, error) {
			return bind.OpaquePipeline(label, s, unitLayouts, deferred.GBufferFormat, deferred.LightingIDFormat)
		}},
	}

	out := make([]pipeline.Pipeline, 0, len(specs))
	for _, sp := range specs {
		s, err := newShader(sp.key, sp.source)
		if err != nil {
			return nil, err
		}
		p, err := sp.build(sp.label, s)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (n *node) PrepareStage() renderer.Stage {
	return renderer.StageFunc{Name: "units_prepare", Fn: n.prepare}
}

func (n *node) SimulateStage() renderer.Stage {
	return renderer.StageFunc{Name: "units_simulate", Fn: n.simulate}
}

func (n *node) DrawStage() renderer.Stage {
	return renderer.StageFunc{Name: "units_draw", Fn: n.drawUnits}
}

func (n *node) LargeGrid() LargeGrid {
	return n.large
}

func (n *node) PipelineIDs() []renderer.PipelineID {
	return []renderer.PipelineID{n.evaluate, n.update, n.largeUpdate, n.draw, n.projectiles}
}

func (n *node) Release() {
	n.unitLayout.Release()
	n.largeLayout.Release()
	if n.sampler != nil {
		n.sampler.Release()
	}
	if n.placeholder != nil {
		n.placeholder.Release()
	}
}

func (n *node) spriteTexture(device gpu.Device) (gpu.Texture, error) {
	if n.sprites == nil {
		return n.placeholder, nil
	}
	return n.sprites.SpriteTexture(device)
}

func (n *node) prepare(frame *renderer.FrameContext, view *renderer.ViewContext) error {
	renderer.RemoveComponent[Textures](view)
	textures, err := AcquireTextures(frame.Textures, view, n.large)
	if err != nil {
		return err
	}
	renderer.SetComponent(view, textures)
	return nil
}
