// Package minimap builds the coarse occupancy pyramid of the unit grid.
//
// Level 0 counts the units of each team and the attacking units in every MinimapScale square of
// slots. Each further level sums MinimapScale squares of the previous one, saturating at 255.
// The simulation reads level 1 of the previous frame to rally idle units and the post process
// overlays level 0 in the corner of the screen.
package minimap

import (
	_ "embed"
	"fmt"

	"github.com/Carmen-Shannon/oxy-swarm/engine/logger"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/bind"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-swarm/engine/units"
)

var (
	//go:embed assets/minimap_encode.wgsl
	encodeSource string

	//go:embed assets/minimap_downsample.wgsl
	downsampleSource string
)

const (
	EncodePipelineLabel     = "minimap_encode_pipeline"
	DownsamplePipelineLabel = "minimap_downsample_pipeline"
)

// node is the implementation of the Node interface.
type node struct {
	large    units.LargeGrid
	validate bool

	layout     bind.Layout
	encode     renderer.PipelineID
	downsample renderer.PipelineID
}

// Node owns the minimap pyramid of every view.
type Node interface {
	// PrepareStage returns the stage that acquires the pyramid levels and publishes them as a
	// units.MinimapChain component. The levels keep last frame's content until regenerated.
	//
	// Returns:
	//   - renderer.Stage: the prepare stage, labeled "minimap_prepare"
	PrepareStage() renderer.Stage

	// GenerateStage returns the stage encoding the newest unit state into level 0 and reducing
	// it into the remaining levels.
	//
	// Returns:
	//   - renderer.Stage: the generate stage, labeled "minimap"
	GenerateStage() renderer.Stage

	// PipelineIDs returns the ids of every pipeline the node queued.
	//
	// Returns:
	//   - []renderer.PipelineID: the queued pipeline ids
	PipelineIDs() []renderer.PipelineID

	// Release releases the bind group layout.
	Release()
}

var _ Node = &node{}

// NewNode creates the minimap layout and queues the encode and downsample pipelines.
//
// Parameters:
//   - r: the renderer whose device and pipeline cache are used
//   - opts: a variadic list of NodeBuilderOption functions
//
// Returns:
//   - Node: the minimap node
//   - error: a structural error in the shaders or layout
func NewNode(r renderer.Renderer, opts ...NodeBuilderOption) (Node, error) {
	n := &node{large: units.DefaultLargeGrid(), validate: true}
	for _, opt := range opts {
		opt(n)
	}

	var err error
	n.layout, err = bind.NewLayout(r.Device(), "minimap_layout",
		bind.ViewUniform(0),
		bind.GlobalsUniform(9),
		bind.UintTexture(101, gpu.TextureViewDimension2D),
		bind.UintTexture(103, gpu.TextureViewDimension2D),
	)
	if err != nil {
		return nil, err
	}

	includes := renderer.CommonIncludes()
	includes["unit_types"] = units.UnitTypesSource
	defines := units.ShaderDefs(n.large)

	layouts := []bind.Layout{n.layout}
	for _, sp := range []struct {
		label, key, source string
		id                 *renderer.PipelineID
	}{
		{EncodePipelineLabel, "minimap_encode", encodeSource, &n.encode},
		{DownsamplePipelineLabel, "minimap_downsample", downsampleSource, &n.downsample},
	} {
		s, err := shader.NewShader(sp.key, sp.source,
			shader.WithIncludes(includes),
			shader.WithDefines(defines),
			shader.WithValidation(n.validate),
		)
		if err != nil {
			n.layout.Release()
			return nil, err
		}
		p, err := bind.FullscreenTriPipeline(sp.label, s, layouts, units.MinimapFormat)
		if err != nil {
			n.layout.Release()
			return nil, err
		}
		*sp.id = r.Pipelines().Queue(p)
	}

	logger.Logger().Debug("minimap node created", "levels", units.MinimapLevels)
	return n, nil
}

func (n *node) PrepareStage() renderer.Stage {
	return renderer.StageFunc{Name: "minimap_prepare", Fn: n.prepare}
}

func (n *node) GenerateStage() renderer.Stage {
	return renderer.StageFunc{Name: "minimap", Fn: n.generate}
}

func (n *node) PipelineIDs() []renderer.PipelineID {
	return []renderer.PipelineID{n.encode, n.downsample}
}

func (n *node) Release() {
	n.layout.Release()
}

// AcquireChain takes the pyramid levels of a view from the cache.
//
// Parameters:
//   - cache: the renderer's texture cache
//   - view: the view the pyramid belongs to
//
// Returns:
//   - *units.MinimapChain: the levels, largest first
//   - error: a wrapped gpu.ErrMissingResource when an allocation failed
func AcquireChain(cache *renderer.TextureCache, view *renderer.ViewContext) (*units.MinimapChain, error) {
	var chain units.MinimapChain
	for i := range chain.Levels {
		size := units.MinimapSize(i)
		tex, err := cache.Get(gpu.TextureDescriptor{
			Label:  view.Label(fmt.Sprintf("minimap_%d", i)),
			Format: units.MinimapFormat,
			Size:   gpu.Extent{Width: size, Height: size, Layers: 1},
			Usage:  gpu.TextureUsageRenderAttachment | gpu.TextureUsageTextureBinding,
		})
		if err != nil {
			return nil, fmt.Errorf("minimap level %d: %v: %w", i, err, gpu.ErrMissingResource)
		}
		chain.Levels[i] = tex
	}
	return &chain, nil
}

func (n *node) prepare(frame *renderer.FrameContext, view *renderer.ViewContext) error {
	renderer.RemoveComponent[units.MinimapChain](view)
	chain, err := AcquireChain(frame.Textures, view)
	if err != nil {
		return err
	}
	renderer.SetComponent(view, chain)
	return nil
}

// generate records the encode pass and one downsample pass per further level.
func (n *node) generate(frame *renderer.FrameContext, view *renderer.ViewContext) error {
	encode, err := frame.Pipeline(n.encode)
	if err != nil {
		return err
	}
	downsample, err := frame.Pipeline(n.downsample)
	if err != nil {
		return err
	}
	textures, err := renderer.GetComponent[units.Textures](view)
	if err != nil {
		return err
	}
	chain, err := renderer.GetComponent[units.MinimapChain](view)
	if err != nil {
		return err
	}
	data, attack, _ := textures.Current(view)

	groups := make([]gpu.BindGroup, units.MinimapLevels)
	for i := range groups {
		source := data
		label := "minimap_encode_bind_group"
		if i > 0 {
			source = chain.Levels[i-1]
			label = fmt.Sprintf("minimap_downsample_%d_bind_group", i)
		}
		groups[i], err = bind.NewBindGroup(frame.Device, label, n.layout,
			bind.Buffer(0, view.UniformBuffer()),
			bind.Buffer(9, frame.GlobalsBuffer),
			bind.Texture(101, source),
			bind.Texture(103, attack),
		)
		if err != nil {
			return err
		}
		frame.Defer(groups[i])
	}

	for i, group := range groups {
		p, label := downsample, fmt.Sprintf("minimap_downsample_%d_pass", i)
		if i == 0 {
			p, label = encode, "minimap_encode_pass"
		}
		pass, err := frame.Encoder.BeginRenderPass(&gpu.RenderPassDescriptor{
			Label:            label,
			ColorAttachments: []gpu.ColorAttachment{bind.ClearColor(chain.Levels[i])},
		})
		if err != nil {
			return err
		}
		pass.SetPipeline(p)
		pass.SetBindGroup(0, group)
		pass.Draw(3, 1)
		if err := pass.End(); err != nil {
			return err
		}
	}
	return nil
}
