// Package post_process composites the minimap overlay, the threat vignette and the large unit
// markers over the lit main color of a view before tonemapping.
package post_process

import (
	_ "embed"
	"fmt"
	"strconv"

	"github.com/Carmen-Shannon/oxy-swarm/engine/deferred"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/bind"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-swarm/engine/units"
)

//go:embed assets/composite.wgsl
var compositeSource string

const CompositePipelineLabel = "post_process_composite_pipeline"

// node is the implementation of the Node interface.
type node struct {
	large            units.LargeGrid
	overlaySize      uint32
	overlayOpacity   float32
	threatSaturation float32
	markerRadius     float32
	validate         bool

	layout    bind.Layout
	composite renderer.PipelineID
}

// Node is the post-process composite. It keeps no state between frames: its output depends only
// on the main color, the minimap chain and the large unit state of the view.
type Node interface {
	// Stage returns the composite stage. It reads the current main color texture and writes the
	// other one, which becomes current.
	//
	// Returns:
	//   - renderer.Stage: the stage, labeled "post_process"
	Stage() renderer.Stage

	// PipelineIDs returns the ids of every pipeline the node queued.
	//
	// Returns:
	//   - []renderer.PipelineID: the queued pipeline ids
	PipelineIDs() []renderer.PipelineID

	// Release releases the bind group layout.
	Release()
}

var _ Node = &node{}

// NewNode creates the composite layout and queues the composite pipeline.
//
// Parameters:
//   - r: the renderer whose device and pipeline cache are used
//   - opts: a variadic list of NodeBuilderOption functions
//
// Returns:
//   - Node: the post-process node
//   - error: a structural error in the shader or layout
func NewNode(r renderer.Renderer, opts ...NodeBuilderOption) (Node, error) {
	n := newDefaultNode()
	for _, opt := range opts {
		opt(n)
	}
	if err := n.large.Validate(); err != nil {
		return nil, err
	}

	var err error
	n.layout, err = bind.NewLayout(r.Device(), "post_process_layout",
		bind.ViewUniform(0),
		bind.GlobalsUniform(9),
		bind.TextureEntry(101, gpu.TextureViewDimension2D, gpu.TextureSampleTypeUnfilterableFloat),
		bind.UintTexture(103, gpu.TextureViewDimension2D),
		bind.UintTexture(104, gpu.TextureViewDimension2D),
		bind.UintTexture(105, gpu.TextureViewDimension2D),
	)
	if err != nil {
		return nil, err
	}

	includes := renderer.CommonIncludes()
	includes["unit_types"] = units.UnitTypesSource
	defines := units.ShaderDefs(n.large)
	defines["OVERLAY_SIZE"] = strconv.FormatUint(uint64(n.overlaySize), 10) + "u"
	defines["OVERLAY_OPACITY"] = floatDef(n.overlayOpacity)
	defines["THREAT_SATURATION"] = floatDef(n.threatSaturation)
	defines["MARKER_RADIUS"] = floatDef(n.markerRadius)

	s, err := shader.NewShader("post_process_composite", compositeSource,
		shader.WithIncludes(includes),
		shader.WithDefines(defines),
		shader.WithValidation(n.validate),
	)
	if err != nil {
		n.layout.Release()
		return nil, err
	}
	p, err := bind.FullscreenTriPipeline(CompositePipelineLabel, s, []bind.Layout{n.layout}, deferred.MainFormat)
	if err != nil {
		n.layout.Release()
		return nil, err
	}
	n.composite = r.Pipelines().Queue(p)
	return n, nil
}

func newDefaultNode() *node {
	return &node{
		large:            units.DefaultLargeGrid(),
		overlaySize:      units.MinimapSize(0),
		overlayOpacity:   0.85,
		threatSaturation: 64,
		markerRadius:     4,
		validate:         true,
	}
}

func floatDef(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', 4, 32)
}

func (n *node) Stage() renderer.Stage {
	return renderer.StageFunc{Name: "post_process", Fn: n.run}
}

func (n *node) PipelineIDs() []renderer.PipelineID {
	return []renderer.PipelineID{n.composite}
}

func (n *node) Release() {
	n.layout.Release()
}

func (n *node) run(frame *renderer.FrameContext, view *renderer.ViewContext) error {
	composite, err := frame.Pipeline(n.composite)
	if err != nil {
		return err
	}
	targets, err := renderer.GetComponent[deferred.ViewTargets](view)
	if err != nil {
		return err
	}
	chain, err := renderer.GetComponent[units.MinimapChain](view)
	if err != nil {
		return err
	}
	textures, err := renderer.GetComponent[units.Textures](view)
	if err != nil {
		return err
	}
	_, _, large := textures.Current(view)

	source, destination := targets.PostProcessWrite()
	group, err := bind.NewBindGroup(frame.Device, "post_process_bind_group", n.layout,
		bind.Buffer(0, view.UniformBuffer()),
		bind.Buffer(9, frame.GlobalsBuffer),
		bind.Texture(101, source),
		bind.Texture(103, chain.Levels[0]),
		bind.Texture(104, chain.Levels[units.MinimapLevels-1]),
		bind.Texture(105, large),
	)
	if err != nil {
		return fmt.Errorf("post process bind group: %w", err)
	}
	frame.Defer(group)

	pass, err := frame.Encoder.BeginRenderPass(&gpu.RenderPassDescriptor{
		Label:            "post_process_pass",
		ColorAttachments: []gpu.ColorAttachment{bind.ClearColor(destination)},
	})
	if err != nil {
		return err
	}
	pass.SetPipeline(composite)
	pass.SetBindGroup(0, group)
	pass.Draw(3, 1)
	return pass.End()
}
