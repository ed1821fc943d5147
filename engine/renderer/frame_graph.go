package renderer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/gpu"
)

// Stage is one step of the frame. Stages run in the order they were added to the graph,
// once per view, and may record any number of passes into the frame's encoder.
//
// A stage that cannot run because an input is not ready or absent returns an error wrapping
// gpu.ErrNotReady or gpu.ErrMissingResource before recording anything; the renderer treats
// those as a skip for this frame and keeps going. Any other error aborts the frame.
type Stage interface {
	// Label returns the stage name used in logs and profiling.
	//
	// Returns:
	//   - string: the stage label
	Label() string

	// Run records the stage's work for one view.
	//
	// Parameters:
	//   - frame: the per-frame resources and encoder
	//   - view: the view being rendered
	//
	// Returns:
	//   - error: nil on success, a skippable error, or a fatal error
	Run(frame *FrameContext, view *ViewContext) error
}

// StageFunc adapts a function to the Stage interface.
type StageFunc struct {
	Name string
	Fn   func(frame *FrameContext, view *ViewContext) error
}

func (s StageFunc) Label() string {
	return s.Name
}

func (s StageFunc) Run(frame *FrameContext, view *ViewContext) error {
	return s.Fn(frame, view)
}

// IsSkippable reports whether err means "skip this work for this frame".
func IsSkippable(err error) bool {
	return errors.Is(err, gpu.ErrNotReady) || errors.Is(err, gpu.ErrMissingResource)
}

// FrameGraph is the fixed, ordered list of stages a renderer runs every frame.
type FrameGraph struct {
	stages []Stage
}

// NewFrameGraph creates a graph running stages in the given order.
func NewFrameGraph(stages ...Stage) *FrameGraph {
	g := &FrameGraph{}
	for _, s := range stages {
		g.Add(s)
	}
	return g
}

// Add appends a stage. Labels must be unique.
func (g *FrameGraph) Add(s Stage) {
	for _, existing := range g.stages {
		if existing.Label() == s.Label() {
			panic(fmt.Sprintf("frame graph: duplicate stage %q", s.Label()))
		}
	}
	g.stages = append(g.stages, s)
}

// Stages returns the stages in execution order.
func (g *FrameGraph) Stages() []Stage {
	return g.stages
}

// Labels returns the stage labels in execution order.
func (g *FrameGraph) Labels() []string {
	out := make([]string, len(g.stages))
	for i, s := range g.stages {
		out[i] = s.Label()
	}
	return out
}

// FrameContext is what every stage gets to record one frame: the device, the single command
// encoder of the frame, and the shared caches.
type FrameContext struct {
	Device    gpu.Device
	Encoder   gpu.CommandEncoder
	Textures  *TextureCache
	Pipelines PipelineLookup
	Uniforms  *UniformArena

	Globals       GPUGlobals
	GlobalsBuffer gpu.Buffer

	// Target is the acquired surface texture, nil when rendering headless without a surface.
	Target gpu.Texture

	deferred []gpu.Releaser
}

// Pipeline looks up a compiled pipeline without blocking.
//
// Parameters:
//   - id: the pipeline id returned by PipelineCache.Queue
//
// Returns:
//   - gpu.RenderPipeline: the compiled pipeline
//   - error: a wrapped gpu.ErrNotReady while the pipeline is compiling or failed
func (f *FrameContext) Pipeline(id PipelineID) (gpu.RenderPipeline, error) {
	p, ok := f.Pipelines.Get(id)
	if !ok {
		return nil, fmt.Errorf("pipeline %d: %w", id, gpu.ErrNotReady)
	}
	return p, nil
}

// Defer schedules r to be released after the frame is submitted. Bind groups created
// while recording are released this way.
func (f *FrameContext) Defer(r gpu.Releaser) {
	if r != nil {
		f.deferred = append(f.deferred, r)
	}
}

func (f *FrameContext) release() {
	for i := len(f.deferred) - 1; i >= 0; i-- {
		f.deferred[i].Release()
	}
	f.deferred = f.deferred[:0]
}
