package renderer

import (
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-swarm/engine/logger"
	"github.com/Carmen-Shannon/oxy-swarm/engine/profiler"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/gpu"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backend RendererBackend

	textures  *TextureCache
	pipelines *PipelineCache
	uniforms  *UniformArena
	lookup    PipelineLookup
	graph     *FrameGraph
	profiler  *profiler.Profiler

	pipelineWorkers int
	frameCount      uint64
}

// Renderer defines the interface for the rendering system.
//
// The Renderer owns the resource caches shared by every stage (textures, pipelines, uniforms)
// and runs its frame graph once per frame: every stage, in order, for every view, recorded into
// one command encoder that is submitted and presented at the end of the frame.
type Renderer interface {
	// Device returns the device of the backend.
	//
	// Returns:
	//   - gpu.Device: the device
	Device() gpu.Device

	// Surface returns the presentation surface, or nil when rendering headless.
	//
	// Returns:
	//   - gpu.Surface: the surface or nil
	Surface() gpu.Surface

	// Textures returns the texture cache.
	//
	// Returns:
	//   - *TextureCache: the texture cache shared by every stage
	Textures() *TextureCache

	// Pipelines returns the pipeline cache stages queue their pipelines on.
	//
	// Returns:
	//   - *PipelineCache: the pipeline cache
	Pipelines() *PipelineCache

	// Uniforms returns the per frame uniform arena.
	//
	// Returns:
	//   - *UniformArena: the uniform arena
	Uniforms() *UniformArena

	// Graph returns the frame graph.
	//
	// Returns:
	//   - *FrameGraph: the ordered stages run each frame
	Graph() *FrameGraph

	// Resize reconfigures the surface for a new size. It is a no-op without a surface.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// RenderFrame records and submits one frame for the given views.
	//
	// Stages that report a skippable error are logged at debug level and the frame continues.
	// After submission each view's step counter advances if its simulation ran, and the caches
	// retire resources that went unused.
	//
	// Parameters:
	//   - globals: the time and frame globals uploaded for every pass
	//   - views: the views to render
	//
	// Returns:
	//   - error: the first fatal stage error, or a device error
	RenderFrame(globals GPUGlobals, views ...*ViewContext) error

	// FrameCount returns the number of frames rendered so far.
	FrameCount() uint64

	// Release frees every cached resource and the backend.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer on top of an already created backend.
//
// Parameters:
//   - backend: the backend providing the device and optional surface
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
func NewRenderer(backend RendererBackend, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:              &sync.Mutex{},
		backend:         backend,
		graph:           NewFrameGraph(),
		pipelineWorkers: 2,
	}
	for _, opt := range options {
		opt(r)
	}

	device := backend.Device()
	r.textures = NewTextureCache(device)
	r.pipelines = NewPipelineCache(device, r.pipelineWorkers)
	r.uniforms = NewUniformArena(device)
	if r.lookup == nil {
		r.lookup = r.pipelines
	}
	if r.profiler == nil {
		r.profiler = profiler.NewProfiler()
	}
	return r
}

func (r *renderer) Device() gpu.Device {
	return r.backend.Device()
}

func (r *renderer) Surface() gpu.Surface {
	return r.backend.Surface()
}

func (r *renderer) Textures() *TextureCache {
	return r.textures
}

func (r *renderer) Pipelines() *PipelineCache {
	return r.pipelines
}

func (r *renderer) Uniforms() *UniformArena {
	return r.uniforms
}

func (r *renderer) Graph() *FrameGraph {
	return r.graph
}

func (r *renderer) FrameCount() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frameCount
}

func (r *renderer) Resize(width, height int) {
	if s := r.backend.Surface(); s != nil {
		s.Configure(width, height)
	}
}

func (r *renderer) RenderFrame(globals GPUGlobals, views ...*ViewContext) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	device := r.backend.Device()
	surface := r.backend.Surface()

	var target gpu.Texture
	if surface != nil {
		tex, err := surface.Acquire()
		if err != nil {
			if IsSkippable(err) {
				logger.Logger().Debug("surface not ready, skipping frame", "error", err)
				return nil
			}
			return fmt.Errorf("acquire surface: %w", err)
		}
		target = tex
	}

	encoder, err := device.CreateCommandEncoder("frame")
	if err != nil {
		return fmt.Errorf("create encoder: %w", err)
	}
	defer encoder.Release()

	globals.FrameCount = uint32(r.frameCount)
	globalsBuffer, err := r.uniforms.Upload("globals", globals)
	if err != nil {
		return err
	}

	frame := &FrameContext{
		Device:        device,
		Encoder:       encoder,
		Textures:      r.textures,
		Pipelines:     r.lookup,
		Uniforms:      r.uniforms,
		Globals:       globals,
		GlobalsBuffer: globalsBuffer,
		Target:        target,
	}
	defer func() {
		frame.release()
		r.textures.Update()
		r.uniforms.Trim()
	}()

	for _, view := range views {
		viewBuffer, err := r.uniforms.Upload(view.Label("view_uniform"), view.Uniform())
		if err != nil {
			return err
		}
		view.beginFrame(viewBuffer)

		for _, stage := range r.graph.Stages() {
			start := time.Now()
			err := stage.Run(frame, view)
			r.profiler.RecordStage(stage.Label(), time.Since(start))
			if err == nil {
				continue
			}
			if IsSkippable(err) {
				r.profiler.RecordSkip()
				logger.Logger().Debug("stage skipped", "stage", stage.Label(), "view", view.ID(), "reason", err)
				continue
			}
			return fmt.Errorf("view %d stage %q: %w", view.ID(), stage.Label(), err)
		}
	}

	cmd, err := encoder.Finish()
	if err != nil {
		return fmt.Errorf("finish encoder: %w", err)
	}
	device.Submit(cmd)
	cmd.Release()
	if surface != nil {
		surface.Present()
	}

	for _, view := range views {
		view.EndFrame()
	}
	r.frameCount++
	return nil
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pipelines.Release()
	r.textures.Release()
	r.uniforms.Release()
	r.backend.Release()
}
