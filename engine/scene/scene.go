// Package scene assembles the unit simulation into a renderer's frame graph and drives one view
// of it frame by frame.
package scene

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-swarm/engine/camera"
	"github.com/Carmen-Shannon/oxy-swarm/engine/command"
	"github.com/Carmen-Shannon/oxy-swarm/engine/deferred"
	"github.com/Carmen-Shannon/oxy-swarm/engine/input"
	"github.com/Carmen-Shannon/oxy-swarm/engine/logger"
	"github.com/Carmen-Shannon/oxy-swarm/engine/minimap"
	"github.com/Carmen-Shannon/oxy-swarm/engine/post_process"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer"
	"github.com/Carmen-Shannon/oxy-swarm/engine/units"
)

// Scene owns the simulation nodes of one renderer, the camera and view they render, and the
// command mailbox the input side writes into. Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Active returns whether this scene is currently active for rendering.
	Active() bool

	// SetActive sets whether this scene is active for rendering.
	SetActive(active bool)

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// Renderer returns the scene's renderer.
	Renderer() renderer.Renderer

	// View returns the view context the scene renders.
	View() *renderer.ViewContext

	// Mailbox returns the command mailbox read by the simulation each frame.
	Mailbox() *units.Mailbox

	// Ingestor returns the command ingestor that turns input into commands.
	Ingestor() *command.Ingestor

	// PipelineIDs returns every pipeline the scene's nodes queued.
	//
	// Returns:
	//   - []renderer.PipelineID: the queued pipeline ids
	PipelineIDs() []renderer.PipelineID

	// Resize updates the view, camera viewport and surface for a new framebuffer size.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	Resize(width, height int)

	// Frame runs one frame: the mailbox is cleared, the frame's input is ingested into it,
	// the camera advances, and the renderer records and submits every stage for the view.
	//
	// Parameters:
	//   - dt: the frame time in seconds
	//   - snap: the frame's input snapshot
	//
	// Returns:
	//   - error: a fatal render error; skipped stages are not errors
	Frame(dt float32, snap input.Snapshot) error

	// Release releases every node. The renderer is owned by the caller.
	Release()
}

// scene is the implementation of the Scene interface.
type scene struct {
	mu sync.Mutex

	name   string
	active bool

	renderer renderer.Renderer
	camera   camera.Camera
	view     *renderer.ViewContext
	mailbox  *units.Mailbox
	ingestor *command.Ingestor

	viewID        renderer.ViewID
	width, height uint32
	large         units.LargeGrid
	sprites       units.SpriteSource
	validate      bool
	deferredOpts  []deferred.NodeBuilderOption
	postOpts      []post_process.NodeBuilderOption

	deferredNode deferred.Node
	unitsNode    units.Node
	minimapNode  minimap.Node
	postNode     post_process.Node

	elapsed float32
}

var _ Scene = &scene{}

// NewScene builds the deferred, unit, minimap and post-process nodes on r and appends their
// stages to r's frame graph in execution order.
//
// Parameters:
//   - r: the renderer the scene records into
//   - options: variadic list of SceneBuilderOption functions to configure the Scene
//
// Returns:
//   - Scene: the scene, active by default
//   - error: a structural error from one of the nodes
func NewScene(r renderer.Renderer, options ...SceneBuilderOption) (Scene, error) {
	s := &scene{
		name:     "swarm",
		active:   true,
		renderer: r,
		width:    1280,
		height:   720,
		large:    units.DefaultLargeGrid(),
		validate: true,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.mailbox == nil {
		s.mailbox = &units.Mailbox{}
	}
	if s.ingestor == nil {
		s.ingestor = command.NewIngestor()
	}
	if s.camera == nil {
		s.camera = camera.NewCamera(
			camera.WithViewport(float32(s.width), float32(s.height)),
			camera.WithController(camera.NewCameraController()),
		)
	} else {
		s.camera.SetViewport(float32(s.width), float32(s.height))
	}
	s.view = renderer.NewViewContext(s.viewID, s.width, s.height)

	if err := s.buildNodes(); err != nil {
		s.Release()
		return nil, err
	}

	g := r.Graph()
	g.Add(s.deferredNode.PrepareStage())
	g.Add(s.unitsNode.PrepareStage())
	g.Add(s.minimapNode.PrepareStage())
	g.Add(s.unitsNode.SimulateStage())
	g.Add(s.minimapNode.GenerateStage())
	g.Add(s.unitsNode.DrawStage())
	g.Add(s.deferredNode.LightingStage())
	g.Add(s.postNode.Stage())
	g.Add(s.deferredNode.TonemapStage())

	logger.Logger().Info("scene ready", "scene", s.name, "large_grid", fmt.Sprintf("%dx%d", s.large.Width, s.large.Height), "pipelines", len(s.PipelineIDs()))
	return s, nil
}

func (s *scene) buildNodes() error {
	var err error
	s.deferredNode, err = deferred.NewNode(s.renderer, append([]deferred.NodeBuilderOption{deferred.WithShaderValidation(s.validate)}, s.deferredOpts...)...)
	if err != nil {
		return fmt.Errorf("deferred node: %w", err)
	}

	unitOpts := []units.NodeBuilderOption{
		units.WithLargeGrid(s.large.Width, s.large.Height),
		units.WithShaderValidation(s.validate),
	}
	if s.sprites != nil {
		unitOpts = append(unitOpts, units.WithSprites(s.sprites))
	}
	s.unitsNode, err = units.NewNode(s.renderer, s.mailbox, unitOpts...)
	if err != nil {
		return fmt.Errorf("units node: %w", err)
	}

	s.minimapNode, err = minimap.NewNode(s.renderer, minimap.WithLargeGrid(s.large), minimap.WithShaderValidation(s.validate))
	if err != nil {
		return fmt.Errorf("minimap node: %w", err)
	}

	postOpts := append([]post_process.NodeBuilderOption{
		post_process.WithLargeGrid(s.large),
		post_process.WithShaderValidation(s.validate),
	}, s.postOpts...)
	s.postNode, err = post_process.NewNode(s.renderer, postOpts...)
	if err != nil {
		return fmt.Errorf("post process node: %w", err)
	}
	return nil
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Camera() camera.Camera {
	return s.camera
}

func (s *scene) Renderer() renderer.Renderer {
	return s.renderer
}

func (s *scene) View() *renderer.ViewContext {
	return s.view
}

func (s *scene) Mailbox() *units.Mailbox {
	return s.mailbox
}

func (s *scene) Ingestor() *command.Ingestor {
	return s.ingestor
}

func (s *scene) PipelineIDs() []renderer.PipelineID {
	var ids []renderer.PipelineID
	ids = append(ids, s.deferredNode.PipelineIDs()...)
	ids = append(ids, s.unitsNode.PipelineIDs()...)
	ids = append(ids, s.minimapNode.PipelineIDs()...)
	ids = append(ids, s.postNode.PipelineIDs()...)
	return ids
}

func (s *scene) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, h := uint32(max(width, 0)), uint32(max(height, 0))
	s.view.Resize(w, h)
	s.camera.SetViewport(float32(w), float32(h))
	s.renderer.Resize(width, height)
}

func (s *scene) Frame(dt float32, snap input.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mailbox.Reset()
	s.mailbox.Update(func(c *units.Command) {
		if s.ingestor.Ingest(snap, s.camera, c) {
			logger.Logger().Debug("command", "scene", s.name, "command", c.Command, "dest", c.Dest, "group", c.UnitGroup)
		}
	})

	if ctrl := s.camera.Controller(); ctrl != nil {
		ctrl.Update(dt, snap)
	}
	s.camera.Update()
	s.view.SetUniform(s.camera.Uniform())

	s.elapsed += dt
	return s.renderer.RenderFrame(renderer.GPUGlobals{Time: s.elapsed, DeltaTime: dt}, s.view)
}

func (s *scene) Release() {
	if s.postNode != nil {
		s.postNode.Release()
	}
	if s.minimapNode != nil {
		s.minimapNode.Release()
	}
	if s.unitsNode != nil {
		s.unitsNode.Release()
	}
	if s.deferredNode != nil {
		s.deferredNode.Release()
	}
}
