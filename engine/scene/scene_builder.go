package scene

import (
	"github.com/Carmen-Shannon/oxy-swarm/engine/camera"
	"github.com/Carmen-Shannon/oxy-swarm/engine/command"
	"github.com/Carmen-Shannon/oxy-swarm/engine/deferred"
	"github.com/Carmen-Shannon/oxy-swarm/engine/post_process"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer"
	"github.com/Carmen-Shannon/oxy-swarm/engine/units"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithName sets the scene's identifier used in logs.
func WithName(name string) SceneBuilderOption {
	return func(s *scene) {
		s.name = name
	}
}

// WithActive sets whether the scene is active for rendering.
//
// Parameters:
//   - active: whether the scene is active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithViewSize sets the initial view size in pixels. Defaults to 1280x720.
//
// Parameters:
//   - width: the view width
//   - height: the view height
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithViewSize(width, height uint32) SceneBuilderOption {
	return func(s *scene) {
		s.width = width
		s.height = height
	}
}

// WithViewID sets the stable id of the scene's view. Texture labels are derived from it.
func WithViewID(id renderer.ViewID) SceneBuilderOption {
	return func(s *scene) {
		s.viewID = id
	}
}

// WithCamera replaces the default orthographic camera. Its viewport is set to the view size.
//
// Parameters:
//   - cam: the camera, with a controller attached
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCamera(cam camera.Camera) SceneBuilderOption {
	return func(s *scene) {
		s.camera = cam
	}
}

// WithMailbox shares an existing command mailbox with the simulation.
func WithMailbox(m *units.Mailbox) SceneBuilderOption {
	return func(s *scene) {
		s.mailbox = m
	}
}

// WithIngestor sets the command ingestor, for example one carrying a scripted scenario.
//
// Parameters:
//   - in: the ingestor
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithIngestor(in *command.Ingestor) SceneBuilderOption {
	return func(s *scene) {
		s.ingestor = in
	}
}

// WithLargeGrid sets the large unit grid every node is built for.
//
// Parameters:
//   - large: the large unit grid size
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLargeGrid(large units.LargeGrid) SceneBuilderOption {
	return func(s *scene) {
		s.large = large
	}
}

// WithSprites sets the unit sprite sheet.
func WithSprites(src units.SpriteSource) SceneBuilderOption {
	return func(s *scene) {
		s.sprites = src
	}
}

// WithShaderValidation toggles WGSL validation for every node. Defaults to true.
func WithShaderValidation(enabled bool) SceneBuilderOption {
	return func(s *scene) {
		s.validate = enabled
	}
}

// WithDeferredOptions forwards options to the deferred node.
func WithDeferredOptions(opts ...deferred.NodeBuilderOption) SceneBuilderOption {
	return func(s *scene) {
		s.deferredOpts = append(s.deferredOpts, opts...)
	}
}

// WithPostProcessOptions forwards options to the post-process node.
func WithPostProcessOptions(opts ...post_process.NodeBuilderOption) SceneBuilderOption {
	return func(s *scene) {
		s.postOpts = append(s.postOpts, opts...)
	}
}
