package post_process

import "github.com/Carmen-Shannon/oxy-swarm/engine/units"

// NodeBuilderOption configures a post-process node.
type NodeBuilderOption func(*node)

// WithLargeGrid sets the size of the large unit grid scanned for markers.
func WithLargeGrid(large units.LargeGrid) NodeBuilderOption {
	return func(n *node) {
		n.large = large
	}
}

// WithOverlaySize sets the largest edge of the minimap overlay in pixels. The overlay never
// covers more than half of the shorter screen edge.
func WithOverlaySize(pixels uint32) NodeBuilderOption {
	return func(n *node) {
		n.overlaySize = pixels
	}
}

// WithOverlayOpacity sets how strongly the minimap overlay covers the scene, from 0 to 1.
func WithOverlayOpacity(opacity float32) NodeBuilderOption {
	return func(n *node) {
		n.overlayOpacity = max(0, min(1, opacity))
	}
}

// WithMarkerRadius sets the radius of large unit markers in pixels.
func WithMarkerRadius(pixels float32) NodeBuilderOption {
	return func(n *node) {
		n.markerRadius = pixels
	}
}

func WithShaderValidation(enabled bool) NodeBuilderOption {
	return func(n *node) {
		n.validate = enabled
	}
}
