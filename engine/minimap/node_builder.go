package minimap

import "github.com/Carmen-Shannon/oxy-swarm/engine/units"

// NodeBuilderOption configures a minimap node.
type NodeBuilderOption func(*node)

// WithLargeGrid sets the large unit grid the shared unit shader constants are generated for.
func WithLargeGrid(large units.LargeGrid) NodeBuilderOption {
	return func(n *node) {
		n.large = large
	}
}

// WithShaderValidation toggles naga validation of the minimap shaders.
func WithShaderValidation(enabled bool) NodeBuilderOption {
	return func(n *node) {
		n.validate = enabled
	}
}
