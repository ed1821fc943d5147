package deferred

import "github.com/Carmen-Shannon/oxy-swarm/engine/light"

// NodeBuilderOption is a functional option used to configure the deferred Node during construction.
type NodeBuilderOption func(*node)

// WithLight sets the sun the lighting resolve shades with. Defaults to light.NewLight().
//
// Parameters:
//   - l: the directional light, baked into the lighting shader
//
// Returns:
//   - NodeBuilderOption: a function that sets the light
func WithLight(l light.Light) NodeBuilderOption {
	return func(n *node) {
		if l != nil {
			n.sun = l
		}
	}
}

// WithBackground sets the color of texels no geometry covered.
//
// Parameters:
//   - r, g, b: the linear background color
//
// Returns:
//   - NodeBuilderOption: a function that sets the background color
func WithBackground(r, g, b float32) NodeBuilderOption {
	return func(n *node) {
		n.background = [3]float32{r, g, b}
	}
}

// WithShaderValidation toggles WGSL validation of the node's shaders. Defaults to true.
func WithShaderValidation(enabled bool) NodeBuilderOption {
	return func(n *node) {
		n.validate = enabled
	}
}
