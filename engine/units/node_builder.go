package units

// NodeBuilderOption is a functional option used to configure the unit Node during construction.
type NodeBuilderOption func(*node)

// WithLargeGrid sets the size of the large unit texture. Defaults to 67x2.
//
// Parameters:
//   - width: the grid width in texels
//   - height: the grid height in texels
//
// Returns:
//   - NodeBuilderOption: a function that sets the large unit grid
func WithLargeGrid(width, height uint32) NodeBuilderOption {
	return func(n *node) {
		n.large = LargeGrid{Width: width, Height: height}
	}
}

// WithSprites sets the source of the unit sprite sheet. Without one, units are drawn with a
// plain white sheet tinted by team.
//
// Parameters:
//   - src: the sprite source
//
// Returns:
//   - NodeBuilderOption: a function that sets the sprite source
func WithSprites(src SpriteSource) NodeBuilderOption {
	return func(n *node) {
		n.sprites = src
	}
}

// WithShaderValidation toggles WGSL validation of the node's shaders. Defaults to true.
func WithShaderValidation(enabled bool) NodeBuilderOption {
	return func(n *node) {
		n.validate = enabled
	}
}
