package shader

// ShaderBuilderOption is a functional option used to configure a Shader during construction.
type ShaderBuilderOption func(*shader)

// WithInclude registers WGSL source that `@oxy:include <name>` expands to.
//
// Parameters:
//   - name: the include name referenced by the directive
//   - source: the WGSL source to inject
//
// Returns:
//   - ShaderBuilderOption: a function that registers the include
func WithInclude(name, source string) ShaderBuilderOption {
	return func(s *shader) {
		s.includes[name] = source
	}
}

// WithIncludes registers every entry of the map as an include.
//
// Parameters:
//   - includes: include name to WGSL source
//
// Returns:
//   - ShaderBuilderOption: a function that registers the includes
func WithIncludes(includes map[string]string) ShaderBuilderOption {
	return func(s *shader) {
		for k, v := range includes {
			s.includes[k] = v
		}
	}
}

// WithDefines registers define values substituted for `#{NAME}` tokens.
//
// Parameters:
//   - defines: define name to replacement text
//
// Returns:
//   - ShaderBuilderOption: a function that registers the defines
func WithDefines(defines map[string]string) ShaderBuilderOption {
	return func(s *shader) {
		for k, v := range defines {
			s.defines[k] = v
		}
	}
}

// WithValidation toggles WGSL validation. Validation is on by default; turning it off falls back
// to pattern based entry point discovery and is only meant for trusted, pre-validated sources.
//
// Parameters:
//   - enabled: whether the WGSL front end should validate the source
//
// Returns:
//   - ShaderBuilderOption: a function that sets the validation flag
func WithValidation(enabled bool) ShaderBuilderOption {
	return func(s *shader) {
		s.validate = enabled
	}
}
