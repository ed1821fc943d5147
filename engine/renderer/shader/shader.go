package shader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/gpu"
)

// Stage identifies a programmable render pipeline stage.
type Stage int

const (
	// StageVertex is the vertex stage of a render pipeline.
	StageVertex Stage = iota

	// StageFragment is the fragment stage of a render pipeline.
	StageFragment
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// shader is the implementation of the Shader interface.
type shader struct {
	key         string
	source      string
	entryPoints map[Stage]string
	bindings    []Binding

	includes map[string]string
	defines  map[string]string
	validate bool

	pp PreProcessor
}

// Shader is a pre-processed, validated WGSL module holding one or both render stages.
// It exposes the expanded source, the entry points found in it, and the resource bindings it declares
// so the host can check its layouts against the shader before any pipeline is compiled.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for labels and error messages.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the expanded WGSL source code.
	//
	// Returns:
	//   - string: the WGSL source code of the shader with includes and defines resolved
	Source() string

	// EntryPoint returns the entry point name for the given stage.
	//
	// Parameters:
	//   - stage: the pipeline stage to look up
	//
	// Returns:
	//   - string: the entry point name
	//   - bool: false if the shader has no entry point for the stage
	EntryPoint(stage Stage) (string, bool)

	// Bindings returns every @group/@binding declaration in the shader, sorted by group then binding.
	//
	// Returns:
	//   - []Binding: the parsed declarations
	Bindings() []Binding

	// CheckLayout verifies that every binding the shader declares in the given group has a
	// compatible entry in the layout. A texture bound where the shader expects a uniform, a
	// uint texture where it expects float, or a missing binding are all reported.
	//
	// Parameters:
	//   - group: the bind group index the layout will be set at
	//   - layout: the host-side layout descriptor
	//
	// Returns:
	//   - error: nil if the layout satisfies the shader
	CheckLayout(group uint32, layout gpu.BindGroupLayoutDescriptor) error
}

var _ Shader = &shader{}

// NewShader pre-processes and validates WGSL source.
// Validation runs the naga front end over the expanded source and is on unless disabled with WithValidation(false).
//
// Parameters:
//   - key: a unique identifier for the shader, used for labels and error messages
//   - source: the raw WGSL source, usually embedded from an assets directory
//   - opts: a variadic list of ShaderBuilderOption functions to configure includes, defines and validation
//
// Returns:
//   - Shader: the processed shader
//   - error: an error if pre-processing or validation fails, or the source has no entry points
func NewShader(key, source string, opts ...ShaderBuilderOption) (Shader, error) {
	s := &shader{
		key:      key,
		includes: make(map[string]string),
		defines:  make(map[string]string),
		validate: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.pp = NewPreProcessor(s.includes, s.defines)

	expanded, err := s.pp.Process(source)
	if err != nil {
		return nil, fmt.Errorf("shader %q: pre-process: %w", key, err)
	}
	s.source = expanded

	if s.validate {
		s.entryPoints, err = validateSource(key, s.source)
		if err != nil {
			return nil, err
		}
	} else {
		s.entryPoints = parseEntryPoints(s.source)
	}
	if len(s.entryPoints) == 0 {
		return nil, fmt.Errorf("shader %q: no vertex or fragment entry point", key)
	}
	s.bindings = parseBindings(s.source)

	return s, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) EntryPoint(stage Stage) (string, bool) {
	name, ok := s.entryPoints[stage]
	return name, ok
}

func (s *shader) Bindings() []Binding {
	return s.bindings
}

func (s *shader) CheckLayout(group uint32, layout gpu.BindGroupLayoutDescriptor) error {
	entries := make(map[uint32]gpu.BindGroupLayoutEntry, len(layout.Entries))
	for _, e := range layout.Entries {
		entries[e.Binding] = e
	}

	for _, b := range s.bindings {
		if b.Group != group {
			continue
		}
		want := b.Entry
		got, ok := entries[want.Binding]
		if !ok {
			return fmt.Errorf("shader %q: binding %d (%s) missing from layout %q", s.key, want.Binding, b.Name, layout.Label)
		}
		switch {
		case want.Buffer != nil:
			if got.Buffer == nil {
				return fmt.Errorf("shader %q: binding %d (%s) is a buffer, layout %q disagrees", s.key, want.Binding, b.Name, layout.Label)
			}
		case want.Sampler != nil:
			if got.Sampler == nil {
				return fmt.Errorf("shader %q: binding %d (%s) is a sampler, layout %q disagrees", s.key, want.Binding, b.Name, layout.Label)
			}
		case want.Texture != nil:
			if got.Texture == nil {
				return fmt.Errorf("shader %q: binding %d (%s) is a texture, layout %q disagrees", s.key, want.Binding, b.Name, layout.Label)
			}
			if !sampleTypeCompatible(want.Texture.SampleType, got.Texture.SampleType) {
				return fmt.Errorf("shader %q: binding %d (%s) sample type mismatch in layout %q", s.key, want.Binding, b.Name, layout.Label)
			}
			if gpu.Is2DArray(want.Texture.ViewDimension) != gpu.Is2DArray(got.Texture.ViewDimension) {
				return fmt.Errorf("shader %q: binding %d (%s) view dimension mismatch in layout %q", s.key, want.Binding, b.Name, layout.Label)
			}
		}
	}
	return nil
}

// sampleTypeCompatible reports whether a layout sample type can back a shader declaration.
// An unfilterable float layout still satisfies a texture_2d<f32> declaration.
func sampleTypeCompatible(shaderType, layoutType gpu.TextureSampleType) bool {
	if shaderType == layoutType {
		return true
	}
	return shaderType == gpu.TextureSampleTypeFloat && layoutType == gpu.TextureSampleTypeUnfilterableFloat
}
