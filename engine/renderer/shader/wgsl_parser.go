package shader

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/gpu"
)

// wgslSampledTextureMap maps WGSL sampled texture base names to their view dimension
var wgslSampledTextureMap = map[string]gpu.TextureViewDimension{
	"texture_2d":             gpu.TextureViewDimension2D,
	"texture_2d_array":       gpu.TextureViewDimension2DArray,
	"texture_depth_2d":       gpu.TextureViewDimension2D,
	"texture_depth_2d_array": gpu.TextureViewDimension2DArray,
}

// wgslSampleTypeMap maps WGSL scalar type parameters to their texture sample type
var wgslSampleTypeMap = map[string]gpu.TextureSampleType{
	"f32": gpu.TextureSampleTypeFloat,
	"i32": gpu.TextureSampleTypeSint,
	"u32": gpu.TextureSampleTypeUint,
}

var (
	// vertexEntryRegex matches @vertex functions and captures the entry point name
	vertexEntryRegex = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)

	// fragmentEntryRegex matches @fragment functions and captures the entry point name
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)

	// bindGroupDeclRegex captures group, binding, optional address space, variable name, and type
	// from declarations like: @group(0) @binding(0) var<uniform> view: View;
	// or handle types: @group(0) @binding(101) var unit_data: texture_2d<u32>;
	bindGroupDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// Binding is one resource declaration parsed from WGSL source.
type Binding struct {
	Group uint32
	Name  string
	Entry gpu.BindGroupLayoutEntry
}

// parseEntryPoints finds the vertex and fragment entry point names declared in source.
func parseEntryPoints(source string) map[Stage]string {
	cleaned := stripComments(source)
	entries := make(map[Stage]string, 2)
	if match := vertexEntryRegex.FindStringSubmatch(cleaned); match != nil {
		entries[StageVertex] = match[1]
	}
	if match := fragmentEntryRegex.FindStringSubmatch(cleaned); match != nil {
		entries[StageFragment] = match[1]
	}
	return entries
}

// parseBindings extracts every @group/@binding declaration from source, sorted by group then binding.
//
// Parameters:
//   - source: the pre-processed WGSL source code string
//
// Returns:
//   - []Binding: the parsed declarations
func parseBindings(source string) []Binding {
	cleaned := stripComments(source)
	matches := bindGroupDeclRegex.FindAllStringSubmatch(cleaned, -1)

	bindings := make([]Binding, 0, len(matches))
	for _, match := range matches {
		group, _ := strconv.Atoi(match[1])
		binding, _ := strconv.Atoi(match[2])
		addressSpace := strings.TrimSpace(match[3])
		varName := strings.TrimSpace(match[4])
		typeName := strings.TrimSpace(match[5])

		bindings = append(bindings, Binding{
			Group: uint32(group),
			Name:  varName,
			Entry: classifyResource(uint32(binding), addressSpace, typeName),
		})
	}

	sort.Slice(bindings, func(i, j int) bool {
		if bindings[i].Group != bindings[j].Group {
			return bindings[i].Group < bindings[j].Group
		}
		return bindings[i].Entry.Binding < bindings[j].Entry.Binding
	})
	return bindings
}

// classifyResource builds a layout entry from a declaration's address space and type.
func classifyResource(binding uint32, addressSpace, typeName string) gpu.BindGroupLayoutEntry {
	entry := gpu.BindGroupLayoutEntry{Binding: binding}

	if addressSpace != "" {
		entry.Buffer = &gpu.BufferBindingLayout{}
		return entry
	}

	switch {
	case typeName == "sampler":
		entry.Sampler = &gpu.SamplerBindingLayout{Type: gpu.SamplerBindingTypeFiltering}
	case strings.HasPrefix(typeName, "texture_depth_"):
		entry.Texture = &gpu.TextureBindingLayout{
			SampleType:    gpu.TextureSampleTypeDepth,
			ViewDimension: wgslSampledTextureMap[typeName],
		}
	case strings.HasPrefix(typeName, "texture_"):
		base, param := splitTypeParams(typeName)
		entry.Texture = &gpu.TextureBindingLayout{
			SampleType:    wgslSampleTypeMap[param],
			ViewDimension: wgslSampledTextureMap[base],
		}
	}
	return entry
}

// splitTypeParams splits a WGSL parameterized type into its base name and parameter string.
// For "texture_2d<f32>" returns ("texture_2d", "f32").
// For "texture_depth_2d" (no params) returns ("texture_depth_2d", "").
//
// Parameters:
//   - typeName: the WGSL type string to split
//
// Returns:
//   - base: the type name before the first angle bracket
//   - params: the content between angle brackets, or empty if none
func splitTypeParams(typeName string) (base string, params string) {
	before, after, ok := strings.Cut(typeName, "<")
	if !ok {
		return typeName, ""
	}
	base = before
	params = strings.TrimSuffix(after, ">")
	params = strings.TrimSpace(params)
	return base, params
}

// stripComments removes both single-line (//) and block (/* */) comments from WGSL source.
// Block comments may be nested per the WGSL specification.
func stripComments(source string) string {
	return stripLineComments(stripBlockComments(source))
}

func stripLineComments(source string) string {
	var sb strings.Builder
	lines := strings.SplitSeq(source, "\n")
	for line := range lines {
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func stripBlockComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	i := 0
	for i < len(source) {
		if i+1 < len(source) {
			if source[i] == '/' && source[i+1] == '*' {
				depth++
				i += 2
				continue
			}
			if source[i] == '*' && source[i+1] == '/' {
				if depth > 0 {
					depth--
				}
				i += 2
				continue
			}
		}
		if depth == 0 {
			sb.WriteByte(source[i])
		}
		i++
	}
	return sb.String()
}
