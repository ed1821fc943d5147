// pre_processor.go implements the Oxy WGSL shader pre-processor. It expands two constructs:
//   - a line of the form `@oxy:include <name>` is replaced by the registered WGSL source for name,
//     so shared structs (view, globals, unit packing helpers) have a single definition.
//   - a `#{NAME}` token anywhere in a line is replaced by the value of the define NAME, so grid
//     sizes and radii come from the host constants instead of being repeated in every shader.
//
// Unknown includes and defines are errors: a shader referencing a constant the host never
// declared is a programmer error and must fail at initialization.
package shader

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

const includeDirective = "@oxy:include"

// defineTokenRegex matches #{NAME} define tokens.
var defineTokenRegex = regexp.MustCompile(`#\{(\w+)\}`)

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	// includes maps include names to their WGSL source.
	includes map[string]string

	// defines maps define names to their textual values.
	defines map[string]string

	// used records the defines referenced by the most recent Process call.
	used []string
}

// PreProcessor expands @oxy:include directives and #{NAME} define tokens in WGSL source.
type PreProcessor interface {
	// Process expands every include directive and define token in source.
	// Included sources are themselves processed, so an include may reference defines
	// or other includes. Each include is expanded at most once per Process call.
	//
	// Parameters:
	//   - source: the raw WGSL source
	//
	// Returns:
	//   - string: the expanded WGSL source
	//   - error: an error naming the line of the first unknown include or define
	Process(source string) (string, error)

	// UsedDefines returns the sorted names of the defines referenced by the most recent Process call.
	//
	// Returns:
	//   - []string: the define names
	UsedDefines() []string
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor over the given include and define tables. Either map may be nil.
//
// Parameters:
//   - includes: include name to WGSL source
//   - defines: define name to replacement text
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor(includes, defines map[string]string) PreProcessor {
	p := &preProcessor{
		includes: make(map[string]string, len(includes)),
		defines:  make(map[string]string, len(defines)),
	}
	for k, v := range includes {
		p.includes[k] = v
	}
	for k, v := range defines {
		p.defines[k] = v
	}
	return p
}

func (p *preProcessor) Process(source string) (string, error) {
	used := make(map[string]struct{})
	seen := make(map[string]struct{})
	out, err := p.process(source, "", used, seen)
	if err != nil {
		return "", err
	}

	p.used = p.used[:0]
	for name := range used {
		p.used = append(p.used, name)
	}
	sort.Strings(p.used)
	return out, nil
}

func (p *preProcessor) UsedDefines() []string {
	return p.used
}

// process expands source recursively. origin names the include being expanded, empty for the root.
func (p *preProcessor) process(source, origin string, used, seen map[string]struct{}) (string, error) {
	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))

	for i, line := range lines {
		where := fmt.Sprintf("line %d", i+1)
		if origin != "" {
			where = fmt.Sprintf("include %q line %d", origin, i+1)
		}

		trimmed := strings.TrimSpace(line)
		if name, ok := strings.CutPrefix(trimmed, includeDirective); ok {
			name = strings.TrimSpace(name)
			if name == "" {
				return "", fmt.Errorf("%s: %s requires a name", where, includeDirective)
			}
			if _, done := seen[name]; done {
				continue
			}
			src, ok := p.includes[name]
			if !ok {
				return "", fmt.Errorf("%s: unknown include %q", where, name)
			}
			seen[name] = struct{}{}
			expanded, err := p.process(src, name, used, seen)
			if err != nil {
				return "", err
			}
			out = append(out, expanded)
			continue
		}

		var missing string
		line = defineTokenRegex.ReplaceAllStringFunc(line, func(tok string) string {
			name := defineTokenRegex.FindStringSubmatch(tok)[1]
			value, ok := p.defines[name]
			if !ok {
				if missing == "" {
					missing = name
				}
				return tok
			}
			used[name] = struct{}{}
			return value
		})
		if missing != "" {
			return "", fmt.Errorf("%s: unknown define %q", where, missing)
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n"), nil
}
