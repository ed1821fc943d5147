package shader

import (
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
)

// validateSource runs the WGSL front end and IR validator over source and returns the
// entry points it declares. Errors carry the shader key so init failures are traceable.
func validateSource(key, source string) (map[Stage]string, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("shader %q: %w", key, err)
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return nil, fmt.Errorf("shader %q: lowering: %w", key, err)
	}
	problems, err := naga.Validate(module)
	if err != nil {
		return nil, fmt.Errorf("shader %q: validation: %w", key, err)
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("shader %q: validation failed (%d problems): %w", key, len(problems), &problems[0])
	}

	entries := make(map[Stage]string, len(module.EntryPoints))
	for _, ep := range module.EntryPoints {
		switch ep.Stage {
		case ir.StageVertex:
			entries[StageVertex] = ep.Name
		case ir.StageFragment:
			entries[StageFragment] = ep.Name
		}
	}
	return entries, nil
}
