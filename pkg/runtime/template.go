package runtime

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tcmartin/promptflow/pkg/scope"
)

// Matches {{reference}} placeholders, including dotted references like
// {{summarize.text}}.
var placeholderPattern = regexp.MustCompile(`{{\s*([^{}]+?)\s*}}`)

// RenderTemplate resolves every {{name}} placeholder in the template
// against the scope. A placeholder that does not resolve fails the render
// with an unresolved-placeholder error; placeholders are never left in the
// output as literal text.
func RenderTemplate(template string, sc *scope.Scope) (string, error) {
	var renderErr error

	rendered := placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		if renderErr != nil {
			return match
		}

		ref := strings.TrimSpace(match[2 : len(match)-2])
		value, err := scope.Resolve(ref, sc)
		if err != nil {
			renderErr = fmt.Errorf("unresolved placeholder {{%s}}: %w", ref, err)
			return match
		}
		return fmt.Sprintf("%v", value)
	})

	if renderErr != nil {
		return "", renderErr
	}
	return rendered, nil
}

// TemplatePlaceholders returns the distinct references used by a template,
// in order of first appearance.
func TemplatePlaceholders(template string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(template, -1)
	refs := make([]string, 0, len(matches))
	seen := make(map[string]bool)
	for _, m := range matches {
		ref := strings.TrimSpace(m[1])
		if !seen[ref] {
			refs = append(refs, ref)
			seen[ref] = true
		}
	}
	return refs
}
