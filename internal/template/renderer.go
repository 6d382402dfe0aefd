package template

import (
	"regexp"
	"strconv"
)

// placeholderPattern matches {{namespace.field}} and {{namespace.field(N)}}.
// The modifier group is permissive: a non-numeric or non-positive modifier
// degrades to "no limit" instead of being an error.
var placeholderPattern = regexp.MustCompile(`\{\{([A-Za-z_][A-Za-z0-9_]*)\.([A-Za-z_][A-Za-z0-9_]*)(\(([^)]*)\))?\}\}`)

// Render scans template once, substituting every well-formed placeholder
// from ctx. Malformed placeholders and placeholders referencing an unknown
// namespace or field are left verbatim in the output. Rendering is pure and
// total: it never fails, and a string without placeholders comes back
// unchanged.
func Render(template string, ctx RenderContext) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		sub := placeholderPattern.FindStringSubmatch(match)

		limit := 0
		if sub[3] != "" {
			if n, err := strconv.Atoi(sub[4]); err == nil && n > 0 {
				limit = n
			}
		}

		value, ok := Resolve(ctx, sub[1], sub[2], limit)
		if !ok {
			return match
		}
		return value
	})
}
