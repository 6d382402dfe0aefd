package template

// Resolve looks up namespace.field in ctx. The second return value is false
// when the variable is unresolved; the caller is expected to leave the
// original placeholder untouched rather than substitute an empty string.
//
// When limit is positive and the value is longer than limit runes, the result
// is the first limit runes followed by a literal "..." (the ellipsis is
// appended on top of the limit, not clamped into it). A non-positive limit
// means no truncation.
func Resolve(ctx RenderContext, namespace, field string, limit int) (string, bool) {
	fields, ok := ctx[namespace]
	if !ok {
		return "", false
	}
	value, ok := fields[field]
	if !ok {
		return "", false
	}
	if limit > 0 {
		if r := []rune(value); len(r) > limit {
			return string(r[:limit]) + "...", true
		}
	}
	return value, true
}
