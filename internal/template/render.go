// Package template implements {{key}} variable interpolation for message
// bodies. Substitution is best-effort: unknown keys are left verbatim so a
// partially populated recipient record degrades the message instead of
// failing the whole send.
package template

import "regexp"

var placeholderRe = regexp.MustCompile(`\{\{([A-Za-z_][A-Za-z0-9_]*)\}\}`)

// Render replaces every {{identifier}} occurrence with data[identifier].
// Unknown keys pass through unchanged. Pure, never errors.
func Render(tmpl string, data map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(tmpl, func(m string) string {
		key := m[2 : len(m)-2]
		if v, ok := data[key]; ok {
			return v
		}
		return m
	})
}

// Placeholders returns the distinct placeholder identifiers in a template,
// in first-appearance order.
func Placeholders(tmpl string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range placeholderRe.FindAllStringSubmatch(tmpl, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	return out
}

// CheckVars reports placeholders not covered by the allowed variable set.
// Intended for compose-time typo detection; Render still passes unknown
// keys through at send time.
func CheckVars(tmpl string, allowed []string) []string {
	ok := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		ok[a] = true
	}
	var unknown []string
	for _, p := range Placeholders(tmpl) {
		if !ok[p] {
			unknown = append(unknown, p)
		}
	}
	return unknown
}
