// Package template neutralises Go template syntax embedded in helmfile manifests so the
// YAML parser can still build a tree from them.
//
// Sanitizing never evaluates anything. Lines that hold only a control directive are
// dropped, which leaves the literal content of every branch in place; when two branches
// set the same key the YAML loader keeps the last one. Inline expressions are replaced
// with an empty string, so "version: {{ .Values.v }}" becomes an empty value.
package template

import (
	"regexp"
	"strings"
)

var (
	// directiveLine matches a line made up solely of a control action, e.g.
	// "  {{- if .Values.enabled }}", "{{ else }}" or "{{- end -}}".
	directiveLine = regexp.MustCompile(`^\s*\{\{-?\s*(?:if|else|end|with|range|define|block)\b(?:[^}\n]|\}[^}\n])*\}\}\s*$`)

	// inlineExpression matches a single-line action. Non-greedy so two actions on one
	// line are removed separately.
	inlineExpression = regexp.MustCompile(`\{\{[^\n]*?\}\}`)
)

// Sanitize returns content with control directive lines removed and the remaining inline
// template expressions replaced by empty strings.
func Sanitize(content string) string {
	lines := strings.Split(content, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if directiveLine.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}
	return inlineExpression.ReplaceAllString(strings.Join(kept, "\n"), "")
}

// HasTemplating reports whether content contains anything Sanitize would rewrite.
func HasTemplating(content string) bool {
	return inlineExpression.MatchString(content)
}
