// Package render substitutes {{ cookiecutter.<name> }} placeholder tokens in
// catalog paths and file bodies.
package render

import (
	"fmt"
	"path"
	"regexp"
	"sort"
)

var tokenPattern = regexp.MustCompile(`\{\{\s*cookiecutter\.([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// UnresolvedPlaceholderError is returned when a template names a value the
// context does not provide.
type UnresolvedPlaceholderError struct {
	Token    string
	Template string
}

func (e *UnresolvedPlaceholderError) Error() string {
	return fmt.Sprintf("unresolved placeholder %q in %q", e.Token, e.Template)
}

// Render replaces every token in tmpl with its value. The first token with
// no value aborts the render.
func Render(tmpl string, values map[string]string) (string, error) {
	var missing string
	out := tokenPattern.ReplaceAllStringFunc(tmpl, func(tok string) string {
		name := tokenPattern.FindStringSubmatch(tok)[1]
		v, ok := values[name]
		if !ok {
			if missing == "" {
				missing = name
			}
			return tok
		}
		return v
	})
	if missing != "" {
		return "", &UnresolvedPlaceholderError{Token: missing, Template: tmpl}
	}
	return out, nil
}

// Tokens returns the distinct token names used in tmpl, sorted.
func Tokens(tmpl string) []string {
	seen := make(map[string]bool)
	for _, m := range tokenPattern.FindAllStringSubmatch(tmpl, -1) {
		seen[m[1]] = true
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// CopyWithoutRender reports whether the slash-separated path p matches one of
// the glob patterns, either on its base name or on the whole path.
func CopyWithoutRender(patterns []string, p string) bool {
	base := path.Base(p)
	for _, pat := range patterns {
		if ok, _ := path.Match(pat, base); ok {
			return true
		}
		if ok, _ := path.Match(pat, p); ok {
			return true
		}
	}
	return false
}
