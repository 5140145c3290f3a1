// Package answers holds the feature context: the yes/no value chosen for
// every flag plus the string answers used for placeholder substitution.
package answers

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/company/ai-scaffold/internal/catalog"
)

var packageNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Answers is the resolved feature context.
type Answers struct {
	RepoName    string
	PackageName string
	Description string
	// Flags holds only the flags that were answered. A missing flag is
	// treated as "keep" by the pruner and as its default by the generator.
	Flags map[string]bool
}

// Defaults returns the catalog defaults for every answer and flag.
func Defaults(cat *catalog.Catalog) *Answers {
	a := &Answers{Flags: make(map[string]bool, len(cat.Flags))}
	for _, ans := range cat.Answers {
		a.setString(ans.Name, ans.Default)
	}
	for _, f := range cat.Flags {
		a.Flags[f.Name] = f.Default
	}
	return a
}

// Clone returns a deep copy.
func (a *Answers) Clone() *Answers {
	c := *a
	c.Flags = make(map[string]bool, len(a.Flags))
	for k, v := range a.Flags {
		c.Flags[k] = v
	}
	return &c
}

// Complete fills unanswered flags and empty strings with catalog defaults.
func (a *Answers) Complete(cat *catalog.Catalog) *Answers {
	c := a.Clone()
	d := Defaults(cat)
	if c.RepoName == "" {
		c.RepoName = d.RepoName
	}
	if c.PackageName == "" {
		c.PackageName = d.PackageName
	}
	if c.Description == "" {
		c.Description = d.Description
	}
	for name, v := range d.Flags {
		if _, ok := c.Flags[name]; !ok {
			c.Flags[name] = v
		}
	}
	return c
}

// Superset turns every feature on except lightweight mode, which keeps its
// chosen value. Generating the superset and pruning with the real answers
// yields the same tree as generating the real answers directly.
func (a *Answers) Superset(cat *catalog.Catalog) *Answers {
	c := a.Complete(cat)
	for name := range c.Flags {
		if name != catalog.LightweightMode {
			c.Flags[name] = true
		}
	}
	return c
}

// Enabled returns the flag value and whether the flag was answered at all.
func (a *Answers) Enabled(flag string) (value, known bool) {
	value, known = a.Flags[flag]
	return value, known
}

// Lookup treats unanswered flags as on.
func (a *Answers) Lookup(flag string) bool {
	if v, ok := a.Flags[flag]; ok {
		return v
	}
	return true
}

// Values returns the placeholder values: string answers plus each flag as
// "yes" or "no".
func (a *Answers) Values() map[string]string {
	v := map[string]string{
		catalog.RepoName:    a.RepoName,
		catalog.PackageName: a.PackageName,
		catalog.Description: a.Description,
	}
	for name, on := range a.Flags {
		v[name] = FormatChoice(on)
	}
	return v
}

// EnabledFlags returns the names of flags that are on, sorted.
func (a *Answers) EnabledFlags() []string {
	return a.flagsWith(true)
}

// DisabledFlags returns the names of flags that are off, sorted.
func (a *Answers) DisabledFlags() []string {
	return a.flagsWith(false)
}

func (a *Answers) flagsWith(want bool) []string {
	var out []string
	for name, v := range a.Flags {
		if v == want {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func (a *Answers) setString(name, value string) bool {
	switch name {
	case catalog.RepoName:
		a.RepoName = value
	case catalog.PackageName:
		a.PackageName = value
	case catalog.Description:
		a.Description = value
	default:
		return false
	}
	return true
}

// Validate checks the answers can be substituted into paths safely.
func Validate(a *Answers, cat *catalog.Catalog) error {
	if a.RepoName == "" {
		return fmt.Errorf("repo_name is required")
	}
	if strings.ContainsAny(a.RepoName, `/\`) {
		return fmt.Errorf("invalid repo_name %q: must not contain path separators", a.RepoName)
	}
	if !packageNamePattern.MatchString(a.PackageName) {
		return fmt.Errorf("invalid package_name %q: must be a valid python identifier", a.PackageName)
	}
	for name := range a.Flags {
		if _, ok := cat.Lookup(name); !ok {
			return fmt.Errorf("unknown feature flag %q", name)
		}
	}
	return nil
}

// ParseChoice parses a yes/no answer.
func ParseChoice(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "on", "1":
		return true, nil
	case "no", "n", "false", "off", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid choice %q: expected yes or no", s)
}

// FormatChoice renders a flag value the way the manifest spells it.
func FormatChoice(on bool) string {
	if on {
		return "yes"
	}
	return "no"
}

// FromMap builds answers from a decoded key/value document. It accepts flat
// documents ({"use_genai": "no", ...}) and documents with a nested
// "features" map. Keys that are neither answers nor known flags are ignored.
func FromMap(cat *catalog.Catalog, m map[string]any) (*Answers, error) {
	a := &Answers{Flags: make(map[string]bool)}

	if nested, ok := m["features"].(map[string]any); ok {
		if err := a.absorbFlags(cat, nested); err != nil {
			return nil, err
		}
	}
	if err := a.absorbFlags(cat, m); err != nil {
		return nil, err
	}

	for _, ans := range cat.Answers {
		raw, ok := m[ans.Name]
		if !ok || raw == nil {
			continue
		}
		s, ok := raw.(string)
		if !ok {
			s = fmt.Sprint(raw)
		}
		a.setString(ans.Name, s)
	}

	return a, nil
}

func (a *Answers) absorbFlags(cat *catalog.Catalog, m map[string]any) error {
	for _, f := range cat.Flags {
		raw, ok := m[f.Name]
		if !ok || raw == nil {
			continue
		}
		var on bool
		switch v := raw.(type) {
		case bool:
			on = v
		case string:
			parsed, err := ParseChoice(v)
			if err != nil {
				return fmt.Errorf("flag %s: %w", f.Name, err)
			}
			on = parsed
		default:
			parsed, err := ParseChoice(fmt.Sprint(v))
			if err != nil {
				return fmt.Errorf("flag %s: %w", f.Name, err)
			}
			on = parsed
		}
		a.Flags[f.Name] = on
	}
	return nil
}
