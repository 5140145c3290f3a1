// Package catalog describes every path the scaffold generator may create,
// the feature flags that govern them, and the prune rules that undo them.
package catalog

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/company/ai-scaffold/internal/render"
)

// LightweightMode is the flag whose "on" state collapses expanded
// directories into single stand-in files.
const LightweightMode = "lightweight_mode"

// Flag is a named yes/no feature switch.
type Flag struct {
	Name    string
	Default bool
	Help    string
}

// Answer is a free-form string question asked at generation time.
type Answer struct {
	Name    string
	Default string
	Help    string
}

// Literal requires a flag to have a given value.
type Literal struct {
	Flag string
	Want bool
}

func (l Literal) String() string {
	if l.Want {
		return l.Flag
	}
	return "!" + l.Flag
}

// Condition is a conjunction of literals. The empty condition always holds.
type Condition []Literal

// Holds reports whether every literal matches the value returned by lookup.
func (c Condition) Holds(lookup func(flag string) bool) bool {
	for _, l := range c {
		if lookup(l.Flag) != l.Want {
			return false
		}
	}
	return true
}

func (c Condition) String() string {
	if len(c) == 0 {
		return "always"
	}
	parts := make([]string, len(c))
	for i, l := range c {
		parts[i] = l.String()
	}
	return strings.Join(parts, " && ")
}

// Entry is one catalog row: a slash-separated path relative to the output
// root, which may contain placeholder tokens.
type Entry struct {
	Path    string
	Dir     bool
	Content string
	When    Condition
}

// Rule lists the paths deleted when Flag is off. For LightweightMode the
// rule applies when the flag is off and is skipped when it is on.
type Rule struct {
	Flag  string
	Paths []string
}

// Catalog is the immutable description shared by the generator, the pruner
// and the consistency checks.
type Catalog struct {
	TemplateVersion   string
	Flags             []Flag
	Answers           []Answer
	Entries           []Entry
	Rules             []Rule
	CopyWithoutRender []string
}

// Lookup returns the flag with the given name.
func (c *Catalog) Lookup(name string) (Flag, bool) {
	for _, f := range c.Flags {
		if f.Name == name {
			return f, true
		}
	}
	return Flag{}, false
}

// FlagNames returns all flag names in catalog order.
func (c *Catalog) FlagNames() []string {
	names := make([]string, len(c.Flags))
	for i, f := range c.Flags {
		names[i] = f.Name
	}
	return names
}

// RuleFor returns the prune rule keyed by flag.
func (c *Catalog) RuleFor(flag string) (Rule, bool) {
	for _, r := range c.Rules {
		if r.Flag == flag {
			return r, true
		}
	}
	return Rule{}, false
}

// GovernedBy returns the entries whose condition mentions flag, sorted by path.
func (c *Catalog) GovernedBy(flag string) []Entry {
	var out []Entry
	for _, e := range c.Entries {
		for _, l := range e.When {
			if l.Flag == flag {
				out = append(out, e)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// DriftError reports a mismatch between the creation table and the prune table.
type DriftError struct {
	Path   string
	Flag   string
	Reason string
}

func (e *DriftError) Error() string {
	if e.Flag == "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("%s (%s): %s", e.Path, e.Flag, e.Reason)
}

// Validate checks the catalog structure and that every governed entry can be
// removed by a prune rule keyed by each of its governing flags.
func (c *Catalog) Validate() []error {
	var errs []error

	known := make(map[string]bool, len(c.Flags))
	for _, f := range c.Flags {
		if known[f.Name] {
			errs = append(errs, &DriftError{Path: "-", Flag: f.Name, Reason: "flag declared twice"})
		}
		known[f.Name] = true
	}

	answers := make(map[string]bool, len(c.Answers))
	for _, a := range c.Answers {
		answers[a.Name] = true
	}

	seen := make(map[string]bool, len(c.Entries))
	for _, e := range c.Entries {
		if err := checkPath(e.Path); err != nil {
			errs = append(errs, &DriftError{Path: e.Path, Reason: err.Error()})
			continue
		}
		errs = append(errs, checkTokens(e.Path, "", answers)...)
		key := e.Path + "|" + e.When.String()
		if seen[key] {
			errs = append(errs, &DriftError{Path: e.Path, Reason: "duplicate entry"})
		}
		seen[key] = true

		for _, l := range e.When {
			if !known[l.Flag] {
				errs = append(errs, &DriftError{Path: e.Path, Flag: l.Flag, Reason: "condition uses unknown flag"})
				continue
			}
			if !l.Want {
				if l.Flag != LightweightMode {
					errs = append(errs, &DriftError{Path: e.Path, Flag: l.Flag, Reason: "negated condition cannot be undone by a prune rule"})
				}
				continue
			}
			if !c.covers(l.Flag, e.Path) {
				errs = append(errs, &DriftError{Path: e.Path, Flag: l.Flag, Reason: "created under flag but no prune rule removes it"})
			}
		}
	}

	ruleKeys := make(map[string]bool, len(c.Rules))
	for _, r := range c.Rules {
		if !known[r.Flag] {
			errs = append(errs, &DriftError{Path: "-", Flag: r.Flag, Reason: "prune rule for unknown flag"})
			continue
		}
		if ruleKeys[r.Flag] {
			errs = append(errs, &DriftError{Path: "-", Flag: r.Flag, Reason: "prune rule declared twice"})
		}
		ruleKeys[r.Flag] = true

		for _, p := range r.Paths {
			if err := checkPath(p); err != nil {
				errs = append(errs, &DriftError{Path: p, Flag: r.Flag, Reason: err.Error()})
				continue
			}
			errs = append(errs, checkTokens(p, r.Flag, answers)...)
			if !c.guards(r.Flag, p) {
				errs = append(errs, &DriftError{Path: p, Flag: r.Flag, Reason: "prune rule removes a path the generator never guards with this flag"})
			}
		}
	}

	return errs
}

// covers reports whether the rule for flag removes p or one of its ancestors.
func (c *Catalog) covers(flag, p string) bool {
	r, ok := c.RuleFor(flag)
	if !ok {
		return false
	}
	for _, rp := range r.Paths {
		if rp == p || IsAncestor(rp, p) {
			return true
		}
	}
	return false
}

// guards reports whether some entry created only when flag is on lives at
// or below p.
func (c *Catalog) guards(flag, p string) bool {
	for _, e := range c.Entries {
		if e.Path != p && !IsAncestor(p, e.Path) {
			continue
		}
		for _, l := range e.When {
			if l.Flag == flag && l.Want {
				return true
			}
		}
	}
	return false
}

// IsAncestor reports whether dir is a strict ancestor of p. Both are
// slash-separated relative paths.
func IsAncestor(dir, p string) bool {
	return strings.HasPrefix(p, dir+"/")
}

// checkTokens requires path placeholders to name string answers, so a path
// resolves the same way under every flag combination.
func checkTokens(p, flag string, answers map[string]bool) []error {
	var errs []error
	for _, tok := range render.Tokens(p) {
		if !answers[tok] {
			errs = append(errs, &DriftError{Path: p, Flag: flag, Reason: fmt.Sprintf("placeholder %q is not a string answer", tok)})
		}
	}
	return errs
}

func checkPath(p string) error {
	switch {
	case p == "":
		return fmt.Errorf("empty path")
	case path.IsAbs(p):
		return fmt.Errorf("absolute path")
	case path.Clean(p) != p:
		return fmt.Errorf("path is not clean")
	case p == ".." || strings.HasPrefix(p, "../"):
		return fmt.Errorf("path escapes the output root")
	}
	return nil
}
