// Package plan computes, without touching a filesystem, the tree the
// generator and pruner are expected to leave behind.
package plan

import (
	"fmt"
	"sort"
	"strings"

	"github.com/company/ai-scaffold/internal/answers"
	"github.com/company/ai-scaffold/internal/catalog"
	"github.com/company/ai-scaffold/internal/render"
)

// UnknownFlagError is returned when answers name a flag the catalog lacks.
type UnknownFlagError struct {
	Flag string
}

func (e *UnknownFlagError) Error() string {
	return fmt.Sprintf("unknown feature flag %q", e.Flag)
}

// Deletion is one resolved prune target.
type Deletion struct {
	Flag     string
	Template string
	Path     string
	Err      error
}

// RuleApplies reports whether the prune rule for flag fires. An unanswered
// flag keeps its paths. For lightweight mode the rule fires when the mode is
// off, which is the same test.
func RuleApplies(a *answers.Answers, flag string) bool {
	on, known := a.Enabled(flag)
	if !known {
		return false
	}
	return !on
}

// Deletions resolves the prune table against a, in rule order. A template
// that fails to resolve is returned with Err set and an empty Path.
func Deletions(cat *catalog.Catalog, a *answers.Answers) []Deletion {
	values := a.Values()
	var out []Deletion
	for _, r := range cat.Rules {
		if !RuleApplies(a, r.Flag) {
			continue
		}
		for _, tmpl := range r.Paths {
			p, err := render.Render(tmpl, values)
			out = append(out, Deletion{Flag: r.Flag, Template: tmpl, Path: p, Err: err})
		}
	}
	return out
}

// Direct is the tree produced by generating a alone: every entry whose
// condition holds, with unanswered flags taking their catalog default.
func Direct(cat *catalog.Catalog, a *answers.Answers) (*Tree, error) {
	if err := checkFlags(cat, a); err != nil {
		return nil, err
	}
	full := a.Complete(cat)
	entries, err := resolveEntries(cat, full.Values())
	if err != nil {
		return nil, err
	}
	return build(entries, full.Lookup), nil
}

// Pruned is the tree produced by generating the superset of a and pruning
// it with a.
func Pruned(cat *catalog.Catalog, a *answers.Answers) (*Tree, error) {
	if err := checkFlags(cat, a); err != nil {
		return nil, err
	}
	sup := a.Superset(cat)
	entries, err := resolveEntries(cat, sup.Values())
	if err != nil {
		return nil, err
	}
	t := build(entries, sup.Lookup)
	for _, d := range Deletions(cat, a) {
		if d.Err != nil {
			return nil, d.Err
		}
		t.Remove(d.Path)
		t.CollapseEmptyParents(d.Path)
	}
	return t, nil
}

// Mismatch is a flag combination for which generating directly and
// generating-then-pruning disagree.
type Mismatch struct {
	Flags map[string]bool
	// OnlyDirect lists paths the direct tree has and the pruned tree lost.
	OnlyDirect []string
	// OnlyPruned lists orphans the pruner left behind.
	OnlyPruned []string
}

func (m Mismatch) String() string {
	var on []string
	for _, name := range sortedKeys(m.Flags) {
		if m.Flags[name] {
			on = append(on, name)
		}
	}
	return fmt.Sprintf("flags on [%s]: missing %v, orphaned %v",
		strings.Join(on, " "), m.OnlyDirect, m.OnlyPruned)
}

// Check compares Direct and Pruned for every combination of flag values,
// using the string answers of base. Paths resolve the same way under every
// combination, so they are rendered once.
func Check(cat *catalog.Catalog, base *answers.Answers) ([]Mismatch, error) {
	full := base.Complete(cat)
	entries, err := resolveEntries(cat, full.Values())
	if err != nil {
		return nil, err
	}
	rules, err := resolveRules(cat, full.Values())
	if err != nil {
		return nil, err
	}

	names := cat.FlagNames()
	var mismatches []Mismatch
	for mask := 0; mask < 1<<len(names); mask++ {
		flags := make(map[string]bool, len(names))
		for i, n := range names {
			flags[n] = mask&(1<<i) != 0
		}
		a := &answers.Answers{Flags: flags}

		direct := build(entries, a.Lookup)

		sup := a.Superset(cat)
		pruned := build(entries, sup.Lookup)
		for _, r := range rules {
			if !RuleApplies(a, r.Flag) {
				continue
			}
			for _, p := range r.Paths {
				pruned.Remove(p)
				pruned.CollapseEmptyParents(p)
			}
		}

		if !Equal(direct, pruned) {
			onlyDirect, onlyPruned := Diff(direct, pruned)
			mismatches = append(mismatches, Mismatch{Flags: flags, OnlyDirect: onlyDirect, OnlyPruned: onlyPruned})
		}
	}
	return mismatches, nil
}

type resolvedEntry struct {
	path string
	dir  bool
	when catalog.Condition
}

func resolveEntries(cat *catalog.Catalog, values map[string]string) ([]resolvedEntry, error) {
	out := make([]resolvedEntry, 0, len(cat.Entries))
	for _, e := range cat.Entries {
		p, err := render.Render(e.Path, values)
		if err != nil {
			return nil, err
		}
		out = append(out, resolvedEntry{path: p, dir: e.Dir, when: e.When})
	}
	return out, nil
}

func resolveRules(cat *catalog.Catalog, values map[string]string) ([]catalog.Rule, error) {
	out := make([]catalog.Rule, 0, len(cat.Rules))
	for _, r := range cat.Rules {
		paths := make([]string, len(r.Paths))
		for i, tmpl := range r.Paths {
			p, err := render.Render(tmpl, values)
			if err != nil {
				return nil, err
			}
			paths[i] = p
		}
		out = append(out, catalog.Rule{Flag: r.Flag, Paths: paths})
	}
	return out, nil
}

func build(entries []resolvedEntry, lookup func(string) bool) *Tree {
	t := NewTree()
	for _, e := range entries {
		if !e.when.Holds(lookup) {
			continue
		}
		if e.dir {
			t.AddDir(e.path)
		} else {
			t.AddFile(e.path)
		}
	}
	return t
}

func checkFlags(cat *catalog.Catalog, a *answers.Answers) error {
	for _, name := range sortedKeys(a.Flags) {
		if _, ok := cat.Lookup(name); !ok {
			return &UnknownFlagError{Flag: name}
		}
	}
	return nil
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
