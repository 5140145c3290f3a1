package plan

import (
	"path"
	"sort"
	"strings"
)

// Tree is an in-memory set of slash-separated paths relative to an output
// root. The root itself is never a member.
type Tree struct {
	nodes map[string]bool // path -> is directory
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{nodes: make(map[string]bool)}
}

// AddFile adds a file and all of its ancestors.
func (t *Tree) AddFile(p string) {
	t.addParents(p)
	t.nodes[p] = false
}

// AddDir adds a directory and all of its ancestors.
func (t *Tree) AddDir(p string) {
	t.addParents(p)
	t.nodes[p] = true
}

func (t *Tree) addParents(p string) {
	for dir := path.Dir(p); dir != "." && dir != "/"; dir = path.Dir(dir) {
		t.nodes[dir] = true
	}
}

// Has reports whether p is in the tree.
func (t *Tree) Has(p string) bool {
	_, ok := t.nodes[p]
	return ok
}

// IsDir reports whether p is a directory in the tree.
func (t *Tree) IsDir(p string) bool {
	return t.nodes[p]
}

// Len returns the number of paths.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Remove deletes p and everything beneath it. It reports whether p existed.
func (t *Tree) Remove(p string) bool {
	if !t.Has(p) {
		return false
	}
	prefix := p + "/"
	for n := range t.nodes {
		if n == p || strings.HasPrefix(n, prefix) {
			delete(t.nodes, n)
		}
	}
	return true
}

// Empty reports whether directory dir has no children.
func (t *Tree) Empty(dir string) bool {
	prefix := dir + "/"
	for n := range t.nodes {
		if strings.HasPrefix(n, prefix) {
			return false
		}
	}
	return true
}

// CollapseEmptyParents removes the now-empty ancestors of p, stopping at the
// first non-empty one or at the root. It returns the removed directories,
// innermost first.
func (t *Tree) CollapseEmptyParents(p string) []string {
	var removed []string
	for dir := path.Dir(p); dir != "." && dir != "/"; dir = path.Dir(dir) {
		if !t.IsDir(dir) || !t.Empty(dir) {
			break
		}
		delete(t.nodes, dir)
		removed = append(removed, dir)
	}
	return removed
}

// Paths returns every path, sorted.
func (t *Tree) Paths() []string {
	out := make([]string, 0, len(t.nodes))
	for n := range t.nodes {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Files returns the file paths, sorted.
func (t *Tree) Files() []string {
	var out []string
	for n, dir := range t.nodes {
		if !dir {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

// Diff returns the paths only in a and the paths only in b.
func Diff(a, b *Tree) (onlyA, onlyB []string) {
	for n := range a.nodes {
		if !b.Has(n) {
			onlyA = append(onlyA, n)
		}
	}
	for n := range b.nodes {
		if !a.Has(n) {
			onlyB = append(onlyB, n)
		}
	}
	sort.Strings(onlyA)
	sort.Strings(onlyB)
	return onlyA, onlyB
}

// Equal reports whether both trees hold the same paths with the same kinds.
func Equal(a, b *Tree) bool {
	if len(a.nodes) != len(b.nodes) {
		return false
	}
	for n, dir := range a.nodes {
		if other, ok := b.nodes[n]; !ok || other != dir {
			return false
		}
	}
	return true
}
