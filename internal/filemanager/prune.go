package filemanager

import (
	"errors"
	"fmt"
	"os"
	"path"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/company/ai-scaffold/internal/answers"
	"github.com/company/ai-scaffold/internal/catalog"
	"github.com/company/ai-scaffold/internal/plan"
)

// DeleteError is a failed prune target. Pruning continues past it.
type DeleteError struct {
	Flag string
	Path string
	Err  error
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("removing %s (%s): %v", e.Path, e.Flag, e.Err)
}

func (e *DeleteError) Unwrap() error { return e.Err }

// PruneReport summarises a prune run.
type PruneReport struct {
	Removed   []string
	Missing   []string
	Collapsed []string
	// Skipped lists the flags whose rule did not fire.
	Skipped  []string
	Failures []*DeleteError
}

// OK reports whether every target was handled.
func (r *PruneReport) OK() bool {
	return len(r.Failures) == 0
}

// Pruner removes the paths of disabled features from a generated tree.
type Pruner struct {
	fs  billy.Filesystem
	cat *catalog.Catalog
}

// NewPruner creates a pruner for the tree rooted at fs.
func NewPruner(fs billy.Filesystem, cat *catalog.Catalog) *Pruner {
	return &Pruner{fs: fs, cat: cat}
}

// Prune applies the prune table for a. A flag a does not mention keeps its
// paths. Running it twice removes nothing the second time.
func (p *Pruner) Prune(a *answers.Answers) *PruneReport {
	report := &PruneReport{}

	for _, r := range p.cat.Rules {
		if !plan.RuleApplies(a, r.Flag) {
			report.Skipped = append(report.Skipped, r.Flag)
		}
	}

	for _, d := range plan.Deletions(p.cat, a) {
		if d.Err != nil {
			report.Failures = append(report.Failures, &DeleteError{Flag: d.Flag, Path: d.Template, Err: d.Err})
			continue
		}
		if err := validatePath(d.Path); err != nil {
			report.Failures = append(report.Failures, &DeleteError{Flag: d.Flag, Path: d.Path, Err: err})
			continue
		}

		existed, err := RemovePath(p.fs, d.Path)
		if err != nil {
			report.Failures = append(report.Failures, &DeleteError{Flag: d.Flag, Path: d.Path, Err: err})
			continue
		}
		if existed {
			report.Removed = append(report.Removed, d.Path)
		} else {
			report.Missing = append(report.Missing, d.Path)
		}

		// An absent target may still have empty ancestors from an
		// interrupted run.
		collapsed, err := CollapseEmptyParents(p.fs, d.Path)
		report.Collapsed = append(report.Collapsed, collapsed...)
		if err != nil {
			report.Failures = append(report.Failures, &DeleteError{Flag: d.Flag, Path: path.Dir(d.Path), Err: err})
		}
	}

	return report
}

// RemovePath deletes a file, or a directory and everything beneath it. It
// reports whether p existed.
func RemovePath(fs billy.Filesystem, p string) (bool, error) {
	if _, err := fs.Lstat(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if err := util.RemoveAll(fs, p); err != nil {
		return true, err
	}
	return true, nil
}

// CollapseEmptyParents removes the ancestors of p that are left empty,
// innermost first. It stops at the first directory that still has entries
// and never removes the root.
func CollapseEmptyParents(fs billy.Filesystem, p string) ([]string, error) {
	var removed []string
	for dir := path.Dir(p); dir != "." && dir != "/"; dir = path.Dir(dir) {
		entries, err := fs.ReadDir(dir)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return removed, nil
			}
			return removed, err
		}
		if len(entries) > 0 {
			return removed, nil
		}
		if err := fs.Remove(dir); err != nil {
			return removed, err
		}
		removed = append(removed, dir)
	}
	return removed, nil
}
