// Package filemanager creates, prunes, hashes and verifies generated trees.
// All paths are slash-separated and relative to a billy filesystem rooted at
// the output directory.
package filemanager

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/company/ai-scaffold/internal/answers"
	"github.com/company/ai-scaffold/internal/catalog"
	"github.com/company/ai-scaffold/internal/render"
)

// WriteError is a filesystem failure during generation. Generation stops at
// the first one; anything written before it stays on disk.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// validatePath rejects resolved paths that could escape the output root.
func validatePath(p string) error {
	if p == "" {
		return fmt.Errorf("empty path")
	}
	if path.Clean(p) != p || path.IsAbs(p) || p == ".." || strings.HasPrefix(p, "../") || strings.Contains(p, "/../") {
		return fmt.Errorf("invalid path %q", p)
	}
	return nil
}

// OpenRoot returns a filesystem chrooted at an existing directory.
func OpenRoot(dir string) (billy.Filesystem, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	return osfs.New(abs), nil
}

// CreateRoot creates dir if needed and returns a filesystem chrooted at it.
func CreateRoot(dir string) (billy.Filesystem, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}
	return OpenRoot(dir)
}

// IsEmptyDir reports whether the root of fs has no entries.
func IsEmptyDir(fs billy.Filesystem) (bool, error) {
	entries, err := fs.ReadDir("")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return true, nil
		}
		return false, err
	}
	return len(entries) == 0, nil
}

// GenerateResult lists what a generation run wrote.
type GenerateResult struct {
	Files   []string
	Dirs    []string
	Skipped []string
	// Hashes maps every written file to the hash of its content.
	Hashes map[string]string
}

// Generator writes catalog entries into a filesystem.
type Generator struct {
	fs  billy.Filesystem
	cat *catalog.Catalog
}

// NewGenerator creates a generator writing into fs.
func NewGenerator(fs billy.Filesystem, cat *catalog.Catalog) *Generator {
	return &Generator{fs: fs, cat: cat}
}

// Generate creates every entry whose condition holds for a. Unanswered
// flags take their catalog default. Directories that exist and files that
// exist are fine; files are overwritten.
func (g *Generator) Generate(a *answers.Answers) (*GenerateResult, error) {
	full := a.Complete(g.cat)
	values := full.Values()
	res := &GenerateResult{Hashes: make(map[string]string)}

	for _, e := range g.cat.Entries {
		if !e.When.Holds(full.Lookup) {
			res.Skipped = append(res.Skipped, e.Path)
			continue
		}

		p, err := render.Render(e.Path, values)
		if err != nil {
			return res, err
		}
		if err := validatePath(p); err != nil {
			return res, &WriteError{Path: p, Err: err}
		}

		if e.Dir {
			if err := g.fs.MkdirAll(p, 0755); err != nil {
				return res, &WriteError{Path: p, Err: err}
			}
			res.Dirs = append(res.Dirs, p)
			continue
		}

		content := e.Content
		if !render.CopyWithoutRender(g.cat.CopyWithoutRender, p) {
			content, err = render.Render(e.Content, values)
			if err != nil {
				return res, err
			}
		}

		if err := writeFileAtomic(g.fs, p, []byte(content)); err != nil {
			return res, &WriteError{Path: p, Err: err}
		}
		res.Files = append(res.Files, p)
		res.Hashes[p] = HashBytes([]byte(content))
	}

	return res, nil
}

// writeFileAtomic writes through a temporary sibling and renames it over p.
func writeFileAtomic(fs billy.Filesystem, p string, data []byte) error {
	if dir := path.Dir(p); dir != "." {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	tmpPath := p + ".tmp"
	if err := util.WriteFile(fs, tmpPath, data, 0644); err != nil {
		return err
	}
	if err := fs.Rename(tmpPath, p); err != nil {
		fs.Remove(tmpPath)
		return err
	}
	return nil
}
