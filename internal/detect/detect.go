// Package detect locates generated trees on disk and summarises them.
package detect

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	version "github.com/hashicorp/go-version"

	"github.com/company/ai-scaffold/internal/answers"
	"github.com/company/ai-scaffold/internal/catalog"
)

// ErrNoProject is returned when no generated tree encloses the start directory.
var ErrNoProject = errors.New("no generated project found")

// Project is what can be learned about a generated tree from disk alone.
type Project struct {
	Root            string
	HasContext      bool
	HasManifest     bool
	TemplateVersion string
	PackageName     string
	Files           int
	Dirs            int
}

// MajorVersion returns the major segment of a template version.
func MajorVersion(v string) (int, error) {
	parsed, err := version.NewVersion(strings.TrimSpace(v))
	if err != nil {
		return 0, err
	}
	return parsed.Segments()[0], nil
}

// FindRoot walks upward from start to the first directory holding the
// context side-file or the root manifest.
func FindRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		if isFile(filepath.Join(dir, answers.ContextFile)) || isFile(filepath.Join(dir, catalog.ManifestFile)) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoProject
		}
		dir = parent
	}
}

// Describe summarises the tree at root.
func Describe(root string) (*Project, error) {
	p := &Project{
		Root:        root,
		HasContext:  isFile(filepath.Join(root, answers.ContextFile)),
		HasManifest: isFile(filepath.Join(root, catalog.ManifestFile)),
	}

	if data, err := os.ReadFile(filepath.Join(root, catalog.TemplateVersionFile)); err == nil {
		p.TemplateVersion = strings.TrimSpace(string(data))
	}
	p.PackageName = detectPackage(root)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// if there's a random permission error somewhere, just skip it
			return nil
		}
		if path == root {
			return nil
		}

		if d.IsDir() {
			// skip dot-folders: .git, .venv, .idea, ...
			if strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			p.Dirs++
			return nil
		}

		p.Files++
		return nil
	})
	if err != nil {
		return nil, err
	}

	return p, nil
}

// detectPackage returns the single python package under src/, if any.
func detectPackage(root string) string {
	entries, err := os.ReadDir(filepath.Join(root, "src"))
	if err != nil {
		return ""
	}
	var found string
	for _, e := range entries {
		if !e.IsDir() || !isFile(filepath.Join(root, "src", e.Name(), "__init__.py")) {
			continue
		}
		if found != "" {
			return ""
		}
		found = e.Name()
	}
	return found
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
