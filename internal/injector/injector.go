// Package injector maintains the managed feature block inside generated
// markdown files.
package injector

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/company/ai-scaffold/internal/answers"
	"github.com/company/ai-scaffold/internal/catalog"
)

const (
	MarkerStart = "<!-- AI-SCAFFOLD:START managed by ai-scaffold, do not edit -->"
	MarkerEnd   = "<!-- AI-SCAFFOLD:END -->"
)

// Placement decides where a new block goes in a file without markers.
type Placement int

const (
	Append Placement = iota
	Prepend
)

// FileConfig describes one file that carries the block.
type FileConfig struct {
	Filename  string
	Placement Placement
}

// DefaultTargets are the generated files that carry the feature block.
func DefaultTargets() []FileConfig {
	return []FileConfig{
		{Filename: catalog.ReadmeFile, Placement: Append},
		{Filename: "docs/index.md", Placement: Append},
	}
}

// InjectAll writes the block for a into every target.
func InjectAll(fs billy.Filesystem, cat *catalog.Catalog, a *answers.Answers, targets []FileConfig) error {
	block := BuildBlock(cat, a)
	for _, cfg := range targets {
		if err := Inject(fs, cfg, block); err != nil {
			return fmt.Errorf("injecting into %s: %w", cfg.Filename, err)
		}
	}
	return nil
}

// VerifyAll checks that all target files contain the managed block.
func VerifyAll(fs billy.Filesystem, targets []FileConfig) []VerifyResult {
	var results []VerifyResult
	for _, cfg := range targets {
		results = append(results, VerifyFile(fs, cfg.Filename))
	}
	return results
}

// VerifyResult contains the verification result for a single file.
type VerifyResult struct {
	Filename string
	HasBlock bool
	Exists   bool
}

// VerifyFile checks if a file contains the managed block markers.
func VerifyFile(fs billy.Filesystem, filename string) VerifyResult {
	data, err := util.ReadFile(fs, filename)
	if err != nil {
		return VerifyResult{Filename: filename, HasBlock: false, Exists: false}
	}
	content := string(data)
	hasStart := strings.Contains(content, MarkerStart)
	hasEnd := strings.Contains(content, MarkerEnd)
	return VerifyResult{Filename: filename, HasBlock: hasStart && hasEnd, Exists: true}
}

// BuildBlock generates the managed content block: one row per flag in
// catalog order. Flags a does not answer show their default.
func BuildBlock(cat *catalog.Catalog, a *answers.Answers) string {
	var b strings.Builder

	b.WriteString(MarkerStart)
	b.WriteString("\n")
	b.WriteString("## Features\n\n")
	b.WriteString(fmt.Sprintf("Generated from template version %s.\n\n", cat.TemplateVersion))
	b.WriteString("| Feature | Enabled | Description |\n")
	b.WriteString("|---|---|---|\n")

	for _, f := range cat.Flags {
		value := answers.FormatChoice(f.Default) + " (default)"
		if on, known := a.Enabled(f.Name); known {
			value = answers.FormatChoice(on)
		}
		b.WriteString(fmt.Sprintf("| `%s` | %s | %s |\n", f.Name, value, f.Help))
	}

	b.WriteString("\nRe-run `ai-scaffold prune` after editing `" + answers.ContextFile + "` to drop more features.\n")
	b.WriteString(MarkerEnd)

	return b.String()
}

// Inject creates or updates the managed block in a file.
func Inject(fs billy.Filesystem, cfg FileConfig, block string) error {
	data, err := util.ReadFile(fs, cfg.Filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return atomicWrite(fs, cfg.Filename, block+"\n")
		}
		return err
	}

	content := string(data)

	startIdx := strings.Index(content, MarkerStart)
	endIdx := strings.Index(content, MarkerEnd)

	var newContent string
	if startIdx >= 0 && endIdx >= 0 && endIdx > startIdx {
		// Both markers in order: replace between them, inclusive
		endIdx += len(MarkerEnd)
		newContent = content[:startIdx] + block + content[endIdx:]
	} else {
		cleaned := content
		if startIdx >= 0 || endIdx >= 0 {
			// Malformed: one marker without the other
			cleaned = strings.Replace(cleaned, MarkerStart, "", 1)
			cleaned = strings.Replace(cleaned, MarkerEnd, "", 1)
		}
		newContent = place(cleaned, block, cfg.Placement)
	}

	return atomicWrite(fs, cfg.Filename, newContent)
}

func place(content, block string, where Placement) string {
	if where == Prepend {
		return block + "\n\n" + strings.TrimLeft(content, "\n")
	}
	return strings.TrimRight(content, "\n") + "\n\n" + block + "\n"
}

// atomicWrite writes content to a file using a temp file and rename.
func atomicWrite(fs billy.Filesystem, p, content string) error {
	if dir := path.Dir(p); dir != "." {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	tmpPath := p + ".tmp"
	if err := util.WriteFile(fs, tmpPath, []byte(content), 0644); err != nil {
		return err
	}

	if err := fs.Rename(tmpPath, p); err != nil {
		fs.Remove(tmpPath)
		return err
	}

	return nil
}
