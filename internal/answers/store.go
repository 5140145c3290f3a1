package answers

import (
	"errors"
	"fmt"
	"os"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"gopkg.in/yaml.v3"

	"github.com/company/ai-scaffold/internal/catalog"
)

// ContextFile is the side-file persisted at the root of a generated tree.
const ContextFile = ".ai-scaffold.yml"

const generatedSeparator = "\n# Generated files: auto-generated, do not edit below this line\n"

// Record is the persisted context: the answers plus the hash of every file
// the generator wrote.
type Record struct {
	Version         int
	TemplateVersion string
	Answers         *Answers
	Generated       map[string]string
}

// recordUserFields is the part of the side-file a user may edit before
// running prune by hand.
type recordUserFields struct {
	Version         int               `yaml:"version"`
	TemplateVersion string            `yaml:"template_version,omitempty"`
	RepoName        string            `yaml:"repo_name"`
	PackageName     string            `yaml:"package_name"`
	Description     string            `yaml:"project_description,omitempty"`
	Features        map[string]string `yaml:"features"`
}

type recordGeneratedFields struct {
	Generated map[string]string `yaml:"generated,omitempty"`
}

type recordFile struct {
	recordUserFields `yaml:",inline"`
	Generated        map[string]string `yaml:"generated,omitempty"`
}

// Exists reports whether the side-file is present at the root of fs.
func Exists(fs billy.Basic) bool {
	_, err := fs.Stat(ContextFile)
	return err == nil
}

// Save writes the side-file using two passes so the generated section stays
// below a comment.
func Save(fs billy.Basic, r *Record) error {
	if r.Answers == nil {
		return fmt.Errorf("saving context: no answers")
	}
	if r.Version == 0 {
		r.Version = 1
	}

	user := recordUserFields{
		Version:         r.Version,
		TemplateVersion: r.TemplateVersion,
		RepoName:        r.Answers.RepoName,
		PackageName:     r.Answers.PackageName,
		Description:     r.Answers.Description,
		Features:        make(map[string]string, len(r.Answers.Flags)),
	}
	for name, on := range r.Answers.Flags {
		user.Features[name] = FormatChoice(on)
	}

	userBytes, err := yaml.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshaling context: %w", err)
	}

	content := append([]byte("---\n"), userBytes...)
	if len(r.Generated) > 0 {
		genBytes, marshalErr := yaml.Marshal(recordGeneratedFields{Generated: r.Generated})
		if marshalErr != nil {
			return fmt.Errorf("marshaling generated files: %w", marshalErr)
		}
		content = append(content, []byte(generatedSeparator)...)
		content = append(content, genBytes...)
	}

	tmpPath := ContextFile + ".tmp"
	if err := util.WriteFile(fs, tmpPath, content, 0644); err != nil {
		return fmt.Errorf("writing context: %w", err)
	}
	if err := fs.Rename(tmpPath, ContextFile); err != nil {
		fs.Remove(tmpPath)
		return fmt.Errorf("saving context: %w", err)
	}
	return nil
}

// Load reads and parses the side-file from the root of fs.
func Load(fs billy.Basic) (*Record, error) {
	data, err := util.ReadFile(fs, ContextFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s not found: %w", ContextFile, ErrNotProvided)
		}
		return nil, fmt.Errorf("reading context: %w", err)
	}
	return ParseRecord(data)
}

// ParseRecord decodes side-file content.
func ParseRecord(data []byte) (*Record, error) {
	var f recordFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing context: %w", err)
	}

	a := &Answers{
		RepoName:    f.RepoName,
		PackageName: f.PackageName,
		Description: f.Description,
		Flags:       make(map[string]bool, len(f.Features)),
	}
	for name, raw := range f.Features {
		on, err := ParseChoice(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing context: feature %s: %w", name, err)
		}
		a.Flags[name] = on
	}

	if f.Version == 0 {
		f.Version = 1
	}
	if f.TemplateVersion == "" {
		f.TemplateVersion = catalog.Version
	}

	return &Record{
		Version:         f.Version,
		TemplateVersion: f.TemplateVersion,
		Answers:         a,
		Generated:       f.Generated,
	}, nil
}
