package registry

import (
	"encoding/json"
	"fmt"

	version "github.com/hashicorp/go-version"
)

// IndexFormat is the index.json layout this client understands.
const IndexFormat = 1

// Index is templates/index.json: the latest published version of every
// template.
type Index struct {
	Version     int                     `json:"version"`
	GeneratedAt string                  `json:"generated_at"`
	Templates   map[string]TemplateMeta `json:"templates"`
}

// TemplateMeta is one template's entry in the index.
type TemplateMeta struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`
	Hash        string `json:"hash"`
}

// TemplateManifest is templates/<name>/template.json.
type TemplateManifest struct {
	Name        string           `json:"name"`
	Version     string           `json:"version"`
	Description string           `json:"description"`
	Flags       []string         `json:"flags"`
	Changelog   []ChangelogEntry `json:"changelog"`
}

// ChangelogEntry describes one released template version.
type ChangelogEntry struct {
	Version string   `json:"version"`
	Date    string   `json:"date"`
	Notes   []string `json:"notes"`
}

// VersionError is a published version that does not parse.
type VersionError struct {
	Where   string
	Version string
	Err     error
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("%s: invalid version %q: %v", e.Where, e.Version, e.Err)
}

func (e *VersionError) Unwrap() error { return e.Err }

func decodeIndex(data []byte) (*Index, error) {
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parsing template index: %w", err)
	}
	if idx.Version != IndexFormat {
		return nil, fmt.Errorf("template index format %d is not supported (want %d)", idx.Version, IndexFormat)
	}
	for name, meta := range idx.Templates {
		if _, err := version.NewVersion(meta.Version); err != nil {
			return nil, &VersionError{Where: "index entry " + name, Version: meta.Version, Err: err}
		}
	}
	return &idx, nil
}

func decodeManifest(name string, data []byte) (*TemplateManifest, error) {
	var m TemplateManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing template manifest for %s: %w", name, err)
	}
	if _, err := version.NewVersion(m.Version); err != nil {
		return nil, &VersionError{Where: name + " manifest", Version: m.Version, Err: err}
	}
	for _, e := range m.Changelog {
		if _, err := version.NewVersion(e.Version); err != nil {
			return nil, &VersionError{Where: name + " changelog", Version: e.Version, Err: err}
		}
	}
	return &m, nil
}
