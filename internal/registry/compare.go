package registry

import (
	"fmt"
	"sort"

	version "github.com/hashicorp/go-version"
)

// Status is how a local template version relates to the published one.
type Status int

const (
	UpToDate Status = iota
	Outdated
	Ahead
)

func (s Status) String() string {
	switch s {
	case Outdated:
		return "outdated"
	case Ahead:
		return "ahead"
	}
	return "up to date"
}

// Compare relates the local template version to the remote one.
func Compare(local, remote string) (Status, error) {
	lv, err := version.NewVersion(local)
	if err != nil {
		return UpToDate, fmt.Errorf("parsing local version %q: %w", local, err)
	}
	rv, err := version.NewVersion(remote)
	if err != nil {
		return UpToDate, fmt.Errorf("parsing remote version %q: %w", remote, err)
	}
	switch {
	case lv.LessThan(rv):
		return Outdated, nil
	case lv.GreaterThan(rv):
		return Ahead, nil
	}
	return UpToDate, nil
}

// ChangesSince returns the changelog entries newer than local, newest first.
// Entries with unparseable versions are skipped.
func (m *TemplateManifest) ChangesSince(local string) []ChangelogEntry {
	lv, err := version.NewVersion(local)
	if err != nil {
		return nil
	}

	type parsed struct {
		v     *version.Version
		entry ChangelogEntry
	}
	var newer []parsed
	for _, e := range m.Changelog {
		v, err := version.NewVersion(e.Version)
		if err != nil || !v.GreaterThan(lv) {
			continue
		}
		newer = append(newer, parsed{v: v, entry: e})
	}
	sort.Slice(newer, func(i, j int) bool { return newer[i].v.GreaterThan(newer[j].v) })

	out := make([]ChangelogEntry, len(newer))
	for i, p := range newer {
		out[i] = p.entry
	}
	return out
}
