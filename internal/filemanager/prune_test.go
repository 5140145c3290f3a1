package filemanager

import (
	"errors"
	"testing"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/company/ai-scaffold/internal/answers"
	"github.com/company/ai-scaffold/internal/catalog"
	"github.com/company/ai-scaffold/internal/plan"
)

// generateAndPrune runs the two-phase flow: superset generation, then prune.
func generateAndPrune(t *testing.T, fs billy.Filesystem, cat *catalog.Catalog, a *answers.Answers) *PruneReport {
	t.Helper()
	_, err := NewGenerator(fs, cat).Generate(a.Superset(cat))
	require.NoError(t, err)
	return NewPruner(fs, cat).Prune(a)
}

func TestPruneGenAIOffScenario(t *testing.T) {
	cat := catalog.Default()
	a := answers.Defaults(cat)
	a.Flags[catalog.UseGenAI] = false
	a.Flags[catalog.UseAgents] = true
	a.Flags[catalog.UseML] = false
	a.Flags[catalog.LightweightMode] = false

	fs := tempFS(t)
	report := generateAndPrune(t, fs, cat, a)
	require.True(t, report.OK(), "%v", report.Failures)

	for _, gone := range []string{
		pkg + "/models/genai",
		pkg + "/api/routers/genai_router.py",
		pkg + "/models/ml",
		pkg + "/api/routers/ml_router.py",
		pkg + "/core.py",
		pkg + "/pipelines.py",
	} {
		_, err := fs.Stat(gone)
		assert.Error(t, err, gone)
	}
	for _, kept := range []string{
		pkg + "/models/agents/tool_interfaces.py",
		pkg + "/api/routers/agent_router.py",
		pkg + "/core/errors.py",
		pkg + "/pipelines/preprocessing.py",
	} {
		_, err := fs.Stat(kept)
		assert.NoError(t, err, kept)
	}

	assert.Contains(t, report.Removed, pkg+"/models/genai")
	assert.Contains(t, report.Missing, pkg+"/core.py")
}

func TestPruneLightweightScenario(t *testing.T) {
	cat := catalog.Default()
	a := answers.Defaults(cat)
	a.Flags[catalog.LightweightMode] = true

	fs := tempFS(t)
	report := generateAndPrune(t, fs, cat, a)

	assert.Empty(t, report.Removed)
	assert.Contains(t, report.Skipped, catalog.LightweightMode)

	_, err := fs.Stat(pkg + "/core.py")
	assert.NoError(t, err)
	_, err = fs.Stat(pkg + "/pipelines.py")
	assert.NoError(t, err)
	_, err = fs.Stat(pkg + "/core")
	assert.Error(t, err)
	_, err = fs.Stat(pkg + "/pipelines")
	assert.Error(t, err)
}

func TestPruneIsIdempotent(t *testing.T) {
	cat := catalog.Default()
	a := answers.Defaults(cat)
	a.Flags[catalog.UsePrompts] = false
	a.Flags[catalog.UseMessaging] = false
	a.Flags[catalog.UseClassification] = false

	fs := tempFS(t)
	first := generateAndPrune(t, fs, cat, a)
	require.NotEmpty(t, first.Removed)
	before, err := TreeDigest(fs)
	require.NoError(t, err)

	second := NewPruner(fs, cat).Prune(a)
	assert.Empty(t, second.Removed)
	assert.Empty(t, second.Collapsed)
	assert.Empty(t, second.Failures)

	after, err := TreeDigest(fs)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestPruneCollapsesOneLevel(t *testing.T) {
	cat := &catalog.Catalog{
		Flags: []catalog.Flag{{Name: "use_a", Default: true}, {Name: "use_b", Default: true}},
		Entries: []catalog.Entry{
			{Path: "parent/always.txt", Content: "keep"},
			{Path: "parent/feature/a.txt", When: catalog.Condition{catalog.On("use_a")}},
			{Path: "parent/feature/b.txt", When: catalog.Condition{catalog.On("use_b")}},
		},
		Rules: []catalog.Rule{
			{Flag: "use_a", Paths: []string{"parent/feature/a.txt"}},
			{Flag: "use_b", Paths: []string{"parent/feature/b.txt"}},
		},
	}
	a := &answers.Answers{Flags: map[string]bool{"use_a": false, "use_b": false}}

	fs := tempFS(t)
	report := generateAndPrune(t, fs, cat, a)

	assert.Equal(t, []string{"parent/feature/a.txt", "parent/feature/b.txt"}, report.Removed)
	assert.Equal(t, []string{"parent/feature"}, report.Collapsed)
	assert.Equal(t, "keep", readString(t, fs, "parent/always.txt"))
}

func TestPruneNeverRemovesRoot(t *testing.T) {
	cat := &catalog.Catalog{
		Flags:   []catalog.Flag{{Name: "use_x", Default: true}},
		Entries: []catalog.Entry{{Path: "deep/er/solo.txt", When: catalog.Condition{catalog.On("use_x")}}},
		Rules:   []catalog.Rule{{Flag: "use_x", Paths: []string{"deep/er/solo.txt"}}},
	}
	a := &answers.Answers{Flags: map[string]bool{"use_x": false}}

	fs := tempFS(t)
	report := generateAndPrune(t, fs, cat, a)

	assert.Equal(t, []string{"deep/er", "deep"}, report.Collapsed)
	empty, err := IsEmptyDir(fs)
	require.NoError(t, err)
	assert.True(t, empty)
	_, err = fs.Stat(".")
	assert.NoError(t, err, "root survives")
}

func TestPruneMissingFlagKeepsPaths(t *testing.T) {
	cat := catalog.Default()
	fs := tempFS(t)
	_, err := NewGenerator(fs, cat).Generate(answers.Defaults(cat).Superset(cat))
	require.NoError(t, err)

	// only lightweight_mode is answered
	a := &answers.Answers{Flags: map[string]bool{catalog.LightweightMode: false}}
	report := NewPruner(fs, cat).Prune(a)

	assert.Empty(t, report.Removed)
	assert.Contains(t, report.Skipped, catalog.UseGenAI)
	_, err = fs.Stat(pkg + "/models/genai/embeddings.py")
	assert.NoError(t, err)
}

func TestPruneContinuesPastFailures(t *testing.T) {
	cat := &catalog.Catalog{
		Flags:   []catalog.Flag{{Name: "use_x", Default: true}},
		Entries: []catalog.Entry{{Path: "x.txt", When: catalog.Condition{catalog.On("use_x")}}},
		Rules:   []catalog.Rule{{Flag: "use_x", Paths: []string{"{{ cookiecutter.nope }}/x.txt", "x.txt"}}},
	}
	a := &answers.Answers{Flags: map[string]bool{"use_x": false}}

	fs := tempFS(t)
	report := generateAndPrune(t, fs, cat, a)

	require.Len(t, report.Failures, 1)
	assert.Equal(t, "use_x", report.Failures[0].Flag)
	assert.False(t, report.OK())
	assert.Equal(t, []string{"x.txt"}, report.Removed)
}

// failingFS refuses to remove one path.
type failingFS struct {
	billy.Filesystem
	path string
}

var errDenied = errors.New("permission denied")

func (f *failingFS) Remove(p string) error {
	if p == f.path {
		return errDenied
	}
	return f.Filesystem.Remove(p)
}

func TestPruneContinuesPastDeleteFailure(t *testing.T) {
	cat := &catalog.Catalog{
		Flags: []catalog.Flag{{Name: "use_a", Default: true}, {Name: "use_b", Default: true}},
		Entries: []catalog.Entry{
			{Path: "keep.txt"},
			{Path: "a.txt", When: catalog.Condition{catalog.On("use_a")}},
			{Path: "b/b.txt", When: catalog.Condition{catalog.On("use_b")}},
		},
		Rules: []catalog.Rule{
			{Flag: "use_a", Paths: []string{"a.txt"}},
			{Flag: "use_b", Paths: []string{"b"}},
		},
	}
	a := &answers.Answers{Flags: map[string]bool{"use_a": false, "use_b": false}}

	fs := &failingFS{Filesystem: tempFS(t), path: "a.txt"}
	report := generateAndPrune(t, fs, cat, a)

	require.Len(t, report.Failures, 1)
	assert.Equal(t, "use_a", report.Failures[0].Flag)
	assert.Equal(t, "a.txt", report.Failures[0].Path)
	assert.ErrorIs(t, report.Failures[0], errDenied)
	assert.False(t, report.OK())

	assert.Equal(t, []string{"b"}, report.Removed, "later rules still run")
	_, err := fs.Stat("b")
	assert.Error(t, err)
	_, err = fs.Stat("a.txt")
	assert.NoError(t, err)
}

func TestPruneFinishesInterruptedCollapse(t *testing.T) {
	cat := &catalog.Catalog{
		Flags: []catalog.Flag{{Name: "use_a", Default: true}},
		Entries: []catalog.Entry{
			{Path: "keep.txt"},
			{Path: "parent/feature/a.txt", When: catalog.Condition{catalog.On("use_a")}},
		},
		Rules: []catalog.Rule{{Flag: "use_a", Paths: []string{"parent/feature/a.txt"}}},
	}
	a := &answers.Answers{Flags: map[string]bool{"use_a": false}}

	fs := tempFS(t)
	_, err := NewGenerator(fs, cat).Generate(a.Superset(cat))
	require.NoError(t, err)
	// the target went but its parents did not
	require.NoError(t, fs.Remove("parent/feature/a.txt"))

	report := NewPruner(fs, cat).Prune(a)
	require.True(t, report.OK(), "%v", report.Failures)

	assert.Empty(t, report.Removed)
	assert.Equal(t, []string{"parent/feature/a.txt"}, report.Missing)
	assert.Equal(t, []string{"parent/feature", "parent"}, report.Collapsed)

	want, err := plan.Pruned(cat, a)
	require.NoError(t, err)
	missing, orphans := plan.Diff(want, treeOf(t, fs))
	assert.Empty(t, missing)
	assert.Empty(t, orphans)
}

func TestRemovePath(t *testing.T) {
	fs := tempFS(t)
	require.NoError(t, util.WriteFile(fs, "d/e/f.txt", []byte("x"), 0644))

	existed, err := RemovePath(fs, "d")
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = RemovePath(fs, "d")
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestGeneratePruneMatchesDirect(t *testing.T) {
	cat := catalog.Default()
	names := cat.FlagNames()

	// a spread of combinations; plan.Check covers all of them in memory
	for _, mask := range []int{0, 1, 0x2AAA, 0x5555, 0x7FFF, 0x1234, 0x4321, 0x0F0F} {
		a := answers.Defaults(cat)
		for i, n := range names {
			a.Flags[n] = mask&(1<<i) != 0
		}

		fs := tempFS(t)
		report := generateAndPrune(t, fs, cat, a)
		require.True(t, report.OK(), "mask %#x: %v", mask, report.Failures)

		want, err := plan.Direct(cat, a)
		require.NoError(t, err)
		missing, orphans := plan.Diff(want, treeOf(t, fs))
		assert.Empty(t, missing, "mask %#x", mask)
		assert.Empty(t, orphans, "mask %#x", mask)
	}
}
