package answers

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/company/ai-scaffold/internal/catalog"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestParseBlob_JSON(t *testing.T) {
	a, err := ParseBlob(catalog.Default(), []byte(`{"package_name": "acme", "use_genai": "no", "use_ml": true}`))
	require.NoError(t, err)

	assert.Equal(t, "acme", a.PackageName)
	assert.False(t, a.Flags[catalog.UseGenAI])
	assert.True(t, a.Flags[catalog.UseML])
}

func TestParseBlob_CookiecutterEnvelope(t *testing.T) {
	blob := `{"cookiecutter": {"package_name": "wrapped", "use_agents": "no"}, "_template": "gh:acme/ai"}`
	a, err := ParseBlob(catalog.Default(), []byte(blob))
	require.NoError(t, err)

	assert.Equal(t, "wrapped", a.PackageName)
	assert.False(t, a.Flags[catalog.UseAgents])
}

func TestParseBlob_YAML(t *testing.T) {
	a, err := ParseBlob(catalog.Default(), []byte("package_name: yml\nfeatures:\n  use_prompts: no\n"))
	require.NoError(t, err)

	assert.Equal(t, "yml", a.PackageName)
	assert.False(t, a.Flags[catalog.UsePrompts])
}

func TestParseBlob_Invalid(t *testing.T) {
	cat := catalog.Default()
	for _, blob := range []string{"", "   ", "{not json", "[1, 2]", "- a\n- b\n"} {
		_, err := ParseBlob(cat, []byte(blob))
		assert.Error(t, err, "blob %q", blob)
	}
}

func TestChain_Priority(t *testing.T) {
	cat := catalog.Default()
	fs := memfs.New()
	onDisk := Defaults(cat)
	onDisk.PackageName = "from_sidefile"
	require.NoError(t, Save(fs, &Record{Answers: onDisk}))

	blobEnv := env(map[string]string{EnvContext: `{"package_name": "from_env"}`})

	t.Run("object wins", func(t *testing.T) {
		obj := &Answers{PackageName: "from_object", Flags: map[string]bool{}}
		chain := Chain{
			ObjectLoader{Answers: obj},
			EnvBlobLoader{Catalog: cat, Var: EnvContext, Getenv: blobEnv},
			SiblingFileLoader{FS: fs},
		}
		res, err := chain.Load()
		require.NoError(t, err)
		assert.Equal(t, "from_object", res.Answers.PackageName)
		assert.Equal(t, "in-process context", res.Source)
	})

	t.Run("env blob before side-file", func(t *testing.T) {
		chain := Chain{
			ObjectLoader{},
			EnvBlobLoader{Catalog: cat, Var: EnvContext, Getenv: blobEnv},
			SiblingFileLoader{FS: fs},
		}
		res, err := chain.Load()
		require.NoError(t, err)
		assert.Equal(t, "from_env", res.Answers.PackageName)
		assert.Empty(t, res.Rejected)
	})

	t.Run("side-file last", func(t *testing.T) {
		chain := Chain{
			ObjectLoader{},
			EnvBlobLoader{Catalog: cat, Var: EnvContext, Getenv: env(nil)},
			EnvFileLoader{Catalog: cat, Var: EnvContextFile, Getenv: env(nil)},
			SiblingFileLoader{FS: fs},
		}
		res, err := chain.Load()
		require.NoError(t, err)
		assert.Equal(t, "from_sidefile", res.Answers.PackageName)
		assert.Equal(t, ContextFile, res.Source)
		assert.Empty(t, res.Rejected, "absent channels are not rejections")
	})
}

func TestChain_ReportsBrokenChannels(t *testing.T) {
	cat := catalog.Default()
	fs := memfs.New()
	require.NoError(t, Save(fs, &Record{Answers: Defaults(cat)}))

	chain := Chain{
		ObjectLoader{},
		EnvBlobLoader{Catalog: cat, Var: EnvContext, Getenv: env(map[string]string{EnvContext: `{"use_ml": `})},
		EnvFileLoader{Catalog: cat, Var: EnvContextFile, Getenv: env(nil)},
		SiblingFileLoader{FS: fs},
	}
	res, err := chain.Load()
	require.NoError(t, err)

	assert.Equal(t, ContextFile, res.Source)
	require.Len(t, res.Rejected, 1)
	assert.Equal(t, "$"+EnvContext, res.Rejected[0].Source)
	assert.Error(t, res.Rejected[0].Err)
}

func TestEnvFileLoader(t *testing.T) {
	cat := catalog.Default()
	p := filepath.Join(t.TempDir(), "answers.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"cookiecutter": {"use_ml": "no"}}`), 0644))

	a, err := EnvFileLoader{Catalog: cat, Var: EnvContextFile, Getenv: env(map[string]string{EnvContextFile: p})}.Load()
	require.NoError(t, err)
	assert.False(t, a.Flags[catalog.UseML])

	_, err = EnvFileLoader{Catalog: cat, Var: EnvContextFile, Getenv: env(map[string]string{EnvContextFile: p + ".missing"})}.Load()
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotProvided), "a dangling pointer is a real failure")
}

func TestChain_AllFail(t *testing.T) {
	cat := catalog.Default()
	chain := Chain{
		ObjectLoader{},
		EnvBlobLoader{Catalog: cat, Var: EnvContext, Getenv: env(map[string]string{EnvContext: "{broken"})},
		EnvFileLoader{Catalog: cat, Var: EnvContextFile, Getenv: env(nil)},
		SiblingFileLoader{FS: memfs.New()},
	}

	_, err := chain.Load()
	require.Error(t, err)

	var cu *ContextUnavailableError
	require.ErrorAs(t, err, &cu)
	require.Len(t, cu.Attempts, 4)
	assert.ErrorIs(t, cu.Attempts[0].Err, ErrNotProvided)
	assert.NotErrorIs(t, cu.Attempts[1].Err, ErrNotProvided)
	assert.Contains(t, err.Error(), "$"+EnvContext)
}

func TestObjectLoaderReturnsCopy(t *testing.T) {
	obj := &Answers{Flags: map[string]bool{catalog.UseML: true}}
	a, err := ObjectLoader{Answers: obj}.Load()
	require.NoError(t, err)

	a.Flags[catalog.UseML] = false
	assert.True(t, obj.Flags[catalog.UseML])
}
