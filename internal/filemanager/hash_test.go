package filemanager

import (
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/company/ai-scaffold/internal/answers"
)

func TestHashBytes(t *testing.T) {
	hash := HashBytes([]byte("hello world"))
	if !strings.HasPrefix(hash, "sha256:") {
		t.Errorf("hash should start with sha256: prefix, got %q", hash)
	}
	if len(hash) != 71 { // "sha256:" (7) + 64 hex chars
		t.Errorf("hash length = %d, want 71", len(hash))
	}

	assert.Equal(t, hash, HashBytes([]byte("hello world")))
	assert.NotEqual(t, hash, HashBytes([]byte("hello world!")))
}

func TestHashFile(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "dir/test.txt", []byte("hello world"), 0644))

	hash, err := HashFile(fs, "dir/test.txt")
	require.NoError(t, err)
	assert.Equal(t, HashBytes([]byte("hello world")), hash)
}

func TestHashFileNotFound(t *testing.T) {
	_, err := HashFile(memfs.New(), "nonexistent/file")
	assert.Error(t, err)
}

func TestHashTreeSkipsBookkeepingAndTooling(t *testing.T) {
	fs := tempFS(t)
	require.NoError(t, util.WriteFile(fs, "a.md", []byte("file a"), 0644))
	require.NoError(t, util.WriteFile(fs, "sub/b.md", []byte("file b"), 0644))
	require.NoError(t, util.WriteFile(fs, answers.ContextFile, []byte("version: 1\n"), 0644))
	require.NoError(t, util.WriteFile(fs, "sub/c.md.tmp", []byte("partial"), 0644))
	require.NoError(t, util.WriteFile(fs, ".git/HEAD", []byte("ref: main\n"), 0644))
	require.NoError(t, util.WriteFile(fs, "sub/__pycache__/b.pyc", []byte("x"), 0644))

	hashes, err := HashTree(fs)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"a.md":     HashBytes([]byte("file a")),
		"sub/b.md": HashBytes([]byte("file b")),
	}, hashes)
}

func TestTreeDigest(t *testing.T) {
	fs := tempFS(t)
	require.NoError(t, util.WriteFile(fs, "a.md", []byte("file a"), 0644))
	require.NoError(t, util.WriteFile(fs, "b.md", []byte("file b"), 0644))

	d1, err := TreeDigest(fs)
	require.NoError(t, err)
	d2, err := TreeDigest(fs)
	require.NoError(t, err)
	assert.Equal(t, d1, d2, "digest should be deterministic")

	require.NoError(t, util.WriteFile(fs, "a.md", []byte("modified"), 0644))
	d3, err := TreeDigest(fs)
	require.NoError(t, err)
	assert.NotEqual(t, d1, d3)

	// the side-file does not take part
	require.NoError(t, util.WriteFile(fs, answers.ContextFile, []byte("x"), 0644))
	d4, err := TreeDigest(fs)
	require.NoError(t, err)
	assert.Equal(t, d3, d4)
}
