package registry

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestServer serves ../../testdata and counts the requests it answers.
func setupTestServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	testdataDir := filepath.Join("..", "..", "testdata")
	var hits atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/templates/", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		data, err := os.ReadFile(filepath.Join(testdataDir, filepath.FromSlash(r.URL.Path)))
		if err != nil {
			http.Error(w, "not found", 404)
			return
		}
		if filepath.Ext(r.URL.Path) == ".json" {
			w.Header().Set("Content-Type", "application/json")
		}
		w.Write(data)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &hits
}

func newTestClient(server *httptest.Server, opts ...Option) *Client {
	return NewClient(append([]Option{WithBaseURL(server.URL), WithHTTPClient(server.Client())}, opts...)...)
}

func TestFetchIndex(t *testing.T) {
	server, hits := setupTestServer(t)
	client := newTestClient(server)

	ctx := context.Background()
	idx, err := client.FetchIndex(ctx)
	require.NoError(t, err)

	assert.Equal(t, IndexFormat, idx.Version)
	meta, ok := idx.Templates["ai-service"]
	require.True(t, ok, "index should contain ai-service")
	assert.Equal(t, "1.2.0", meta.Version)

	_, err = client.FetchIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load(), "second call is served from the cache")
}

func TestFetchTemplate(t *testing.T) {
	server, _ := setupTestServer(t)
	client := newTestClient(server)

	manifest, err := client.FetchTemplate(context.Background(), "ai-service")
	require.NoError(t, err)

	assert.Equal(t, "AI Service", manifest.Name)
	assert.Len(t, manifest.Flags, 15)
	assert.Len(t, manifest.Changelog, 3)
}

func TestChangelog(t *testing.T) {
	server, _ := setupTestServer(t)
	client := newTestClient(server)

	data, err := client.Changelog(context.Background(), "ai-service")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# Changelog"))
}

func TestCheckOutdated(t *testing.T) {
	server, _ := setupTestServer(t)
	client := newTestClient(server)

	u, err := client.Check(context.Background(), "ai-service", "1.0.0")
	require.NoError(t, err)

	assert.Equal(t, Outdated, u.Status)
	assert.Equal(t, "1.2.0", u.Latest)
	require.NoError(t, u.ChangesErr)
	require.Len(t, u.Changes, 2)
	assert.Equal(t, "1.2.0", u.Changes[0].Version)
	assert.Equal(t, "1.1.0", u.Changes[1].Version)
}

func TestCheckUpToDateSkipsManifest(t *testing.T) {
	server, hits := setupTestServer(t)
	client := newTestClient(server)

	u, err := client.Check(context.Background(), "ai-service", "1.2.0")
	require.NoError(t, err)

	assert.Equal(t, UpToDate, u.Status)
	assert.Empty(t, u.Changes)
	assert.Equal(t, int32(1), hits.Load(), "only the index is fetched")
}

func TestCheckErrors(t *testing.T) {
	server, hits := setupTestServer(t)
	client := newTestClient(server)
	ctx := context.Background()

	_, err := client.Check(ctx, "ai-service", "dev")
	assert.ErrorIs(t, err, ErrInvalidLocalVersion)
	assert.Zero(t, hits.Load(), "a bad local version fails before any request")

	_, err = client.Check(ctx, "ai-nothing", "1.0.0")
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestCheckWithoutChangelog(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/templates/index.json" {
			http.Error(w, "not found", 404)
			return
		}
		json.NewEncoder(w).Encode(Index{Version: IndexFormat, Templates: map[string]TemplateMeta{
			"ai-service": {Version: "2.0.0"},
		}})
	}))
	defer server.Close()

	u, err := newTestClient(server).Check(context.Background(), "ai-service", "1.0.0")
	require.NoError(t, err)
	assert.Equal(t, Outdated, u.Status)
	assert.Empty(t, u.Changes)

	var fetchErr *FetchError
	require.ErrorAs(t, u.ChangesErr, &fetchErr)
	assert.Equal(t, http.StatusNotFound, fetchErr.Status)
}

func TestDecodeRejectsBadVersions(t *testing.T) {
	tests := []struct {
		name string
		body any
	}{
		{"unsupported format", Index{Version: 2}},
		{"template version", Index{Version: IndexFormat, Templates: map[string]TemplateMeta{"ai-service": {Version: "latest"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(tt.body)
			}))
			defer server.Close()

			_, err := newTestClient(server).FetchIndex(context.Background())
			require.Error(t, err)
		})
	}

	_, err := decodeManifest("ai-service", []byte(`{"version": "1.0.0", "changelog": [{"version": "soon"}]}`))
	var versionErr *VersionError
	require.ErrorAs(t, err, &versionErr)
	assert.Equal(t, "soon", versionErr.Version)
}

func TestStaleDocumentRevalidated(t *testing.T) {
	var conditional atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") == `"v1"` {
			conditional.Add(1)
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		json.NewEncoder(w).Encode(Index{Version: IndexFormat, Templates: map[string]TemplateMeta{
			"ai-service": {Version: "1.2.0"},
		}})
	}))
	defer server.Close()

	client := newTestClient(server)
	now := time.Now()
	client.cache.now = func() time.Time { return now }

	_, err := client.FetchIndex(context.Background())
	require.NoError(t, err)

	now = now.Add(10 * time.Minute)
	idx, err := client.FetchIndex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.2.0", idx.Templates["ai-service"].Version)
	assert.Equal(t, int32(1), conditional.Load())
}

func TestHTMLResponseRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>login</html>"))
	}))
	defer server.Close()

	_, err := newTestClient(server).FetchIndex(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTML")
}

func TestAuthToken(t *testing.T) {
	var received string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(Index{Version: IndexFormat, Templates: map[string]TemplateMeta{}})
	}))
	defer server.Close()

	_, err := newTestClient(server, WithToken("test-token-123")).FetchIndex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer test-token-123", received)
}

func TestHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", 404)
	}))
	defer server.Close()

	_, err := newTestClient(server).FetchIndex(context.Background())
	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr), "got %v", err)
	assert.Equal(t, http.StatusNotFound, fetchErr.Status)
}

func TestDocumentSizeLimit(t *testing.T) {
	oversized := strings.Repeat("x", maxDocumentSize+1024)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(oversized))
	}))
	defer server.Close()

	data, err := newTestClient(server).Changelog(context.Background(), "ai-service")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(data), maxDocumentSize)
}
