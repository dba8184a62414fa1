package index_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"flywrapper/internal/domain"
	"flywrapper/internal/index"
	"flywrapper/internal/store"
)

const pyjwtJSON = `{
  "info": {"name": "PyJWT"},
  "releases": {
    "1.7.1": [
      {"filename": "PyJWT-1.7.1-py2.py3-none-any.whl", "url": "https://files/PyJWT-1.7.1-py2.py3-none-any.whl",
       "yanked": false, "requires_python": null, "digests": {"sha256": "aa", "blake2b_256": "bb"}},
      {"filename": "PyJWT-1.7.1.tar.gz", "url": "https://files/PyJWT-1.7.1.tar.gz",
       "yanked": false, "requires_python": null, "digests": {"sha256": "cc"}}
    ],
    "2.0.0a1": [
      {"filename": "PyJWT-2.0.0a1.tar.gz", "url": "https://files/PyJWT-2.0.0a1.tar.gz", "yanked": false,
       "requires_python": ">=3.6", "digests": {}}
    ],
    "1.10.0": [
      {"filename": "PyJWT-1.10.0.tar.gz", "url": "https://files/PyJWT-1.10.0.tar.gz", "yanked": true, "digests": {}}
    ],
    "0.0.1": []
  }
}`

func TestJSON_Releases(t *testing.T) {
	var ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		switch r.URL.Path {
		case "/pypi/PyJWT/json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(pyjwtJSON))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := index.NewJSON(srv.URL+"/", srv.Client(), "fly-wrapper/0.1", zap.NewNop())
	rs, err := c.Releases(context.Background(), "PyJWT")
	require.NoError(t, err)
	assert.Equal(t, "fly-wrapper/0.1", ua)

	require.Len(t, rs, 3, "releases without files are dropped")
	assert.Equal(t, "1.7.1", rs[0].Version)
	assert.Equal(t, "1.10.0", rs[1].Version)
	assert.Equal(t, "2.0.0a1", rs[2].Version)

	assert.Len(t, rs[0].Files, 2)
	assert.False(t, rs[0].Yanked)
	assert.True(t, rs[1].Yanked)
	assert.Equal(t, ">=3.6", rs[2].RequiresPython)

	_, err = c.Releases(context.Background(), "missing")
	assert.ErrorIs(t, err, index.ErrNotFound)
}

func TestJSON_LegacyVersionsSortFirst(t *testing.T) {
	const body = `{"releases": {
  "1.0":             [{"filename": "legacy-1.0.tar.gz", "url": "u"}],
  "10.0.0-snapshot": [{"filename": "legacy-10.0.0-snapshot.tar.gz", "url": "u"}],
  "2.0.0-nightly":   [{"filename": "legacy-2.0.0-nightly.tar.gz", "url": "u"}],
  "0.9":             [{"filename": "legacy-0.9.tar.gz", "url": "u"}],
  "unknown":         [{"filename": "legacy-unknown.tar.gz", "url": "u"}]
}}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	rs, err := index.NewJSON(srv.URL, srv.Client(), "", nil).Releases(context.Background(), "legacy")
	require.NoError(t, err)
	got := make([]string, len(rs))
	for i, r := range rs {
		got[i] = r.Version
	}
	assert.Equal(t, []string{"unknown", "2.0.0-nightly", "10.0.0-snapshot", "0.9", "1.0"}, got)
}

func TestJSON_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := index.NewJSON(srv.URL, srv.Client(), "", nil).Releases(context.Background(), "x")
	require.Error(t, err)
	assert.False(t, errors.Is(err, index.ErrNotFound))
	assert.Contains(t, err.Error(), "502")
}

const rumelSimple = `<!DOCTYPE html>
<html><body>
<h1>Links for ruamel-yaml</h1>
<a href="../../packages/ruamel.yaml-0.17.21.tar.gz#sha256=abc">ruamel.yaml-0.17.21.tar.gz</a><br/>
<a href="https://files.example/ruamel.yaml-0.17.21-py3-none-any.whl#sha256=def" data-requires-python="&gt;=3">ruamel.yaml-0.17.21-py3-none-any.whl</a><br/>
<a href="/packages/ruamel.yaml-0.18.0.tar.gz" data-yanked="broken">ruamel.yaml-0.18.0.tar.gz</a><br/>
<a href="/packages/ruamel.yaml.clib-0.2.8.tar.gz">ruamel.yaml.clib-0.2.8.tar.gz</a><br/>
<a href="/packages/ruamel.yaml-0.16.0.win32.exe">ruamel.yaml-0.16.0.win32.exe</a>
</body></html>`

func TestSimple_Releases(t *testing.T) {
	var path, accept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path, accept = r.URL.Path, r.Header.Get("Accept")
		_, _ = w.Write([]byte(rumelSimple))
	}))
	defer srv.Close()

	c := index.NewSimple(srv.URL, srv.Client(), "", zap.NewNop())
	rs, err := c.Releases(context.Background(), "ruamel.yaml")
	require.NoError(t, err)
	assert.Equal(t, "/simple/ruamel-yaml/", path)
	assert.Equal(t, "text/html", accept)

	require.Len(t, rs, 2)
	assert.Equal(t, "0.17.21", rs[0].Version)
	require.Len(t, rs[0].Files, 2)
	assert.Equal(t, srv.URL+"/packages/ruamel.yaml-0.17.21.tar.gz", rs[0].Files[0].URL)
	assert.Equal(t, "abc", rs[0].Files[0].SHA256)
	assert.Equal(t, "https://files.example/ruamel.yaml-0.17.21-py3-none-any.whl", rs[0].Files[1].URL)
	assert.Equal(t, ">=3", rs[0].RequiresPython)
	assert.False(t, rs[0].Yanked)

	assert.Equal(t, "0.18.0", rs[1].Version)
	assert.True(t, rs[1].Yanked)
}

type countingClient struct {
	calls atomic.Int32
	rs    []domain.Release
	err   error
}

func (c *countingClient) Releases(context.Context, string) ([]domain.Release, error) {
	c.calls.Add(1)
	return c.rs, c.err
}

func TestCached_HitsAfterFirstFetch(t *testing.T) {
	next := &countingClient{rs: []domain.Release{{Version: "2.31.0"}}}
	c := index.NewCached(next, store.NewReleaseFileStore(t.TempDir()), "https://pypi.org|json", time.Hour, nil)

	for i := 0; i < 3; i++ {
		rs, err := c.Releases(context.Background(), "Requests")
		require.NoError(t, err)
		require.Len(t, rs, 1)
	}
	_, err := c.Releases(context.Background(), "requests")
	require.NoError(t, err)
	assert.Equal(t, int32(1), next.calls.Load(), "names share one normalized cache key")
}

func TestCached_ErrorsAreNotCached(t *testing.T) {
	next := &countingClient{err: index.ErrNotFound}
	c := index.NewCached(next, store.NewReleaseFileStore(t.TempDir()), "ns", time.Hour, nil)

	for i := 0; i < 2; i++ {
		_, err := c.Releases(context.Background(), "nope")
		assert.ErrorIs(t, err, index.ErrNotFound)
	}
	assert.Equal(t, int32(2), next.calls.Load())
}
