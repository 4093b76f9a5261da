package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html><body><div id="luaref"><h3 id="ARDOUR" class="cls freeclass">ARDOUR</h3></div></body></html>`

func serve(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(page))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewFetcher(t *testing.T) {
	t.Run("explicit url", func(t *testing.T) {
		t.Setenv(EnvURL, "http://env.example/")
		assert.Equal(t, "http://flag.example/", NewFetcher("http://flag.example/").URL)
	})

	t.Run("environment", func(t *testing.T) {
		t.Setenv(EnvURL, "http://env.example/")
		assert.Equal(t, "http://env.example/", NewFetcher("").URL)
	})

	t.Run("default", func(t *testing.T) {
		t.Setenv(EnvURL, "")
		assert.Equal(t, DefaultURL, NewFetcher("").URL)
	})
}

func TestFetcher_Fetch(t *testing.T) {
	srv := serve(t, http.StatusOK)

	doc, err := NewFetcher(srv.URL).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Find("#luaref h3.freeclass").Length())
}

func TestFetcher_Fetch_HTTPError(t *testing.T) {
	srv := serve(t, http.StatusNotFound)

	_, err := NewFetcher(srv.URL).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestFetcher_Fetch_Canceled(t *testing.T) {
	srv := serve(t, http.StatusOK)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewFetcher(srv.URL).Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetcher_Download(t *testing.T) {
	srv := serve(t, http.StatusOK)
	dest := filepath.Join(t.TempDir(), "snapshots", "reference.html")

	require.NoError(t, NewFetcher(srv.URL).Download(context.Background(), dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, page, string(data))

	doc, err := ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "ARDOUR", doc.Find("#ARDOUR").Text())
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.html"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
