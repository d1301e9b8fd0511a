package serve

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "march.html"), []byte("<!DOCTYPE html><p>march</p>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "april.md"), []byte("# April\n\nnumbers\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore"), 0o644))

	srv := httptest.NewServer(New(dir).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestIndexListsReports(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	body := readAll(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "march.html")
	assert.Contains(t, body, "april.md")
	assert.NotContains(t, body, "notes.txt")
}

func TestIndexEscapesFileNames(t *testing.T) {
	dir := t.TempDir()
	hostile := "a<b>&c.html"
	require.NoError(t, os.WriteFile(filepath.Join(dir, hostile), []byte("<p>ok</p>"), 0o644))

	srv := httptest.NewServer(New(dir).Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	body := readAll(t, resp)
	assert.Contains(t, body, "a&lt;b&gt;&amp;c.html")
	assert.NotContains(t, body, hostile)
}

func TestServeHTMLReport(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Get(srv.URL + "/reports/march.html")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, readAll(t, resp), "march")
}

func TestServeMarkdownRendered(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Get(srv.URL + "/reports/april.md")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, readAll(t, resp), "<h1")
}

func TestServeUnknownReport(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Get(srv.URL + "/reports/missing.html")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func readAll(t *testing.T, resp *http.Response) string {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(raw)
}
