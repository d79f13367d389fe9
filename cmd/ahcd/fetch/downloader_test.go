package fetch

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zipArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func newTestDownloader(t *testing.T, baseURL string) *Downloader {
	t.Helper()
	dir := t.TempDir()
	return NewDownloader(Options{
		DownloadDir: filepath.Join(dir, "downloaded_files"),
		ExtractDir:  filepath.Join(dir, "extracted_data"),
		Retries:     0,
		Timeout:     5 * time.Second,
		BaseURL:     baseURL,
	}, zerolog.Nop())
}

func TestEnsureDownloadsExtractsAndRenames(t *testing.T) {
	archive := zipArchive(t, map[string]string{"NAMCS73": "record\n"})
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		assert.Equal(t, "/namcs_public_use_files/namcs73.exe", r.URL.Path)
		w.Write(archive)
	}))
	defer srv.Close()

	d := newTestDownloader(t, srv.URL+"/")

	path, err := d.Ensure(context.Background(), 1973, false)
	require.NoError(t, err)
	assert.Equal(t, d.DatasetPath(1973), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "record\n", string(data))
	assert.NoFileExists(t, filepath.Join(d.downloadDir, "NAMCS_DATA_1973.zip"))

	_, err = d.Ensure(context.Background(), 1973, false)
	require.NoError(t, err)
	assert.Equal(t, int32(1), requests.Load())

	_, err = d.Ensure(context.Background(), 1973, true)
	require.NoError(t, err)
	assert.Equal(t, int32(2), requests.Load())
}

func TestDownloadHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	d := newTestDownloader(t, srv.URL+"/")
	_, err := d.Download(context.Background(), 2015)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestDownloadUnavailableYear(t *testing.T) {
	d := newTestDownloader(t, "http://127.0.0.1:1/")
	_, err := d.Download(context.Background(), 1974)
	assert.Error(t, err)
}

func TestExtractRejectsPathEscape(t *testing.T) {
	d := newTestDownloader(t, "")
	path := filepath.Join(t.TempDir(), "evil.zip")
	require.NoError(t, os.WriteFile(path, zipArchive(t, map[string]string{"../evil": "x"}), 0o644))

	assert.Error(t, d.Extract(1973, path))
	assert.NoFileExists(t, filepath.Join(filepath.Dir(d.extractDir), "evil"))
}

func TestRenameAlternativeName(t *testing.T) {
	d := newTestDownloader(t, "")
	require.NoError(t, os.MkdirAll(d.extractDir, os.ModePerm))
	require.NoError(t, os.WriteFile(filepath.Join(d.extractDir, "NAM85"), []byte("x"), 0o644))

	path, err := d.Rename(1985)
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Equal(t, "1985_NAMCS", filepath.Base(path))

	_, err = d.Rename(1989)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
