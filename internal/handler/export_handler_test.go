package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/joshkonopka69/fitness-sub000/pkg/errors"
)

type fakeDownloader struct {
	path       string
	filename   string
	resolveErr error
}

func (f *fakeDownloader) Resolve(string) (string, string, error) {
	return f.path, f.filename, f.resolveErr
}

func (f *fakeDownloader) Open(relPath string) (*os.File, error) {
	file, err := os.Open(relPath)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "statement no longer available")
	}
	return file, nil
}

func TestExportHandlerDownloadStreamsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "statement_anna.csv")
	require.NoError(t, os.WriteFile(path, []byte("Date,Amount\n"), 0o600))
	h := NewExportHandler(&fakeDownloader{path: path, filename: "statement_anna.csv"})

	c, rec := newCoachContext(http.MethodGet, "/exports/token", "")
	c.AddParam("token", "token")
	h.Download(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "statement_anna.csv")
	assert.Equal(t, "Date,Amount\n", rec.Body.String())
}

func TestExportHandlerExpiredToken(t *testing.T) {
	h := NewExportHandler(&fakeDownloader{resolveErr: appErrors.Clone(appErrors.ErrForbidden, "download link expired")})
	c, rec := newCoachContext(http.MethodGet, "/exports/old", "")
	h.Download(c)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestExportHandlerMissingFile(t *testing.T) {
	h := NewExportHandler(&fakeDownloader{path: filepath.Join(t.TempDir(), "gone.pdf"), filename: "gone.pdf"})
	c, rec := newCoachContext(http.MethodGet, "/exports/tok", "")
	h.Download(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportHandlerDisabled(t *testing.T) {
	h := NewExportHandler(nil)
	c, rec := newCoachContext(http.MethodGet, "/exports/tok", "")
	h.Download(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
