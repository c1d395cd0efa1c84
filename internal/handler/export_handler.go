package handler

import (
	"fmt"
	"net/http"
	"os"
	"path"

	"github.com/gin-gonic/gin"

	appErrors "github.com/joshkonopka69/fitness-sub000/pkg/errors"
	"github.com/joshkonopka69/fitness-sub000/pkg/response"
)

type exportDownloader interface {
	Resolve(token string) (relPath, filename string, err error)
	Open(relPath string) (*os.File, error)
}

var exportContentTypes = map[string]string{
	".csv": "text/csv; charset=utf-8",
	".pdf": "application/pdf",
}

// ExportHandler streams generated statements behind signed tokens.
type ExportHandler struct {
	exports exportDownloader
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports exportDownloader) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Download godoc
// @Summary Download a client statement via signed token
// @Tags Exports
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /exports/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "statement exports are disabled"))
		return
	}
	relPath, filename, err := h.exports.Resolve(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exports.Open(relPath)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Internal(err, "failed to read statement"))
		return
	}
	contentType, ok := exportContentTypes[path.Ext(filename)]
	if !ok {
		contentType = "application/octet-stream"
	}
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, info.Size(), contentType, file, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=\"%s\"", filename),
	})
}
