package handler

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/dermaai/internal/filestore"
	appErr "github.com/xxxsen/dermaai/internal/pkg/errors"
)

// FileHandler serves uploads kept by the local file store.
type FileHandler struct {
	store filestore.Store
}

func NewFileHandler(store filestore.Store) *FileHandler {
	return &FileHandler{store: store}
}

func (h *FileHandler) Get(c *gin.Context) {
	if h.store.Type() != "local" {
		handleError(c, appErr.ErrNotFound)
		return
	}
	key := c.Param("key")
	if key == "" || strings.ContainsAny(key, `/\`) {
		handleError(c, appErr.Validation("invalid file key"))
		return
	}
	file, err := h.store.Open(c.Request.Context(), key)
	if err != nil {
		handleError(c, err)
		return
	}
	defer file.Close()
	contentType := mime.TypeByExtension(filepath.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Header("X-Content-Type-Options", "nosniff")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, file)
}
