package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/dermaai/internal/middleware"
	appErr "github.com/xxxsen/dermaai/internal/pkg/errors"
	"github.com/xxxsen/dermaai/internal/pkg/response"
	"github.com/xxxsen/dermaai/internal/service"
)

type PredictHandler struct {
	predictions *service.PredictionService
	maxBytes    int64
}

func NewPredictHandler(predictions *service.PredictionService, maxBytes int64) *PredictHandler {
	return &PredictHandler{predictions: predictions, maxBytes: maxBytes}
}

func (h *PredictHandler) Predict(c *gin.Context) {
	in, err := h.readUpload(c)
	if err != nil {
		handleError(c, err)
		return
	}
	result, err := h.predictions.Predict(c.Request.Context(), middleware.CurrentUser(c), in)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *PredictHandler) GuestPredict(c *gin.Context) {
	in, err := h.readUpload(c)
	if err != nil {
		handleError(c, err)
		return
	}
	result, err := h.predictions.GuestPredict(c.Request.Context(), in)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *PredictHandler) readUpload(c *gin.Context) (service.PredictInput, error) {
	if h.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+1024*1024)
	}
	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return service.PredictInput{}, appErr.Validation("file exceeds " + formatUploadLimit(h.maxBytes))
		}
		return service.PredictInput{}, appErr.Validation("file is required")
	}
	if h.maxBytes > 0 && file.Size > h.maxBytes {
		return service.PredictInput{}, appErr.Validation("file exceeds " + formatUploadLimit(h.maxBytes))
	}
	opened, err := file.Open()
	if err != nil {
		return service.PredictInput{}, appErr.Validation("failed to open file")
	}
	defer opened.Close()
	data, err := io.ReadAll(opened)
	if err != nil {
		return service.PredictInput{}, appErr.Validation("failed to read file")
	}
	return service.PredictInput{Filename: file.Filename, Data: data}, nil
}

func formatUploadLimit(limit int64) string {
	mb := limit / (1024 * 1024)
	if mb <= 0 {
		return strconv.FormatInt(limit, 10) + " bytes"
	}
	return strconv.FormatInt(mb, 10) + "MB"
}
