package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/dermaai/internal/middleware"
	appErr "github.com/xxxsen/dermaai/internal/pkg/errors"
	"github.com/xxxsen/dermaai/internal/pkg/response"
	"github.com/xxxsen/dermaai/internal/service"
)

type HistoryHandler struct {
	history *service.HistoryService
}

func NewHistoryHandler(history *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{history: history}
}

func (h *HistoryHandler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)
	items, err := h.history.List(c.Request.Context(), user.ID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, items)
}

func (h *HistoryHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		handleError(c, appErr.Validation("history id must be a positive integer"))
		return
	}
	user := middleware.CurrentUser(c)
	if err := h.history.Delete(c.Request.Context(), user.ID, id); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, response.Message("History item deleted successfully."))
}
