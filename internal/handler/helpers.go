package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/dermaai/internal/middleware"
	appErr "github.com/xxxsen/dermaai/internal/pkg/errors"
	"github.com/xxxsen/dermaai/internal/pkg/response"
)

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID, _ := c.Get(middleware.ContextRequestIDKey)
	fields := []zap.Field{
		zap.Any("request_id", requestID),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("kind", appErr.KindOf(err).String()),
		zap.Error(err),
	}
	if user := middleware.CurrentUser(c); user != nil {
		fields = append(fields, zap.Int64("user_id", user.ID))
	}
	switch appErr.KindOf(err) {
	case appErr.KindInternal, appErr.KindTransient, appErr.KindUpstream:
		logutil.GetLogger(c.Request.Context()).Error("request failed", fields...)
	default:
		logutil.GetLogger(c.Request.Context()).Debug("request rejected", fields...)
	}
	response.Fail(c, err)
}
