package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/dermaai/internal/pkg/errcode"
	appErr "github.com/xxxsen/dermaai/internal/pkg/errors"
)

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"data": data})
}

// Error writes the failure envelope. detail mirrors message for clients that
// read the flat field.
func Error(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"error":  APIError{Code: code, Message: message},
		"detail": message,
	})
}

func Message(msg string) gin.H {
	return gin.H{"message": msg}
}

// Fail writes err's classified status and message. Unclassified errors become
// a bare 500 so internals never reach the client.
func Fail(c *gin.Context, err error) {
	e, ok := appErr.As(err)
	if !ok || e.Kind() == appErr.KindInternal {
		Error(c, http.StatusInternalServerError, appErr.ErrInternal.Code(), appErr.ErrInternal.Error())
		return
	}
	if appErr.IsTransient(err) {
		e = appErr.ErrTransient
	}
	Error(c, errcode.HTTPStatus(e.Kind()), e.Code(), e.Error())
}
