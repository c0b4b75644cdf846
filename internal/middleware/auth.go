package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/dermaai/internal/model"
	"github.com/xxxsen/dermaai/internal/pkg/response"
	"github.com/xxxsen/dermaai/internal/service"
)

const (
	ContextUserKey = "user"
	HeaderCSRF     = "X-CSRF-Token"
)

type SessionFactory func(c *gin.Context) service.SessionTransport

// SessionAuth resolves the session's user and stores it under ContextUserKey.
// State-changing methods must also echo the CSRF value in HeaderCSRF.
func SessionAuth(auth *service.AuthService, sessions SessionFactory) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions(c)
		user, err := auth.CurrentUser(c.Request.Context(), session)
		if err != nil {
			response.Fail(c, err)
			c.Abort()
			return
		}
		if !safeMethod(c.Request.Method) {
			if err := auth.CheckCSRF(session, c.GetHeader(HeaderCSRF)); err != nil {
				response.Fail(c, err)
				c.Abort()
				return
			}
		}
		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user stored by SessionAuth.
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*model.User)
	return user
}

func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
