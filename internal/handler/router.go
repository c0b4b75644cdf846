package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/dermaai/internal/middleware"
	"github.com/xxxsen/dermaai/internal/service"
)

type RouterDeps struct {
	Auth        *AuthHandler
	Predict     *PredictHandler
	History     *HistoryHandler
	Files       *FileHandler
	AuthService *service.AuthService
	Sessions    middleware.SessionFactory
	GuestLimit  time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	session := middleware.SessionAuth(deps.AuthService, deps.Sessions)

	auth := api.Group("/auth")
	auth.POST("/register", deps.Auth.Register)
	auth.POST("/login", deps.Auth.Login)
	auth.POST("/logout", deps.Auth.Logout)
	auth.GET("/verify-email", deps.Auth.VerifyEmail)
	auth.POST("/request-verification-token", deps.Auth.RequestVerificationToken)
	auth.GET("/me", session, deps.Auth.Me)

	api.POST("/predict/predict", session, deps.Predict.Predict)
	api.POST("/guest/guest-predict", middleware.RateLimit(deps.GuestLimit), deps.Predict.GuestPredict)

	history := api.Group("/history", session)
	history.GET("", deps.History.List)
	history.GET("/", deps.History.List)
	history.DELETE("/:id", deps.History.Delete)

	api.GET("/files/:key", deps.Files.Get)
}
