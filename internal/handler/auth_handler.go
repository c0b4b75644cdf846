package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/xxxsen/dermaai/internal/middleware"
	appErr "github.com/xxxsen/dermaai/internal/pkg/errors"
	"github.com/xxxsen/dermaai/internal/pkg/response"
	"github.com/xxxsen/dermaai/internal/service"
)

type AuthHandler struct {
	auth     *service.AuthService
	sessions middleware.SessionFactory
}

func NewAuthHandler(auth *service.AuthService, sessions middleware.SessionFactory) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions}
}

type registerRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r registerRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FullName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 128)),
	)
}

type loginRequest struct {
	Email    string `json:"email" form:"username"`
	Password string `json:"password" form:"password"`
}

func (r loginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

type emailRequest struct {
	Email string `json:"email" form:"email"`
}

func (r emailRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

type verifyRequest struct {
	Email string `form:"email"`
	Token string `form:"token"`
}

func (r verifyRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Token, validation.Required),
	)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, appErr.ErrInvalid)
		return
	}
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)
	if err := req.Validate(); err != nil {
		handleError(c, appErr.Validation(err.Error()))
		return
	}
	err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, response.Message("Registration successful. Please check your email to verify your account."))
}

// Login accepts the OAuth2 password form (username, password) or a JSON body.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	var err error
	if strings.HasPrefix(c.ContentType(), "application/json") {
		err = c.ShouldBindJSON(&req)
	} else {
		err = c.ShouldBind(&req)
	}
	if err != nil {
		handleError(c, appErr.ErrInvalid)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := req.Validate(); err != nil {
		handleError(c, appErr.Validation(err.Error()))
		return
	}
	token, err := h.auth.Login(c.Request.Context(), h.sessions(c), req.Email, req.Password)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"access_token": token})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.auth.Logout(c.Request.Context(), h.sessions(c))
	response.Success(c, response.Message("Successfully logged out"))
}

func (h *AuthHandler) Me(c *gin.Context) {
	response.Success(c, middleware.CurrentUser(c))
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	req := verifyRequest{
		Email: strings.TrimSpace(c.Query("email")),
		Token: strings.TrimSpace(c.Query("token")),
	}
	if err := req.Validate(); err != nil {
		handleError(c, appErr.Validation(err.Error()))
		return
	}
	if err := h.auth.VerifyEmail(c.Request.Context(), req.Email, req.Token); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, response.Message("Email verified successfully"))
}

func (h *AuthHandler) RequestVerificationToken(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, appErr.ErrInvalid)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := req.Validate(); err != nil {
		handleError(c, appErr.Validation(err.Error()))
		return
	}
	if err := h.auth.RequestVerificationEmail(c.Request.Context(), req.Email); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, response.Message("A new verification email has been sent to "+req.Email+"."))
}
