package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/dermaai/internal/config"
	"github.com/xxxsen/dermaai/internal/middleware"
	"github.com/xxxsen/dermaai/internal/service"
)

const (
	AccessTokenCookie = "access_token_cookie"
	CSRFTokenCookie   = "csrf_access_token"
)

type CookieOptions struct {
	Domain   string
	Secure   bool
	SameSite http.SameSite
	MaxAge   time.Duration
}

func NewCookieOptions(cfg config.CookieConfig, ttl time.Duration) CookieOptions {
	opts := CookieOptions{Domain: cfg.Domain, Secure: cfg.Secure, SameSite: http.SameSiteLaxMode, MaxAge: ttl}
	switch strings.ToLower(cfg.SameSite) {
	case "strict":
		opts.SameSite = http.SameSiteStrictMode
	case "none":
		opts.SameSite = http.SameSiteNoneMode
	}
	return opts
}

// cookieSession keeps the access token in an HttpOnly cookie and its CSRF
// value in a script-readable one.
type cookieSession struct {
	c    *gin.Context
	opts CookieOptions
}

func NewSessionFactory(opts CookieOptions) middleware.SessionFactory {
	return func(c *gin.Context) service.SessionTransport {
		return &cookieSession{c: c, opts: opts}
	}
}

func (s *cookieSession) Attach(token, csrf string) {
	maxAge := int(s.opts.MaxAge / time.Second)
	s.set(AccessTokenCookie, token, maxAge, true)
	s.set(CSRFTokenCookie, csrf, maxAge, false)
}

func (s *cookieSession) Read() (string, bool) {
	token, err := s.c.Cookie(AccessTokenCookie)
	if err != nil || token == "" {
		return "", false
	}
	return token, true
}

func (s *cookieSession) Clear() {
	s.set(AccessTokenCookie, "", -1, true)
	s.set(CSRFTokenCookie, "", -1, false)
}

func (s *cookieSession) set(name, value string, maxAge int, httpOnly bool) {
	http.SetCookie(s.c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   s.opts.Domain,
		MaxAge:   maxAge,
		Secure:   s.opts.Secure,
		HttpOnly: httpOnly,
		SameSite: s.opts.SameSite,
	})
}
