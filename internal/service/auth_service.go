package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/dermaai/internal/mail"
	"github.com/xxxsen/dermaai/internal/model"
	appErr "github.com/xxxsen/dermaai/internal/pkg/errors"
	"github.com/xxxsen/dermaai/internal/pkg/jwt"
	"github.com/xxxsen/dermaai/internal/pkg/password"
	"github.com/xxxsen/dermaai/internal/pkg/timeutil"
	"github.com/xxxsen/dermaai/internal/repo"
)

const cooldownCacheSize = 10000

type AuthConfig struct {
	AccessTokenTTL       time.Duration
	VerificationTokenTTL time.Duration
	ResendCooldown       time.Duration
	BcryptCost           int
	FrontendURL          string
}

type RegisterInput struct {
	FullName string
	Email    string
	Password string
}

type AuthService struct {
	users    repo.UserRepo
	counters repo.CounterRepo
	issuer   *jwt.Issuer
	mailer   mail.Sender
	cfg      AuthConfig
	now      timeutil.Clock

	cooldownMu sync.Mutex
	cooldown   *expirable.LRU[string, time.Time]
}

type AuthOption func(*AuthService)

func WithAuthClock(now timeutil.Clock) AuthOption {
	return func(s *AuthService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewAuthService(store *repo.Store, issuer *jwt.Issuer, mailer mail.Sender, cfg AuthConfig, opts ...AuthOption) *AuthService {
	s := &AuthService{
		users:    store.Users,
		counters: store.Counters,
		issuer:   issuer,
		mailer:   mailer,
		cfg:      cfg,
		now:      timeutil.Now,
	}
	if cfg.ResendCooldown > 0 {
		s.cooldown = expirable.NewLRU[string, time.Time](cooldownCacheSize, nil, cfg.ResendCooldown)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an unverified account and sends the verification mail.
// A mail failure is logged and does not undo the account.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) error {
	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return appErr.ErrAccountExists
	} else if !appErr.IsNotFound(err) {
		return err
	}
	id, err := s.counters.NextID(ctx, model.CounterUserID)
	if err != nil {
		return fmt.Errorf("allocate user id: %w", err)
	}
	hash, err := password.Hash(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return err
	}
	now := s.now()
	user := &model.User{
		ID:           id,
		FullName:     in.FullName,
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if appErr.IsConflict(err) {
			return appErr.ErrAccountExists
		}
		return err
	}
	if err := s.sendVerification(ctx, user.Email); err != nil {
		logutil.GetLogger(ctx).Warn("send verification mail failed",
			zap.String("email", user.Email), zap.Error(err))
		return nil
	}
	s.markCooldown(user.Email)
	return nil
}

// Login checks existence, then password, then verification, in that order.
func (s *AuthService) Login(ctx context.Context, session SessionTransport, email, plainPassword string) (string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if appErr.IsNotFound(err) {
			return "", appErr.ErrUnknownAccount
		}
		return "", err
	}
	if !password.Verify(plainPassword, user.PasswordHash) {
		return "", appErr.ErrBadCredentials
	}
	if !user.IsVerified {
		return "", appErr.ErrNotVerified
	}
	token, claims, err := s.issuer.Issue(jwt.KindAccess, user.Email, s.cfg.AccessTokenTTL)
	if err != nil {
		return "", err
	}
	session.Attach(token, claims.CSRF)
	return token, nil
}

func (s *AuthService) Logout(ctx context.Context, session SessionTransport) {
	session.Clear()
}

func (s *AuthService) RequestVerificationEmail(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if appErr.IsNotFound(err) {
			return appErr.ErrUnknownAccount
		}
		return err
	}
	if user.IsVerified {
		return appErr.ErrAlreadyVerified
	}
	if !s.claimCooldown(email) {
		return appErr.ErrTooMany
	}
	if err := s.sendVerification(ctx, email); err != nil {
		s.clearCooldown(email)
		return err
	}
	return nil
}

// VerifyEmail flips the account to verified. Replaying a valid token is a no-op success.
func (s *AuthService) VerifyEmail(ctx context.Context, email, token string) error {
	claims, err := s.issuer.Verify(jwt.KindEmailVerification, token)
	if err != nil || claims.Subject != email {
		return appErr.ErrInvalidOrExpiredToken
	}
	matched, err := s.users.MarkVerified(ctx, email, s.now())
	if err != nil {
		return err
	}
	if !matched {
		return appErr.ErrUserNotFound
	}
	return nil
}

// Authenticate validates the session's access token and returns its claims.
func (s *AuthService) Authenticate(session SessionTransport) (*jwt.Claims, error) {
	token, ok := session.Read()
	if !ok {
		return nil, appErr.ErrUnauthenticated
	}
	claims, err := s.issuer.Verify(jwt.KindAccess, token)
	if err != nil {
		return nil, appErr.ErrUnauthenticated
	}
	return claims, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, session SessionTransport) (*model.User, error) {
	claims, err := s.Authenticate(session)
	if err != nil {
		return nil, err
	}
	return s.userBySubject(ctx, claims.Subject)
}

// CheckCSRF compares the double-submit header against the value bound into the access token.
func (s *AuthService) CheckCSRF(session SessionTransport, header string) error {
	claims, err := s.Authenticate(session)
	if err != nil {
		return err
	}
	if header == "" || claims.CSRF == "" || subtle.ConstantTimeCompare([]byte(header), []byte(claims.CSRF)) != 1 {
		return appErr.ErrCSRFMismatch
	}
	return nil
}

func (s *AuthService) userBySubject(ctx context.Context, email string) (*model.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if appErr.IsNotFound(err) {
			return nil, appErr.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) sendVerification(ctx context.Context, email string) error {
	token, _, err := s.issuer.Issue(jwt.KindEmailVerification, email, s.cfg.VerificationTokenTTL)
	if err != nil {
		return err
	}
	msg, err := mail.VerificationMessage(email, mail.VerificationLink(s.cfg.FrontendURL, email, token), s.now())
	if err != nil {
		return err
	}
	return s.mailer.Send(ctx, msg)
}

// claimCooldown marks email as cooling down unless it already is. Only one
// caller per window gets true.
func (s *AuthService) claimCooldown(email string) bool {
	if s.cooldown == nil {
		return true
	}
	s.cooldownMu.Lock()
	defer s.cooldownMu.Unlock()
	if s.cooldown.Contains(email) {
		return false
	}
	s.cooldown.Add(email, s.now())
	return true
}

func (s *AuthService) markCooldown(email string) {
	if s.cooldown == nil {
		return
	}
	s.cooldownMu.Lock()
	s.cooldown.Add(email, s.now())
	s.cooldownMu.Unlock()
}

func (s *AuthService) clearCooldown(email string) {
	if s.cooldown == nil {
		return
	}
	s.cooldownMu.Lock()
	s.cooldown.Remove(email)
	s.cooldownMu.Unlock()
}
