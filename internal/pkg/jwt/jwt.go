package jwt

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

type Kind string

const (
	KindAccess            Kind = "access"
	KindEmailVerification Kind = "email_verification"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

type Claims struct {
	Type Kind   `json:"typ"`
	CSRF string `json:"csrf,omitempty"`
	jwtlib.RegisteredClaims
}

// Issuer signs and verifies the two token kinds. It does not compare the
// subject with anything; callers check it against what they expect.
type Issuer struct {
	secrets map[Kind][]byte
	now     func() time.Time
}

type Option func(*Issuer)

func WithClock(now func() time.Time) Option {
	return func(i *Issuer) {
		if now != nil {
			i.now = now
		}
	}
}

// WithSecret overrides the signing key of one kind.
func WithSecret(kind Kind, secret []byte) Option {
	return func(i *Issuer) {
		if len(secret) > 0 {
			i.secrets[kind] = secret
		}
	}
}

func NewIssuer(secret []byte, opts ...Option) *Issuer {
	i := &Issuer{
		secrets: map[Kind][]byte{
			KindAccess:            secret,
			KindEmailVerification: secret,
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Issue returns a signed token and its claims. Access tokens carry a fresh
// CSRF value that the transport mirrors into a readable cookie.
func (i *Issuer) Issue(kind Kind, subject string, ttl time.Duration) (string, *Claims, error) {
	secret, ok := i.secrets[kind]
	if !ok || len(secret) == 0 {
		return "", nil, errors.New("no secret for token kind " + string(kind))
	}
	now := i.now()
	claims := &Claims{
		Type: kind,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
		},
	}
	if kind == KindAccess {
		claims.CSRF = randomHex(16)
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// Verify checks signature, algorithm, kind and expiry. A token with a valid
// signature whose exp has passed yields ErrExpiredToken; anything else
// unacceptable yields ErrInvalidToken.
func (i *Issuer) Verify(kind Kind, tokenString string) (*Claims, error) {
	secret, ok := i.secrets[kind]
	if !ok || len(secret) == 0 || tokenString == "" {
		return nil, ErrInvalidToken
	}
	claims := &Claims{}
	token, err := jwtlib.ParseWithClaims(tokenString, claims, func(token *jwtlib.Token) (interface{}, error) {
		if token.Method.Alg() != jwtlib.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, jwtlib.WithTimeFunc(i.now), jwtlib.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.Type != kind || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func randomHex(size int) string {
	buf := make([]byte, size)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
