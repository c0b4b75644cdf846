package jwt

import (
	"strings"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func TestVerificationTokenExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	issuer := NewIssuer([]byte("secret"), WithClock(clock.Now))

	token, claims, err := issuer.Issue(KindEmailVerification, "a@example.com", 30*time.Minute)
	require.NoError(t, err)
	require.Empty(t, claims.CSRF)

	clock.now = clock.now.Add(29 * time.Minute)
	got, err := issuer.Verify(KindEmailVerification, token)
	require.NoError(t, err)
	require.Equal(t, "a@example.com", got.Subject)

	clock.now = clock.now.Add(2 * time.Minute)
	_, err = issuer.Verify(KindEmailVerification, token)
	require.ErrorIs(t, err, ErrExpiredToken)
}

func TestAccessTokenCarriesCSRF(t *testing.T) {
	issuer := NewIssuer([]byte("secret"))
	token, claims, err := issuer.Issue(KindAccess, "a@example.com", time.Hour)
	require.NoError(t, err)
	require.Len(t, claims.CSRF, 32)

	got, err := issuer.Verify(KindAccess, token)
	require.NoError(t, err)
	require.Equal(t, claims.CSRF, got.CSRF)
	require.Equal(t, "a@example.com", got.Subject)
}

func TestVerifyRejectsTampering(t *testing.T) {
	issuer := NewIssuer([]byte("secret"))
	token, _, err := issuer.Issue(KindAccess, "a@example.com", time.Hour)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	forged, _, err := NewIssuer([]byte("other")).Issue(KindAccess, "b@example.com", time.Hour)
	require.NoError(t, err)
	forgedParts := strings.Split(forged, ".")
	tampered := parts[0] + "." + forgedParts[1] + "." + parts[2]

	_, err = issuer.Verify(KindAccess, tampered)
	require.ErrorIs(t, err, ErrInvalidToken)
	_, err = issuer.Verify(KindAccess, forged)
	require.ErrorIs(t, err, ErrInvalidToken)
	_, err = issuer.Verify(KindAccess, "garbage")
	require.ErrorIs(t, err, ErrInvalidToken)
	_, err = issuer.Verify(KindAccess, "")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsOtherKind(t *testing.T) {
	issuer := NewIssuer([]byte("secret"))
	access, _, err := issuer.Issue(KindAccess, "a@example.com", time.Hour)
	require.NoError(t, err)
	_, err = issuer.Verify(KindEmailVerification, access)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestDistinctVerificationSecret(t *testing.T) {
	issuer := NewIssuer([]byte("access-secret"), WithSecret(KindEmailVerification, []byte("mail-secret")))
	token, _, err := issuer.Issue(KindEmailVerification, "a@example.com", time.Hour)
	require.NoError(t, err)

	shared := NewIssuer([]byte("access-secret"))
	_, err = shared.Verify(KindEmailVerification, token)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Verify(KindEmailVerification, token)
	require.NoError(t, err)
}

func TestVerifyRejectsUnsignedAlg(t *testing.T) {
	claims := &Claims{
		Type: KindAccess,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   "a@example.com",
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, claims).SignedString(jwtlib.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = NewIssuer([]byte("secret")).Verify(KindAccess, token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRequiresExpiry(t *testing.T) {
	claims := &Claims{Type: KindAccess, RegisteredClaims: jwtlib.RegisteredClaims{Subject: "a@example.com"}}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = NewIssuer([]byte("secret")).Verify(KindAccess, token)
	require.ErrorIs(t, err, ErrInvalidToken)
}
