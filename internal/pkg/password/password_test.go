package password

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	digest, err := Hash("correct horse", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEqual(t, "correct horse", digest)
	require.True(t, Verify("correct horse", digest))
	require.False(t, Verify("battery staple", digest))
}

func TestHashIsSalted(t *testing.T) {
	a, err := Hash("same", bcrypt.MinCost)
	require.NoError(t, err)
	b, err := Hash("same", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
	require.True(t, Verify("same", a))
	require.True(t, Verify("same", b))
}

func TestVerifyMalformedDigest(t *testing.T) {
	require.False(t, Verify("anything", ""))
	require.False(t, Verify("anything", "not-a-bcrypt-hash"))
	require.False(t, Verify("anything", "$2a$10$short"))
}

func TestHashDefaultCost(t *testing.T) {
	digest, err := Hash("pw", 0)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(digest))
	require.NoError(t, err)
	require.Equal(t, bcrypt.DefaultCost, cost)
}
