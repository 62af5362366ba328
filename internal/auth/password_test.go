package auth_test

import (
	"testing"

	"taskmanager/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher(t *testing.T) {
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)

	for _, plain := range []string{"Abc12345!", "", "ünïcødé-Pass1!"} {
		hash, err := hasher.Hash(plain)
		require.NoError(t, err)
		assert.NotEqual(t, plain, hash)
		assert.True(t, hasher.Verify(plain, hash), plain)
		assert.False(t, hasher.Verify(plain+"x", hash), plain)
	}
}

func TestPasswordHasher_SaltedHashes(t *testing.T) {
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)

	first, err := hasher.Hash("Abc12345!")
	require.NoError(t, err)
	second, err := hasher.Hash("Abc12345!")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestPasswordHasher_CostFallback(t *testing.T) {
	hasher := auth.NewPasswordHasher(0)
	hash, err := hasher.Hash("Abc12345!")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestPasswordHasher_VerifyGarbageHash(t *testing.T) {
	assert.False(t, auth.NewPasswordHasher(bcrypt.MinCost).Verify("Abc12345!", "not-a-hash"))
}
