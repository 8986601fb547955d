package cryptox_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/transcendia/gamehub/pkg/cryptox"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := cryptox.HashPassword("hunter2hunter2")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$"))

	require.NoError(t, cryptox.VerifyPassword("hunter2hunter2", hash))
	require.ErrorIs(t, cryptox.VerifyPassword("wrong", hash), cryptox.ErrPasswordMismatch)
}

func TestHashesAreSalted(t *testing.T) {
	a, err := cryptox.HashPassword("same password")
	require.NoError(t, err)
	b, err := cryptox.HashPassword("same password")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	for _, hash := range []string{"", "plaintext", "$argon2id$v=19$garbage"} {
		require.Error(t, cryptox.VerifyPassword("whatever", hash), hash)
	}
}

func TestGenerateAndFingerprintToken(t *testing.T) {
	tok, err := cryptox.GenerateToken(cryptox.TokenSize256)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	other, err := cryptox.GenerateToken(cryptox.TokenSize256)
	require.NoError(t, err)
	require.NotEqual(t, tok, other)

	// Fingerprints are deterministic and do not reveal the token.
	require.Equal(t, cryptox.FingerprintToken(tok), cryptox.FingerprintToken(tok))
	require.NotEqual(t, tok, cryptox.FingerprintToken(tok))
}
