package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/transcendia/gamehub/internal/user/store"
	"github.com/transcendia/gamehub/internal/user/store/drivers/sqlite"
	"github.com/transcendia/gamehub/pkg/jwtx"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func newTestTokenService(t *testing.T, st store.Store) *TokenService {
	t.Helper()

	_, priv, err := jwtx.GenerateKey()
	require.NoError(t, err)

	return &TokenService{
		Signer:     jwtx.NewSigner("test-key", priv),
		Store:      st,
		Issuer:     "test-issuer",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	}
}

func mustUserID(t *testing.T, st store.Store, username string) string {
	t.Helper()

	user, err := st.Users().GetUserByUsername(context.Background(), username)
	require.NoError(t, err)
	return user.ID
}

func newTestAuthService(t *testing.T, st store.Store) *AuthService {
	t.Helper()

	tokens := newTestTokenService(t, st)
	return &AuthService{
		Store:  st,
		Tokens: tokens,
		TwoFA: &TwoFAService{
			Store:  st,
			Tokens: tokens,
			Issuer: "test-issuer",
		},
	}
}
