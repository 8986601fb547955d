package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/transcendia/gamehub/internal/user/domain"
	"github.com/transcendia/gamehub/pkg/idx"
)

func seedUser(t *testing.T, svc *TokenService) domain.User {
	t.Helper()

	user := domain.User{
		ID:           idx.New().String(),
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
	}
	require.NoError(t, svc.Store.Users().CreateUser(context.Background(), user))
	return user
}

func TestTokenIssueAndRefresh(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newTestTokenService(t, st)
	user := seedUser(t, svc)

	pair, err := svc.Issue(ctx, user, "")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.Equal(t, svc.AccessTTL, pair.ExpiresIn)

	next, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	// Rotation makes the first refresh token single-use.
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefresh)

	// The rotated token still works.
	_, err = svc.Refresh(ctx, next.RefreshToken)
	require.NoError(t, err)
}

func TestTokenRevoke(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newTestTokenService(t, st)
	user := seedUser(t, svc)

	pair, err := svc.Issue(ctx, user, "")
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, pair.RefreshToken))

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefresh)

	// Revoking twice or revoking garbage is not an error.
	require.NoError(t, svc.Revoke(ctx, pair.RefreshToken))
	require.NoError(t, svc.Revoke(ctx, "never-issued"))
}

func TestRefreshRejectsUnknownToken(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newTestTokenService(t, st)

	_, err := svc.Refresh(ctx, "never-issued")
	require.ErrorIs(t, err, ErrInvalidRefresh)
}
