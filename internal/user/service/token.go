package service

import (
	"context"
	"errors"
	"time"

	"github.com/transcendia/gamehub/internal/user/domain"
	"github.com/transcendia/gamehub/internal/user/store"
	"github.com/transcendia/gamehub/pkg/cryptox"
	"github.com/transcendia/gamehub/pkg/idx"
	"github.com/transcendia/gamehub/pkg/jwtx"
	"github.com/transcendia/gamehub/pkg/slogx"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidRefresh     = errors.New("invalid_refresh_token")
)

// TokenService issues signed access tokens and opaque, rotated refresh
// tokens. Refresh tokens are stored by SHA-256 fingerprint only.
type TokenService struct {
	Signer     *jwtx.Signer
	Store      store.Store
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Issue mints a fresh token pair for an authenticated user. When
// sessionID is empty a new session is started.
func (s *TokenService) Issue(ctx context.Context, user domain.User, sessionID string) (*domain.TokenPair, error) {
	now := time.Now()

	if sessionID == "" {
		sessionID = idx.New().String()
	}

	accessToken, err := s.signAccess(user, sessionID, now)
	if err != nil {
		return nil, err
	}

	refreshOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}

	rt := domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    user.ID,
		TokenHash: cryptox.FingerprintToken(refreshOpaque),
		SessionID: sessionID,
		ExpiresAt: now.Add(s.RefreshTTL),
		Revoked:   false,
	}

	if err := s.Store.RefreshTokens().CreateRefreshToken(ctx, rt); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshOpaque,
		ExpiresIn:    s.AccessTTL,
	}, nil
}

// Refresh exchanges a valid refresh token for a new pair. The old
// token is revoked and a replacement issued in the same transaction,
// so a replayed refresh token fails after first use.
func (s *TokenService) Refresh(ctx context.Context, refreshOpaque string) (*domain.TokenPair, error) {
	now := time.Now()
	l := slogx.FromContext(ctx)

	fp := cryptox.FingerprintToken(refreshOpaque)
	rt, err := s.Store.RefreshTokens().GetRefreshTokenByHash(ctx, fp)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}

	if rt.Revoked || now.After(rt.ExpiresAt) {
		return nil, ErrInvalidRefresh
	}

	user, err := s.Store.Users().GetUserByID(ctx, rt.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}

	accessToken, err := s.signAccess(user, rt.SessionID, now)
	if err != nil {
		return nil, err
	}

	newOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}

	newRT := domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    user.ID,
		TokenHash: cryptox.FingerprintToken(newOpaque),
		SessionID: rt.SessionID,
		ExpiresAt: now.Add(s.RefreshTTL),
		Revoked:   false,
	}

	if err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.RefreshTokens().RevokeRefreshToken(ctx, fp); err != nil {
			return err
		}
		return tx.RefreshTokens().CreateRefreshToken(ctx, newRT)
	}); err != nil {
		return nil, err
	}

	l.Debug("refresh token rotated", "user_id", user.ID, "session_id", rt.SessionID)

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newOpaque,
		ExpiresIn:    s.AccessTTL,
	}, nil
}

// Revoke invalidates a single refresh token by its opaque value.
// Unknown tokens are treated as already revoked.
func (s *TokenService) Revoke(ctx context.Context, refreshOpaque string) error {
	fp := cryptox.FingerprintToken(refreshOpaque)
	err := s.Store.RefreshTokens().RevokeRefreshToken(ctx, fp)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}

// PurgeExpired removes refresh tokens past their expiry. Run
// periodically by the housekeeping loop.
func (s *TokenService) PurgeExpired(ctx context.Context) error {
	return s.Store.RefreshTokens().DeleteExpiredRefreshTokens(ctx)
}

func (s *TokenService) signAccess(u domain.User, sessionID string, now time.Time) (string, error) {
	claims := jwtx.NewAccessClaims(u.ID, sessionID, u.Username, s.Issuer, s.AccessTTL, now)
	return s.Signer.Sign(claims)
}
