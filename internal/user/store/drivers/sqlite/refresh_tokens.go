package sqlite

import (
	"context"
	"time"

	"github.com/transcendia/gamehub/internal/user/domain"
)

type refreshTokensRepo struct {
	db dbtx
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	now := time.Now().UTC()
	query := `
		INSERT INTO refresh_tokens (id, user_id, token_hash, session_id, expires_at, revoked, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.UserID, t.TokenHash, t.SessionID, t.ExpiresAt.UTC(), t.Revoked, now, now)
	return mapConstraint(err)
}

func (r *refreshTokensRepo) GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error) {
	query := `
		SELECT id, user_id, token_hash, session_id, expires_at, revoked, created_at, updated_at
		FROM refresh_tokens
		WHERE token_hash = ?
	`

	var t domain.RefreshToken
	err := r.db.QueryRowContext(ctx, query, hash).Scan(
		&t.ID,
		&t.UserID,
		&t.TokenHash,
		&t.SessionID,
		&t.ExpiresAt,
		&t.Revoked,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	return t, nil
}

func (r *refreshTokensRepo) RevokeRefreshToken(ctx context.Context, hash string) error {
	query := `UPDATE refresh_tokens SET revoked = 1, updated_at = ? WHERE token_hash = ?`
	_, err := r.db.ExecContext(ctx, query, time.Now().UTC(), hash)
	return err
}

func (r *refreshTokensRepo) DeleteExpiredRefreshTokens(ctx context.Context) error {
	query := `DELETE FROM refresh_tokens WHERE expires_at < ?`
	_, err := r.db.ExecContext(ctx, query, time.Now().UTC())
	return err
}
