package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/transcendia/gamehub/internal/user/domain"
)

type profilesRepo struct {
	db dbtx
}

func (r *profilesRepo) GetProfile(ctx context.Context, userID string) (domain.Profile, error) {
	query := `
		SELECT user_id, otp_secret, verified_2fa, third_party, created_at, updated_at
		FROM user_profiles
		WHERE user_id = ?
	`

	var (
		p      domain.Profile
		secret sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID,
		&secret,
		&p.Verified2FA,
		&p.ThirdParty,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return domain.Profile{}, mapNotFound(err)
	}
	p.OTPSecret = mapNullString(secret)
	return p, nil
}

func (r *profilesRepo) CreateProfile(ctx context.Context, p domain.Profile) error {
	now := time.Now().UTC()
	query := `
		INSERT INTO user_profiles (user_id, otp_secret, verified_2fa, third_party, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		p.UserID, mapOptionalString(p.OTPSecret), p.Verified2FA, p.ThirdParty, now, now)
	return mapConstraint(err)
}

func (r *profilesRepo) UpdateOTPSecret(ctx context.Context, userID, secret string) error {
	query := `UPDATE user_profiles SET otp_secret = ?, updated_at = ? WHERE user_id = ?`
	_, err := r.db.ExecContext(ctx, query, secret, time.Now().UTC(), userID)
	return err
}

func (r *profilesRepo) MarkVerified2FA(ctx context.Context, userID string) error {
	query := `UPDATE user_profiles SET verified_2fa = 1, updated_at = ? WHERE user_id = ?`
	_, err := r.db.ExecContext(ctx, query, time.Now().UTC(), userID)
	return err
}
