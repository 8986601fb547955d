package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/transcendia/gamehub/internal/user/domain"
	"github.com/transcendia/gamehub/internal/user/store"
)

type friendshipsRepo struct {
	db dbtx
}

func (r *friendshipsRepo) GetByPair(ctx context.Context, a, b string) (domain.Friendship, error) {
	query := `
		SELECT id, requester_id, target_id, status, created_at, updated_at
		FROM friendships
		WHERE (requester_id = ? AND target_id = ?) OR (requester_id = ? AND target_id = ?)
	`

	var f domain.Friendship
	err := r.db.QueryRowContext(ctx, query, a, b, b, a).Scan(
		&f.ID,
		&f.RequesterID,
		&f.TargetID,
		&f.Status,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		return domain.Friendship{}, mapNotFound(err)
	}
	return f, nil
}

func (r *friendshipsRepo) CreateFriendship(ctx context.Context, f domain.Friendship) error {
	now := time.Now().UTC()
	query := `
		INSERT INTO friendships (id, requester_id, target_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query, f.ID, f.RequesterID, f.TargetID, f.Status, now, now)
	return mapConstraint(err)
}

func (r *friendshipsRepo) UpdateStatus(ctx context.Context, id string, status domain.FriendshipStatus) error {
	query := `UPDATE friendships SET status = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *friendshipsRepo) DeleteByPair(ctx context.Context, a, b string) error {
	query := `
		DELETE FROM friendships
		WHERE (requester_id = ? AND target_id = ?) OR (requester_id = ? AND target_id = ?)
	`
	res, err := r.db.ExecContext(ctx, query, a, b, b, a)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

const friendshipViewColumns = `
	f.id, ru.username, tu.username, f.status, f.created_at, f.requester_id, f.target_id
`

func (r *friendshipsRepo) queryViews(ctx context.Context, query string, args ...any) ([]domain.FriendshipView, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query friendships: %w", err)
	}
	defer rows.Close()

	var out []domain.FriendshipView
	for rows.Next() {
		var v domain.FriendshipView
		if err := rows.Scan(
			&v.ID,
			&v.FromUser,
			&v.FriendUser,
			&v.Status,
			&v.CreatedAt,
			&v.RequesterID,
			&v.TargetID,
		); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *friendshipsRepo) ListReceived(ctx context.Context, userID string, status domain.FriendshipStatus) ([]domain.FriendshipView, error) {
	query := `
		SELECT ` + friendshipViewColumns + `
		FROM friendships f
		JOIN users ru ON ru.id = f.requester_id
		JOIN users tu ON tu.id = f.target_id
		WHERE f.target_id = ? AND f.status = ?
		ORDER BY f.created_at DESC
	`
	return r.queryViews(ctx, query, userID, status)
}

func (r *friendshipsRepo) ListForUser(ctx context.Context, userID string, status domain.FriendshipStatus) ([]domain.FriendshipView, error) {
	query := `
		SELECT ` + friendshipViewColumns + `
		FROM friendships f
		JOIN users ru ON ru.id = f.requester_id
		JOIN users tu ON tu.id = f.target_id
		WHERE (f.target_id = ? OR f.requester_id = ?) AND f.status = ?
		ORDER BY f.created_at DESC
	`
	return r.queryViews(ctx, query, userID, userID, status)
}
