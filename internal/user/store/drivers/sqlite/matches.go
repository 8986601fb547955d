package sqlite

import (
	"context"
	"fmt"

	"github.com/transcendia/gamehub/internal/user/domain"
)

type matchesRepo struct {
	db dbtx
}

func (r *matchesRepo) CreateMatch(ctx context.Context, m domain.Match) error {
	query := `
		INSERT INTO matches (id, player1_id, player2_id, winner_id, score_player1, score_player2, played_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.Player1ID, m.Player2ID, m.WinnerID, m.ScorePlayer1, m.ScorePlayer2, m.PlayedAt.UTC())
	return mapConstraint(err)
}

func (r *matchesRepo) ListMatchesForUser(ctx context.Context, userID string, limit int) ([]domain.Match, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, player1_id, player2_id, winner_id, score_player1, score_player2, played_at
		FROM matches
		WHERE player1_id = ? OR player2_id = ?
		ORDER BY played_at DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, userID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	var out []domain.Match
	for rows.Next() {
		var m domain.Match
		if err := rows.Scan(
			&m.ID,
			&m.Player1ID,
			&m.Player2ID,
			&m.WinnerID,
			&m.ScorePlayer1,
			&m.ScorePlayer2,
			&m.PlayedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *matchesRepo) StatsForUser(ctx context.Context, userID string) (domain.PlayerStats, error) {
	query := `
		SELECT
			COUNT(CASE WHEN winner_id = ? THEN 1 END),
			COUNT(CASE WHEN winner_id <> ? THEN 1 END),
			COALESCE(SUM(CASE WHEN player1_id = ? THEN score_player1 ELSE score_player2 END), 0),
			COALESCE(SUM(CASE WHEN player1_id = ? THEN score_player2 ELSE score_player1 END), 0)
		FROM matches
		WHERE player1_id = ? OR player2_id = ?
	`

	stats := domain.PlayerStats{UserID: userID}
	err := r.db.QueryRowContext(ctx, query,
		userID, userID, userID, userID, userID, userID).Scan(
		&stats.Wins,
		&stats.Losses,
		&stats.GoalsFor,
		&stats.GoalsAgainst,
	)
	if err != nil {
		return domain.PlayerStats{}, err
	}
	return stats, nil
}
