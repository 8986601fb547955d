package service

import (
	"context"
	"fmt"
	"time"

	"github.com/transcendia/gamehub/internal/user/domain"
	"github.com/transcendia/gamehub/internal/user/store"
	"github.com/transcendia/gamehub/pkg/idx"
)

const defaultMatchLimit = 50

// StatsService records finished matches and aggregates per-player
// results. Draws are not a thing in pong, so equal scores are invalid.
type StatsService struct {
	Store store.Store
}

// RecordMatch persists a finished match. The winner is derived from
// the scores.
func (s *StatsService) RecordMatch(ctx context.Context, player1ID, player2ID string, score1, score2 int) (domain.Match, error) {
	if player1ID == player2ID {
		return domain.Match{}, fmt.Errorf("%w: players must differ", ErrValidation)
	}
	if score1 < 0 || score2 < 0 {
		return domain.Match{}, fmt.Errorf("%w: scores must be non-negative", ErrValidation)
	}
	if score1 == score2 {
		return domain.Match{}, fmt.Errorf("%w: match cannot end in a draw", ErrValidation)
	}

	winnerID := player1ID
	if score2 > score1 {
		winnerID = player2ID
	}

	m := domain.Match{
		ID:           idx.New().String(),
		Player1ID:    player1ID,
		Player2ID:    player2ID,
		WinnerID:     winnerID,
		ScorePlayer1: score1,
		ScorePlayer2: score2,
		PlayedAt:     time.Now().UTC(),
	}

	if err := s.Store.Matches().CreateMatch(ctx, m); err != nil {
		return domain.Match{}, err
	}
	return m, nil
}

// UserStats aggregates wins, losses and goal totals for a user.
func (s *StatsService) UserStats(ctx context.Context, userID string) (domain.PlayerStats, error) {
	if _, err := s.Store.Users().GetUserByID(ctx, userID); err != nil {
		return domain.PlayerStats{}, err
	}
	return s.Store.Matches().StatsForUser(ctx, userID)
}

// ListMatches returns the user's recent matches, newest first.
func (s *StatsService) ListMatches(ctx context.Context, userID string, limit int) ([]domain.Match, error) {
	if limit <= 0 {
		limit = defaultMatchLimit
	}
	return s.Store.Matches().ListMatchesForUser(ctx, userID, limit)
}
