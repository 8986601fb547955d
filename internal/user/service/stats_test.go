package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/transcendia/gamehub/internal/user/store"
)

func TestRecordMatch(t *testing.T) {
	ctx := context.Background()

	t.Run("derives the winner from scores", func(t *testing.T) {
		st := newTestStore(t)
		svc := &StatsService{Store: st}
		users := seedFriendUsers(t, st, "alice", "bob")

		m, err := svc.RecordMatch(ctx, users["alice"].ID, users["bob"].ID, 11, 7)
		require.NoError(t, err)
		require.Equal(t, users["alice"].ID, m.WinnerID)

		m, err = svc.RecordMatch(ctx, users["alice"].ID, users["bob"].ID, 3, 11)
		require.NoError(t, err)
		require.Equal(t, users["bob"].ID, m.WinnerID)
	})

	t.Run("rejects invalid matches", func(t *testing.T) {
		st := newTestStore(t)
		svc := &StatsService{Store: st}
		users := seedFriendUsers(t, st, "alice", "bob")

		_, err := svc.RecordMatch(ctx, users["alice"].ID, users["alice"].ID, 11, 7)
		require.ErrorIs(t, err, ErrValidation)

		_, err = svc.RecordMatch(ctx, users["alice"].ID, users["bob"].ID, 5, 5)
		require.ErrorIs(t, err, ErrValidation)

		_, err = svc.RecordMatch(ctx, users["alice"].ID, users["bob"].ID, -1, 5)
		require.ErrorIs(t, err, ErrValidation)
	})
}

func TestUserStats(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &StatsService{Store: st}
	users := seedFriendUsers(t, st, "alice", "bob", "carol")

	_, err := svc.RecordMatch(ctx, users["alice"].ID, users["bob"].ID, 11, 7)
	require.NoError(t, err)
	_, err = svc.RecordMatch(ctx, users["bob"].ID, users["alice"].ID, 11, 9)
	require.NoError(t, err)
	_, err = svc.RecordMatch(ctx, users["alice"].ID, users["carol"].ID, 11, 2)
	require.NoError(t, err)

	stats, err := svc.UserStats(ctx, users["alice"].ID)
	require.NoError(t, err)
	require.Equal(t, 2, stats.Wins)
	require.Equal(t, 1, stats.Losses)
	require.Equal(t, 31, stats.GoalsFor)
	require.Equal(t, 20, stats.GoalsAgainst)

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.UserStats(ctx, "missing")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("losing player counts the loss", func(t *testing.T) {
		stats, err := svc.UserStats(ctx, users["carol"].ID)
		require.NoError(t, err)
		require.Equal(t, 0, stats.Wins)
		require.Equal(t, 1, stats.Losses)
	})
}

func TestListMatches(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &StatsService{Store: st}
	users := seedFriendUsers(t, st, "alice", "bob")

	for range 3 {
		_, err := svc.RecordMatch(ctx, users["alice"].ID, users["bob"].ID, 11, 7)
		require.NoError(t, err)
	}

	matches, err := svc.ListMatches(ctx, users["alice"].ID, 0)
	require.NoError(t, err)
	require.Len(t, matches, 3)

	matches, err = svc.ListMatches(ctx, users["alice"].ID, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
}
