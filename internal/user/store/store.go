package store

import (
	"context"
	"errors"

	"github.com/transcendia/gamehub/internal/user/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for
// now) implement this. Sub-repositories keep concerns tidy and let the
// same interfaces back both the plain store and a transaction scope.
type Store interface {
	Users() Users
	Profiles() Profiles
	Friendships() Friendships
	RefreshTokens() RefreshTokens
	Matches() Matches

	ApplyMigrations() error

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped Store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) ([]domain.User, error)

	// CreateUser inserts a new user (id is provided by the app via ULID).
	// A duplicate username or email maps to ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	UpdateUser(ctx context.Context, u domain.User) error
	UpdatePasswordHash(ctx context.Context, userID, newHash string) error
}

type Profiles interface {
	GetProfile(ctx context.Context, userID string) (domain.Profile, error)

	// CreateProfile inserts the 1:1 companion row; always called in the
	// same transaction as CreateUser.
	CreateProfile(ctx context.Context, p domain.Profile) error

	UpdateOTPSecret(ctx context.Context, userID, secret string) error

	// MarkVerified2FA flips verified_2fa to true. Idempotent.
	MarkVerified2FA(ctx context.Context, userID string) error
}

type Friendships interface {
	// GetByPair returns the single row for the unordered pair {a, b},
	// regardless of direction. ErrNotFound when no relation exists.
	GetByPair(ctx context.Context, a, b string) (domain.Friendship, error)

	// CreateFriendship inserts a new directed row. The unordered-pair
	// unique index maps a concurrent duplicate to ErrAlreadyExists.
	CreateFriendship(ctx context.Context, f domain.Friendship) error

	UpdateStatus(ctx context.Context, id string, status domain.FriendshipStatus) error

	// DeleteByPair removes the row for the unordered pair. ErrNotFound
	// when nothing was deleted.
	DeleteByPair(ctx context.Context, a, b string) error

	// ListReceived returns rows where userID is the target side, filtered
	// by status.
	ListReceived(ctx context.Context, userID string, status domain.FriendshipStatus) ([]domain.FriendshipView, error)

	// ListForUser returns rows where userID is on either side, filtered
	// by status.
	ListForUser(ctx context.Context, userID string, status domain.FriendshipStatus) ([]domain.FriendshipView, error)
}

type RefreshTokens interface {
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, hash string) error
	DeleteExpiredRefreshTokens(ctx context.Context) error
}

type Matches interface {
	CreateMatch(ctx context.Context, m domain.Match) error
	ListMatchesForUser(ctx context.Context, userID string, limit int) ([]domain.Match, error)

	// StatsForUser aggregates wins/losses/goals over all recorded matches.
	StatsForUser(ctx context.Context, userID string) (domain.PlayerStats, error)
}
