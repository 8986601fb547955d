package domain

import "time"

// FriendshipStatus is the state of a pairwise relationship. A rejected row
// acts as a block: it stays until one side removes the friendship entirely.
type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipRejected FriendshipStatus = "rejected"
)

// Friendship is a directed relation row. At most one row exists per
// unordered user pair regardless of which side initiated it.
type Friendship struct {
	ID          string
	RequesterID string
	TargetID    string
	Status      FriendshipStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FriendshipView is a list entry enriched with both usernames for API
// responses.
type FriendshipView struct {
	ID          string    `json:"id"`
	FromUser    string    `json:"from_user"`
	FriendUser  string    `json:"friend_user"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	RequesterID string    `json:"-"`
	TargetID    string    `json:"-"`
}
