package service

import (
	"context"
	"errors"

	"github.com/transcendia/gamehub/internal/user/domain"
	"github.com/transcendia/gamehub/internal/user/presence"
	"github.com/transcendia/gamehub/internal/user/store"
	"github.com/transcendia/gamehub/pkg/idx"
	"github.com/transcendia/gamehub/pkg/slogx"
)

var (
	ErrSelfRequest    = errors.New("cannot befriend yourself")
	ErrAlreadyPending = errors.New("friend request already pending")
	ErrAlreadyFriends = errors.New("already friends")
	ErrAlreadyBlocked = errors.New("friendship is blocked")
	ErrUserNotFound   = errors.New("user not found")
	ErrNoFriendship   = errors.New("no friendship exists")
)

// FriendService drives the friendship state machine. A single row per
// unordered user pair moves through pending, accepted and rejected;
// rejected doubles as the blocked state. Every successful mutation
// pokes the presence channel so online friend lists refresh.
type FriendService struct {
	Store    store.Store
	Presence presence.Registry
}

// SendRequest creates a pending request from actor to targetUsername.
func (s *FriendService) SendRequest(ctx context.Context, actorID, targetUsername string) error {
	target, err := s.lookup(ctx, targetUsername)
	if err != nil {
		return err
	}
	if target.ID == actorID {
		return ErrSelfRequest
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		existing, err := tx.Friendships().GetByPair(ctx, actorID, target.ID)
		if err == nil {
			return statusConflict(existing.Status)
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		return tx.Friendships().CreateFriendship(ctx, domain.Friendship{
			ID:          idx.New().String(),
			RequesterID: actorID,
			TargetID:    target.ID,
			Status:      domain.FriendshipPending,
		})
	})
	if err != nil {
		// Two opposite requests racing: the pair index lets one row in,
		// the loser sees the same conflict as a sequential duplicate.
		if errors.Is(err, store.ErrAlreadyExists) {
			return ErrAlreadyPending
		}
		return err
	}

	s.notify(ctx)
	return nil
}

// AcceptRequest accepts a pending request sent BY requesterUsername TO
// the actor. The actor cannot accept a request they sent themselves.
func (s *FriendService) AcceptRequest(ctx context.Context, actorID, requesterUsername string) error {
	requester, err := s.lookup(ctx, requesterUsername)
	if err != nil {
		return err
	}

	f, err := s.Store.Friendships().GetByPair(ctx, requester.ID, actorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNoFriendship
		}
		return err
	}

	// Direction matters here: only the receiving side may accept.
	if f.RequesterID != requester.ID || f.TargetID != actorID {
		return ErrNoFriendship
	}

	switch f.Status {
	case domain.FriendshipAccepted:
		return ErrAlreadyFriends
	case domain.FriendshipRejected:
		return ErrAlreadyBlocked
	}

	if err := s.Store.Friendships().UpdateStatus(ctx, f.ID, domain.FriendshipAccepted); err != nil {
		return err
	}

	s.notify(ctx)
	return nil
}

// Block forces the relation to rejected from any state, in either
// direction. Blocking an accepted friendship is allowed.
func (s *FriendService) Block(ctx context.Context, actorID, otherUsername string) error {
	other, err := s.lookup(ctx, otherUsername)
	if err != nil {
		return err
	}

	f, err := s.Store.Friendships().GetByPair(ctx, actorID, other.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNoFriendship
		}
		return err
	}

	if f.Status != domain.FriendshipRejected {
		if err := s.Store.Friendships().UpdateStatus(ctx, f.ID, domain.FriendshipRejected); err != nil {
			return err
		}
	}

	s.notify(ctx)
	return nil
}

// Remove deletes the relation in either direction. A later request
// from either side starts over at pending.
func (s *FriendService) Remove(ctx context.Context, actorID, otherUsername string) error {
	other, err := s.lookup(ctx, otherUsername)
	if err != nil {
		return err
	}

	if err := s.Store.Friendships().DeleteByPair(ctx, actorID, other.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNoFriendship
		}
		return err
	}

	s.notify(ctx)
	return nil
}

// ListPending returns requests received by the actor, still awaiting a
// decision.
func (s *FriendService) ListPending(ctx context.Context, actorID string) ([]domain.FriendshipView, error) {
	return s.Store.Friendships().ListReceived(ctx, actorID, domain.FriendshipPending)
}

// ListFriends returns accepted relations on either side of the actor.
func (s *FriendService) ListFriends(ctx context.Context, actorID string) ([]domain.FriendshipView, error) {
	return s.Store.Friendships().ListForUser(ctx, actorID, domain.FriendshipAccepted)
}

func (s *FriendService) lookup(ctx context.Context, username string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

func (s *FriendService) notify(ctx context.Context) {
	if s.Presence == nil {
		return
	}
	s.Presence.NotifyChange(ctx)
	slogx.FromContext(ctx).Debug("friendship change published")
}

func statusConflict(status domain.FriendshipStatus) error {
	switch status {
	case domain.FriendshipAccepted:
		return ErrAlreadyFriends
	case domain.FriendshipRejected:
		return ErrAlreadyBlocked
	default:
		return ErrAlreadyPending
	}
}
