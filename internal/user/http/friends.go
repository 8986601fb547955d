package http

import (
	"errors"
	"net/http"

	"github.com/transcendia/gamehub/internal/user/service"
	"github.com/transcendia/gamehub/pkg/httpx"
	"github.com/transcendia/gamehub/pkg/slogx"
)

type FriendsHandler struct {
	FriendService *service.FriendService
}

// HandleList handles GET /v1/friends.
func (h *FriendsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	friends, err := h.FriendService.ListFriends(ctx, httpx.UserIDFromContext(ctx))
	if err != nil {
		slogx.FromContext(ctx).Error("list friends failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"type":    httpx.TypeSuccess,
		"friends": friends,
	})
}

// HandleListRequests handles GET /v1/friends/requests.
func (h *FriendsHandler) HandleListRequests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	requests, err := h.FriendService.ListPending(ctx, httpx.UserIDFromContext(ctx))
	if err != nil {
		slogx.FromContext(ctx).Error("list friend requests failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"type":     httpx.TypeSuccess,
		"requests": requests,
	})
}

// HandleSendRequest handles POST /v1/friends/requests/{username}.
func (h *FriendsHandler) HandleSendRequest(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "friend request sent", func(userID, username string, r *http.Request) error {
		return h.FriendService.SendRequest(r.Context(), userID, username)
	})
}

// HandleAccept handles POST /v1/friends/requests/{username}/accept.
func (h *FriendsHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "friend request accepted", func(userID, username string, r *http.Request) error {
		return h.FriendService.AcceptRequest(r.Context(), userID, username)
	})
}

// HandleBlock handles POST /v1/friends/{username}/block.
func (h *FriendsHandler) HandleBlock(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "user blocked", func(userID, username string, r *http.Request) error {
		return h.FriendService.Block(r.Context(), userID, username)
	})
}

// HandleRemove handles DELETE /v1/friends/{username}.
func (h *FriendsHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "friend removed", func(userID, username string, r *http.Request) error {
		return h.FriendService.Remove(r.Context(), userID, username)
	})
}

func (h *FriendsHandler) mutate(w http.ResponseWriter, r *http.Request, okMessage string, fn func(userID, username string, r *http.Request) error) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	username := r.PathValue("username")
	if username == "" {
		httpx.WriteError(w, http.StatusBadRequest, "missing username")
		return
	}

	err := fn(httpx.UserIDFromContext(ctx), username, r)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrNoFriendship):
			httpx.WriteError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrSelfRequest),
			errors.Is(err, service.ErrAlreadyPending),
			errors.Is(err, service.ErrAlreadyFriends),
			errors.Is(err, service.ErrAlreadyBlocked):
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
		default:
			log.Error("friendship mutation failed", "username", username, "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"type":    httpx.TypeSuccess,
		"message": okMessage,
	})
}
