package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/transcendia/gamehub/internal/user/service"
	"github.com/transcendia/gamehub/internal/user/store"
	"github.com/transcendia/gamehub/pkg/httpx"
	"github.com/transcendia/gamehub/pkg/slogx"
)

type UsersHandler struct {
	AuthService *service.AuthService
}

// HandleMe handles GET /v1/users/me.
func (h *UsersHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := httpx.UserIDFromContext(ctx)
	user, err := h.AuthService.GetUser(ctx, userID)
	if err != nil {
		slogx.FromContext(ctx).Error("load current user failed", "user_id", userID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"type": httpx.TypeSuccess,
		"user": toUserPayload(user),
	})
}

type updateMeRequest struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Password  *string `json:"password"`
}

// HandleUpdateMe handles POST /v1/users/me.
func (h *UsersHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req updateMeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID := httpx.UserIDFromContext(ctx)
	user, err := h.AuthService.UpdateProfile(ctx, userID, service.ProfileUpdate{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation),
			errors.Is(err, service.ErrEmailTaken),
			errors.Is(err, service.ErrUsernameTaken):
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrThirdParty):
			httpx.WriteError(w, http.StatusBadRequest, "third-party accounts cannot change this field")
		default:
			log.Error("profile update failed", "user_id", userID, "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"type": httpx.TypeSuccess,
		"user": toUserPayload(user),
	})
}

// HandleByID handles GET /v1/users/{id}.
func (h *UsersHandler) HandleByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := r.PathValue("id")
	user, err := h.AuthService.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "user not found")
			return
		}
		slogx.FromContext(ctx).Error("load user failed", "user_id", id, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"type": httpx.TypeSuccess,
		"user": publicUserPayload(user),
	})
}

// HandleOnline handles GET /v1/users/online.
func (h *UsersHandler) HandleOnline(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	users, err := h.AuthService.OnlineUsers(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("list online users failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	payload := make([]userPayload, 0, len(users))
	for _, u := range users {
		payload = append(payload, publicUserPayload(u))
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"type":  httpx.TypeSuccess,
		"users": payload,
	})
}
