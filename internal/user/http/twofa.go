package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/transcendia/gamehub/internal/user/service"
	"github.com/transcendia/gamehub/pkg/httpx"
	"github.com/transcendia/gamehub/pkg/slogx"
)

type TwoFAHandler struct {
	TwoFAService *service.TwoFAService
}

type verifyRequest struct {
	Username string `json:"username"`
	Code     string `json:"code"`
}

type tokenResponse struct {
	Type    string `json:"type"`
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// HandleVerify handles POST /v1/auth/2fa/verify. A valid code
// completes the login and returns the token pair.
func (h *TwoFAHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Code == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pair, err := h.TwoFAService.Verify(ctx, req.Username, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTOTPCode):
			httpx.WriteError(w, http.StatusBadRequest, "invalid code")
		case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrNotEnrolled):
			httpx.WriteError(w, http.StatusBadRequest, "invalid username or code")
		default:
			log.Error("2fa verification failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, tokenResponse{
		Type:    httpx.TypeSuccess,
		Access:  pair.AccessToken,
		Refresh: pair.RefreshToken,
	})
}
