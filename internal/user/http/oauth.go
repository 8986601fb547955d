package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/transcendia/gamehub/internal/user/domain"
	"github.com/transcendia/gamehub/internal/user/service"
	"github.com/transcendia/gamehub/pkg/httpx"
	"github.com/transcendia/gamehub/pkg/slogx"
)

// OAuthHandler implements third-party sign-in via the remote identity
// provider's authorization code flow.
type OAuthHandler struct {
	OAuthService *service.OAuthService
}

type callbackRequest struct {
	Code string `json:"code"`
}

type callbackResponse struct {
	Type    string                `json:"type"`
	Message string                `json:"message"`
	QRCode  string                `json:"qr_code,omitempty"`
	Data    *domain.RemoteProfile `json:"data,omitempty"`
}

// HandleCallback handles POST /v1/oauth/callback with the code the
// frontend received from the provider redirect.
func (h *OAuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req callbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.OAuthService.Callback(ctx, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExchangeFailed), errors.Is(err, service.ErrFetchFailed):
			httpx.WriteError(w, http.StatusBadRequest, "third-party sign-in failed")
		case errors.Is(err, service.ErrEmailTaken):
			httpx.WriteError(w, http.StatusBadRequest, "email already registered with a password account")
		default:
			log.Error("oauth callback failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	var resp callbackResponse
	switch result.Kind {
	case service.CallbackVerify:
		resp = callbackResponse{
			Type:    httpx.TypeSuccess,
			Message: "enter the code from your authenticator",
		}
	case service.CallbackPending:
		resp = callbackResponse{
			Type:    httpx.TypePending,
			Message: "two-factor setup required, scan the QR code and verify",
			QRCode:  result.Enrollment.QRCode,
		}
	case service.CallbackRegistration:
		resp = callbackResponse{
			Type:    httpx.TypeRegistration,
			Message: "pick a username to finish registration",
			Data:    result.Profile,
		}
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, resp)
}

type oauthRegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// HandleRegister handles POST /v1/oauth/register, finishing a
// third-party registration with the chosen username.
func (h *OAuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req oauthRegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, enrollment, err := h.OAuthService.CompleteRegistration(ctx, req.Username, domain.RemoteProfile{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Login:     req.Username,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrUsernameTaken):
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
		default:
			log.Error("oauth registration failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, registerResponse{
		Type:    httpx.TypeSuccess,
		Message: "registration successful, scan the QR code with your authenticator",
		User:    toUserPayload(user),
		QRCode:  enrollment.QRCode,
		Secret:  enrollment.Secret,
	})
}
