package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/transcendia/gamehub/internal/user/service"
	"github.com/transcendia/gamehub/pkg/httpx"
	"github.com/transcendia/gamehub/pkg/slogx"
)

// AuthHandler covers registration, password login, token refresh and
// logout.
type AuthHandler struct {
	AuthService  *service.AuthService
	TokenService *service.TokenService
}

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

type registerResponse struct {
	Type    string      `json:"type"`
	Message string      `json:"message"`
	User    userPayload `json:"user"`
	QRCode  string      `json:"qr_code"`
	Secret  string      `json:"secret"`
}

// HandleRegister handles POST /v1/auth/register.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, enrollment, err := h.AuthService.Register(ctx, service.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrUsernameTaken), errors.Is(err, service.ErrEmailTaken):
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
		default:
			log.Error("registration failed", "err", err)
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

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	QRCode  string `json:"qr_code,omitempty"`
}

// HandleLogin handles POST /v1/auth/login. Tokens are only issued
// after the TOTP code is verified.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.AuthService.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpx.WriteError(w, http.StatusBadRequest, "invalid username or password")
			return
		}
		log.Error("login failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := loginResponse{
		Type:    httpx.TypeSuccess,
		Message: "enter the code from your authenticator",
	}
	if result.Pending {
		resp.Type = httpx.TypePending
		resp.Message = "two-factor setup required, scan the QR code and verify"
		resp.QRCode = result.Enrollment.QRCode
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, resp)
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// HandleRefresh handles POST /v1/auth/refresh. The refresh token is
// rotated, so the previous value stops working.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Refresh == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pair, err := h.TokenService.Refresh(ctx, req.Refresh)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefresh) {
			httpx.WriteError(w, http.StatusBadRequest, "invalid refresh token")
			return
		}
		log.Error("token refresh failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, tokenResponse{
		Type:    httpx.TypeSuccess,
		Access:  pair.AccessToken,
		Refresh: pair.RefreshToken,
	})
}

type logoutRequest struct {
	Refresh string `json:"refresh"`
}

// HandleLogout handles POST /v1/auth/logout.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req logoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Refresh == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.AuthService.Logout(ctx, req.Refresh); err != nil {
		log.Error("logout failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"type":    httpx.TypeSuccess,
		"message": "logged out",
	})
}
