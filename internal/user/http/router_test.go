package http

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"

	"github.com/transcendia/gamehub/internal/user/presence"
	"github.com/transcendia/gamehub/internal/user/service"
	"github.com/transcendia/gamehub/internal/user/store/drivers/sqlite"
	"github.com/transcendia/gamehub/pkg/jwtx"
)

func newTestRouter(t *testing.T) (*Router, *presence.MemoryRegistry) {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	pub, priv, err := jwtx.GenerateKey()
	require.NoError(t, err)
	signer := jwtx.NewSigner("test-kid", priv)
	verifier := jwtx.NewVerifier("test-issuer", map[string]ed25519.PublicKey{"test-kid": pub})

	registry := presence.NewMemoryRegistry()

	tokens := &service.TokenService{
		Signer:     signer,
		Store:      st,
		Issuer:     "test-issuer",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	}
	twofa := &service.TwoFAService{Store: st, Tokens: tokens, Issuer: "test-issuer"}

	logger := slog.New(slog.DiscardHandler)
	r := NewRouter(signer, verifier, st, logger)
	r.AuthService = &service.AuthService{Store: st, Tokens: tokens, TwoFA: twofa, Presence: registry}
	r.TwoFAService = twofa
	r.TokenService = tokens
	r.FriendService = &service.FriendService{Store: st, Presence: registry}
	r.StatsService = &service.StatsService{Store: st}
	r.ApplyRoutes()

	return r, registry
}

func doJSON(t *testing.T, r *Router, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func TestAuthFlow(t *testing.T) {
	r, _ := newTestRouter(t)

	rec, body := doJSON(t, r, http.MethodPost, "/v1/auth/register", "", map[string]string{
		"username":   "alice",
		"email":      "alice@example.com",
		"first_name": "Alice",
		"last_name":  "Smith",
		"password":   "correct horse battery",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "success", body["type"])
	require.True(t, strings.HasPrefix(body["qr_code"].(string), "data:image/png;base64,"))
	secret := body["secret"].(string)

	// Login stays pending until the code is verified and reuses the
	// registration secret in the QR payload.
	rec, body = doJSON(t, r, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"username": "alice",
		"password": "correct horse battery",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "pending", body["type"])
	require.NotEmpty(t, body["qr_code"])

	// Wrong credentials share one message shape.
	rec, body = doJSON(t, r, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"username": "alice",
		"password": "wrong",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "error", body["type"])
	wrongPassword := body["message"]
	_, body = doJSON(t, r, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"username": "nobody",
		"password": "wrong",
	})
	require.Equal(t, wrongPassword, body["message"])

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)

	rec, body = doJSON(t, r, http.MethodPost, "/v1/auth/2fa/verify", "", map[string]string{
		"username": "alice",
		"code":     code,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "success", body["type"])
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	access := body["access"].(string)
	refresh := body["refresh"].(string)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	// The access token works against an authenticated route.
	rec, body = doJSON(t, r, http.MethodGet, "/v1/users/me", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	user := body["user"].(map[string]any)
	require.Equal(t, "alice", user["username"])

	// Refresh rotates, the old token dies.
	rec, body = doJSON(t, r, http.MethodPost, "/v1/auth/refresh", "", map[string]string{"refresh": refresh})
	require.Equal(t, http.StatusOK, rec.Code)
	newRefresh := body["refresh"].(string)
	require.NotEqual(t, refresh, newRefresh)

	rec, _ = doJSON(t, r, http.MethodPost, "/v1/auth/refresh", "", map[string]string{"refresh": refresh})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Logout revokes the current refresh token.
	rec, _ = doJSON(t, r, http.MethodPost, "/v1/auth/logout", access, map[string]string{"refresh": newRefresh})
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = doJSON(t, r, http.MethodPost, "/v1/auth/refresh", "", map[string]string{"refresh": newRefresh})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func registerAndVerify(t *testing.T, r *Router, username string) string {
	t.Helper()

	rec, body := doJSON(t, r, http.MethodPost, "/v1/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "correct horse battery",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	code, err := totp.GenerateCode(body["secret"].(string), time.Now())
	require.NoError(t, err)

	rec, body = doJSON(t, r, http.MethodPost, "/v1/auth/2fa/verify", "", map[string]string{
		"username": username,
		"code":     code,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	return body["access"].(string)
}

func TestFriendRoutes(t *testing.T) {
	r, registry := newTestRouter(t)

	alice := registerAndVerify(t, r, "alice")
	bob := registerAndVerify(t, r, "bob")
	before := registry.Signals

	rec, _ := doJSON(t, r, http.MethodPost, "/v1/friends/requests/bob", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, before+1, registry.Signals)

	rec, body := doJSON(t, r, http.MethodGet, "/v1/friends/requests", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	requests := body["requests"].([]any)
	require.Len(t, requests, 1)
	require.Equal(t, "alice", requests[0].(map[string]any)["from_user"])

	rec, _ = doJSON(t, r, http.MethodPost, "/v1/friends/requests/alice/accept", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	for _, token := range []string{alice, bob} {
		rec, body = doJSON(t, r, http.MethodGet, "/v1/friends", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, body["friends"].([]any), 1)
	}

	rec, body = doJSON(t, r, http.MethodPost, "/v1/friends/requests/bob", alice, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "error", body["type"])

	rec, _ = doJSON(t, r, http.MethodDelete, "/v1/friends/bob", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, r, http.MethodDelete, "/v1/friends/bob", alice, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOnlineUsers(t *testing.T) {
	r, registry := newTestRouter(t)

	alice := registerAndVerify(t, r, "alice")
	_ = registerAndVerify(t, r, "bob")

	ctx := context.Background()
	bobUser, err := r.store.Users().GetUserByUsername(ctx, "bob")
	require.NoError(t, err)
	registry.SetOnline(bobUser.ID, true)

	rec, body := doJSON(t, r, http.MethodGet, "/v1/users/online", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	users := body["users"].([]any)
	require.Len(t, users, 1)
	require.Equal(t, "bob", users[0].(map[string]any)["username"])
}

func TestMatchRoutes(t *testing.T) {
	r, _ := newTestRouter(t)

	alice := registerAndVerify(t, r, "alice")
	ctx := context.Background()
	aliceUser, err := r.store.Users().GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	_ = registerAndVerify(t, r, "bob")
	bobUser, err := r.store.Users().GetUserByUsername(ctx, "bob")
	require.NoError(t, err)

	rec, _ := doJSON(t, r, http.MethodPost, "/v1/matches", alice, map[string]any{
		"player1_id":    aliceUser.ID,
		"player2_id":    bobUser.ID,
		"score_player1": 11,
		"score_player2": 7,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Draws are rejected.
	rec, body := doJSON(t, r, http.MethodPost, "/v1/matches", alice, map[string]any{
		"player1_id":    aliceUser.ID,
		"player2_id":    bobUser.ID,
		"score_player1": 5,
		"score_player2": 5,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "error", body["type"])

	rec, body = doJSON(t, r, http.MethodGet, "/v1/users/"+aliceUser.ID+"/stats", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := body["stats"].(map[string]any)
	require.EqualValues(t, 1, stats["wins"])

	rec, body = doJSON(t, r, http.MethodGet, "/v1/users/"+aliceUser.ID+"/matches", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body["matches"].([]any), 1)
}

func TestJWKSAndHealth(t *testing.T) {
	r, _ := newTestRouter(t)

	rec, body := doJSON(t, r, http.MethodGet, "/.well-known/jwks.json", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	keys := body["keys"].([]any)
	require.Len(t, keys, 1)
	require.Equal(t, "EdDSA", keys[0].(map[string]any)["alg"])
	require.Empty(t, rec.Header().Get("Cache-Control"))

	rec, body = doJSON(t, r, http.MethodGet, "/livez", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", body["status"])

	rec, body = doJSON(t, r, http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", body["status"])
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/v1/users/me"},
		{http.MethodGet, "/v1/friends"},
		{http.MethodPost, "/v1/matches"},
	} {
		rec, _ := doJSON(t, r, route.method, route.path, "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code, route.path)
	}
}
