package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/transcendia/gamehub/internal/user/service"
	"github.com/transcendia/gamehub/internal/user/store"
	"github.com/transcendia/gamehub/pkg/httpx"
	"github.com/transcendia/gamehub/pkg/jwtx"
	"github.com/transcendia/gamehub/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	signer    *jwtx.Signer
	verifier  *jwtx.Verifier
	startTime time.Time
	logger    *slog.Logger

	store store.Store

	AuthService   *service.AuthService
	TwoFAService  *service.TwoFAService
	OAuthService  *service.OAuthService
	FriendService *service.FriendService
	TokenService  *service.TokenService
	StatsService  *service.StatsService
}

func NewRouter(signer *jwtx.Signer, verifier *jwtx.Verifier, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:       http.NewServeMux(),
		signer:    signer,
		verifier:  verifier,
		startTime: time.Now(),
		store:     st,
		logger:    logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerOAuth()
	r.registerUsers()
	r.registerFriends()
	r.registerMatches()
	r.registerSystem()
}

// ServeHTTP implements http.Handler and applies the global middleware
// chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService, TokenService: r.TokenService}

	// Credential endpoints are brute-force targets, strict IP limits.
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	twofa := &TwoFAHandler{TwoFAService: r.TwoFAService}
	r.Mux.Handle("POST /v1/auth/2fa/verify",
		httpx.Chain(http.HandlerFunc(twofa.HandleVerify),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerOAuth() {
	h := &OAuthHandler{OAuthService: r.OAuthService}

	r.Mux.Handle("POST /v1/oauth/callback",
		httpx.Chain(http.HandlerFunc(h.HandleCallback),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/oauth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{AuthService: r.AuthService}

	secured := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		)
	}

	r.Mux.Handle("GET /v1/users/me", secured(h.HandleMe))
	r.Mux.Handle("POST /v1/users/me", secured(h.HandleUpdateMe))
	r.Mux.Handle("GET /v1/users/online", secured(h.HandleOnline))
	r.Mux.Handle("GET /v1/users/{id}", secured(h.HandleByID))
}

func (r *Router) registerFriends() {
	h := &FriendsHandler{FriendService: r.FriendService}

	secured := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("GET /v1/friends", secured(h.HandleList))
	r.Mux.Handle("GET /v1/friends/requests", secured(h.HandleListRequests))
	r.Mux.Handle("POST /v1/friends/requests/{username}", secured(h.HandleSendRequest))
	r.Mux.Handle("POST /v1/friends/requests/{username}/accept", secured(h.HandleAccept))
	r.Mux.Handle("POST /v1/friends/{username}/block", secured(h.HandleBlock))
	r.Mux.Handle("DELETE /v1/friends/{username}", secured(h.HandleRemove))
}

func (r *Router) registerMatches() {
	h := &MatchesHandler{StatsService: r.StatsService}

	secured := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("POST /v1/matches", secured(h.HandleRecord))
	r.Mux.Handle("GET /v1/users/{id}/stats", secured(h.HandleStats))
	r.Mux.Handle("GET /v1/users/{id}/matches", secured(h.HandleMatches))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.signer),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.HandleFunc("GET /livez", r.handleLivez)
	r.Mux.HandleFunc("GET /readyz", r.handleReadyz)
}
