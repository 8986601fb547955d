package http

import (
	"net/http"
	"time"

	"github.com/transcendia/gamehub/pkg/httpx"
	"github.com/transcendia/gamehub/pkg/jwtx"
)

type healthResponse struct {
	Status string        `json:"status"`
	Uptime string        `json:"uptime"`
	Checks *healthChecks `json:"checks,omitempty"`
}

type healthChecks struct {
	Database string `json:"database"`
}

// handleLivez always returns 200 while the process is up.
func (r *Router) handleLivez(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Uptime: time.Since(r.startTime).String(),
	})
}

// handleReadyz checks the database before declaring the service ready.
func (r *Router) handleReadyz(w http.ResponseWriter, req *http.Request) {
	checks := &healthChecks{Database: "ok"}
	status := "ok"
	code := http.StatusOK

	if err := r.store.Ping(req.Context()); err != nil {
		checks.Database = "error: " + err.Error()
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	httpx.WriteJSON(w, code, healthResponse{
		Status: status,
		Uptime: time.Since(r.startTime).String(),
		Checks: checks,
	})
}

// JWKSHandler exposes the public signing key for sibling services.
func JWKSHandler(signer *jwtx.Signer) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		jwks := jwtx.JWKS{Keys: []jwtx.JWK{jwtx.NewJWK(signer.KID(), signer.Public())}}
		httpx.WriteJSON(w, http.StatusOK, jwks)
	}
}
