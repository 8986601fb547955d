package httpx

import (
	"encoding/json"
	"net/http"
)

// Response types used across the public API. Every body carries a "type"
// discriminator; clients branch on it rather than on status codes alone.
const (
	TypeSuccess      = "success"
	TypeError        = "error"
	TypePending      = "pending"
	TypeRegistration = "registration"
)

// WriteJSON writes a JSON response with the given status code. Handlers
// returning tokens or secrets call NoCache first; everything else stays
// cacheable (JWKS, health).
func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes the standard error envelope:
// {"type":"error","message":...}.
func WriteError(w http.ResponseWriter, code int, message string) {
	WriteJSON(w, code, map[string]string{
		"type":    TypeError,
		"message": message,
	})
}

// NoCache sets headers preventing caching of sensitive responses such as
// tokens and provisioning secrets.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}
