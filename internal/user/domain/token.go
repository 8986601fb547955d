package domain

import "time"

// TokenPair is what a successful authentication returns: a short-lived
// EdDSA-signed access token and an opaque refresh token.
type TokenPair struct {
	AccessToken  string        `json:"access"`
	RefreshToken string        `json:"refresh"`
	ExpiresIn    time.Duration `json:"expires_in"`
}

// RefreshToken models the stored refresh token record. Only the SHA-256
// fingerprint of the opaque value is persisted.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string
	SessionID string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
