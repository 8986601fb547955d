package jwtx

import (
	"crypto/ed25519"
	"encoding/base64"
)

// JWK is an RFC 7517 JSON Web Key restricted to the Ed25519 form this
// service publishes.
type JWK struct {
	Kty string `json:"kty"`
	Crv string `json:"crv"`
	Kid string `json:"kid"`
	X   string `json:"x"`
	Alg string `json:"alg"`
	Use string `json:"use"`
}

// JWKS is the document served at /.well-known/jwks.json so sibling
// services (gamehub, tournament) can verify access tokens offline.
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// NewJWK converts an Ed25519 public key into its JWK representation.
func NewJWK(kid string, pub ed25519.PublicKey) JWK {
	return JWK{
		Kty: "OKP",
		Crv: "Ed25519",
		Kid: kid,
		X:   base64.RawURLEncoding.EncodeToString(pub),
		Alg: "EdDSA",
		Use: "sig",
	}
}
