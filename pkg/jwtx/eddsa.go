package jwtx

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Signer signs access-token claims with an Ed25519 key identified by kid.
type Signer struct {
	kid  string
	priv ed25519.PrivateKey
}

// GenerateKey creates a fresh Ed25519 keypair for an ephemeral signer.
func GenerateKey() (ed25519.PublicKey, ed25519.PrivateKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("jwtx: failed to generate ed25519 key: %w", err)
	}
	return pub, priv, nil
}

func NewSigner(kid string, priv ed25519.PrivateKey) *Signer {
	return &Signer{kid: kid, priv: priv}
}

func (s *Signer) KID() string { return s.kid }

func (s *Signer) Public() ed25519.PublicKey {
	return s.priv.Public().(ed25519.PublicKey)
}

// Sign produces a compact EdDSA-signed JWT carrying the kid header.
func (s *Signer) Sign(claims Claims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	tok.Header["kid"] = s.kid
	return tok.SignedString(s.priv)
}

// Verifier validates EdDSA tokens against a set of known public keys.
type Verifier struct {
	keys   map[string]ed25519.PublicKey // kid -> public key
	issuer string
}

func NewVerifier(issuer string, keys map[string]ed25519.PublicKey) *Verifier {
	return &Verifier{keys: keys, issuer: issuer}
}

// Verify parses and validates a compact token, returning its claims.
func (v *Verifier) Verify(raw string) (Claims, error) {
	var claims Claims

	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodEdDSA.Alg() {
			return nil, ErrAlgMismatch
		}
		kid, _ := t.Header["kid"].(string)
		pub, ok := v.keys[kid]
		if !ok {
			return nil, ErrUnknownKID
		}
		return pub, nil
	})
	if err != nil || !tok.Valid {
		if err == nil {
			err = ErrMalformed
		}
		return Claims{}, err
	}

	if err := claims.ValidateIssuer(v.issuer); err != nil {
		return Claims{}, err
	}
	return claims, nil
}
