package domain

import "time"

// MaxUsernameLen matches the column limit enforced at registration.
const MaxUsernameLen = 32

type User struct {
	ID           string
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string // argon2id encoded, empty for third-party accounts
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile is the 1:1 companion record of a User carrying two-factor and
// third-party login state. Exactly one Profile exists per User; both are
// created in the same transaction.
type Profile struct {
	UserID      string
	OTPSecret   *string // base32 TOTP secret (nullable until first enrollment)
	Verified2FA bool
	ThirdParty  bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
