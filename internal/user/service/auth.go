package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/transcendia/gamehub/internal/user/domain"
	"github.com/transcendia/gamehub/internal/user/store"
	"github.com/transcendia/gamehub/pkg/cryptox"
	"github.com/transcendia/gamehub/pkg/idx"
	"github.com/transcendia/gamehub/pkg/slogx"
)

const minPasswordLen = 8

var (
	ErrValidation    = errors.New("validation failed")
	ErrUsernameTaken = errors.New("username already taken")
	ErrEmailTaken    = errors.New("email already registered")
	ErrThirdParty    = errors.New("not permitted for third-party accounts")
)

// AuthService covers local account lifecycle: registration, password
// login, logout and profile updates. Token issuance and TOTP proof are
// delegated to TokenService and TwoFAService.
type AuthService struct {
	Store    store.Store
	Tokens   *TokenService
	TwoFA    *TwoFAService
	Presence PresenceReader
}

// PresenceReader is the read side of the presence registry, enough for
// listing online users.
type PresenceReader interface {
	Online(ctx context.Context) ([]string, error)
}

type RegisterInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// LoginResult is the outcome of a successful password check. Tokens
// are never issued here; the client must still prove a TOTP code.
type LoginResult struct {
	User domain.User

	// Pending is true when the account has not completed two-factor
	// enrollment. Enrollment then carries the provisioning payload.
	Pending    bool
	Enrollment *domain.Enrollment
}

// Register creates a local account with its profile and immediately
// enrolls it for TOTP so the client can display the QR code.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (domain.User, domain.Enrollment, error) {
	if err := validateRegister(in); err != nil {
		return domain.User{}, domain.Enrollment{}, err
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, domain.Enrollment{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           idx.New().String(),
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		PasswordHash: hash,
	}

	if err := s.createWithProfile(ctx, user, false); err != nil {
		return domain.User{}, domain.Enrollment{}, err
	}

	enrollment, err := s.TwoFA.Enroll(ctx, user.ID, user.Username)
	if err != nil {
		return domain.User{}, domain.Enrollment{}, err
	}

	slogx.FromContext(ctx).Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, enrollment, nil
}

// Login verifies a password. Unknown usernames and wrong passwords
// both return ErrInvalidCredentials with no distinguishing detail.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.Store.Users().GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// Third-party accounts have no password and sign in via OAuth.
	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	profile, err := s.Store.Profiles().GetProfile(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	result := &LoginResult{User: user}
	if !profile.Verified2FA {
		enrollment, err := s.TwoFA.Enroll(ctx, user.ID, user.Username)
		if err != nil {
			return nil, err
		}
		result.Pending = true
		result.Enrollment = &enrollment
	}
	return result, nil
}

// Logout revokes the refresh token grant. Idempotent.
func (s *AuthService) Logout(ctx context.Context, refreshOpaque string) error {
	return s.Tokens.Revoke(ctx, refreshOpaque)
}

type ProfileUpdate struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Password  *string
}

// UpdateProfile applies partial updates to the caller's own account.
// Third-party accounts keep the email of their identity provider and
// have no password to change. All fields are validated before anything
// is written; a failing request leaves the account untouched.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, up ProfileUpdate) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}

	profile, err := s.Store.Profiles().GetProfile(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}

	if up.Username != nil {
		username := strings.TrimSpace(*up.Username)
		if username == "" || len(username) > domain.MaxUsernameLen {
			return domain.User{}, fmt.Errorf("%w: username must be 1-%d characters", ErrValidation, domain.MaxUsernameLen)
		}
		if strings.ContainsAny(username, " \t\n") {
			return domain.User{}, fmt.Errorf("%w: username must not contain whitespace", ErrValidation)
		}
		user.Username = username
	}
	if up.Email != nil {
		if profile.ThirdParty {
			return domain.User{}, ErrThirdParty
		}
		email := strings.ToLower(strings.TrimSpace(*up.Email))
		if _, err := mail.ParseAddress(email); err != nil {
			return domain.User{}, fmt.Errorf("%w: invalid email", ErrValidation)
		}
		user.Email = email
	}
	if up.FirstName != nil {
		user.FirstName = strings.TrimSpace(*up.FirstName)
	}
	if up.LastName != nil {
		user.LastName = strings.TrimSpace(*up.LastName)
	}

	var newHash string
	if up.Password != nil {
		if profile.ThirdParty {
			return domain.User{}, ErrThirdParty
		}
		if len(*up.Password) < minPasswordLen {
			return domain.User{}, fmt.Errorf("%w: password too short", ErrValidation)
		}
		newHash, err = cryptox.HashPassword(*up.Password)
		if err != nil {
			return domain.User{}, err
		}
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdateUser(ctx, user); err != nil {
			return err
		}
		if newHash != "" {
			return tx.Users().UpdatePasswordHash(ctx, userID, newHash)
		}
		return nil
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		if up.Username != nil {
			if other, lookupErr := s.Store.Users().GetUserByUsername(ctx, user.Username); lookupErr == nil && other.ID != userID {
				return domain.User{}, ErrUsernameTaken
			}
		}
		return domain.User{}, ErrEmailTaken
	}
	if err != nil {
		return domain.User{}, err
	}

	return user, nil
}

// GetUser fetches a user by id for profile pages.
func (s *AuthService) GetUser(ctx context.Context, id string) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, id)
}

// OnlineUsers joins the presence registry against the user store and
// returns the connected users. IDs without a matching row (stale set
// members) are silently dropped.
func (s *AuthService) OnlineUsers(ctx context.Context) ([]domain.User, error) {
	ids, err := s.Presence.Online(ctx)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []domain.User{}, nil
	}
	return s.Store.Users().GetUsersByIDs(ctx, ids)
}

// createWithProfile inserts the user and its companion profile row in
// one transaction, mapping unique violations to conflict errors.
func (s *AuthService) createWithProfile(ctx context.Context, user domain.User, thirdParty bool) error {
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			return err
		}
		return tx.Profiles().CreateProfile(ctx, domain.Profile{
			UserID:     user.ID,
			ThirdParty: thirdParty,
		})
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		// Disambiguate for the client without a second unique failure.
		if _, lookupErr := s.Store.Users().GetUserByUsername(ctx, user.Username); lookupErr == nil {
			return ErrUsernameTaken
		}
		return ErrEmailTaken
	}
	return err
}

func validateRegister(in RegisterInput) error {
	username := strings.TrimSpace(in.Username)
	if username == "" || len(username) > domain.MaxUsernameLen {
		return fmt.Errorf("%w: username must be 1-%d characters", ErrValidation, domain.MaxUsernameLen)
	}
	if strings.ContainsAny(username, " \t\n") {
		return fmt.Errorf("%w: username must not contain whitespace", ErrValidation)
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(in.Email)); err != nil {
		return fmt.Errorf("%w: invalid email", ErrValidation)
	}
	if len(in.Password) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLen)
	}
	return nil
}
