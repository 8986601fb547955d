package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/transcendia/gamehub/internal/user/domain"
	"github.com/transcendia/gamehub/internal/user/store"
	"github.com/transcendia/gamehub/pkg/idx"
	"github.com/transcendia/gamehub/pkg/slogx"
)

const DefaultOAuthTimeout = 10 * time.Second

var (
	ErrExchangeFailed = errors.New("authorization code exchange failed")
	ErrFetchFailed    = errors.New("fetching remote profile failed")
)

// OAuthService signs users in through a remote identity provider
// (authorization code flow). Accounts created this way carry no
// password and are flagged third-party.
type OAuthService struct {
	Store store.Store
	TwoFA *TwoFAService

	// Config holds client credentials and the provider's endpoints.
	Config *oauth2.Config

	// ProfileURL is the provider's identity endpoint, queried with the
	// bearer token obtained from the exchange.
	ProfileURL string

	// Timeout bounds each upstream call. Zero means DefaultOAuthTimeout.
	Timeout time.Duration
}

// CallbackKind tells the handler which envelope to write.
type CallbackKind int

const (
	// CallbackVerify: known account, 2FA already verified, prompt for
	// the TOTP code.
	CallbackVerify CallbackKind = iota
	// CallbackPending: known account still needs 2FA enrollment.
	CallbackPending
	// CallbackRegistration: no local account yet, the client must pick
	// a username and complete registration.
	CallbackRegistration
)

type CallbackResult struct {
	Kind       CallbackKind
	User       domain.User
	Enrollment *domain.Enrollment
	Profile    *domain.RemoteProfile
}

// Exchange trades an authorization code for an access token. Nothing
// is retried; the client restarts the flow on failure.
func (s *OAuthService) Exchange(ctx context.Context, code string) (string, error) {
	ctx, cancel := s.boundedContext(ctx)
	defer cancel()

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient())
	tok, err := s.Config.Exchange(ctx, code)
	if err != nil {
		slogx.FromContext(ctx).Info("oauth exchange failed", "error", err)
		return "", ErrExchangeFailed
	}
	return tok.AccessToken, nil
}

// FetchProfile queries the provider's identity endpoint.
func (s *OAuthService) FetchProfile(ctx context.Context, accessToken string) (domain.RemoteProfile, error) {
	ctx, cancel := s.boundedContext(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.ProfileURL, nil)
	if err != nil {
		return domain.RemoteProfile{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.httpClient().Do(req)
	if err != nil {
		slogx.FromContext(ctx).Info("oauth profile fetch failed", "error", err)
		return domain.RemoteProfile{}, ErrFetchFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slogx.FromContext(ctx).Info("oauth profile fetch failed", "status", resp.StatusCode)
		return domain.RemoteProfile{}, ErrFetchFailed
	}

	var body struct {
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Login     string `json:"login"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.RemoteProfile{}, ErrFetchFailed
	}

	return domain.RemoteProfile{
		Email:     strings.ToLower(strings.TrimSpace(body.Email)),
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Login:     body.Login,
	}, nil
}

// Callback runs the full flow for an authorization code and resolves
// the local account. No rows are written when the upstream calls fail.
func (s *OAuthService) Callback(ctx context.Context, code string) (*CallbackResult, error) {
	accessToken, err := s.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	remote, err := s.FetchProfile(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if remote.Email == "" {
		return nil, ErrFetchFailed
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, remote.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &CallbackResult{Kind: CallbackRegistration, Profile: &remote}, nil
		}
		return nil, err
	}

	profile, err := s.Store.Profiles().GetProfile(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	// A local password account already owns this email address.
	if !profile.ThirdParty {
		return nil, ErrEmailTaken
	}

	if user.Username == "" {
		return &CallbackResult{Kind: CallbackRegistration, Profile: &remote}, nil
	}

	if !profile.Verified2FA {
		enrollment, err := s.TwoFA.Enroll(ctx, user.ID, user.Username)
		if err != nil {
			return nil, err
		}
		return &CallbackResult{Kind: CallbackPending, User: user, Enrollment: &enrollment}, nil
	}

	return &CallbackResult{Kind: CallbackVerify, User: user}, nil
}

// CompleteRegistration creates the third-party account once the client
// picked a username, then enrolls it for TOTP.
func (s *OAuthService) CompleteRegistration(ctx context.Context, username string, remote domain.RemoteProfile) (domain.User, domain.Enrollment, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(username) > domain.MaxUsernameLen {
		return domain.User{}, domain.Enrollment{}, fmt.Errorf("%w: username must be 1-%d characters", ErrValidation, domain.MaxUsernameLen)
	}
	if remote.Email == "" {
		return domain.User{}, domain.Enrollment{}, fmt.Errorf("%w: missing email", ErrValidation)
	}

	user := domain.User{
		ID:        idx.New().String(),
		Username:  username,
		Email:     remote.Email,
		FirstName: remote.FirstName,
		LastName:  remote.LastName,
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			return err
		}
		return tx.Profiles().CreateProfile(ctx, domain.Profile{
			UserID:     user.ID,
			ThirdParty: true,
		})
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, domain.Enrollment{}, ErrUsernameTaken
		}
		return domain.User{}, domain.Enrollment{}, err
	}

	enrollment, err := s.TwoFA.Enroll(ctx, user.ID, user.Username)
	if err != nil {
		return domain.User{}, domain.Enrollment{}, err
	}

	slogx.FromContext(ctx).Info("third-party user registered", "user_id", user.ID, "username", user.Username)
	return user, enrollment, nil
}

func (s *OAuthService) boundedContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultOAuthTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

func (s *OAuthService) httpClient() *http.Client {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultOAuthTimeout
	}
	return &http.Client{Timeout: timeout}
}
