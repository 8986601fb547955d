package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image/png"
	"net/url"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/transcendia/gamehub/internal/user/domain"
	"github.com/transcendia/gamehub/internal/user/store"
)

const qrImageSize = 256

var (
	ErrInvalidTOTPCode = errors.New("invalid TOTP code")
	ErrNotEnrolled     = errors.New("two-factor not enrolled")
)

// TwoFAService manages TOTP enrollment and verification. Every local
// account carries a pending TOTP secret from registration; the first
// successful verification marks the account verified and completes the
// two-step login.
type TwoFAService struct {
	Store  store.Store
	Tokens *TokenService
	Issuer string // issuer label shown in authenticator apps
}

// Enroll ensures the user has a TOTP secret and returns the enrollment
// payload including an inline QR code image. An existing unverified
// secret is reused so a second login attempt does not invalidate an
// authenticator entry the user already scanned.
func (s *TwoFAService) Enroll(ctx context.Context, userID, username string) (domain.Enrollment, error) {
	profile, err := s.Store.Profiles().GetProfile(ctx, userID)
	if err != nil {
		return domain.Enrollment{}, fmt.Errorf("get profile: %w", err)
	}

	if profile.OTPSecret != nil && *profile.OTPSecret != "" {
		return s.enrollmentFor(*profile.OTPSecret, username)
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: username,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return domain.Enrollment{}, fmt.Errorf("generate TOTP key: %w", err)
	}

	if err := s.Store.Profiles().UpdateOTPSecret(ctx, userID, key.Secret()); err != nil {
		return domain.Enrollment{}, fmt.Errorf("store TOTP secret: %w", err)
	}

	return enrollmentFromKey(key)
}

// Verify checks a TOTP code for a user identified by username. On the
// first success the profile is marked verified and a token pair is
// issued. Later verifications (fresh logins) issue tokens without
// touching the flag.
func (s *TwoFAService) Verify(ctx context.Context, username, code string) (*domain.TokenPair, error) {
	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	profile, err := s.Store.Profiles().GetProfile(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if profile.OTPSecret == nil || *profile.OTPSecret == "" {
		return nil, ErrNotEnrolled
	}

	if !totp.Validate(code, *profile.OTPSecret) {
		return nil, ErrInvalidTOTPCode
	}

	if !profile.Verified2FA {
		if err := s.Store.Profiles().MarkVerified2FA(ctx, user.ID); err != nil {
			return nil, err
		}
	}

	return s.Tokens.Issue(ctx, user, "")
}

// enrollmentFor rebuilds the otpauth key for an already stored secret.
func (s *TwoFAService) enrollmentFor(secret, username string) (domain.Enrollment, error) {
	v := url.Values{}
	v.Set("secret", secret)
	v.Set("issuer", s.Issuer)
	v.Set("period", "30")
	v.Set("algorithm", "SHA1")
	v.Set("digits", "6")

	u := url.URL{
		Scheme:   "otpauth",
		Host:     "totp",
		Path:     "/" + s.Issuer + ":" + username,
		RawQuery: v.Encode(),
	}

	key, err := otp.NewKeyFromURL(u.String())
	if err != nil {
		return domain.Enrollment{}, fmt.Errorf("rebuild TOTP key: %w", err)
	}
	return enrollmentFromKey(key)
}

func enrollmentFromKey(key *otp.Key) (domain.Enrollment, error) {
	img, err := key.Image(qrImageSize, qrImageSize)
	if err != nil {
		return domain.Enrollment{}, fmt.Errorf("render QR image: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return domain.Enrollment{}, fmt.Errorf("encode QR image: %w", err)
	}

	return domain.Enrollment{
		Secret: key.Secret(),
		URI:    key.URL(),
		QRCode: "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}
