package service

import (
	"context"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

func TestTwoFAVerify(t *testing.T) {
	ctx := context.Background()

	t.Run("wrong code rejected", func(t *testing.T) {
		st := newTestStore(t)
		svc := newTestAuthService(t, st)

		_, _, err := svc.Register(ctx, validRegisterInput())
		require.NoError(t, err)

		_, err = svc.TwoFA.Verify(ctx, "alice", "000000")
		require.ErrorIs(t, err, ErrInvalidTOTPCode)

		profile, err := st.Profiles().GetProfile(ctx, mustUserID(t, st, "alice"))
		require.NoError(t, err)
		require.False(t, profile.Verified2FA)
	})

	t.Run("unknown user maps to invalid credentials", func(t *testing.T) {
		st := newTestStore(t)
		svc := newTestAuthService(t, st)

		_, err := svc.TwoFA.Verify(ctx, "ghost", "123456")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("valid code marks verified and issues tokens", func(t *testing.T) {
		st := newTestStore(t)
		svc := newTestAuthService(t, st)

		user, enrollment, err := svc.Register(ctx, validRegisterInput())
		require.NoError(t, err)

		code, err := totp.GenerateCode(enrollment.Secret, time.Now())
		require.NoError(t, err)

		pair, err := svc.TwoFA.Verify(ctx, "alice", code)
		require.NoError(t, err)
		require.NotEmpty(t, pair.AccessToken)
		require.NotEmpty(t, pair.RefreshToken)

		profile, err := st.Profiles().GetProfile(ctx, user.ID)
		require.NoError(t, err)
		require.True(t, profile.Verified2FA)

		// Repeat verification stays valid (fresh logins need a code too).
		code2, err := totp.GenerateCode(enrollment.Secret, time.Now())
		require.NoError(t, err)
		_, err = svc.TwoFA.Verify(ctx, "alice", code2)
		require.NoError(t, err)
	})
}

func TestTwoFAEnrollReusesSecret(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newTestAuthService(t, st)

	user, enrollment, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	again, err := svc.TwoFA.Enroll(ctx, user.ID, user.Username)
	require.NoError(t, err)
	require.Equal(t, enrollment.Secret, again.Secret)
	require.NotEmpty(t, again.QRCode)
}
