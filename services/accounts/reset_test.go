package accounts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/NehaTanti-afk/Neha-Notes/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestService_RequestPasswordReset(t *testing.T) {
	ctx := context.Background()

	t.Run("mails a reset link", func(t *testing.T) {
		svc, db := newTestService(t)
		user := signUpStudent(t, svc)
		mailer := &testutils.MockMailer{}
		mailer.On("SendPlain", mock.Anything, []string{user.Email}, "Reset your password",
			mock.MatchedBy(func(body string) bool {
				return assert.Contains(t, body, "http://localhost:8080/auth/reset-password?token=")
			})).Return(nil)
		svc.SetMailer(mailer)

		require.NoError(t, svc.RequestPasswordReset(ctx, user.Email))

		mailer.AssertExpectations(t)
		var count int64
		db.Model(&PasswordResetToken{}).Where("user_id = ?", user.ID).Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("unknown email is silent", func(t *testing.T) {
		svc, _ := newTestService(t)
		mailer := &testutils.MockMailer{}
		svc.SetMailer(mailer)

		require.NoError(t, svc.RequestPasswordReset(ctx, "nobody@example.com"))

		mailer.AssertNotCalled(t, "SendPlain", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("mail disabled", func(t *testing.T) {
		svc, _ := newTestService(t)

		assert.ErrorIs(t, svc.RequestPasswordReset(ctx, "student@example.com"), ErrMailDisabled)
	})

	t.Run("mail failure", func(t *testing.T) {
		svc, _ := newTestService(t)
		user := signUpStudent(t, svc)
		sendErr := errors.New("smtp down")
		mailer := &testutils.MockMailer{}
		mailer.On("SendPlain", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(sendErr)
		svc.SetMailer(mailer)

		assert.ErrorIs(t, svc.RequestPasswordReset(ctx, user.Email), sendErr)
	})
}

func seedResetToken(t *testing.T, svc *Service, userID, token string, expiresAt time.Time) {
	t.Helper()
	require.NoError(t, svc.db.Create(&PasswordResetToken{
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
	}).Error)
}

func TestService_ResetPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("sets the password and signs out every device", func(t *testing.T) {
		svc, db := newTestService(t)
		user := signUpStudent(t, svc)
		store := NewStore(db)
		require.NoError(t, store.SetActiveDeviceToken(ctx, user.ID, "abc123"))
		seedResetToken(t, svc, user.ID, "reset-token", time.Now().Add(time.Hour))

		require.NoError(t, svc.ResetPassword(ctx, "reset-token", "NewPassword456"))

		_, err := svc.SignIn(ctx, user.Email, "NewPassword456")
		assert.NoError(t, err)

		token, err := store.GetActiveDeviceToken(ctx, user.ID)
		require.NoError(t, err)
		assert.Nil(t, token)

		assert.ErrorIs(t, svc.ResetPassword(ctx, "reset-token", "Another789"), ErrResetTokenUsed)
	})

	t.Run("expired token", func(t *testing.T) {
		svc, _ := newTestService(t)
		user := signUpStudent(t, svc)
		seedResetToken(t, svc, user.ID, "old-token", time.Now().Add(-time.Minute))

		assert.ErrorIs(t, svc.ResetPassword(ctx, "old-token", "NewPassword456"), ErrResetTokenExpired)
	})

	t.Run("unknown token", func(t *testing.T) {
		svc, _ := newTestService(t)

		assert.ErrorIs(t, svc.ResetPassword(ctx, "nope", "NewPassword456"), ErrResetTokenInvalid)
	})

	t.Run("weak password", func(t *testing.T) {
		svc, _ := newTestService(t)

		assert.ErrorIs(t, svc.ResetPassword(ctx, "nope", "short"), ErrWeakPassword)
	})
}
