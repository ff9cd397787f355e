package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/startin-app/startin/internal/models"
)

func TestPasswordResetRoundTrip(t *testing.T) {
	db := newTestDB(t)
	university := createUniversity(t, db, "Test University")
	createStudent(t, db, university.ID, "frank@example.edu", "oldpassword")
	mailer := &recordingMailer{}

	svc, err := NewPasswordResetService(db, mailer,
		WithResetBaseURL("https://startin.example.com"))
	require.NoError(t, err)

	ctx := context.Background()
	token, err := svc.RequestReset(ctx, "frank@example.edu", university.ID, models.AccountTypeStudent)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	messages := mailer.sent()
	require.Len(t, messages, 1)
	require.Contains(t, messages[0].Body, "https://startin.example.com/reset-password?token="+token)

	row, err := svc.VerifyToken(ctx, token)
	require.NoError(t, err)
	require.Equal(t, "frank@example.edu", row.Email)

	require.NoError(t, svc.ResetPassword(ctx, token, "newpassword"))

	var student models.Student
	require.NoError(t, db.First(&student, "email = ?", "frank@example.edu").Error)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(student.Password), []byte("newpassword")))
}

func TestPasswordResetTokenIsSingleUse(t *testing.T) {
	db := newTestDB(t)
	university := createUniversity(t, db, "Test University")
	createCompany(t, db, university.ID, "acme@example.com", "oldpassword")

	svc, err := NewPasswordResetService(db, nil)
	require.NoError(t, err)

	ctx := context.Background()
	token, err := svc.RequestReset(ctx, "acme@example.com", "", models.AccountTypeCompany)
	require.NoError(t, err)

	require.NoError(t, svc.ResetPassword(ctx, token, "newpassword"))

	_, err = svc.VerifyToken(ctx, token)
	require.ErrorIs(t, err, ErrResetTokenNotFound)

	err = svc.ResetPassword(ctx, token, "anotherpassword")
	require.ErrorIs(t, err, ErrResetTokenNotFound)
}

func TestPasswordResetDoesNotLeakUnknownAccounts(t *testing.T) {
	db := newTestDB(t)

	svc, err := NewPasswordResetService(db, nil)
	require.NoError(t, err)

	token, err := svc.RequestReset(context.Background(), "ghost@example.edu", "", models.AccountTypeStudent)
	require.NoError(t, err)
	require.Empty(t, token)

	var count int64
	require.NoError(t, db.Model(&models.PasswordResetToken{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestPasswordResetExpiredToken(t *testing.T) {
	db := newTestDB(t)
	university := createUniversity(t, db, "Test University")
	createStudent(t, db, university.ID, "grace@example.edu", "oldpassword")
	clock := newFixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	svc, err := NewPasswordResetService(db, nil,
		WithResetClock(clock.Now),
		WithResetExpiry(time.Hour))
	require.NoError(t, err)

	ctx := context.Background()
	token, err := svc.RequestReset(ctx, "grace@example.edu", university.ID, models.AccountTypeStudent)
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)

	_, err = svc.VerifyToken(ctx, token)
	require.ErrorIs(t, err, ErrResetTokenExpired)
}

func TestPasswordResetNewRequestReplacesPendingToken(t *testing.T) {
	db := newTestDB(t)
	university := createUniversity(t, db, "Test University")
	createStudent(t, db, university.ID, "heidi@example.edu", "oldpassword")

	svc, err := NewPasswordResetService(db, nil)
	require.NoError(t, err)

	ctx := context.Background()
	first, err := svc.RequestReset(ctx, "heidi@example.edu", university.ID, models.AccountTypeStudent)
	require.NoError(t, err)
	second, err := svc.RequestReset(ctx, "heidi@example.edu", university.ID, models.AccountTypeStudent)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	_, err = svc.VerifyToken(ctx, first)
	require.ErrorIs(t, err, ErrResetTokenNotFound)

	_, err = svc.VerifyToken(ctx, second)
	require.NoError(t, err)
}
