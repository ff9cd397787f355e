package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/startin-app/startin/internal/models"
	"github.com/startin-app/startin/pkg/crypto"
	apperrors "github.com/startin-app/startin/pkg/errors"
	"github.com/startin-app/startin/pkg/logger"
	"github.com/startin-app/startin/pkg/mail"
)

const (
	defaultResetExpiry      = time.Hour
	defaultResetTokenLength = 32
)

var (
	// ErrResetTokenNotFound indicates the token does not exist or was already consumed.
	ErrResetTokenNotFound = apperrors.New("RESET_TOKEN_NOT_FOUND", "Invalid or already used reset token", http.StatusNotFound)
	// ErrResetTokenExpired indicates the token lapsed before use.
	ErrResetTokenExpired = apperrors.New("RESET_TOKEN_EXPIRED", "Reset token has expired, request a new one", http.StatusBadRequest)
	// ErrResetAccountNotFound indicates the identity bound to the token no longer exists.
	ErrResetAccountNotFound = apperrors.New("RESET_ACCOUNT_NOT_FOUND", "Account not found", http.StatusNotFound)
)

// ResetOption customises the PasswordResetService.
type ResetOption func(*PasswordResetService)

// WithResetExpiry overrides the token lifetime.
func WithResetExpiry(d time.Duration) ResetOption {
	return func(s *PasswordResetService) {
		if d > 0 {
			s.expiry = d
		}
	}
}

// WithResetTokenSize adjusts the number of random bytes in generated tokens.
func WithResetTokenSize(size int) ResetOption {
	return func(s *PasswordResetService) {
		if size > 0 {
			s.tokenLength = size
		}
	}
}

// WithResetClock injects a custom time source.
func WithResetClock(clock func() time.Time) ResetOption {
	return func(s *PasswordResetService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithResetBaseURL sets the base URL used in emailed reset links.
func WithResetBaseURL(url string) ResetOption {
	return func(s *PasswordResetService) {
		s.baseURL = strings.TrimRight(url, "/")
	}
}

// PasswordResetService manages the single-use reset token handshake for
// students and companies.
type PasswordResetService struct {
	db          *gorm.DB
	mailer      mail.Mailer
	baseURL     string
	expiry      time.Duration
	tokenLength int
	now         func() time.Time
	log         *zap.Logger
}

// NewPasswordResetService constructs a PasswordResetService.
func NewPasswordResetService(db *gorm.DB, mailer mail.Mailer, opts ...ResetOption) (*PasswordResetService, error) {
	if db == nil {
		return nil, errors.New("password reset service: db is required")
	}

	service := &PasswordResetService{
		db:          db,
		mailer:      mailer,
		expiry:      defaultResetExpiry,
		tokenLength: defaultResetTokenLength,
		now:         time.Now,
		log:         logger.WithModule("password_reset"),
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// RequestReset issues a reset token when the identity exists. The return is
// identical whether or not an account matched so the endpoint does not leak
// which emails are registered. The issued token is returned for tests;
// callers expose only the generic acknowledgement.
func (s *PasswordResetService) RequestReset(ctx context.Context, email, universityID string, userType models.AccountType) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	universityID = strings.TrimSpace(universityID)
	if email == "" {
		return "", apperrors.NewBadRequest("Email is required")
	}
	if !userType.Valid() {
		return "", apperrors.NewBadRequest("Unknown account type")
	}

	tenantID, exists, err := s.resolveIdentity(ctx, email, universityID, userType)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", nil
	}
	universityID = tenantID

	token, err := crypto.GenerateToken(s.tokenLength)
	if err != nil {
		return "", fmt.Errorf("password reset service: generate token: %w", err)
	}

	now := s.now().UTC()
	row := models.PasswordResetToken{
		Token:        token,
		Email:        email,
		UniversityID: universityID,
		UserType:     userType,
		ExpiresAt:    now.Add(s.expiry),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ? AND university_id = ? AND user_type = ? AND used = ?",
			email, universityID, userType, false).
			Delete(&models.PasswordResetToken{}).Error; err != nil {
			return fmt.Errorf("password reset service: cleanup existing: %w", err)
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		return "", err
	}

	s.deliver(ctx, email, token)
	return token, nil
}

// VerifyToken validates a token without consuming it and returns the bound email.
func (s *PasswordResetService) VerifyToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	row, err := s.findUsableToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return row, nil
}

// ResetPassword consumes the token and overwrites the account password in a
// single transaction. A token is usable exactly once.
func (s *PasswordResetService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(strings.TrimSpace(newPassword)) < minPasswordLength {
		return ErrPasswordTooShort
	}

	row, err := s.findUsableToken(ctx, token)
	if err != nil {
		return err
	}

	hashed, err := crypto.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("password reset service: hash password: %w", err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var updated *gorm.DB
		switch row.UserType {
		case models.AccountTypeStudent:
			updated = tx.Model(&models.Student{}).
				Where("email = ? AND university_id = ?", row.Email, row.UniversityID).
				Update("password", hashed)
		case models.AccountTypeCompany:
			updated = tx.Model(&models.Company{}).
				Where("email = ? AND university_id = ?", row.Email, row.UniversityID).
				Update("password", hashed)
		default:
			return apperrors.NewBadRequest("Unknown account type")
		}
		if updated.Error != nil {
			return fmt.Errorf("password reset service: update password: %w", updated.Error)
		}
		if updated.RowsAffected == 0 {
			return ErrResetAccountNotFound
		}

		return tx.Model(&models.PasswordResetToken{}).
			Where("id = ?", row.ID).
			Update("used", true).Error
	})
}

func (s *PasswordResetService) findUsableToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperrors.NewBadRequest("Token is required")
	}

	var row models.PasswordResetToken
	if err := s.db.WithContext(ctx).
		Where("token = ? AND used = ?", token, false).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResetTokenNotFound
		}
		return nil, fmt.Errorf("password reset service: find token: %w", err)
	}

	if row.ExpiredAt(s.now().UTC()) {
		return nil, ErrResetTokenExpired
	}

	return &row, nil
}

// resolveIdentity locates the account for the reset request and returns its
// university. When no university is supplied the account's own tenant wins.
func (s *PasswordResetService) resolveIdentity(ctx context.Context, email, universityID string, userType models.AccountType) (string, bool, error) {
	query := s.db.WithContext(ctx)

	switch userType {
	case models.AccountTypeStudent:
		query = query.Model(&models.Student{})
	case models.AccountTypeCompany:
		query = query.Model(&models.Company{})
	default:
		return "", false, apperrors.NewBadRequest("Unknown account type")
	}

	query = query.Where("email = ?", email)
	if universityID != "" {
		query = query.Where("university_id = ?", universityID)
	}

	var tenantIDs []string
	if err := query.Limit(1).Pluck("university_id", &tenantIDs).Error; err != nil {
		return "", false, fmt.Errorf("password reset service: check identity: %w", err)
	}
	if len(tenantIDs) == 0 {
		return "", false, nil
	}
	return tenantIDs[0], true, nil
}

func (s *PasswordResetService) deliver(ctx context.Context, email, token string) {
	if s.mailer == nil {
		return
	}

	link := token
	if s.baseURL != "" {
		link = fmt.Sprintf("%s/reset-password?token=%s", s.baseURL, token)
	}

	msg := mail.PasswordResetMessage(email, link, s.expiry)
	if err := s.mailer.Send(ctx, msg); err != nil && !errors.Is(err, mail.ErrSMTPDisabled) {
		s.log.Warn("reset email delivery failed",
			zap.String("email", email),
			zap.Error(err))
	}
}
