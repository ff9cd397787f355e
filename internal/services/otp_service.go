package services

import (
	"context"
	"errors"
	"fmt"
	"math"
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
	"github.com/startin-app/startin/pkg/metrics"
)

const (
	defaultCodeDigits = 6
	defaultCodeExpiry = 10 * time.Minute
)

var (
	// ErrCodeNotFound indicates no pending verification code exists for the email.
	ErrCodeNotFound = apperrors.New("CODE_NOT_FOUND", "No verification code found for this email", http.StatusNotFound)
	// ErrCodeExpired indicates the code lapsed; the stale row is removed and a fresh request is needed.
	ErrCodeExpired = apperrors.New("CODE_EXPIRED", "Verification code has expired, request a new one", http.StatusBadRequest)
	// ErrCodeMismatch indicates the submitted code does not equal the stored one. The row is kept.
	ErrCodeMismatch = apperrors.New("CODE_MISMATCH", "Incorrect verification code", http.StatusBadRequest)
)

// OTPOption customises the OTPService.
type OTPOption func(*OTPService)

// WithOTPExpiry overrides the code lifetime.
func WithOTPExpiry(d time.Duration) OTPOption {
	return func(s *OTPService) {
		if d > 0 {
			s.expiry = d
		}
	}
}

// WithOTPDigits adjusts the number of digits in generated codes.
func WithOTPDigits(digits int) OTPOption {
	return func(s *OTPService) {
		if digits > 0 {
			s.digits = digits
		}
	}
}

// WithOTPClock injects a custom time source.
func WithOTPClock(clock func() time.Time) OTPOption {
	return func(s *OTPService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithOTPCodeGenerator injects a deterministic code generator.
func WithOTPCodeGenerator(gen func(digits int) (string, error)) OTPOption {
	return func(s *OTPService) {
		if gen != nil {
			s.generate = gen
		}
	}
}

// OTPService manages the email verification code handshake that gates
// student and company signups.
type OTPService struct {
	db       *gorm.DB
	mailer   mail.Mailer
	expiry   time.Duration
	digits   int
	now      func() time.Time
	generate func(digits int) (string, error)
	log      *zap.Logger
}

// NewOTPService constructs an OTPService with the provided dependencies.
func NewOTPService(db *gorm.DB, mailer mail.Mailer, opts ...OTPOption) (*OTPService, error) {
	if db == nil {
		return nil, errors.New("otp service: db is required")
	}

	service := &OTPService{
		db:       db,
		mailer:   mailer,
		expiry:   defaultCodeExpiry,
		digits:   defaultCodeDigits,
		now:      time.Now,
		generate: crypto.GenerateNumericCode,
		log:      logger.WithModule("otp"),
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// RequestCode issues a fresh verification code for a signup attempt. Any
// previous code for the same email and university is replaced so a single
// live code exists per identity.
func (s *OTPService) RequestCode(ctx context.Context, email, universityID string, accountType models.AccountType) (*models.OneTimeCode, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	universityID = strings.TrimSpace(universityID)
	if email == "" {
		return nil, apperrors.NewBadRequest("Email is required")
	}
	if universityID == "" {
		return nil, apperrors.NewBadRequest("University is required")
	}
	if !accountType.Valid() {
		return nil, apperrors.NewBadRequest("Unknown account type")
	}

	var university models.University
	if err := s.db.WithContext(ctx).First(&university, "id = ?", universityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New("UNIVERSITY_NOT_FOUND", "University not found", http.StatusNotFound)
		}
		return nil, fmt.Errorf("otp service: load university: %w", err)
	}

	registered, err := s.accountExists(ctx, email, universityID, accountType)
	if err != nil {
		return nil, err
	}
	if registered {
		return nil, apperrors.ErrAlreadyRegistered
	}

	code, err := s.generate(s.digits)
	if err != nil {
		return nil, fmt.Errorf("otp service: generate code: %w", err)
	}

	now := s.now().UTC()
	row := models.OneTimeCode{
		Email:        email,
		Code:         code,
		UniversityID: universityID,
		AccountType:  accountType,
		ExpiresAt:    now.Add(s.expiry),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ? AND university_id = ?", email, universityID).
			Delete(&models.OneTimeCode{}).Error; err != nil {
			return fmt.Errorf("otp service: cleanup existing: %w", err)
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		return nil, err
	}

	metrics.SignupCodes.WithLabelValues("issued").Inc()
	s.deliver(ctx, &row, university.Name)

	return &row, nil
}

// VerifyCode checks a submitted code against the stored row. Checks run in a
// fixed order: missing row, then expiry, then mismatch. Expired rows are
// deleted so the next attempt reports not-found; mismatched rows are kept so
// the user may retry. On success the stored row is returned for the caller
// to consume.
func (s *OTPService) VerifyCode(ctx context.Context, email, code string) (*models.OneTimeCode, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, apperrors.NewBadRequest("Email is required")
	}

	var row models.OneTimeCode
	if err := s.db.WithContext(ctx).
		Where("email = ?", email).
		Order("created_at DESC").
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, fmt.Errorf("otp service: find code: %w", err)
	}

	if row.ExpiredAt(s.now().UTC()) {
		if err := s.db.WithContext(ctx).Delete(&models.OneTimeCode{}, "id = ?", row.ID).Error; err != nil {
			return nil, fmt.Errorf("otp service: delete expired: %w", err)
		}
		metrics.SignupCodes.WithLabelValues("expired").Inc()
		return nil, ErrCodeExpired
	}

	if row.Code != strings.TrimSpace(code) {
		metrics.SignupCodes.WithLabelValues("mismatch").Inc()
		return nil, ErrCodeMismatch
	}

	metrics.SignupCodes.WithLabelValues("verified").Inc()
	return &row, nil
}

// ResendCode re-issues the pending code for an email. Within the current
// code's validity window the request is rejected with the seconds remaining;
// afterwards the stored row is refreshed in place with a new code and window.
func (s *OTPService) ResendCode(ctx context.Context, email, universityID string) (*models.OneTimeCode, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	universityID = strings.TrimSpace(universityID)
	if email == "" {
		return nil, apperrors.NewBadRequest("Email is required")
	}

	query := s.db.WithContext(ctx).Where("email = ?", email)
	if universityID != "" {
		query = query.Where("university_id = ?", universityID)
	}

	var row models.OneTimeCode
	if err := query.Order("created_at DESC").First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, fmt.Errorf("otp service: find code: %w", err)
	}

	now := s.now().UTC()
	if !row.ExpiredAt(now) {
		remaining := int(math.Ceil(row.ExpiresAt.Sub(now).Seconds()))
		return nil, apperrors.NewRateLimited("A verification code was sent recently, try again later", remaining)
	}

	code, err := s.generate(s.digits)
	if err != nil {
		return nil, fmt.Errorf("otp service: generate code: %w", err)
	}

	row.Code = code
	row.CreatedAt = now
	row.ExpiresAt = now.Add(s.expiry)
	if err := s.db.WithContext(ctx).Model(&models.OneTimeCode{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{"code": code, "created_at": now, "expires_at": row.ExpiresAt}).Error; err != nil {
		return nil, fmt.Errorf("otp service: refresh code: %w", err)
	}

	var university models.University
	universityName := ""
	if err := s.db.WithContext(ctx).First(&university, "id = ?", row.UniversityID).Error; err == nil {
		universityName = university.Name
	}

	metrics.SignupCodes.WithLabelValues("issued").Inc()
	s.deliver(ctx, &row, universityName)

	return &row, nil
}

// deliver dispatches the code email. Delivery failures are logged but never
// roll back the stored row.
func (s *OTPService) deliver(ctx context.Context, row *models.OneTimeCode, universityName string) {
	if s.mailer == nil {
		return
	}

	msg := mail.VerificationMessage(row.Email, universityName, row.Code, s.expiry)
	if err := s.mailer.Send(ctx, msg); err != nil && !errors.Is(err, mail.ErrSMTPDisabled) {
		s.log.Warn("verification email delivery failed",
			zap.String("email", row.Email),
			zap.Error(err))
	}
}

func (s *OTPService) accountExists(ctx context.Context, email, universityID string, accountType models.AccountType) (bool, error) {
	var count int64
	query := s.db.WithContext(ctx)

	switch accountType {
	case models.AccountTypeStudent:
		query = query.Model(&models.Student{})
	case models.AccountTypeCompany:
		query = query.Model(&models.Company{})
	default:
		return false, apperrors.NewBadRequest("Unknown account type")
	}

	if err := query.Where("email = ? AND university_id = ?", email, universityID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("otp service: check existing account: %w", err)
	}
	return count > 0, nil
}
