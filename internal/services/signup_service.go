package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/startin-app/startin/internal/auth"
	"github.com/startin-app/startin/internal/models"
	"github.com/startin-app/startin/pkg/crypto"
	apperrors "github.com/startin-app/startin/pkg/errors"
	"github.com/startin-app/startin/pkg/metrics"
)

const minPasswordLength = 6

// ErrPasswordTooShort rejects passwords below the minimum length.
var ErrPasswordTooShort = apperrors.New("PASSWORD_TOO_SHORT", "Password must be at least 6 characters", http.StatusBadRequest)

// SignupResult carries the outcome of a completed signup.
type SignupResult struct {
	AccountID    string             `json:"account_id"`
	Email        string             `json:"email"`
	UniversityID string             `json:"university_id"`
	AccountType  models.AccountType `json:"account_type"`
	Token        string             `json:"token"`
}

// SignupService finalises signups once the email verification code checks out.
type SignupService struct {
	db   *gorm.DB
	otp  *OTPService
	jwt  *auth.JWTService
	hash func(password string) (string, error)
}

// NewSignupService constructs a SignupService.
func NewSignupService(db *gorm.DB, otp *OTPService, jwt *auth.JWTService) (*SignupService, error) {
	if db == nil {
		return nil, errors.New("signup service: db is required")
	}
	if otp == nil {
		return nil, errors.New("signup service: otp service is required")
	}
	if jwt == nil {
		return nil, errors.New("signup service: jwt service is required")
	}

	return &SignupService{
		db:   db,
		otp:  otp,
		jwt:  jwt,
		hash: crypto.HashPassword,
	}, nil
}

// Complete verifies the submitted code and, in a single transaction, creates
// the account and consumes the code row. The account's university is always
// taken from the stored code, never from client input. The access token is
// issued only after the transaction commits.
func (s *SignupService) Complete(ctx context.Context, email, code, password string) (*SignupResult, error) {
	if len(strings.TrimSpace(password)) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	row, err := s.otp.VerifyCode(ctx, email, code)
	if err != nil {
		return nil, err
	}

	hashed, err := s.hash(password)
	if err != nil {
		return nil, fmt.Errorf("signup service: hash password: %w", err)
	}

	var accountID string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch row.AccountType {
		case models.AccountTypeStudent:
			student := models.Student{
				Email:        row.Email,
				Password:     hashed,
				UniversityID: row.UniversityID,
			}
			if err := tx.Create(&student).Error; err != nil {
				if isUniqueConstraintError(err) {
					return apperrors.ErrAlreadyRegistered
				}
				return fmt.Errorf("signup service: create student: %w", err)
			}
			accountID = student.ID
		case models.AccountTypeCompany:
			company := models.Company{
				Email:        row.Email,
				Password:     hashed,
				UniversityID: row.UniversityID,
			}
			if err := tx.Create(&company).Error; err != nil {
				if isUniqueConstraintError(err) {
					return apperrors.ErrAlreadyRegistered
				}
				return fmt.Errorf("signup service: create company: %w", err)
			}
			accountID = company.ID
		default:
			return apperrors.NewBadRequest("Unknown account type")
		}

		return tx.Delete(&models.OneTimeCode{}, "id = ?", row.ID).Error
	})
	if err != nil {
		return nil, err
	}

	token, err := s.jwt.GenerateAccessToken(auth.AccessTokenInput{
		UserID:       accountID,
		Email:        row.Email,
		UniversityID: row.UniversityID,
		UserType:     string(row.AccountType),
	})
	if err != nil {
		return nil, fmt.Errorf("signup service: issue token: %w", err)
	}

	metrics.AuthAttempts.WithLabelValues(string(row.AccountType), "success").Inc()

	return &SignupResult{
		AccountID:    accountID,
		Email:        row.Email,
		UniversityID: row.UniversityID,
		AccountType:  row.AccountType,
		Token:        token,
	}, nil
}
