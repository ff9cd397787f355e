package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/startin-app/startin/internal/auth"
	"github.com/startin-app/startin/internal/models"
	"github.com/startin-app/startin/pkg/crypto"
	apperrors "github.com/startin-app/startin/pkg/errors"
	"github.com/startin-app/startin/pkg/metrics"
)

// LoginResult carries the outcome of a successful authentication.
type LoginResult struct {
	AccountID    string `json:"account_id"`
	Email        string `json:"email"`
	UniversityID string `json:"university_id,omitempty"`
	UserType     string `json:"user_type"`
	Token        string `json:"token"`
}

// LoginService authenticates students, companies, and admins against their
// stored bcrypt hashes and issues access tokens.
type LoginService struct {
	db  *gorm.DB
	jwt *auth.JWTService
}

// NewLoginService constructs a LoginService.
func NewLoginService(db *gorm.DB, jwt *auth.JWTService) (*LoginService, error) {
	if db == nil {
		return nil, errors.New("login service: db is required")
	}
	if jwt == nil {
		return nil, errors.New("login service: jwt service is required")
	}
	return &LoginService{db: db, jwt: jwt}, nil
}

// StudentLogin authenticates a student account. Accounts are unique per
// (email, university), so the lookup always filters on both.
func (s *LoginService) StudentLogin(ctx context.Context, email, universityID, password string) (*LoginResult, error) {
	email = normalizeEmail(email)

	var student models.Student
	err := s.db.WithContext(ctx).
		Where("email = ? AND university_id = ?", email, universityID).
		First(&student).Error
	return s.finish(string(models.AccountTypeStudent), err, student.ID, student.Email, student.UniversityID, student.Password, password)
}

// CompanyLogin authenticates a company account within its university.
func (s *LoginService) CompanyLogin(ctx context.Context, email, universityID, password string) (*LoginResult, error) {
	email = normalizeEmail(email)

	var company models.Company
	err := s.db.WithContext(ctx).
		Where("email = ? AND university_id = ?", email, universityID).
		First(&company).Error
	return s.finish(string(models.AccountTypeCompany), err, company.ID, company.Email, company.UniversityID, company.Password, password)
}

// AdminLogin authenticates a platform operator.
func (s *LoginService) AdminLogin(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)

	var admin models.Admin
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&admin).Error
	return s.finish(auth.UserTypeAdmin, err, admin.ID, admin.Email, "", admin.Password, password)
}

// finish maps lookup results onto a uniform outcome. Unknown emails and
// wrong passwords produce the identical error so the endpoint does not leak
// which of the two failed.
func (s *LoginService) finish(userType string, lookupErr error, id, email, universityID, hash, password string) (*LoginResult, error) {
	if lookupErr != nil {
		if errors.Is(lookupErr, gorm.ErrRecordNotFound) {
			metrics.AuthAttempts.WithLabelValues(userType, "failure").Inc()
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login service: lookup account: %w", lookupErr)
	}

	if !crypto.VerifyPassword(hash, password) {
		metrics.AuthAttempts.WithLabelValues(userType, "failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateAccessToken(auth.AccessTokenInput{
		UserID:       id,
		Email:        email,
		UniversityID: universityID,
		UserType:     userType,
	})
	if err != nil {
		return nil, fmt.Errorf("login service: issue token: %w", err)
	}

	metrics.AuthAttempts.WithLabelValues(userType, "success").Inc()
	return &LoginResult{
		AccountID:    id,
		Email:        email,
		UniversityID: universityID,
		UserType:     userType,
		Token:        token,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
