package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"

	"github.com/startin-app/startin/internal/models"
	"github.com/startin-app/startin/pkg/crypto"
	apperrors "github.com/startin-app/startin/pkg/errors"
)

var (
	// ErrUniversityNotFound indicates the referenced university does not exist.
	ErrUniversityNotFound = apperrors.New("UNIVERSITY_NOT_FOUND", "University not found", http.StatusNotFound)
	// ErrInviteNotFound indicates the referenced company invite does not exist.
	ErrInviteNotFound = apperrors.New("INVITE_NOT_FOUND", "Company invite not found", http.StatusNotFound)
	// ErrPasskeyInUse rejects an invite whose passkey already belongs to another invite.
	ErrPasskeyInUse = apperrors.NewConflict("PASSKEY_IN_USE", "A company invite with this passkey already exists")
)

const maskedPasskey = "********"

// UniversitySummary is one row of the admin university listing. The stored
// hash is never exposed.
type UniversitySummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Passkey string `json:"passkey"`
}

// InviteSummary is one row of the admin invite listing. Passkey carries the
// plaintext when the lookaside cache still has it, the mask otherwise.
type InviteSummary struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Passkey         string `json:"passkey"`
	Registered      bool   `json:"registered"`
	ProfileComplete bool   `json:"profile_complete"`
}

// RegisteredCompany is a company account joined with its profile, if any.
type RegisteredCompany struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	UniversityID string                 `json:"university_id"`
	Profile      *models.CompanyProfile `json:"profile,omitempty"`
}

// InviteInput carries the fields of a manually added company invite.
type InviteInput struct {
	Name    string `json:"name" validate:"required,min=2"`
	Email   string `json:"email" validate:"required,email"`
	Passkey string `json:"passkey" validate:"required,min=8"`
}

// AdminService aggregates tenants and invites for the admin console.
type AdminService struct {
	db       *gorm.DB
	passkeys *PasskeyService
	hash     func(string) (string, error)
}

// NewAdminService constructs an AdminService.
func NewAdminService(db *gorm.DB, passkeys *PasskeyService) (*AdminService, error) {
	if db == nil {
		return nil, errors.New("admin service: db is required")
	}
	if passkeys == nil {
		return nil, errors.New("admin service: passkey service is required")
	}

	return &AdminService{
		db:       db,
		passkeys: passkeys,
		hash:     crypto.HashPassword,
	}, nil
}

// ListUniversities returns every tenant with its passkey masked.
func (s *AdminService) ListUniversities(ctx context.Context) ([]UniversitySummary, error) {
	var universities []models.University
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&universities).Error; err != nil {
		return nil, fmt.Errorf("admin service: list universities: %w", err)
	}

	summaries := make([]UniversitySummary, 0, len(universities))
	for _, university := range universities {
		summaries = append(summaries, UniversitySummary{
			ID:      university.ID,
			Name:    university.Name,
			Passkey: maskedPasskey,
		})
	}
	return summaries, nil
}

// DeleteUniversity removes a tenant and everything scoped to it in one
// transaction, children first.
func (s *AdminService) DeleteUniversity(ctx context.Context, id string) error {
	var university models.University
	if err := s.db.WithContext(ctx).First(&university, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUniversityNotFound
		}
		return fmt.Errorf("admin service: load university: %w", err)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		scoped := []any{
			&models.Application{},
			&models.JobPosting{},
			&models.StudentProfile{},
			&models.OneTimeCode{},
			&models.PasswordResetToken{},
		}
		for _, model := range scoped {
			if err := tx.Where("university_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}

		var companyIDs []string
		if err := tx.Model(&models.Company{}).
			Where("university_id = ?", id).
			Pluck("id", &companyIDs).Error; err != nil {
			return err
		}

		if len(companyIDs) > 0 {
			if err := tx.Where("id IN ?", companyIDs).Delete(&models.CompanyProfile{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("university_id = ?", id).Delete(&models.Student{}).Error; err != nil {
			return err
		}
		if err := tx.Where("university_id = ?", id).Delete(&models.Company{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.University{}, "id = ?", id).Error
	})
	if err != nil {
		return fmt.Errorf("admin service: delete university: %w", err)
	}
	return nil
}

// ListCompanyInvites returns every invite with flags showing whether a
// company registered with it and whether that company completed its profile.
func (s *AdminService) ListCompanyInvites(ctx context.Context) ([]InviteSummary, error) {
	var invites []models.CompanyInvite
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&invites).Error; err != nil {
		return nil, fmt.Errorf("admin service: list invites: %w", err)
	}

	summaries := make([]InviteSummary, 0, len(invites))
	for _, invite := range invites {
		summary := InviteSummary{
			ID:      invite.ID,
			Name:    invite.Name,
			Email:   invite.Email,
			Passkey: maskedPasskey,
		}
		if plaintext, ok := s.passkeys.RecallPlaintext(ctx, invite.PasskeyHash); ok {
			summary.Passkey = plaintext
		}

		var company models.Company
		err := s.db.WithContext(ctx).First(&company, "email = ?", invite.Email).Error
		switch {
		case err == nil:
			summary.Registered = true
			var profile models.CompanyProfile
			if err := s.db.WithContext(ctx).First(&profile, "id = ?", company.ID).Error; err == nil {
				summary.ProfileComplete = profile.Name != ""
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return nil, fmt.Errorf("admin service: check registration: %w", err)
		}

		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// ListRegisteredCompanies joins company accounts with their profiles.
func (s *AdminService) ListRegisteredCompanies(ctx context.Context) ([]RegisteredCompany, error) {
	var companies []models.Company
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&companies).Error; err != nil {
		return nil, fmt.Errorf("admin service: list companies: %w", err)
	}

	result := make([]RegisteredCompany, 0, len(companies))
	for _, company := range companies {
		entry := RegisteredCompany{
			ID:           company.ID,
			Email:        company.Email,
			UniversityID: company.UniversityID,
		}
		var profile models.CompanyProfile
		if err := s.db.WithContext(ctx).First(&profile, "id = ?", company.ID).Error; err == nil {
			entry.Profile = &profile
		}
		result = append(result, entry)
	}
	return result, nil
}

// AddCompanyInvite inserts a single invite after checking the plaintext
// passkey against every stored hash.
func (s *AdminService) AddCompanyInvite(ctx context.Context, input InviteInput) (*models.CompanyInvite, error) {
	var invites []models.CompanyInvite
	if err := s.db.WithContext(ctx).Find(&invites).Error; err != nil {
		return nil, fmt.Errorf("admin service: list invites: %w", err)
	}

	hashes := make([]string, len(invites))
	for i, invite := range invites {
		hashes[i] = invite.PasskeyHash
	}
	if matchSecret(input.Passkey, hashes) >= 0 {
		return nil, ErrPasskeyInUse
	}

	hash, err := s.hash(input.Passkey)
	if err != nil {
		return nil, fmt.Errorf("admin service: hash passkey: %w", err)
	}

	invite := models.CompanyInvite{
		PasskeyHash: hash,
		Email:       normalizeEmail(input.Email),
		Name:        input.Name,
	}
	if err := s.db.WithContext(ctx).Create(&invite).Error; err != nil {
		return nil, fmt.Errorf("admin service: create invite: %w", err)
	}

	s.passkeys.RememberPlaintext(ctx, hash, input.Passkey)
	return &invite, nil
}

// DeleteCompanyInvite removes an invite and any company account registered
// with its email, children first, in one transaction.
func (s *AdminService) DeleteCompanyInvite(ctx context.Context, id string) error {
	var invite models.CompanyInvite
	if err := s.db.WithContext(ctx).First(&invite, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInviteNotFound
		}
		return fmt.Errorf("admin service: load invite: %w", err)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var companyIDs []string
		if err := tx.Model(&models.Company{}).
			Where("email = ?", invite.Email).
			Pluck("id", &companyIDs).Error; err != nil {
			return err
		}

		if len(companyIDs) > 0 {
			if err := tx.Where("company_id IN ?", companyIDs).Delete(&models.Application{}).Error; err != nil {
				return err
			}
			if err := tx.Where("company_id IN ?", companyIDs).Delete(&models.JobPosting{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", companyIDs).Delete(&models.CompanyProfile{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", companyIDs).Delete(&models.Company{}).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&models.CompanyInvite{}, "id = ?", id).Error
	})
	if err != nil {
		return fmt.Errorf("admin service: delete invite: %w", err)
	}
	return nil
}
