package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/startin-app/startin/internal/models"
	apperrors "github.com/startin-app/startin/pkg/errors"
)

// CompanyProfileInput carries the editable company profile fields.
type CompanyProfileInput struct {
	Name     string `json:"name" validate:"required,min=2"`
	Website  string `json:"website"`
	Location string `json:"location"`
	About    string `json:"about"`
}

// CompanyProfileService manages the 1:1 company profile.
type CompanyProfileService struct {
	db *gorm.DB
}

// NewCompanyProfileService constructs a CompanyProfileService.
func NewCompanyProfileService(db *gorm.DB) (*CompanyProfileService, error) {
	if db == nil {
		return nil, errors.New("company profile service: db is required")
	}
	return &CompanyProfileService{db: db}, nil
}

// Get returns the profile and whether one exists at all.
func (s *CompanyProfileService) Get(ctx context.Context, companyID string) (*models.CompanyProfile, bool, error) {
	var profile models.CompanyProfile
	err := s.db.WithContext(ctx).First(&profile, "id = ?", companyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("company profile service: load profile: %w", err)
	}
	return &profile, true, nil
}

// Create sets up the profile exactly once per company.
func (s *CompanyProfileService) Create(ctx context.Context, companyID string, input CompanyProfileInput) (*models.CompanyProfile, error) {
	var company models.Company
	if err := s.db.WithContext(ctx).First(&company, "id = ?", companyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("company profile service: load company: %w", err)
	}

	profile := models.CompanyProfile{
		ID:           companyID,
		UniversityID: company.UniversityID,
		Name:         strings.TrimSpace(input.Name),
		Website:      input.Website,
		Location:     input.Location,
		About:        input.About,
	}

	if err := s.db.WithContext(ctx).Create(&profile).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrProfileExists
		}
		return nil, fmt.Errorf("company profile service: create profile: %w", err)
	}
	return &profile, nil
}

// Update edits an existing profile.
func (s *CompanyProfileService) Update(ctx context.Context, companyID string, input CompanyProfileInput) (*models.CompanyProfile, error) {
	var profile models.CompanyProfile
	if err := s.db.WithContext(ctx).First(&profile, "id = ?", companyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("company profile service: load profile: %w", err)
	}

	profile.Name = strings.TrimSpace(input.Name)
	profile.Website = input.Website
	profile.Location = input.Location
	profile.About = input.About

	if err := s.db.WithContext(ctx).Save(&profile).Error; err != nil {
		return nil, fmt.Errorf("company profile service: save profile: %w", err)
	}
	return &profile, nil
}
