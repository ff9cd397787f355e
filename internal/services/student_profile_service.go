package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"gorm.io/gorm"

	"github.com/startin-app/startin/internal/models"
	"github.com/startin-app/startin/internal/storage"
	apperrors "github.com/startin-app/startin/pkg/errors"
)

var (
	// ErrProfileExists rejects creating a second profile for the same account.
	ErrProfileExists = apperrors.NewConflict("PROFILE_EXISTS", "Profile already exists")
	// ErrProfileNotFound indicates the account has not set up a profile yet.
	ErrProfileNotFound = apperrors.New("PROFILE_NOT_FOUND", "Profile not found", http.StatusNotFound)
	// ErrUnsupportedResumeType rejects resume files that are not pdf, doc, or docx.
	ErrUnsupportedResumeType = apperrors.NewBadRequest("Resume must be a pdf, doc, or docx file")
)

// ResumeUpload describes an incoming resume file.
type ResumeUpload struct {
	Filename    string
	ContentType string
	Reader      io.Reader
}

// StudentProfileInput carries the editable profile fields.
type StudentProfileInput struct {
	FullName string `json:"full_name" validate:"required,min=2"`
	About    string `json:"about"`
	Skills   string `json:"skills"`
	GitHub   string `json:"github"`
	LinkedIn string `json:"linkedin"`
}

// StudentProfileService manages the 1:1 student profile and its resume file.
type StudentProfileService struct {
	db    *gorm.DB
	files storage.Storage
}

// NewStudentProfileService constructs a StudentProfileService.
func NewStudentProfileService(db *gorm.DB, files storage.Storage) (*StudentProfileService, error) {
	if db == nil {
		return nil, errors.New("student profile service: db is required")
	}
	if files == nil {
		return nil, errors.New("student profile service: storage is required")
	}
	return &StudentProfileService{db: db, files: files}, nil
}

// Get returns the profile and whether one exists at all.
func (s *StudentProfileService) Get(ctx context.Context, studentID string) (*models.StudentProfile, bool, error) {
	var profile models.StudentProfile
	err := s.db.WithContext(ctx).First(&profile, "id = ?", studentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("student profile service: load profile: %w", err)
	}
	return &profile, true, nil
}

// Create sets up the profile exactly once per student.
func (s *StudentProfileService) Create(ctx context.Context, studentID string, input StudentProfileInput, resume *ResumeUpload) (*models.StudentProfile, error) {
	var student models.Student
	if err := s.db.WithContext(ctx).First(&student, "id = ?", studentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("student profile service: load student: %w", err)
	}

	resumePath, err := s.storeResume(ctx, studentID, resume, "")
	if err != nil {
		return nil, err
	}

	profile := models.StudentProfile{
		ID:           studentID,
		UniversityID: student.UniversityID,
		FullName:     strings.TrimSpace(input.FullName),
		About:        input.About,
		Skills:       input.Skills,
		GitHub:       input.GitHub,
		LinkedIn:     input.LinkedIn,
		ResumePath:   resumePath,
	}

	if err := s.db.WithContext(ctx).Create(&profile).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrProfileExists
		}
		return nil, fmt.Errorf("student profile service: create profile: %w", err)
	}
	return &profile, nil
}

// Update edits an existing profile, optionally replacing the stored resume.
func (s *StudentProfileService) Update(ctx context.Context, studentID string, input StudentProfileInput, resume *ResumeUpload) (*models.StudentProfile, error) {
	var profile models.StudentProfile
	if err := s.db.WithContext(ctx).First(&profile, "id = ?", studentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("student profile service: load profile: %w", err)
	}

	if resume != nil {
		resumePath, err := s.storeResume(ctx, studentID, resume, profile.ResumePath)
		if err != nil {
			return nil, err
		}
		profile.ResumePath = resumePath
	}

	profile.FullName = strings.TrimSpace(input.FullName)
	profile.About = input.About
	profile.Skills = input.Skills
	profile.GitHub = input.GitHub
	profile.LinkedIn = input.LinkedIn

	if err := s.db.WithContext(ctx).Save(&profile).Error; err != nil {
		return nil, fmt.Errorf("student profile service: save profile: %w", err)
	}
	return &profile, nil
}

// OpenResume streams the stored resume for download.
func (s *StudentProfileService) OpenResume(ctx context.Context, studentID string) (io.ReadCloser, string, error) {
	profile, ok, err := s.Get(ctx, studentID)
	if err != nil {
		return nil, "", err
	}
	if !ok || profile.ResumePath == "" {
		return nil, "", apperrors.ErrNotFound
	}

	reader, err := s.files.Get(ctx, profile.ResumePath)
	if err != nil {
		return nil, "", apperrors.ErrNotFound.WithInternal(err)
	}
	return reader, filepath.Base(profile.ResumePath), nil
}

// storeResume validates and persists the upload, removing the replaced
// object once the new one is stored.
func (s *StudentProfileService) storeResume(ctx context.Context, studentID string, resume *ResumeUpload, previous string) (string, error) {
	if resume == nil {
		return previous, nil
	}

	ext := strings.ToLower(filepath.Ext(resume.Filename))
	switch ext {
	case ".pdf", ".doc", ".docx":
	default:
		return "", ErrUnsupportedResumeType
	}

	key := fmt.Sprintf("%s/%s", studentID, filepath.Base(resume.Filename))
	if err := s.files.Save(ctx, key, resume.Reader, resume.ContentType); err != nil {
		return "", fmt.Errorf("student profile service: store resume: %w", err)
	}

	if previous != "" && previous != key {
		_ = s.files.Delete(ctx, previous)
	}
	return key, nil
}
