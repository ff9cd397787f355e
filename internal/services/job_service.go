package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/startin-app/startin/internal/models"
	apperrors "github.com/startin-app/startin/pkg/errors"
	"github.com/startin-app/startin/pkg/metrics"
)

var (
	// ErrEndDateInPast rejects postings whose end date is not strictly in the future.
	ErrEndDateInPast = apperrors.NewBadRequest("Job end date must be in the future")
	// ErrJobNotFound indicates the referenced posting does not exist.
	ErrJobNotFound = apperrors.New("JOB_NOT_FOUND", "Job posting not found", http.StatusNotFound)
	// ErrAlreadyApplied rejects a second application by the same student to the same job.
	ErrAlreadyApplied = apperrors.NewConflict("ALREADY_APPLIED", "You have already applied to this job")
	// ErrInvalidStatus rejects application statuses outside the allowed set.
	ErrInvalidStatus = apperrors.NewBadRequest("Invalid application status")
	// ErrApplicationNotFound indicates the referenced application does not exist.
	ErrApplicationNotFound = apperrors.New("APPLICATION_NOT_FOUND", "Application not found", http.StatusNotFound)
)

// JobOption customises the JobService.
type JobOption func(*JobService)

// WithJobClock injects a custom time source.
func WithJobClock(clock func() time.Time) JobOption {
	return func(s *JobService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// JobInput carries the fields of a new posting.
type JobInput struct {
	Title        string `json:"title" validate:"required"`
	Type         string `json:"type" validate:"required"`
	Salary       string `json:"salary" validate:"required"`
	Description  string `json:"description" validate:"required"`
	Requirements string `json:"requirements" validate:"required"`
	EndDate      string `json:"end_date" validate:"required"`
}

// JobListing is a posting joined with its company's display name.
type JobListing struct {
	models.JobPosting
	CompanyName string `json:"company_name"`
	Status      string `json:"status"`
}

// StudentApplication is an application joined with job and company info for
// the student dashboard.
type StudentApplication struct {
	ApplicationID string                   `json:"application_id"`
	Status        models.ApplicationStatus `json:"status"`
	AppliedAt     time.Time                `json:"applied_at"`
	Job           models.JobPosting        `json:"job"`
	CompanyName   string                   `json:"company_name"`
}

// JobApplicant is one applicant row in a company's per-job review listing.
type JobApplicant struct {
	ApplicationID string                   `json:"application_id"`
	Status        models.ApplicationStatus `json:"status"`
	AppliedAt     time.Time                `json:"applied_at"`
	StudentID     string                   `json:"student_id"`
	StudentEmail  string                   `json:"student_email"`
	Profile       *models.StudentProfile   `json:"profile,omitempty"`
}

// JobApplicants groups the applicants of one posting.
type JobApplicants struct {
	Job        models.JobPosting `json:"job"`
	Applicants []JobApplicant    `json:"applicants"`
}

// JobService manages job postings and applications within one university.
type JobService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewJobService constructs a JobService.
func NewJobService(db *gorm.DB, opts ...JobOption) (*JobService, error) {
	if db == nil {
		return nil, errors.New("job service: db is required")
	}

	service := &JobService{db: db, now: time.Now}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// CreateJob publishes a posting for the company. The end date is parsed as
// RFC 3339 or as a bare date and must lie strictly in the future.
func (s *JobService) CreateJob(ctx context.Context, companyID string, input JobInput) (*models.JobPosting, error) {
	var company models.Company
	if err := s.db.WithContext(ctx).First(&company, "id = ?", companyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("job service: load company: %w", err)
	}

	endDate, err := parseEndDate(input.EndDate)
	if err != nil {
		return nil, apperrors.NewBadRequest("End date must be an RFC 3339 timestamp or YYYY-MM-DD")
	}
	if !endDate.After(s.now().UTC()) {
		return nil, ErrEndDateInPast
	}

	job := models.JobPosting{
		UniversityID: company.UniversityID,
		CompanyID:    company.ID,
		Title:        strings.TrimSpace(input.Title),
		Type:         strings.TrimSpace(input.Type),
		Salary:       strings.TrimSpace(input.Salary),
		Description:  input.Description,
		Requirements: input.Requirements,
		EndDate:      endDate,
	}

	if err := s.db.WithContext(ctx).Create(&job).Error; err != nil {
		return nil, fmt.Errorf("job service: create job: %w", err)
	}
	return &job, nil
}

// ListOpenJobs returns the university's postings that have not reached their
// end date, each joined with the company display name.
func (s *JobService) ListOpenJobs(ctx context.Context, universityID string) ([]JobListing, error) {
	var jobs []models.JobPosting
	if err := s.db.WithContext(ctx).
		Where("university_id = ? AND end_date >= ?", universityID, s.now().UTC()).
		Order("created_at DESC").
		Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("job service: list open jobs: %w", err)
	}

	return s.decorate(ctx, jobs)
}

// CompanyJobs returns every posting by the company with its derived status.
func (s *JobService) CompanyJobs(ctx context.Context, companyID string) ([]JobListing, error) {
	var jobs []models.JobPosting
	if err := s.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("job service: list company jobs: %w", err)
	}

	return s.decorate(ctx, jobs)
}

// Apply records a student's application. The job's university and company
// are copied from the posting so tenant bookkeeping cannot drift.
func (s *JobService) Apply(ctx context.Context, studentID, jobID string) (*models.Application, error) {
	var job models.JobPosting
	if err := s.db.WithContext(ctx).First(&job, "id = ?", jobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("job service: load job: %w", err)
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.Application{}).
		Where("student_id = ? AND job_id = ?", studentID, jobID).
		Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("job service: check existing application: %w", err)
	}
	if existing > 0 {
		metrics.Applications.WithLabelValues("duplicate").Inc()
		return nil, ErrAlreadyApplied
	}

	application := models.Application{
		UniversityID: job.UniversityID,
		CompanyID:    job.CompanyID,
		StudentID:    studentID,
		JobID:        jobID,
		Status:       models.ApplicationStatusPending,
	}

	if err := s.db.WithContext(ctx).Create(&application).Error; err != nil {
		if isUniqueConstraintError(err) {
			metrics.Applications.WithLabelValues("duplicate").Inc()
			return nil, ErrAlreadyApplied
		}
		return nil, fmt.Errorf("job service: create application: %w", err)
	}

	metrics.Applications.WithLabelValues("created").Inc()
	return &application, nil
}

// UpdateApplicationStatus moves an application to one of the allowed states.
func (s *JobService) UpdateApplicationStatus(ctx context.Context, applicationID string, status models.ApplicationStatus) (*models.Application, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	var application models.Application
	if err := s.db.WithContext(ctx).First(&application, "id = ?", applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("job service: load application: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&application).
		Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("job service: update status: %w", err)
	}

	application.Status = status
	return &application, nil
}

// StudentApplications lists the student's applications joined with job and
// company info.
func (s *JobService) StudentApplications(ctx context.Context, studentID string) ([]StudentApplication, error) {
	var applications []models.Application
	if err := s.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&applications).Error; err != nil {
		return nil, fmt.Errorf("job service: list applications: %w", err)
	}

	result := make([]StudentApplication, 0, len(applications))
	for _, application := range applications {
		var job models.JobPosting
		if err := s.db.WithContext(ctx).First(&job, "id = ?", application.JobID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, fmt.Errorf("job service: load job: %w", err)
		}

		result = append(result, StudentApplication{
			ApplicationID: application.ID,
			Status:        application.Status,
			AppliedAt:     application.CreatedAt,
			Job:           job,
			CompanyName:   s.companyName(ctx, job.CompanyID),
		})
	}
	return result, nil
}

// CompanyApplicants groups the company's applications per posting with each
// applicant's profile payload.
func (s *JobService) CompanyApplicants(ctx context.Context, companyID string) ([]JobApplicants, error) {
	var jobs []models.JobPosting
	if err := s.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("job service: list company jobs: %w", err)
	}

	result := make([]JobApplicants, 0, len(jobs))
	for _, job := range jobs {
		var applications []models.Application
		if err := s.db.WithContext(ctx).
			Where("job_id = ?", job.ID).
			Order("created_at ASC").
			Find(&applications).Error; err != nil {
			return nil, fmt.Errorf("job service: list job applications: %w", err)
		}

		applicants := make([]JobApplicant, 0, len(applications))
		for _, application := range applications {
			applicant := JobApplicant{
				ApplicationID: application.ID,
				Status:        application.Status,
				AppliedAt:     application.CreatedAt,
				StudentID:     application.StudentID,
			}

			var student models.Student
			if err := s.db.WithContext(ctx).First(&student, "id = ?", application.StudentID).Error; err == nil {
				applicant.StudentEmail = student.Email
			}

			var profile models.StudentProfile
			if err := s.db.WithContext(ctx).First(&profile, "id = ?", application.StudentID).Error; err == nil {
				applicant.Profile = &profile
			}

			applicants = append(applicants, applicant)
		}

		result = append(result, JobApplicants{Job: job, Applicants: applicants})
	}
	return result, nil
}

func (s *JobService) decorate(ctx context.Context, jobs []models.JobPosting) ([]JobListing, error) {
	now := s.now().UTC()
	listings := make([]JobListing, 0, len(jobs))
	for _, job := range jobs {
		listings = append(listings, JobListing{
			JobPosting:  job,
			CompanyName: s.companyName(ctx, job.CompanyID),
			Status:      job.StatusAt(now),
		})
	}
	return listings, nil
}

// companyName resolves the display name, preferring the profile over the
// login email.
func (s *JobService) companyName(ctx context.Context, companyID string) string {
	var profile models.CompanyProfile
	if err := s.db.WithContext(ctx).First(&profile, "id = ?", companyID).Error; err == nil && profile.Name != "" {
		return profile.Name
	}

	var company models.Company
	if err := s.db.WithContext(ctx).First(&company, "id = ?", companyID).Error; err == nil {
		return company.Email
	}
	return ""
}

// parseEndDate accepts RFC 3339 timestamps or bare YYYY-MM-DD dates, which
// are taken as end-of-day UTC so a posting stays open through its last day.
func parseEndDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, err
	}
	return t.Add(24*time.Hour - time.Second).UTC(), nil
}
