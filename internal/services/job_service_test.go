package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/startin-app/startin/internal/models"
)

func jobFixtureInput(endDate string) JobInput {
	return JobInput{
		Title:        "Backend Intern",
		Type:         "Internship",
		Salary:       "1500/month",
		Description:  "Build APIs",
		Requirements: "Go experience",
		EndDate:      endDate,
	}
}

func TestCreateJobRejectsPastEndDate(t *testing.T) {
	db := newTestDB(t)
	university := createUniversity(t, db, "Test University")
	company := createCompany(t, db, university.ID, "acme@example.com", "password1")
	clock := newFixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	svc, err := NewJobService(db, WithJobClock(clock.Now))
	require.NoError(t, err)

	ctx := context.Background()
	_, err = svc.CreateJob(ctx, company.ID, jobFixtureInput("2026-02-28"))
	require.ErrorIs(t, err, ErrEndDateInPast)

	job, err := svc.CreateJob(ctx, company.ID, jobFixtureInput("2026-03-15"))
	require.NoError(t, err)
	require.Equal(t, university.ID, job.UniversityID)
	require.Equal(t, company.ID, job.CompanyID)
}

func TestListOpenJobsExcludesEndedPostings(t *testing.T) {
	db := newTestDB(t)
	university := createUniversity(t, db, "Test University")
	company := createCompany(t, db, university.ID, "acme@example.com", "password1")
	other := createUniversity(t, db, "Other University")
	otherCompany := createCompany(t, db, other.ID, "other@example.com", "password1")
	clock := newFixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	svc, err := NewJobService(db, WithJobClock(clock.Now))
	require.NoError(t, err)

	ctx := context.Background()
	open, err := svc.CreateJob(ctx, company.ID, jobFixtureInput("2026-03-10"))
	require.NoError(t, err)
	closing, err := svc.CreateJob(ctx, company.ID, jobFixtureInput("2026-03-03"))
	require.NoError(t, err)
	_, err = svc.CreateJob(ctx, otherCompany.ID, jobFixtureInput("2026-03-10"))
	require.NoError(t, err)

	listings, err := svc.ListOpenJobs(ctx, university.ID)
	require.NoError(t, err)
	require.Len(t, listings, 2)

	clock.Advance(5 * 24 * time.Hour)

	listings, err = svc.ListOpenJobs(ctx, university.ID)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	require.Equal(t, open.ID, listings[0].ID)

	// The ended posting still shows for its owner, marked closed.
	companyJobs, err := svc.CompanyJobs(ctx, company.ID)
	require.NoError(t, err)
	require.Len(t, companyJobs, 2)
	statuses := map[string]string{}
	for _, listing := range companyJobs {
		statuses[listing.ID] = listing.Status
	}
	require.Equal(t, models.JobStatusActive, statuses[open.ID])
	require.Equal(t, models.JobStatusClosed, statuses[closing.ID])
}

func TestApplyOncePerJob(t *testing.T) {
	db := newTestDB(t)
	university := createUniversity(t, db, "Test University")
	company := createCompany(t, db, university.ID, "acme@example.com", "password1")
	student := createStudent(t, db, university.ID, "ivan@example.edu", "password1")
	clock := newFixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	svc, err := NewJobService(db, WithJobClock(clock.Now))
	require.NoError(t, err)

	ctx := context.Background()
	first, err := svc.CreateJob(ctx, company.ID, jobFixtureInput("2026-03-10"))
	require.NoError(t, err)
	second, err := svc.CreateJob(ctx, company.ID, jobFixtureInput("2026-03-12"))
	require.NoError(t, err)

	application, err := svc.Apply(ctx, student.ID, first.ID)
	require.NoError(t, err)
	require.Equal(t, models.ApplicationStatusPending, application.Status)
	require.Equal(t, university.ID, application.UniversityID)
	require.Equal(t, company.ID, application.CompanyID)

	_, err = svc.Apply(ctx, student.ID, first.ID)
	require.ErrorIs(t, err, ErrAlreadyApplied)

	// A different posting is fine.
	_, err = svc.Apply(ctx, student.ID, second.ID)
	require.NoError(t, err)

	_, err = svc.Apply(ctx, student.ID, "missing-job")
	require.ErrorIs(t, err, ErrJobNotFound)
}

func TestUpdateApplicationStatus(t *testing.T) {
	db := newTestDB(t)
	university := createUniversity(t, db, "Test University")
	company := createCompany(t, db, university.ID, "acme@example.com", "password1")
	student := createStudent(t, db, university.ID, "judy@example.edu", "password1")
	clock := newFixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	svc, err := NewJobService(db, WithJobClock(clock.Now))
	require.NoError(t, err)

	ctx := context.Background()
	job, err := svc.CreateJob(ctx, company.ID, jobFixtureInput("2026-03-10"))
	require.NoError(t, err)
	application, err := svc.Apply(ctx, student.ID, job.ID)
	require.NoError(t, err)

	_, err = svc.UpdateApplicationStatus(ctx, application.ID, models.ApplicationStatus("hired"))
	require.ErrorIs(t, err, ErrInvalidStatus)

	updated, err := svc.UpdateApplicationStatus(ctx, application.ID, models.ApplicationStatusInterviewScheduled)
	require.NoError(t, err)
	require.Equal(t, models.ApplicationStatusInterviewScheduled, updated.Status)

	_, err = svc.UpdateApplicationStatus(ctx, "missing", models.ApplicationStatusRejected)
	require.ErrorIs(t, err, ErrApplicationNotFound)
}

func TestStudentApplicationsDashboard(t *testing.T) {
	db := newTestDB(t)
	university := createUniversity(t, db, "Test University")
	company := createCompany(t, db, university.ID, "acme@example.com", "password1")
	require.NoError(t, db.Create(&models.CompanyProfile{
		ID:           company.ID,
		UniversityID: university.ID,
		Name:         "Acme Corp",
	}).Error)
	student := createStudent(t, db, university.ID, "kate@example.edu", "password1")
	clock := newFixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	svc, err := NewJobService(db, WithJobClock(clock.Now))
	require.NoError(t, err)

	ctx := context.Background()
	job, err := svc.CreateJob(ctx, company.ID, jobFixtureInput("2026-03-10"))
	require.NoError(t, err)
	_, err = svc.Apply(ctx, student.ID, job.ID)
	require.NoError(t, err)

	applications, err := svc.StudentApplications(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, applications, 1)
	require.Equal(t, job.ID, applications[0].Job.ID)
	require.Equal(t, "Acme Corp", applications[0].CompanyName)
	require.Equal(t, models.ApplicationStatusPending, applications[0].Status)
}

func TestCompanyApplicantsIncludeProfiles(t *testing.T) {
	db := newTestDB(t)
	university := createUniversity(t, db, "Test University")
	company := createCompany(t, db, university.ID, "acme@example.com", "password1")
	student := createStudent(t, db, university.ID, "leo@example.edu", "password1")
	require.NoError(t, db.Create(&models.StudentProfile{
		ID:           student.ID,
		UniversityID: university.ID,
		FullName:     "Leo Example",
	}).Error)
	clock := newFixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	svc, err := NewJobService(db, WithJobClock(clock.Now))
	require.NoError(t, err)

	ctx := context.Background()
	job, err := svc.CreateJob(ctx, company.ID, jobFixtureInput("2026-03-10"))
	require.NoError(t, err)
	_, err = svc.Apply(ctx, student.ID, job.ID)
	require.NoError(t, err)

	groups, err := svc.CompanyApplicants(ctx, company.ID)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Equal(t, job.ID, groups[0].Job.ID)
	require.Len(t, groups[0].Applicants, 1)
	require.Equal(t, "leo@example.edu", groups[0].Applicants[0].StudentEmail)
	require.NotNil(t, groups[0].Applicants[0].Profile)
	require.Equal(t, "Leo Example", groups[0].Applicants[0].Profile.FullName)
}
