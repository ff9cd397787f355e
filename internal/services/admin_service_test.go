package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/startin-app/startin/internal/cache"
	"github.com/startin-app/startin/internal/models"
)

func newAdminService(t *testing.T, db *gorm.DB) (*AdminService, *PasskeyService) {
	t.Helper()

	passkeys, err := NewPasskeyService(db, cache.NewMemoryStore())
	require.NoError(t, err)
	svc, err := NewAdminService(db, passkeys)
	require.NoError(t, err)
	svc.hash = func(secret string) (string, error) {
		hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.MinCost)
		return string(hash), err
	}
	return svc, passkeys
}

func TestListUniversitiesMasksPasskeys(t *testing.T) {
	db := newTestDB(t)
	createUniversity(t, db, "Beta University")
	createUniversity(t, db, "Alpha University")

	svc, _ := newAdminService(t, db)

	universities, err := svc.ListUniversities(context.Background())
	require.NoError(t, err)
	require.Len(t, universities, 2)
	require.Equal(t, "Alpha University", universities[0].Name)
	for _, university := range universities {
		require.Equal(t, maskedPasskey, university.Passkey)
	}
}

func TestDeleteUniversityCascades(t *testing.T) {
	db := newTestDB(t)
	university := createUniversity(t, db, "Doomed University")
	survivor := createUniversity(t, db, "Other University")

	company := createCompany(t, db, university.ID, "acme@example.com", "password1")
	student := createStudent(t, db, university.ID, "mia@example.edu", "password1")
	otherStudent := createStudent(t, db, survivor.ID, "nia@example.edu", "password1")

	require.NoError(t, db.Create(&models.StudentProfile{
		ID: student.ID, UniversityID: university.ID, FullName: "Mia Example",
	}).Error)
	require.NoError(t, db.Create(&models.CompanyProfile{
		ID: company.ID, UniversityID: university.ID, Name: "Acme Corp",
	}).Error)

	job := &models.JobPosting{
		UniversityID: university.ID,
		CompanyID:    company.ID,
		Title:        "Intern",
		Type:         "Internship",
		Salary:       "1000",
		Description:  "d",
		Requirements: "r",
		EndDate:      time.Now().Add(time.Hour),
	}
	require.NoError(t, db.Create(job).Error)
	require.NoError(t, db.Create(&models.Application{
		UniversityID: university.ID,
		CompanyID:    company.ID,
		StudentID:    student.ID,
		JobID:        job.ID,
	}).Error)
	require.NoError(t, db.Create(&models.OneTimeCode{
		Email:        "new@example.edu",
		Code:         "123456",
		UniversityID: university.ID,
		AccountType:  models.AccountTypeStudent,
		ExpiresAt:    time.Now().Add(time.Hour),
	}).Error)

	svc, _ := newAdminService(t, db)
	require.NoError(t, svc.DeleteUniversity(context.Background(), university.ID))

	for _, check := range []struct {
		name  string
		model any
	}{
		{"applications", &models.Application{}},
		{"jobs", &models.JobPosting{}},
		{"student profiles", &models.StudentProfile{}},
		{"company profiles", &models.CompanyProfile{}},
		{"companies", &models.Company{}},
		{"codes", &models.OneTimeCode{}},
	} {
		var count int64
		require.NoError(t, db.Model(check.model).Where("university_id = ? OR id = ?", university.ID, company.ID).Count(&count).Error)
		require.Zero(t, count, check.name)
	}

	// The other tenant is untouched.
	var remaining models.Student
	require.NoError(t, db.First(&remaining, "id = ?", otherStudent.ID).Error)

	err := svc.DeleteUniversity(context.Background(), university.ID)
	require.ErrorIs(t, err, ErrUniversityNotFound)
}

func TestAddCompanyInviteRejectsDuplicatePasskey(t *testing.T) {
	db := newTestDB(t)
	svc, passkeys := newAdminService(t, db)

	ctx := context.Background()
	invite, err := svc.AddCompanyInvite(ctx, InviteInput{
		Name:    "Acme Corp",
		Email:   "Acme@Example.com",
		Passkey: "super-secret",
	})
	require.NoError(t, err)
	require.Equal(t, "acme@example.com", invite.Email)

	plaintext, ok := passkeys.RecallPlaintext(ctx, invite.PasskeyHash)
	require.True(t, ok)
	require.Equal(t, "super-secret", plaintext)

	_, err = svc.AddCompanyInvite(ctx, InviteInput{
		Name:    "Globex",
		Email:   "globex@example.com",
		Passkey: "super-secret",
	})
	require.ErrorIs(t, err, ErrPasskeyInUse)
}

func TestListCompanyInvitesFlags(t *testing.T) {
	db := newTestDB(t)
	university := createUniversity(t, db, "Test University")
	svc, _ := newAdminService(t, db)

	ctx := context.Background()
	_, err := svc.AddCompanyInvite(ctx, InviteInput{
		Name: "Acme Corp", Email: "acme@example.com", Passkey: "secret-one",
	})
	require.NoError(t, err)
	_, err = svc.AddCompanyInvite(ctx, InviteInput{
		Name: "Globex", Email: "globex@example.com", Passkey: "secret-two",
	})
	require.NoError(t, err)

	company := createCompany(t, db, university.ID, "acme@example.com", "password1")
	require.NoError(t, db.Create(&models.CompanyProfile{
		ID: company.ID, UniversityID: university.ID, Name: "Acme Corp",
	}).Error)

	invites, err := svc.ListCompanyInvites(ctx)
	require.NoError(t, err)
	require.Len(t, invites, 2)

	byEmail := map[string]InviteSummary{}
	for _, invite := range invites {
		byEmail[invite.Email] = invite
	}
	require.True(t, byEmail["acme@example.com"].Registered)
	require.True(t, byEmail["acme@example.com"].ProfileComplete)
	require.Equal(t, "secret-one", byEmail["acme@example.com"].Passkey)
	require.False(t, byEmail["globex@example.com"].Registered)
	require.False(t, byEmail["globex@example.com"].ProfileComplete)
}

func TestListRegisteredCompanies(t *testing.T) {
	db := newTestDB(t)
	university := createUniversity(t, db, "Test University")
	withProfile := createCompany(t, db, university.ID, "acme@example.com", "password1")
	createCompany(t, db, university.ID, "bare@example.com", "password1")
	require.NoError(t, db.Create(&models.CompanyProfile{
		ID: withProfile.ID, UniversityID: university.ID, Name: "Acme Corp",
	}).Error)

	svc, _ := newAdminService(t, db)

	companies, err := svc.ListRegisteredCompanies(context.Background())
	require.NoError(t, err)
	require.Len(t, companies, 2)

	byEmail := map[string]RegisteredCompany{}
	for _, company := range companies {
		byEmail[company.Email] = company
	}
	require.NotNil(t, byEmail["acme@example.com"].Profile)
	require.Equal(t, "Acme Corp", byEmail["acme@example.com"].Profile.Name)
	require.Nil(t, byEmail["bare@example.com"].Profile)
}

func TestDeleteCompanyInviteCascades(t *testing.T) {
	db := newTestDB(t)
	university := createUniversity(t, db, "Test University")
	svc, _ := newAdminService(t, db)

	ctx := context.Background()
	invite, err := svc.AddCompanyInvite(ctx, InviteInput{
		Name: "Acme Corp", Email: "acme@example.com", Passkey: "secret-one",
	})
	require.NoError(t, err)

	company := createCompany(t, db, university.ID, "acme@example.com", "password1")
	student := createStudent(t, db, university.ID, "omar@example.edu", "password1")
	job := &models.JobPosting{
		UniversityID: university.ID,
		CompanyID:    company.ID,
		Title:        "Intern",
		Type:         "Internship",
		Salary:       "1000",
		Description:  "d",
		Requirements: "r",
		EndDate:      time.Now().Add(time.Hour),
	}
	require.NoError(t, db.Create(job).Error)
	require.NoError(t, db.Create(&models.Application{
		UniversityID: university.ID,
		CompanyID:    company.ID,
		StudentID:    student.ID,
		JobID:        job.ID,
	}).Error)

	require.NoError(t, svc.DeleteCompanyInvite(ctx, invite.ID))

	var count int64
	require.NoError(t, db.Model(&models.Company{}).Where("id = ?", company.ID).Count(&count).Error)
	require.Zero(t, count)
	require.NoError(t, db.Model(&models.JobPosting{}).Where("company_id = ?", company.ID).Count(&count).Error)
	require.Zero(t, count)
	require.NoError(t, db.Model(&models.Application{}).Where("company_id = ?", company.ID).Count(&count).Error)
	require.Zero(t, count)

	// The student account itself survives.
	var remaining models.Student
	require.NoError(t, db.First(&remaining, "id = ?", student.ID).Error)

	err = svc.DeleteCompanyInvite(ctx, invite.ID)
	require.ErrorIs(t, err, ErrInviteNotFound)
}
