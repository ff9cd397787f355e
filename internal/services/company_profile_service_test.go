package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompanyProfileLifecycle(t *testing.T) {
	db := newTestDB(t)
	university := createUniversity(t, db, "Test University")
	company := createCompany(t, db, university.ID, "acme@example.com", "password1")

	svc, err := NewCompanyProfileService(db)
	require.NoError(t, err)

	ctx := context.Background()

	_, ok, err := svc.Get(ctx, company.ID)
	require.NoError(t, err)
	require.False(t, ok)

	profile, err := svc.Create(ctx, company.ID, CompanyProfileInput{
		Name:     "Acme Corp",
		Website:  "https://acme.example.com",
		Location: "Springfield",
	})
	require.NoError(t, err)
	require.Equal(t, university.ID, profile.UniversityID)

	_, err = svc.Create(ctx, company.ID, CompanyProfileInput{Name: "Acme Corp"})
	require.ErrorIs(t, err, ErrProfileExists)

	updated, err := svc.Update(ctx, company.ID, CompanyProfileInput{
		Name:  "Acme Corporation",
		About: "We make everything",
	})
	require.NoError(t, err)
	require.Equal(t, "Acme Corporation", updated.Name)

	loaded, ok, err := svc.Get(ctx, company.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Acme Corporation", loaded.Name)
}

func TestCompanyProfileUpdateRequiresProfile(t *testing.T) {
	db := newTestDB(t)
	university := createUniversity(t, db, "Test University")
	company := createCompany(t, db, university.ID, "acme@example.com", "password1")

	svc, err := NewCompanyProfileService(db)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), company.ID, CompanyProfileInput{Name: "Acme"})
	require.ErrorIs(t, err, ErrProfileNotFound)
}

func TestCompanyProfileUnknownCompany(t *testing.T) {
	db := newTestDB(t)

	svc, err := NewCompanyProfileService(db)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "missing-id", CompanyProfileInput{Name: "Acme"})
	require.Error(t, err)
}
