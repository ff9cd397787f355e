package database

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/startin-app/startin/internal/models"
	"github.com/startin-app/startin/pkg/crypto"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.University{},
		&models.Admin{},
		&models.Student{},
		&models.Company{},
		&models.OneTimeCode{},
		&models.PasswordResetToken{},
		&models.CompanyInvite{},
		&models.StudentProfile{},
		&models.CompanyProfile{},
		&models.JobPosting{},
		&models.Application{},
		&models.CacheEntry{},
	)
}

// SeedConfig carries the bootstrap admin credentials.
type SeedConfig struct {
	AdminEmail    string
	AdminPassword string
}

// SeedData provisions the bootstrap admin account when credentials are
// configured and no admin with that email exists yet.
func SeedData(db *gorm.DB, seed SeedConfig) error {
	email := strings.TrimSpace(strings.ToLower(seed.AdminEmail))
	if email == "" {
		return nil
	}
	if strings.TrimSpace(seed.AdminPassword) == "" {
		return errors.New("admin seed requires a password")
	}

	var existing models.Admin
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := crypto.HashPassword(seed.AdminPassword)
	if err != nil {
		return err
	}

	return db.Create(&models.Admin{
		Email:    email,
		Password: hash,
	}).Error
}
