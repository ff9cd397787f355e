package models

import "time"

// AccountType discriminates which kind of account a verification code or
// reset token belongs to.
type AccountType string

const (
	AccountTypeStudent AccountType = "student"
	AccountTypeCompany AccountType = "company"
)

// Valid reports whether the account type is one of the known values.
func (a AccountType) Valid() bool {
	return a == AccountTypeStudent || a == AccountTypeCompany
}

// OneTimeCode stores a pending signup verification code. At most one live
// row exists per (email, university); issuing a new code replaces the old
// row.
type OneTimeCode struct {
	BaseModel

	Email        string      `gorm:"not null;index:idx_one_time_codes_email_university" json:"email"`
	Code         string      `gorm:"not null" json:"-"`
	UniversityID string      `gorm:"type:uuid;not null;index:idx_one_time_codes_email_university" json:"university_id"`
	AccountType  AccountType `gorm:"not null" json:"account_type"`
	ExpiresAt    time.Time   `gorm:"index" json:"expires_at"`
}

// ExpiredAt reports whether the code is past its expiry at the given instant.
func (c *OneTimeCode) ExpiredAt(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
