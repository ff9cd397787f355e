package models

import "time"

// PasswordResetToken is a single-use opaque token bound to one account
// identity. Used tokens are kept until maintenance purges them.
type PasswordResetToken struct {
	BaseModel

	Token        string      `gorm:"uniqueIndex;not null" json:"-"`
	Email        string      `gorm:"not null;index" json:"email"`
	UniversityID string      `gorm:"type:uuid;not null" json:"university_id"`
	UserType     AccountType `gorm:"not null" json:"user_type"`
	Used         bool        `gorm:"default:false" json:"used"`
	ExpiresAt    time.Time   `gorm:"index" json:"expires_at"`
}

// ExpiredAt reports whether the token is past its expiry at the given instant.
func (t *PasswordResetToken) ExpiredAt(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
