package models

// Admin is a platform operator account. Admins are provisioned via seeding
// or other admins, never through the signup handshake.
type Admin struct {
	BaseModel

	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
}
