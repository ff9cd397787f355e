package models

// CompanyInvite holds a bcrypt-hashed passkey handed to a company contact
// out of band. Companies redeem the passkey during signup.
type CompanyInvite struct {
	BaseModel

	PasskeyHash string `gorm:"not null" json:"-"`
	Email       string `gorm:"not null" json:"email"`
	Name        string `gorm:"not null" json:"name"`
}
