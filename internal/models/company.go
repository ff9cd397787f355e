package models

// Company is a recruiter login account. Rows are created only after a
// successful verification code exchange.
type Company struct {
	BaseModel

	Email        string `gorm:"not null;uniqueIndex:idx_companies_email_university" json:"email"`
	Password     string `gorm:"not null" json:"-"`
	UniversityID string `gorm:"type:uuid;not null;uniqueIndex:idx_companies_email_university;index" json:"university_id"`

	University *University     `json:"university,omitempty"`
	Profile    *CompanyProfile `gorm:"foreignKey:ID;references:ID" json:"profile,omitempty"`
}
