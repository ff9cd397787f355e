package models

// Student is a student login account. Rows are created only after a
// successful verification code exchange.
type Student struct {
	BaseModel

	Email        string `gorm:"not null;uniqueIndex:idx_students_email_university" json:"email"`
	Password     string `gorm:"not null" json:"-"`
	UniversityID string `gorm:"type:uuid;not null;uniqueIndex:idx_students_email_university;index" json:"university_id"`

	University *University     `json:"university,omitempty"`
	Profile    *StudentProfile `gorm:"foreignKey:ID;references:ID" json:"profile,omitempty"`
}
