package models

import "time"

// StudentProfile is the 1:1 profile for a student account. The primary key
// is the owning student's id.
type StudentProfile struct {
	ID           string `gorm:"primaryKey;type:uuid" json:"id"`
	UniversityID string `gorm:"type:uuid;not null;index" json:"university_id"`

	FullName   string `gorm:"not null" json:"full_name"`
	About      string `json:"about"`
	Skills     string `json:"skills"`
	GitHub     string `json:"github"`
	LinkedIn   string `json:"linkedin"`
	ResumePath string `json:"resume_path"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
