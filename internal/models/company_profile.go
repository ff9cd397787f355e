package models

import "time"

// CompanyProfile is the 1:1 profile for a company account. The primary key
// is the owning company's id.
type CompanyProfile struct {
	ID           string `gorm:"primaryKey;type:uuid" json:"id"`
	UniversityID string `gorm:"type:uuid;not null;index" json:"university_id"`

	Name     string `gorm:"not null" json:"name"`
	Website  string `json:"website"`
	Location string `json:"location"`
	About    string `json:"about"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
