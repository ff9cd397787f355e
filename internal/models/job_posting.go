package models

import "time"

// Job posting status values derived from end_date at read time.
const (
	JobStatusActive = "Active"
	JobStatusClosed = "Closed"
)

// JobPosting is a job advertised by a company within one university.
type JobPosting struct {
	BaseModel

	UniversityID string `gorm:"type:uuid;not null;index" json:"university_id"`
	CompanyID    string `gorm:"type:uuid;not null;index" json:"company_id"`

	Title        string    `gorm:"not null" json:"title"`
	Type         string    `gorm:"not null" json:"type"`
	Salary       string    `gorm:"not null" json:"salary"`
	Description  string    `gorm:"not null" json:"description"`
	Requirements string    `gorm:"not null" json:"requirements"`
	EndDate      time.Time `gorm:"not null;index" json:"end_date"`

	Company *Company `json:"company,omitempty"`
}

// StatusAt derives the posting status at the given instant. A posting stays
// Active up to and including its end instant.
func (j *JobPosting) StatusAt(now time.Time) string {
	if now.After(j.EndDate) {
		return JobStatusClosed
	}
	return JobStatusActive
}
