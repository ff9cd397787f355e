package models

// ApplicationStatus is the closed set of states an application moves through.
type ApplicationStatus string

const (
	ApplicationStatusPending            ApplicationStatus = "pending"
	ApplicationStatusRejected           ApplicationStatus = "rejected"
	ApplicationStatusInterviewScheduled ApplicationStatus = "interview_scheduled"
)

// Valid reports whether the status is one of the known values.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusPending, ApplicationStatusRejected, ApplicationStatusInterviewScheduled:
		return true
	}
	return false
}

// Application records one student applying to one job. A student applies to
// a given job at most once.
type Application struct {
	BaseModel

	UniversityID string `gorm:"type:uuid;not null;index" json:"university_id"`
	CompanyID    string `gorm:"type:uuid;not null;index" json:"company_id"`
	StudentID    string `gorm:"type:uuid;not null;uniqueIndex:idx_applications_student_job" json:"student_id"`
	JobID        string `gorm:"type:uuid;not null;uniqueIndex:idx_applications_student_job;index" json:"job_id"`

	Status ApplicationStatus `gorm:"not null;default:pending" json:"status"`

	Job     *JobPosting `json:"job,omitempty"`
	Student *Student    `json:"student,omitempty"`
}
