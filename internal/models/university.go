package models

// University is the tenant boundary. Every student, company, invite, and
// posting hangs off exactly one university.
type University struct {
	BaseModel

	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	PasskeyHash string `gorm:"not null" json:"-"`

	Students  []Student    `gorm:"foreignKey:UniversityID" json:"students,omitempty"`
	Companies []Company    `gorm:"foreignKey:UniversityID" json:"companies,omitempty"`
	Jobs      []JobPosting `gorm:"foreignKey:UniversityID" json:"jobs,omitempty"`
}
