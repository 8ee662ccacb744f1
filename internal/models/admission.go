package models

import (
	"time"

	"github.com/google/uuid"
)

// Interview holds the scheduling details set by the schedule-interview
// transition. Dates and times are kept as the verbatim strings the scheduler
// entered, the system never interprets them.
type Interview struct {
	Date     string `gorm:"size:50;default:''" json:"date"`
	Time     string `gorm:"size:50;default:''" json:"time"`
	Platform string `gorm:"size:100;default:''" json:"platform"`
	Link     string `gorm:"size:500;default:''" json:"link"`
}

// Admission is one candidate's application and its workflow state. Intake
// fields are set once at submission; only the workflow fields below the
// document URLs are ever mutated afterwards. Records are hard-deleted by the
// head's delete action.
type Admission struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name   string    `gorm:"size:255;not null" json:"name"`
	Email  string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Mobile string    `gorm:"size:20;not null;uniqueIndex" json:"mobile"`

	DOB      string `gorm:"size:50;not null" json:"dob"`
	Gender   string `gorm:"size:20;not null" json:"gender"`
	State    string `gorm:"size:100;not null" json:"state"`
	District string `gorm:"size:100;not null" json:"district"`
	Course   string `gorm:"size:100;not null;index" json:"course"`

	DisabilityStatus       string `gorm:"size:100;default:''" json:"disabilityStatus"`
	Education              string `gorm:"size:255;default:''" json:"education"`
	EnrolledCourse         string `gorm:"size:255;default:''" json:"enrolledCourse"`
	BasicComputerKnowledge string `gorm:"size:50;default:''" json:"basicComputerKnowledge"`
	BasicEnglishSkills     string `gorm:"size:50;default:''" json:"basicEnglishSkills"`
	ScreenReaderKnowledge  string `gorm:"size:50;default:''" json:"screenReaderKnowledge"`
	Declaration            bool   `gorm:"not null" json:"declaration"`

	// Public URLs returned by the document store for the six upload fields.
	PassportPhoto  string `gorm:"size:500;default:''" json:"passport_photo"`
	Aadhaar        string `gorm:"size:500;default:''" json:"adhar"`
	UDID           string `gorm:"size:500;default:''" json:"UDID"`
	DisabilityCert string `gorm:"size:500;default:''" json:"disability"`
	DegreeMemo     string `gorm:"size:500;default:''" json:"Degree_memo"`
	DoctorCert     string `gorm:"size:500;default:''" json:"doctor"`

	Status       string    `gorm:"size:30;not null;index" json:"status"`
	Interview    Interview `gorm:"embedded;embeddedPrefix:interview_" json:"interview"`
	DecisionDone bool      `gorm:"not null;default:false" json:"decisionDone"`

	HeadActionBy    *uuid.UUID `gorm:"type:uuid" json:"headActionBy"`
	TeacherActionBy *uuid.UUID `gorm:"type:uuid" json:"teacherActionBy"`
	DeletedReason   string     `gorm:"size:500;default:''" json:"deletedReason"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
