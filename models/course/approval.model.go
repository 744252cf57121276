package course

import (
	"time"

	"gorm.io/gorm"
)

// CourseApproval is a review request for publishing a course
type CourseApproval struct {
	gorm.Model
	CourseID     uint       `json:"course_id" gorm:"index;not null"`
	InstructorID uint       `json:"instructor_id" gorm:"index;not null"`
	Status       string     `json:"status" gorm:"type:varchar(20);default:'PENDING';index"` // PENDING, APPROVED, REJECTED
	SubmitNote   string     `json:"submit_note" gorm:"type:text"`
	ReviewNote   string     `json:"review_note" gorm:"type:text"`
	ReviewedBy   *uint      `json:"reviewed_by"`
	ReviewedAt   *time.Time `json:"reviewed_at"`

	Course Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}
