package course

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment statuses
const (
	EnrollmentActive    = "ACTIVE"
	EnrollmentCompleted = "COMPLETED"
	EnrollmentExpired   = "EXPIRED"
	EnrollmentRevoked   = "REVOKED"
)

// Enrollment grants a user access to a course
type Enrollment struct {
	gorm.Model
	UserID           uint       `json:"user_id" gorm:"uniqueIndex:idx_enrollment_user_course;not null"`
	CourseID         uint       `json:"course_id" gorm:"uniqueIndex:idx_enrollment_user_course;not null"`
	// last order that granted access
	OrderID          uint       `json:"order_id" gorm:"index"`
	Status           string     `json:"status" gorm:"type:varchar(20);default:'ACTIVE'"`
	EnrolledAt       time.Time  `json:"enrolled_at"`
	// nil for lifetime access
	ExpiresAt        *time.Time `json:"expires_at"`
	// percent, 0-100
	Progress         float64    `json:"progress" gorm:"default:0"`
	CompletedLessons int        `json:"completed_lessons" gorm:"default:0"`
	TotalLessons     int        `json:"total_lessons" gorm:"default:0"`
	LastLessonID     *uint      `json:"last_lesson_id"`
	CompletedAt      *time.Time `json:"completed_at"`
	ReminderSent     bool       `json:"-" gorm:"default:false"`

	Course Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

// HasAccess reports whether the enrollment currently grants content access.
func (e *Enrollment) HasAccess(at time.Time) bool {
	if e.Status != EnrollmentActive && e.Status != EnrollmentCompleted {
		return false
	}
	return e.ExpiresAt == nil || e.ExpiresAt.After(at)
}

// LessonProgress tracks a learner's state on one lesson
type LessonProgress struct {
	gorm.Model
	EnrollmentID uint       `json:"enrollment_id" gorm:"uniqueIndex:idx_progress_enrollment_lesson;not null"`
	LessonID     uint       `json:"lesson_id" gorm:"uniqueIndex:idx_progress_enrollment_lesson;not null"`
	UserID       uint       `json:"user_id" gorm:"index;not null"`
	CourseID     uint       `json:"course_id" gorm:"index;not null"`
	IsCompleted  bool       `json:"is_completed" gorm:"default:false"`
	CompletedAt  *time.Time `json:"completed_at"`
	LastViewedAt *time.Time `json:"last_viewed_at"`
}
