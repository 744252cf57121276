package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notification types
const (
	NotifyCoursePurchased    = "COURSE_PURCHASED"
	NotifyCourseSold         = "COURSE_SOLD"
	NotifyCourseSubmitted    = "COURSE_SUBMITTED"
	NotifyCourseApproved     = "COURSE_APPROVED"
	NotifyCourseRejected     = "COURSE_REJECTED"
	NotifyInstructorRequest  = "INSTRUCTOR_REQUEST"
	NotifyInstructorApproved = "INSTRUCTOR_APPROVED"
	NotifyInstructorRejected = "INSTRUCTOR_REJECTED"
	NotifyNewReview          = "NEW_REVIEW"
	NotifyEnrollmentExpiring = "ENROLLMENT_EXPIRING"
	NotifyEnrollmentExpired  = "ENROLLMENT_EXPIRED"
	NotifyOrderRefunded      = "ORDER_REFUNDED"
	NotifyWithdrawal         = "WITHDRAWAL"
)

type Notification struct {
	gorm.Model
	UserID   uint           `json:"user_id" gorm:"index;not null"`
	Type     string         `json:"type" gorm:"type:varchar(40);not null"`
	Title    string         `json:"title"`
	Message  string         `json:"message" gorm:"type:text"`
	Link     string         `json:"link"`
	Metadata datatypes.JSON `json:"metadata"`
	IsRead   bool           `json:"is_read" gorm:"default:false;index"`
	ReadAt   *time.Time     `json:"read_at"`
}
