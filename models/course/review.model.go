package course

import (
	"time"

	"edumarket/models"

	"gorm.io/gorm"
)

// Review is a learner's rating of a course
type Review struct {
	gorm.Model
	CourseID  uint       `gorm:"uniqueIndex:idx_review_user_course;not null" json:"course_id"`
	UserID    uint       `gorm:"uniqueIndex:idx_review_user_course;not null" json:"user_id"`
	Rating    int        `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Comment   string     `gorm:"type:text" json:"comment"`
	IsHidden  bool       `gorm:"default:false" json:"is_hidden"`
	Reply     string     `gorm:"type:text" json:"reply"`
	RepliedAt *time.Time `json:"replied_at"`

	User models.User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
