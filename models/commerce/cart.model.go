package commerce

import (
	"edumarket/models/course"

	"gorm.io/gorm"
)

// CartItem is one course in a user's cart
type CartItem struct {
	gorm.Model
	UserID   uint `json:"user_id" gorm:"uniqueIndex:idx_cart_user_course;not null"`
	CourseID uint `json:"course_id" gorm:"uniqueIndex:idx_cart_user_course;not null"`

	Course course.Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}
