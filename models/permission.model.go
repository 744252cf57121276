package models

import (
	"gorm.io/gorm"
)

type Permission struct {
	gorm.Model
	UserID     uint   `gorm:"not null;index"`
	User       User   `gorm:"foreignKey:UserID" json:"-"`
	Role       string `gorm:"type:varchar(20)"`
	Permission string `gorm:"type:varchar(255)"` // e.g., "buy-course"
	IsDeleted  bool   `gorm:"default:false"`
}

// Permission names
const (
	PermViewCourse        = "view-course"
	PermBuyCourse         = "buy-course"
	PermReviewCourse      = "review-course"
	PermManageCourse      = "manage-course"
	PermViewEarnings      = "view-earnings"
	PermWithdraw          = "withdraw"
	PermApproveCourse     = "approve-course"
	PermApproveInstructor = "approve-instructor"
	PermManageUsers       = "manage-users"
	PermManageVouchers    = "manage-vouchers"
)

// DefaultPermissions returns the permission set granted to a role.
func DefaultPermissions(role string) []string {
	perms := []string{PermViewCourse, PermBuyCourse, PermReviewCourse}
	switch role {
	case RoleInstructor:
		perms = append(perms, PermManageCourse, PermViewEarnings, PermWithdraw)
	case RoleAdmin:
		perms = append(perms, PermManageCourse, PermViewEarnings, PermWithdraw,
			PermApproveCourse, PermApproveInstructor, PermManageUsers, PermManageVouchers)
	}
	return perms
}
