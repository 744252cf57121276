package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Roles
const (
	RoleStudent    = "STUDENT"
	RoleInstructor = "INSTRUCTOR"
	RoleAdmin      = "ADMIN"
)

type User struct {
	gorm.Model
	Name                string          `json:"name" gorm:"default:''"`
	Email               string          `json:"email" gorm:"uniqueIndex;size:191;not null"`
	Phone               string          `json:"phone" gorm:"default:''"`
	AvatarURL           string          `json:"avatar_url" gorm:"default:''"`
	Bio                 string          `json:"bio" gorm:"type:text"`
	Role                string          `json:"role" gorm:"type:varchar(20);default:'STUDENT'"` // STUDENT, INSTRUCTOR, ADMIN
	Password            string          `json:"-" gorm:"not null"`
	IsEmailVerified     bool            `json:"is_email_verified" gorm:"default:false"`
	Balance             decimal.Decimal `json:"balance" gorm:"type:decimal(12,2);not null;default:0"` // instructor earnings
	LastLogin           *time.Time      `json:"last_login"`
	FailedLoginAttempts int             `json:"-" gorm:"default:0"`
	LastFailedLogin     *time.Time      `json:"-"`
	IsBlocked           bool            `json:"is_blocked" gorm:"default:false"`
	BlockedUntil        *time.Time      `json:"blocked_until"`
	IsDeleted           bool            `json:"-" gorm:"default:false"`
}

// IsLocked reports whether the account is currently blocked.
func (u *User) IsLocked(at time.Time) bool {
	if !u.IsBlocked {
		return false
	}
	// admin blocks have no expiry
	return u.BlockedUntil == nil || u.BlockedUntil.After(at)
}
