package models

import (
	"time"

	"gorm.io/gorm"
)

// Request statuses shared by approval-style workflows
const (
	RequestPending  = "PENDING"
	RequestApproved = "APPROVED"
	RequestRejected = "REJECTED"
)

// InstructorRequest is a student's application to become an instructor.
type InstructorRequest struct {
	gorm.Model
	UserID          uint       `json:"user_id" gorm:"index;not null"`
	Expertise       string     `json:"expertise" gorm:"type:varchar(255)"`
	Bio             string     `json:"bio" gorm:"type:text"`
	ExperienceYears int        `json:"experience_years" gorm:"default:0"`
	PortfolioURL    string     `json:"portfolio_url"`
	Status          string     `json:"status" gorm:"type:varchar(20);default:'PENDING';index"`
	ReviewedBy      *uint      `json:"reviewed_by"`
	ReviewedAt      *time.Time `json:"reviewed_at"`
	RejectionReason string     `json:"rejection_reason" gorm:"type:text"`
	IsDeleted       bool       `json:"-" gorm:"default:false"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
