package services

import (
	"log"
	"time"

	"edumarket/models"
	"edumarket/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// mailer resolves recipients and hands transactional emails to utils.
type mailer struct{}

var mail mailer

func (mailer) recipient(db *gorm.DB, userID uint) (models.User, bool) {
	var u models.User
	if err := db.Select("id", "name", "email").Where("id = ? AND is_deleted = ?", userID, false).First(&u).Error; err != nil {
		log.Printf("[EMAIL] Cannot resolve recipient %d: %v", userID, err)
		return u, false
	}
	return u, u.Email != ""
}

func (m mailer) Purchase(db *gorm.DB, userID uint, orderCode string, titles []string, total decimal.Decimal) {
	if u, ok := m.recipient(db, userID); ok {
		utils.SendPurchaseEmail(u.Email, u.Name, orderCode, titles, total.StringFixed(2))
	}
}

func (m mailer) Refund(db *gorm.DB, userID uint, orderCode string, total decimal.Decimal) {
	if u, ok := m.recipient(db, userID); ok {
		utils.SendRefundEmail(u.Email, u.Name, orderCode, total.StringFixed(2))
	}
}

func (m mailer) CourseDecision(db *gorm.DB, userID uint, courseTitle string, approved bool, note string) {
	if u, ok := m.recipient(db, userID); ok {
		utils.SendCourseReviewedEmail(u.Email, u.Name, courseTitle, approved, note)
	}
}

func (m mailer) InstructorDecision(db *gorm.DB, userID uint, approved bool, reason string) {
	if u, ok := m.recipient(db, userID); ok {
		utils.SendInstructorDecisionEmail(u.Email, u.Name, approved, reason)
	}
}

func (m mailer) EnrollmentExpiring(db *gorm.DB, userID uint, courseTitle string, expiresAt time.Time) {
	if u, ok := m.recipient(db, userID); ok {
		utils.SendEnrollmentExpiringEmail(u.Email, u.Name, courseTitle, expiresAt)
	}
}

func (m mailer) EnrollmentExpired(db *gorm.DB, userID uint, courseTitle string) {
	if u, ok := m.recipient(db, userID); ok {
		utils.SendEnrollmentExpiredEmail(u.Email, u.Name, courseTitle)
	}
}
