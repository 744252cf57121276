package services

import (
	"strings"
	"time"

	"edumarket/models"
	"edumarket/utils"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// InstructorApplication is the content of an instructor registration request.
type InstructorApplication struct {
	Expertise       string
	Bio             string
	ExperienceYears int
	PortfolioURL    string
}

// SubmitInstructorRequest files a request for userID to become an instructor.
func SubmitInstructorRequest(db *gorm.DB, userID uint, app InstructorApplication) (*models.InstructorRequest, error) {
	var user models.User
	if err := db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("User not found!")
		}
		return nil, errors.Wrap(err, "load user")
	}
	if user.Role == models.RoleInstructor || user.Role == models.RoleAdmin {
		return nil, conflict("You can already publish courses!")
	}

	var pending int64
	if err := db.Model(&models.InstructorRequest{}).
		Where("user_id = ? AND status = ? AND is_deleted = ?", userID, models.RequestPending, false).
		Count(&pending).Error; err != nil {
		return nil, errors.Wrap(err, "check pending requests")
	}
	if pending > 0 {
		return nil, conflict("You already have a pending instructor request!")
	}

	req := models.InstructorRequest{
		UserID:          userID,
		Expertise:       app.Expertise,
		Bio:             app.Bio,
		ExperienceYears: app.ExperienceYears,
		PortfolioURL:    app.PortfolioURL,
		Status:          models.RequestPending,
	}
	if err := db.Create(&req).Error; err != nil {
		return nil, errors.Wrap(err, "create instructor request")
	}

	notifyAdminsQuietly(db, NotificationInput{
		Type:     models.NotifyInstructorRequest,
		Title:    "New instructor application",
		Message:  user.Name + " applied to become an instructor.",
		Link:     "/admin/instructor-requests",
		Metadata: map[string]interface{}{"request_id": req.ID, "user_id": userID},
	})
	return &req, nil
}

// DecideInstructorRequest approves or rejects an instructor request.
// Approval promotes the user to INSTRUCTOR and re-seeds permissions.
func DecideInstructorRequest(db *gorm.DB, adminID, requestID uint, approve bool, reason string) (*models.InstructorRequest, error) {
	if !approve && reason == "" {
		return nil, invalidInput("A rejection reason is required!")
	}

	now := time.Now()
	var req models.InstructorRequest
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND is_deleted = ?", requestID, false).First(&req).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("Instructor request not found!")
			}
			return errors.Wrap(err, "load instructor request")
		}
		if req.Status != models.RequestPending {
			return invalidState("Instructor request has already been decided!")
		}

		req.Status = models.RequestRejected
		if approve {
			req.Status = models.RequestApproved
		}
		req.ReviewedBy = &adminID
		req.ReviewedAt = &now
		req.RejectionReason = reason
		if err := tx.Save(&req).Error; err != nil {
			return errors.Wrap(err, "update instructor request")
		}
		if !approve {
			return nil
		}

		if err := tx.Model(&models.User{}).Where("id = ?", req.UserID).Update("role", models.RoleInstructor).Error; err != nil {
			return errors.Wrap(err, "promote user")
		}
		return SeedPermissions(tx, models.RoleInstructor, req.UserID)
	})
	if err != nil {
		return nil, err
	}

	in := NotificationInput{
		Type:    models.NotifyInstructorApproved,
		Title:   "Welcome, instructor!",
		Message: "Your instructor application was approved. You can now create courses.",
		Link:    "/instructor/courses",
	}
	if !approve {
		in.Type = models.NotifyInstructorRejected
		in.Title = "Instructor application rejected"
		in.Message = "Your instructor application was rejected: " + reason
		in.Link = "/instructor/apply"
	}
	notifyQuietly(db, req.UserID, in)
	mail.InstructorDecision(db, req.UserID, approve, reason)
	return &req, nil
}

// SeedPermissions replaces the permissions of userID with the defaults for role.
func SeedPermissions(db *gorm.DB, role string, userID uint) error {
	if err := db.Model(&models.Permission{}).
		Where("user_id = ? AND is_deleted = ?", userID, false).
		Update("is_deleted", true).Error; err != nil {
		return errors.Wrap(err, "retire permissions")
	}

	var records []models.Permission
	for _, p := range models.DefaultPermissions(role) {
		records = append(records, models.Permission{
			UserID:     userID,
			Role:       role,
			Permission: p,
		})
	}
	return errors.Wrap(db.Create(&records).Error, "seed permissions")
}

// ChangeUserRole sets the role of userID and re-seeds its permissions.
func ChangeUserRole(db *gorm.DB, userID uint, role string) (*models.User, error) {
	switch role {
	case models.RoleStudent, models.RoleInstructor, models.RoleAdmin:
	default:
		return nil, invalidInput("Unknown role!")
	}

	var user models.User
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("User not found!")
			}
			return errors.Wrap(err, "load user")
		}
		user.Role = role
		if err := tx.Model(&user).Update("role", role).Error; err != nil {
			return errors.Wrap(err, "update role")
		}
		return SeedPermissions(tx, role, userID)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListInstructorRequests returns one page of instructor applications with their applicants.
func ListInstructorRequests(db *gorm.DB, status string, p utils.Pagination) ([]models.InstructorRequest, int64, error) {
	q := db.Model(&models.InstructorRequest{}).Where("is_deleted = ?", false)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count instructor requests")
	}
	var requests []models.InstructorRequest
	if err := q.Preload("User").Order("created_at ASC").Offset(p.Offset).Limit(p.Limit).Find(&requests).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list instructor requests")
	}
	return requests, total, nil
}

// ListUsers returns one page of accounts filtered by role and a name/email keyword.
func ListUsers(db *gorm.DB, role, keyword string, p utils.Pagination) ([]models.User, int64, error) {
	q := db.Model(&models.User{}).Where("is_deleted = ?", false)
	if role != "" {
		q = q.Where("role = ?", role)
	}
	if kw := strings.ToLower(strings.TrimSpace(keyword)); kw != "" {
		like := "%" + kw + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count users")
	}
	var users []models.User
	if err := q.Order("id DESC").Offset(p.Offset).Limit(p.Limit).Find(&users).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list users")
	}
	return users, total, nil
}
