package services

import (
	"strconv"
	"time"

	"edumarket/models"
	"edumarket/models/course"
	"edumarket/utils"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// SubmitCourseForReview moves a draft or rejected course into the approval queue.
func SubmitCourseForReview(db *gorm.DB, instructorID, courseID uint, note string) (*course.CourseApproval, error) {
	var approval course.CourseApproval
	var c course.Course
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND is_deleted = ?", courseID, false).First(&c).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("Course not found!")
			}
			return errors.Wrap(err, "load course")
		}
		if c.InstructorID != instructorID {
			return forbidden("You can only submit your own courses!")
		}
		if c.Status != course.StatusDraft && c.Status != course.StatusRejected {
			return invalidState("Only draft or rejected courses can be submitted for review!")
		}

		var pending int64
		if err := tx.Model(&course.CourseApproval{}).
			Where("course_id = ? AND status = ?", c.ID, models.RequestPending).
			Count(&pending).Error; err != nil {
			return errors.Wrap(err, "check pending approvals")
		}
		if pending > 0 {
			return conflict("Course already has a pending review request!")
		}

		var lessons int64
		if err := tx.Model(&course.Lesson{}).Where("course_id = ? AND is_deleted = ?", c.ID, false).Count(&lessons).Error; err != nil {
			return errors.Wrap(err, "count lessons")
		}
		if lessons == 0 {
			return invalidState("Add at least one lesson before submitting the course!")
		}

		approval = course.CourseApproval{
			CourseID:     c.ID,
			InstructorID: instructorID,
			Status:       models.RequestPending,
			SubmitNote:   note,
		}
		if err := tx.Create(&approval).Error; err != nil {
			return errors.Wrap(err, "create approval")
		}
		c.Status = course.StatusPendingReview
		return errors.Wrap(tx.Model(&c).Update("status", c.Status).Error, "update course status")
	})
	if err != nil {
		return nil, err
	}

	notifyAdminsQuietly(db, NotificationInput{
		Type:     models.NotifyCourseSubmitted,
		Title:    "Course awaiting review",
		Message:  "\"" + c.Title + "\" was submitted for review.",
		Link:     "/admin/approvals/" + strconv.FormatUint(uint64(approval.ID), 10),
		Metadata: map[string]interface{}{"course_id": c.ID, "approval_id": approval.ID},
	})
	approval.Course = c
	return &approval, nil
}

// DecideCourseApproval approves (publishes) or rejects a pending course approval.
func DecideCourseApproval(db *gorm.DB, adminID, approvalID uint, approve bool, note string) (*course.CourseApproval, error) {
	if !approve && note == "" {
		return nil, invalidInput("A rejection reason is required!")
	}

	now := time.Now()
	var approval course.CourseApproval
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Course").Where("id = ?", approvalID).First(&approval).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("Approval request not found!")
			}
			return errors.Wrap(err, "load approval")
		}
		if approval.Status != models.RequestPending {
			return invalidState("Approval request has already been decided!")
		}

		approval.ReviewedBy = &adminID
		approval.ReviewedAt = &now
		approval.ReviewNote = note
		courseUpdates := map[string]interface{}{}
		if approve {
			approval.Status = models.RequestApproved
			courseUpdates["status"] = course.StatusPublished
			if approval.Course.PublishedAt == nil {
				courseUpdates["published_at"] = now
				approval.Course.PublishedAt = &now
			}
			approval.Course.Status = course.StatusPublished
		} else {
			approval.Status = models.RequestRejected
			courseUpdates["status"] = course.StatusRejected
			approval.Course.Status = course.StatusRejected
		}

		// guarded on status so two admins cannot decide the same request twice
		res := tx.Model(&course.CourseApproval{}).
			Where("id = ? AND status = ?", approval.ID, models.RequestPending).
			Updates(map[string]interface{}{
				"status":      approval.Status,
				"reviewed_by": adminID,
				"reviewed_at": now,
				"review_note": note,
			})
		if res.Error != nil {
			return errors.Wrap(res.Error, "update approval")
		}
		if res.RowsAffected == 0 {
			return invalidState("Approval request has already been decided!")
		}
		return errors.Wrap(tx.Model(&course.Course{}).Where("id = ?", approval.CourseID).Updates(courseUpdates).Error, "update course")
	})
	if err != nil {
		return nil, err
	}

	in := NotificationInput{
		Type:     models.NotifyCourseApproved,
		Title:    "Course approved",
		Message:  "\"" + approval.Course.Title + "\" is now published.",
		Link:     "/instructor/courses/" + strconv.FormatUint(uint64(approval.CourseID), 10),
		Metadata: map[string]interface{}{"course_id": approval.CourseID, "approval_id": approval.ID},
	}
	if !approve {
		in.Type = models.NotifyCourseRejected
		in.Title = "Course rejected"
		in.Message = "\"" + approval.Course.Title + "\" was rejected: " + note
	}
	notifyQuietly(db, approval.InstructorID, in)
	mail.CourseDecision(db, approval.InstructorID, approval.Course.Title, approve, note)
	return &approval, nil
}

// SetCourseVisibility hides a published course or republishes a hidden one.
func SetCourseVisibility(db *gorm.DB, courseID uint, hidden bool) (*course.Course, error) {
	var c course.Course
	if err := db.Where("id = ? AND is_deleted = ?", courseID, false).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Course not found!")
		}
		return nil, errors.Wrap(err, "load course")
	}

	from, to := course.StatusPublished, course.StatusHidden
	if !hidden {
		from, to = course.StatusHidden, course.StatusPublished
	}
	if c.Status != from {
		return nil, invalidState("Course must be " + from + " to become " + to + "!")
	}
	if err := db.Model(&c).Update("status", to).Error; err != nil {
		return nil, errors.Wrap(err, "update course visibility")
	}
	return &c, nil
}

// ListApprovals returns one page of approval requests with their courses, oldest first.
func ListApprovals(db *gorm.DB, status string, p utils.Pagination) ([]course.CourseApproval, int64, error) {
	q := db.Model(&course.CourseApproval{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count approvals")
	}
	var approvals []course.CourseApproval
	if err := q.Preload("Course").Preload("Course.Instructor", publicUserFields).
		Order("created_at ASC").Offset(p.Offset).Limit(p.Limit).
		Find(&approvals).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list approvals")
	}
	return approvals, total, nil
}
