package services

import (
	"log"
	"math"
	"time"

	"edumarket/models"
	"edumarket/models/course"
	"edumarket/utils"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ActiveEnrollment returns the enrollment of userID in courseID when it currently grants access.
func ActiveEnrollment(db *gorm.DB, userID, courseID uint, at time.Time) (*course.Enrollment, bool, error) {
	var e course.Enrollment
	err := db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "load enrollment")
	}
	return &e, e.HasAccess(at), nil
}

// CanAccessCourse reports whether userID may view the full content of c.
func CanAccessCourse(db *gorm.DB, userID uint, role string, c *course.Course, at time.Time) (bool, error) {
	if role == models.RoleAdmin || c.InstructorID == userID {
		return true, nil
	}
	_, ok, err := ActiveEnrollment(db, userID, c.ID, at)
	return ok, err
}

// grantEnrollment creates or renews access to c for userID. It reports whether the learner
// joins the course's students: a new enrollment, or one revoked by a refund.
func grantEnrollment(tx *gorm.DB, userID uint, c *course.Course, orderID uint, now time.Time) (*course.Enrollment, bool, error) {
	var e course.Enrollment
	err := tx.Where("user_id = ? AND course_id = ?", userID, c.ID).First(&e).Error
	switch {
	case err == nil:
		rejoined := e.Status == course.EnrollmentRevoked
		if e.HasAccess(now) {
			// still active: extend from the current expiry, lifetime stays lifetime
			if e.ExpiresAt != nil {
				e.ExpiresAt = c.AccessExpiry(*e.ExpiresAt)
			}
		} else {
			e.EnrolledAt = now
			e.ExpiresAt = c.AccessExpiry(now)
			e.Status = course.EnrollmentActive
			if e.CompletedAt != nil {
				e.Status = course.EnrollmentCompleted
			}
		}
		e.OrderID = orderID
		e.ReminderSent = false
		if err := tx.Save(&e).Error; err != nil {
			return nil, false, errors.Wrap(err, "renew enrollment")
		}
		if err := syncProgress(tx, &e); err != nil {
			return nil, false, err
		}
		return &e, rejoined, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		e = course.Enrollment{
			UserID:     userID,
			CourseID:   c.ID,
			OrderID:    orderID,
			Status:     course.EnrollmentActive,
			EnrolledAt: now,
			ExpiresAt:  c.AccessExpiry(now),
		}
		if err := tx.Create(&e).Error; err != nil {
			return nil, false, errors.Wrap(err, "create enrollment")
		}
		if err := syncProgress(tx, &e); err != nil {
			return nil, false, err
		}
		return &e, true, nil

	default:
		return nil, false, errors.Wrap(err, "load enrollment")
	}
}

// syncCourseProgress refreshes every enrollment of courseID after its lessons changed.
func syncCourseProgress(tx *gorm.DB, courseID uint) error {
	var enrollments []course.Enrollment
	if err := tx.Where("course_id = ?", courseID).Find(&enrollments).Error; err != nil {
		return errors.Wrap(err, "list course enrollments")
	}
	for i := range enrollments {
		if err := syncProgress(tx, &enrollments[i]); err != nil {
			return err
		}
	}
	return nil
}

// syncProgress creates missing progress rows for the course lessons and recomputes the percentage.
func syncProgress(tx *gorm.DB, e *course.Enrollment) error {
	var lessonIDs []uint
	if err := tx.Model(&course.Lesson{}).
		Where("course_id = ? AND is_deleted = ?", e.CourseID, false).
		Order("id").
		Pluck("id", &lessonIDs).Error; err != nil {
		return errors.Wrap(err, "list lessons")
	}

	var tracked []uint
	if err := tx.Model(&course.LessonProgress{}).
		Where("enrollment_id = ?", e.ID).
		Pluck("lesson_id", &tracked).Error; err != nil {
		return errors.Wrap(err, "list progress")
	}
	seen := make(map[uint]bool, len(tracked))
	for _, id := range tracked {
		seen[id] = true
	}

	var missing []course.LessonProgress
	for _, id := range lessonIDs {
		if !seen[id] {
			missing = append(missing, course.LessonProgress{
				EnrollmentID: e.ID,
				LessonID:     id,
				UserID:       e.UserID,
				CourseID:     e.CourseID,
			})
		}
	}
	if len(missing) > 0 {
		if err := tx.Create(&missing).Error; err != nil {
			return errors.Wrap(err, "create progress")
		}
	}

	return recalculateProgress(tx, e, lessonIDs)
}

func recalculateProgress(tx *gorm.DB, e *course.Enrollment, lessonIDs []uint) error {
	var completed int64
	if len(lessonIDs) > 0 {
		if err := tx.Model(&course.LessonProgress{}).
			Where("enrollment_id = ? AND is_completed = ? AND lesson_id IN ?", e.ID, true, lessonIDs).
			Count(&completed).Error; err != nil {
			return errors.Wrap(err, "count completed lessons")
		}
	}

	e.TotalLessons = len(lessonIDs)
	e.CompletedLessons = int(completed)
	e.Progress = 0
	if e.TotalLessons > 0 {
		e.Progress = math.Round(float64(e.CompletedLessons)*10000/float64(e.TotalLessons)) / 100
	}

	switch {
	case e.TotalLessons > 0 && e.CompletedLessons == e.TotalLessons:
		if e.CompletedAt == nil {
			now := time.Now()
			e.CompletedAt = &now
		}
		if e.Status == course.EnrollmentActive {
			e.Status = course.EnrollmentCompleted
		}
	case e.Status == course.EnrollmentCompleted:
		e.Status = course.EnrollmentActive
		e.CompletedAt = nil
	}

	return errors.Wrap(tx.Model(e).Select("total_lessons", "completed_lessons", "progress", "status", "completed_at").Updates(e).Error, "save progress")
}

// SetLessonCompletion marks a lesson complete or incomplete for userID and returns the updated enrollment.
func SetLessonCompletion(db *gorm.DB, userID, courseID, lessonID uint, completed bool) (*course.Enrollment, error) {
	now := time.Now()
	var out course.Enrollment
	err := db.Transaction(func(tx *gorm.DB) error {
		var e course.Enrollment
		if err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&e).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return forbidden("You are not enrolled in this course!")
			}
			return errors.Wrap(err, "load enrollment")
		}
		if !e.HasAccess(now) {
			return forbidden("Your access to this course has expired!")
		}

		var lesson course.Lesson
		if err := tx.Where("id = ? AND course_id = ? AND is_deleted = ?", lessonID, courseID, false).First(&lesson).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("Lesson not found!")
			}
			return errors.Wrap(err, "load lesson")
		}

		if err := syncProgress(tx, &e); err != nil {
			return err
		}

		updates := map[string]interface{}{
			"is_completed":   completed,
			"last_viewed_at": now,
			"completed_at":   nil,
		}
		if completed {
			updates["completed_at"] = now
		}
		if err := tx.Model(&course.LessonProgress{}).
			Where("enrollment_id = ? AND lesson_id = ?", e.ID, lesson.ID).
			Updates(updates).Error; err != nil {
			return errors.Wrap(err, "update lesson progress")
		}

		e.LastLessonID = &lesson.ID
		if err := tx.Model(&e).Update("last_lesson_id", lesson.ID).Error; err != nil {
			return errors.Wrap(err, "update last lesson")
		}
		if err := syncProgress(tx, &e); err != nil {
			return err
		}
		out = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ExpireEnrollments marks enrollments past their expiry as EXPIRED and notifies the learners.
func ExpireEnrollments(db *gorm.DB, now time.Time) (int, error) {
	var expired []course.Enrollment
	if err := db.Preload("Course").
		Where("status IN ? AND expires_at IS NOT NULL AND expires_at < ?",
			[]string{course.EnrollmentActive, course.EnrollmentCompleted}, now).
		Find(&expired).Error; err != nil {
		return 0, errors.Wrap(err, "list expired enrollments")
	}

	for _, e := range expired {
		if err := db.Model(&course.Enrollment{}).Where("id = ?", e.ID).Update("status", course.EnrollmentExpired).Error; err != nil {
			log.Printf("[SCHEDULER] Error expiring enrollment %d: %v", e.ID, err)
			continue
		}
		notifyQuietly(db, e.UserID, NotificationInput{
			Type:     models.NotifyEnrollmentExpired,
			Title:    "Course access expired",
			Message:  "Your access to \"" + e.Course.Title + "\" has expired. Purchase again to continue learning.",
			Link:     "/courses/" + e.Course.Slug,
			Metadata: map[string]interface{}{"course_id": e.CourseID},
		})
		mail.EnrollmentExpired(db, e.UserID, e.Course.Title)
	}
	return len(expired), nil
}

// RemindExpiringEnrollments notifies learners whose access ends within window.
func RemindExpiringEnrollments(db *gorm.DB, now time.Time, window time.Duration) (int, error) {
	var expiring []course.Enrollment
	if err := db.Preload("Course").
		Where("status IN ? AND reminder_sent = ? AND expires_at IS NOT NULL AND expires_at BETWEEN ? AND ?",
			[]string{course.EnrollmentActive, course.EnrollmentCompleted}, false, now, now.Add(window)).
		Find(&expiring).Error; err != nil {
		return 0, errors.Wrap(err, "list expiring enrollments")
	}

	for _, e := range expiring {
		notifyQuietly(db, e.UserID, NotificationInput{
			Type:     models.NotifyEnrollmentExpiring,
			Title:    "Course access ending soon",
			Message:  "Your access to \"" + e.Course.Title + "\" ends on " + e.ExpiresAt.Format("January 2, 2006") + ".",
			Link:     "/courses/" + e.Course.Slug,
			Metadata: map[string]interface{}{"course_id": e.CourseID},
		})
		mail.EnrollmentExpiring(db, e.UserID, e.Course.Title, *e.ExpiresAt)
		if err := db.Model(&course.Enrollment{}).Where("id = ?", e.ID).Update("reminder_sent", true).Error; err != nil {
			log.Printf("[SCHEDULER] Error flagging reminder for enrollment %d: %v", e.ID, err)
		}
	}
	return len(expiring), nil
}

// ListEnrollments returns the enrollments of userID with their courses, newest first.
func ListEnrollments(db *gorm.DB, userID uint, status string, p utils.Pagination) ([]course.Enrollment, int64, error) {
	q := db.Model(&course.Enrollment{}).Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count enrollments")
	}
	var enrollments []course.Enrollment
	if err := q.Preload("Course").Preload("Course.Instructor", publicUserFields).
		Order("enrolled_at DESC").Offset(p.Offset).Limit(p.Limit).
		Find(&enrollments).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list enrollments")
	}
	return enrollments, total, nil
}

// CourseProgress returns the per-lesson progress rows of userID in courseID.
func CourseProgress(db *gorm.DB, userID, courseID uint) (*course.Enrollment, []course.LessonProgress, error) {
	var e course.Enrollment
	if err := db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, notFound("You are not enrolled in this course!")
		}
		return nil, nil, errors.Wrap(err, "load enrollment")
	}
	live := db.Model(&course.Lesson{}).Select("id").Where("course_id = ? AND is_deleted = ?", courseID, false)
	var rows []course.LessonProgress
	if err := db.Where("enrollment_id = ? AND lesson_id IN (?)", e.ID, live).Order("lesson_id ASC").Find(&rows).Error; err != nil {
		return nil, nil, errors.Wrap(err, "load progress")
	}
	return &e, rows, nil
}
