package services

import (
	"strconv"
	"time"

	"edumarket/models"
	"edumarket/models/course"
	"edumarket/utils"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RatingSummary aggregates the visible reviews of a course.
type RatingSummary struct {
	Average      decimal.Decimal `json:"average"`
	Count        int             `json:"count"`
	Distribution map[int]int     `json:"distribution"`
}

// CreateReview stores the review of userID on courseID. Only enrolled learners may review, once.
func CreateReview(db *gorm.DB, userID, courseID uint, rating int, comment string) (*course.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, invalidInput("Rating must be between 1 and 5!")
	}

	var c course.Course
	var review course.Review
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND is_deleted = ?", courseID, false).First(&c).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("Course not found!")
			}
			return errors.Wrap(err, "load course")
		}

		var enrolled int64
		if err := tx.Model(&course.Enrollment{}).
			Where("user_id = ? AND course_id = ? AND status <> ?", userID, courseID, course.EnrollmentRevoked).
			Count(&enrolled).Error; err != nil {
			return errors.Wrap(err, "check enrollment")
		}
		if enrolled == 0 {
			return forbidden("Only enrolled learners can review this course!")
		}

		var existing int64
		if err := tx.Model(&course.Review{}).Where("user_id = ? AND course_id = ?", userID, courseID).Count(&existing).Error; err != nil {
			return errors.Wrap(err, "check review")
		}
		if existing > 0 {
			return conflict("You have already reviewed this course!")
		}

		review = course.Review{CourseID: courseID, UserID: userID, Rating: rating, Comment: comment}
		if err := tx.Create(&review).Error; err != nil {
			return errors.Wrap(err, "create review")
		}
		_, err := RecalculateRating(tx, courseID)
		return err
	})
	if err != nil {
		return nil, err
	}

	notifyQuietly(db, c.InstructorID, NotificationInput{
		Type:     models.NotifyNewReview,
		Title:    "New review",
		Message:  strconv.Itoa(rating) + "-star review on \"" + c.Title + "\".",
		Link:     "/instructor/courses/" + strconv.FormatUint(uint64(c.ID), 10) + "/reviews",
		Metadata: map[string]interface{}{"course_id": c.ID, "review_id": review.ID},
	})
	return &review, nil
}

// UpdateReview changes the rating and comment of a review owned by userID.
func UpdateReview(db *gorm.DB, userID, reviewID uint, rating int, comment string) (*course.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, invalidInput("Rating must be between 1 and 5!")
	}
	var review course.Review
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := ownReview(tx, userID, reviewID, &review); err != nil {
			return err
		}
		review.Rating = rating
		review.Comment = comment
		if err := tx.Model(&review).Updates(map[string]interface{}{"rating": rating, "comment": comment}).Error; err != nil {
			return errors.Wrap(err, "update review")
		}
		_, err := RecalculateRating(tx, review.CourseID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// DeleteReview removes a review owned by userID.
func DeleteReview(db *gorm.DB, userID, reviewID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var review course.Review
		if err := ownReview(tx, userID, reviewID, &review); err != nil {
			return err
		}
		// hard delete so the learner may review again
		if err := tx.Unscoped().Delete(&review).Error; err != nil {
			return errors.Wrap(err, "delete review")
		}
		_, err := RecalculateRating(tx, review.CourseID)
		return err
	})
}

func ownReview(tx *gorm.DB, userID, reviewID uint, review *course.Review) error {
	if err := tx.Where("id = ?", reviewID).First(review).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("Review not found!")
		}
		return errors.Wrap(err, "load review")
	}
	if review.UserID != userID {
		return forbidden("You can only change your own review!")
	}
	return nil
}

// ReplyToReview stores the instructor's reply on a review of one of their courses.
func ReplyToReview(db *gorm.DB, instructorID, reviewID uint, reply string) (*course.Review, error) {
	var review course.Review
	if err := db.Where("id = ?", reviewID).First(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Review not found!")
		}
		return nil, errors.Wrap(err, "load review")
	}

	var c course.Course
	if err := db.Select("id", "instructor_id").Where("id = ?", review.CourseID).First(&c).Error; err != nil {
		return nil, errors.Wrap(err, "load course")
	}
	if c.InstructorID != instructorID {
		return nil, forbidden("You can only reply to reviews on your courses!")
	}

	now := time.Now()
	review.Reply = reply
	review.RepliedAt = &now
	if err := db.Model(&review).Updates(map[string]interface{}{"reply": reply, "replied_at": now}).Error; err != nil {
		return nil, errors.Wrap(err, "save reply")
	}
	return &review, nil
}

// SetReviewHidden hides or unhides a review and refreshes the course rating.
func SetReviewHidden(db *gorm.DB, reviewID uint, hidden bool) (*course.Review, error) {
	var review course.Review
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", reviewID).First(&review).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("Review not found!")
			}
			return errors.Wrap(err, "load review")
		}
		review.IsHidden = hidden
		if err := tx.Model(&review).Update("is_hidden", hidden).Error; err != nil {
			return errors.Wrap(err, "update review visibility")
		}
		_, err := RecalculateRating(tx, review.CourseID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// RecalculateRating recomputes and stores the rating aggregate of courseID from visible reviews.
func RecalculateRating(db *gorm.DB, courseID uint) (*RatingSummary, error) {
	summary, err := CourseRatingSummary(db, courseID)
	if err != nil {
		return nil, err
	}
	if err := db.Model(&course.Course{}).Where("id = ?", courseID).Updates(map[string]interface{}{
		"rating_avg":   summary.Average,
		"rating_count": summary.Count,
	}).Error; err != nil {
		return nil, errors.Wrap(err, "store rating")
	}
	return summary, nil
}

// CourseRatingSummary returns average, count and star distribution of visible reviews.
func CourseRatingSummary(db *gorm.DB, courseID uint) (*RatingSummary, error) {
	var rows []struct {
		Rating int
		Total  int
	}
	if err := db.Model(&course.Review{}).
		Select("rating, COUNT(*) AS total").
		Where("course_id = ? AND is_hidden = ?", courseID, false).
		Group("rating").
		Scan(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "aggregate ratings")
	}

	summary := &RatingSummary{Average: decimal.Zero, Distribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	sum := 0
	for _, r := range rows {
		summary.Distribution[r.Rating] = r.Total
		summary.Count += r.Total
		sum += r.Rating * r.Total
	}
	if summary.Count > 0 {
		summary.Average = decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(summary.Count))).Round(2)
	}
	return summary, nil
}

// ListReviews returns one page of reviews, newest first. Without a hidden filter only visible
// reviews are returned unless all is set.
func ListReviews(db *gorm.DB, courseID uint, hidden *bool, all bool, p utils.Pagination) ([]course.Review, int64, error) {
	q := db.Model(&course.Review{})
	if courseID != 0 {
		q = q.Where("course_id = ?", courseID)
	}
	switch {
	case hidden != nil:
		q = q.Where("is_hidden = ?", *hidden)
	case !all:
		q = q.Where("is_hidden = ?", false)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count reviews")
	}
	var reviews []course.Review
	if err := q.Preload("User", publicUserFields).Order("created_at DESC").
		Offset(p.Offset).Limit(p.Limit).Find(&reviews).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list reviews")
	}
	return reviews, total, nil
}
