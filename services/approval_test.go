package services

import (
	"testing"

	"edumarket/database"
	"edumarket/models"
	"edumarket/models/course"
	"edumarket/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitCourseForReview(t *testing.T) {
	db := database.OpenTestDb(t)
	admin := newUser(t, db, models.RoleAdmin)
	instructor := newUser(t, db, models.RoleInstructor)
	other := newUser(t, db, models.RoleInstructor)

	empty, err := CreateCourse(db, instructor.ID, CourseInput{Title: strPtr("Empty")})
	require.NoError(t, err)
	_, err = SubmitCourseForReview(db, instructor.ID, empty.ID, "")
	assert.ErrorIs(t, err, ErrInvalidState)

	c := newCourse(t, db, instructor.ID, "10", withStatus(course.StatusDraft))
	_, err = SubmitCourseForReview(db, other.ID, c.ID, "")
	assert.ErrorIs(t, err, ErrForbidden)

	approval, err := SubmitCourseForReview(db, instructor.ID, c.ID, "Ready for launch")
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, approval.Status)
	assert.Equal(t, "Ready for launch", approval.SubmitNote)
	assert.Equal(t, course.StatusPendingReview, reloadCourse(t, db, c.ID).Status)

	_, err = SubmitCourseForReview(db, instructor.ID, c.ID, "")
	assert.ErrorIs(t, err, ErrInvalidState)

	published := newCourse(t, db, instructor.ID, "10")
	_, err = SubmitCourseForReview(db, instructor.ID, published.ID, "")
	assert.ErrorIs(t, err, ErrInvalidState)

	unread, err := UnreadCount(db, admin.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)
}

func TestDecideCourseApproval(t *testing.T) {
	db := database.OpenTestDb(t)
	admin := newUser(t, db, models.RoleAdmin)
	instructor := newUser(t, db, models.RoleInstructor)
	c := newCourse(t, db, instructor.ID, "10", withStatus(course.StatusDraft), func(c *course.Course) { c.PublishedAt = nil })

	first, err := SubmitCourseForReview(db, instructor.ID, c.ID, "")
	require.NoError(t, err)

	_, err = DecideCourseApproval(db, admin.ID, first.ID, false, "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	rejected, err := DecideCourseApproval(db, admin.ID, first.ID, false, "Audio quality too low")
	require.NoError(t, err)
	assert.Equal(t, models.RequestRejected, rejected.Status)
	assert.Equal(t, course.StatusRejected, reloadCourse(t, db, c.ID).Status)

	_, err = DecideCourseApproval(db, admin.ID, first.ID, true, "")
	assert.ErrorIs(t, err, ErrInvalidState)

	// rejected courses can be edited and resubmitted
	_, err = UpdateCourse(db, instructor.ID, c.ID, CourseInput{Title: strPtr("Remastered")})
	require.NoError(t, err)
	second, err := SubmitCourseForReview(db, instructor.ID, c.ID, "Re-recorded audio")
	require.NoError(t, err)

	approved, err := DecideCourseApproval(db, admin.ID, second.ID, true, "")
	require.NoError(t, err)
	assert.Equal(t, models.RequestApproved, approved.Status)
	require.NotNil(t, approved.ReviewedBy)
	assert.Equal(t, admin.ID, *approved.ReviewedBy)

	stored := reloadCourse(t, db, c.ID)
	assert.Equal(t, course.StatusPublished, stored.Status)
	assert.NotNil(t, stored.PublishedAt)

	var types []string
	require.NoError(t, db.Model(&models.Notification{}).Where("user_id = ?", instructor.ID).
		Order("id").Pluck("type", &types).Error)
	assert.Equal(t, []string{models.NotifyCourseRejected, models.NotifyCourseApproved}, types)

	pending, total, err := ListApprovals(db, models.RequestPending, utils.Paginate(1, 10))
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, pending)

	all, total, err := ListApprovals(db, "", utils.Paginate(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, first.ID, all[0].ID)
	assert.Equal(t, c.ID, all[0].Course.ID)

	_, err = DecideCourseApproval(db, admin.ID, 9999, true, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetCourseVisibility(t *testing.T) {
	db := database.OpenTestDb(t)
	instructor := newUser(t, db, models.RoleInstructor)
	c := newCourse(t, db, instructor.ID, "10")

	_, err := SetCourseVisibility(db, c.ID, false)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = SetCourseVisibility(db, c.ID, true)
	require.NoError(t, err)
	assert.Equal(t, course.StatusHidden, reloadCourse(t, db, c.ID).Status)

	student := newUser(t, db, models.RoleStudent)
	_, err = AddToCart(db, student.ID, c.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = SetCourseVisibility(db, c.ID, false)
	require.NoError(t, err)
	assert.Equal(t, course.StatusPublished, reloadCourse(t, db, c.ID).Status)

	_, err = SetCourseVisibility(db, 9999, true)
	assert.ErrorIs(t, err, ErrNotFound)
}
