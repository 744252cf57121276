package services

import (
	"testing"
	"time"

	"edumarket/database"
	"edumarket/models"
	"edumarket/models/course"
	"edumarket/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLessonCompletionTracksProgress(t *testing.T) {
	db := database.OpenTestDb(t)
	instructor := newUser(t, db, models.RoleInstructor)
	student := newUser(t, db, models.RoleStudent)
	c := newCourse(t, db, instructor.ID, "10")
	second := addLesson(t, db, c, false)
	third := addLesson(t, db, c, false)
	paidOrder(t, db, student.ID, "", c)

	e, rows, err := CourseProgress(db, student.ID, c.ID)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, 3, e.TotalLessons)
	first := rows[0].LessonID

	e, err = SetLessonCompletion(db, student.ID, c.ID, first, true)
	require.NoError(t, err)
	assert.Equal(t, 1, e.CompletedLessons)
	assert.InDelta(t, 33.33, e.Progress, 0.001)
	require.NotNil(t, e.LastLessonID)
	assert.Equal(t, first, *e.LastLessonID)

	_, err = SetLessonCompletion(db, student.ID, c.ID, second.ID, true)
	require.NoError(t, err)
	e, err = SetLessonCompletion(db, student.ID, c.ID, third.ID, true)
	require.NoError(t, err)
	assert.Equal(t, course.EnrollmentCompleted, e.Status)
	assert.Equal(t, float64(100), e.Progress)
	assert.NotNil(t, e.CompletedAt)

	e, err = SetLessonCompletion(db, student.ID, c.ID, second.ID, false)
	require.NoError(t, err)
	assert.Equal(t, course.EnrollmentActive, e.Status)
	assert.Equal(t, 2, e.CompletedLessons)
	assert.Nil(t, e.CompletedAt)

	_, err = SetLessonCompletion(db, student.ID, c.ID, 9999, true)
	assert.ErrorIs(t, err, ErrNotFound)

	stranger := newUser(t, db, models.RoleStudent)
	_, err = SetLessonCompletion(db, stranger.ID, c.ID, first, true)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestNewLessonsJoinExistingProgress(t *testing.T) {
	db := database.OpenTestDb(t)
	instructor := newUser(t, db, models.RoleInstructor)
	student := newUser(t, db, models.RoleStudent)
	c := newCourse(t, db, instructor.ID, "10")
	paidOrder(t, db, student.ID, "", c)

	_, rows, err := CourseProgress(db, student.ID, c.ID)
	require.NoError(t, err)
	e, err := SetLessonCompletion(db, student.ID, c.ID, rows[0].LessonID, true)
	require.NoError(t, err)
	assert.Equal(t, course.EnrollmentCompleted, e.Status)

	added := addLesson(t, db, c, false)
	e, err = SetLessonCompletion(db, student.ID, c.ID, rows[0].LessonID, true)
	require.NoError(t, err)
	assert.Equal(t, 2, e.TotalLessons)
	assert.InDelta(t, 50, e.Progress, 0.001)
	assert.Equal(t, course.EnrollmentActive, e.Status)

	_, rows, err = CourseProgress(db, student.ID, c.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, added.ID, rows[1].LessonID)
}

func TestCurriculumChangesRefreshProgress(t *testing.T) {
	db := database.OpenTestDb(t)
	instructor := newUser(t, db, models.RoleInstructor)
	student := newUser(t, db, models.RoleStudent)
	c := newCourse(t, db, instructor.ID, "10")
	paidOrder(t, db, student.ID, "", c)

	_, rows, err := CourseProgress(db, student.ID, c.ID)
	require.NoError(t, err)
	_, err = SetLessonCompletion(db, student.ID, c.ID, rows[0].LessonID, true)
	require.NoError(t, err)

	enrollment := func() course.Enrollment {
		t.Helper()
		list, _, err := ListEnrollments(db, student.ID, "", utils.Paginate(1, 10))
		require.NoError(t, err)
		require.Len(t, list, 1)
		return list[0]
	}

	extra, err := AddSection(db, instructor.ID, c.ID, SectionInput{Title: "Bonus"})
	require.NoError(t, err)
	bonus, err := AddLesson(db, instructor.ID, c.ID, LessonInput{
		SectionID: extra.ID, Title: "Bonus", ContentType: "video", VideoURL: "https://cdn.example.com/bonus.mp4",
	})
	require.NoError(t, err)

	e := enrollment()
	assert.Equal(t, course.EnrollmentActive, e.Status)
	assert.Equal(t, 2, e.TotalLessons)
	assert.InDelta(t, 50, e.Progress, 0.001)
	assert.Nil(t, e.CompletedAt)
	_, rows, err = CourseProgress(db, student.ID, c.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, bonus.ID, rows[1].LessonID)

	require.NoError(t, DeleteLesson(db, instructor.ID, c.ID, bonus.ID))
	e = enrollment()
	assert.Equal(t, course.EnrollmentCompleted, e.Status)
	assert.Equal(t, 1, e.TotalLessons)
	assert.InDelta(t, 100, e.Progress, 0.001)
	_, rows, err = CourseProgress(db, student.ID, c.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = AddLesson(db, instructor.ID, c.ID, LessonInput{
		SectionID: extra.ID, Title: "Bonus again", ContentType: "text", TextContent: "Read me",
	})
	require.NoError(t, err)
	assert.Equal(t, course.EnrollmentActive, enrollment().Status)

	require.NoError(t, DeleteSection(db, instructor.ID, c.ID, extra.ID))
	e = enrollment()
	assert.Equal(t, course.EnrollmentCompleted, e.Status)
	assert.Equal(t, 1, e.CompletedLessons)
	assert.InDelta(t, 100, e.Progress, 0.001)
}

func TestExpiredAccessBlocksProgress(t *testing.T) {
	db := database.OpenTestDb(t)
	instructor := newUser(t, db, models.RoleInstructor)
	student := newUser(t, db, models.RoleStudent)
	c := newCourse(t, db, instructor.ID, "10", withAccessDays(7))
	paidOrder(t, db, student.ID, "", c)

	past := time.Now().Add(-time.Hour)
	require.NoError(t, db.Model(&course.Enrollment{}).
		Where("user_id = ? AND course_id = ?", student.ID, c.ID).Update("expires_at", past).Error)

	_, rows, err := CourseProgress(db, student.ID, c.ID)
	require.NoError(t, err)
	_, err = SetLessonCompletion(db, student.ID, c.ID, rows[0].LessonID, true)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestExpireEnrollments(t *testing.T) {
	db := database.OpenTestDb(t)
	instructor := newUser(t, db, models.RoleInstructor)
	student := newUser(t, db, models.RoleStudent)
	timed := newCourse(t, db, instructor.ID, "10", withAccessDays(30))
	lifetime := newCourse(t, db, instructor.ID, "10")
	paidOrder(t, db, student.ID, "", timed, lifetime)

	n, err := ExpireEnrollments(db, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = ExpireEnrollments(db, time.Now().AddDate(0, 0, 31))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	expired, total, err := ListEnrollments(db, student.ID, course.EnrollmentExpired, utils.Paginate(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, timed.ID, expired[0].CourseID)
	assert.Equal(t, timed.Title, expired[0].Course.Title)

	_, total, err = ListEnrollments(db, student.ID, "", utils.Paginate(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	var notified int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", student.ID, models.NotifyEnrollmentExpired).Count(&notified).Error)
	assert.EqualValues(t, 1, notified)

	// a repurchase restores access
	_, err = AddToCart(db, student.ID, timed.ID)
	require.NoError(t, err)
}

func TestRemindExpiringEnrollments(t *testing.T) {
	db := database.OpenTestDb(t)
	instructor := newUser(t, db, models.RoleInstructor)
	student := newUser(t, db, models.RoleStudent)
	soon := newCourse(t, db, instructor.ID, "10", withAccessDays(2))
	later := newCourse(t, db, instructor.ID, "10", withAccessDays(60))
	paidOrder(t, db, student.ID, "", soon, later)

	n, err := RemindExpiringEnrollments(db, time.Now(), 3*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = RemindExpiringEnrollments(db, time.Now(), 3*24*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)

	var reminded course.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", student.ID, soon.ID).First(&reminded).Error)
	assert.True(t, reminded.ReminderSent)
}
