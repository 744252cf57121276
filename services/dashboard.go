package services

import (
	"time"

	"edumarket/models"
	"edumarket/models/commerce"
	"edumarket/models/course"

	"github.com/jinzhu/now"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RevenueTotals splits gross sales between instructors and the platform.
type RevenueTotals struct {
	Gross      decimal.Decimal `json:"gross"`
	Instructor decimal.Decimal `json:"instructor"`
	Platform   decimal.Decimal `json:"platform"`
}

// TopCourse is a course ranked by student count.
type TopCourse struct {
	ID           uint            `json:"id"`
	Title        string          `json:"title"`
	StudentCount int             `json:"student_count"`
	RatingAvg    decimal.Decimal `json:"rating_avg"`
}

// AdminDashboard is the platform overview.
type AdminDashboard struct {
	UsersByRole     map[string]int64 `json:"users_by_role"`
	CoursesByStatus map[string]int64 `json:"courses_by_status"`
	PaidOrders      int64            `json:"paid_orders"`
	PendingReviews  int64            `json:"pending_reviews"`
	PendingRequests int64            `json:"pending_instructor_requests"`
	Revenue         RevenueTotals    `json:"revenue"`
	RevenueToday    RevenueTotals    `json:"revenue_today"`
	RevenueMonth    RevenueTotals    `json:"revenue_month"`
	TopCourses      []TopCourse      `json:"top_courses"`
}

// InstructorDashboard is the overview of one instructor.
type InstructorDashboard struct {
	Courses        int64           `json:"courses"`
	Published      int64           `json:"published"`
	Students       int64           `json:"students"`
	Balance        decimal.Decimal `json:"balance"`
	EarningsTotal  decimal.Decimal `json:"earnings_total"`
	EarningsMonth  decimal.Decimal `json:"earnings_month"`
	AverageRating  decimal.Decimal `json:"average_rating"`
	PendingReviews int64           `json:"pending_reviews"`
}

func countBy(db *gorm.DB, model interface{}, column string, where string, args ...interface{}) (map[string]int64, error) {
	var rows []struct {
		GroupKey string
		Total    int64
	}
	if err := db.Model(model).Select(column+" AS group_key, COUNT(*) AS total").Where(where, args...).Group(column).Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.GroupKey] = r.Total
	}
	return out, nil
}

// revenue sums unreversed revenue shares created in [from, to). Zero times mean unbounded.
func revenue(db *gorm.DB, instructorID uint, from, to time.Time) (RevenueTotals, error) {
	q := db.Model(&commerce.RevenueShare{}).Where("is_reversed = ?", false)
	if instructorID != 0 {
		q = q.Where("instructor_id = ?", instructorID)
	}
	if !from.IsZero() {
		q = q.Where("created_at >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("created_at < ?", to)
	}

	var row struct {
		Gross      decimal.NullDecimal
		Instructor decimal.NullDecimal
		Platform   decimal.NullDecimal
	}
	if err := q.Select("SUM(gross_amount) AS gross, SUM(instructor_amount) AS instructor, SUM(platform_amount) AS platform").
		Scan(&row).Error; err != nil {
		return RevenueTotals{}, errors.Wrap(err, "sum revenue")
	}
	return RevenueTotals{
		Gross:      row.Gross.Decimal,
		Instructor: row.Instructor.Decimal,
		Platform:   row.Platform.Decimal,
	}, nil
}

// BuildAdminDashboard aggregates platform figures as of at.
func BuildAdminDashboard(db *gorm.DB, at time.Time) (*AdminDashboard, error) {
	d := &AdminDashboard{}
	var err error

	if d.UsersByRole, err = countBy(db, &models.User{}, "role", "is_deleted = ?", false); err != nil {
		return nil, errors.Wrap(err, "count users")
	}
	if d.CoursesByStatus, err = countBy(db, &course.Course{}, "status", "is_deleted = ?", false); err != nil {
		return nil, errors.Wrap(err, "count courses")
	}
	if err := db.Model(&commerce.Order{}).Where("status = ?", commerce.OrderPaid).Count(&d.PaidOrders).Error; err != nil {
		return nil, errors.Wrap(err, "count orders")
	}
	if err := db.Model(&course.CourseApproval{}).Where("status = ?", models.RequestPending).Count(&d.PendingReviews).Error; err != nil {
		return nil, errors.Wrap(err, "count approvals")
	}
	if err := db.Model(&models.InstructorRequest{}).Where("status = ?", models.RequestPending).Count(&d.PendingRequests).Error; err != nil {
		return nil, errors.Wrap(err, "count instructor requests")
	}

	day := now.With(at)
	if d.Revenue, err = revenue(db, 0, time.Time{}, time.Time{}); err != nil {
		return nil, err
	}
	if d.RevenueToday, err = revenue(db, 0, day.BeginningOfDay(), day.BeginningOfDay().AddDate(0, 0, 1)); err != nil {
		return nil, err
	}
	if d.RevenueMonth, err = revenue(db, 0, day.BeginningOfMonth(), day.BeginningOfMonth().AddDate(0, 1, 0)); err != nil {
		return nil, err
	}

	if err := db.Model(&course.Course{}).
		Select("id, title, student_count, rating_avg").
		Where("is_deleted = ?", false).
		Order("student_count DESC").Order("id ASC").
		Limit(5).
		Scan(&d.TopCourses).Error; err != nil {
		return nil, errors.Wrap(err, "top courses")
	}
	return d, nil
}

// BuildInstructorDashboard aggregates the figures of instructorID as of at.
func BuildInstructorDashboard(db *gorm.DB, instructorID uint, at time.Time) (*InstructorDashboard, error) {
	d := &InstructorDashboard{}

	courses := db.Model(&course.Course{}).Where("instructor_id = ? AND is_deleted = ?", instructorID, false)
	if err := courses.Session(&gorm.Session{}).Count(&d.Courses).Error; err != nil {
		return nil, errors.Wrap(err, "count courses")
	}
	if err := courses.Session(&gorm.Session{}).Where("status = ?", course.StatusPublished).Count(&d.Published).Error; err != nil {
		return nil, errors.Wrap(err, "count published courses")
	}

	var agg struct {
		Students int64
		Rated    int64
		Weighted decimal.NullDecimal
	}
	if err := courses.Session(&gorm.Session{}).
		Select("COALESCE(SUM(student_count), 0) AS students, COALESCE(SUM(rating_count), 0) AS rated, SUM(rating_avg * rating_count) AS weighted").
		Scan(&agg).Error; err != nil {
		return nil, errors.Wrap(err, "aggregate courses")
	}
	d.Students = agg.Students
	d.AverageRating = decimal.Zero
	if agg.Rated > 0 {
		d.AverageRating = agg.Weighted.Decimal.Div(decimal.NewFromInt(agg.Rated)).Round(2)
	}

	if err := db.Model(&course.CourseApproval{}).
		Where("instructor_id = ? AND status = ?", instructorID, models.RequestPending).
		Count(&d.PendingReviews).Error; err != nil {
		return nil, errors.Wrap(err, "count approvals")
	}

	var user models.User
	if err := db.Select("id", "balance").Where("id = ?", instructorID).First(&user).Error; err != nil {
		return nil, errors.Wrap(err, "load instructor")
	}
	d.Balance = user.Balance

	total, err := revenue(db, instructorID, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	month := now.With(at).BeginningOfMonth()
	thisMonth, err := revenue(db, instructorID, month, month.AddDate(0, 1, 0))
	if err != nil {
		return nil, err
	}
	d.EarningsTotal = total.Instructor
	d.EarningsMonth = thisMonth.Instructor
	return d, nil
}
