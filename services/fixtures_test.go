package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"edumarket/models"
	"edumarket/models/commerce"
	"edumarket/models/course"
	"edumarket/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixtureSeq int

func nextSeq() int {
	fixtureSeq++
	return fixtureSeq
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}

func newUser(t *testing.T, db *gorm.DB, role string) *models.User {
	t.Helper()
	n := nextSeq()
	u := models.User{
		Name:            fmt.Sprintf("%s %d", role, n),
		Email:           fmt.Sprintf("user%d@example.com", n),
		Password:        "not-a-hash",
		Role:            role,
		IsEmailVerified: true,
		Balance:         decimal.Zero,
	}
	require.NoError(t, db.Create(&u).Error)
	require.NoError(t, SeedPermissions(db, role, u.ID))
	return &u
}

type courseOpt func(*course.Course)

func withSalePrice(p string) courseOpt {
	return func(c *course.Course) {
		sp := dec(p)
		c.SalePrice = &sp
	}
}

func withAccessDays(days int) courseOpt {
	return func(c *course.Course) { c.AccessDays = days }
}

func withStatus(status string) courseOpt {
	return func(c *course.Course) { c.Status = status }
}

// newCourse stores a published course with one section and one lesson.
func newCourse(t *testing.T, db *gorm.DB, instructorID uint, price string, opts ...courseOpt) *course.Course {
	t.Helper()
	n := nextSeq()
	now := time.Now()
	c := course.Course{
		InstructorID: instructorID,
		Title:        fmt.Sprintf("Course %d", n),
		Slug:         fmt.Sprintf("course-%d", n),
		Price:        dec(price),
		Status:       course.StatusPublished,
		Level:        course.LevelAll,
		Language:     "en",
		RatingAvg:    decimal.Zero,
		PublishedAt:  &now,
	}
	for _, opt := range opts {
		opt(&c)
	}
	require.NoError(t, db.Create(&c).Error)
	addLesson(t, db, &c, false)
	return &c
}

func addLesson(t *testing.T, db *gorm.DB, c *course.Course, preview bool) *course.Lesson {
	t.Helper()
	var s course.Section
	if err := db.Where("course_id = ?", c.ID).First(&s).Error; err != nil {
		s = course.Section{CourseID: c.ID, Title: "Getting started"}
		require.NoError(t, db.Create(&s).Error)
	}
	l := course.Lesson{
		CourseID:    c.ID,
		SectionID:   s.ID,
		Title:       fmt.Sprintf("Lesson %d", nextSeq()),
		ContentType: course.ContentVideo,
		VideoURL:    "https://cdn.example.com/video.mp4",
		IsPreview:   preview,
	}
	require.NoError(t, db.Create(&l).Error)
	return &l
}

func newVoucher(t *testing.T, db *gorm.DB, code, kind, value string, edit ...func(*commerce.Voucher)) *commerce.Voucher {
	t.Helper()
	v := commerce.Voucher{
		Code:           code,
		Type:           kind,
		Value:          dec(value),
		MaxDiscount:    decimal.Zero,
		MinOrderAmount: decimal.Zero,
		PerUserLimit:   1,
		IsActive:       true,
	}
	for _, fn := range edit {
		fn(&v)
	}
	require.NoError(t, db.Create(&v).Error)
	return &v
}

// paidOrder creates and settles an order for courses through the card gateway.
func paidOrder(t *testing.T, db *gorm.DB, userID uint, voucher string, courses ...*course.Course) *commerce.Order {
	t.Helper()
	ids := make([]uint, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}
	order, err := CreateOrder(db, userID, ids, voucher)
	require.NoError(t, err)
	res, err := ProcessPaymentSuccess(db, order.ID, PaymentInfo{
		Gateway:         commerce.GatewayStripe,
		SessionID:       "cs_" + order.OrderCode,
		PaymentIntentID: "pi_" + order.OrderCode,
	})
	require.NoError(t, err)
	return res.Order
}

func reloadUser(t *testing.T, db *gorm.DB, id uint) models.User {
	t.Helper()
	var u models.User
	require.NoError(t, db.First(&u, id).Error)
	return u
}

func reloadCourse(t *testing.T, db *gorm.DB, id uint) course.Course {
	t.Helper()
	var c course.Course
	require.NoError(t, db.First(&c, id).Error)
	return c
}

func reloadOrder(t *testing.T, db *gorm.DB, id uint) commerce.Order {
	t.Helper()
	var o commerce.Order
	require.NoError(t, db.Preload("Items").First(&o, id).Error)
	return o
}

type fakeGateway struct {
	session   *utils.CheckoutSession
	createErr error
	getErr    error
	refundErr error
	requests  []utils.CheckoutRequest
	refunds   []int64
}

func (f *fakeGateway) CreateCheckoutSession(_ context.Context, req utils.CheckoutRequest) (*utils.CheckoutSession, error) {
	f.requests = append(f.requests, req)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &utils.CheckoutSession{
		ID:  "cs_test_" + req.OrderCode,
		URL: "https://checkout.example.com/" + req.OrderCode,
	}, nil
}

func (f *fakeGateway) GetCheckoutSession(_ context.Context, sessionID string) (*utils.CheckoutSession, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.session == nil || f.session.ID != sessionID {
		return nil, fmt.Errorf("no such checkout session: %s", sessionID)
	}
	return f.session, nil
}

func (f *fakeGateway) CreateRefund(_ context.Context, _ string, amountMinor int64) error {
	f.refunds = append(f.refunds, amountMinor)
	return f.refundErr
}
