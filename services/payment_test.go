package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"edumarket/database"
	"edumarket/models"
	"edumarket/models/commerce"
	"edumarket/models/course"
	"edumarket/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrderPricesItemsAndSplitsVoucher(t *testing.T) {
	db := database.OpenTestDb(t)
	instructor := newUser(t, db, models.RoleInstructor)
	student := newUser(t, db, models.RoleStudent)
	c1 := newCourse(t, db, instructor.ID, "100")
	c2 := newCourse(t, db, instructor.ID, "60", withSalePrice("40"))
	newVoucher(t, db, "SAVE10", commerce.VoucherPercent, "10")

	_, err := AddToCart(db, student.ID, c1.ID)
	require.NoError(t, err)

	order, err := CreateOrder(db, student.ID, []uint{c1.ID, c2.ID, c1.ID}, "save10")
	require.NoError(t, err)

	assert.Equal(t, commerce.OrderPending, order.Status)
	assertDecimal(t, "140", order.Subtotal)
	assertDecimal(t, "14", order.DiscountAmount)
	assertDecimal(t, "126", order.Total)
	assert.Equal(t, "SAVE10", order.VoucherCode)
	require.Len(t, order.Items, 2)
	assertDecimal(t, "100", order.Items[0].Price)
	assertDecimal(t, "10", order.Items[0].DiscountAmount)
	assertDecimal(t, "90", order.Items[0].FinalPrice)
	assertDecimal(t, "40", order.Items[1].Price)
	assertDecimal(t, "4", order.Items[1].DiscountAmount)
	assertDecimal(t, "36", order.Items[1].FinalPrice)

	ids, err := CartCourseIDs(db, student.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestCreateOrderRejectsInvalidPurchases(t *testing.T) {
	db := database.OpenTestDb(t)
	instructor := newUser(t, db, models.RoleInstructor)
	student := newUser(t, db, models.RoleStudent)
	published := newCourse(t, db, instructor.ID, "20")
	draft := newCourse(t, db, instructor.ID, "20", withStatus(course.StatusDraft))

	_, err := CreateOrder(db, student.ID, nil, "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = CreateOrder(db, student.ID, []uint{draft.ID}, "")
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = CreateOrder(db, instructor.ID, []uint{published.ID}, "")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = CreateOrder(db, student.ID, []uint{published.ID, 9999}, "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = CreateOrder(db, student.ID, []uint{published.ID}, "NOPE")
	assert.ErrorIs(t, err, ErrVoucherInvalid)

	paidOrder(t, db, student.ID, "", published)
	_, err = CreateOrder(db, student.ID, []uint{published.ID}, "")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestProcessPaymentSuccessSettlesOnce(t *testing.T) {
	db := database.OpenTestDb(t)
	instructor := newUser(t, db, models.RoleInstructor)
	student := newUser(t, db, models.RoleStudent)
	c1 := newCourse(t, db, instructor.ID, "100")
	c2 := newCourse(t, db, instructor.ID, "50")
	v := newVoucher(t, db, "FLAT30", commerce.VoucherFixed, "30")

	order, err := CreateOrder(db, student.ID, []uint{c1.ID, c2.ID}, "FLAT30")
	require.NoError(t, err)

	info := PaymentInfo{
		Gateway:         commerce.GatewayStripe,
		SessionID:       "cs_1",
		PaymentIntentID: "pi_1",
		Raw:             []byte(`{"id":"cs_1"}`),
	}
	res, err := ProcessPaymentSuccess(db, order.ID, info)
	require.NoError(t, err)
	assert.False(t, res.AlreadyPaid)
	assert.ElementsMatch(t, []uint{c1.ID, c2.ID}, res.NewEnrollments)
	assert.Empty(t, res.Renewed)

	stored := reloadOrder(t, db, order.ID)
	assert.Equal(t, commerce.OrderPaid, stored.Status)
	assert.Equal(t, "pi_1", stored.PaymentIntentID)
	assert.NotNil(t, stored.PaidAt)

	for _, c := range []*course.Course{c1, c2} {
		e, ok, err := ActiveEnrollment(db, student.ID, c.ID, time.Now())
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Nil(t, e.ExpiresAt)
		assert.Equal(t, 1, e.TotalLessons)
		assert.Equal(t, 1, reloadCourse(t, db, c.ID).StudentCount)
	}

	// total 120 at 70 percent
	assertDecimal(t, "84", reloadUser(t, db, instructor.ID).Balance)
	var shares []commerce.RevenueShare
	require.NoError(t, db.Where("order_id = ?", order.ID).Find(&shares).Error)
	assert.Len(t, shares, 2)

	var used commerce.Voucher
	require.NoError(t, db.First(&used, v.ID).Error)
	assert.Equal(t, 1, used.UsedCount)

	again, err := ProcessPaymentSuccess(db, order.ID, info)
	require.NoError(t, err)
	assert.True(t, again.AlreadyPaid)

	var shareCount int64
	require.NoError(t, db.Model(&commerce.RevenueShare{}).Where("order_id = ?", order.ID).Count(&shareCount).Error)
	assert.EqualValues(t, 2, shareCount)
	assertDecimal(t, "84", reloadUser(t, db, instructor.ID).Balance)
	require.NoError(t, db.First(&used, v.ID).Error)
	assert.Equal(t, 1, used.UsedCount)
	assert.Equal(t, 1, reloadCourse(t, db, c1.ID).StudentCount)

	var purchased int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", student.ID, models.NotifyCoursePurchased).Count(&purchased).Error)
	assert.EqualValues(t, 1, purchased)
}

func TestProcessPaymentSuccessExtendsActiveAccess(t *testing.T) {
	db := database.OpenTestDb(t)
	instructor := newUser(t, db, models.RoleInstructor)
	student := newUser(t, db, models.RoleStudent)
	c := newCourse(t, db, instructor.ID, "10", withAccessDays(30))

	first, err := CreateOrder(db, student.ID, []uint{c.ID}, "")
	require.NoError(t, err)
	second, err := CreateOrder(db, student.ID, []uint{c.ID}, "")
	require.NoError(t, err)

	_, err = ProcessPaymentSuccess(db, first.ID, PaymentInfo{Gateway: commerce.GatewayStripe})
	require.NoError(t, err)
	e, ok, err := ActiveEnrollment(db, student.ID, c.ID, time.Now())
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, e.ExpiresAt)
	firstExpiry := *e.ExpiresAt

	res, err := ProcessPaymentSuccess(db, second.ID, PaymentInfo{Gateway: commerce.GatewayStripe})
	require.NoError(t, err)
	assert.Equal(t, []uint{c.ID}, res.Renewed)

	e, ok, err = ActiveEnrollment(db, student.ID, c.ID, time.Now())
	require.NoError(t, err)
	require.True(t, ok)
	assert.WithinDuration(t, firstExpiry.AddDate(0, 0, 30), *e.ExpiresAt, time.Second)
	assert.Equal(t, second.ID, e.OrderID)
	assert.Equal(t, 1, reloadCourse(t, db, c.ID).StudentCount)
}

func TestProcessPaymentSuccessRestoresExpiredAccess(t *testing.T) {
	db := database.OpenTestDb(t)
	instructor := newUser(t, db, models.RoleInstructor)
	student := newUser(t, db, models.RoleStudent)
	c := newCourse(t, db, instructor.ID, "10", withAccessDays(30))

	past := time.Now().AddDate(0, 0, -40)
	expiredAt := past.AddDate(0, 0, 30)
	require.NoError(t, db.Create(&course.Enrollment{
		UserID:     student.ID,
		CourseID:   c.ID,
		Status:     course.EnrollmentExpired,
		EnrolledAt: past,
		ExpiresAt:  &expiredAt,
	}).Error)

	order, err := CreateOrder(db, student.ID, []uint{c.ID}, "")
	require.NoError(t, err)
	res, err := ProcessPaymentSuccess(db, order.ID, PaymentInfo{Gateway: commerce.GatewayStripe})
	require.NoError(t, err)
	assert.Equal(t, []uint{c.ID}, res.Renewed)

	e, ok, err := ActiveEnrollment(db, student.ID, c.ID, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, course.EnrollmentActive, e.Status)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 30), *e.ExpiresAt, time.Minute)
}

func TestProcessPaymentSuccessStates(t *testing.T) {
	db := database.OpenTestDb(t)
	instructor := newUser(t, db, models.RoleInstructor)
	student := newUser(t, db, models.RoleStudent)

	_, err := ProcessPaymentSuccess(db, 4242, PaymentInfo{})
	assert.ErrorIs(t, err, ErrNotFound)

	// a payment that arrives after the buyer cancelled still settles
	cancelled, err := CreateOrder(db, student.ID, []uint{newCourse(t, db, instructor.ID, "10").ID}, "")
	require.NoError(t, err)
	_, err = CancelOrder(db, student.ID, cancelled.ID)
	require.NoError(t, err)
	res, err := ProcessPaymentSuccess(db, cancelled.ID, PaymentInfo{Gateway: commerce.GatewayStripe})
	require.NoError(t, err)
	assert.Equal(t, commerce.OrderPaid, res.Order.Status)

	refunded := paidOrder(t, db, student.ID, "", newCourse(t, db, instructor.ID, "10"))
	_, err = RefundOrder(context.Background(), db, &fakeGateway{}, refunded.ID, 1, "duplicate")
	require.NoError(t, err)
	_, err = ProcessPaymentSuccess(db, refunded.ID, PaymentInfo{})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestFreeOrderSettlesWithoutEarnings(t *testing.T) {
	db := database.OpenTestDb(t)
	instructor := newUser(t, db, models.RoleInstructor)
	student := newUser(t, db, models.RoleStudent)
	c := newCourse(t, db, instructor.ID, "0")

	order, err := CreateOrder(db, student.ID, []uint{c.ID}, "")
	require.NoError(t, err)
	assert.True(t, order.Total.IsZero())

	_, err = ProcessPaymentSuccess(db, order.ID, PaymentInfo{Gateway: commerce.GatewayFree})
	require.NoError(t, err)

	assert.Equal(t, commerce.GatewayFree, reloadOrder(t, db, order.ID).PaymentGateway)
	assert.True(t, reloadUser(t, db, instructor.ID).Balance.IsZero())
	var ledger int64
	require.NoError(t, db.Model(&models.WalletTransaction{}).Where("user_id = ?", instructor.ID).Count(&ledger).Error)
	assert.Zero(t, ledger)
}

func TestStartCheckoutStoresSession(t *testing.T) {
	db := database.OpenTestDb(t)
	instructor := newUser(t, db, models.RoleInstructor)
	student := newUser(t, db, models.RoleStudent)
	c := newCourse(t, db, instructor.ID, "19.99")

	order, err := CreateOrder(db, student.ID, []uint{c.ID}, "")
	require.NoError(t, err)

	gw := &fakeGateway{}
	require.NoError(t, StartCheckout(context.Background(), db, gw, order, student.Email, "https://app/success", "https://app/cancel"))

	require.Len(t, gw.requests, 1)
	req := gw.requests[0]
	assert.Equal(t, order.OrderCode, req.OrderCode)
	require.Len(t, req.Items, 1)
	assert.EqualValues(t, 1999, req.Items[0].AmountMinor)

	stored := reloadOrder(t, db, order.ID)
	assert.Equal(t, "cs_test_"+order.OrderCode, stored.CheckoutSession)
	assert.Equal(t, commerce.GatewayStripe, stored.PaymentGateway)
	assert.NotEmpty(t, stored.CheckoutURL)

	failing := &fakeGateway{createErr: errors.New("card processor down")}
	other, err := CreateOrder(db, student.ID, []uint{newCourse(t, db, instructor.ID, "5").ID}, "")
	require.NoError(t, err)
	err = StartCheckout(context.Background(), db, failing, other, student.Email, "s", "c")
	assert.ErrorIs(t, err, ErrGateway)
}

func TestConfirmCheckoutSession(t *testing.T) {
	db := database.OpenTestDb(t)
	instructor := newUser(t, db, models.RoleInstructor)
	student := newUser(t, db, models.RoleStudent)
	c := newCourse(t, db, instructor.ID, "25")

	order, err := CreateOrder(db, student.ID, []uint{c.ID}, "")
	require.NoError(t, err)
	gw := &fakeGateway{}
	require.NoError(t, StartCheckout(context.Background(), db, gw, order, "", "s", "c"))

	gw.session = &utils.CheckoutSession{ID: order.CheckoutSession, PaymentStatus: "unpaid"}
	_, err = ConfirmCheckoutSession(context.Background(), db, gw, order.CheckoutSession)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, commerce.OrderPending, reloadOrder(t, db, order.ID).Status)

	gw.session.PaymentStatus = "paid"
	gw.session.PaymentIntent = "pi_confirm"
	res, err := ConfirmCheckoutSession(context.Background(), db, gw, order.CheckoutSession)
	require.NoError(t, err)
	assert.Equal(t, commerce.OrderPaid, res.Order.Status)
	assert.Equal(t, "pi_confirm", res.Order.PaymentIntentID)

	_, err = ConfirmCheckoutSession(context.Background(), db, gw, "cs_unknown")
	assert.ErrorIs(t, err, ErrGateway)
}

func stripeEvent(t *testing.T, eventType string, session utils.CheckoutSession) *utils.StripeEvent {
	t.Helper()
	obj, err := json.Marshal(session)
	require.NoError(t, err)
	ev := &utils.StripeEvent{ID: "evt_1", Type: eventType}
	ev.Data.Object = obj
	return ev
}

func TestHandleStripeEvent(t *testing.T) {
	db := database.OpenTestDb(t)
	instructor := newUser(t, db, models.RoleInstructor)
	student := newUser(t, db, models.RoleStudent)

	paid, err := CreateOrder(db, student.ID, []uint{newCourse(t, db, instructor.ID, "30").ID}, "")
	require.NoError(t, err)
	require.NoError(t, StartCheckout(context.Background(), db, &fakeGateway{}, paid, "", "s", "c"))

	require.NoError(t, HandleStripeEvent(db, stripeEvent(t, "checkout.session.completed", utils.CheckoutSession{
		ID: paid.CheckoutSession, PaymentStatus: "paid", PaymentIntent: "pi_hook",
	})))
	stored := reloadOrder(t, db, paid.ID)
	assert.Equal(t, commerce.OrderPaid, stored.Status)
	assert.Equal(t, "pi_hook", stored.PaymentIntentID)

	// redelivery is harmless
	require.NoError(t, HandleStripeEvent(db, stripeEvent(t, "checkout.session.completed", utils.CheckoutSession{
		ID: paid.CheckoutSession, PaymentStatus: "paid", PaymentIntent: "pi_hook",
	})))
	var shares int64
	require.NoError(t, db.Model(&commerce.RevenueShare{}).Where("order_id = ?", paid.ID).Count(&shares).Error)
	assert.EqualValues(t, 1, shares)

	expired, err := CreateOrder(db, student.ID, []uint{newCourse(t, db, instructor.ID, "30").ID}, "")
	require.NoError(t, err)
	require.NoError(t, HandleStripeEvent(db, stripeEvent(t, "checkout.session.expired", utils.CheckoutSession{
		ID: "cs_other", ClientReferenceID: expired.OrderCode,
	})))
	assert.Equal(t, commerce.OrderFailed, reloadOrder(t, db, expired.ID).Status)

	err = HandleStripeEvent(db, stripeEvent(t, "checkout.session.completed", utils.CheckoutSession{
		ID: "cs_missing", PaymentStatus: "paid",
	}))
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, HandleStripeEvent(db, &utils.StripeEvent{ID: "evt_2", Type: "customer.created"}))
}

func TestRefundOrderRevokesAccessAndReversesEarnings(t *testing.T) {
	db := database.OpenTestDb(t)
	admin := newUser(t, db, models.RoleAdmin)
	instructor := newUser(t, db, models.RoleInstructor)
	student := newUser(t, db, models.RoleStudent)
	c := newCourse(t, db, instructor.ID, "40")

	order := paidOrder(t, db, student.ID, "", c)
	assertDecimal(t, "28", reloadUser(t, db, instructor.ID).Balance)

	failing := &fakeGateway{refundErr: errors.New("declined")}
	_, err := RefundOrder(context.Background(), db, failing, order.ID, admin.ID, "requested by buyer")
	assert.ErrorIs(t, err, ErrGateway)
	assert.Equal(t, []int64{4000}, failing.refunds)

	// a declined refund leaves no trace
	assert.Equal(t, commerce.OrderPaid, reloadOrder(t, db, order.ID).Status)
	_, ok, err := ActiveEnrollment(db, student.ID, c.ID, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, reloadCourse(t, db, c.ID).StudentCount)
	assertDecimal(t, "28", reloadUser(t, db, instructor.ID).Balance)
	var reversals int64
	require.NoError(t, db.Model(&models.WalletTransaction{}).
		Where("transaction_type = ?", models.TransactionTypeSaleReversal).Count(&reversals).Error)
	assert.Zero(t, reversals)
	var open int64
	require.NoError(t, db.Model(&commerce.RevenueShare{}).Where("order_id = ? AND is_reversed = ?", order.ID, false).Count(&open).Error)
	assert.EqualValues(t, 1, open)

	_, err = RefundOrder(context.Background(), db, nil, order.ID, admin.ID, "requested by buyer")
	assert.ErrorIs(t, err, ErrGateway)
	assert.Equal(t, commerce.OrderPaid, reloadOrder(t, db, order.ID).Status)

	gw := &fakeGateway{}
	refunded, err := RefundOrder(context.Background(), db, gw, order.ID, admin.ID, "requested by buyer")
	require.NoError(t, err)
	assert.Equal(t, commerce.OrderRefunded, refunded.Status)
	assert.Equal(t, []int64{4000}, gw.refunds)

	_, ok, err = ActiveEnrollment(db, student.ID, c.ID, time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, reloadCourse(t, db, c.ID).StudentCount)
	assert.True(t, reloadUser(t, db, instructor.ID).Balance.IsZero())

	var reversal models.WalletTransaction
	require.NoError(t, db.Where("user_id = ? AND transaction_type = ?", instructor.ID, models.TransactionTypeSaleReversal).First(&reversal).Error)
	assertDecimal(t, "28", reversal.Amount)
	assert.Equal(t, admin.ID, reversal.AdminID)

	_, err = RefundOrder(context.Background(), db, gw, order.ID, admin.ID, "again")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRepurchaseAfterRefundCountsLearnerAgain(t *testing.T) {
	db := database.OpenTestDb(t)
	admin := newUser(t, db, models.RoleAdmin)
	instructor := newUser(t, db, models.RoleInstructor)
	student := newUser(t, db, models.RoleStudent)
	c := newCourse(t, db, instructor.ID, "40")

	first := paidOrder(t, db, student.ID, "", c)
	assert.Equal(t, 1, reloadCourse(t, db, c.ID).StudentCount)

	_, err := RefundOrder(context.Background(), db, &fakeGateway{}, first.ID, admin.ID, "changed my mind")
	require.NoError(t, err)
	assert.Equal(t, 0, reloadCourse(t, db, c.ID).StudentCount)

	again, err := CreateOrder(db, student.ID, []uint{c.ID}, "")
	require.NoError(t, err)
	res, err := ProcessPaymentSuccess(db, again.ID, PaymentInfo{Gateway: commerce.GatewayStripe, PaymentIntentID: "pi_again"})
	require.NoError(t, err)
	assert.Equal(t, []uint{c.ID}, res.NewEnrollments)
	assert.Empty(t, res.Renewed)

	assert.Equal(t, 1, reloadCourse(t, db, c.ID).StudentCount)
	e, ok, err := ActiveEnrollment(db, student.ID, c.ID, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, again.ID, e.OrderID)
}

func TestRefundFollowsLatestGrantingOrder(t *testing.T) {
	db := database.OpenTestDb(t)
	admin := newUser(t, db, models.RoleAdmin)
	instructor := newUser(t, db, models.RoleInstructor)
	student := newUser(t, db, models.RoleStudent)
	c := newCourse(t, db, instructor.ID, "40", withAccessDays(30))

	first := paidOrder(t, db, student.ID, "", c)
	require.NoError(t, db.Model(&course.Enrollment{}).
		Where("user_id = ? AND course_id = ?", student.ID, c.ID).
		Update("expires_at", time.Now().Add(-time.Hour)).Error)
	second := paidOrder(t, db, student.ID, "", c)
	assert.Equal(t, 1, reloadCourse(t, db, c.ID).StudentCount)

	// the enrollment now belongs to the renewal
	_, err := RefundOrder(context.Background(), db, &fakeGateway{}, first.ID, admin.ID, "duplicate")
	require.NoError(t, err)
	_, ok, err := ActiveEnrollment(db, student.ID, c.ID, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, reloadCourse(t, db, c.ID).StudentCount)
	assertDecimal(t, "28", reloadUser(t, db, instructor.ID).Balance)

	_, err = RefundOrder(context.Background(), db, &fakeGateway{}, second.ID, admin.ID, "duplicate")
	require.NoError(t, err)
	_, ok, err = ActiveEnrollment(db, student.ID, c.ID, time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, reloadCourse(t, db, c.ID).StudentCount)
	assert.True(t, reloadUser(t, db, instructor.ID).Balance.IsZero())
}

func TestCancelAndExpireOrders(t *testing.T) {
	db := database.OpenTestDb(t)
	instructor := newUser(t, db, models.RoleInstructor)
	student := newUser(t, db, models.RoleStudent)
	stranger := newUser(t, db, models.RoleStudent)

	order, err := CreateOrder(db, student.ID, []uint{newCourse(t, db, instructor.ID, "10").ID}, "")
	require.NoError(t, err)

	_, err = CancelOrder(db, stranger.ID, order.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	cancelled, err := CancelOrder(db, student.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, commerce.OrderCancelled, cancelled.Status)

	_, err = CancelOrder(db, student.ID, order.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	stale, err := CreateOrder(db, student.ID, []uint{newCourse(t, db, instructor.ID, "10").ID}, "")
	require.NoError(t, err)
	n, err := ExpireStaleOrders(db, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, commerce.OrderExpired, reloadOrder(t, db, stale.ID).Status)
}

func TestListAndGetOrders(t *testing.T) {
	db := database.OpenTestDb(t)
	instructor := newUser(t, db, models.RoleInstructor)
	student := newUser(t, db, models.RoleStudent)
	other := newUser(t, db, models.RoleStudent)

	paid := paidOrder(t, db, student.ID, "", newCourse(t, db, instructor.ID, "10"))
	_, err := CreateOrder(db, student.ID, []uint{newCourse(t, db, instructor.ID, "10").ID}, "")
	require.NoError(t, err)
	paidOrder(t, db, other.ID, "", newCourse(t, db, instructor.ID, "10"))

	orders, total, err := ListOrders(db, OrderFilter{UserID: student.ID}, utils.Paginate(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, orders, 2)

	orders, total, err = ListOrders(db, OrderFilter{Status: commerce.OrderPaid}, utils.Paginate(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	for _, o := range orders {
		assert.NotEmpty(t, o.Items)
	}

	got, err := GetOrder(db, student.ID, paid.ID)
	require.NoError(t, err)
	assert.Equal(t, paid.OrderCode, got.OrderCode)

	_, err = GetOrder(db, other.ID, paid.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = GetOrder(db, 0, paid.ID)
	assert.NoError(t, err)
}
