package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"edumarket/config"
	"edumarket/database"
	"edumarket/models"
	"edumarket/models/commerce"
	"edumarket/models/course"
	"edumarket/utils"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PaymentGateway is the subset of the card processor API used for checkout.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req utils.CheckoutRequest) (*utils.CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*utils.CheckoutSession, error)
	CreateRefund(ctx context.Context, paymentIntentID string, amountMinor int64) error
}

// PaymentInfo describes a captured payment reported by a gateway.
type PaymentInfo struct {
	Gateway         string
	SessionID       string
	PaymentIntentID string
	Raw             []byte
}

// SettlementResult is the outcome of ProcessPaymentSuccess.
type SettlementResult struct {
	Order          *commerce.Order
	AlreadyPaid    bool
	NewEnrollments []uint // course IDs
	Renewed        []uint // course IDs
}

func instructorPercent() decimal.Decimal {
	if config.AppConfig == nil {
		return decimal.NewFromInt(70)
	}
	return config.AppConfig.InstructorRevenuePercent
}

func currency() string {
	if config.AppConfig == nil || config.AppConfig.StripeCurrency == "" {
		return "usd"
	}
	return strings.ToLower(config.AppConfig.StripeCurrency)
}

// NewOrderCode returns a unique, human-friendly order reference.
func NewOrderCode(now time.Time) string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "ORD-" + now.Format("20060102") + "-" + id[:10]
}

// CreateOrder builds a PENDING order for courseIDs, applying voucherCode when given.
func CreateOrder(db *gorm.DB, userID uint, courseIDs []uint, voucherCode string) (*commerce.Order, error) {
	ids := uniqueIDs(courseIDs)
	if len(ids) == 0 {
		return nil, invalidInput("No courses to checkout!")
	}
	now := time.Now()

	var courses []course.Course
	if err := db.Where("id IN ? AND is_deleted = ?", ids, false).Find(&courses).Error; err != nil {
		return nil, errors.Wrap(err, "load courses")
	}
	if len(courses) != len(ids) {
		return nil, notFound("Some courses were not found!")
	}
	byID := make(map[uint]course.Course, len(courses))
	for _, c := range courses {
		byID[c.ID] = c
	}

	prices := make([]decimal.Decimal, 0, len(ids))
	subtotal := decimal.Zero
	for _, id := range ids {
		c := byID[id]
		if !c.IsPurchasable() {
			return nil, invalidState(fmt.Sprintf("Course %q is not available for purchase!", c.Title))
		}
		if c.InstructorID == userID {
			return nil, forbidden("You cannot buy your own course!")
		}
		if _, ok, err := ActiveEnrollment(db, userID, c.ID, now); err != nil {
			return nil, err
		} else if ok {
			return nil, conflict(fmt.Sprintf("You already own %q!", c.Title))
		}
		p := c.EffectivePrice()
		prices = append(prices, p)
		subtotal = subtotal.Add(p)
	}

	order := commerce.Order{
		OrderCode:      NewOrderCode(now),
		UserID:         userID,
		Status:         commerce.OrderPending,
		Subtotal:       subtotal,
		DiscountAmount: decimal.Zero,
		Total:          subtotal,
		Currency:       currency(),
	}

	if strings.TrimSpace(voucherCode) != "" {
		v, discount, err := ValidateVoucher(db, voucherCode, userID, subtotal, now)
		if err != nil {
			return nil, err
		}
		order.VoucherID = &v.ID
		order.VoucherCode = v.Code
		order.DiscountAmount = discount
		order.Total = subtotal.Sub(discount)
	}

	shares := AllocateDiscount(prices, order.DiscountAmount)
	for i, id := range ids {
		c := byID[id]
		order.Items = append(order.Items, commerce.OrderItem{
			CourseID:       c.ID,
			InstructorID:   c.InstructorID,
			CourseTitle:    c.Title,
			Price:          prices[i],
			DiscountAmount: shares[i],
			FinalPrice:     prices[i].Sub(shares[i]),
		})
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return errors.Wrap(err, "create order")
		}
		return errors.Wrap(removeFromCart(tx, userID, ids), "clear ordered cart items")
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[PAYMENT] Order %s created for user %d: subtotal=%s discount=%s total=%s",
		order.OrderCode, userID, order.Subtotal.StringFixed(2), order.DiscountAmount.StringFixed(2), order.Total.StringFixed(2))
	return &order, nil
}

// StartCheckout opens a hosted checkout session for a pending order.
func StartCheckout(ctx context.Context, db *gorm.DB, gw PaymentGateway, order *commerce.Order, customerEmail, successURL, cancelURL string) error {
	if order.Status != commerce.OrderPending {
		return invalidState("Order is not awaiting payment!")
	}

	req := utils.CheckoutRequest{
		OrderID:       order.ID,
		OrderCode:     order.OrderCode,
		CustomerEmail: customerEmail,
		Currency:      order.Currency,
		SuccessURL:    successURL,
		CancelURL:     cancelURL,
	}
	for _, item := range order.Items {
		minor := utils.ToMinorUnits(item.FinalPrice, order.Currency)
		if minor <= 0 {
			continue
		}
		req.Items = append(req.Items, utils.CheckoutLineItem{
			Name:        item.CourseTitle,
			AmountMinor: minor,
			Quantity:    1,
		})
	}

	session, err := gw.CreateCheckoutSession(ctx, req)
	if err != nil {
		log.Printf("[PAYMENT] Failed to create checkout session for %s: %v", order.OrderCode, err)
		return errors.Wrap(ErrGateway, err.Error())
	}

	order.PaymentGateway = commerce.GatewayStripe
	order.CheckoutSession = session.ID
	order.CheckoutURL = session.URL
	return errors.Wrap(db.Model(order).Updates(map[string]interface{}{
		"payment_gateway":  order.PaymentGateway,
		"checkout_session": order.CheckoutSession,
		"checkout_url":     order.CheckoutURL,
	}).Error, "save checkout session")
}

// ProcessPaymentSuccess settles a paid order: enrollments, progress rows, revenue shares and voucher usage.
// Settling an order that is already PAID is a no-op.
func ProcessPaymentSuccess(db *gorm.DB, orderID uint, info PaymentInfo) (*SettlementResult, error) {
	now := time.Now()
	percent := instructorPercent()
	result := &SettlementResult{}

	err := db.Transaction(func(tx *gorm.DB) error {
		var order commerce.Order
		if err := database.ForUpdate(tx).Preload("Items").Where("id = ?", orderID).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("Order not found!")
			}
			return errors.Wrap(err, "load order")
		}
		result.Order = &order

		switch order.Status {
		case commerce.OrderPaid:
			result.AlreadyPaid = true
			return nil
		case commerce.OrderRefunded:
			return invalidState("Order has been refunded!")
		case commerce.OrderPending:
		default:
			log.Printf("[PAYMENT] Late payment for order %s in status %s, settling anyway", order.OrderCode, order.Status)
		}

		order.Status = commerce.OrderPaid
		order.PaidAt = &now
		order.FailureReason = ""
		if info.Gateway != "" {
			order.PaymentGateway = info.Gateway
		}
		if info.SessionID != "" {
			order.CheckoutSession = info.SessionID
		}
		if info.PaymentIntentID != "" {
			order.PaymentIntentID = info.PaymentIntentID
		}
		if len(info.Raw) > 0 && json.Valid(info.Raw) {
			order.PaymentRaw = datatypes.JSON(info.Raw)
		}
		if err := tx.Omit("Items").Save(&order).Error; err != nil {
			return errors.Wrap(err, "mark order paid")
		}

		courseIDs := make([]uint, 0, len(order.Items))
		for i := range order.Items {
			item := &order.Items[i]
			courseIDs = append(courseIDs, item.CourseID)

			var c course.Course
			if err := tx.Where("id = ?", item.CourseID).First(&c).Error; err != nil {
				return errors.Wrapf(err, "load course %d", item.CourseID)
			}

			_, joined, err := grantEnrollment(tx, order.UserID, &c, order.ID, now)
			if err != nil {
				return err
			}
			if joined {
				result.NewEnrollments = append(result.NewEnrollments, c.ID)
				if err := tx.Model(&course.Course{}).Where("id = ?", c.ID).
					UpdateColumn("student_count", gorm.Expr("student_count + ?", 1)).Error; err != nil {
					return errors.Wrap(err, "increment student count")
				}
			} else {
				result.Renewed = append(result.Renewed, c.ID)
			}

			if err := recordRevenueShare(tx, &order, item, percent); err != nil {
				return err
			}
		}

		if order.VoucherID != nil {
			if err := tx.Model(&commerce.Voucher{}).Where("id = ?", *order.VoucherID).
				UpdateColumn("used_count", gorm.Expr("used_count + ?", 1)).Error; err != nil {
				return errors.Wrap(err, "increment voucher usage")
			}
		}

		return errors.Wrap(removeFromCart(tx, order.UserID, courseIDs), "clear purchased cart items")
	})
	if err != nil {
		return nil, err
	}

	if !result.AlreadyPaid {
		log.Printf("[PAYMENT] Order %s settled: %d new enrollments, %d renewals",
			result.Order.OrderCode, len(result.NewEnrollments), len(result.Renewed))
		notifyPurchase(db, result.Order)
	}
	return result, nil
}

// recordRevenueShare splits one item's revenue and credits the instructor's earnings.
func recordRevenueShare(tx *gorm.DB, order *commerce.Order, item *commerce.OrderItem, percent decimal.Decimal) error {
	gross := item.FinalPrice
	instructorAmount := gross.Mul(percent).Div(hundred).Round(2)
	share := commerce.RevenueShare{
		OrderID:           order.ID,
		OrderItemID:       item.ID,
		CourseID:          item.CourseID,
		InstructorID:      item.InstructorID,
		GrossAmount:       gross,
		InstructorPercent: percent,
		InstructorAmount:  instructorAmount,
		PlatformAmount:    gross.Sub(instructorAmount),
	}
	if err := tx.Create(&share).Error; err != nil {
		return errors.Wrap(err, "create revenue share")
	}
	if !instructorAmount.IsPositive() {
		return nil
	}

	_, err := applyLedgerEntry(tx, LedgerEntry{
		UserID:        item.InstructorID,
		Type:          models.TransactionTypeSaleEarning,
		Amount:        instructorAmount,
		Description:   "Sale of " + item.CourseTitle + " (" + order.OrderCode + ")",
		ReferenceType: "order",
		ReferenceID:   order.ID,
		ReferenceName: item.CourseTitle,
	})
	return err
}

func notifyPurchase(db *gorm.DB, order *commerce.Order) {
	titles := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		titles = append(titles, item.CourseTitle)
		notifyQuietly(db, item.InstructorID, NotificationInput{
			Type:    models.NotifyCourseSold,
			Title:   "New student",
			Message: "Someone just bought \"" + item.CourseTitle + "\".",
			Link:    "/instructor/courses/" + strconv.FormatUint(uint64(item.CourseID), 10),
			Metadata: map[string]interface{}{
				"order_id":  order.ID,
				"course_id": item.CourseID,
			},
		})
	}

	notifyQuietly(db, order.UserID, NotificationInput{
		Type:     models.NotifyCoursePurchased,
		Title:    "Payment successful",
		Message:  "You are now enrolled in: " + strings.Join(titles, ", "),
		Link:     "/my-courses",
		Metadata: map[string]interface{}{"order_id": order.ID, "order_code": order.OrderCode},
	})
	mail.Purchase(db, order.UserID, order.OrderCode, titles, order.Total)
}

// ProcessPaymentFailure marks a pending order as FAILED. Other statuses are left untouched.
func ProcessPaymentFailure(db *gorm.DB, orderID uint, reason string) (*commerce.Order, error) {
	var order commerce.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := database.ForUpdate(tx).Where("id = ?", orderID).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("Order not found!")
			}
			return errors.Wrap(err, "load order")
		}
		if order.Status != commerce.OrderPending {
			return nil
		}
		order.Status = commerce.OrderFailed
		order.FailureReason = reason
		return errors.Wrap(tx.Model(&order).Updates(map[string]interface{}{
			"status":         order.Status,
			"failure_reason": reason,
		}).Error, "mark order failed")
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CancelOrder cancels a pending order owned by userID.
func CancelOrder(db *gorm.DB, userID, orderID uint) (*commerce.Order, error) {
	var order commerce.Order
	if err := db.Where("id = ? AND user_id = ?", orderID, userID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Order not found!")
		}
		return nil, errors.Wrap(err, "load order")
	}
	if order.Status != commerce.OrderPending {
		return nil, invalidState("Only pending orders can be cancelled!")
	}
	res := db.Model(&commerce.Order{}).
		Where("id = ? AND status = ?", order.ID, commerce.OrderPending).
		Update("status", commerce.OrderCancelled)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "cancel order")
	}
	if res.RowsAffected == 0 {
		return nil, invalidState("Order status changed, please refresh!")
	}
	order.Status = commerce.OrderCancelled
	return &order, nil
}

// ExpireStaleOrders marks pending orders created before cutoff as EXPIRED.
func ExpireStaleOrders(db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.Model(&commerce.Order{}).
		Where("status = ? AND created_at < ?", commerce.OrderPending, cutoff).
		Updates(map[string]interface{}{"status": commerce.OrderExpired, "failure_reason": "checkout expired"})
	return res.RowsAffected, res.Error
}

// ConfirmCheckoutSession settles the order behind sessionID when the gateway reports it paid.
func ConfirmCheckoutSession(ctx context.Context, db *gorm.DB, gw PaymentGateway, sessionID string) (*SettlementResult, error) {
	session, err := gw.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, errors.Wrap(ErrGateway, err.Error())
	}

	order, err := orderForSession(db, session)
	if err != nil {
		return nil, err
	}
	if session.PaymentStatus != "paid" {
		return &SettlementResult{Order: order}, invalidState("Payment has not been completed yet!")
	}

	raw, _ := json.Marshal(session)
	return ProcessPaymentSuccess(db, order.ID, PaymentInfo{
		Gateway:         commerce.GatewayStripe,
		SessionID:       session.ID,
		PaymentIntentID: session.PaymentIntent,
		Raw:             raw,
	})
}

// HandleStripeEvent applies a verified webhook event. Unknown events are ignored.
func HandleStripeEvent(db *gorm.DB, event *utils.StripeEvent) error {
	switch event.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		session, err := event.CheckoutSession()
		if err != nil {
			return invalidInput("Malformed checkout session payload!")
		}
		if session.PaymentStatus != "paid" {
			log.Printf("[PAYMENT] Session %s completed with payment_status=%s, waiting", session.ID, session.PaymentStatus)
			return nil
		}
		order, err := orderForSession(db, session)
		if err != nil {
			return err
		}
		_, err = ProcessPaymentSuccess(db, order.ID, PaymentInfo{
			Gateway:         commerce.GatewayStripe,
			SessionID:       session.ID,
			PaymentIntentID: session.PaymentIntent,
			Raw:             event.Data.Object,
		})
		return err

	case "checkout.session.expired", "checkout.session.async_payment_failed":
		session, err := event.CheckoutSession()
		if err != nil {
			return invalidInput("Malformed checkout session payload!")
		}
		order, err := orderForSession(db, session)
		if err != nil {
			return err
		}
		_, err = ProcessPaymentFailure(db, order.ID, event.Type)
		return err

	default:
		log.Printf("[PAYMENT] Ignoring webhook event %s (%s)", event.ID, event.Type)
		return nil
	}
}

func orderForSession(db *gorm.DB, session *utils.CheckoutSession) (*commerce.Order, error) {
	var order commerce.Order
	q := db.Where("checkout_session = ?", session.ID)
	if session.ClientReferenceID != "" {
		q = db.Where("checkout_session = ? OR order_code = ?", session.ID, session.ClientReferenceID)
	}
	if err := q.First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Order not found for checkout session!")
		}
		return nil, errors.Wrap(err, "load order by session")
	}
	return &order, nil
}

// RefundOrder refunds a paid order, revokes the access it granted and reverses instructor earnings.
func RefundOrder(ctx context.Context, db *gorm.DB, gw PaymentGateway, orderID, adminID uint, reason string) (*commerce.Order, error) {
	now := time.Now()
	var order commerce.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := database.ForUpdate(tx).Preload("Items").Where("id = ?", orderID).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("Order not found!")
			}
			return errors.Wrap(err, "load order")
		}
		if order.Status != commerce.OrderPaid {
			return invalidState("Only paid orders can be refunded!")
		}

		viaGateway := order.PaymentGateway == commerce.GatewayStripe && order.PaymentIntentID != "" && order.Total.IsPositive()
		if viaGateway && gw == nil {
			return errors.Wrap(ErrGateway, "no payment gateway configured")
		}

		res := tx.Model(&commerce.Order{}).
			Where("id = ? AND status = ?", order.ID, commerce.OrderPaid).
			Updates(map[string]interface{}{
				"status":         commerce.OrderRefunded,
				"refunded_at":    now,
				"failure_reason": reason,
			})
		if res.Error != nil {
			return errors.Wrap(res.Error, "mark order refunded")
		}
		if res.RowsAffected == 0 {
			return invalidState("Order status changed, please refresh!")
		}

		if err := reverseOrder(tx, &order, adminID, reason); err != nil {
			return err
		}

		// the gateway call is the last step, a refusal rolls back everything above
		if viaGateway {
			if err := gw.CreateRefund(ctx, order.PaymentIntentID, utils.ToMinorUnits(order.Total, order.Currency)); err != nil {
				log.Printf("[PAYMENT] Refund of %s failed at gateway: %v", order.OrderCode, err)
				return errors.Wrap(ErrGateway, err.Error())
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order.Status = commerce.OrderRefunded
	order.RefundedAt = &now
	order.FailureReason = reason
	notifyQuietly(db, order.UserID, NotificationInput{
		Type:     models.NotifyOrderRefunded,
		Title:    "Order refunded",
		Message:  "Order " + order.OrderCode + " has been refunded.",
		Link:     "/orders/" + strconv.FormatUint(uint64(order.ID), 10),
		Metadata: map[string]interface{}{"order_id": order.ID},
	})
	mail.Refund(db, order.UserID, order.OrderCode, order.Total)
	return &order, nil
}

// reverseOrder revokes the enrollments still tied to order and reverses its revenue shares.
// An enrollment renewed by a later order belongs to that order and is left alone.
func reverseOrder(tx *gorm.DB, order *commerce.Order, adminID uint, reason string) error {
	var revoked []course.Enrollment
	if err := tx.Where("order_id = ? AND user_id = ? AND status <> ?", order.ID, order.UserID, course.EnrollmentRevoked).
		Find(&revoked).Error; err != nil {
		return errors.Wrap(err, "list order enrollments")
	}
	for _, e := range revoked {
		if err := tx.Model(&course.Enrollment{}).Where("id = ?", e.ID).Update("status", course.EnrollmentRevoked).Error; err != nil {
			return errors.Wrap(err, "revoke enrollment")
		}
		if err := tx.Model(&course.Course{}).Where("id = ? AND student_count > 0", e.CourseID).
			UpdateColumn("student_count", gorm.Expr("student_count - ?", 1)).Error; err != nil {
			return errors.Wrap(err, "decrement student count")
		}
	}

	var shares []commerce.RevenueShare
	if err := tx.Where("order_id = ? AND is_reversed = ?", order.ID, false).Find(&shares).Error; err != nil {
		return errors.Wrap(err, "list revenue shares")
	}
	for _, s := range shares {
		if s.InstructorAmount.IsPositive() {
			if _, err := applyLedgerEntry(tx, LedgerEntry{
				UserID:        s.InstructorID,
				Type:          models.TransactionTypeSaleReversal,
				Amount:        s.InstructorAmount.Neg(),
				Description:   "Refund of order " + order.OrderCode,
				ReferenceType: "order",
				ReferenceID:   order.ID,
				AdminID:       adminID,
				Reason:        reason,
				AllowNegative: true,
			}); err != nil {
				return err
			}
		}
		if err := tx.Model(&commerce.RevenueShare{}).Where("id = ?", s.ID).Update("is_reversed", true).Error; err != nil {
			return errors.Wrap(err, "reverse revenue share")
		}
	}
	return nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// OrderFilter narrows order listings. Zero values mean no filter.
type OrderFilter struct {
	UserID uint
	Status string
	From   *time.Time
	To     *time.Time
}

// ListOrders returns one page of orders with their items, newest first.
func ListOrders(db *gorm.DB, f OrderFilter, p utils.Pagination) ([]commerce.Order, int64, error) {
	q := db.Model(&commerce.Order{})
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count orders")
	}
	var orders []commerce.Order
	if err := q.Preload("Items").Order("id DESC").Offset(p.Offset).Limit(p.Limit).Find(&orders).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list orders")
	}
	return orders, total, nil
}

// GetOrder loads an order with its items. userID 0 skips the ownership check.
func GetOrder(db *gorm.DB, userID, orderID uint) (*commerce.Order, error) {
	q := db.Preload("Items").Where("id = ?", orderID)
	if userID != 0 {
		q = q.Where("user_id = ?", userID)
	}
	var order commerce.Order
	if err := q.First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Order not found!")
		}
		return nil, errors.Wrap(err, "load order")
	}
	return &order, nil
}
