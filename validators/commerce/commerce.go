package commerceValidator

import (
	"time"

	"edumarket/middleware"
	"edumarket/models/commerce"
	"edumarket/validators/shared"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type AddCartRequest struct {
	CourseID uint `json:"course_id" validate:"required"`
}

type CartSummaryQuery struct {
	Voucher string `query:"voucher" validate:"max=64"`
}

// CheckoutRequest buys CourseIDs, or the whole cart when it is empty.
type CheckoutRequest struct {
	CourseIDs   []uint `json:"course_ids" validate:"omitempty,max=50,dive,required"`
	VoucherCode string `json:"voucher_code" validate:"max=64"`
}

type OrderListQuery struct {
	Page   int    `query:"page" validate:"omitempty,min=1"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Status string `query:"status" validate:"omitempty,oneof=PENDING PAID FAILED CANCELLED EXPIRED REFUNDED"`
}

type AdminOrderListQuery struct {
	Page   int    `query:"page" validate:"omitempty,min=1"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Status string `query:"status" validate:"omitempty,oneof=PENDING PAID FAILED CANCELLED EXPIRED REFUNDED"`
	UserID uint   `query:"user_id"`
	From   string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To     string `query:"to" validate:"omitempty,datetime=2006-01-02"`
}

// Range returns the parsed date bounds. To is exclusive and covers the whole day.
func (q *AdminOrderListQuery) Range() (from, to *time.Time) {
	if t, err := time.ParseInLocation(dateLayout, q.From, time.Local); err == nil {
		from = &t
	}
	if t, err := time.ParseInLocation(dateLayout, q.To, time.Local); err == nil {
		t = t.AddDate(0, 0, 1)
		to = &t
	}
	return from, to
}

type RefundRequest struct {
	Reason string `json:"reason" validate:"required,notblank,max=1000"`
}

type ConfirmQuery struct {
	SessionID string `query:"session_id" validate:"required,max=255"`
}

type VoucherRequest struct {
	Code           string          `json:"code" validate:"required,notblank,min=3,max=64"`
	Description    string          `json:"description" validate:"max=500"`
	Type           string          `json:"type" validate:"required,oneof=PERCENT FIXED"`
	Value          decimal.Decimal `json:"value" validate:"gt=0"`
	MaxDiscount    decimal.Decimal `json:"max_discount" validate:"gte=0"`
	MinOrderAmount decimal.Decimal `json:"min_order_amount" validate:"gte=0"`
	UsageLimit     int             `json:"usage_limit" validate:"gte=0"`
	PerUserLimit   *int            `json:"per_user_limit" validate:"omitempty,gte=0"`
	StartsAt       *time.Time      `json:"starts_at"`
	EndsAt         *time.Time      `json:"ends_at"`
	IsActive       *bool           `json:"is_active"`
}

type VoucherListQuery struct {
	Page   int    `query:"page" validate:"omitempty,min=1"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Search string `query:"search" validate:"max=64"`
	Active string `query:"active" validate:"omitempty,oneof=true false"`
}

// ActiveFilter returns nil when no active filter was sent.
func (q *VoucherListQuery) ActiveFilter() *bool {
	if q.Active == "" {
		return nil
	}
	active := q.Active == "true"
	return &active
}

func AddCart() fiber.Handler {
	return shared.Body("validatedAddCart", func() interface{} { return new(AddCartRequest) })
}

func CartSummary() fiber.Handler {
	return shared.Query("validatedCartSummary", func() interface{} { return new(CartSummaryQuery) })
}

func Checkout() fiber.Handler {
	return shared.Body("validatedCheckout", func() interface{} { return new(CheckoutRequest) })
}

func OrderList() fiber.Handler {
	return shared.Query("validatedOrderList", func() interface{} { return new(OrderListQuery) })
}

func AdminOrderList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(AdminOrderListQuery)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		errors := shared.Struct(reqData)
		if errors == nil {
			errors = make(map[string]string)
		}
		if from, to := reqData.Range(); from != nil && to != nil && !from.Before(*to) {
			errors["to"] = "to must not be before from"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedAdminOrderList", reqData)
		return c.Next()
	}
}

func Refund() fiber.Handler {
	return shared.Body("validatedRefund", func() interface{} { return new(RefundRequest) })
}

func Confirm() fiber.Handler {
	return shared.Query("validatedConfirm", func() interface{} { return new(ConfirmQuery) })
}

// Voucher validates create and update bodies.
func Voucher() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(VoucherRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := shared.Struct(reqData)
		if errors == nil {
			errors = make(map[string]string)
		}
		if reqData.Type == commerce.VoucherPercent && reqData.Value.GreaterThan(decimal.NewFromInt(100)) {
			errors["value"] = "A percentage voucher cannot exceed 100!"
		}
		if reqData.StartsAt != nil && reqData.EndsAt != nil && !reqData.StartsAt.Before(*reqData.EndsAt) {
			errors["ends_at"] = "ends_at must be after starts_at"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedVoucher", reqData)
		return c.Next()
	}
}

func VoucherList() fiber.Handler {
	return shared.Query("validatedVoucherList", func() interface{} { return new(VoucherListQuery) })
}
