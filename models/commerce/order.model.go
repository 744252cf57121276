package commerce

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Order statuses
const (
	OrderPending   = "PENDING"
	OrderPaid      = "PAID"
	OrderFailed    = "FAILED"
	OrderCancelled = "CANCELLED"
	OrderExpired   = "EXPIRED"
	OrderRefunded  = "REFUNDED"
)

// Payment gateways
const (
	GatewayStripe = "STRIPE"
	GatewayFree   = "FREE"
)

// Order is a purchase of one or more courses
type Order struct {
	gorm.Model
	OrderCode       string          `json:"order_code" gorm:"size:64;uniqueIndex;not null"`
	UserID          uint            `json:"user_id" gorm:"index;not null"`
	Status          string          `json:"status" gorm:"type:varchar(20);default:'PENDING';index"`
	Subtotal        decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2);not null;default:0"`
	DiscountAmount  decimal.Decimal `json:"discount_amount" gorm:"type:decimal(12,2);not null;default:0"`
	Total           decimal.Decimal `json:"total" gorm:"type:decimal(12,2);not null;default:0"`
	Currency        string          `json:"currency" gorm:"type:varchar(10)"`
	VoucherID       *uint           `json:"voucher_id"`
	VoucherCode     string          `json:"voucher_code" gorm:"type:varchar(64)"`
	PaymentGateway  string          `json:"payment_gateway" gorm:"type:varchar(20)"`
	CheckoutSession string          `json:"checkout_session" gorm:"type:varchar(255);index"`
	CheckoutURL     string          `json:"checkout_url" gorm:"type:text"`
	PaymentIntentID string          `json:"payment_intent_id" gorm:"type:varchar(255)"`
	PaymentRaw      datatypes.JSON  `json:"-"`
	FailureReason   string          `json:"failure_reason" gorm:"type:text"`
	PaidAt          *time.Time      `json:"paid_at"`
	RefundedAt      *time.Time      `json:"refunded_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// OrderItem snapshots a course at purchase time
type OrderItem struct {
	gorm.Model
	OrderID        uint            `json:"order_id" gorm:"index;not null"`
	CourseID       uint            `json:"course_id" gorm:"index;not null"`
	InstructorID   uint            `json:"instructor_id" gorm:"index;not null"`
	CourseTitle    string          `json:"course_title"`
	Price          decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	DiscountAmount decimal.Decimal `json:"discount_amount" gorm:"type:decimal(12,2);not null;default:0"`
	FinalPrice     decimal.Decimal `json:"final_price" gorm:"type:decimal(12,2);not null"`
}
