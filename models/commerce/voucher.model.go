package commerce

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Voucher types
const (
	VoucherPercent = "PERCENT"
	VoucherFixed   = "FIXED"
)

// Voucher is an order-wide discount code
type Voucher struct {
	gorm.Model
	Code           string          `json:"code" gorm:"size:64;uniqueIndex;not null"`
	Description    string          `json:"description"`
	Type           string          `json:"type" gorm:"type:varchar(10);not null"`
	Value          decimal.Decimal `json:"value" gorm:"type:decimal(12,2);not null"`
	MaxDiscount    decimal.Decimal `json:"max_discount" gorm:"type:decimal(12,2);not null;default:0"` // PERCENT only, 0 = no cap
	MinOrderAmount decimal.Decimal `json:"min_order_amount" gorm:"type:decimal(12,2);not null;default:0"`
	UsageLimit     int             `json:"usage_limit" gorm:"default:0"` // 0 = unlimited
	UsedCount      int             `json:"used_count" gorm:"default:0"`
	PerUserLimit   int             `json:"per_user_limit" gorm:"not null"` // 0 = unlimited
	StartsAt       *time.Time      `json:"starts_at"`
	EndsAt         *time.Time      `json:"ends_at"`
	IsActive       bool            `json:"is_active" gorm:"not null"`
	CreatedBy      uint            `json:"created_by"`
}
