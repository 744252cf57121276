package commerce

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RevenueShare records how an order item's revenue was split
type RevenueShare struct {
	gorm.Model
	OrderID           uint            `json:"order_id" gorm:"index;not null"`
	OrderItemID       uint            `json:"order_item_id" gorm:"uniqueIndex;not null"`
	CourseID          uint            `json:"course_id" gorm:"index;not null"`
	InstructorID      uint            `json:"instructor_id" gorm:"index;not null"`
	GrossAmount       decimal.Decimal `json:"gross_amount" gorm:"type:decimal(12,2);not null"`
	InstructorPercent decimal.Decimal `json:"instructor_percent" gorm:"type:decimal(5,2);not null"`
	InstructorAmount  decimal.Decimal `json:"instructor_amount" gorm:"type:decimal(12,2);not null"`
	PlatformAmount    decimal.Decimal `json:"platform_amount" gorm:"type:decimal(12,2);not null"`
	IsReversed        bool            `json:"is_reversed" gorm:"default:false"`
}
