package services

import (
	"strings"
	"time"

	"edumarket/models/commerce"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

// ComputeDiscount returns the discount a voucher grants on subtotal.
func ComputeDiscount(v *commerce.Voucher, subtotal decimal.Decimal) decimal.Decimal {
	if v == nil || !subtotal.IsPositive() {
		return decimal.Zero
	}

	var discount decimal.Decimal
	switch v.Type {
	case commerce.VoucherPercent:
		discount = subtotal.Mul(v.Value).Div(hundred)
		if v.MaxDiscount.IsPositive() && discount.GreaterThan(v.MaxDiscount) {
			discount = v.MaxDiscount
		}
	case commerce.VoucherFixed:
		discount = v.Value
	default:
		return decimal.Zero
	}

	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	return discount.Round(2)
}

// AllocateDiscount splits discount across prices in proportion to each price.
// The last priced item absorbs the rounding remainder so the shares sum to discount.
func AllocateDiscount(prices []decimal.Decimal, discount decimal.Decimal) []decimal.Decimal {
	shares := make([]decimal.Decimal, len(prices))
	for i := range shares {
		shares[i] = decimal.Zero
	}

	total := decimal.Zero
	last := -1
	for i, p := range prices {
		if p.IsPositive() {
			total = total.Add(p)
			last = i
		}
	}
	if !discount.IsPositive() || !total.IsPositive() {
		return shares
	}
	if discount.GreaterThan(total) {
		discount = total
	}

	remaining := discount
	for i, p := range prices {
		if !p.IsPositive() {
			continue
		}
		share := remaining
		if i != last {
			share = discount.Mul(p).Div(total).Round(2)
		}
		if share.GreaterThan(p) {
			share = p
		}
		if share.GreaterThan(remaining) {
			share = remaining
		}
		shares[i] = share
		remaining = remaining.Sub(share)
	}
	return shares
}

// NormalizeVoucherCode upper-cases and trims a voucher code.
func NormalizeVoucherCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidateVoucher checks that code can be applied by userID to subtotal and returns the discount.
func ValidateVoucher(db *gorm.DB, code string, userID uint, subtotal decimal.Decimal, now time.Time) (*commerce.Voucher, decimal.Decimal, error) {
	var v commerce.Voucher
	if err := db.Where("code = ?", NormalizeVoucherCode(code)).First(&v).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, decimal.Zero, voucherInvalid("Voucher not found!")
		}
		return nil, decimal.Zero, errors.Wrap(err, "load voucher")
	}

	if !v.IsActive {
		return nil, decimal.Zero, voucherInvalid("Voucher is not active!")
	}
	if v.StartsAt != nil && now.Before(*v.StartsAt) {
		return nil, decimal.Zero, voucherInvalid("Voucher is not valid yet!")
	}
	if v.EndsAt != nil && now.After(*v.EndsAt) {
		return nil, decimal.Zero, voucherInvalid("Voucher has expired!")
	}
	if v.UsageLimit > 0 && v.UsedCount >= v.UsageLimit {
		return nil, decimal.Zero, voucherInvalid("Voucher usage limit reached!")
	}
	if v.PerUserLimit > 0 {
		var used int64
		if err := db.Model(&commerce.Order{}).
			Where("user_id = ? AND voucher_id = ? AND status = ?", userID, v.ID, commerce.OrderPaid).
			Count(&used).Error; err != nil {
			return nil, decimal.Zero, errors.Wrap(err, "count voucher usage")
		}
		if used >= int64(v.PerUserLimit) {
			return nil, decimal.Zero, voucherInvalid("You have already used this voucher!")
		}
	}
	if subtotal.LessThan(v.MinOrderAmount) {
		return nil, decimal.Zero, voucherInvalid("Order amount is below the voucher minimum of " + v.MinOrderAmount.StringFixed(2) + "!")
	}

	return &v, ComputeDiscount(&v, subtotal), nil
}
