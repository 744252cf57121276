package services

import (
	"time"

	"edumarket/models/commerce"
	"edumarket/utils"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// VoucherInput carries the editable fields of a voucher.
type VoucherInput struct {
	Code           string
	Description    string
	Type           string
	Value          decimal.Decimal
	MaxDiscount    decimal.Decimal
	MinOrderAmount decimal.Decimal
	UsageLimit     int
	PerUserLimit   *int
	StartsAt       *time.Time
	EndsAt         *time.Time
	IsActive       *bool
}

func applyVoucherInput(v *commerce.Voucher, in VoucherInput) error {
	v.Code = NormalizeVoucherCode(in.Code)
	v.Description = in.Description
	v.Type = in.Type
	v.Value = in.Value.Round(2)
	v.MaxDiscount = in.MaxDiscount.Round(2)
	v.MinOrderAmount = in.MinOrderAmount.Round(2)
	v.UsageLimit = in.UsageLimit
	v.StartsAt, v.EndsAt = in.StartsAt, in.EndsAt
	if in.PerUserLimit != nil {
		v.PerUserLimit = *in.PerUserLimit
	}
	if in.IsActive != nil {
		v.IsActive = *in.IsActive
	}

	switch {
	case v.Code == "":
		return invalidInput("Code is required!")
	case v.Type != commerce.VoucherPercent && v.Type != commerce.VoucherFixed:
		return invalidInput("Type must be PERCENT or FIXED!")
	case !v.Value.IsPositive():
		return invalidInput("Value must be greater than 0!")
	case v.Type == commerce.VoucherPercent && v.Value.GreaterThan(hundred):
		return invalidInput("Percent value must not exceed 100!")
	case v.MaxDiscount.IsNegative(), v.MinOrderAmount.IsNegative():
		return invalidInput("Amounts must not be negative!")
	case v.UsageLimit < 0, v.PerUserLimit < 0:
		return invalidInput("Limits must not be negative!")
	case v.StartsAt != nil && v.EndsAt != nil && !v.EndsAt.After(*v.StartsAt):
		return invalidInput("End date must be after start date!")
	}
	return nil
}

func voucherCodeTaken(db *gorm.DB, code string, excludeID uint) error {
	var n int64
	if err := db.Unscoped().Model(&commerce.Voucher{}).Where("code = ? AND id <> ?", code, excludeID).Count(&n).Error; err != nil {
		return errors.Wrap(err, "check voucher code")
	}
	if n > 0 {
		return conflict("Voucher code already exists!")
	}
	return nil
}

// CreateVoucher stores a new voucher.
func CreateVoucher(db *gorm.DB, adminID uint, in VoucherInput) (*commerce.Voucher, error) {
	v := commerce.Voucher{PerUserLimit: 1, IsActive: true, CreatedBy: adminID}
	if err := applyVoucherInput(&v, in); err != nil {
		return nil, err
	}
	if err := voucherCodeTaken(db, v.Code, 0); err != nil {
		return nil, err
	}
	if err := db.Create(&v).Error; err != nil {
		return nil, errors.Wrap(err, "create voucher")
	}
	return &v, nil
}

// UpdateVoucher replaces the editable fields of a voucher. UsedCount is preserved.
func UpdateVoucher(db *gorm.DB, id uint, in VoucherInput) (*commerce.Voucher, error) {
	v, err := GetVoucher(db, id)
	if err != nil {
		return nil, err
	}
	if err := applyVoucherInput(v, in); err != nil {
		return nil, err
	}
	if err := voucherCodeTaken(db, v.Code, v.ID); err != nil {
		return nil, err
	}
	if err := db.Model(v).Select(
		"code", "description", "type", "value", "max_discount", "min_order_amount",
		"usage_limit", "per_user_limit", "starts_at", "ends_at", "is_active",
	).Updates(v).Error; err != nil {
		return nil, errors.Wrap(err, "update voucher")
	}
	return v, nil
}

// GetVoucher loads a voucher by id.
func GetVoucher(db *gorm.DB, id uint) (*commerce.Voucher, error) {
	var v commerce.Voucher
	if err := db.Where("id = ?", id).First(&v).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Voucher not found!")
		}
		return nil, errors.Wrap(err, "load voucher")
	}
	return &v, nil
}

// DeleteVoucher removes an unused voucher and deactivates one that orders reference.
func DeleteVoucher(db *gorm.DB, id uint) (deactivated bool, err error) {
	v, err := GetVoucher(db, id)
	if err != nil {
		return false, err
	}
	var referenced int64
	if err := db.Model(&commerce.Order{}).Where("voucher_id = ?", v.ID).Count(&referenced).Error; err != nil {
		return false, errors.Wrap(err, "count voucher orders")
	}
	if referenced > 0 || v.UsedCount > 0 {
		return true, errors.Wrap(db.Model(v).Update("is_active", false).Error, "deactivate voucher")
	}
	return false, errors.Wrap(db.Unscoped().Delete(v).Error, "delete voucher")
}

// ListVouchers returns one page of vouchers, optionally filtered by active flag and code.
func ListVouchers(db *gorm.DB, active *bool, search string, p utils.Pagination) ([]commerce.Voucher, int64, error) {
	q := db.Model(&commerce.Voucher{})
	if active != nil {
		q = q.Where("is_active = ?", *active)
	}
	if code := NormalizeVoucherCode(search); code != "" {
		q = q.Where("code LIKE ?", "%"+code+"%")
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count vouchers")
	}
	var vouchers []commerce.Voucher
	if err := q.Order("id DESC").Offset(p.Offset).Limit(p.Limit).Find(&vouchers).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list vouchers")
	}
	return vouchers, total, nil
}
