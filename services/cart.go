package services

import (
	"time"

	"edumarket/models/commerce"
	"edumarket/models/course"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartSummary is the priced content of a cart.
type CartSummary struct {
	Items        []commerce.CartItem `json:"items"`
	Subtotal     decimal.Decimal     `json:"subtotal"`
	Discount     decimal.Decimal     `json:"discount"`
	Total        decimal.Decimal     `json:"total"`
	VoucherCode  string              `json:"voucher_code,omitempty"`
	VoucherError string              `json:"voucher_error,omitempty"`
}

// AddToCart puts courseID in the cart of userID.
func AddToCart(db *gorm.DB, userID, courseID uint) (*commerce.CartItem, error) {
	var c course.Course
	if err := db.Where("id = ? AND is_deleted = ?", courseID, false).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Course not found!")
		}
		return nil, errors.Wrap(err, "load course")
	}
	if !c.IsPurchasable() {
		return nil, invalidState("Course is not available for purchase!")
	}
	if c.InstructorID == userID {
		return nil, forbidden("You cannot buy your own course!")
	}
	if _, ok, err := ActiveEnrollment(db, userID, courseID, time.Now()); err != nil {
		return nil, err
	} else if ok {
		return nil, conflict("You already own this course!")
	}

	var existing int64
	if err := db.Model(&commerce.CartItem{}).Where("user_id = ? AND course_id = ?", userID, courseID).Count(&existing).Error; err != nil {
		return nil, errors.Wrap(err, "check cart")
	}
	if existing > 0 {
		return nil, conflict("Course is already in your cart!")
	}

	item := commerce.CartItem{UserID: userID, CourseID: courseID}
	if err := db.Create(&item).Error; err != nil {
		return nil, errors.Wrap(err, "add cart item")
	}
	item.Course = c
	return &item, nil
}

// RemoveFromCart deletes courseID from the cart of userID.
func RemoveFromCart(db *gorm.DB, userID, courseID uint) error {
	res := db.Unscoped().Where("user_id = ? AND course_id = ?", userID, courseID).Delete(&commerce.CartItem{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "remove cart item")
	}
	if res.RowsAffected == 0 {
		return notFound("Course is not in your cart!")
	}
	return nil
}

// ClearCart empties the cart of userID.
func ClearCart(db *gorm.DB, userID uint) error {
	return errors.Wrap(db.Unscoped().Where("user_id = ?", userID).Delete(&commerce.CartItem{}).Error, "clear cart")
}

func removeFromCart(tx *gorm.DB, userID uint, courseIDs []uint) error {
	if len(courseIDs) == 0 {
		return nil
	}
	return tx.Unscoped().Where("user_id = ? AND course_id IN ?", userID, courseIDs).Delete(&commerce.CartItem{}).Error
}

// CartCourseIDs returns the course IDs in the cart of userID.
func CartCourseIDs(db *gorm.DB, userID uint) ([]uint, error) {
	var ids []uint
	err := db.Model(&commerce.CartItem{}).Where("user_id = ?", userID).Order("created_at").Pluck("course_id", &ids).Error
	return ids, err
}

// SummarizeCart prices the cart of userID, previewing voucherCode when given.
// A voucher that cannot be applied is reported in VoucherError rather than failing.
func SummarizeCart(db *gorm.DB, userID uint, voucherCode string) (*CartSummary, error) {
	var items []commerce.CartItem
	if err := db.Preload("Course").Where("user_id = ?", userID).Order("created_at").Find(&items).Error; err != nil {
		return nil, errors.Wrap(err, "load cart")
	}

	summary := &CartSummary{Items: items, Subtotal: decimal.Zero, Discount: decimal.Zero}
	for _, item := range items {
		summary.Subtotal = summary.Subtotal.Add(item.Course.EffectivePrice())
	}
	summary.Total = summary.Subtotal

	code := NormalizeVoucherCode(voucherCode)
	if code == "" || len(items) == 0 {
		return summary, nil
	}
	summary.VoucherCode = code
	_, discount, err := ValidateVoucher(db, code, userID, summary.Subtotal, time.Now())
	if err != nil {
		if !errors.Is(err, ErrVoucherInvalid) {
			return nil, err
		}
		summary.VoucherError = Message(err, "Voucher cannot be applied!")
		return summary, nil
	}
	summary.Discount = discount
	summary.Total = summary.Subtotal.Sub(discount)
	return summary, nil
}

func removeCourseFromCarts(tx *gorm.DB, courseID uint) error {
	return tx.Unscoped().Where("course_id = ?", courseID).Delete(&commerce.CartItem{}).Error
}
