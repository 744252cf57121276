package services

import (
	"testing"

	"edumarket/database"
	"edumarket/models"
	"edumarket/models/commerce"
	"edumarket/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddToCart(t *testing.T) {
	db := database.OpenTestDb(t)
	instructor := newUser(t, db, models.RoleInstructor)
	student := newUser(t, db, models.RoleStudent)
	c := newCourse(t, db, instructor.ID, "49.99")

	item, err := AddToCart(db, student.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, item.Course.ID)

	_, err = AddToCart(db, student.ID, c.ID)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = AddToCart(db, instructor.ID, c.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = AddToCart(db, student.ID, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	draft := newCourse(t, db, instructor.ID, "10", withStatus(course.StatusDraft))
	_, err = AddToCart(db, student.ID, draft.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	owned := newCourse(t, db, instructor.ID, "10")
	paidOrder(t, db, student.ID, "", owned)
	_, err = AddToCart(db, student.ID, owned.ID)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRemoveAndClearCart(t *testing.T) {
	db := database.OpenTestDb(t)
	instructor := newUser(t, db, models.RoleInstructor)
	student := newUser(t, db, models.RoleStudent)
	c1 := newCourse(t, db, instructor.ID, "10")
	c2 := newCourse(t, db, instructor.ID, "20")

	for _, c := range []*course.Course{c1, c2} {
		_, err := AddToCart(db, student.ID, c.ID)
		require.NoError(t, err)
	}

	require.NoError(t, RemoveFromCart(db, student.ID, c1.ID))
	assert.ErrorIs(t, RemoveFromCart(db, student.ID, c1.ID), ErrNotFound)

	ids, err := CartCourseIDs(db, student.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{c2.ID}, ids)

	// removed rows are hard deleted so the course can be added again
	_, err = AddToCart(db, student.ID, c1.ID)
	require.NoError(t, err)

	require.NoError(t, ClearCart(db, student.ID))
	ids, err = CartCourseIDs(db, student.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSummarizeCart(t *testing.T) {
	db := database.OpenTestDb(t)
	instructor := newUser(t, db, models.RoleInstructor)
	student := newUser(t, db, models.RoleStudent)
	c1 := newCourse(t, db, instructor.ID, "80", withSalePrice("60"))
	c2 := newCourse(t, db, instructor.ID, "40")
	newVoucher(t, db, "QUARTER", commerce.VoucherPercent, "25", func(v *commerce.Voucher) {
		v.MaxDiscount = dec("20")
	})
	newVoucher(t, db, "BIGSPENDER", commerce.VoucherFixed, "5", func(v *commerce.Voucher) {
		v.MinOrderAmount = dec("500")
	})

	empty, err := SummarizeCart(db, student.ID, "QUARTER")
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
	assert.True(t, empty.Total.IsZero())
	assert.Empty(t, empty.VoucherCode)

	for _, c := range []*course.Course{c1, c2} {
		_, err := AddToCart(db, student.ID, c.ID)
		require.NoError(t, err)
	}

	plain, err := SummarizeCart(db, student.ID, "")
	require.NoError(t, err)
	assert.Len(t, plain.Items, 2)
	assertDecimal(t, "100", plain.Subtotal)
	assertDecimal(t, "100", plain.Total)

	capped, err := SummarizeCart(db, student.ID, " quarter ")
	require.NoError(t, err)
	assert.Equal(t, "QUARTER", capped.VoucherCode)
	assertDecimal(t, "20", capped.Discount)
	assertDecimal(t, "80", capped.Total)
	assert.Empty(t, capped.VoucherError)

	rejected, err := SummarizeCart(db, student.ID, "BIGSPENDER")
	require.NoError(t, err)
	assert.NotEmpty(t, rejected.VoucherError)
	assert.True(t, rejected.Discount.IsZero())
	assertDecimal(t, "100", rejected.Total)
}
