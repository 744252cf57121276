package scheduler

import (
	"testing"
	"time"

	"edumarket/database"
	"edumarket/models"
	"edumarket/models/commerce"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpireStaleOrders(t *testing.T) {
	db := database.OpenTestDb(t)
	now := time.Now()

	orders := []commerce.Order{
		{OrderCode: "ORD-OLD", UserID: 1, Status: commerce.OrderPending, Total: decimal.NewFromInt(10)},
		{OrderCode: "ORD-NEW", UserID: 1, Status: commerce.OrderPending, Total: decimal.NewFromInt(10)},
		{OrderCode: "ORD-PAID", UserID: 1, Status: commerce.OrderPaid, Total: decimal.NewFromInt(10)},
	}
	orders[0].CreatedAt = now.Add(-2 * time.Hour)
	orders[1].CreatedAt = now.Add(-5 * time.Minute)
	orders[2].CreatedAt = now.Add(-2 * time.Hour)
	require.NoError(t, db.Create(&orders).Error)

	ExpireStaleOrders(db, now)

	statuses := map[string]string{}
	var got []commerce.Order
	require.NoError(t, db.Find(&got).Error)
	for _, o := range got {
		statuses[o.OrderCode] = o.Status
	}
	assert.Equal(t, commerce.OrderExpired, statuses["ORD-OLD"])
	assert.Equal(t, commerce.OrderPending, statuses["ORD-NEW"])
	assert.Equal(t, commerce.OrderPaid, statuses["ORD-PAID"])
}

func TestPurgeUsedOTPs(t *testing.T) {
	db := database.OpenTestDb(t)
	now := time.Now()

	otps := []models.OTP{
		{UserID: 1, Code: "111111", Purpose: models.OTPPurposeVerifyEmail, ExpiresAt: now.Add(10 * time.Minute), IsUsed: true},
		{UserID: 1, Code: "222222", Purpose: models.OTPPurposeVerifyEmail, ExpiresAt: now.Add(-48 * time.Hour)},
		{UserID: 1, Code: "333333", Purpose: models.OTPPurposeForgotPassword, ExpiresAt: now.Add(-time.Hour)},
		{UserID: 1, Code: "444444", Purpose: models.OTPPurposeForgotPassword, ExpiresAt: now.Add(10 * time.Minute)},
	}
	require.NoError(t, db.Create(&otps).Error)

	PurgeUsedOTPs(db, now)

	var left []models.OTP
	require.NoError(t, db.Unscoped().Order("code").Find(&left).Error)
	require.Len(t, left, 2)
	assert.Equal(t, "333333", left[0].Code)
	assert.Equal(t, "444444", left[1].Code)
}
