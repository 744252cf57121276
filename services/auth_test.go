package services

import (
	"testing"
	"time"

	"edumarket/database"
	"edumarket/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func latestOTP(t *testing.T, db *gorm.DB, email, purpose string) models.OTP {
	t.Helper()
	var otp models.OTP
	require.NoError(t, db.Where("email = ? AND purpose = ? AND is_used = ?", email, purpose, false).
		Order("id DESC").First(&otp).Error)
	return otp
}

func registerVerified(t *testing.T, db *gorm.DB, email, password string) *models.User {
	t.Helper()
	user, err := Register(db, "Ada", email, password)
	require.NoError(t, err)
	otp := latestOTP(t, db, user.Email, models.OTPPurposeVerifyEmail)
	verified, err := VerifyEmail(db, user.Email, otp.Code)
	require.NoError(t, err)
	return verified
}

func TestRegister(t *testing.T) {
	db := database.OpenTestDb(t)

	user, err := Register(db, " Ada Lovelace ", " Ada@Example.COM ", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, "Ada Lovelace", user.Name)
	assert.Equal(t, models.RoleStudent, user.Role)
	assert.False(t, user.IsEmailVerified)
	assert.NotEqual(t, "s3cret-pass", user.Password)

	var perms []string
	require.NoError(t, db.Model(&models.Permission{}).
		Where("user_id = ? AND is_deleted = ?", user.ID, false).Pluck("permission", &perms).Error)
	assert.ElementsMatch(t, models.DefaultPermissions(models.RoleStudent), perms)

	otp := latestOTP(t, db, user.Email, models.OTPPurposeVerifyEmail)
	assert.Len(t, otp.Code, 6)

	_, err = Register(db, "Other", "ada@example.com", "another-pass")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestIssueOTPInvalidatesPreviousCodes(t *testing.T) {
	db := database.OpenTestDb(t)
	user, err := Register(db, "Ada", "ada@example.com", "s3cret-pass")
	require.NoError(t, err)
	first := latestOTP(t, db, user.Email, models.OTPPurposeVerifyEmail)

	second, err := IssueOTP(db, user.Email, models.OTPPurposeVerifyEmail)
	require.NoError(t, err)

	var stale models.OTP
	require.NoError(t, db.First(&stale, first.ID).Error)
	assert.True(t, stale.IsUsed)

	if first.Code != second.Code {
		_, err = VerifyEmail(db, user.Email, first.Code)
		assert.ErrorIs(t, err, ErrUnauthorized)
	}

	verified, err := VerifyEmail(db, user.Email, second.Code)
	require.NoError(t, err)
	assert.True(t, verified.IsEmailVerified)

	_, err = IssueOTP(db, user.Email, models.OTPPurposeVerifyEmail)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = IssueOTP(db, "nobody@example.com", models.OTPPurposeForgotPassword)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVerifyEmailRejectsExpiredCode(t *testing.T) {
	db := database.OpenTestDb(t)
	user, err := Register(db, "Ada", "ada@example.com", "s3cret-pass")
	require.NoError(t, err)
	otp := latestOTP(t, db, user.Email, models.OTPPurposeVerifyEmail)
	require.NoError(t, db.Model(&otp).Update("expires_at", time.Now().Add(-time.Minute)).Error)

	_, err = VerifyEmail(db, user.Email, otp.Code)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthenticate(t *testing.T) {
	db := database.OpenTestDb(t)
	registerVerified(t, db, "ada@example.com", "s3cret-pass")
	now := time.Now()

	user, err := Authenticate(db, "ADA@example.com", "s3cret-pass", "10.0.0.1", "curl", now)
	require.NoError(t, err)
	assert.NotNil(t, user.LastLogin)

	var logins []models.LoginTracking
	require.NoError(t, db.Where("user_id = ?", user.ID).Find(&logins).Error)
	require.Len(t, logins, 1)
	assert.Equal(t, "10.0.0.1", logins[0].IPAddress)
	assert.Equal(t, "curl", logins[0].Device)

	_, err = Authenticate(db, "ada@example.com", "wrong", "", "", now)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = Authenticate(db, "ghost@example.com", "whatever", "", "", now)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthenticateRequiresVerifiedEmail(t *testing.T) {
	db := database.OpenTestDb(t)
	_, err := Register(db, "Ada", "ada@example.com", "s3cret-pass")
	require.NoError(t, err)

	_, err = Authenticate(db, "ada@example.com", "s3cret-pass", "", "", time.Now())
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAuthenticateLockout(t *testing.T) {
	db := database.OpenTestDb(t)
	registered := registerVerified(t, db, "ada@example.com", "s3cret-pass")
	now := time.Now()

	for i := 0; i < MaxFailedLogins; i++ {
		_, err := Authenticate(db, "ada@example.com", "wrong", "", "", now)
		assert.ErrorIs(t, err, ErrUnauthorized)
	}

	locked := reloadUser(t, db, registered.ID)
	assert.True(t, locked.IsBlocked)
	require.NotNil(t, locked.BlockedUntil)

	// the right password does not help while locked
	_, err := Authenticate(db, "ada@example.com", "s3cret-pass", "", "", now.Add(time.Minute))
	assert.ErrorIs(t, err, ErrForbidden)

	user, err := Authenticate(db, "ada@example.com", "s3cret-pass", "", "", now.Add(LockoutDuration+time.Minute))
	require.NoError(t, err)
	assert.False(t, user.IsBlocked)
	assert.False(t, reloadUser(t, db, registered.ID).IsBlocked)
}

func TestAuthenticateForgetsOldFailures(t *testing.T) {
	db := database.OpenTestDb(t)
	registered := registerVerified(t, db, "ada@example.com", "s3cret-pass")
	start := time.Now()

	for i := 0; i < MaxFailedLogins-1; i++ {
		_, err := Authenticate(db, "ada@example.com", "wrong", "", "", start)
		assert.ErrorIs(t, err, ErrUnauthorized)
	}

	_, err := Authenticate(db, "ada@example.com", "wrong", "", "", start.Add(LockoutDuration+time.Minute))
	assert.ErrorIs(t, err, ErrUnauthorized)

	user := reloadUser(t, db, registered.ID)
	assert.False(t, user.IsBlocked)
	assert.Equal(t, 1, user.FailedLoginAttempts)
}

func TestAdminBlockHasNoExpiry(t *testing.T) {
	db := database.OpenTestDb(t)
	registered := registerVerified(t, db, "ada@example.com", "s3cret-pass")

	blocked, err := SetUserBlocked(db, registered.ID, true)
	require.NoError(t, err)
	assert.True(t, blocked.IsBlocked)

	_, err = Authenticate(db, "ada@example.com", "s3cret-pass", "", "", time.Now().AddDate(1, 0, 0))
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = SetUserBlocked(db, registered.ID, false)
	require.NoError(t, err)
	_, err = Authenticate(db, "ada@example.com", "s3cret-pass", "", "", time.Now())
	assert.NoError(t, err)

	_, err = SetUserBlocked(db, 9999, true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResetPassword(t *testing.T) {
	db := database.OpenTestDb(t)
	registered := registerVerified(t, db, "ada@example.com", "s3cret-pass")
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", registered.ID).
		Update("failed_login_attempts", 3).Error)

	_, err := IssueOTP(db, "ada@example.com", models.OTPPurposeForgotPassword)
	require.NoError(t, err)
	otp := latestOTP(t, db, "ada@example.com", models.OTPPurposeForgotPassword)

	// wrong code
	assert.ErrorIs(t, ResetPassword(db, "ada@example.com", "000000x", "new-pass-123"), ErrUnauthorized)

	require.NoError(t, ResetPassword(db, "ada@example.com", otp.Code, "new-pass-123"))
	assert.Equal(t, 0, reloadUser(t, db, registered.ID).FailedLoginAttempts)

	assert.ErrorIs(t, ResetPassword(db, "ada@example.com", otp.Code, "again-pass-1"), ErrUnauthorized)

	_, err = Authenticate(db, "ada@example.com", "new-pass-123", "", "", time.Now())
	assert.NoError(t, err)
	_, err = Authenticate(db, "ada@example.com", "s3cret-pass", "", "", time.Now())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestChangePassword(t *testing.T) {
	db := database.OpenTestDb(t)
	registered := registerVerified(t, db, "ada@example.com", "s3cret-pass")

	assert.ErrorIs(t, ChangePassword(db, registered.ID, "wrong", "new-pass-123"), ErrUnauthorized)
	assert.ErrorIs(t, ChangePassword(db, registered.ID, "s3cret-pass", "s3cret-pass"), ErrInvalidInput)
	assert.ErrorIs(t, ChangePassword(db, 9999, "s3cret-pass", "new-pass-123"), ErrNotFound)

	require.NoError(t, ChangePassword(db, registered.ID, "s3cret-pass", "new-pass-123"))
	_, err := Authenticate(db, "ada@example.com", "new-pass-123", "", "", time.Now())
	assert.NoError(t, err)
}

func TestChangeUserRoleReseedsPermissions(t *testing.T) {
	db := database.OpenTestDb(t)
	student := newUser(t, db, models.RoleStudent)

	user, err := ChangeUserRole(db, student.ID, models.RoleInstructor)
	require.NoError(t, err)
	assert.Equal(t, models.RoleInstructor, user.Role)

	var perms []string
	require.NoError(t, db.Model(&models.Permission{}).
		Where("user_id = ? AND is_deleted = ?", student.ID, false).Pluck("permission", &perms).Error)
	assert.ElementsMatch(t, models.DefaultPermissions(models.RoleInstructor), perms)

	_, err = ChangeUserRole(db, student.ID, "OWNER")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = ChangeUserRole(db, 9999, models.RoleAdmin)
	assert.ErrorIs(t, err, ErrNotFound)
}
