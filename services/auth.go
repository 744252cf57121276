package services

import (
	"strings"
	"time"

	"edumarket/config"
	"edumarket/models"
	"edumarket/utils"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Login lockout policy
const (
	MaxFailedLogins = 5
	LockoutDuration = 15 * time.Minute
	OTPValidity     = 10 * time.Minute
)

func unauthorized(msg string) error { return newError(ErrUnauthorized, msg) }

func passwordCost() int {
	if config.AppConfig == nil || config.AppConfig.SaltRound < bcrypt.MinCost || config.AppConfig.SaltRound > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}
	return config.AppConfig.SaltRound
}

// HashPassword hashes a plain password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost())
	return string(hash), errors.Wrap(err, "hash password")
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a STUDENT account with default permissions and sends a verification code.
func Register(db *gorm.DB, name, email, password string) (*models.User, error) {
	email = NormalizeEmail(email)

	var exists int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&exists).Error; err != nil {
		return nil, errors.Wrap(err, "check email")
	}
	if exists > 0 {
		return nil, conflict("Email is already registered!")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Name:     strings.TrimSpace(name),
		Email:    email,
		Password: hash,
		Role:     models.RoleStudent,
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return errors.Wrap(err, "create user")
		}
		return SeedPermissions(tx, user.Role, user.ID)
	})
	if err != nil {
		return nil, err
	}

	if _, err := IssueOTP(db, email, models.OTPPurposeVerifyEmail); err != nil {
		return nil, err
	}
	return &user, nil
}

// IssueOTP creates a fresh one-time code for email and mails it. Earlier unused codes of the same purpose are invalidated.
func IssueOTP(db *gorm.DB, email, purpose string) (*models.OTP, error) {
	email = NormalizeEmail(email)
	var user models.User
	if err := db.Where("email = ? AND is_deleted = ?", email, false).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("User not found!")
		}
		return nil, errors.Wrap(err, "load user")
	}
	if purpose == models.OTPPurposeVerifyEmail && user.IsEmailVerified {
		return nil, conflict("Email already verified!")
	}

	otp := models.OTP{
		UserID:    user.ID,
		Email:     email,
		Code:      utils.GenerateOTP(),
		Purpose:   purpose,
		ExpiresAt: time.Now().Add(OTPValidity),
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.OTP{}).
			Where("user_id = ? AND purpose = ? AND is_used = ?", user.ID, purpose, false).
			Update("is_used", true).Error; err != nil {
			return errors.Wrap(err, "invalidate otp")
		}
		return errors.Wrap(tx.Create(&otp).Error, "create otp")
	})
	if err != nil {
		return nil, err
	}

	utils.SendOTPEmail(email, otp.Code, purpose)
	return &otp, nil
}

// consumeOTP marks a matching, unexpired code as used and returns its owner.
func consumeOTP(tx *gorm.DB, email, code, purpose string, now time.Time) (*models.User, error) {
	var otp models.OTP
	if err := tx.Where("email = ? AND code = ? AND purpose = ? AND is_used = ? AND is_deleted = ?",
		NormalizeEmail(email), code, purpose, false, false).
		Order("id DESC").First(&otp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, unauthorized("Invalid OTP or OTP expired!")
		}
		return nil, errors.Wrap(err, "load otp")
	}
	if now.After(otp.ExpiresAt) {
		return nil, unauthorized("Invalid OTP or OTP expired!")
	}

	res := tx.Model(&models.OTP{}).Where("id = ? AND is_used = ?", otp.ID, false).Update("is_used", true)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "consume otp")
	}
	if res.RowsAffected == 0 {
		return nil, unauthorized("Invalid OTP or OTP expired!")
	}

	var user models.User
	if err := tx.Where("id = ? AND is_deleted = ?", otp.UserID, false).First(&user).Error; err != nil {
		return nil, errors.Wrap(err, "load otp owner")
	}
	return &user, nil
}

// VerifyEmail confirms the email address behind a verification code.
func VerifyEmail(db *gorm.DB, email, code string) (*models.User, error) {
	var user *models.User
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		if user, err = consumeOTP(tx, email, code, models.OTPPurposeVerifyEmail, time.Now()); err != nil {
			return err
		}
		user.IsEmailVerified = true
		return errors.Wrap(tx.Model(user).Update("is_email_verified", true).Error, "verify email")
	})
	if err != nil {
		return nil, err
	}
	utils.SendWelcomeEmail(user.Email, user.Name)
	return user, nil
}

// ResetPassword sets a new password after a forgot-password code is confirmed.
func ResetPassword(db *gorm.DB, email, code, newPassword string) error {
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		user, err := consumeOTP(tx, email, code, models.OTPPurposeForgotPassword, time.Now())
		if err != nil {
			return err
		}
		// a reset also clears the failed attempt counter
		return errors.Wrap(tx.Model(user).Updates(map[string]interface{}{
			"password":              hash,
			"failed_login_attempts": 0,
			"last_failed_login":     nil,
		}).Error, "reset password")
	})
}

// ChangePassword replaces the password of userID after checking the current one.
func ChangePassword(db *gorm.DB, userID uint, oldPassword, newPassword string) error {
	var user models.User
	if err := db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("User not found!")
		}
		return errors.Wrap(err, "load user")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)) != nil {
		return unauthorized("Old password is incorrect!")
	}
	if oldPassword == newPassword {
		return invalidInput("New password must differ from the old one!")
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	return errors.Wrap(db.Model(&user).Update("password", hash).Error, "change password")
}

// Authenticate checks credentials, applying the failed-attempt lockout, and records the login.
func Authenticate(db *gorm.DB, email, password, ip, device string, now time.Time) (*models.User, error) {
	var user models.User
	if err := db.Where("email = ? AND is_deleted = ?", NormalizeEmail(email), false).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, unauthorized("Invalid credentials!")
		}
		return nil, errors.Wrap(err, "load user")
	}

	if user.IsLocked(now) {
		if user.BlockedUntil == nil {
			return nil, forbidden("Your account has been blocked!")
		}
		return nil, forbidden("Your account is temporarily blocked. Try again later.")
	}

	// failures older than the lockout window no longer count
	if user.LastFailedLogin != nil && now.Sub(*user.LastFailedLogin) > LockoutDuration {
		user.FailedLoginAttempts = 0
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		updates := map[string]interface{}{
			"failed_login_attempts": user.FailedLoginAttempts + 1,
			"last_failed_login":     now,
		}
		if user.FailedLoginAttempts+1 >= MaxFailedLogins {
			updates["is_blocked"] = true
			updates["blocked_until"] = now.Add(LockoutDuration)
			updates["failed_login_attempts"] = 0
		}
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			return nil, errors.Wrap(err, "record failed login")
		}
		return nil, unauthorized("Invalid credentials!")
	}

	if !user.IsEmailVerified {
		return nil, forbidden("Email not verified!")
	}

	updates := map[string]interface{}{
		"last_login":            now,
		"failed_login_attempts": 0,
		"last_failed_login":     nil,
	}
	if user.IsBlocked && user.BlockedUntil != nil {
		// lockout has elapsed
		updates["is_blocked"] = false
		updates["blocked_until"] = nil
	}
	if err := db.Model(&user).Updates(updates).Error; err != nil {
		return nil, errors.Wrap(err, "record login")
	}
	user.LastLogin = &now
	user.FailedLoginAttempts = 0
	user.IsBlocked = false
	user.BlockedUntil = nil

	tracking := models.LoginTracking{UserID: user.ID, IPAddress: ip, Device: device, Timestamp: now}
	if err := db.Create(&tracking).Error; err != nil {
		return nil, errors.Wrap(err, "record login tracking")
	}
	return &user, nil
}

// SetUserBlocked blocks or unblocks userID. Admin blocks have no expiry.
func SetUserBlocked(db *gorm.DB, userID uint, blocked bool) (*models.User, error) {
	var user models.User
	if err := db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("User not found!")
		}
		return nil, errors.Wrap(err, "load user")
	}
	user.IsBlocked = blocked
	user.BlockedUntil = nil
	if err := db.Model(&user).Updates(map[string]interface{}{
		"is_blocked":            blocked,
		"blocked_until":         nil,
		"failed_login_attempts": 0,
	}).Error; err != nil {
		return nil, errors.Wrap(err, "update block state")
	}
	return &user, nil
}
