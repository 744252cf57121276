package authController

import (
	"log"
	"time"

	"edumarket/database"
	"edumarket/middleware"
	"edumarket/models"
	"edumarket/services"
	"edumarket/utils"
	authValidator "edumarket/validators/auth"
	"edumarket/validators/shared"

	"github.com/gofiber/fiber/v2"
)

func Signup(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedSignup").(*authValidator.SignupRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	user, err := services.Register(database.Database.Db, reqData.Name, reqData.Email, reqData.Password)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to Signup user!")
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User registered successfully. Check your email for the verification code.", user)
}

func Login(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedLogin").(*authValidator.LoginRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	user, err := services.Authenticate(database.Database.Db, reqData.Email, reqData.Password, c.IP(), c.Get("User-Agent"), time.Now())
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to login!")
	}

	token, err := middleware.GenerateJWT(user.ID, user.Name, user.Role, user.Email)
	if err != nil {
		log.Printf("Error generating token: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful.", fiber.Map{
		"token": token,
		"user":  user,
	})
}

func LoginHistoryList(c *fiber.Ctx) error {
	userId, _ := middleware.CurrentUser(c)

	reqData, ok := c.Locals("validatedLoginHistory").(*shared.PageQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	page := utils.Paginate(reqData.Page, reqData.Limit)

	db := database.Database.Db.Model(&models.LoginTracking{}).Where("user_id = ? AND is_deleted = ?", userId, false)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch login history!", nil)
	}

	var loginTracking []models.LoginTracking
	if err := db.Order("timestamp DESC").Offset(page.Offset).Limit(page.Limit).Find(&loginTracking).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch login history!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login History List.", fiber.Map{
		"loginTracking": loginTracking,
		"pagination":    page.Meta(total),
	})
}

// SendOTP resends the email verification code.
func SendOTP(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedEmail").(*authValidator.EmailRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if _, err := services.IssueOTP(database.Database.Db, reqData.Email, models.OTPPurposeVerifyEmail); err != nil {
		return middleware.ErrorResponse(c, err, "Failed to send OTP!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "OTP sent successfully.", nil)
}

func VerifyOTP(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedVerifyOTP").(*authValidator.VerifyOTPRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	user, err := services.VerifyEmail(database.Database.Db, reqData.Email, reqData.Code)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to verify OTP!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Email verified successfully.", user)
}

func ForgotPasswordSendOTP(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedEmail").(*authValidator.EmailRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if _, err := services.IssueOTP(database.Database.Db, reqData.Email, models.OTPPurposeForgotPassword); err != nil {
		if services.HTTPStatus(err) == fiber.StatusNotFound {
			// unknown emails get the same answer as known ones
			return middleware.JsonResponse(c, fiber.StatusOK, true, "If the email is registered, an OTP has been sent.", nil)
		}
		return middleware.ErrorResponse(c, err, "Failed to send OTP!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "If the email is registered, an OTP has been sent.", nil)
}

func ResetPassword(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedResetPassword").(*authValidator.ResetPasswordRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if err := services.ResetPassword(database.Database.Db, reqData.Email, reqData.Code, reqData.NewPassword); err != nil {
		return middleware.ErrorResponse(c, err, "Failed to reset password!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Password reset successfully.", nil)
}

func ChangePassword(c *fiber.Ctx) error {
	userId, _ := middleware.CurrentUser(c)

	reqData, ok := c.Locals("validatedChangePassword").(*authValidator.ChangePasswordRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if err := services.ChangePassword(database.Database.Db, userId, reqData.OldPassword, reqData.NewPassword); err != nil {
		return middleware.ErrorResponse(c, err, "Failed to change password!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Password changed successfully.", nil)
}
