package authValidator

import (
	"edumarket/validators/shared"

	"github.com/gofiber/fiber/v2"
)

type SignupRequest struct {
	Name     string `json:"name" validate:"required,notblank,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=191"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required,len=6,numeric"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

// Signup validator middleware
func Signup() fiber.Handler {
	return shared.Body("validatedSignup", func() interface{} { return new(SignupRequest) })
}

// Login validator middleware
func Login() fiber.Handler {
	return shared.Body("validatedLogin", func() interface{} { return new(LoginRequest) })
}

// SendOTP validator middleware, shared by resend-verification and forgot-password
func SendOTP() fiber.Handler {
	return shared.Body("validatedEmail", func() interface{} { return new(EmailRequest) })
}

func VerifyOTP() fiber.Handler {
	return shared.Body("validatedVerifyOTP", func() interface{} { return new(VerifyOTPRequest) })
}

func ResetPassword() fiber.Handler {
	return shared.Body("validatedResetPassword", func() interface{} { return new(ResetPasswordRequest) })
}

func ChangePassword() fiber.Handler {
	return shared.Body("validatedChangePassword", func() interface{} { return new(ChangePasswordRequest) })
}

// Login History Validator middleware
func LoginHistoryList() fiber.Handler {
	return shared.Query("validatedLoginHistory", func() interface{} { return new(shared.PageQuery) })
}
