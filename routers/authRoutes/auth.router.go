package authRoutes

import (
	authControllers "edumarket/controllers/auth"
	"edumarket/middleware"
	authValidators "edumarket/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App) {
	authGroup := app.Group("/auth")

	authGroup.Post("/signup", authValidators.Signup(), authControllers.Signup)
	authGroup.Post("/login", authValidators.Login(), authControllers.Login)
	authGroup.Get("/login/history", middleware.JWTMiddleware, middleware.ActiveUserMiddleware, authValidators.LoginHistoryList(), authControllers.LoginHistoryList)
	authGroup.Post("/send/otp", authValidators.SendOTP(), authControllers.SendOTP)
	authGroup.Patch("/verify/otp", authValidators.VerifyOTP(), authControllers.VerifyOTP)
	authGroup.Post("/forgot/password/send/otp", authValidators.SendOTP(), authControllers.ForgotPasswordSendOTP)
	authGroup.Patch("/reset/password", authValidators.ResetPassword(), authControllers.ResetPassword)
	authGroup.Put("/change/login/password", middleware.JWTMiddleware, middleware.ActiveUserMiddleware, authValidators.ChangePassword(), authControllers.ChangePassword)
}
