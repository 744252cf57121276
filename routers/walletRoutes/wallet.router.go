package walletRoutes

import (
	walletController "edumarket/controllers/wallet"
	"edumarket/middleware"
	"edumarket/models"
	adminValidator "edumarket/validators/admin"
	"edumarket/validators/shared"
	walletValidator "edumarket/validators/wallet"

	"github.com/gofiber/fiber/v2"
)

func SetupWalletRoutes(app *fiber.App) {
	walletGroup := app.Group("/wallet", middleware.JWTMiddleware, middleware.ActiveUserMiddleware)

	// Instructor routes
	walletGroup.Get("/balance", middleware.CheckPermissionMiddleware(models.PermViewEarnings), walletController.GetWalletBalance)
	walletGroup.Get("/history", middleware.CheckPermissionMiddleware(models.PermViewEarnings), walletValidator.History(), walletController.GetWalletHistory)
	walletGroup.Post("/withdraw", middleware.CheckPermissionMiddleware(models.PermWithdraw), walletValidator.Withdraw(), walletController.RequestWithdrawal)

	// Admin routes
	adminGroup := walletGroup.Group("/admin", middleware.RequireRoles(models.RoleAdmin))
	adminGroup.Get("/withdrawals", adminValidator.WithdrawalList(), walletController.ListWithdrawals)
	adminGroup.Patch("/withdrawals/:id", shared.Decision(), walletController.DecideWithdrawal)
	adminGroup.Post("/adjust", walletValidator.Adjust(), walletController.AdjustBalance)
	adminGroup.Get("/users/:userId/history", walletValidator.History(), walletController.GetUserWalletHistory)
}
