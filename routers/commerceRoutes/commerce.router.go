package commerceRoutes

import (
	commerceController "edumarket/controllers/commerce"
	"edumarket/middleware"
	"edumarket/models"
	commerceValidator "edumarket/validators/commerce"

	"github.com/gofiber/fiber/v2"
)

func SetupCommerceRoutes(app *fiber.App) {
	// Cart
	cartGroup := app.Group("/cart", middleware.JWTMiddleware, middleware.ActiveUserMiddleware)
	cartGroup.Get("/", commerceValidator.CartSummary(), commerceController.GetCart)
	cartGroup.Post("/", middleware.CheckPermissionMiddleware(models.PermBuyCourse), commerceValidator.AddCart(), commerceController.AddToCart)
	cartGroup.Delete("/", commerceController.ClearCart)
	cartGroup.Delete("/:courseId", commerceController.RemoveFromCart)

	// Orders
	orderGroup := app.Group("/orders", middleware.JWTMiddleware, middleware.ActiveUserMiddleware)
	orderGroup.Post("/checkout", middleware.CheckPermissionMiddleware(models.PermBuyCourse), commerceValidator.Checkout(), commerceController.Checkout)
	orderGroup.Get("/", commerceValidator.OrderList(), commerceController.ListMyOrders)
	orderGroup.Get("/:id", commerceController.GetMyOrder)
	orderGroup.Patch("/:id/cancel", commerceController.CancelOrder)

	// Payment
	paymentGroup := app.Group("/payment")
	paymentGroup.Get("/confirm", middleware.JWTMiddleware, middleware.ActiveUserMiddleware, commerceValidator.Confirm(), commerceController.ConfirmPayment)
	paymentGroup.Post("/webhook", commerceController.StripeWebhook)

	// Admin
	adminOrderGroup := app.Group("/admin/orders", middleware.JWTMiddleware, middleware.ActiveUserMiddleware, middleware.RequireRoles(models.RoleAdmin))
	adminOrderGroup.Get("/", commerceValidator.AdminOrderList(), commerceController.AdminListOrders)
	adminOrderGroup.Get("/:id", commerceController.AdminGetOrder)
	adminOrderGroup.Post("/:id/refund", commerceValidator.Refund(), commerceController.RefundOrder)

	voucherGroup := app.Group("/admin/vouchers", middleware.JWTMiddleware, middleware.ActiveUserMiddleware,
		middleware.RequireRoles(models.RoleAdmin), middleware.CheckPermissionMiddleware(models.PermManageVouchers))
	voucherGroup.Get("/", commerceValidator.VoucherList(), commerceController.ListVouchers)
	voucherGroup.Post("/", commerceValidator.Voucher(), commerceController.CreateVoucher)
	voucherGroup.Get("/:id", commerceController.GetVoucher)
	voucherGroup.Put("/:id", commerceValidator.Voucher(), commerceController.UpdateVoucher)
	voucherGroup.Delete("/:id", commerceController.DeleteVoucher)
}
