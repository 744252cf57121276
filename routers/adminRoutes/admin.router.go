package adminRoutes

import (
	adminController "edumarket/controllers/admin"
	"edumarket/middleware"
	"edumarket/models"
	adminValidator "edumarket/validators/admin"
	"edumarket/validators/shared"

	"github.com/gofiber/fiber/v2"
)

func SetupAdminRoutes(app *fiber.App) {
	userGroup := app.Group("/admin/user", middleware.JWTMiddleware, middleware.ActiveUserMiddleware,
		middleware.RequireRoles(models.RoleAdmin), middleware.CheckPermissionMiddleware(models.PermManageUsers))
	userGroup.Get("/list", adminValidator.UserList(), adminController.UserList)
	userGroup.Patch("/:id/role", adminValidator.ChangeRole(), adminController.ChangeRole)
	userGroup.Patch("/:id/block", adminValidator.Block(), adminController.BlockUser)
	userGroup.Get("/:id/permissions", adminController.PermissionsByUserID)

	// Instructor applications
	requestGroup := app.Group("/admin/instructor", middleware.JWTMiddleware, middleware.ActiveUserMiddleware,
		middleware.RequireRoles(models.RoleAdmin), middleware.CheckPermissionMiddleware(models.PermApproveInstructor))
	requestGroup.Get("/requests", adminValidator.RequestList(), adminController.InstructorRequests)
	requestGroup.Patch("/requests/:id", shared.Decision(), adminController.DecideInstructorRequest)
}
