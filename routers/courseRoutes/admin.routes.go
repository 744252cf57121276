package courseRoutes

import (
	controllers "edumarket/controllers/course"
	"edumarket/middleware"
	"edumarket/models"
	adminValidator "edumarket/validators/admin"
	validators "edumarket/validators/course"
	"edumarket/validators/shared"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminCourseRoutes registers moderation, category and dashboard routes.
func SetupAdminCourseRoutes(app *fiber.App) {
	adminOnly := []fiber.Handler{middleware.JWTMiddleware, middleware.ActiveUserMiddleware, middleware.RequireRoles(models.RoleAdmin)}

	// Course approvals
	courseGroup := app.Group("/admin/course", append(adminOnly, middleware.CheckPermissionMiddleware(models.PermApproveCourse))...)
	courseGroup.Get("/approvals", validators.ApprovalList(), controllers.ListApprovals)
	courseGroup.Patch("/approvals/:id", shared.Decision(), controllers.DecideApproval)
	courseGroup.Patch("/:id/visibility", validators.Hide(), controllers.SetCourseVisibility)

	// Categories
	categoryGroup := app.Group("/admin/category", adminOnly...)
	categoryGroup.Post("/", validators.Category(), controllers.CreateCategory)
	categoryGroup.Put("/:id", validators.Category(), controllers.UpdateCategory)
	categoryGroup.Delete("/:id", controllers.DeleteCategory)

	// Reviews
	reviewGroup := app.Group("/admin/reviews", adminOnly...)
	reviewGroup.Get("/", adminValidator.ReviewList(), controllers.AdminListReviews)
	reviewGroup.Patch("/:id/hidden", validators.Hide(), controllers.SetReviewHidden)

	// Dashboard
	dashGroup := app.Group("/admin/dashboard", adminOnly...)
	dashGroup.Get("/stats", controllers.AdminDashboard)
}
