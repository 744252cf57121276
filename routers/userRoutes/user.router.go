package userRoutes

import (
	userController "edumarket/controllers/userControllers"
	"edumarket/middleware"
	"edumarket/models"
	userValidator "edumarket/validators/userValidator"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App) {
	userGroup := app.Group("/user", middleware.JWTMiddleware, middleware.ActiveUserMiddleware)

	userGroup.Get("/profile", userController.GetProfile)
	userGroup.Put("/profile", userValidator.UpdateProfile(), userController.UpdateProfile)

	userGroup.Post("/instructor/request", middleware.RequireRoles(models.RoleStudent), userValidator.InstructorApplication(), userController.ApplyInstructor)
	userGroup.Get("/instructor/requests", userController.MyInstructorRequests)

	userGroup.Get("/notifications", userValidator.NotificationList(), userController.ListNotifications)
	userGroup.Get("/notifications/unread", userController.UnreadNotifications)
	userGroup.Patch("/notifications/read-all", userController.ReadAllNotifications)
	userGroup.Patch("/notifications/:id/read", userController.ReadNotification)
	userGroup.Delete("/notifications/:id", userController.DeleteNotification)
}
