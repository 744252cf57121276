package controllers

import (
	"time"

	"edumarket/database"
	"edumarket/middleware"
	"edumarket/services"

	"github.com/gofiber/fiber/v2"
)

func AdminDashboard(c *fiber.Ctx) error {
	dashboard, err := services.BuildAdminDashboard(database.Database.Db, time.Now())
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to load dashboard!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard fetched successfully!", dashboard)
}

func InstructorDashboard(c *fiber.Ctx) error {
	userId, _ := middleware.CurrentUser(c)

	dashboard, err := services.BuildInstructorDashboard(database.Database.Db, userId, time.Now())
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to load dashboard!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard fetched successfully!", dashboard)
}
