package userController

import (
	"strings"

	"edumarket/database"
	"edumarket/middleware"
	"edumarket/models"
	"edumarket/services"
	"edumarket/utils"
	userValidator "edumarket/validators/userValidator"

	"github.com/gofiber/fiber/v2"
)

func GetProfile(c *fiber.Ctx) error {
	userId, _ := middleware.CurrentUser(c)

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userId, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile fetched successfully.", user)
}

func UpdateProfile(c *fiber.Ctx) error {
	userId, _ := middleware.CurrentUser(c)

	reqData, ok := c.Locals("validatedProfile").(*userValidator.UpdateProfileRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	updates := map[string]interface{}{}
	if reqData.Name != nil {
		updates["name"] = strings.TrimSpace(*reqData.Name)
	}
	if reqData.Phone != nil {
		updates["phone"] = strings.TrimSpace(*reqData.Phone)
	}
	if reqData.AvatarURL != nil {
		updates["avatar_url"] = *reqData.AvatarURL
	}
	if reqData.Bio != nil {
		updates["bio"] = *reqData.Bio
	}

	db := database.Database.Db
	if err := db.Model(&models.User{}).Where("id = ? AND is_deleted = ?", userId, false).Updates(updates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update profile!", nil)
	}

	var user models.User
	if err := db.First(&user, userId).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile updated successfully.", user)
}

func ApplyInstructor(c *fiber.Ctx) error {
	userId, _ := middleware.CurrentUser(c)

	reqData, ok := c.Locals("validatedInstructorApplication").(*userValidator.InstructorApplicationRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	req, err := services.SubmitInstructorRequest(database.Database.Db, userId, services.InstructorApplication{
		Expertise:       strings.TrimSpace(reqData.Expertise),
		Bio:             reqData.Bio,
		ExperienceYears: reqData.ExperienceYears,
		PortfolioURL:    reqData.PortfolioURL,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to submit instructor request!")
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Instructor request submitted successfully.", req)
}

func MyInstructorRequests(c *fiber.Ctx) error {
	userId, _ := middleware.CurrentUser(c)

	var requests []models.InstructorRequest
	if err := database.Database.Db.Where("user_id = ? AND is_deleted = ?", userId, false).
		Order("created_at DESC").Find(&requests).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch requests!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Instructor requests fetched successfully.", requests)
}

func ListNotifications(c *fiber.Ctx) error {
	userId, _ := middleware.CurrentUser(c)

	reqData, ok := c.Locals("validatedNotificationList").(*userValidator.NotificationListQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	page := utils.Paginate(reqData.Page, reqData.Limit)

	db := database.Database.Db
	query := db.Model(&models.Notification{}).Where("user_id = ?", userId)
	if reqData.Unread {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch notifications!", nil)
	}
	var notifications []models.Notification
	if err := query.Order("created_at DESC").Offset(page.Offset).Limit(page.Limit).Find(&notifications).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch notifications!", nil)
	}

	unread, err := services.UnreadCount(db, userId)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch notifications!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Notifications fetched successfully.", fiber.Map{
		"notifications": notifications,
		"unread":        unread,
		"pagination":    page.Meta(total),
	})
}

func UnreadNotifications(c *fiber.Ctx) error {
	userId, _ := middleware.CurrentUser(c)

	unread, err := services.UnreadCount(database.Database.Db, userId)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to count notifications!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Unread notifications.", fiber.Map{"unread": unread})
}

func ReadNotification(c *fiber.Ctx) error {
	userId, _ := middleware.CurrentUser(c)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid notification ID!", nil)
	}

	n, err := services.MarkNotificationRead(database.Database.Db, userId, uint(id))
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to update notification!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Notification marked as read.", n)
}

func ReadAllNotifications(c *fiber.Ctx) error {
	userId, _ := middleware.CurrentUser(c)

	count, err := services.MarkAllNotificationsRead(database.Database.Db, userId)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to update notifications!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "All notifications marked as read.", fiber.Map{"updated": count})
}

func DeleteNotification(c *fiber.Ctx) error {
	userId, _ := middleware.CurrentUser(c)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid notification ID!", nil)
	}

	if err := services.DeleteNotification(database.Database.Db, userId, uint(id)); err != nil {
		return middleware.ErrorResponse(c, err, "Failed to delete notification!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Notification deleted.", nil)
}
