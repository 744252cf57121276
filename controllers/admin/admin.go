package adminController

import (
	"edumarket/database"
	"edumarket/middleware"
	"edumarket/models"
	"edumarket/services"
	"edumarket/utils"
	adminValidator "edumarket/validators/admin"
	"edumarket/validators/shared"

	"github.com/gofiber/fiber/v2"
)

func UserList(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedUserList").(*adminValidator.UserListQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	page := utils.Paginate(reqData.Page, reqData.Limit)

	users, total, err := services.ListUsers(database.Database.Db, reqData.Role, reqData.Keyword, page)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch users!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "User list fetched successfully.", fiber.Map{
		"users":      users,
		"pagination": page.Meta(total),
	})
}

func ChangeRole(c *fiber.Ctx) error {
	adminId, _ := middleware.CurrentUser(c)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid user ID!", nil)
	}
	if uint(id) == adminId {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "You cannot change your own role!", nil)
	}
	reqData, ok := c.Locals("validatedChangeRole").(*adminValidator.ChangeRoleRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	user, err := services.ChangeUserRole(database.Database.Db, uint(id), reqData.Role)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to change role!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Role updated successfully.", user)
}

func BlockUser(c *fiber.Ctx) error {
	adminId, _ := middleware.CurrentUser(c)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid user ID!", nil)
	}
	if uint(id) == adminId {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "You cannot block yourself!", nil)
	}
	reqData, ok := c.Locals("validatedBlock").(*adminValidator.BlockRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	user, err := services.SetUserBlocked(database.Database.Db, uint(id), reqData.Blocked)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to update user!")
	}

	msg := "User unblocked successfully."
	if reqData.Blocked {
		msg = "User blocked successfully."
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, msg, user)
}

func PermissionsByUserID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid user ID!", nil)
	}

	var permissions []models.Permission
	if err := database.Database.Db.Where("user_id = ? AND is_deleted = ?", id, false).Find(&permissions).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch permissions!", nil)
	}

	names := make([]string, 0, len(permissions))
	for _, p := range permissions {
		names = append(names, p.Permission)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Permissions fetched successfully.", fiber.Map{
		"user_id":     id,
		"permissions": names,
	})
}

func InstructorRequests(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedRequestList").(*adminValidator.RequestListQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	page := utils.Paginate(reqData.Page, reqData.Limit)

	requests, total, err := services.ListInstructorRequests(database.Database.Db, reqData.Status, page)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch instructor requests!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Instructor requests fetched successfully.", fiber.Map{
		"requests":   requests,
		"pagination": page.Meta(total),
	})
}

func DecideInstructorRequest(c *fiber.Ctx) error {
	adminId, _ := middleware.CurrentUser(c)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request ID!", nil)
	}
	reqData, ok := c.Locals("validatedDecision").(*shared.DecisionRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	req, err := services.DecideInstructorRequest(database.Database.Db, adminId, uint(id), reqData.Approve, reqData.Note)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to process instructor request!")
	}

	msg := "Instructor request approved."
	if !reqData.Approve {
		msg = "Instructor request rejected."
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, msg, req)
}
