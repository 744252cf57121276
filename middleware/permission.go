package middleware

import (
	"edumarket/database"
	"edumarket/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CheckPermissionMiddleware returns a middleware that checks if the user has the required permission
func CheckPermissionMiddleware(requiredPermission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userId").(uint)
		if !ok {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized: User ID not found", nil)
		}

		var permission models.Permission
		err := database.Database.Db.Where("user_id = ? AND permission = ? AND is_deleted = ?",
			userID, requiredPermission, false).First(&permission).Error

		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
			}
			return JsonResponse(c, fiber.StatusInternalServerError, false, "Server error while checking permissions!", nil)
		}

		return c.Next()
	}
}

// RequireRoles rejects callers whose token role is not one of roles.
func RequireRoles(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		_, role := CurrentUser(c)
		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}
		return JsonResponse(c, fiber.StatusForbidden, false, "Access Denied!", nil)
	}
}

// ActiveUserMiddleware rejects tokens of deleted or blocked accounts.
func ActiveUserMiddleware(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized: User ID not found", nil)
	}

	var user models.User
	if err := database.Database.Db.Select("id", "role", "is_blocked", "blocked_until", "is_deleted").
		Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied!", nil)
	}
	if user.IsBlocked && user.BlockedUntil == nil {
		return JsonResponse(c, fiber.StatusForbidden, false, "Your account has been blocked!", nil)
	}
	// the stored role wins over the token claim after a role change
	c.Locals("role", user.Role)
	return c.Next()
}
