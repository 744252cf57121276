package commerceController

import (
	"edumarket/database"
	"edumarket/middleware"
	"edumarket/services"
	commerceValidator "edumarket/validators/commerce"

	"github.com/gofiber/fiber/v2"
)

// paramID reads a positive numeric route parameter.
func paramID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

func GetCart(c *fiber.Ctx) error {
	userId, _ := middleware.CurrentUser(c)

	reqData, ok := c.Locals("validatedCartSummary").(*commerceValidator.CartSummaryQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	summary, err := services.SummarizeCart(database.Database.Db, userId, reqData.Voucher)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch cart!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Cart fetched successfully!", summary)
}

func AddToCart(c *fiber.Ctx) error {
	userId, _ := middleware.CurrentUser(c)

	reqData, ok := c.Locals("validatedAddCart").(*commerceValidator.AddCartRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	item, err := services.AddToCart(database.Database.Db, userId, reqData.CourseID)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to add course to cart!")
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course added to cart!", item)
}

func RemoveFromCart(c *fiber.Ctx) error {
	userId, _ := middleware.CurrentUser(c)

	courseID, ok := paramID(c, "courseId")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
	}

	if err := services.RemoveFromCart(database.Database.Db, userId, courseID); err != nil {
		return middleware.ErrorResponse(c, err, "Failed to remove course from cart!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course removed from cart!", nil)
}

func ClearCart(c *fiber.Ctx) error {
	userId, _ := middleware.CurrentUser(c)

	if err := services.ClearCart(database.Database.Db, userId); err != nil {
		return middleware.ErrorResponse(c, err, "Failed to clear cart!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Cart cleared!", nil)
}
