package controllers

import (
	"edumarket/database"
	"edumarket/middleware"
	"edumarket/services"
	"edumarket/utils"
	adminValidator "edumarket/validators/admin"
	validators "edumarket/validators/course"
	"edumarket/validators/shared"

	"github.com/gofiber/fiber/v2"
)

func ListApprovals(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedApprovalList").(*validators.ApprovalListQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	page := utils.Paginate(reqData.Page, reqData.Limit)

	approvals, total, err := services.ListApprovals(database.Database.Db, reqData.Status, page)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch approvals!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Approvals fetched successfully!", fiber.Map{
		"approvals":  approvals,
		"pagination": page.Meta(total),
	})
}

func DecideApproval(c *fiber.Ctx) error {
	adminId, _ := middleware.CurrentUser(c)

	approvalID, ok := paramID(c, "id")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid approval ID!", nil)
	}
	reqData, ok := c.Locals("validatedDecision").(*shared.DecisionRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	approval, err := services.DecideCourseApproval(database.Database.Db, adminId, approvalID, reqData.Approve, reqData.Note)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to process approval!")
	}

	msg := "Course approved and published!"
	if !reqData.Approve {
		msg = "Course rejected!"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, msg, approval)
}

func SetCourseVisibility(c *fiber.Ctx) error {
	courseID, ok := paramID(c, "id")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
	}
	reqData, ok := c.Locals("validatedHide").(*validators.HideRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	course, err := services.SetCourseVisibility(database.Database.Db, courseID, reqData.Hidden)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to update course visibility!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course visibility updated!", course)
}

func CreateCategory(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCategory").(*validators.CategoryRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	category, err := services.SaveCategory(database.Database.Db, 0, reqData.Name, reqData.Description)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to create category!")
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Category created successfully!", category)
}

func UpdateCategory(c *fiber.Ctx) error {
	categoryID, ok := paramID(c, "id")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid category ID!", nil)
	}
	reqData, ok := c.Locals("validatedCategory").(*validators.CategoryRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	category, err := services.SaveCategory(database.Database.Db, categoryID, reqData.Name, reqData.Description)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to update category!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Category updated successfully!", category)
}

func DeleteCategory(c *fiber.Ctx) error {
	categoryID, ok := paramID(c, "id")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid category ID!", nil)
	}

	if err := services.DeleteCategory(database.Database.Db, categoryID); err != nil {
		return middleware.ErrorResponse(c, err, "Failed to delete category!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Category deleted successfully!", nil)
}

func AdminListReviews(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedReviewList").(*adminValidator.ReviewListQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	page := utils.Paginate(reqData.Page, reqData.Limit)

	var hidden *bool
	if reqData.Hidden != "" {
		h := reqData.Hidden == "true"
		hidden = &h
	}

	reviews, total, err := services.ListReviews(database.Database.Db, reqData.CourseID, hidden, true, page)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch reviews!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Reviews fetched successfully!", fiber.Map{
		"reviews":    reviews,
		"pagination": page.Meta(total),
	})
}

func SetReviewHidden(c *fiber.Ctx) error {
	reviewID, ok := paramID(c, "id")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid review ID!", nil)
	}
	reqData, ok := c.Locals("validatedHide").(*validators.HideRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	review, err := services.SetReviewHidden(database.Database.Db, reviewID, reqData.Hidden)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to update review!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Review visibility updated!", review)
}
