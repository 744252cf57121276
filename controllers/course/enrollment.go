package controllers

import (
	"edumarket/database"
	"edumarket/middleware"
	"edumarket/services"
	"edumarket/utils"
	validators "edumarket/validators/course"

	"github.com/gofiber/fiber/v2"
)

func GetMyEnrollments(c *fiber.Ctx) error {
	userId, _ := middleware.CurrentUser(c)

	reqData, ok := c.Locals("validatedEnrollmentList").(*validators.EnrollmentListQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	page := utils.Paginate(reqData.Page, reqData.Limit)

	enrollments, total, err := services.ListEnrollments(database.Database.Db, userId, reqData.Status, page)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch enrollments!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", fiber.Map{
		"enrollments": enrollments,
		"pagination":  page.Meta(total),
	})
}

func GetCourseProgress(c *fiber.Ctx) error {
	userId, _ := middleware.CurrentUser(c)

	courseID, ok := paramID(c, "id")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
	}

	enrollment, lessons, err := services.CourseProgress(database.Database.Db, userId, courseID)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch progress!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", fiber.Map{
		"enrollment": enrollment,
		"lessons":    lessons,
	})
}

func UpdateLessonProgress(c *fiber.Ctx) error {
	userId, _ := middleware.CurrentUser(c)

	courseID, ok := paramID(c, "id")
	lessonID, ok2 := paramID(c, "lessonId")
	if !ok || !ok2 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid lesson ID!", nil)
	}
	reqData, ok := c.Locals("validatedProgress").(*validators.ProgressRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	enrollment, err := services.SetLessonCompletion(database.Database.Db, userId, courseID, lessonID, reqData.Completed)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to update progress!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress updated successfully!", enrollment)
}

func CreateReview(c *fiber.Ctx) error {
	userId, _ := middleware.CurrentUser(c)

	courseID, ok := paramID(c, "id")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
	}
	reqData, ok := c.Locals("validatedReview").(*validators.ReviewRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	review, err := services.CreateReview(database.Database.Db, userId, courseID, reqData.Rating, reqData.Comment)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to submit review!")
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Review submitted successfully!", review)
}

func UpdateReview(c *fiber.Ctx) error {
	userId, _ := middleware.CurrentUser(c)

	reviewID, ok := paramID(c, "reviewId")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid review ID!", nil)
	}
	reqData, ok := c.Locals("validatedReview").(*validators.ReviewRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	review, err := services.UpdateReview(database.Database.Db, userId, reviewID, reqData.Rating, reqData.Comment)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to update review!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Review updated successfully!", review)
}

func DeleteReview(c *fiber.Ctx) error {
	userId, _ := middleware.CurrentUser(c)

	reviewID, ok := paramID(c, "reviewId")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid review ID!", nil)
	}

	if err := services.DeleteReview(database.Database.Db, userId, reviewID); err != nil {
		return middleware.ErrorResponse(c, err, "Failed to delete review!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Review deleted successfully!", nil)
}
