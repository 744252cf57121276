package controllers

import (
	"strings"

	"edumarket/database"
	"edumarket/middleware"
	"edumarket/services"
	"edumarket/utils"
	validators "edumarket/validators/course"
	"edumarket/validators/shared"

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

func GetAllCourses(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCatalog").(*validators.CatalogQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	page := utils.Paginate(reqData.Page, reqData.Limit)
	minPrice, maxPrice := reqData.Prices()

	courses, total, err := services.ListPublishedCourses(database.Database.Db, services.CourseFilter{
		Keyword:    reqData.Keyword,
		CategoryID: reqData.CategoryID,
		Level:      strings.ToUpper(reqData.Level),
		MinPrice:   minPrice,
		MaxPrice:   maxPrice,
		Sort:       reqData.Sort,
	}, page)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch courses!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", fiber.Map{
		"courses":    courses,
		"pagination": page.Meta(total),
	})
}

// GetCourseDetails returns a course by id or slug. Anonymous callers and non-learners only see preview content.
func GetCourseDetails(c *fiber.Ctx) error {
	db := database.Database.Db
	userId, role := middleware.CurrentUser(c)

	course, err := services.FindCourse(db, c.Params("id"))
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch course!")
	}

	fullAccess, enrollment, err := services.CourseAccess(db, userId, role, course)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch course!")
	}
	// unpublished courses stay visible to their owner, admins and current learners
	if !course.IsPurchasable() && !fullAccess {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if err := services.LoadCurriculum(db, course, fullAccess); err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch course!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully!", fiber.Map{
		"course":          course,
		"effective_price": course.EffectivePrice(),
		"has_access":      fullAccess,
		"enrollment":      enrollment,
	})
}

func GetCategories(c *fiber.Ctx) error {
	categories, err := services.ListCategories(database.Database.Db)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch categories!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Categories fetched successfully!", categories)
}

func GetCourseReviews(c *fiber.Ctx) error {
	db := database.Database.Db

	courseID, ok := paramID(c, "id")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
	}
	reqData, ok := c.Locals("validatedPage").(*shared.PageQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	page := utils.Paginate(reqData.Page, reqData.Limit)

	reviews, total, err := services.ListReviews(db, courseID, nil, false, page)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch reviews!")
	}
	summary, err := services.CourseRatingSummary(db, courseID)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch reviews!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Reviews fetched successfully!", fiber.Map{
		"reviews":    reviews,
		"summary":    summary,
		"pagination": page.Meta(total),
	})
}
