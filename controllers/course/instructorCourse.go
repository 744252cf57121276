package controllers

import (
	"edumarket/config"
	"edumarket/database"
	"edumarket/middleware"
	"edumarket/services"
	"edumarket/utils"
	validators "edumarket/validators/course"
	"edumarket/validators/shared"

	"github.com/gofiber/fiber/v2"
)

func courseInput(req *validators.CourseRequest) services.CourseInput {
	return services.CourseInput{
		Title:            req.Title,
		ShortDescription: req.ShortDescription,
		Description:      req.Description,
		CategoryID:       req.CategoryID,
		Price:            req.Price,
		SalePrice:        req.SalePrice,
		ClearSalePrice:   req.ClearSalePrice,
		Level:            req.Level,
		Language:         req.Language,
		AccessDays:       req.AccessDays,
	}
}

func CreateCourse(c *fiber.Ctx) error {
	userId, _ := middleware.CurrentUser(c)

	reqData, ok := c.Locals("validatedCourse").(*validators.CourseRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	course, err := services.CreateCourse(database.Database.Db, userId, courseInput(reqData))
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to create course!")
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", course)
}

func UpdateCourse(c *fiber.Ctx) error {
	userId, _ := middleware.CurrentUser(c)

	courseID, ok := paramID(c, "id")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
	}
	reqData, ok := c.Locals("validatedCourse").(*validators.CourseRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	course, err := services.UpdateCourse(database.Database.Db, userId, courseID, courseInput(reqData))
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to update course!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully!", course)
}

func DeleteCourse(c *fiber.Ctx) error {
	userId, _ := middleware.CurrentUser(c)

	courseID, ok := paramID(c, "id")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
	}

	if err := services.DeleteCourse(database.Database.Db, userId, courseID); err != nil {
		return middleware.ErrorResponse(c, err, "Failed to delete course!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course deleted successfully!", nil)
}

// UploadThumbnail stores the multipart "thumbnail" image and links it to the course.
func UploadThumbnail(c *fiber.Ctx) error {
	userId, _ := middleware.CurrentUser(c)
	db := database.Database.Db

	courseID, ok := paramID(c, "id")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
	}
	if _, err := services.OwnedCourse(db, userId, courseID); err != nil {
		return middleware.ErrorResponse(c, err, "Failed to upload thumbnail!")
	}

	file, err := c.FormFile("thumbnail")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Thumbnail file is required!", nil)
	}
	if err := utils.ValidateImage(file); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, err.Error(), nil)
	}

	fileName, err := utils.SaveUploadedFile(file, config.AppConfig.UploadDir)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save thumbnail!", nil)
	}

	course, err := services.SetCourseThumbnail(db, userId, courseID, utils.GetFileURL(fileName))
	if err != nil {
		utils.RemoveUploadedFile(config.AppConfig.UploadDir, fileName)
		return middleware.ErrorResponse(c, err, "Failed to upload thumbnail!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Thumbnail uploaded successfully!", course)
}

func SubmitForReview(c *fiber.Ctx) error {
	userId, _ := middleware.CurrentUser(c)

	courseID, ok := paramID(c, "id")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
	}
	reqData, ok := c.Locals("validatedSubmitReview").(*validators.SubmitForReviewRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	approval, err := services.SubmitCourseForReview(database.Database.Db, userId, courseID, reqData.Note)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to submit course for review!")
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course submitted for review!", approval)
}

func MyCourses(c *fiber.Ctx) error {
	userId, _ := middleware.CurrentUser(c)

	reqData, ok := c.Locals("validatedInstructorCourses").(*validators.InstructorCourseQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	courses, err := services.ListInstructorCourses(database.Database.Db, userId, reqData.Status)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch courses!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", courses)
}

// GetMyCourse returns one owned course with its full curriculum.
func GetMyCourse(c *fiber.Ctx) error {
	userId, _ := middleware.CurrentUser(c)
	db := database.Database.Db

	courseID, ok := paramID(c, "id")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
	}

	course, err := services.OwnedCourse(db, userId, courseID)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch course!")
	}
	if err := services.LoadCurriculum(db, course, true); err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch course!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully!", course)
}

func CourseEnrollments(c *fiber.Ctx) error {
	userId, _ := middleware.CurrentUser(c)

	courseID, ok := paramID(c, "id")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
	}
	reqData, ok := c.Locals("validatedPage").(*shared.PageQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	page := utils.Paginate(reqData.Page, reqData.Limit)

	enrollments, total, err := services.ListCourseEnrollments(database.Database.Db, userId, courseID, page)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch enrollments!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", fiber.Map{
		"enrollments": enrollments,
		"pagination":  page.Meta(total),
	})
}

func ReplyToReview(c *fiber.Ctx) error {
	userId, _ := middleware.CurrentUser(c)

	reviewID, ok := paramID(c, "reviewId")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid review ID!", nil)
	}
	reqData, ok := c.Locals("validatedReply").(*validators.ReplyRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	review, err := services.ReplyToReview(database.Database.Db, userId, reviewID, reqData.Reply)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to reply to review!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Reply saved!", review)
}

// Sections

func sectionInput(req *validators.SectionRequest) services.SectionInput {
	return services.SectionInput{Title: req.Title, Description: req.Description, OrderIndex: req.OrderIndex}
}

func AddSection(c *fiber.Ctx) error {
	userId, _ := middleware.CurrentUser(c)

	courseID, ok := paramID(c, "id")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
	}
	reqData, ok := c.Locals("validatedSection").(*validators.SectionRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	section, err := services.AddSection(database.Database.Db, userId, courseID, sectionInput(reqData))
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to add section!")
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Section added successfully!", section)
}

func UpdateSection(c *fiber.Ctx) error {
	userId, _ := middleware.CurrentUser(c)

	courseID, ok := paramID(c, "id")
	sectionID, ok2 := paramID(c, "sectionId")
	if !ok || !ok2 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid section ID!", nil)
	}
	reqData, ok := c.Locals("validatedSection").(*validators.SectionRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	section, err := services.UpdateSection(database.Database.Db, userId, courseID, sectionID, sectionInput(reqData))
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to update section!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Section updated successfully!", section)
}

func DeleteSection(c *fiber.Ctx) error {
	userId, _ := middleware.CurrentUser(c)

	courseID, ok := paramID(c, "id")
	sectionID, ok2 := paramID(c, "sectionId")
	if !ok || !ok2 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid section ID!", nil)
	}

	if err := services.DeleteSection(database.Database.Db, userId, courseID, sectionID); err != nil {
		return middleware.ErrorResponse(c, err, "Failed to delete section!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Section deleted successfully!", nil)
}

// Lessons

func lessonInput(req *validators.LessonRequest) services.LessonInput {
	return services.LessonInput{
		SectionID:       req.SectionID,
		Title:           req.Title,
		ContentType:     req.ContentType,
		VideoURL:        req.VideoURL,
		TextContent:     req.TextContent,
		DocumentURL:     req.DocumentURL,
		DurationSeconds: req.DurationSeconds,
		IsPreview:       req.IsPreview,
		OrderIndex:      req.OrderIndex,
	}
}

func AddLesson(c *fiber.Ctx) error {
	userId, _ := middleware.CurrentUser(c)

	courseID, ok := paramID(c, "id")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
	}
	reqData, ok := c.Locals("validatedLesson").(*validators.LessonRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	lesson, err := services.AddLesson(database.Database.Db, userId, courseID, lessonInput(reqData))
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to add lesson!")
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Lesson added successfully!", lesson)
}

func UpdateLesson(c *fiber.Ctx) error {
	userId, _ := middleware.CurrentUser(c)

	courseID, ok := paramID(c, "id")
	lessonID, ok2 := paramID(c, "lessonId")
	if !ok || !ok2 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid lesson ID!", nil)
	}
	reqData, ok := c.Locals("validatedLesson").(*validators.LessonRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	lesson, err := services.UpdateLesson(database.Database.Db, userId, courseID, lessonID, lessonInput(reqData))
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to update lesson!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson updated successfully!", lesson)
}

func DeleteLesson(c *fiber.Ctx) error {
	userId, _ := middleware.CurrentUser(c)

	courseID, ok := paramID(c, "id")
	lessonID, ok2 := paramID(c, "lessonId")
	if !ok || !ok2 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid lesson ID!", nil)
	}

	if err := services.DeleteLesson(database.Database.Db, userId, courseID, lessonID); err != nil {
		return middleware.ErrorResponse(c, err, "Failed to delete lesson!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson deleted successfully!", nil)
}
