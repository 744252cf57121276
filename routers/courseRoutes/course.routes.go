package courseRoutes

import (
	controllers "edumarket/controllers/course"
	"edumarket/middleware"
	"edumarket/models"
	validators "edumarket/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes registers the public catalog, learner and instructor routes.
func SetupCourseRoutes(app *fiber.App) {
	courseGroup := app.Group("/course")

	// Catalog
	courseGroup.Get("/list", validators.CourseList(), controllers.GetAllCourses)
	courseGroup.Get("/categories", controllers.GetCategories)
	courseGroup.Get("/:id/reviews", validators.Page(), controllers.GetCourseReviews)
	courseGroup.Get("/:id", middleware.OptionalJWTMiddleware, controllers.GetCourseDetails)

	// Learning
	learnGroup := app.Group("/learning", middleware.JWTMiddleware, middleware.ActiveUserMiddleware)
	learnGroup.Get("/enrollments", validators.EnrollmentList(), controllers.GetMyEnrollments)
	learnGroup.Get("/courses/:id/progress", controllers.GetCourseProgress)
	learnGroup.Patch("/courses/:id/lessons/:lessonId/progress", validators.Progress(), controllers.UpdateLessonProgress)
	learnGroup.Post("/courses/:id/reviews", middleware.CheckPermissionMiddleware(models.PermReviewCourse), validators.Review(), controllers.CreateReview)
	learnGroup.Put("/reviews/:reviewId", validators.Review(), controllers.UpdateReview)
	learnGroup.Delete("/reviews/:reviewId", controllers.DeleteReview)

	// Instructor
	instructorGroup := app.Group("/instructor", middleware.JWTMiddleware, middleware.ActiveUserMiddleware,
		middleware.RequireRoles(models.RoleInstructor, models.RoleAdmin), middleware.CheckPermissionMiddleware(models.PermManageCourse))
	instructorGroup.Get("/dashboard", controllers.InstructorDashboard)
	instructorGroup.Get("/courses", validators.InstructorCourses(), controllers.MyCourses)
	instructorGroup.Post("/courses", validators.CreateCourse(), controllers.CreateCourse)
	instructorGroup.Get("/courses/:id", controllers.GetMyCourse)
	instructorGroup.Put("/courses/:id", validators.UpdateCourse(), controllers.UpdateCourse)
	instructorGroup.Delete("/courses/:id", controllers.DeleteCourse)
	instructorGroup.Post("/courses/:id/thumbnail", controllers.UploadThumbnail)
	instructorGroup.Post("/courses/:id/submit", validators.SubmitForReview(), controllers.SubmitForReview)
	instructorGroup.Get("/courses/:id/enrollments", validators.Page(), controllers.CourseEnrollments)

	instructorGroup.Post("/courses/:id/sections", validators.Section(), controllers.AddSection)
	instructorGroup.Put("/courses/:id/sections/:sectionId", validators.Section(), controllers.UpdateSection)
	instructorGroup.Delete("/courses/:id/sections/:sectionId", controllers.DeleteSection)
	instructorGroup.Post("/courses/:id/lessons", validators.Lesson(), controllers.AddLesson)
	instructorGroup.Put("/courses/:id/lessons/:lessonId", validators.Lesson(), controllers.UpdateLesson)
	instructorGroup.Delete("/courses/:id/lessons/:lessonId", controllers.DeleteLesson)

	instructorGroup.Post("/reviews/:reviewId/reply", validators.Reply(), controllers.ReplyToReview)
}
