package userValidator

import (
	"edumarket/middleware"
	"edumarket/validators/shared"

	"github.com/gofiber/fiber/v2"
)

type UpdateProfileRequest struct {
	Name      *string `json:"name" validate:"omitempty,notblank,min=2,max=100"`
	Phone     *string `json:"phone" validate:"omitempty,max=20"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url,max=500"`
	Bio       *string `json:"bio" validate:"omitempty,max=2000"`
}

type InstructorApplicationRequest struct {
	Expertise       string `json:"expertise" validate:"required,notblank,max=255"`
	Bio             string `json:"bio" validate:"required,notblank,max=5000"`
	ExperienceYears int    `json:"experience_years" validate:"gte=0,lte=80"`
	PortfolioURL    string `json:"portfolio_url" validate:"omitempty,url,max=500"`
}

type NotificationListQuery struct {
	Page   int  `query:"page" validate:"omitempty,min=1"`
	Limit  int  `query:"limit" validate:"omitempty,min=1,max=100"`
	Unread bool `query:"unread"`
}

func UpdateProfile() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UpdateProfileRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := shared.Struct(reqData)
		if errors == nil {
			errors = make(map[string]string)
		}
		if reqData.Name == nil && reqData.Phone == nil && reqData.AvatarURL == nil && reqData.Bio == nil {
			errors["request"] = "Nothing to update!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedProfile", reqData)
		return c.Next()
	}
}

func InstructorApplication() fiber.Handler {
	return shared.Body("validatedInstructorApplication", func() interface{} { return new(InstructorApplicationRequest) })
}

func NotificationList() fiber.Handler {
	return shared.Query("validatedNotificationList", func() interface{} { return new(NotificationListQuery) })
}
