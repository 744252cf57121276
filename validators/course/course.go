package courseValidator

import (
	"strings"

	"edumarket/middleware"
	"edumarket/validators/shared"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type CatalogQuery struct {
	Page       int    `query:"page" validate:"omitempty,min=1"`
	Limit      int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Keyword    string `query:"keyword" validate:"max=100"`
	CategoryID uint   `query:"category_id"`
	Level      string `query:"level" validate:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED ALL beginner intermediate advanced all"`
	MinPrice   string `query:"min_price" validate:"omitempty,numeric"`
	MaxPrice   string `query:"max_price" validate:"omitempty,numeric"`
	Sort       string `query:"sort" validate:"omitempty,oneof=newest popular rating price_asc price_desc"`
}

// Prices returns the parsed price bounds.
func (q *CatalogQuery) Prices() (min, max *decimal.Decimal) {
	if d, err := decimal.NewFromString(q.MinPrice); err == nil {
		min = &d
	}
	if d, err := decimal.NewFromString(q.MaxPrice); err == nil {
		max = &d
	}
	return min, max
}

type CourseRequest struct {
	Title            *string          `json:"title" validate:"omitempty,notblank,min=3,max=200"`
	ShortDescription *string          `json:"short_description" validate:"omitempty,max=500"`
	Description      *string          `json:"description" validate:"omitempty,max=20000"`
	CategoryID       *uint            `json:"category_id"`
	Price            *decimal.Decimal `json:"price" validate:"omitempty,gte=0,lte=100000000"`
	SalePrice        *decimal.Decimal `json:"sale_price" validate:"omitempty,gte=0"`
	ClearSalePrice   bool             `json:"clear_sale_price"`
	Level            *string          `json:"level" validate:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED ALL"`
	Language         *string          `json:"language" validate:"omitempty,min=2,max=10"`
	AccessDays       *int             `json:"access_days" validate:"omitempty,gte=0,lte=36500"`
}

type SectionRequest struct {
	Title       string `json:"title" validate:"required,notblank,max=200"`
	Description string `json:"description" validate:"max=2000"`
	OrderIndex  int    `json:"order_index" validate:"gte=0"`
}

type LessonRequest struct {
	SectionID       uint   `json:"section_id"`
	Title           string `json:"title" validate:"required,notblank,max=200"`
	ContentType     string `json:"content_type" validate:"omitempty,oneof=VIDEO TEXT DOCUMENT"`
	VideoURL        string `json:"video_url" validate:"omitempty,url,max=1000"`
	TextContent     string `json:"text_content"`
	DocumentURL     string `json:"document_url" validate:"omitempty,url,max=1000"`
	DurationSeconds int    `json:"duration_seconds" validate:"gte=0"`
	IsPreview       bool   `json:"is_preview"`
	OrderIndex      int    `json:"order_index" validate:"gte=0"`
}

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,notblank,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

type SubmitForReviewRequest struct {
	Note string `json:"note" validate:"max=2000"`
}

type InstructorCourseQuery struct {
	Status string `query:"status" validate:"omitempty,oneof=DRAFT PENDING_REVIEW PUBLISHED REJECTED HIDDEN"`
}

func CourseList() fiber.Handler {
	return shared.Query("validatedCatalog", func() interface{} { return new(CatalogQuery) })
}

// CreateCourse requires title and price on top of the shared course rules.
func CreateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CourseRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := shared.Struct(reqData)
		if errors == nil {
			errors = make(map[string]string)
		}
		if reqData.Title == nil || strings.TrimSpace(*reqData.Title) == "" {
			errors["title"] = "title is a required field"
		}
		if reqData.Price == nil {
			errors["price"] = "price is a required field"
		}
		if reqData.Price != nil && reqData.SalePrice != nil && reqData.SalePrice.GreaterThan(*reqData.Price) {
			errors["sale_price"] = "sale_price must not exceed price"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

func UpdateCourse() fiber.Handler {
	return shared.Body("validatedCourse", func() interface{} { return new(CourseRequest) })
}

func Section() fiber.Handler {
	return shared.Body("validatedSection", func() interface{} { return new(SectionRequest) })
}

func Lesson() fiber.Handler {
	return shared.Body("validatedLesson", func() interface{} { return new(LessonRequest) })
}

func Category() fiber.Handler {
	return shared.Body("validatedCategory", func() interface{} { return new(CategoryRequest) })
}

func SubmitForReview() fiber.Handler {
	return shared.Body("validatedSubmitReview", func() interface{} { return new(SubmitForReviewRequest) })
}

func InstructorCourses() fiber.Handler {
	return shared.Query("validatedInstructorCourses", func() interface{} { return new(InstructorCourseQuery) })
}

func Page() fiber.Handler {
	return shared.Query("validatedPage", func() interface{} { return new(shared.PageQuery) })
}
