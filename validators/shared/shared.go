package shared

import (
	"reflect"
	"strings"

	"edumarket/middleware"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

var (
	Validate   *validator.Validate
	Translator ut.Translator

	notBlankTag = "notblank"
)

func init() {
	Validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	Translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(Validate, Translator)

	// Use JSON tag names for errors instead of Go struct names.
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("query"), ",", 2)[0]
		}
		return name
	})

	// validate decimals by their float value so gte/lte tags work on money fields
	Validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
		if d, ok := v.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	_ = Validate.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
		if str, ok := fl.Field().Interface().(string); ok {
			return strings.TrimSpace(str) != ""
		}
		return false
	})
	_ = Validate.RegisterTranslation(notBlankTag, Translator,
		func(ut.Translator) error { return nil },
		func(_ ut.Translator, fe validator.FieldError) string { return fe.Field() + " cannot be blank" })
}

// Struct validates s and returns field errors keyed by JSON name.
func Struct(s interface{}) map[string]string {
	err := Validate.Struct(s)
	if err == nil {
		return nil
	}
	fields := make(map[string]string)
	if vErrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range vErrs {
			fields[fe.Field()] = fe.Translate(Translator)
		}
		return fields
	}
	fields["request"] = err.Error()
	return fields
}

// Body parses the JSON body into req, validates it and stores it under key.
func Body(key string, newReq func() interface{}) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := newReq()
		if err := c.BodyParser(req); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if errs := Struct(req); len(errs) > 0 {
			return middleware.ValidationErrorResponse(c, errs)
		}
		c.Locals(key, req)
		return c.Next()
	}
}

// Query parses query parameters into req, validates it and stores it under key.
func Query(key string, newReq func() interface{}) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := newReq()
		if err := c.QueryParser(req); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}
		if errs := Struct(req); len(errs) > 0 {
			return middleware.ValidationErrorResponse(c, errs)
		}
		c.Locals(key, req)
		return c.Next()
	}
}

// PageQuery is the common page/limit query.
type PageQuery struct {
	Page  int `query:"page" validate:"omitempty,min=1"`
	Limit int `query:"limit" validate:"omitempty,min=1,max=100"`
}

// DecisionRequest is the body of every admin approve/reject endpoint.
type DecisionRequest struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note" validate:"max=2000"`
}

// Decision validates a DecisionRequest. Rejections need a note.
func Decision() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(DecisionRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := Struct(reqData)
		if errors == nil {
			errors = make(map[string]string)
		}
		if !reqData.Approve && strings.TrimSpace(reqData.Note) == "" {
			errors["note"] = "A reason is required when rejecting!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedDecision", reqData)
		return c.Next()
	}
}
