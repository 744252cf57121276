package middleware

import (
	"log"

	"edumarket/services"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse writes a failed service call. Unexpected errors are logged and answered with fallback.
func ErrorResponse(c *fiber.Ctx, err error, fallback string) error {
	status := services.HTTPStatus(err)
	if status >= fiber.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Method(), c.Path(), err)
	}
	return JsonResponse(c, status, false, services.Message(err, fallback), nil)
}
