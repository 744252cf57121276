package services

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidState   = errors.New("invalid state")
	ErrInvalidInput   = errors.New("invalid input")
	ErrVoucherInvalid = errors.New("voucher invalid")
	ErrInsufficient   = errors.New("insufficient balance")
	ErrGateway        = errors.New("payment gateway error")
	ErrUnauthorized   = errors.New("unauthorized")
)

// HTTPStatus maps a service error to the response status code.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return fiber.StatusOK
	case errors.Is(err, ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, ErrInvalidState), errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrVoucherInvalid), errors.Is(err, ErrInsufficient):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrGateway):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// Message returns the client-facing message for a service error.
func Message(err error, fallback string) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Msg
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "Record not found!"
	}
	return fallback
}

// Error is a service failure with a client-facing message.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

func notFound(msg string) error { return newError(ErrNotFound, msg) }

func conflict(msg string) error { return newError(ErrConflict, msg) }

func invalidState(msg string) error { return newError(ErrInvalidState, msg) }

func invalidInput(msg string) error { return newError(ErrInvalidInput, msg) }

func forbidden(msg string) error { return newError(ErrForbidden, msg) }

func voucherInvalid(msg string) error { return newError(ErrVoucherInvalid, msg) }
