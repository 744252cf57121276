package adminValidator

import (
	"edumarket/validators/shared"

	"github.com/gofiber/fiber/v2"
)

type UserListQuery struct {
	Page    int    `query:"page" validate:"omitempty,min=1"`
	Limit   int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Role    string `query:"role" validate:"omitempty,oneof=STUDENT INSTRUCTOR ADMIN"`
	Keyword string `query:"keyword" validate:"max=100"`
}

type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=STUDENT INSTRUCTOR ADMIN"`
}

type BlockRequest struct {
	Blocked bool `json:"blocked"`
}

type RequestListQuery struct {
	Page   int    `query:"page" validate:"omitempty,min=1"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Status string `query:"status" validate:"omitempty,oneof=PENDING APPROVED REJECTED"`
}

type WithdrawalListQuery struct {
	Page   int    `query:"page" validate:"omitempty,min=1"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Status string `query:"status" validate:"omitempty,oneof=PENDING COMPLETED FAILED"`
}

type ReviewListQuery struct {
	Page     int    `query:"page" validate:"omitempty,min=1"`
	Limit    int    `query:"limit" validate:"omitempty,min=1,max=100"`
	CourseID uint   `query:"course_id"`
	Hidden   string `query:"hidden" validate:"omitempty,oneof=true false"`
}

// UserList validates the admin user listing filters
func UserList() fiber.Handler {
	return shared.Query("validatedUserList", func() interface{} { return new(UserListQuery) })
}

func ChangeRole() fiber.Handler {
	return shared.Body("validatedChangeRole", func() interface{} { return new(ChangeRoleRequest) })
}

func Block() fiber.Handler {
	return shared.Body("validatedBlock", func() interface{} { return new(BlockRequest) })
}

// RequestList validates instructor request listing filters
func RequestList() fiber.Handler {
	return shared.Query("validatedRequestList", func() interface{} { return new(RequestListQuery) })
}

func WithdrawalList() fiber.Handler {
	return shared.Query("validatedWithdrawalList", func() interface{} { return new(WithdrawalListQuery) })
}

func ReviewList() fiber.Handler {
	return shared.Query("validatedReviewList", func() interface{} { return new(ReviewListQuery) })
}
