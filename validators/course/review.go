package courseValidator

import (
	"edumarket/validators/shared"

	"github.com/gofiber/fiber/v2"
)

type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=5000"`
}

type ReplyRequest struct {
	Reply string `json:"reply" validate:"required,notblank,max=5000"`
}

type HideRequest struct {
	Hidden bool `json:"hidden"`
}

type ProgressRequest struct {
	Completed bool `json:"completed"`
}

type ApprovalListQuery struct {
	Page   int    `query:"page" validate:"omitempty,min=1"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Status string `query:"status" validate:"omitempty,oneof=PENDING APPROVED REJECTED"`
}

func Review() fiber.Handler {
	return shared.Body("validatedReview", func() interface{} { return new(ReviewRequest) })
}

func Reply() fiber.Handler {
	return shared.Body("validatedReply", func() interface{} { return new(ReplyRequest) })
}

func Hide() fiber.Handler {
	return shared.Body("validatedHide", func() interface{} { return new(HideRequest) })
}

func Progress() fiber.Handler {
	return shared.Body("validatedProgress", func() interface{} { return new(ProgressRequest) })
}

func ApprovalList() fiber.Handler {
	return shared.Query("validatedApprovalList", func() interface{} { return new(ApprovalListQuery) })
}

type EnrollmentListQuery struct {
	Page   int    `query:"page" validate:"omitempty,min=1"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Status string `query:"status" validate:"omitempty,oneof=ACTIVE COMPLETED EXPIRED REVOKED"`
}

func EnrollmentList() fiber.Handler {
	return shared.Query("validatedEnrollmentList", func() interface{} { return new(EnrollmentListQuery) })
}
