package walletValidator

import (
	"edumarket/middleware"
	"edumarket/models"
	"edumarket/validators/shared"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type WithdrawRequest struct {
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	BankAccount string          `json:"bank_account" validate:"required,notblank,max=255"`
}

// AdjustRequest is a manual credit (positive amount) or debit (negative amount).
type AdjustRequest struct {
	UserID uint            `json:"user_id" validate:"required"`
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason" validate:"required,notblank,max=1000"`
}

type HistoryQuery struct {
	Page   int    `query:"page" validate:"omitempty,min=1"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Type   string `query:"type" validate:"omitempty,oneof=SALE_EARNING SALE_REVERSAL WITHDRAWAL ADMIN_CREDIT ADMIN_DEBIT"`
	Status string `query:"status" validate:"omitempty,oneof=PENDING COMPLETED FAILED"`
}

// Withdraw validates an instructor payout request
func Withdraw() fiber.Handler {
	return shared.Body("validatedWithdraw", func() interface{} { return new(WithdrawRequest) })
}

// Adjust validates an admin balance adjustment
func Adjust() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(AdjustRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := shared.Struct(reqData)
		if errors == nil {
			errors = make(map[string]string)
		}
		if reqData.Amount.IsZero() {
			errors["amount"] = "Amount must not be zero!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedAdjust", reqData)
		return c.Next()
	}
}

// History validates ledger listing filters
func History() fiber.Handler {
	return shared.Query("validatedHistory", func() interface{} { return new(HistoryQuery) })
}

// TransactionType returns the filter as a ledger type.
func (q *HistoryQuery) TransactionType() models.TransactionType {
	return models.TransactionType(q.Type)
}
