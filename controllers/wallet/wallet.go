package walletController

import (
	"edumarket/config"
	"edumarket/database"
	"edumarket/middleware"
	"edumarket/models"
	"edumarket/services"
	"edumarket/utils"
	adminValidator "edumarket/validators/admin"
	"edumarket/validators/shared"
	walletValidator "edumarket/validators/wallet"

	"github.com/gofiber/fiber/v2"
)

func currency() string {
	if config.AppConfig == nil || config.AppConfig.StripeCurrency == "" {
		return "usd"
	}
	return config.AppConfig.StripeCurrency
}

// GetWalletBalance returns the instructor's current earnings balance
func GetWalletBalance(c *fiber.Ctx) error {
	userId, _ := middleware.CurrentUser(c)

	balance, err := services.Balance(database.Database.Db, userId)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch balance!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Wallet balance fetched!", fiber.Map{
		"balance":  balance,
		"currency": currency(),
	})
}

// GetWalletHistory lists the caller's ledger
func GetWalletHistory(c *fiber.Ctx) error {
	userId, _ := middleware.CurrentUser(c)

	reqData, ok := c.Locals("validatedHistory").(*walletValidator.HistoryQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	page := utils.Paginate(reqData.Page, reqData.Limit)

	txns, total, err := services.ListWalletTransactions(database.Database.Db, services.WalletFilter{
		UserID: userId,
		Type:   reqData.TransactionType(),
		Status: models.TransactionStatus(reqData.Status),
	}, page)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch wallet history!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Wallet history fetched!", fiber.Map{
		"transactions": txns,
		"pagination":   page.Meta(total),
	})
}

func RequestWithdrawal(c *fiber.Ctx) error {
	userId, _ := middleware.CurrentUser(c)

	reqData, ok := c.Locals("validatedWithdraw").(*walletValidator.WithdrawRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	txn, err := services.RequestWithdrawal(database.Database.Db, userId, reqData.Amount, reqData.BankAccount)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to request withdrawal!")
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Withdrawal requested!", txn)
}

// Admin

func ListWithdrawals(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedWithdrawalList").(*adminValidator.WithdrawalListQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	page := utils.Paginate(reqData.Page, reqData.Limit)

	txns, total, err := services.ListWalletTransactions(database.Database.Db, services.WalletFilter{
		Type:   models.TransactionTypeWithdrawal,
		Status: models.TransactionStatus(reqData.Status),
	}, page)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch withdrawals!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Withdrawals fetched!", fiber.Map{
		"transactions": txns,
		"pagination":   page.Meta(total),
	})
}

func DecideWithdrawal(c *fiber.Ctx) error {
	adminId, _ := middleware.CurrentUser(c)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid transaction ID!", nil)
	}
	reqData, ok := c.Locals("validatedDecision").(*shared.DecisionRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	txn, err := services.DecideWithdrawal(database.Database.Db, adminId, uint(id), reqData.Approve, reqData.Note)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to process withdrawal!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Withdrawal processed!", txn)
}

// AdjustBalance applies a manual credit or debit to a user's earnings
func AdjustBalance(c *fiber.Ctx) error {
	adminId, _ := middleware.CurrentUser(c)

	reqData, ok := c.Locals("validatedAdjust").(*walletValidator.AdjustRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	txn, err := services.AdjustBalance(database.Database.Db, adminId, reqData.UserID, reqData.Amount, reqData.Reason)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to adjust balance!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Balance adjusted!", txn)
}

// GetUserWalletHistory lists the ledger of any user
func GetUserWalletHistory(c *fiber.Ctx) error {
	id, err := c.ParamsInt("userId")
	if err != nil || id <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid user ID!", nil)
	}
	reqData, ok := c.Locals("validatedHistory").(*walletValidator.HistoryQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	page := utils.Paginate(reqData.Page, reqData.Limit)
	db := database.Database.Db

	balance, err := services.Balance(db, uint(id))
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch wallet!")
	}
	txns, total, err := services.ListWalletTransactions(db, services.WalletFilter{
		UserID: uint(id),
		Type:   reqData.TransactionType(),
		Status: models.TransactionStatus(reqData.Status),
	}, page)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch wallet history!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Wallet history fetched!", fiber.Map{
		"balance":      balance,
		"transactions": txns,
		"pagination":   page.Meta(total),
	})
}
