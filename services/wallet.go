package services

import (
	"fmt"
	"time"

	"edumarket/database"
	"edumarket/models"
	"edumarket/utils"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerEntry describes a change to a user's earnings balance.
type LedgerEntry struct {
	UserID        uint
	Type          models.TransactionType
	Amount        decimal.Decimal // signed: positive credits, negative debits
	Status        models.TransactionStatus
	Description   string
	ReferenceType string
	ReferenceID   uint
	ReferenceName string
	BankAccount   string
	AdminID       uint
	Reason        string
	AllowNegative bool
}

// applyLedgerEntry updates the balance and appends the ledger row. tx must be a transaction.
func applyLedgerEntry(tx *gorm.DB, e LedgerEntry) (*models.WalletTransaction, error) {
	var user models.User
	if err := database.ForUpdate(tx).Where("id = ?", e.UserID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("User not found!")
		}
		return nil, errors.Wrap(err, "load wallet owner")
	}

	before := user.Balance
	after := before.Add(e.Amount)
	if after.IsNegative() && !e.AllowNegative {
		return nil, newError(ErrInsufficient, "Insufficient balance!")
	}

	if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Update("balance", after).Error; err != nil {
		return nil, errors.Wrap(err, "update balance")
	}

	status := e.Status
	if status == "" {
		status = models.TransactionStatusCompleted
	}
	txn := models.WalletTransaction{
		UserID:          e.UserID,
		TransactionType: e.Type,
		Amount:          e.Amount.Abs(),
		BalanceBefore:   before,
		BalanceAfter:    after,
		Status:          status,
		Description:     e.Description,
		ReferenceType:   e.ReferenceType,
		ReferenceID:     e.ReferenceID,
		ReferenceName:   e.ReferenceName,
		BankAccount:     e.BankAccount,
		AdminID:         e.AdminID,
		Reason:          e.Reason,
		TransactionDate: time.Now(),
	}
	if err := tx.Create(&txn).Error; err != nil {
		return nil, errors.Wrap(err, "create wallet transaction")
	}
	return &txn, nil
}

// AdjustBalance applies a manual admin credit (positive) or debit (negative).
func AdjustBalance(db *gorm.DB, adminID, userID uint, amount decimal.Decimal, reason string) (*models.WalletTransaction, error) {
	if amount.IsZero() {
		return nil, invalidInput("Amount must not be zero!")
	}
	kind := models.TransactionTypeAdminCredit
	if amount.IsNegative() {
		kind = models.TransactionTypeAdminDebit
	}

	var txn *models.WalletTransaction
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		txn, err = applyLedgerEntry(tx, LedgerEntry{
			UserID:      userID,
			Type:        kind,
			Amount:      amount.Round(2),
			Description: "Manual balance adjustment",
			AdminID:     adminID,
			Reason:      reason,
		})
		return err
	})
	return txn, err
}

// RequestWithdrawal reserves amount from the instructor balance as a pending payout.
func RequestWithdrawal(db *gorm.DB, userID uint, amount decimal.Decimal, bankAccount string) (*models.WalletTransaction, error) {
	if !amount.IsPositive() {
		return nil, invalidInput("Amount must be greater than 0!")
	}

	var txn *models.WalletTransaction
	err := db.Transaction(func(tx *gorm.DB) error {
		var pending int64
		if err := tx.Model(&models.WalletTransaction{}).
			Where("user_id = ? AND transaction_type = ? AND status = ?", userID, models.TransactionTypeWithdrawal, models.TransactionStatusPending).
			Count(&pending).Error; err != nil {
			return errors.Wrap(err, "count pending withdrawals")
		}
		if pending > 0 {
			return conflict("A withdrawal request is already pending!")
		}

		var err error
		txn, err = applyLedgerEntry(tx, LedgerEntry{
			UserID:        userID,
			Type:          models.TransactionTypeWithdrawal,
			Amount:        amount.Round(2).Neg(),
			Status:        models.TransactionStatusPending,
			Description:   "Withdrawal request",
			ReferenceType: "withdrawal",
			BankAccount:   bankAccount,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	notifyQuietly(db, userID, NotificationInput{
		Type:    models.NotifyWithdrawal,
		Title:   "Withdrawal requested",
		Message: fmt.Sprintf("Your withdrawal of %s is waiting for approval.", txn.Amount.StringFixed(2)),
		Link:    "/instructor/wallet",
	})
	return txn, nil
}

// DecideWithdrawal completes or rejects a pending withdrawal. Rejection returns the funds.
func DecideWithdrawal(db *gorm.DB, adminID, transactionID uint, approve bool, reason string) (*models.WalletTransaction, error) {
	var txn models.WalletTransaction
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := database.ForUpdate(tx).
			Where("id = ? AND transaction_type = ?", transactionID, models.TransactionTypeWithdrawal).
			First(&txn).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("Withdrawal not found!")
			}
			return errors.Wrap(err, "load withdrawal")
		}
		if txn.Status != models.TransactionStatusPending {
			return invalidState("Withdrawal has already been processed!")
		}

		txn.AdminID = adminID
		txn.Reason = reason
		if approve {
			txn.Status = models.TransactionStatusCompleted
		} else {
			txn.Status = models.TransactionStatusFailed
			if _, err := applyLedgerEntry(tx, LedgerEntry{
				UserID:        txn.UserID,
				Type:          models.TransactionTypeAdminCredit,
				Amount:        txn.Amount,
				Description:   "Withdrawal rejected, funds returned",
				ReferenceType: "withdrawal",
				ReferenceID:   txn.ID,
				AdminID:       adminID,
				Reason:        reason,
			}); err != nil {
				return err
			}
		}
		return tx.Save(&txn).Error
	})
	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Your withdrawal of %s has been paid out.", txn.Amount.StringFixed(2))
	if !approve {
		msg = fmt.Sprintf("Your withdrawal of %s was rejected: %s", txn.Amount.StringFixed(2), reason)
	}
	notifyQuietly(db, txn.UserID, NotificationInput{
		Type:    models.NotifyWithdrawal,
		Title:   "Withdrawal update",
		Message: msg,
		Link:    "/instructor/wallet",
	})
	return &txn, nil
}

// WalletFilter narrows ledger listings. Zero values mean no filter.
type WalletFilter struct {
	UserID uint
	Type   models.TransactionType
	Status models.TransactionStatus
}

// ListWalletTransactions returns one page of ledger rows, newest first.
func ListWalletTransactions(db *gorm.DB, f WalletFilter, p utils.Pagination) ([]models.WalletTransaction, int64, error) {
	q := db.Model(&models.WalletTransaction{}).Where("is_deleted = ?", false)
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Type != "" {
		q = q.Where("transaction_type = ?", f.Type)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count wallet transactions")
	}
	var txns []models.WalletTransaction
	if err := q.Order("id DESC").Offset(p.Offset).Limit(p.Limit).Find(&txns).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list wallet transactions")
	}
	return txns, total, nil
}

// Balance returns the current earnings balance of userID.
func Balance(db *gorm.DB, userID uint) (decimal.Decimal, error) {
	var user models.User
	if err := db.Select("id", "balance").Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, notFound("User not found!")
		}
		return decimal.Zero, errors.Wrap(err, "load balance")
	}
	return user.Balance, nil
}
