package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionType defines the type of wallet transaction
type TransactionType string

const (
	TransactionTypeSaleEarning  TransactionType = "SALE_EARNING"
	TransactionTypeSaleReversal TransactionType = "SALE_REVERSAL"
	TransactionTypeWithdrawal   TransactionType = "WITHDRAWAL"
	TransactionTypeAdminCredit  TransactionType = "ADMIN_CREDIT"
	TransactionTypeAdminDebit   TransactionType = "ADMIN_DEBIT"
)

// TransactionStatus defines the status of a transaction
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// WalletTransaction is one entry of an instructor's earnings ledger.
type WalletTransaction struct {
	gorm.Model
	UserID          uint              `gorm:"not null;index" json:"userId"`
	TransactionType TransactionType   `gorm:"type:varchar(50);not null" json:"transactionType"`
	Amount          decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"amount"`
	BalanceBefore   decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"balanceBefore"`
	BalanceAfter    decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"balanceAfter"`
	Status          TransactionStatus `gorm:"type:varchar(20);default:'COMPLETED'" json:"status"`
	Description     string            `gorm:"type:text" json:"description"`

	// Reference details (order item for sales)
	ReferenceType string `gorm:"type:varchar(50)" json:"referenceType"` // order, withdrawal
	ReferenceID   uint   `gorm:"default:0;index" json:"referenceId"`
	ReferenceName string `gorm:"type:varchar(255)" json:"referenceName"`

	// Payout details (for withdrawals)
	BankAccount string `gorm:"type:varchar(255)" json:"bankAccount"`

	// Admin details (for manual credits/debits and withdrawal decisions)
	AdminID uint   `gorm:"default:0" json:"adminId"`
	Reason  string `gorm:"type:text" json:"reason"`

	TransactionDate time.Time `gorm:"not null" json:"transactionDate"`
	IsDeleted       bool      `gorm:"default:false" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}
