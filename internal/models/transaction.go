package models

import (
	"time"
)

// Transaction types.
const (
	TransactionTypeDeposit         = "DEPOSIT"
	TransactionTypeWithdrawal      = "WITHDRAWAL"
	TransactionTypeTransferIn      = "TRANSFER_IN"
	TransactionTypeTransferOut     = "TRANSFER_OUT"
	TransactionTypeInvestment      = "INVESTMENT"
	TransactionTypeAccrual         = "ACCRUAL"
	TransactionTypePrincipalReturn = "PRINCIPAL_RETURN"
	TransactionTypeCancelRefund    = "CANCEL_REFUND"
	TransactionTypeBonus           = "BONUS"
)

// DepositPurpose classifies what a deposit is for. An explicit enum, not a
// substring match on the description: earnings and bonus purposes drive the
// wallet's running totals.
type DepositPurpose string

const (
	PurposeFunding         DepositPurpose = "funding"
	PurposeEarnings        DepositPurpose = "earnings"
	PurposeBonus           DepositPurpose = "bonus"
	PurposePrincipalReturn DepositPurpose = "principal_return"
	PurposeRefund          DepositPurpose = "refund"
)

func (p DepositPurpose) Valid() bool {
	switch p {
	case PurposeFunding, PurposeEarnings, PurposeBonus, PurposePrincipalReturn, PurposeRefund:
		return true
	}
	return false
}

// Transaction is one immutable audit record. Every balance-affecting operation
// appends exactly one per wallet leg; rows are never updated after write.
type Transaction struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	Reference     string         `gorm:"type:varchar(64);not null;index" json:"reference"`
	UserID        uint           `gorm:"not null;index" json:"user_id"`
	WalletID      uint           `gorm:"not null;index" json:"wallet_id"`
	WalletKind    WalletKind     `gorm:"type:varchar(16);not null" json:"wallet_kind"`
	Type          string         `gorm:"type:varchar(32);not null" json:"type"`
	Purpose       DepositPurpose `gorm:"type:varchar(32);default:''" json:"purpose,omitempty"`
	Amount        int64          `gorm:"not null" json:"amount"`
	Currency      Currency       `gorm:"type:varchar(8);not null" json:"currency"`
	BalanceBefore int64          `gorm:"not null" json:"balance_before"`
	BalanceAfter  int64          `gorm:"not null" json:"balance_after"`
	Description   string         `json:"description"`
	Metadata      JSON           `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// Money returns the recorded amount as a typed value.
func (t *Transaction) Money() Money {
	return NewMoney(t.Amount, t.Currency)
}
