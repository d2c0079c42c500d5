package models

import (
	"time"

	"gorm.io/gorm"

	domain "vestra/internal/errors"
)

// WalletKind distinguishes the three buckets every user owns.
type WalletKind string

const (
	WalletKindMain   WalletKind = "main"   // spendable principal
	WalletKindProfit WalletKind = "profit" // accrued yield
	WalletKindBonus  WalletKind = "bonus"  // promotional credit
)

// WalletKinds lists the buckets provisioned for every account.
var WalletKinds = []WalletKind{WalletKindMain, WalletKindProfit, WalletKindBonus}

func (k WalletKind) Valid() bool {
	return k == WalletKindMain || k == WalletKindProfit || k == WalletKindBonus
}

// Wallet statuses.
const (
	WalletStatusActive    = "active"
	WalletStatusSuspended = "suspended"
	WalletStatusLocked    = "locked"
)

// Wallet holds the balances for one (user, kind) pair, one balance per currency.
// Balances are only ever mutated through the ledger service, which serialises
// access with a per-wallet lock; the entity methods enforce the non-negative
// invariant that everything else depends on.
type Wallet struct {
	ID                uint       `gorm:"primarykey" json:"id"`
	UserID            uint       `gorm:"not null;uniqueIndex:idx_wallets_user_kind" json:"user_id"`
	Kind              WalletKind `gorm:"type:varchar(16);not null;uniqueIndex:idx_wallets_user_kind" json:"kind"`
	Balances          BalanceMap `gorm:"type:jsonb" json:"balances"`
	TotalDeposits     BalanceMap `gorm:"type:jsonb" json:"total_deposits"`
	TotalWithdrawals  BalanceMap `gorm:"type:jsonb" json:"total_withdrawals"`
	TotalInvestments  BalanceMap `gorm:"type:jsonb" json:"total_investments"`
	TotalEarnings     BalanceMap `gorm:"type:jsonb" json:"total_earnings"`
	TotalBonuses      BalanceMap `gorm:"type:jsonb" json:"total_bonuses"`
	LastTransactionAt *time.Time `json:"last_transaction_at,omitempty"`
	Status            string     `gorm:"type:varchar(16);default:'active'" json:"status"`
	StatusReason      string     `gorm:"default:''" json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"-"`
}

func (w *Wallet) BeforeCreate(tx *gorm.DB) error {
	// New wallets start at zero in every currency regardless of what the caller set.
	w.Balances = NewBalanceMap()
	if w.TotalDeposits == nil {
		w.TotalDeposits = NewBalanceMap()
	}
	if w.TotalWithdrawals == nil {
		w.TotalWithdrawals = NewBalanceMap()
	}
	if w.TotalInvestments == nil {
		w.TotalInvestments = NewBalanceMap()
	}
	if w.TotalEarnings == nil {
		w.TotalEarnings = NewBalanceMap()
	}
	if w.TotalBonuses == nil {
		w.TotalBonuses = NewBalanceMap()
	}
	return nil
}

// BalanceOf returns the current balance in the given currency.
func (w *Wallet) BalanceOf(currency Currency) Money {
	return NewMoney(w.Balances[currency], currency)
}

// Credit increases the matching balance. The amount must be strictly positive.
func (w *Wallet) Credit(amount Money) error {
	if !amount.Currency.Valid() || !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	if w.Balances == nil {
		w.Balances = NewBalanceMap()
	}
	w.Balances[amount.Currency] += amount.Amount
	w.touch()
	return nil
}

// Debit decreases the matching balance. A balance never goes negative.
func (w *Wallet) Debit(amount Money) error {
	if !amount.Currency.Valid() || !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	if w.Balances[amount.Currency] < amount.Amount {
		return domain.ErrInsufficientFunds
	}
	w.Balances[amount.Currency] -= amount.Amount
	w.touch()
	return nil
}

func (w *Wallet) touch() {
	now := time.Now().UTC()
	w.LastTransactionAt = &now
}

// CanDebit reports whether funds may leave this wallet at all.
func (w *Wallet) CanDebit() bool {
	return w.Status == WalletStatusActive
}

// CanCredit reports whether funds may enter this wallet. Suspended wallets
// still receive credits (accruals keep flowing during an administrative
// review); locked wallets do not.
func (w *Wallet) CanCredit() bool {
	return w.Status != WalletStatusLocked
}

// FormattedBalances renders every balance in major units. Derived on read,
// never stored.
func (w *Wallet) FormattedBalances() map[Currency]string {
	out := make(map[Currency]string, len(Currencies))
	for _, c := range Currencies {
		out[c] = w.BalanceOf(c).String()
	}
	return out
}
