package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Investment statuses. Completed and cancelled are terminal.
const (
	InvestmentStatusActive    = "active"
	InvestmentStatusCompleted = "completed"
	InvestmentStatusCancelled = "cancelled"
	InvestmentStatusSuspended = "suspended"
)

// Investment is a single time-bound contract. Terms are the embedded plan
// snapshot, not the live catalog row; accrual progress lives in Earned and the
// two accrual timestamps.
type Investment struct {
	ID     uint   `gorm:"primarykey" json:"id"`
	UserID uint   `gorm:"not null;index" json:"user_id"`
	OrderID string `gorm:"type:varchar(64);not null;uniqueIndex" json:"order_id"`

	Plan PlanSnapshot `gorm:"embedded;embeddedPrefix:plan_" json:"plan"`

	Principal      Money `gorm:"embedded;embeddedPrefix:principal_" json:"principal"`
	Earned         Money `gorm:"embedded;embeddedPrefix:earned_" json:"earned"`
	ExpectedReturn Money `gorm:"embedded;embeddedPrefix:expected_return_" json:"expected_return"`
	WelcomeBonus   Money `gorm:"embedded;embeddedPrefix:welcome_bonus_" json:"welcome_bonus"`
	ReferralBonus  Money `gorm:"embedded;embeddedPrefix:referral_bonus_" json:"referral_bonus"`

	Status        string     `gorm:"type:varchar(16);default:'active';index" json:"status"`
	StartAt       time.Time  `gorm:"not null" json:"start_at"`
	EndAt         time.Time  `gorm:"not null" json:"end_at"`
	LastAccrualAt *time.Time `json:"last_accrual_at,omitempty"`
	NextAccrualAt *time.Time `gorm:"index" json:"next_accrual_at,omitempty"`
	AutoReinvest  bool       `gorm:"default:false" json:"auto_reinvest"`
	CancelReason  string     `gorm:"default:''" json:"cancel_reason,omitempty"`
	CreatedAt     time.Time  `json:"-"`
	UpdatedAt     time.Time  `json:"-"`
}

func (i *Investment) IsTerminal() bool {
	return i.Status == InvestmentStatusCompleted || i.Status == InvestmentStatusCancelled
}

// Due reports whether an accrual step is owed at the given instant. This is the
// idempotence guard: re-invoking accrual before NextAccrualAt is a no-op.
func (i *Investment) Due(now time.Time) bool {
	return i.Status == InvestmentStatusActive &&
		i.NextAccrualAt != nil &&
		!now.Before(*i.NextAccrualAt)
}

// Matured reports whether the contract duration has elapsed or the cap is hit.
func (i *Investment) Matured(now time.Time) bool {
	return !now.Before(i.EndAt) || i.Earned.Amount >= i.ExpectedReturn.Amount
}

func (i *Investment) CanCancel() bool {
	return i.Status == InvestmentStatusActive || i.Status == InvestmentStatusSuspended
}

func (i *Investment) CanSuspend() bool {
	return i.Status == InvestmentStatusActive
}

func (i *Investment) CanResume() bool {
	return i.Status == InvestmentStatusSuspended
}

// Progress returns earned as a fraction of the expected return, for display.
// Derived on read, never stored.
func (i *Investment) Progress() decimal.Decimal {
	if i.ExpectedReturn.Amount == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(i.Earned.Amount).
		Div(decimal.NewFromInt(i.ExpectedReturn.Amount)).
		Round(4)
}
