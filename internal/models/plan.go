package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Plan statuses.
const (
	PlanStatusActive   = "active"
	PlanStatusInactive = "inactive"
)

// Plan is a catalog entry describing the terms an investment can be opened
// under. The engine reads plans, it never writes them; later catalog edits do
// not touch contracts already opened (snapshot semantics).
type Plan struct {
	ID                    uint            `gorm:"primarykey" json:"id"`
	Name                  string          `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Currency              Currency        `gorm:"type:varchar(8);not null;default:'NGN'" json:"currency"`
	DailyRate             decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"daily_rate"`
	TotalRateCap          decimal.Decimal `gorm:"type:decimal(6,2);not null" json:"total_rate_cap"`
	DurationDays          int             `gorm:"not null" json:"duration_days"`
	MinAmount             int64           `gorm:"not null" json:"min_amount"`
	MaxAmount             int64           `gorm:"not null" json:"max_amount"`
	EarlyWithdrawalPenalty decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"early_withdrawal_penalty"`
	WelcomeBonusPercent   decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"welcome_bonus_percent"`
	ReferralBonusPercent  decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"referral_bonus_percent"`
	Compounding           bool            `gorm:"default:false" json:"compounding"`
	Status                string          `gorm:"type:varchar(16);default:'active'" json:"status"`
	CreatedAt             time.Time       `json:"-"`
	UpdatedAt             time.Time       `json:"-"`
}

func (p *Plan) IsActive() bool {
	return p.Status == PlanStatusActive
}

// InRange reports whether a principal is within the plan's amount bounds.
func (p *Plan) InRange(principal Money) bool {
	return principal.Currency == p.Currency &&
		principal.Amount >= p.MinAmount &&
		principal.Amount <= p.MaxAmount
}

// Snapshot copies the committed terms onto an investment. The copy is immutable
// for the life of the contract.
func (p *Plan) Snapshot() PlanSnapshot {
	return PlanSnapshot{
		PlanID:                 p.ID,
		Name:                   p.Name,
		DailyRate:              p.DailyRate,
		TotalRateCap:           p.TotalRateCap,
		DurationDays:           p.DurationDays,
		MinAmount:              p.MinAmount,
		MaxAmount:              p.MaxAmount,
		EarlyWithdrawalPenalty: p.EarlyWithdrawalPenalty,
		Compounding:            p.Compounding,
	}
}

// PlanSnapshot is the immutable copy of plan terms captured at investment
// creation time, embedded in the investments table.
type PlanSnapshot struct {
	PlanID                 uint            `json:"plan_id"`
	Name                   string          `gorm:"size:50" json:"name"`
	DailyRate              decimal.Decimal `gorm:"type:decimal(5,2)" json:"daily_rate"`
	TotalRateCap           decimal.Decimal `gorm:"type:decimal(6,2)" json:"total_rate_cap"`
	DurationDays           int             `json:"duration_days"`
	MinAmount              int64           `json:"min_amount"`
	MaxAmount              int64           `json:"max_amount"`
	EarlyWithdrawalPenalty decimal.Decimal `gorm:"type:decimal(5,2)" json:"early_withdrawal_penalty"`
	Compounding            bool            `json:"compounding"`
}
