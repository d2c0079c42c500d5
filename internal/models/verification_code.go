package models

import "time"

// Verification code types.
const (
	CodeTypeLogin             = "login"
	CodeTypePasswordReset     = "password_reset"
	CodeTypeEmailVerification = "email_verification"
)

// VerificationCode is a short-lived numeric code bound to an identifier
// (email or phone) and a purpose. Regenerating invalidates earlier unconsumed
// codes for the same (identifier, type); expired or attempt-exhausted codes are
// deleted on the next verify.
type VerificationCode struct {
	ID          uint      `gorm:"primarykey"`
	Identifier  string    `gorm:"type:varchar(191);not null;index:idx_codes_identifier_type"`
	Code        string    `gorm:"type:varchar(12);not null"`
	Type        string    `gorm:"type:varchar(32);not null;index:idx_codes_identifier_type"`
	ExpiresAt   time.Time `gorm:"not null"`
	Attempts    int       `gorm:"not null;default:0"`
	MaxAttempts int       `gorm:"not null;default:3"`
	IsUsed      bool      `gorm:"not null;default:false"`
	CreatedAt   time.Time
}

func (c *VerificationCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

func (c *VerificationCode) Exhausted() bool {
	return c.Attempts >= c.MaxAttempts
}
