// Package verification implements the confirmation-code flow used for login,
// password reset and email verification: short-lived numeric codes with
// attempt counting and a resend cooldown. Verification fails closed.
package verification

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	domain "vestra/internal/errors"
	"vestra/internal/models"
	"vestra/internal/repositories"
)

// Config holds tunables for code generation.
type Config struct {
	CodeLength     int
	TTL            time.Duration
	MaxAttempts    int
	ResendCooldown time.Duration
}

// Default configuration values.
const (
	DefaultCodeLength     = 6
	DefaultTTL            = 10 * time.Minute
	DefaultMaxAttempts    = 3
	DefaultResendCooldown = 1 * time.Minute
)

type Service interface {
	// Generate issues a fresh code for (identifier, type), invalidating any
	// prior unconsumed codes for the same pair.
	Generate(ctx context.Context, identifier, codeType string) (*models.VerificationCode, error)

	// Verify consumes a code. Expired or attempt-exhausted codes are deleted
	// and rejected; a mismatch counts an attempt before the failure returns.
	Verify(ctx context.Context, identifier, codeType, code string) error
}

type service struct {
	repo   repositories.VerificationRepository
	config Config
	now    func() time.Time
}

// NewService creates the verification service.
func NewService(repo repositories.VerificationRepository, config Config) Service {
	if repo == nil {
		panic("repo is required")
	}
	if config.CodeLength <= 0 {
		config.CodeLength = DefaultCodeLength
	}
	if config.TTL <= 0 {
		config.TTL = DefaultTTL
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultMaxAttempts
	}
	if config.ResendCooldown <= 0 {
		config.ResendCooldown = DefaultResendCooldown
	}
	return &service{repo: repo, config: config, now: time.Now}
}

func (s *service) Generate(ctx context.Context, identifier, codeType string) (*models.VerificationCode, error) {
	now := s.now().UTC()

	if prior, err := s.repo.GetLatest(identifier, codeType); err == nil {
		if now.Sub(prior.CreatedAt) < s.config.ResendCooldown {
			return nil, domain.ErrResendCooldown
		}
	}

	if err := s.repo.DeleteUnconsumed(identifier, codeType); err != nil {
		return nil, err
	}

	value, err := randomCode(s.config.CodeLength)
	if err != nil {
		return nil, err
	}
	code := &models.VerificationCode{
		Identifier:  identifier,
		Code:        value,
		Type:        codeType,
		ExpiresAt:   now.Add(s.config.TTL),
		MaxAttempts: s.config.MaxAttempts,
		CreatedAt:   now,
	}
	if err := s.repo.Create(code); err != nil {
		return nil, err
	}
	return code, nil
}

func (s *service) Verify(ctx context.Context, identifier, codeType, code string) error {
	record, err := s.repo.GetLatest(identifier, codeType)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	if record.Expired(now) {
		s.repo.Delete(record.ID)
		return domain.ErrCodeExpired
	}
	if record.Exhausted() {
		s.repo.Delete(record.ID)
		return domain.ErrTooManyAttempts
	}

	if record.Code != code {
		record.Attempts++
		if record.Exhausted() {
			s.repo.Delete(record.ID)
		} else if err := s.repo.Update(record); err != nil {
			return err
		}
		return domain.ErrCodeInvalid
	}

	record.IsUsed = true
	return s.repo.Update(record)
}

// randomCode produces a zero-padded numeric code of the given length.
func randomCode(length int) (string, error) {
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", length, n), nil
}
