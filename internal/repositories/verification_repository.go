package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	domain "vestra/internal/errors"
	"vestra/internal/models"
)

// VerificationRepository stores short-lived confirmation codes.
type VerificationRepository interface {
	Create(code *models.VerificationCode) error
	GetLatest(identifier, codeType string) (*models.VerificationCode, error)
	Update(code *models.VerificationCode) error
	Delete(id uint) error
	DeleteUnconsumed(identifier, codeType string) error
}

type verificationRepository struct {
	db *gorm.DB
}

func NewVerificationRepository(db *gorm.DB) VerificationRepository {
	return &verificationRepository{db: db}
}

func (r *verificationRepository) Create(code *models.VerificationCode) error {
	if result := r.db.Create(code); result.Error != nil {
		return fmt.Errorf("failed to create verification code: %w", result.Error)
	}
	return nil
}

// GetLatest returns the newest unconsumed code for (identifier, type).
func (r *verificationRepository) GetLatest(identifier, codeType string) (*models.VerificationCode, error) {
	var code models.VerificationCode
	err := r.db.
		Where("identifier = ? AND type = ? AND is_used = ?", identifier, codeType, false).
		Order("created_at DESC").
		First(&code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCodeNotFound
		}
		return nil, fmt.Errorf("failed to get verification code: %w", err)
	}
	return &code, nil
}

func (r *verificationRepository) Update(code *models.VerificationCode) error {
	if result := r.db.Save(code); result.Error != nil {
		return fmt.Errorf("failed to update verification code: %w", result.Error)
	}
	return nil
}

func (r *verificationRepository) Delete(id uint) error {
	if result := r.db.Delete(&models.VerificationCode{}, id); result.Error != nil {
		return fmt.Errorf("failed to delete verification code: %w", result.Error)
	}
	return nil
}

func (r *verificationRepository) DeleteUnconsumed(identifier, codeType string) error {
	result := r.db.
		Where("identifier = ? AND type = ? AND is_used = ?", identifier, codeType, false).
		Delete(&models.VerificationCode{})
	if result.Error != nil {
		return fmt.Errorf("failed to invalidate verification codes: %w", result.Error)
	}
	return nil
}
