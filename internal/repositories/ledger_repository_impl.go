package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "vestra/internal/errors"
	"vestra/internal/models"
)

type ledgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository returns a gorm-backed LedgerRepository.
func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) CreateWallet(wallet *models.Wallet) error {
	if result := r.db.Create(wallet); result.Error != nil {
		return fmt.Errorf("failed to create wallet: %w", result.Error)
	}
	return nil
}

func (r *ledgerRepository) GetWalletByID(id uint) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.First(&wallet, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

func (r *ledgerRepository) GetWallet(userID uint, kind models.WalletKind) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.db.Where("user_id = ? AND kind = ?", userID, kind).First(&wallet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

func (r *ledgerRepository) GetOrCreateWallet(userID uint, kind models.WalletKind) (*models.Wallet, error) {
	wallet, err := r.GetWallet(userID, kind)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, domain.ErrWalletNotFound) {
		return nil, err
	}

	wallet = &models.Wallet{UserID: userID, Kind: kind, Status: models.WalletStatusActive}
	// Another request may provision the same wallet concurrently; the unique
	// (user_id, kind) index decides the winner and we re-read on conflict.
	err = r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "kind"}},
		DoNothing: true,
	}).Create(wallet).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}
	if wallet.ID == 0 {
		return r.GetWallet(userID, kind)
	}
	return wallet, nil
}

func (r *ledgerRepository) CreateDefaultWallets(userID uint) ([]*models.Wallet, error) {
	wallets := make([]*models.Wallet, 0, len(models.WalletKinds))
	for _, kind := range models.WalletKinds {
		wallet, err := r.GetOrCreateWallet(userID, kind)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, wallet)
	}
	return wallets, nil
}

func (r *ledgerRepository) UpdateWallet(wallet *models.Wallet) error {
	if result := r.db.Save(wallet); result.Error != nil {
		return fmt.Errorf("failed to update wallet: %w", result.Error)
	}
	return nil
}

func (r *ledgerRepository) UpdateWalletStatus(id uint, status, reason string) error {
	result := r.db.Model(&models.Wallet{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "status_reason": reason})
	if result.Error != nil {
		return fmt.Errorf("failed to update wallet status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrWalletNotFound
	}
	return nil
}

func (r *ledgerRepository) ListWallets(userID uint) ([]*models.Wallet, error) {
	var wallets []*models.Wallet
	if err := r.db.Where("user_id = ?", userID).Order("kind ASC").Find(&wallets).Error; err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	return wallets, nil
}

func (r *ledgerRepository) GetPlan(id uint) (*models.Plan, error) {
	var plan models.Plan
	if err := r.db.First(&plan, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return &plan, nil
}

func (r *ledgerRepository) ListActivePlans() ([]*models.Plan, error) {
	var plans []*models.Plan
	err := r.db.Where("status = ?", models.PlanStatusActive).Order("id ASC").Find(&plans).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return plans, nil
}

func (r *ledgerRepository) CreateInvestment(inv *models.Investment) error {
	if result := r.db.Create(inv); result.Error != nil {
		return fmt.Errorf("failed to create investment: %w", result.Error)
	}
	return nil
}

func (r *ledgerRepository) GetInvestment(id uint) (*models.Investment, error) {
	var inv models.Investment
	if err := r.db.First(&inv, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvestmentNotFound
		}
		return nil, fmt.Errorf("failed to get investment: %w", err)
	}
	return &inv, nil
}

func (r *ledgerRepository) UpdateInvestment(inv *models.Investment) error {
	if result := r.db.Save(inv); result.Error != nil {
		return fmt.Errorf("failed to update investment: %w", result.Error)
	}
	return nil
}

func (r *ledgerRepository) ListInvestmentsByUser(userID uint, statuses ...string) ([]*models.Investment, error) {
	query := r.db.Where("user_id = ?", userID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	var investments []*models.Investment
	if err := query.Order("id DESC").Find(&investments).Error; err != nil {
		return nil, fmt.Errorf("failed to list investments: %w", err)
	}
	return investments, nil
}

func (r *ledgerRepository) ListDueInvestments(now time.Time, limit int) ([]*models.Investment, error) {
	var investments []*models.Investment
	err := r.db.
		Where("status = ? AND next_accrual_at IS NOT NULL AND next_accrual_at <= ?",
			models.InvestmentStatusActive, now).
		Order("next_accrual_at ASC").
		Limit(limit).
		Find(&investments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list due investments: %w", err)
	}
	return investments, nil
}

func (r *ledgerRepository) CreateTransaction(tx *models.Transaction) error {
	if result := r.db.Create(tx); result.Error != nil {
		return fmt.Errorf("failed to create transaction: %w", result.Error)
	}
	return nil
}

func (r *ledgerRepository) ListTransactions(ctx context.Context, userID uint, limit, offset int) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txs, nil
}

func (r *ledgerRepository) ExecuteInTransaction(fn func(LedgerRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&ledgerRepository{db: tx})
	})
}
