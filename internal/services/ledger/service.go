package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	domain "vestra/internal/errors"
	"vestra/internal/models"
	"vestra/internal/repositories"
)

// Service is the ledger façade: every externally invoked action that moves
// money or mutates an investment goes through here, under per-entity locks.
type Service interface {
	// Wallet provisioning and reads.
	ProvisionWallets(ctx context.Context, userID uint) ([]*models.Wallet, error)
	GetWallet(ctx context.Context, userID uint, kind models.WalletKind) (*models.Wallet, error)
	ListWallets(ctx context.Context, userID uint) ([]*models.Wallet, error)
	ListTransactions(ctx context.Context, userID uint, limit, offset int) ([]models.Transaction, error)
	ListPlans(ctx context.Context) ([]*models.Plan, error)

	// Balance movements.
	Deposit(ctx context.Context, userID uint, kind models.WalletKind, amount models.Money, purpose models.DepositPurpose, description string) error
	Withdraw(ctx context.Context, userID uint, kind models.WalletKind, amount models.Money) error
	Transfer(ctx context.Context, userID uint, fromKind, toKind models.WalletKind, amount models.Money) error

	// Investment lifecycle.
	Invest(ctx context.Context, userID, planID uint, principal models.Money, autoReinvest bool) (*models.Investment, error)
	Cancel(ctx context.Context, investmentID uint, reason string) (*models.Investment, error)
	Complete(ctx context.Context, investmentID uint) (*models.Investment, error)
	Suspend(ctx context.Context, investmentID uint, reason string) (*models.Investment, error)
	Resume(ctx context.Context, investmentID uint) (*models.Investment, error)
	GetInvestment(ctx context.Context, investmentID uint) (*models.Investment, error)
	ListInvestments(ctx context.Context, userID uint, statuses ...string) ([]*models.Investment, error)

	// Accrual.
	AccrueOne(ctx context.Context, investmentID uint) (*models.Investment, error)
	AccrueDue(ctx context.Context) (int, error)
}

type service struct {
	repo    repositories.LedgerRepository
	cache   WalletCache
	metrics MetricsCollector
	config  Config
	locks   *lockManager
	now     func() time.Time
}

// NewService creates the ledger service.
func NewService(repo repositories.LedgerRepository, cache WalletCache, config Config, metrics MetricsCollector) Service {
	if repo == nil {
		panic("repo is required")
	}
	if cache == nil {
		cache = NoopWalletCache{}
	}
	if metrics == nil {
		metrics = NoopMetricsCollector{}
	}
	if config.LockTimeout <= 0 {
		config.LockTimeout = DefaultLockTimeout
	}
	if config.AccrualPeriod <= 0 {
		config.AccrualPeriod = DefaultAccrualPeriod
	}
	if config.DueBatchSize <= 0 {
		config.DueBatchSize = DefaultDueBatchSize
	}

	return &service{
		repo:    repo,
		cache:   cache,
		metrics: metrics,
		config:  config,
		locks:   newLockManager(config.LockTimeout),
		now:     time.Now,
	}
}

func (s *service) ProvisionWallets(ctx context.Context, userID uint) ([]*models.Wallet, error) {
	return s.repo.CreateDefaultWallets(userID)
}

func (s *service) GetWallet(ctx context.Context, userID uint, kind models.WalletKind) (*models.Wallet, error) {
	if wallet, err := s.cache.GetWallet(ctx, userID, kind); err == nil {
		return wallet, nil
	}
	wallet, err := s.repo.GetWallet(userID, kind)
	if err != nil {
		return nil, err
	}
	s.cache.CacheWallet(ctx, wallet)
	return wallet, nil
}

func (s *service) ListWallets(ctx context.Context, userID uint) ([]*models.Wallet, error) {
	return s.repo.ListWallets(userID)
}

func (s *service) ListTransactions(ctx context.Context, userID uint, limit, offset int) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.ListTransactions(ctx, userID, limit, offset)
}

func (s *service) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	return s.repo.ListActivePlans()
}

// Deposit credits the target wallet. The purpose enum classifies the deposit
// and drives the running totals; no guessing from the description.
func (s *service) Deposit(ctx context.Context, userID uint, kind models.WalletKind, amount models.Money, purpose models.DepositPurpose, description string) error {
	if !kind.Valid() {
		return domain.ErrWalletNotFound
	}
	if !amount.Currency.Valid() || !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	if !purpose.Valid() {
		purpose = models.PurposeFunding
	}

	release, err := s.locks.Acquire(ctx, walletKey(userID, kind))
	if err != nil {
		s.metrics.RecordError("deposit", errCode(err))
		return err
	}
	defer release()

	wallet, err := s.repo.GetOrCreateWallet(userID, kind)
	if err != nil {
		return err
	}
	if !wallet.CanCredit() {
		return domain.ErrWalletLocked
	}

	before := wallet.BalanceOf(amount.Currency).Amount
	if err := wallet.Credit(amount); err != nil {
		return err
	}
	wallet.TotalDeposits.Add(amount)
	switch purpose {
	case models.PurposeEarnings:
		wallet.TotalEarnings.Add(amount)
	case models.PurposeBonus:
		wallet.TotalBonuses.Add(amount)
	}

	err = s.repo.ExecuteInTransaction(func(tx repositories.LedgerRepository) error {
		if err := tx.UpdateWallet(wallet); err != nil {
			return err
		}
		return tx.CreateTransaction(&models.Transaction{
			Reference:     uuid.NewString(),
			UserID:        userID,
			WalletID:      wallet.ID,
			WalletKind:    kind,
			Type:          models.TransactionTypeDeposit,
			Purpose:       purpose,
			Amount:        amount.Amount,
			Currency:      amount.Currency,
			BalanceBefore: before,
			BalanceAfter:  wallet.BalanceOf(amount.Currency).Amount,
			Description:   description,
		})
	})
	if err != nil {
		s.metrics.RecordError("deposit", errCode(err))
		return err
	}

	s.cache.InvalidateWallet(ctx, userID, kind)
	s.metrics.RecordTransaction(models.TransactionTypeDeposit, amount)
	return nil
}

// Withdraw debits the target wallet; the balance never goes below zero.
func (s *service) Withdraw(ctx context.Context, userID uint, kind models.WalletKind, amount models.Money) error {
	if !kind.Valid() {
		return domain.ErrWalletNotFound
	}
	if !amount.Currency.Valid() || !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}

	release, err := s.locks.Acquire(ctx, walletKey(userID, kind))
	if err != nil {
		s.metrics.RecordError("withdraw", errCode(err))
		return err
	}
	defer release()

	wallet, err := s.repo.GetWallet(userID, kind)
	if err != nil {
		return err
	}
	if !wallet.CanDebit() {
		return domain.ErrWalletLocked
	}

	before := wallet.BalanceOf(amount.Currency).Amount
	if err := wallet.Debit(amount); err != nil {
		return err
	}
	wallet.TotalWithdrawals.Add(amount)

	err = s.repo.ExecuteInTransaction(func(tx repositories.LedgerRepository) error {
		if err := tx.UpdateWallet(wallet); err != nil {
			return err
		}
		return tx.CreateTransaction(&models.Transaction{
			Reference:     uuid.NewString(),
			UserID:        userID,
			WalletID:      wallet.ID,
			WalletKind:    kind,
			Type:          models.TransactionTypeWithdrawal,
			Amount:        amount.Amount,
			Currency:      amount.Currency,
			BalanceBefore: before,
			BalanceAfter:  wallet.BalanceOf(amount.Currency).Amount,
		})
	})
	if err != nil {
		s.metrics.RecordError("withdraw", errCode(err))
		return err
	}

	s.cache.InvalidateWallet(ctx, userID, kind)
	s.metrics.RecordTransaction(models.TransactionTypeWithdrawal, amount)
	return nil
}

// Transfer moves an amount between two of the user's wallet kinds. Both legs
// land in one database transaction; locks are taken in sorted key order.
func (s *service) Transfer(ctx context.Context, userID uint, fromKind, toKind models.WalletKind, amount models.Money) error {
	if !fromKind.Valid() || !toKind.Valid() {
		return domain.ErrWalletNotFound
	}
	if fromKind == toKind {
		return domain.ErrSameWallet
	}
	if !amount.Currency.Valid() || !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}

	release, err := s.locks.Acquire(ctx, walletKey(userID, fromKind), walletKey(userID, toKind))
	if err != nil {
		s.metrics.RecordError("transfer", errCode(err))
		return err
	}
	defer release()

	source, err := s.repo.GetWallet(userID, fromKind)
	if err != nil {
		return err
	}
	dest, err := s.repo.GetOrCreateWallet(userID, toKind)
	if err != nil {
		return err
	}
	if !source.CanDebit() || !dest.CanCredit() {
		return domain.ErrWalletLocked
	}

	sourceBefore := source.BalanceOf(amount.Currency).Amount
	destBefore := dest.BalanceOf(amount.Currency).Amount
	if err := source.Debit(amount); err != nil {
		return err
	}
	if err := dest.Credit(amount); err != nil {
		return err
	}

	ref := uuid.NewString()
	err = s.repo.ExecuteInTransaction(func(tx repositories.LedgerRepository) error {
		if err := tx.UpdateWallet(source); err != nil {
			return err
		}
		if err := tx.UpdateWallet(dest); err != nil {
			return err
		}
		if err := tx.CreateTransaction(&models.Transaction{
			Reference:     ref,
			UserID:        userID,
			WalletID:      source.ID,
			WalletKind:    fromKind,
			Type:          models.TransactionTypeTransferOut,
			Amount:        amount.Amount,
			Currency:      amount.Currency,
			BalanceBefore: sourceBefore,
			BalanceAfter:  source.BalanceOf(amount.Currency).Amount,
		}); err != nil {
			return err
		}
		return tx.CreateTransaction(&models.Transaction{
			Reference:     ref,
			UserID:        userID,
			WalletID:      dest.ID,
			WalletKind:    toKind,
			Type:          models.TransactionTypeTransferIn,
			Amount:        amount.Amount,
			Currency:      amount.Currency,
			BalanceBefore: destBefore,
			BalanceAfter:  dest.BalanceOf(amount.Currency).Amount,
		})
	})
	if err != nil {
		s.metrics.RecordError("transfer", errCode(err))
		return err
	}

	s.cache.InvalidateWallet(ctx, userID, fromKind)
	s.cache.InvalidateWallet(ctx, userID, toKind)
	s.metrics.RecordTransaction(models.TransactionTypeTransferOut, amount)
	return nil
}

// errCode extracts the stable code from a domain error for metrics labels.
func errCode(err error) string {
	var derr *domain.DomainError
	if errors.As(err, &derr) {
		return derr.Code
	}
	return "internal"
}
