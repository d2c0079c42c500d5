package repositories

import (
	"context"
	"time"

	"vestra/internal/models"
)

// LedgerRepository is the durable store behind the ledger service: the wallet
// store (one wallet per user and kind, created on demand), the read-only plan
// catalog, the investment contracts, and the append-only audit log.
//
// ExecuteInTransaction runs fn against a repository bound to a single database
// transaction; multi-wallet operations use it so both legs land or neither
// does.
type LedgerRepository interface {
	// Wallet store.
	CreateWallet(wallet *models.Wallet) error
	GetWalletByID(id uint) (*models.Wallet, error)
	GetWallet(userID uint, kind models.WalletKind) (*models.Wallet, error)
	GetOrCreateWallet(userID uint, kind models.WalletKind) (*models.Wallet, error)
	CreateDefaultWallets(userID uint) ([]*models.Wallet, error)
	UpdateWallet(wallet *models.Wallet) error
	UpdateWalletStatus(id uint, status, reason string) error
	ListWallets(userID uint) ([]*models.Wallet, error)

	// Plan catalog, read-only to the engine.
	GetPlan(id uint) (*models.Plan, error)
	ListActivePlans() ([]*models.Plan, error)

	// Investment contracts.
	CreateInvestment(inv *models.Investment) error
	GetInvestment(id uint) (*models.Investment, error)
	UpdateInvestment(inv *models.Investment) error
	ListInvestmentsByUser(userID uint, statuses ...string) ([]*models.Investment, error)
	ListDueInvestments(now time.Time, limit int) ([]*models.Investment, error)

	// Audit log, append-only.
	CreateTransaction(tx *models.Transaction) error
	ListTransactions(ctx context.Context, userID uint, limit, offset int) ([]models.Transaction, error)

	ExecuteInTransaction(fn func(LedgerRepository) error) error
}
