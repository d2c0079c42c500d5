package ledger

import (
	"context"
	"fmt"
	"time"

	"vestra/internal/models"
	"vestra/internal/repositories/cache"
)

// Config holds tunables for the ledger engine.
type Config struct {
	// LockTimeout bounds how long an operation waits for an entity lock
	// before failing with a retryable busy error.
	LockTimeout time.Duration

	// AccrualPeriod is the interval between two accrual steps of one
	// investment. One day in production; shorter in tests.
	AccrualPeriod time.Duration

	// DueBatchSize caps how many due investments one scheduler pass picks up.
	DueBatchSize int
}

// Default configuration values.
const (
	DefaultLockTimeout   = 5 * time.Second
	DefaultAccrualPeriod = 24 * time.Hour
	DefaultDueBatchSize  = 100
)

// WalletCache is the read-through cache surface the ledger uses. The redis
// cache service satisfies it; reads that miss fall back to the repository.
type WalletCache interface {
	GetWallet(ctx context.Context, userID uint, kind models.WalletKind) (*models.Wallet, error)
	CacheWallet(ctx context.Context, wallet *models.Wallet) error
	InvalidateWallet(ctx context.Context, userID uint, kind models.WalletKind) error
	InvalidateUserWallets(ctx context.Context, userID uint) error
}

// NoopWalletCache is used when no cache is wired (tests, CLI tools).
type NoopWalletCache struct{}

func (NoopWalletCache) GetWallet(context.Context, uint, models.WalletKind) (*models.Wallet, error) {
	return nil, cache.ErrCacheMiss
}
func (NoopWalletCache) CacheWallet(context.Context, *models.Wallet) error               { return nil }
func (NoopWalletCache) InvalidateWallet(context.Context, uint, models.WalletKind) error { return nil }
func (NoopWalletCache) InvalidateUserWallets(context.Context, uint) error               { return nil }

func walletKey(userID uint, kind models.WalletKind) string {
	return fmt.Sprintf("wallet:%d:%s", userID, kind)
}

func investmentKey(id uint) string {
	return fmt.Sprintf("investment:%d", id)
}
