package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "vestra/internal/errors"
	"vestra/internal/models"
)

func newTestLedger(t *testing.T) (*service, *fakeLedgerRepo, *time.Time) {
	t.Helper()
	repo := newFakeLedgerRepo()
	svc := NewService(repo, nil, Config{LockTimeout: 500 * time.Millisecond}, nil).(*service)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	nowPtr := &now
	svc.now = func() time.Time { return *nowPtr }
	return svc, repo, nowPtr
}

func ngn(amount int64) models.Money {
	return models.NewMoney(amount, models.CurrencyNGN)
}

func TestProvisionWallets(t *testing.T) {
	svc, _, _ := newTestLedger(t)
	ctx := context.Background()

	wallets, err := svc.ProvisionWallets(ctx, 1)
	require.NoError(t, err)
	require.Len(t, wallets, 3)
	for _, w := range wallets {
		assert.Equal(t, int64(0), w.BalanceOf(models.CurrencyNGN).Amount)
		assert.Equal(t, int64(0), w.BalanceOf(models.CurrencyUSDT).Amount)
		assert.Equal(t, models.WalletStatusActive, w.Status)
	}

	// Provisioning again returns the same wallets, no duplicates.
	again, err := svc.ProvisionWallets(ctx, 1)
	require.NoError(t, err)
	require.Len(t, again, 3)
	assert.Equal(t, wallets[0].ID, again[0].ID)
}

func TestDepositCreatesWalletAndAuditRow(t *testing.T) {
	svc, repo, _ := newTestLedger(t)
	ctx := context.Background()

	err := svc.Deposit(ctx, 1, models.WalletKindMain, ngn(50_000_00), models.PurposeFunding, "card top-up")
	require.NoError(t, err)

	wallet, err := repo.GetWallet(1, models.WalletKindMain)
	require.NoError(t, err)
	assert.Equal(t, int64(50_000_00), wallet.BalanceOf(models.CurrencyNGN).Amount)
	assert.Equal(t, int64(50_000_00), wallet.TotalDeposits[models.CurrencyNGN])
	assert.Equal(t, int64(0), wallet.TotalEarnings[models.CurrencyNGN])
	assert.NotNil(t, wallet.LastTransactionAt)

	rows := repo.transactionsOfType(models.TransactionTypeDeposit)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(0), rows[0].BalanceBefore)
	assert.Equal(t, int64(50_000_00), rows[0].BalanceAfter)
	assert.Equal(t, models.PurposeFunding, rows[0].Purpose)
	assert.NotEmpty(t, rows[0].Reference)
}

func TestDepositPurposeDrivesTotals(t *testing.T) {
	svc, repo, _ := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, svc.Deposit(ctx, 1, models.WalletKindProfit, ngn(1_000_00), models.PurposeEarnings, ""))
	require.NoError(t, svc.Deposit(ctx, 1, models.WalletKindBonus, ngn(500_00), models.PurposeBonus, ""))

	profit, err := repo.GetWallet(1, models.WalletKindProfit)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_00), profit.TotalEarnings[models.CurrencyNGN])
	assert.Equal(t, int64(1_000_00), profit.TotalDeposits[models.CurrencyNGN])

	bonus, err := repo.GetWallet(1, models.WalletKindBonus)
	require.NoError(t, err)
	assert.Equal(t, int64(500_00), bonus.TotalBonuses[models.CurrencyNGN])
}

func TestDepositRejectsBadAmounts(t *testing.T) {
	svc, _, _ := newTestLedger(t)
	ctx := context.Background()

	err := svc.Deposit(ctx, 1, models.WalletKindMain, ngn(0), models.PurposeFunding, "")
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	err = svc.Deposit(ctx, 1, models.WalletKindMain, ngn(-5), models.PurposeFunding, "")
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	err = svc.Deposit(ctx, 1, models.WalletKindMain, models.NewMoney(100, "EUR"), models.PurposeFunding, "")
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestWithdrawInsufficientFundsLeavesBalance(t *testing.T) {
	svc, repo, _ := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, svc.Deposit(ctx, 1, models.WalletKindMain, ngn(100_00), models.PurposeFunding, ""))

	err := svc.Withdraw(ctx, 1, models.WalletKindMain, ngn(200_00))
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	wallet, err := repo.GetWallet(1, models.WalletKindMain)
	require.NoError(t, err)
	assert.Equal(t, int64(100_00), wallet.BalanceOf(models.CurrencyNGN).Amount)
	assert.Empty(t, repo.transactionsOfType(models.TransactionTypeWithdrawal))
}

func TestWithdrawMissingWallet(t *testing.T) {
	svc, _, _ := newTestLedger(t)

	err := svc.Withdraw(context.Background(), 1, models.WalletKindMain, ngn(10_00))
	assert.ErrorIs(t, err, domain.ErrWalletNotFound)
}

func TestWithdrawBumpsTotal(t *testing.T) {
	svc, repo, _ := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, svc.Deposit(ctx, 1, models.WalletKindMain, ngn(100_00), models.PurposeFunding, ""))
	require.NoError(t, svc.Withdraw(ctx, 1, models.WalletKindMain, ngn(40_00)))

	wallet, err := repo.GetWallet(1, models.WalletKindMain)
	require.NoError(t, err)
	assert.Equal(t, int64(60_00), wallet.BalanceOf(models.CurrencyNGN).Amount)
	assert.Equal(t, int64(40_00), wallet.TotalWithdrawals[models.CurrencyNGN])
}

func TestTransferConservesTotal(t *testing.T) {
	svc, repo, _ := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, svc.Deposit(ctx, 1, models.WalletKindMain, ngn(100_00), models.PurposeFunding, ""))
	require.NoError(t, svc.Transfer(ctx, 1, models.WalletKindMain, models.WalletKindProfit, ngn(30_00)))

	main, err := repo.GetWallet(1, models.WalletKindMain)
	require.NoError(t, err)
	profit, err := repo.GetWallet(1, models.WalletKindProfit)
	require.NoError(t, err)
	assert.Equal(t, int64(70_00), main.BalanceOf(models.CurrencyNGN).Amount)
	assert.Equal(t, int64(30_00), profit.BalanceOf(models.CurrencyNGN).Amount)

	// Both legs are recorded under one reference.
	out := repo.transactionsOfType(models.TransactionTypeTransferOut)
	in := repo.transactionsOfType(models.TransactionTypeTransferIn)
	require.Len(t, out, 1)
	require.Len(t, in, 1)
	assert.Equal(t, out[0].Reference, in[0].Reference)
}

func TestTransferSameWallet(t *testing.T) {
	svc, _, _ := newTestLedger(t)

	err := svc.Transfer(context.Background(), 1, models.WalletKindMain, models.WalletKindMain, ngn(10_00))
	assert.ErrorIs(t, err, domain.ErrSameWallet)
}

func TestTransferInsufficientFunds(t *testing.T) {
	svc, repo, _ := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, svc.Deposit(ctx, 1, models.WalletKindMain, ngn(10_00), models.PurposeFunding, ""))

	err := svc.Transfer(ctx, 1, models.WalletKindMain, models.WalletKindProfit, ngn(20_00))
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	main, err := repo.GetWallet(1, models.WalletKindMain)
	require.NoError(t, err)
	assert.Equal(t, int64(10_00), main.BalanceOf(models.CurrencyNGN).Amount)
}

func TestWalletStatusGates(t *testing.T) {
	svc, repo, _ := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, svc.Deposit(ctx, 1, models.WalletKindMain, ngn(100_00), models.PurposeFunding, ""))
	wallet, err := repo.GetWallet(1, models.WalletKindMain)
	require.NoError(t, err)

	// Suspended wallets still receive credits but reject debits.
	require.NoError(t, repo.UpdateWalletStatus(wallet.ID, models.WalletStatusSuspended, "review"))
	assert.NoError(t, svc.Deposit(ctx, 1, models.WalletKindMain, ngn(10_00), models.PurposeFunding, ""))
	assert.ErrorIs(t, svc.Withdraw(ctx, 1, models.WalletKindMain, ngn(10_00)), domain.ErrWalletLocked)

	// Locked wallets reject both directions.
	require.NoError(t, repo.UpdateWalletStatus(wallet.ID, models.WalletStatusLocked, "fraud"))
	assert.ErrorIs(t, svc.Deposit(ctx, 1, models.WalletKindMain, ngn(10_00), models.PurposeFunding, ""), domain.ErrWalletLocked)
	assert.ErrorIs(t, svc.Withdraw(ctx, 1, models.WalletKindMain, ngn(10_00)), domain.ErrWalletLocked)
}

func TestConcurrentDepositsDoNotDrift(t *testing.T) {
	svc, repo, _ := newTestLedger(t)
	svc.config.LockTimeout = 5 * time.Second
	svc.locks = newLockManager(svc.config.LockTimeout)
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_ = svc.Deposit(ctx, 1, models.WalletKindMain, ngn(1_000), models.PurposeFunding, "")
		}()
	}
	wg.Wait()

	wallet, err := repo.GetWallet(1, models.WalletKindMain)
	require.NoError(t, err)
	assert.Equal(t, int64(workers*1_000), wallet.BalanceOf(models.CurrencyNGN).Amount)
	assert.Len(t, repo.transactionsOfType(models.TransactionTypeDeposit), workers)
}

func TestListTransactionsPagination(t *testing.T) {
	svc, _, _ := newTestLedger(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.Deposit(ctx, 1, models.WalletKindMain, ngn(1_00), models.PurposeFunding, ""))
	}

	page, err := svc.ListTransactions(ctx, 1, 2, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	rest, err := svc.ListTransactions(ctx, 1, 10, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 3)
}
