/*
Package ledger is the authoritative record of wallet balances and investment
contracts, and the only place they are mutated.

Every operation runs the same way: acquire the entity locks (sorted, bounded
by a timeout), load state, mutate in memory through the entity invariant
methods, persist wallet + investment + audit rows in one database transaction,
invalidate the cache. Balances never go negative, the two legs of a transfer
land together or not at all, and a contract never earns past its committed cap.

Usage:

	repo := repositories.NewLedgerRepository(repositories.DB)
	svc := ledger.NewService(repo, repositories.CacheService, ledger.Config{}, nil)

	err := svc.Deposit(ctx, userID, models.WalletKindMain,
	    models.NewMoney(50_000_00, models.CurrencyNGN), models.PurposeFunding, "card top-up")

	inv, err := svc.Invest(ctx, userID, planID,
	    models.NewMoney(100_000_00, models.CurrencyNGN), false)

	sched := ledger.NewScheduler(svc, nil)
	sched.Start()

Accrual is idempotent per (investment, period): re-invoking AccrueOne before
the next due time returns the contract unchanged, so scheduler rescans and
caller retries cannot double-credit.
*/
package ledger
