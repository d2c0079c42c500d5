package ledger

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	domain "vestra/internal/errors"
	"vestra/internal/models"
	"vestra/internal/repositories"
)

// AccrueOne posts a single accrual step for one investment. Idempotent per
// period: if the next-accrual time has not passed (or the contract is not
// active) the investment is returned unchanged and nothing is credited, so the
// scheduler can rescan freely and retries never double-credit.
func (s *service) AccrueOne(ctx context.Context, investmentID uint) (*models.Investment, error) {
	release, err := s.locks.Acquire(ctx, investmentKey(investmentID))
	if err != nil {
		s.metrics.RecordError("accrue", errCode(err))
		return nil, err
	}
	defer release()

	inv, err := s.repo.GetInvestment(investmentID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if !inv.Due(now) {
		return inv, nil
	}
	if inv.Matured(now) {
		return s.completeLocked(ctx, inv)
	}

	step := inv.Principal.Percent(inv.Plan.DailyRate)
	remaining, err := inv.ExpectedReturn.Sub(inv.Earned)
	if err != nil {
		return nil, err
	}
	if over, _ := remaining.LessThan(step); over {
		step = remaining
	}

	walletRelease, err := s.locks.Acquire(ctx, walletKey(inv.UserID, models.WalletKindProfit))
	if err != nil {
		s.metrics.RecordError("accrue", errCode(err))
		return nil, err
	}
	defer walletRelease()

	profit, err := s.repo.GetOrCreateWallet(inv.UserID, models.WalletKindProfit)
	if err != nil {
		return nil, err
	}
	if step.IsPositive() && !profit.CanCredit() {
		return nil, domain.ErrWalletLocked
	}

	profitBefore := profit.BalanceOf(step.Currency).Amount
	if step.IsPositive() {
		if err := profit.Credit(step); err != nil {
			return nil, err
		}
		profit.TotalEarnings.Add(step)
	}

	earned, err := inv.Earned.Add(step)
	if err != nil {
		return nil, err
	}
	inv.Earned = earned
	inv.LastAccrualAt = &now
	next := inv.NextAccrualAt.Add(s.config.AccrualPeriod)
	inv.NextAccrualAt = &next

	err = s.repo.ExecuteInTransaction(func(tx repositories.LedgerRepository) error {
		if err := tx.UpdateInvestment(inv); err != nil {
			return err
		}
		if err := tx.UpdateWallet(profit); err != nil {
			return err
		}
		if !step.IsPositive() {
			return nil
		}
		return tx.CreateTransaction(&models.Transaction{
			Reference:     uuid.NewString(),
			UserID:        inv.UserID,
			WalletID:      profit.ID,
			WalletKind:    models.WalletKindProfit,
			Type:          models.TransactionTypeAccrual,
			Purpose:       models.PurposeEarnings,
			Amount:        step.Amount,
			Currency:      step.Currency,
			BalanceBefore: profitBefore,
			BalanceAfter:  profit.BalanceOf(step.Currency).Amount,
			Description:   inv.Plan.Name,
			Metadata:      models.NewJSON(map[string]interface{}{"order_id": inv.OrderID}),
		})
	})
	if err != nil {
		s.metrics.RecordError("accrue", errCode(err))
		return nil, err
	}

	s.cache.InvalidateWallet(ctx, inv.UserID, models.WalletKindProfit)
	s.metrics.RecordTransaction(models.TransactionTypeAccrual, step)
	return inv, nil
}

// completeLocked settles a contract. Caller holds the investment lock; wallet
// locks are acquired here in sorted order.
func (s *service) completeLocked(ctx context.Context, inv *models.Investment) (*models.Investment, error) {
	now := s.now().UTC()
	shortfall, err := inv.ExpectedReturn.Sub(inv.Earned)
	if err != nil {
		return nil, err
	}

	returnPrincipal := !inv.Plan.Compounding && !inv.AutoReinvest
	reinvest := !inv.Plan.Compounding && inv.AutoReinvest

	keys := []string{walletKey(inv.UserID, models.WalletKindProfit)}
	if returnPrincipal {
		keys = append(keys, walletKey(inv.UserID, models.WalletKindMain))
	}
	release, err := s.locks.Acquire(ctx, keys...)
	if err != nil {
		s.metrics.RecordError("complete", errCode(err))
		return nil, err
	}
	defer release()

	profit, err := s.repo.GetOrCreateWallet(inv.UserID, models.WalletKindProfit)
	if err != nil {
		return nil, err
	}
	if shortfall.IsPositive() && !profit.CanCredit() {
		return nil, domain.ErrWalletLocked
	}

	var main *models.Wallet
	var mainBefore int64
	if returnPrincipal {
		main, err = s.repo.GetOrCreateWallet(inv.UserID, models.WalletKindMain)
		if err != nil {
			return nil, err
		}
		if !main.CanCredit() {
			return nil, domain.ErrWalletLocked
		}
		mainBefore = main.BalanceOf(inv.Principal.Currency).Amount
		if err := main.Credit(inv.Principal); err != nil {
			return nil, err
		}
	}

	profitBefore := profit.BalanceOf(shortfall.Currency).Amount
	if shortfall.IsPositive() {
		if err := profit.Credit(shortfall); err != nil {
			return nil, err
		}
		profit.TotalEarnings.Add(shortfall)
	}

	inv.Earned = inv.ExpectedReturn
	inv.Status = models.InvestmentStatusCompleted
	inv.LastAccrualAt = &now
	inv.NextAccrualAt = nil
	inv.EndAt = now

	// A reinvested contract restarts under the same committed terms; bonuses
	// are not granted again.
	var next *models.Investment
	if reinvest {
		nextAccrual := now.Add(s.config.AccrualPeriod)
		next = &models.Investment{
			UserID:         inv.UserID,
			OrderID:        uuid.NewString(),
			Plan:           inv.Plan,
			Principal:      inv.Principal,
			Earned:         models.Zero(inv.Principal.Currency),
			ExpectedReturn: inv.Principal.Percent(inv.Plan.TotalRateCap),
			WelcomeBonus:   models.Zero(inv.Principal.Currency),
			ReferralBonus:  models.Zero(inv.Principal.Currency),
			Status:         models.InvestmentStatusActive,
			StartAt:        now,
			EndAt:          now.Add(time.Duration(inv.Plan.DurationDays) * 24 * time.Hour),
			NextAccrualAt:  &nextAccrual,
			AutoReinvest:   true,
		}
	}

	ref := uuid.NewString()
	err = s.repo.ExecuteInTransaction(func(tx repositories.LedgerRepository) error {
		if err := tx.UpdateInvestment(inv); err != nil {
			return err
		}
		if err := tx.UpdateWallet(profit); err != nil {
			return err
		}
		if shortfall.IsPositive() {
			if err := tx.CreateTransaction(&models.Transaction{
				Reference:     ref,
				UserID:        inv.UserID,
				WalletID:      profit.ID,
				WalletKind:    models.WalletKindProfit,
				Type:          models.TransactionTypeAccrual,
				Purpose:       models.PurposeEarnings,
				Amount:        shortfall.Amount,
				Currency:      shortfall.Currency,
				BalanceBefore: profitBefore,
				BalanceAfter:  profit.BalanceOf(shortfall.Currency).Amount,
				Description:   "final accrual",
				Metadata:      models.NewJSON(map[string]interface{}{"order_id": inv.OrderID}),
			}); err != nil {
				return err
			}
		}
		if main != nil {
			if err := tx.UpdateWallet(main); err != nil {
				return err
			}
			if err := tx.CreateTransaction(&models.Transaction{
				Reference:     ref,
				UserID:        inv.UserID,
				WalletID:      main.ID,
				WalletKind:    models.WalletKindMain,
				Type:          models.TransactionTypePrincipalReturn,
				Purpose:       models.PurposePrincipalReturn,
				Amount:        inv.Principal.Amount,
				Currency:      inv.Principal.Currency,
				BalanceBefore: mainBefore,
				BalanceAfter:  main.BalanceOf(inv.Principal.Currency).Amount,
				Metadata:      models.NewJSON(map[string]interface{}{"order_id": inv.OrderID}),
			}); err != nil {
				return err
			}
		}
		if next != nil {
			return tx.CreateInvestment(next)
		}
		return nil
	})
	if err != nil {
		s.metrics.RecordError("complete", errCode(err))
		return nil, err
	}

	s.cache.InvalidateUserWallets(ctx, inv.UserID)
	return inv, nil
}

// AccrueDue runs one scheduler pass: every active investment whose
// next-accrual time has passed gets one step. Failures are isolated per
// investment; a busy or broken contract waits for the next tick.
func (s *service) AccrueDue(ctx context.Context) (int, error) {
	due, err := s.repo.ListDueInvestments(s.now().UTC(), s.config.DueBatchSize)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, inv := range due {
		if _, err := s.AccrueOne(ctx, inv.ID); err != nil {
			log.Printf("accrual failed for investment %d: %v", inv.ID, err)
			continue
		}
		count++
	}
	if count > 0 {
		s.metrics.RecordAccruals(count)
	}
	return count, nil
}
