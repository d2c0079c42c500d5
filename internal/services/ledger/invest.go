package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"

	domain "vestra/internal/errors"
	"vestra/internal/models"
	"vestra/internal/repositories"
)

// Invest opens a contract under a plan's committed terms. The principal leaves
// the MAIN wallet and the contract is created in the same database transaction:
// if the debit fails, no investment record exists.
func (s *service) Invest(ctx context.Context, userID, planID uint, principal models.Money, autoReinvest bool) (*models.Investment, error) {
	plan, err := s.repo.GetPlan(planID)
	if err != nil {
		return nil, err
	}
	if !plan.IsActive() {
		return nil, domain.ErrPlanInactive
	}
	if !principal.Currency.Valid() || !principal.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if !plan.InRange(principal) {
		return nil, domain.ErrInvalidAmount
	}

	welcomeBonus := principal.Percent(plan.WelcomeBonusPercent)

	keys := []string{walletKey(userID, models.WalletKindMain)}
	if welcomeBonus.IsPositive() {
		keys = append(keys, walletKey(userID, models.WalletKindBonus))
	}
	release, err := s.locks.Acquire(ctx, keys...)
	if err != nil {
		s.metrics.RecordError("invest", errCode(err))
		return nil, err
	}
	defer release()

	main, err := s.repo.GetOrCreateWallet(userID, models.WalletKindMain)
	if err != nil {
		return nil, err
	}
	if !main.CanDebit() {
		return nil, domain.ErrWalletLocked
	}

	mainBefore := main.BalanceOf(principal.Currency).Amount
	if err := main.Debit(principal); err != nil {
		return nil, err
	}
	main.TotalInvestments.Add(principal)

	now := s.now().UTC()
	endAt := now.Add(time.Duration(plan.DurationDays) * 24 * time.Hour)
	nextAccrual := now.Add(s.config.AccrualPeriod)
	inv := &models.Investment{
		UserID:         userID,
		OrderID:        uuid.NewString(),
		Plan:           plan.Snapshot(),
		Principal:      principal,
		Earned:         models.Zero(principal.Currency),
		ExpectedReturn: principal.Percent(plan.TotalRateCap),
		WelcomeBonus:   welcomeBonus,
		ReferralBonus:  models.Zero(principal.Currency),
		Status:         models.InvestmentStatusActive,
		StartAt:        now,
		EndAt:          endAt,
		NextAccrualAt:  &nextAccrual,
		AutoReinvest:   autoReinvest,
	}

	var bonus *models.Wallet
	var bonusBefore int64
	if welcomeBonus.IsPositive() {
		bonus, err = s.repo.GetOrCreateWallet(userID, models.WalletKindBonus)
		if err != nil {
			return nil, err
		}
		if bonus.CanCredit() {
			bonusBefore = bonus.BalanceOf(welcomeBonus.Currency).Amount
			if err := bonus.Credit(welcomeBonus); err != nil {
				return nil, err
			}
			bonus.TotalBonuses.Add(welcomeBonus)
		} else {
			bonus = nil
		}
	}

	ref := uuid.NewString()
	err = s.repo.ExecuteInTransaction(func(tx repositories.LedgerRepository) error {
		if err := tx.UpdateWallet(main); err != nil {
			return err
		}
		if err := tx.CreateInvestment(inv); err != nil {
			return err
		}
		if err := tx.CreateTransaction(&models.Transaction{
			Reference:     ref,
			UserID:        userID,
			WalletID:      main.ID,
			WalletKind:    models.WalletKindMain,
			Type:          models.TransactionTypeInvestment,
			Amount:        principal.Amount,
			Currency:      principal.Currency,
			BalanceBefore: mainBefore,
			BalanceAfter:  main.BalanceOf(principal.Currency).Amount,
			Description:   plan.Name,
			Metadata:      models.NewJSON(map[string]interface{}{"order_id": inv.OrderID}),
		}); err != nil {
			return err
		}
		if bonus != nil {
			if err := tx.UpdateWallet(bonus); err != nil {
				return err
			}
			if err := tx.CreateTransaction(&models.Transaction{
				Reference:     ref,
				UserID:        userID,
				WalletID:      bonus.ID,
				WalletKind:    models.WalletKindBonus,
				Type:          models.TransactionTypeBonus,
				Purpose:       models.PurposeBonus,
				Amount:        welcomeBonus.Amount,
				Currency:      welcomeBonus.Currency,
				BalanceBefore: bonusBefore,
				BalanceAfter:  bonus.BalanceOf(welcomeBonus.Currency).Amount,
				Description:   "welcome bonus",
				Metadata:      models.NewJSON(map[string]interface{}{"order_id": inv.OrderID}),
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.metrics.RecordError("invest", errCode(err))
		return nil, err
	}

	s.cache.InvalidateUserWallets(ctx, userID)
	s.metrics.RecordTransaction(models.TransactionTypeInvestment, principal)
	return inv, nil
}

// Cancel ends a contract early. The plan snapshot's penalty is withheld from
// the principal; the remainder returns to MAIN. Yield accrued so far was
// already credited to PROFIT step by step, so nothing more is owed there.
func (s *service) Cancel(ctx context.Context, investmentID uint, reason string) (*models.Investment, error) {
	release, err := s.locks.Acquire(ctx, investmentKey(investmentID))
	if err != nil {
		s.metrics.RecordError("cancel", errCode(err))
		return nil, err
	}
	defer release()

	inv, err := s.repo.GetInvestment(investmentID)
	if err != nil {
		return nil, err
	}
	if !inv.CanCancel() {
		return nil, domain.ErrInvestmentNotActive
	}

	penalty := inv.Principal.Percent(inv.Plan.EarlyWithdrawalPenalty)
	refund, err := inv.Principal.Sub(penalty)
	if err != nil {
		return nil, err
	}

	walletRelease, err := s.locks.Acquire(ctx, walletKey(inv.UserID, models.WalletKindMain))
	if err != nil {
		s.metrics.RecordError("cancel", errCode(err))
		return nil, err
	}
	defer walletRelease()

	main, err := s.repo.GetOrCreateWallet(inv.UserID, models.WalletKindMain)
	if err != nil {
		return nil, err
	}
	if refund.IsPositive() && !main.CanCredit() {
		return nil, domain.ErrWalletLocked
	}

	mainBefore := main.BalanceOf(refund.Currency).Amount
	if refund.IsPositive() {
		if err := main.Credit(refund); err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	inv.Status = models.InvestmentStatusCancelled
	inv.CancelReason = reason
	inv.NextAccrualAt = nil
	inv.EndAt = now

	err = s.repo.ExecuteInTransaction(func(tx repositories.LedgerRepository) error {
		if err := tx.UpdateInvestment(inv); err != nil {
			return err
		}
		if err := tx.UpdateWallet(main); err != nil {
			return err
		}
		if !refund.IsPositive() {
			return nil
		}
		return tx.CreateTransaction(&models.Transaction{
			Reference:     uuid.NewString(),
			UserID:        inv.UserID,
			WalletID:      main.ID,
			WalletKind:    models.WalletKindMain,
			Type:          models.TransactionTypeCancelRefund,
			Purpose:       models.PurposeRefund,
			Amount:        refund.Amount,
			Currency:      refund.Currency,
			BalanceBefore: mainBefore,
			BalanceAfter:  main.BalanceOf(refund.Currency).Amount,
			Description:   reason,
			Metadata: models.NewJSON(map[string]interface{}{
				"order_id": inv.OrderID,
				"penalty":  penalty.Amount,
			}),
		})
	})
	if err != nil {
		s.metrics.RecordError("cancel", errCode(err))
		return nil, err
	}

	s.cache.InvalidateWallet(ctx, inv.UserID, models.WalletKindMain)
	s.metrics.RecordTransaction(models.TransactionTypeCancelRefund, refund)
	return inv, nil
}

// Complete force-settles an active contract: any shortfall up to the expected
// return is credited as a final accrual step, then the principal is handled
// per the snapshot's compounding and auto-reinvest flags.
func (s *service) Complete(ctx context.Context, investmentID uint) (*models.Investment, error) {
	release, err := s.locks.Acquire(ctx, investmentKey(investmentID))
	if err != nil {
		s.metrics.RecordError("complete", errCode(err))
		return nil, err
	}
	defer release()

	inv, err := s.repo.GetInvestment(investmentID)
	if err != nil {
		return nil, err
	}
	if inv.Status != models.InvestmentStatusActive {
		return nil, domain.ErrInvestmentNotActive
	}
	return s.completeLocked(ctx, inv)
}

// Suspend pauses accrual on an active contract (administrative action).
func (s *service) Suspend(ctx context.Context, investmentID uint, reason string) (*models.Investment, error) {
	release, err := s.locks.Acquire(ctx, investmentKey(investmentID))
	if err != nil {
		return nil, err
	}
	defer release()

	inv, err := s.repo.GetInvestment(investmentID)
	if err != nil {
		return nil, err
	}
	if !inv.CanSuspend() {
		return nil, domain.ErrInvestmentNotActive
	}
	inv.Status = models.InvestmentStatusSuspended
	inv.CancelReason = reason
	if err := s.repo.UpdateInvestment(inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// Resume reactivates a suspended contract. The next accrual lands one full
// period from now; the contract end date is unchanged.
func (s *service) Resume(ctx context.Context, investmentID uint) (*models.Investment, error) {
	release, err := s.locks.Acquire(ctx, investmentKey(investmentID))
	if err != nil {
		return nil, err
	}
	defer release()

	inv, err := s.repo.GetInvestment(investmentID)
	if err != nil {
		return nil, err
	}
	if !inv.CanResume() {
		return nil, domain.ErrInvestmentNotActive
	}
	inv.Status = models.InvestmentStatusActive
	inv.CancelReason = ""
	next := s.now().UTC().Add(s.config.AccrualPeriod)
	inv.NextAccrualAt = &next
	if err := s.repo.UpdateInvestment(inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *service) GetInvestment(ctx context.Context, investmentID uint) (*models.Investment, error) {
	return s.repo.GetInvestment(investmentID)
}

func (s *service) ListInvestments(ctx context.Context, userID uint, statuses ...string) ([]*models.Investment, error) {
	return s.repo.ListInvestmentsByUser(userID, statuses...)
}
