package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	domain "vestra/internal/errors"
	"vestra/internal/models"
	"vestra/internal/repositories"
)

// fakeLedgerRepo is an in-memory LedgerRepository. Reads return deep copies so
// service-side mutations only land through an explicit update, mirroring how
// the database behaves.
type fakeLedgerRepo struct {
	mu           sync.Mutex
	walletSeq    uint
	invSeq       uint
	wallets      map[uint]*models.Wallet
	byUserKind   map[string]uint
	plans        map[uint]*models.Plan
	investments  map[uint]*models.Investment
	transactions []models.Transaction
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{
		wallets:     make(map[uint]*models.Wallet),
		byUserKind:  make(map[string]uint),
		plans:       make(map[uint]*models.Plan),
		investments: make(map[uint]*models.Investment),
	}
}

func userKindKey(userID uint, kind models.WalletKind) string {
	return fmt.Sprintf("%d/%s", userID, kind)
}

func cloneBalances(b models.BalanceMap) models.BalanceMap {
	if b == nil {
		return nil
	}
	out := make(models.BalanceMap, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

func cloneWallet(w *models.Wallet) *models.Wallet {
	c := *w
	c.Balances = cloneBalances(w.Balances)
	c.TotalDeposits = cloneBalances(w.TotalDeposits)
	c.TotalWithdrawals = cloneBalances(w.TotalWithdrawals)
	c.TotalInvestments = cloneBalances(w.TotalInvestments)
	c.TotalEarnings = cloneBalances(w.TotalEarnings)
	c.TotalBonuses = cloneBalances(w.TotalBonuses)
	return &c
}

func cloneInvestment(i *models.Investment) *models.Investment {
	c := *i
	if i.LastAccrualAt != nil {
		t := *i.LastAccrualAt
		c.LastAccrualAt = &t
	}
	if i.NextAccrualAt != nil {
		t := *i.NextAccrualAt
		c.NextAccrualAt = &t
	}
	return &c
}

func (r *fakeLedgerRepo) CreateWallet(wallet *models.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createWalletLocked(wallet)
}

func (r *fakeLedgerRepo) createWalletLocked(wallet *models.Wallet) error {
	key := userKindKey(wallet.UserID, wallet.Kind)
	if _, exists := r.byUserKind[key]; exists {
		return fmt.Errorf("wallet already exists for %s", key)
	}
	r.walletSeq++
	wallet.ID = r.walletSeq
	// Mirror the BeforeCreate hook.
	wallet.Balances = models.NewBalanceMap()
	if wallet.TotalDeposits == nil {
		wallet.TotalDeposits = models.NewBalanceMap()
	}
	if wallet.TotalWithdrawals == nil {
		wallet.TotalWithdrawals = models.NewBalanceMap()
	}
	if wallet.TotalInvestments == nil {
		wallet.TotalInvestments = models.NewBalanceMap()
	}
	if wallet.TotalEarnings == nil {
		wallet.TotalEarnings = models.NewBalanceMap()
	}
	if wallet.TotalBonuses == nil {
		wallet.TotalBonuses = models.NewBalanceMap()
	}
	if wallet.Status == "" {
		wallet.Status = models.WalletStatusActive
	}
	r.wallets[wallet.ID] = cloneWallet(wallet)
	r.byUserKind[key] = wallet.ID
	return nil
}

func (r *fakeLedgerRepo) GetWalletByID(id uint) (*models.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[id]
	if !ok {
		return nil, domain.ErrWalletNotFound
	}
	return cloneWallet(w), nil
}

func (r *fakeLedgerRepo) GetWallet(userID uint, kind models.WalletKind) (*models.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byUserKind[userKindKey(userID, kind)]
	if !ok {
		return nil, domain.ErrWalletNotFound
	}
	return cloneWallet(r.wallets[id]), nil
}

func (r *fakeLedgerRepo) GetOrCreateWallet(userID uint, kind models.WalletKind) (*models.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byUserKind[userKindKey(userID, kind)]; ok {
		return cloneWallet(r.wallets[id]), nil
	}
	wallet := &models.Wallet{UserID: userID, Kind: kind}
	if err := r.createWalletLocked(wallet); err != nil {
		return nil, err
	}
	return cloneWallet(r.wallets[wallet.ID]), nil
}

func (r *fakeLedgerRepo) CreateDefaultWallets(userID uint) ([]*models.Wallet, error) {
	out := make([]*models.Wallet, 0, len(models.WalletKinds))
	for _, kind := range models.WalletKinds {
		w, err := r.GetOrCreateWallet(userID, kind)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

func (r *fakeLedgerRepo) UpdateWallet(wallet *models.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.wallets[wallet.ID]; !ok {
		return domain.ErrWalletNotFound
	}
	r.wallets[wallet.ID] = cloneWallet(wallet)
	return nil
}

func (r *fakeLedgerRepo) UpdateWalletStatus(id uint, status, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[id]
	if !ok {
		return domain.ErrWalletNotFound
	}
	w.Status = status
	w.StatusReason = reason
	return nil
}

func (r *fakeLedgerRepo) ListWallets(userID uint) ([]*models.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Wallet
	for _, w := range r.wallets {
		if w.UserID == userID {
			out = append(out, cloneWallet(w))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeLedgerRepo) addPlan(plan *models.Plan) *models.Plan {
	r.mu.Lock()
	defer r.mu.Unlock()
	if plan.ID == 0 {
		plan.ID = uint(len(r.plans) + 1)
	}
	if plan.Status == "" {
		plan.Status = models.PlanStatusActive
	}
	clone := *plan
	r.plans[plan.ID] = &clone
	return plan
}

func (r *fakeLedgerRepo) GetPlan(id uint) (*models.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plans[id]
	if !ok {
		return nil, domain.ErrPlanNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *fakeLedgerRepo) ListActivePlans() ([]*models.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Plan
	for _, p := range r.plans {
		if p.IsActive() {
			clone := *p
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeLedgerRepo) CreateInvestment(inv *models.Investment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invSeq++
	inv.ID = r.invSeq
	r.investments[inv.ID] = cloneInvestment(inv)
	return nil
}

func (r *fakeLedgerRepo) GetInvestment(id uint) (*models.Investment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.investments[id]
	if !ok {
		return nil, domain.ErrInvestmentNotFound
	}
	return cloneInvestment(inv), nil
}

func (r *fakeLedgerRepo) UpdateInvestment(inv *models.Investment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.investments[inv.ID]; !ok {
		return domain.ErrInvestmentNotFound
	}
	r.investments[inv.ID] = cloneInvestment(inv)
	return nil
}

func (r *fakeLedgerRepo) ListInvestmentsByUser(userID uint, statuses ...string) ([]*models.Investment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Investment
	for _, inv := range r.investments {
		if inv.UserID != userID {
			continue
		}
		if len(statuses) > 0 {
			match := false
			for _, s := range statuses {
				if inv.Status == s {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, cloneInvestment(inv))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeLedgerRepo) ListDueInvestments(now time.Time, limit int) ([]*models.Investment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Investment
	for _, inv := range r.investments {
		if inv.Due(now) {
			out = append(out, cloneInvestment(inv))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NextAccrualAt.Before(*out[j].NextAccrualAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeLedgerRepo) CreateTransaction(tx *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx.ID = uint(len(r.transactions) + 1)
	r.transactions = append(r.transactions, *tx)
	return nil
}

func (r *fakeLedgerRepo) ListTransactions(ctx context.Context, userID uint, limit, offset int) ([]models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []models.Transaction
	for i := len(r.transactions) - 1; i >= 0; i-- {
		if r.transactions[i].UserID == userID {
			all = append(all, r.transactions[i])
		}
	}
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *fakeLedgerRepo) ExecuteInTransaction(fn func(repositories.LedgerRepository) error) error {
	return fn(r)
}

// transactionsOfType returns the audit rows matching a transaction type.
func (r *fakeLedgerRepo) transactionsOfType(txType string) []models.Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Transaction
	for _, tx := range r.transactions {
		if tx.Type == txType {
			out = append(out, tx)
		}
	}
	return out
}
