package handlers

import (
	"github.com/gofiber/fiber/v2"

	"vestra/internal/models"
	"vestra/internal/services/ledger"
	"vestra/internal/utils"
)

type LedgerHandler struct {
	svc ledger.Service
}

func NewLedgerHandler(svc ledger.Service) *LedgerHandler {
	return &LedgerHandler{svc: svc}
}

// extractUserClaims is a helper function to reduce duplication
func extractUserClaims(c *fiber.Ctx) (*models.UserClaims, error) {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok || claims == nil {
		return nil, fiber.ErrUnauthorized
	}
	return claims, nil
}

// parseMoney validates the wire amount into a Money value.
func parseMoney(amount int64, currency string) (models.Money, bool) {
	cur := models.Currency(currency)
	if !cur.Valid() || amount <= 0 {
		return models.Money{}, false
	}
	return models.NewMoney(amount, cur), true
}

// ProvisionWallets creates the user's default wallet set. Safe to call more
// than once.
func (h *LedgerHandler) ProvisionWallets(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	wallets, err := h.svc.ProvisionWallets(c.Context(), claims.UserID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Created(c, fiber.Map{"wallets": wallets})
}

func (h *LedgerHandler) GetWallets(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	wallets, err := h.svc.ListWallets(c.Context(), claims.UserID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, fiber.Map{"wallets": wallets})
}

func (h *LedgerHandler) GetWallet(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	kind := models.WalletKind(c.Params("kind"))
	if !kind.Valid() {
		return utils.BadRequest(c, "unknown wallet kind")
	}

	wallet, err := h.svc.GetWallet(c.Context(), claims.UserID, kind)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, fiber.Map{
		"wallet":   wallet,
		"balances": wallet.FormattedBalances(),
	})
}

func (h *LedgerHandler) Deposit(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Kind        string `json:"kind"`
		Amount      int64  `json:"amount"`
		Currency    string `json:"currency"`
		Purpose     string `json:"purpose"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}

	kind := models.WalletKind(input.Kind)
	if input.Kind == "" {
		kind = models.WalletKindMain
	}
	if !kind.Valid() {
		return utils.BadRequest(c, "unknown wallet kind")
	}
	amount, ok := parseMoney(input.Amount, input.Currency)
	if !ok {
		return utils.BadRequest(c, "amount must be positive minor units with a supported currency")
	}

	purpose := models.DepositPurpose(input.Purpose)
	if input.Purpose == "" {
		purpose = models.PurposeFunding
	}
	if !purpose.Valid() {
		return utils.BadRequest(c, "unknown deposit purpose")
	}

	if err := h.svc.Deposit(c.Context(), claims.UserID, kind, amount, purpose, input.Description); err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	wallet, err := h.svc.GetWallet(c.Context(), claims.UserID, kind)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, fiber.Map{
		"message":     "deposit successful",
		"amount":      amount,
		"new_balance": wallet.BalanceOf(amount.Currency),
	})
}

func (h *LedgerHandler) Withdraw(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Kind     string `json:"kind"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}

	kind := models.WalletKind(input.Kind)
	if input.Kind == "" {
		kind = models.WalletKindMain
	}
	if !kind.Valid() {
		return utils.BadRequest(c, "unknown wallet kind")
	}
	amount, ok := parseMoney(input.Amount, input.Currency)
	if !ok {
		return utils.BadRequest(c, "amount must be positive minor units with a supported currency")
	}

	if err := h.svc.Withdraw(c.Context(), claims.UserID, kind, amount); err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	wallet, err := h.svc.GetWallet(c.Context(), claims.UserID, kind)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, fiber.Map{
		"message":     "withdrawal successful",
		"amount":      amount,
		"new_balance": wallet.BalanceOf(amount.Currency),
	})
}

func (h *LedgerHandler) Transfer(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		From     string `json:"from"`
		To       string `json:"to"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}

	fromKind := models.WalletKind(input.From)
	toKind := models.WalletKind(input.To)
	if !fromKind.Valid() || !toKind.Valid() {
		return utils.BadRequest(c, "unknown wallet kind")
	}
	amount, ok := parseMoney(input.Amount, input.Currency)
	if !ok {
		return utils.BadRequest(c, "amount must be positive minor units with a supported currency")
	}

	if err := h.svc.Transfer(c.Context(), claims.UserID, fromKind, toKind, amount); err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, fiber.Map{
		"message": "transfer successful",
		"amount":  amount,
		"from":    fromKind,
		"to":      toKind,
	})
}

func (h *LedgerHandler) GetTransactions(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	if limit > 100 {
		limit = 100
	}

	transactions, err := h.svc.ListTransactions(c.Context(), claims.UserID, limit, offset)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, fiber.Map{
		"transactions": transactions,
		"limit":        limit,
		"offset":       offset,
	})
}

func (h *LedgerHandler) GetPlans(c *fiber.Ctx) error {
	plans, err := h.svc.ListPlans(c.Context())
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, fiber.Map{"plans": plans})
}
