package handlers

import (
	"github.com/gofiber/fiber/v2"

	"vestra/internal/services/ledger"
	"vestra/internal/utils"
)

type InvestmentHandler struct {
	svc ledger.Service
}

func NewInvestmentHandler(svc ledger.Service) *InvestmentHandler {
	return &InvestmentHandler{svc: svc}
}

func (h *InvestmentHandler) Create(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		PlanID       uint   `json:"plan_id"`
		Amount       int64  `json:"amount"`
		Currency     string `json:"currency"`
		AutoReinvest bool   `json:"auto_reinvest"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}
	if input.PlanID == 0 {
		return utils.BadRequest(c, "plan_id is required")
	}
	principal, ok := parseMoney(input.Amount, input.Currency)
	if !ok {
		return utils.BadRequest(c, "amount must be positive minor units with a supported currency")
	}

	inv, err := h.svc.Invest(c.Context(), claims.UserID, input.PlanID, principal, input.AutoReinvest)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Created(c, fiber.Map{"investment": inv})
}

func (h *InvestmentHandler) List(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var statuses []string
	if status := c.Query("status"); status != "" {
		statuses = append(statuses, status)
	}

	investments, err := h.svc.ListInvestments(c.Context(), claims.UserID, statuses...)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, fiber.Map{"investments": investments})
}

func (h *InvestmentHandler) Get(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.BadRequest(c, "invalid investment id")
	}

	inv, err := h.svc.GetInvestment(c.Context(), uint(id))
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	if inv.UserID != claims.UserID && !claims.IsAdmin() {
		return utils.NotFound(c, "investment not found")
	}
	return utils.Success(c, fiber.Map{"investment": inv})
}

// Cancel ends the caller's contract early; the snapshot penalty is withheld
// from the refunded principal.
func (h *InvestmentHandler) Cancel(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.BadRequest(c, "invalid investment id")
	}

	var input struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&input); err != nil {
		input.Reason = ""
	}

	inv, err := h.svc.GetInvestment(c.Context(), uint(id))
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	if inv.UserID != claims.UserID && !claims.IsAdmin() {
		return utils.NotFound(c, "investment not found")
	}

	inv, err = h.svc.Cancel(c.Context(), uint(id), input.Reason)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, fiber.Map{
		"message":    "investment cancelled",
		"investment": inv,
	})
}

// Administrative lifecycle actions.

func (h *InvestmentHandler) Suspend(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.BadRequest(c, "invalid investment id")
	}

	var input struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&input); err != nil {
		input.Reason = ""
	}

	inv, err := h.svc.Suspend(c.Context(), uint(id), input.Reason)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, fiber.Map{"investment": inv})
}

func (h *InvestmentHandler) Resume(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.BadRequest(c, "invalid investment id")
	}

	inv, err := h.svc.Resume(c.Context(), uint(id))
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, fiber.Map{"investment": inv})
}

func (h *InvestmentHandler) Complete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.BadRequest(c, "invalid investment id")
	}

	inv, err := h.svc.Complete(c.Context(), uint(id))
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, fiber.Map{"investment": inv})
}

// Accrue triggers one accrual step for a contract, outside the scheduler.
// Idempotent: if the contract is not due nothing is posted.
func (h *InvestmentHandler) Accrue(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.BadRequest(c, "invalid investment id")
	}

	inv, err := h.svc.AccrueOne(c.Context(), uint(id))
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, fiber.Map{"investment": inv})
}

func (h *InvestmentHandler) AccrueDue(c *fiber.Ctx) error {
	count, err := h.svc.AccrueDue(c.Context())
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, fiber.Map{"accrued": count})
}
