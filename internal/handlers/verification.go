package handlers

import (
	"github.com/gofiber/fiber/v2"

	"vestra/internal/models"
	"vestra/internal/services/verification"
	"vestra/internal/utils"
)

type VerificationHandler struct {
	svc verification.Service
}

func NewVerificationHandler(svc verification.Service) *VerificationHandler {
	return &VerificationHandler{svc: svc}
}

func validCodeType(t string) bool {
	switch t {
	case models.CodeTypeLogin, models.CodeTypePasswordReset, models.CodeTypeEmailVerification:
		return true
	}
	return false
}

// Request issues a confirmation code. The code itself is never returned over
// the API; delivery happens out of band.
func (h *VerificationHandler) Request(c *fiber.Ctx) error {
	var input struct {
		Identifier string `json:"identifier"`
		Type       string `json:"type"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}
	if input.Identifier == "" {
		return utils.BadRequest(c, "identifier is required")
	}
	if !validCodeType(input.Type) {
		return utils.BadRequest(c, "unknown code type")
	}

	code, err := h.svc.Generate(c.Context(), input.Identifier, input.Type)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, fiber.Map{
		"message":    "code sent",
		"expires_at": code.ExpiresAt,
	})
}

func (h *VerificationHandler) Verify(c *fiber.Ctx) error {
	var input struct {
		Identifier string `json:"identifier"`
		Type       string `json:"type"`
		Code       string `json:"code"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}
	if input.Identifier == "" || input.Code == "" {
		return utils.BadRequest(c, "identifier and code are required")
	}
	if !validCodeType(input.Type) {
		return utils.BadRequest(c, "unknown code type")
	}

	if err := h.svc.Verify(c.Context(), input.Identifier, input.Type, input.Code); err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.Success(c, fiber.Map{"message": "code verified"})
}
