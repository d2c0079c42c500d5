package utils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	domain "vestra/internal/errors"
)

// Respond sends a JSON response with the specified status code.
func Respond(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(data)
}

// Success sends a successful JSON response.
func Success(c *fiber.Ctx, data interface{}) error {
	return Respond(c, fiber.StatusOK, data)
}

// Created sends a successful JSON response with status 201.
func Created(c *fiber.Ctx, data interface{}) error {
	return Respond(c, fiber.StatusCreated, data)
}

// BadRequest sends a JSON error response with status 400.
func BadRequest(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusBadRequest, fiber.Map{"error": message})
}

// Unauthorized sends a JSON error response with status 401.
func Unauthorized(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusUnauthorized, fiber.Map{"error": message})
}

// Forbidden sends a JSON error response with status 403.
func Forbidden(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusForbidden, fiber.Map{"error": message})
}

// NotFound sends a JSON error response with status 404.
func NotFound(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusNotFound, fiber.Map{"error": message})
}

// InternalError sends a JSON error response with status 500.
func InternalError(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusInternalServerError, fiber.Map{"error": message})
}

// DomainErrorResponse maps a domain error to its HTTP status and renders the
// stable code alongside the message, so clients can branch on the code.
func DomainErrorResponse(c *fiber.Ctx, err error) error {
	var derr *domain.DomainError
	if !errors.As(err, &derr) {
		return InternalError(c, "internal server error")
	}
	return Respond(c, domainStatus(derr), fiber.Map{
		"error": derr.Message,
		"code":  derr.Code,
	})
}

func domainStatus(err *domain.DomainError) int {
	switch err.Code {
	case "WALLET_NOT_FOUND", "INVESTMENT_NOT_FOUND", "PLAN_NOT_FOUND", "CODE_NOT_FOUND":
		return fiber.StatusNotFound
	case "WALLET_BUSY":
		return fiber.StatusConflict
	case "TOO_MANY_ATTEMPTS", "RESEND_COOLDOWN":
		return fiber.StatusTooManyRequests
	case "INSUFFICIENT_FUNDS", "WALLET_LOCKED", "INVESTMENT_NOT_ACTIVE", "PLAN_INACTIVE":
		return fiber.StatusUnprocessableEntity
	case "CURRENCY_MISMATCH":
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusBadRequest
	}
}
