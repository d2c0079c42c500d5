package handlers

import (
	"github.com/gofiber/fiber/v2"

	"vestra/internal/repositories"
)

func HealthCheck(c *fiber.Ctx) error {
	database := "connected"
	if repositories.DB == nil {
		database = "unavailable"
	} else if sqlDB, err := repositories.DB.DB(); err != nil || sqlDB.Ping() != nil {
		database = "unavailable"
	}

	redis := "connected"
	if repositories.CacheService == nil {
		redis = "unavailable"
	}

	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": "1.0.0",
		"services": fiber.Map{
			"database": database,
			"redis":    redis,
		},
	})
}
