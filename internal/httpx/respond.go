package httpx

import "github.com/gofiber/fiber/v2"

// OK wraps data in the standard success envelope.
func OK(c *fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"success": true, "data": data})
}

// OKMessage is OK with a human-readable message alongside the data.
func OKMessage(c *fiber.Ctx, data any, message string) error {
	return c.JSON(fiber.Map{"success": true, "data": data, "message": message})
}

// Created wraps data in the success envelope with a 201 status.
func Created(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": data})
}
