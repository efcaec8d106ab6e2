package handlers

import (
	"github.com/gofiber/fiber/v2"

	"quickclean/internal/services"
)

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if claims, ok := c.Locals("admin").(*services.Claims); ok {
		data["Admin"] = claims.Username
	}
	if rid, ok := c.Locals("requestid").(string); ok {
		data["RequestID"] = rid
	}
	return c.Render(tmpl, data)
}
