package handlers

import (
	"github.com/gofiber/fiber/v2"

	"quickclean/internal/domain"
	applog "quickclean/internal/log"
	"quickclean/internal/repos"
	"quickclean/internal/services"
	"quickclean/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
	Stats   *services.StatsService
}

// PATCH /api/products/:id
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var body struct {
		Name        *string `json:"name"`
		Price       *number `json:"price"`
		IsAvailable *bool   `json:"isAvailable"`
		Image       *string `json:"image"`
		Description *string `json:"description"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badJSON(c, err)
	}
	patch := repos.ProductPatch{IsAvailable: body.IsAvailable, Description: body.Description}
	if body.Name != nil {
		n, ok := validate.Text(*body.Name, 200)
		if !ok {
			return writeError(c, domain.Invalid("name", "name must not be empty"))
		}
		patch.Name = &n
	}
	if p := body.Price.ptr(); p != nil {
		if !positive(p) {
			return writeError(c, domain.Invalid("price", "price must be a number > 0"))
		}
		patch.Price = p
	}
	if body.Image != nil && *body.Image != "" {
		if _, ok := validate.URL(*body.Image); !ok {
			return writeError(c, domain.Invalid("image", "image must be a URL"))
		}
	}
	patch.Image = body.Image
	if body.Description != nil && len([]rune(*body.Description)) > 1000 {
		return writeError(c, domain.Invalid("description", "description must be at most 1000 characters"))
	}

	id := c.Params("id")
	p, err := h.Catalog.UpdateProduct(id, patch)
	if err != nil {
		return writeError(c, err)
	}
	applog.Audit(c, "product.update", map[string]any{"product_id": id})
	return c.JSON(fiber.Map{"product": p})
}

// POST /api/products/:id/react
func (h *ProductHandler) React(c *fiber.Ctx) error {
	reaction, err := reactionBody(c)
	if err != nil {
		return writeError(c, err)
	}
	st, err := h.Stats.ReactProduct(c.Params("id"), reaction)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"stats": st})
}

// GET /api/products/:id/stats
func (h *ProductHandler) StatsOf(c *fiber.Ctx) error {
	st, err := h.Stats.ProductStats(c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"stats": st})
}
