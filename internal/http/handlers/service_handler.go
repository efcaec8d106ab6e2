package handlers

import (
	"github.com/gofiber/fiber/v2"

	"quickclean/internal/domain"
	applog "quickclean/internal/log"
	"quickclean/internal/repos"
	"quickclean/internal/services"
	"quickclean/internal/validate"
)

type ServiceHandler struct {
	Catalog *services.CatalogService
}

// GET /api/services
func (h *ServiceHandler) List(c *fiber.Ctx) error {
	svcs, err := h.Catalog.ListServices()
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"services": svcs})
}

// POST /api/services
func (h *ServiceHandler) Create(c *fiber.Ctx) error {
	var body struct {
		Name        string  `json:"name"`
		Price       *number `json:"price"`
		Description string  `json:"description"`
		IsActive    *bool   `json:"isActive"`
		Icon        string  `json:"icon"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badJSON(c, err)
	}
	name, ok := validate.Text(body.Name, 100)
	if !ok {
		return writeError(c, domain.Invalid("name", "name is required"))
	}
	price := body.Price.ptr()
	if !positive(price) {
		return writeError(c, domain.Invalid("price", "price must be a number > 0"))
	}
	svc := &domain.Service{
		Name:        name,
		Price:       *price,
		Description: body.Description,
		IsActive:    body.IsActive == nil || *body.IsActive,
		Icon:        body.Icon,
	}
	if err := h.Catalog.CreateService(svc); err != nil {
		return writeError(c, err)
	}
	applog.Audit(c, "service.create", map[string]any{"service_id": svc.ID, "name": svc.Name})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"service": svc})
}

// PATCH /api/services/:id
func (h *ServiceHandler) Update(c *fiber.Ctx) error {
	var body struct {
		Price       *number `json:"price"`
		IsActive    *bool   `json:"isActive"`
		Description *string `json:"description"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badJSON(c, err)
	}
	patch := repos.ServicePatch{IsActive: body.IsActive, Description: body.Description}
	if p := body.Price.ptr(); p != nil {
		if !positive(p) {
			return writeError(c, domain.Invalid("price", "price must be a number > 0"))
		}
		patch.Price = p
	}
	id := c.Params("id")
	svc, err := h.Catalog.UpdateService(id, patch)
	if err != nil {
		return writeError(c, err)
	}
	applog.Audit(c, "service.update", map[string]any{"service_id": id})
	return c.JSON(fiber.Map{"service": svc})
}
