package handlers

import (
	"github.com/gofiber/fiber/v2"

	"quickclean/internal/domain"
	applog "quickclean/internal/log"
	"quickclean/internal/repos"
	"quickclean/internal/validate"
)

type LodgeHandler struct {
	Lodges *repos.LodgeRepo
}

func (h *LodgeHandler) List(c *fiber.Ctx) error {
	lodges, err := h.Lodges.List()
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"lodges": lodges})
}

func (h *LodgeHandler) Create(c *fiber.Ctx) error {
	var body struct {
		Name     string `json:"name"`
		Location string `json:"location"`
		Status   string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badJSON(c, err)
	}
	ve := &domain.ValidationError{Message: "Missing fields"}
	name, ok := validate.Text(body.Name, 200)
	if !ok {
		ve.Fields = append(ve.Fields, domain.FieldError{Field: "name", Message: "name is required"})
	}
	loc, ok := validate.Text(body.Location, 200)
	if !ok {
		ve.Fields = append(ve.Fields, domain.FieldError{Field: "location", Message: "location is required"})
	}
	if len(ve.Fields) > 0 {
		return writeError(c, ve)
	}
	if body.Status != "" && body.Status != "pending" && body.Status != "approved" {
		return writeError(c, domain.Invalid("status", "invalid status"))
	}
	l := &domain.Lodge{Name: name, Location: loc, Status: body.Status}
	if err := h.Lodges.Create(l); err != nil {
		return writeError(c, err)
	}
	applog.Audit(c, "lodge.create", map[string]any{"lodge_id": l.ID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"lodge": l})
}
