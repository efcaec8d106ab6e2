package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "quickclean/internal/log"
	"quickclean/internal/services"
)

// BookingHandler serves the booking lifecycle for one scope: the public
// routes use services.PublicScope, the admin group services.AdminScope.
type BookingHandler struct {
	Bookings *services.BookingService
	Scope    services.Scope
}

// POST /api/bookings
func (h *BookingHandler) Create(c *fiber.Ctx) error {
	var body bookingBody
	if err := c.BodyParser(&body); err != nil {
		return badJSON(c, err)
	}
	created, err := h.Bookings.Create(body.request())
	if err != nil {
		if len(created) > 0 {
			applog.Error(c, "booking.create.partial", err, map[string]any{"created": len(created)})
		}
		return writeError(c, err)
	}
	ids := make([]string, 0, len(created))
	for _, b := range created {
		ids = append(ids, b.ID)
	}
	applog.Audit(c, "booking.create", map[string]any{"bookings": ids, "customer_id": created[0].CustomerID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"bookings": created})
}

// GET /api/bookings
func (h *BookingHandler) List(c *fiber.Ctx) error {
	res, err := h.Bookings.List(h.Scope, listQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

func listQuery(c *fiber.Ctx) services.ListQuery {
	return services.ListQuery{
		Status:     c.Query("status"),
		Service:    c.Query("service"),
		Store:      c.Query("store"),
		AssignedTo: c.Query("assignedTo"),
		Phone:      c.Query("phone"),
		Page:       c.QueryInt("page", 1),
		Limit:      c.QueryInt("limit", 0),
	}
}

// GET /api/bookings/:id
func (h *BookingHandler) Get(c *fiber.Ctx) error {
	b, err := h.Bookings.Get(c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"booking": b})
}

// POST|PATCH /api/bookings/:id/assign
func (h *BookingHandler) Assign(c *fiber.Ctx) error {
	var body struct {
		AssignedTo string `json:"assignedTo"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badJSON(c, err)
	}
	id := c.Params("id")
	b, err := h.Bookings.Assign(h.Scope, id, body.AssignedTo)
	if err != nil {
		return writeError(c, err)
	}
	applog.Audit(c, "booking.assign", map[string]any{
		"booking_id":  id,
		"assigned_to": b.AssignedTo,
		"status":      b.Status,
		"scope":       h.Scope.Name,
	})
	return c.JSON(fiber.Map{"booking": b})
}

// PATCH /api/bookings/:id/status
func (h *BookingHandler) SetStatus(c *fiber.Ctx) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badJSON(c, err)
	}
	id := c.Params("id")
	b, err := h.Bookings.SetStatus(h.Scope, id, body.Status)
	if err != nil {
		return writeError(c, err)
	}
	applog.Audit(c, "booking.status", map[string]any{"booking_id": id, "status": b.Status, "scope": h.Scope.Name})
	return c.JSON(fiber.Map{"booking": b})
}

// DELETE /api/bookings/admin/:id
func (h *BookingHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	b, err := h.Bookings.Delete(id)
	if err != nil {
		return writeError(c, err)
	}
	applog.Audit(c, "booking.delete", map[string]any{"booking_id": id})
	return c.JSON(fiber.Map{"message": "Deleted", "booking": b})
}

// GET /api/bookings/admin/export.xlsx
func (h *BookingHandler) Export(c *fiber.Ctx) error {
	data, err := h.Bookings.ExportBookings(listQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	applog.Audit(c, "booking.export", map[string]any{"bytes": len(data), "status": strings.TrimSpace(c.Query("status"))})
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="bookings.xlsx"`)
	return c.Send(data)
}
