package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "quickclean/internal/log"
	"quickclean/internal/services"
)

type AdminHandler struct {
	Bookings *services.BookingService
}

// GET /admin/board
func (h *AdminHandler) Board(c *fiber.Ctx) error {
	res, err := h.Bookings.List(services.AdminScope, listQuery(c))
	if err != nil {
		applog.Error(c, "admin.board.list.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load bookings"})
	}
	return render(c, "admin_board", fiber.Map{
		"Bookings": res.Bookings,
		"Meta":     res.Meta,
		"Statuses": services.AdminScope.Statuses,
		"Filter":   c.Query("status"),
	})
}
