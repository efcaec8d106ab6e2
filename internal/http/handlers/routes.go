package handlers

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	applog "quickclean/internal/log"
)

// Mount registers every API, page and socket route on app.
func Mount(app *fiber.App, d *Deps) {
	requireAdmin := RequireAdmin(d.Auth)

	api := app.Group("/api")

	// Admin booking routes first so "admin" is never taken for a booking id.
	adminBookings := api.Group("/bookings/admin", requireAdmin)
	adminBookings.Get("/", d.AdminBookingHandler.List)
	adminBookings.Get("/export.xlsx", d.AdminBookingHandler.Export)
	adminBookings.Post("/:id/assign", d.AdminBookingHandler.Assign)
	adminBookings.Patch("/:id/assign", d.AdminBookingHandler.Assign)
	adminBookings.Patch("/:id/status", d.AdminBookingHandler.SetStatus)
	adminBookings.Delete("/:id", d.AdminBookingHandler.Delete)

	createLimiter := limiter.New(limiter.Config{
		Max:        30,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.booking.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too many requests, retry soon"})
		},
	})

	bookings := api.Group("/bookings")
	bookings.Post("/", createLimiter, d.BookingHandler.Create)
	bookings.Get("/", d.BookingHandler.List)
	bookings.Get("/:id", d.BookingHandler.Get)
	bookings.Post("/:id/assign", d.BookingHandler.Assign)
	bookings.Patch("/:id/assign", d.BookingHandler.Assign)
	bookings.Patch("/:id/status", d.BookingHandler.SetStatus)

	// v2 aliases
	app.Post("/booking", createLimiter, d.BookingHandler.Create)
	app.Get("/bookings", d.BookingHandler.List)

	stores := api.Group("/stores")
	stores.Get("/", d.StoreHandler.List)
	stores.Get("/:storeId", d.StoreHandler.Detail)
	stores.Get("/:storeId/products", d.StoreHandler.Products)
	stores.Post("/:storeId/products", requireAdmin, d.StoreHandler.AddProduct)
	stores.Post("/:id/react", d.StoreHandler.React)
	stores.Get("/:id/stats", d.StoreHandler.StatsOf)

	products := api.Group("/products")
	products.Patch("/:id", requireAdmin, d.ProductHandler.Update)
	products.Post("/:id/react", d.ProductHandler.React)
	products.Get("/:id/stats", d.ProductHandler.StatsOf)

	svcs := api.Group("/services")
	svcs.Get("/", d.ServiceHandler.List)
	svcs.Post("/", requireAdmin, d.ServiceHandler.Create)
	svcs.Patch("/:id", requireAdmin, d.ServiceHandler.Update)

	lodges := api.Group("/lodges")
	lodges.Get("/", d.LodgeHandler.List)
	lodges.Post("/", d.LodgeHandler.Create)

	admin := api.Group("/admin")
	admin.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too many attempts. Please try again later."})
		},
	}), d.AuthHandler.Login)
	admin.Post("/logout", d.AuthHandler.Logout)
	admin.Get("/me", requireAdmin, d.AuthHandler.Me)
	admin.Post("/internal/set-whatsapp", RequireInternalSecret(d.InternalSecret), d.AuthHandler.SetWhatsApp)

	api.Post("/upload", requireAdmin, d.UploadHandler.Upload)

	app.Get("/admin/board", requireAdmin, d.AdminHandler.Board)

	if d.Hub != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws/bookings/:id", websocket.New(d.Hub.Serve))
	}
}
