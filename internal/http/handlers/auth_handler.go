package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"quickclean/internal/domain"
	applog "quickclean/internal/log"
	"quickclean/internal/services"
	"quickclean/internal/validate"
)

type AuthHandler struct {
	Auth       *services.AuthService
	Production bool
}

type adminView struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Role           string `json:"role"`
	WhatsAppNumber string `json:"whatsappNumber,omitempty"`
	LastLogin      string `json:"lastLogin,omitempty"`
}

func viewOf(a *domain.Admin) adminView {
	return adminView{ID: a.ID, Username: a.Username, Role: a.Role, WhatsAppNumber: a.WhatsAppNumber, LastLogin: a.LastLogin}
}

func (h *AuthHandler) setToken(c *fiber.Ctx, tok string, expires time.Time) {
	ck := &fiber.Cookie{
		Name:     tokenCookie,
		Value:    tok,
		Path:     "/",
		HTTPOnly: true,
		Expires:  expires,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
	if h.Production {
		ck.SameSite = fiber.CookieSameSiteNoneMode
		ck.Secure = true
	}
	c.Cookie(ck)
}

// POST /api/admin/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badJSON(c, err)
	}
	username, ok := validate.Username(body.Username)
	if !ok || !validate.Password(body.Password) {
		applog.Security(c, "auth.login.fail", map[string]any{"username": username, "reason": "bad_format"})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
	}
	a, tok, err := h.Auth.Login(username, body.Password)
	if errors.Is(err, services.ErrBadCreds) {
		applog.Security(c, "auth.login.fail", map[string]any{"username": username})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
	}
	if err != nil {
		return writeError(c, err)
	}
	h.setToken(c, tok, time.Now().Add(h.Auth.TTL))
	c.Locals("admin_id", a.ID)
	applog.Audit(c, "auth.login.success", map[string]any{"username": a.Username})
	return c.JSON(fiber.Map{"ok": true, "token": tok})
}

// POST /api/admin/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.setToken(c, "", time.Now().Add(-time.Hour))
	applog.Audit(c, "auth.logout", nil)
	return c.JSON(fiber.Map{"ok": true})
}

// GET /api/admin/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	id, _ := c.Locals("admin_id").(string)
	a, err := h.Auth.Me(id)
	if domain.IsNotFound(err) {
		return writeError(c, domain.ErrUnauthorized)
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"admin": viewOf(a)})
}

// POST /api/admin/internal/set-whatsapp
func (h *AuthHandler) SetWhatsApp(c *fiber.Ctx) error {
	var body struct {
		Username string `json:"username"`
		Number   string `json:"whatsappNumber"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badJSON(c, err)
	}
	username, ok := validate.Username(body.Username)
	if !ok {
		return writeError(c, domain.Invalid("username", "username required"))
	}
	num, ok := validate.Phone(body.Number)
	if !ok {
		return writeError(c, domain.Invalid("whatsappNumber", "Invalid phone number"))
	}
	a, err := h.Auth.SetWhatsApp(username, num)
	if err != nil {
		return writeError(c, err)
	}
	applog.Audit(c, "admin.whatsapp.set", map[string]any{"username": a.Username})
	return c.JSON(fiber.Map{"ok": true, "admin": viewOf(a)})
}
