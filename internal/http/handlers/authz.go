package handlers

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"quickclean/internal/domain"
	applog "quickclean/internal/log"
	"quickclean/internal/services"
)

const tokenCookie = "token"

func bearer(c *fiber.Ctx) string {
	if tok := c.Cookies(tokenCookie); tok != "" {
		return tok
	}
	h := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

// RequireAdmin admits requests carrying a valid admin token, from the token
// cookie or an Authorization header. Missing or bad tokens get 401, other
// roles 403.
func RequireAdmin(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok := bearer(c)
		if tok == "" {
			applog.Security(c, "access.denied.admin", map[string]any{"reason": "no_token"})
			return writeError(c, domain.ErrUnauthorized)
		}
		claims, err := auth.Verify(tok)
		if err != nil {
			applog.Security(c, "access.denied.admin", map[string]any{"reason": "bad_token"})
			return writeError(c, domain.ErrUnauthorized)
		}
		if !domain.IsAdmin(claims.Role) {
			applog.Security(c, "access.denied.admin", map[string]any{"reason": "role", "role": claims.Role, "sub": claims.Subject})
			return writeError(c, domain.ErrForbidden)
		}
		c.Locals("admin", claims)
		c.Locals("admin_id", claims.Subject)
		return c.Next()
	}
}

// RequireInternalSecret guards maintenance endpoints with a shared secret
// sent in the x-internal-secret header.
func RequireInternalSecret(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if secret == "" || subtle.ConstantTimeCompare([]byte(c.Get("x-internal-secret")), []byte(secret)) != 1 {
			applog.Security(c, "access.denied.internal", nil)
			return writeError(c, domain.ErrForbidden)
		}
		return c.Next()
	}
}
