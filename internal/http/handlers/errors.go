package handlers

import (
	"errors"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"

	"quickclean/internal/domain"
	applog "quickclean/internal/log"
)

const genericMessage = "Something went wrong. Please try again."

// writeError maps err onto a JSON response. Only validation messages and
// resource names reach the caller; everything else is logged and hidden.
func writeError(c *fiber.Ctx, err error) error {
	var ve *domain.ValidationError
	var nf *domain.NotFoundError
	var fe *fiber.Error
	switch {
	case errors.As(err, &ve):
		applog.Security(c, "validation.fail", map[string]any{"reason": ve.Message, "fields": ve.Fields})
		fields := ve.Fields
		if fields == nil {
			fields = []domain.FieldError{}
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ve.Message, "errors": fields})
	case errors.As(err, &nf):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": nf.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError:
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	return err
}

// ErrorHandler is the app-wide fallback. 5xx responses carry a generic
// message; outside production the cause and a stack are attached.
func ErrorHandler(production bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if werr := writeError(c, err); werr == nil {
			return nil
		}
		applog.Error(c, "server.error", err, nil)
		body := fiber.Map{"error": genericMessage}
		if !production {
			body["details"] = err.Error()
			body["stack"] = string(debug.Stack())
		}
		return c.Status(fiber.StatusInternalServerError).JSON(body)
	}
}

func badJSON(c *fiber.Ctx, err error) error {
	applog.Security(c, "validation.fail", map[string]any{"reason": "bad_json", "error": err.Error()})
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON body", "errors": []domain.FieldError{}})
}
