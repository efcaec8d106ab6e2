package handlers_test

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"quickclean/internal/http/handlers"
)

func errorApp(production bool) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler(production)})
	app.Get("/err", func(c *fiber.Ctx) error {
		return errors.New("db timeout: secret trace")
	})
	app.Get("/teapot", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})
	return app
}

func TestErrorHandlerHidesInternalsInProduction(t *testing.T) {
	resp, err := errorApp(true).Test(httptest.NewRequest("GET", "/err", nil))
	if err != nil {
		t.Fatalf("test request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	s := string(body)
	if !strings.Contains(s, "Something went wrong") {
		t.Fatalf("friendly message missing; body=%s", s)
	}
	if strings.Contains(s, "db timeout") || strings.Contains(s, "secret") || strings.Contains(s, "stack") {
		t.Fatalf("internal details leaked to user; body=%s", s)
	}
}

func TestErrorHandlerAddsDetailsOutsideProduction(t *testing.T) {
	resp, err := errorApp(false).Test(httptest.NewRequest("GET", "/err", nil))
	if err != nil {
		t.Fatalf("test request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	var body map[string]any
	raw, _ := io.ReadAll(resp.Body)
	decode(t, raw, &body)
	if body["error"] != "Something went wrong. Please try again." {
		t.Fatalf("unexpected error message: %v", body["error"])
	}
	if body["details"] != "db timeout: secret trace" {
		t.Fatalf("expected details in development, got %v", body["details"])
	}
	if s, _ := body["stack"].(string); s == "" {
		t.Fatalf("expected a stack in development")
	}
}

func TestErrorHandlerKeepsClientErrors(t *testing.T) {
	resp, err := errorApp(true).Test(httptest.NewRequest("GET", "/teapot", nil))
	if err != nil {
		t.Fatalf("test request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusTeapot {
		t.Fatalf("expected 418, got %d", resp.StatusCode)
	}
	raw, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(raw), "short and stout") {
		t.Fatalf("client error message lost; body=%s", raw)
	}
}

func TestUnknownBookingIs404(t *testing.T) {
	ta := newTestApp(t, testConfig("production"), false)
	resp, raw := ta.do(t, "GET", "/api/bookings/00000000-0000-0000-0000-000000000000", nil, "")
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", resp.StatusCode, raw)
	}
	if !strings.Contains(string(raw), "not found") {
		t.Fatalf("expected not found message; body=%s", raw)
	}
}
