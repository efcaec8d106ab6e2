package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"quickclean/internal/config"
	"quickclean/internal/domain"
	"quickclean/internal/http/handlers"
	applog "quickclean/internal/log"
	"quickclean/internal/repos"
)

const partner = "Chijohnz's Supermarket"

type recorder struct {
	mu     sync.Mutex
	events []domain.BookingEvent
}

func (r *recorder) Publish(ev domain.BookingEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

type testApp struct {
	app    *fiber.App
	deps   *handlers.Deps
	events *recorder
}

func testConfig(env string) config.Config {
	return config.Config{
		Env:            env,
		JWTSecret:      "test-secret",
		JWTTTL:         time.Hour,
		PartnerStore:   partner,
		KnownStores:    []string{partner, "Shoprite Ifite"},
		InternalSecret: "internal-secret",
	}
}

// newTestApp mounts every route on an in-memory database. Seeding the admin
// is optional since bcrypt at cost 12 is slow.
func newTestApp(t *testing.T, cfg config.Config, seedAdmin bool) *testApp {
	t.Helper()
	db, err := repos.OpenDB("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := repos.SeedPartnerStore(db, partner, "Yahoo junction"); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	if seedAdmin {
		if err := repos.SeedAdmin(db, "ops", "s3cret-pass", "+2348033005971", false); err != nil {
			t.Fatalf("seed admin: %v", err)
		}
	}

	engine := html.New("../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine, ErrorHandler: handlers.ErrorHandler(cfg.Production())})
	app.Use(requestid.New())

	rec := &recorder{}
	deps := handlers.NewDeps(db, cfg, nil, nil, rec)
	handlers.Mount(app, deps)
	return &testApp{app: app, deps: deps, events: rec}
}

func (ta *testApp) adminToken(t *testing.T, role string) string {
	t.Helper()
	tok, err := ta.deps.Auth.Issue(&domain.Admin{ID: "admin-1", Username: "ops", Role: role})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return tok
}

// do sends body as JSON when it is not nil. A non-empty token goes in the
// Authorization header.
func (ta *testApp) do(t *testing.T, method, path string, body any, token string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			r = strings.NewReader(b)
		default:
			raw, err := json.Marshal(b)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			r = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ta.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	out, _ := io.ReadAll(resp.Body)
	return resp, out
}

func decode(t *testing.T, raw []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
}

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	Audit  bool           `json:"audit"`
	Fields map[string]any `json:"fields"`
}

type lockedBuf struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	buf := &lockedBuf{}
	restore := applog.SetOutput(buf)
	fn()
	restore()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.b.String()), "\n") {
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func findAction(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}

func homeBooking(name string) map[string]any {
	return map[string]any{
		"name":    name,
		"phone":   "0803 300 5971",
		"service": domain.ServiceHome,
		"price":   15000,
		"date":    "2026-03-01",
	}
}
