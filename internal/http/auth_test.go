package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"quickclean/internal/repos"
)

// Seeded admins store bcrypt hashes, never the raw password.
func TestSeededAdminPasswordIsHashed(t *testing.T) {
	db, err := repos.OpenDB("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	if err := repos.SeedAdmin(db, "Ops", "s3cret-pass", "", false); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	a, err := repos.NewAdminRepo(db).ByUsername("ops")
	if err != nil {
		t.Fatalf("lookup admin: %v", err)
	}
	if a.Hash == "s3cret-pass" || !strings.HasPrefix(a.Hash, "$2") {
		t.Fatalf("expected bcrypt hash, got %q", a.Hash)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.Hash), []byte("s3cret-pass")); err != nil {
		t.Fatalf("hash does not match password: %v", err)
	}
	cost, err := bcrypt.Cost([]byte(a.Hash))
	if err != nil || cost < 12 {
		t.Fatalf("expected bcrypt cost >= 12, got %d (%v)", cost, err)
	}
}

func TestLoginIssuesTokenCookie(t *testing.T) {
	ta := newTestApp(t, testConfig("development"), true)

	resp, raw := ta.do(t, "POST", "/api/admin/login", map[string]any{"username": "OPS", "password": "s3cret-pass"}, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", resp.StatusCode, raw)
	}
	var body struct {
		OK    bool   `json:"ok"`
		Token string `json:"token"`
	}
	decode(t, raw, &body)
	if !body.OK || body.Token == "" {
		t.Fatalf("expected ok and token, got %s", raw)
	}

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "token" {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value != body.Token {
		t.Fatalf("expected token cookie matching body token")
	}
	if !cookie.HttpOnly {
		t.Fatalf("token cookie must be HttpOnly")
	}

	// the cookie alone authenticates /me
	req := httptest.NewRequest("GET", "/api/admin/me", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: cookie.Value})
	me, err := ta.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if me.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from /me, got %d", me.StatusCode)
	}
}

func TestLoginCookieIsCrossSiteInProduction(t *testing.T) {
	ta := newTestApp(t, testConfig("production"), true)
	resp, raw := ta.do(t, "POST", "/api/admin/login", map[string]any{"username": "ops", "password": "s3cret-pass"}, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", resp.StatusCode, raw)
	}
	for _, c := range resp.Cookies() {
		if c.Name == "token" {
			if !c.Secure || c.SameSite != http.SameSiteNoneMode {
				t.Fatalf("expected Secure SameSite=None cookie, got secure=%v samesite=%v", c.Secure, c.SameSite)
			}
			return
		}
	}
	t.Fatalf("token cookie missing")
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ta := newTestApp(t, testConfig("development"), true)
	cases := []map[string]any{
		{"username": "ops", "password": "wrong-pass"},
		{"username": "ghost", "password": "s3cret-pass"},
		{"username": "o", "password": "s3cret-pass"},
		{"username": "ops", "password": "123"},
	}
	for _, body := range cases {
		resp, raw := ta.do(t, "POST", "/api/admin/login", body, "")
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%v: expected 401, got %d", body, resp.StatusCode)
		}
		if !strings.Contains(string(raw), "Invalid credentials") {
			t.Fatalf("%v: expected generic message, got %s", body, raw)
		}
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	ta := newTestApp(t, testConfig("development"), false)
	resp, _ := ta.do(t, "POST", "/api/admin/logout", nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	for _, c := range resp.Cookies() {
		if c.Name == "token" && c.Value == "" {
			return
		}
	}
	t.Fatalf("expected a cleared token cookie")
}

// Login attempts are throttled per client: five per window.
func TestLoginThrottle(t *testing.T) {
	ta := newTestApp(t, testConfig("development"), false)
	body := map[string]any{"username": "ops", "password": "wrong-pass"}
	for i := 0; i < 5; i++ {
		resp, _ := ta.do(t, "POST", "/api/admin/login", body, "")
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, resp.StatusCode)
		}
	}
	resp, raw := ta.do(t, "POST", "/api/admin/login", body, "")
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after 5 attempts, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(raw), "Too many attempts") {
		t.Fatalf("unexpected throttle body: %s", raw)
	}
}
