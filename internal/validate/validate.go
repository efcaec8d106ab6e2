package validate

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"quickclean/internal/phone"
)

var (
	reUsername = regexp.MustCompile(`^[a-z0-9._-]{3,32}$`)
	reReaction = regexp.MustCompile(`^(like|dislike)$`)
	reImageExt = regexp.MustCompile(`(?i)\.(jpe?g|png|webp)$`)
)

// Date accepts an RFC 3339 timestamp or a plain YYYY-MM-DD day and returns
// it in canonical form.
func Date(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC().Format(time.RFC3339), true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.Format("2006-01-02"), true
	}
	return "", false
}

// Phone returns the normalized form of a plausible phone number.
func Phone(s string) (string, bool) {
	if !phone.IsValid(s) {
		return "", false
	}
	return phone.Normalize(s), true
}

// Text trims s and rejects it when empty or longer than max runes.
func Text(s string, max int) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len([]rune(s)) > max {
		return "", false
	}
	return s, true
}

// ID validates a resource identifier.
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if _, err := uuid.Parse(s); err != nil {
		return "", false
	}
	return s, true
}

func Username(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	return s, reUsername.MatchString(s)
}

// Password enforces a length window for login checks.
func Password(s string) bool {
	l := len(s)
	return l >= 6 && l <= 72
}

// URL accepts absolute http(s) URLs, used for product images.
func URL(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 2048 {
		return "", false
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", false
	}
	return s, true
}

func Reaction(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	return s, reReaction.MatchString(s)
}

// ImageName reports whether filename has an accepted image extension.
func ImageName(filename string) bool {
	return reImageExt.MatchString(strings.TrimSpace(filename))
}
