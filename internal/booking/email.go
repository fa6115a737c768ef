package booking

import (
	"strings"

	"github.com/iliyamo/event-ticketing/internal/apperr"
)

// NormalizeEmail trims and lower-cases a booker email and rejects values
// that cannot identify a real user: empty strings, the literals
// "undefined" and "null" leaked from clients, guest sentinels (any address
// whose local part starts with "guest") and strings without a local part
// and domain.
func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	switch email {
	case "":
		return "", apperr.Input("user email is required")
	case "undefined", "null", "guest":
		return "", apperr.Input("a signed-in user email is required")
	}
	at := strings.LastIndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return "", apperr.Input("invalid user email")
	}
	if strings.HasPrefix(email[:at], "guest") {
		return "", apperr.Input("a signed-in user email is required")
	}
	return email, nil
}

// lookupEmail normalizes an email used to query bookings. Unlike
// NormalizeEmail it accepts any non-sentinel value; unknown users simply
// have no bookings.
func lookupEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	switch email {
	case "", "undefined", "null":
		return "", apperr.Input("email is required")
	}
	return email, nil
}
