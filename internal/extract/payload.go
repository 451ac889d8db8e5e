// Package extract recovers structured trip fields from unstructured ticket
// text and classifies decoded barcode payloads. Every extractor is a pure
// function over the full text that returns its first match or nothing;
// extractors never fail and never interact.
package extract

import (
	"regexp"
	"strings"
)

var base64Pattern = regexp.MustCompile(`^[A-Za-z0-9+/]+={0,2}$`)

// IsTicketPayload classifies a decoded barcode payload as ticket-like.
// Rules are checked in priority order, first match wins. The fallback rule
// accepts any moderately long string: this is a noise filter, not an
// authenticity check.
func IsTicketPayload(payload string) bool {
	switch {
	// Deutsche Bahn ticket payloads.
	case strings.HasPrefix(payload, "OTP") || strings.Contains(payload, "bahn.de"):
		return true
	case strings.HasPrefix(payload, "http://") || strings.HasPrefix(payload, "https://"):
		return true
	// Serialized structured data.
	case strings.HasPrefix(payload, "{") && strings.HasSuffix(payload, "}"):
		return true
	case base64Pattern.MatchString(payload) && len(payload) > 20:
		return true
	case len(payload) > 10:
		return true
	default:
		return false
	}
}

// FirstTicketPayload returns the first payload in scan order that looks
// ticket-like, or "" when none qualifies.
func FirstTicketPayload(payloads []string) string {
	for _, p := range payloads {
		if IsTicketPayload(p) {
			return p
		}
	}
	return ""
}
