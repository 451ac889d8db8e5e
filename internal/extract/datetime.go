package extract

import (
	"regexp"
	"time"
)

// dateTimeLayouts are tried in order against a captured token. Day-first
// numeric forms come before ISO variants, date-only forms last.
var dateTimeLayouts = []string{
	"2.1.2006 15:04",
	"2.1.2006 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2.1.2006",
	"2006-01-02",
}

// dateToken matches a date or date-time token: day-first numeric
// (15.12.2023, optionally with HH:MM[:SS]) or ISO-like (2023-12-15,
// optionally with T or space separated time).
const dateToken = `([0-9]{1,2}\.[0-9]{1,2}\.[0-9]{2,4}(?:\s+[0-9]{1,2}:[0-9]{2}(?::[0-9]{2})?)?` +
	`|[0-9]{4}-[0-9]{2}-[0-9]{2}(?:[T\s][0-9]{1,2}:[0-9]{2}(?::[0-9]{2})?)?)`

var (
	departureTimeAnchors = compileTimeAnchors("ab", "departure", "von")
	arrivalTimeAnchors   = compileTimeAnchors("an", "arrival", "nach")
)

func compileTimeAnchors(keywords ...string) []*regexp.Regexp {
	anchors := make([]*regexp.Regexp, 0, len(keywords))
	for _, kw := range keywords {
		anchors = append(anchors, regexp.MustCompile(`(?i)`+kw+`\s*[:\s]*`+dateToken))
	}
	return anchors
}

// DepartureTime extracts the departure timestamp anchored on ab/departure/von.
func DepartureTime(text string) *time.Time {
	return anchoredTime(departureTimeAnchors, text)
}

// ArrivalTime extracts the arrival timestamp anchored on an/arrival/nach.
func ArrivalTime(text string) *time.Time {
	return anchoredTime(arrivalTimeAnchors, text)
}

// anchoredTime tries each anchor pattern in order; for the first anchor that
// captures a token, the token is parsed against the layout list. An anchor
// whose token parses with no layout falls through to the next anchor.
func anchoredTime(anchors []*regexp.Regexp, text string) *time.Time {
	for _, anchor := range anchors {
		m := anchor.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if ts, ok := parseDateTime(m[1]); ok {
			return &ts
		}
	}
	return nil
}

func parseDateTime(token string) (time.Time, bool) {
	for _, layout := range dateTimeLayouts {
		if ts, err := time.Parse(layout, token); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
