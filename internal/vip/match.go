// Package vip implements the guest-list verification flow: a short
// intro, a name check against the aliases of each entry, a month/day check
// against the matched entry, and the reveal of that entry's message.
//
// Mismatches are soft. There is no attempt counter and no lockout.
package vip

import (
	"strings"

	"archives/internal/models"
)

// NormalizeName trims and lowercases a submitted name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// MatchName returns the first entry listing name among its aliases.
func MatchName(entries []models.VIPEntry, name string) (*models.VIPEntry, bool) {
	needle := NormalizeName(name)
	if needle == "" {
		return nil, false
	}
	for i := range entries {
		for _, alias := range entries[i].Aliases() {
			if alias == needle {
				return &entries[i], true
			}
		}
	}
	return nil, false
}

// MonthDay extracts "MM-DD" from a value that starts with a YYYY-MM-DD date
// (plain dates and RFC 3339 timestamps both qualify).
func MonthDay(date string) (string, bool) {
	date = strings.TrimSpace(date)
	if len(date) < 10 {
		return "", false
	}
	for i, ch := range date[:10] {
		switch i {
		case 4, 7:
			if ch != '-' {
				return "", false
			}
		default:
			if ch < '0' || ch > '9' {
				return "", false
			}
		}
	}
	return date[5:10], true
}

// SameMonthDay compares two dates ignoring the year.
func SameMonthDay(a, b string) bool {
	ma, okA := MonthDay(a)
	mb, okB := MonthDay(b)
	return okA && okB && ma == mb
}
