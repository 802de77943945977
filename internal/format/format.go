package format

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/alnah/go-hhapply/internal/hh"
)

// DefaultTruncate is the rune limit used for titles in listings.
const DefaultTruncate = 75

// Truncate cuts s to limit runes and appends "…" when anything was cut.
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit]) + "…"
}

// Salary formats a salary fork as "от X до Y CUR". Missing bounds print
// as "-". A nil range formats as "".
func Salary(s *hh.SalaryRange) string {
	if s == nil {
		return ""
	}
	bound := func(p *int) string {
		if p == nil || *p == 0 {
			return "-"
		}
		return strconv.Itoa(*p)
	}
	return strings.TrimSpace(fmt.Sprintf("от %s до %s %s", bound(s.From), bound(s.To), s.Currency))
}

// Preview shortens a chat transcript to its first line, "..." and the
// last three lines when it has more than five lines.
func Preview(lines []string) []string {
	if len(lines) <= 5 {
		return lines
	}
	out := make([]string, 0, 5)
	out = append(out, lines[0], "...")
	return append(out, lines[len(lines)-3:]...)
}

// FullName joins name parts with single spaces, skipping empty ones.
func FullName(parts ...string) string {
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}
