// Package textutil has the accent insensitive search and French formatting used by the front ends
package textutil

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CurrencySuffix is appended by FormatCurrency
const CurrencySuffix = "FCFA"

var printer = message.NewPrinter(language.French)

// Fold lower-cases s and strips its diacritics so "Thiès" matches "thies"
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// Contains reports whether needle occurs in haystack, ignoring case and accents
func Contains(haystack, needle string) bool {
	return strings.Contains(Fold(haystack), Fold(needle))
}

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9\- ]+`)
	separators   = regexp.MustCompile(`[ -]+`)
)

// Slug turns a label into a file name friendly identifier, e.g. "Clients fidèles" -> "clients-fideles"
func Slug(s string) string {
	slug := nonSlugChars.ReplaceAllString(Fold(s), "-")
	slug = separators.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// FilterItems keeps the items where one of the fields contains query (see Contains).
// Fields are json keys, nested objects are reached with dots ("client.nom_complet").
// An empty query keeps every item.
func FilterItems(items []json.RawMessage, query string, fields ...string) []json.RawMessage {
	query = strings.TrimSpace(query)
	if query == "" {
		return items
	}

	out := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		var doc map[string]any
		if err := json.Unmarshal(item, &doc); err != nil {
			continue
		}
		for _, field := range fields {
			if Contains(Field(doc, field), query) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

// Field returns the value at a dotted path as text, "" when absent
func Field(doc map[string]any, path string) string {
	var cur any = doc
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur = m[key]
	}

	switch v := cur.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "oui"
		}
		return "non"
	default:
		return fmt.Sprint(v)
	}
}

// FormatNumber formats n with French digit grouping and decimal comma, e.g. 1234567.5 -> "1 234 567,5".
// Group separators are plain spaces.
func FormatNumber(n float64) string {
	s := printer.Sprint(number.Decimal(n, number.MaxFractionDigits(2)))
	return normalizeSpaces(s)
}

// FormatCurrency formats an amount in FCFA, e.g. 25000 -> "25 000 FCFA"
func FormatCurrency(amount float64) string {
	return FormatNumber(amount) + " " + CurrencySuffix
}

// the French locale groups digits with (narrow) no-break spaces
func normalizeSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\u00a0' || r == '\u202f' {
			return ' '
		}
		return r
	}, s)
}

var months = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// FormatLongDate renders an API date or timestamp as "2 janvier 2025".
// Empty values give "N/A", values that cannot be parsed are returned unchanged.
func FormatLongDate(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	if t, ok := ParseDate(s); ok {
		return fmt.Sprintf("%d %s %d", t.Day(), months[t.Month()-1], t.Year())
	}
	return s
}

// ParseDate reads the date and timestamp layouts the API sends
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
