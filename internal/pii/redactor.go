// Package pii finds and masks personal data in free text before it is stored.
package pii

import (
	"regexp"
	"sort"
	"strings"
)

// Type is a category of personal data.
type Type string

const (
	TypeEmail      Type = "email"
	TypePhone      Type = "phone"
	TypeSSN        Type = "ssn"
	TypeCreditCard Type = "credit_card"
	TypeIPAddress  Type = "ip_address"
)

// Detection is one match in the input.
type Detection struct {
	Type  Type
	Value string
	Start int
	End   int
}

type detector struct {
	kind    Type
	pattern *regexp.Regexp
	valid   func(string) bool
}

var detectors = []detector{
	{TypeEmail, regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`), nil},

	// Cards before phones so a long digit run is labelled as a card.
	{TypeCreditCard, regexp.MustCompile(`\b(?:\d[ -]?){12,18}\d\b`), luhnCheck},

	{TypeSSN, regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`), nil},
	{TypeSSN, regexp.MustCompile(`\b\d{9}\b`), looksLikeSSN},

	{TypePhone, regexp.MustCompile(`(?:\+?1[-. ]?)?\(?\b\d{3}\)?[-. ]?\d{3}[-. ]\d{4}\b`), nil},
	{TypePhone, regexp.MustCompile(`\+\d{1,3}[-. ]?\d{2,4}[-. ]?\d{3,4}[-. ]?\d{3,4}\b`), nil},

	{TypeIPAddress, regexp.MustCompile(`\b(?:(?:25[0-5]|2[0-4]\d|[01]?\d\d?)\.){3}(?:25[0-5]|2[0-4]\d|[01]?\d\d?)\b`), nil},
	{TypeIPAddress, regexp.MustCompile(`\b(?:[0-9a-fA-F]{1,4}:){7}[0-9a-fA-F]{1,4}\b`), nil},
}

// Detect returns non-overlapping detections ordered by position. When two
// matches overlap the earlier, then longer, one wins.
func Detect(text string) []Detection {
	var all []Detection
	for _, d := range detectors {
		for _, m := range d.pattern.FindAllStringIndex(text, -1) {
			value := text[m[0]:m[1]]
			if d.valid != nil && !d.valid(value) {
				continue
			}
			all = append(all, Detection{Type: d.kind, Value: value, Start: m[0], End: m[1]})
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Start != all[j].Start {
			return all[i].Start < all[j].Start
		}
		return all[i].End > all[j].End
	})

	out := all[:0]
	end := -1
	for _, d := range all {
		if d.Start < end {
			continue
		}
		out = append(out, d)
		end = d.End
	}
	return out
}

// Contains reports whether text holds any personal data.
func Contains(text string) bool {
	return len(Detect(text)) > 0
}

// Redact replaces every detection with a type marker such as
// [EMAIL_REDACTED]. It also returns the distinct types found.
func Redact(text string) (string, []Type) {
	detections := Detect(text)
	if len(detections) == 0 {
		return text, nil
	}

	var (
		b     strings.Builder
		last  int
		types []Type
		seen  = make(map[Type]bool)
	)
	b.Grow(len(text))
	for _, d := range detections {
		b.WriteString(text[last:d.Start])
		b.WriteString(marker(d.Type))
		last = d.End
		if !seen[d.Type] {
			seen[d.Type] = true
			types = append(types, d.Type)
		}
	}
	b.WriteString(text[last:])
	return b.String(), types
}

func marker(t Type) string {
	switch t {
	case TypeEmail:
		return "[EMAIL_REDACTED]"
	case TypePhone:
		return "[PHONE_REDACTED]"
	case TypeSSN:
		return "[SSN_REDACTED]"
	case TypeCreditCard:
		return "[CC_REDACTED]"
	case TypeIPAddress:
		return "[IP_REDACTED]"
	default:
		return "[REDACTED]"
	}
}

// looksLikeSSN rejects 9-digit runs that cannot be an SSN.
func looksLikeSSN(s string) bool {
	if len(s) != 9 {
		return false
	}
	if s[:3] == "000" || s[3:5] == "00" || s[5:] == "0000" {
		return false
	}
	return !strings.HasPrefix(s, "666") && !strings.HasPrefix(s, "9")
}

func luhnCheck(number string) bool {
	number = strings.NewReplacer(" ", "", "-", "").Replace(number)
	if len(number) < 13 || len(number) > 19 {
		return false
	}

	sum := 0
	second := false
	for i := len(number) - 1; i >= 0; i-- {
		digit := int(number[i] - '0')
		if second {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
		second = !second
	}
	return sum%10 == 0
}
