// Package sanitize normalizes untrusted user input before it reaches validation or storage.
// None of the functions fail: malformed input degrades to an empty or truncated string.
package sanitize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MaxTextLength  = 1000
	MaxPhoneLength = 20
)

var (
	unsafeChars   = strings.NewReplacer("<", "", ">", "", `"`, "", "/", "")
	uriMarkers    = regexp.MustCompile(`(?i)(javascript|data):`)
	eventHandlers = regexp.MustCompile(`(?i)on\w+=`)
	emailPattern  = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9\-]+(\.[a-z0-9\-]+)*\.[a-z]{2,}$`)
	cardSeparator = strings.NewReplacer(" ", "", "-", "")
)

// Text strips markup characters, script URI markers and inline handler attributes,
// trims whitespace and caps the result at MaxTextLength characters.
func Text(input string) string {
	s := input
	// Removing one pattern can splice together another, so run to a fixed point.
	for {
		next := textPass(s)
		if next == s {
			return s
		}
		s = next
	}
}

func textPass(s string) string {
	s = unsafeChars.Replace(s)
	s = uriMarkers.ReplaceAllString(s, "")
	s = eventHandlers.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	return strings.TrimSpace(truncate(s, MaxTextLength))
}

// Email returns the lower-cased address when it looks like local@domain.tld, "" otherwise.
func Email(input string) string {
	s := strings.ToLower(Text(input))
	if !emailPattern.MatchString(s) {
		return ""
	}
	return s
}

// Phone keeps digits, spaces, hyphens, parentheses and a leading plus sign.
func Phone(input string) string {
	var b strings.Builder
	leading := true
	for _, r := range input {
		switch {
		case r >= '0' && r <= '9', r == '-', r == '(', r == ')':
			b.WriteRune(r)
			leading = false
		case r == ' ':
			b.WriteRune(r)
		case r == '+' && leading:
			b.WriteRune(r)
			leading = false
		}
	}
	s := strings.TrimSpace(b.String())
	if len(s) > MaxPhoneLength {
		s = strings.TrimSpace(s[:MaxPhoneLength])
	}
	return s
}

// CreditCard reports whether number (spaces and hyphens ignored) is a 13-19 digit
// string that passes the Luhn checksum.
func CreditCard(number string) bool {
	digits := cardSeparator.Replace(number)
	if len(digits) < 13 || len(digits) > 19 {
		return false
	}

	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		c := digits[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
