// internal/app/system/normalize/normalize.go

// Package normalize provides canonical forms for identity fields.
// Matching and uniqueness are always performed on the normalized form;
// the original user-entered value is preserved separately where needed.
package normalize

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Email lowercases and trims an email address. Uniqueness on the
// identities collection is enforced against this form.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace and collapses interior runs to single
// spaces. Case is preserved for display.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Phone reduces a phone number to digits only. This is the canonical
// matching key: "+1 (555) 123-4567" and "15551234567" are the same number.
func Phone(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteByte(byte(r))
		}
	}
	return b.String()
}

// PrettyPhone formats a phone number for display using libphonenumber,
// defaulting to the US region. Matching never uses this form; on any parse
// failure the input is returned unchanged.
func PrettyPhone(s string) string {
	num, err := phonenumbers.Parse(s, "US")
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return s
	}
	return phonenumbers.Format(num, phonenumbers.INTERNATIONAL)
}
