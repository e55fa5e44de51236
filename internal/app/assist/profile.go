// internal/app/assist/profile.go
package assist

import (
	"html"
	"strings"
	"unicode"

	"github.com/dalemusser/minglehub/internal/domain/models"
	"github.com/microcosm-cc/bluemonday"
)

// htmlStripper removes all markup from free-text bios before they are
// embedded; attendee-supplied text can contain pasted HTML.
var htmlStripper = bluemonday.StrictPolicy()

// BuildProfileText renders the member profile text that gets embedded.
// Empty fields are omitted. The phone number is deliberately excluded:
// it must never enter embedded text, only the record's side-channel
// metadata.
func BuildProfileText(ident models.Identity) string {
	var parts []string
	if ident.FullName != "" {
		parts = append(parts, "Name: "+ident.FullName)
	}
	if ident.Company != "" {
		parts = append(parts, "Company: "+ident.Company)
	}
	if bio := CleanText(ident.Bio); bio != "" {
		parts = append(parts, "Description: "+bio)
	}
	return CleanText(strings.Join(parts, " . "))
}

// BuildEventText renders the event-metadata text that gets embedded.
func BuildEventText(ev models.Event) string {
	var parts []string
	if ev.Name != "" {
		parts = append(parts, "Event: "+ev.Name)
	}
	if !ev.StartsAt.IsZero() {
		parts = append(parts, "Date: "+ev.StartsAt.Format("January 2, 2006 3:04 PM"))
	}
	if ev.Location != "" {
		parts = append(parts, "Location: "+ev.Location)
	}
	if desc := CleanText(ev.Description); desc != "" {
		parts = append(parts, "Description: "+desc)
	}
	return CleanText(strings.Join(parts, " . "))
}

// CleanText normalizes text for embedding: markup stripped, pictographic
// symbols removed, whitespace runs collapsed to single spaces, trimmed.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	s = html.UnescapeString(htmlStripper.Sanitize(s))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isPictograph(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// isPictograph reports whether the rune is an emoji or other pictographic
// symbol, including the joiners and variation selectors emoji sequences use.
func isPictograph(r rune) bool {
	switch {
	case unicode.Is(unicode.So, r): // dingbats, misc symbols, emoji blocks
		return true
	case r >= 0x1F000 && r <= 0x1FAFF: // supplemental emoji planes
		return true
	case r == 0x200D || r == 0xFE0E || r == 0xFE0F: // ZWJ, variation selectors
		return true
	}
	return false
}
