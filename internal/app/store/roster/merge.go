// internal/app/store/roster/merge.go
package rosterstore

import (
	"sort"
	"strings"

	"github.com/dalemusser/minglehub/internal/app/system/normalize"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParticipantView is one row of the aggregated, deduplicated roster.
type ParticipantView struct {
	IdentityID   *primitive.ObjectID `json:"identity_id,omitempty"`
	Name         string              `json:"name"`
	Phone        string              `json:"phone,omitempty"`         // digits-only, used for dedup
	PhoneDisplay string              `json:"phone_display,omitempty"` // formatted for humans
	Email        string              `json:"email,omitempty"`
	Company      string              `json:"company,omitempty"`
	Bio          string              `json:"bio,omitempty"`
	Source       string              `json:"source"`
}

// dedupKey picks the strongest available identifier: phone, else email,
// else identity id. Empty string means the record cannot be keyed.
func dedupKey(p ParticipantView) string {
	if p.Phone != "" {
		return "phone:" + p.Phone
	}
	if p.Email != "" {
		return "email:" + strings.ToLower(p.Email)
	}
	if p.IdentityID != nil {
		return "id:" + p.IdentityID.Hex()
	}
	return ""
}

// merge deduplicates the raw rows. Input order is significant: the caller
// feeds direct memberships first, then legacy variant A, then variant B,
// then the embedded attendee array, and the first writer for a key wins.
// That ordering favors the richer, manually curated records. Rows with no
// usable key are dropped: there is no safe way to deduplicate them, and a
// guessed synthetic key would silently double-count people.
func merge(rows []ParticipantView) []ParticipantView {
	seen := make(map[string]struct{}, len(rows))
	out := make([]ParticipantView, 0, len(rows))
	for _, row := range rows {
		key := dedupKey(row)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if row.Phone != "" {
			row.PhoneDisplay = normalize.PrettyPhone(row.Phone)
		}
		out = append(out, row)
	}

	// Case-insensitive name sort; SliceStable keeps input order for ties.
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}
