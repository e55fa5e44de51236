// internal/domain/models/identity.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Identity is the canonical record for one real person, deduplicated across
// every intake path (self-join, manual entry, spreadsheet import).
//
// Invariants:
//   - Email is globally unique (stored lowercased).
//   - Phone is globally unique when present (stored digits-only).
//
// Identities are never hard-deleted by this application; removal is an
// external admin concern.
type Identity struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName   string             `bson:"full_name" json:"full_name"`
	FullNameCI string             `bson:"full_name_ci" json:"full_name_ci"` // lowercase, diacritics-stripped
	Email      string             `bson:"email" json:"email"`
	Phone      string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Company    string             `bson:"company,omitempty" json:"company,omitempty"`
	CompanyCI  string             `bson:"company_ci,omitempty" json:"company_ci,omitempty"`
	Bio        string             `bson:"bio,omitempty" json:"bio,omitempty"`
	Website    string             `bson:"website,omitempty" json:"website,omitempty"`
	RoleTag    string             `bson:"role_tag,omitempty" json:"role_tag,omitempty"` // e.g. "founder", "investor"

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
