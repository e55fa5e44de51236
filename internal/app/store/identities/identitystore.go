// internal/app/store/identities/identitystore.go

// Package identitystore owns the identities collection: one canonical
// record per real person, deduplicated across every intake path.
package identitystore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/minglehub/internal/app/system/normalize"
	"github.com/dalemusser/minglehub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("identities")}
}

var (
	// ErrDuplicateIdentity is returned when a create collides with the
	// unique email or phone index outside of Resolve's retry handling.
	ErrDuplicateIdentity = errors.New("an identity with this email or phone already exists")

	// ErrNameRequired is returned when no display name can be derived
	// from the input.
	ErrNameRequired = errors.New("a name (or company founder name) is required")

	// ErrPhoneSpaceExhausted is returned when synthetic phone generation
	// failed to find an unused number within the retry cap.
	ErrPhoneSpaceExhausted = errors.New("could not allocate a unique placeholder phone number")
)

// GetByID loads an identity by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Identity, error) {
	var ident models.Identity
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&ident); err != nil {
		return nil, err
	}
	return &ident, nil
}

// GetByEmail looks up an identity by case-insensitive email.
// Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.Identity, error) {
	var ident models.Identity
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&ident); err != nil {
		return nil, err
	}
	return &ident, nil
}

// GetByPhone looks up an identity by digits-only phone.
// Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByPhone(ctx context.Context, phone string) (*models.Identity, error) {
	var ident models.Identity
	if err := s.c.FindOne(ctx, bson.M{"phone": normalize.Phone(phone)}).Decode(&ident); err != nil {
		return nil, err
	}
	return &ident, nil
}

// Create inserts a new identity after normalizing fields. Callers normally
// go through Resolve; Create is exposed for fixtures and admin tooling.
func (s *Store) Create(ctx context.Context, ident models.Identity) (models.Identity, error) {
	ident.ID = primitive.NewObjectID()
	ident.FullName = normalize.Name(ident.FullName)
	ident.FullNameCI = text.Fold(ident.FullName)
	ident.Email = normalize.Email(ident.Email)
	ident.Phone = normalize.Phone(ident.Phone)
	ident.CompanyCI = text.Fold(ident.Company)

	now := time.Now().UTC()
	ident.CreatedAt = now
	ident.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, ident); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Identity{}, ErrDuplicateIdentity
		}
		return models.Identity{}, err
	}
	return ident, nil
}

// ProfileUpdate holds the mutable profile fields. Contact fields (email,
// phone) are deliberately absent: matching never rewrites them, and contact
// changes are an admin concern.
type ProfileUpdate struct {
	FullName string
	Company  string
	Bio      string
	Website  string
	RoleTag  string
}

// UpdateProfile applies a profile update and returns the fresh identity.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) (*models.Identity, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if name := normalize.Name(upd.FullName); name != "" {
		set["full_name"] = name
		set["full_name_ci"] = text.Fold(name)
	}
	if upd.Company != "" {
		set["company"] = upd.Company
		set["company_ci"] = text.Fold(upd.Company)
	}
	if upd.Bio != "" {
		set["bio"] = upd.Bio
	}
	if upd.Website != "" {
		set["website"] = upd.Website
	}
	if upd.RoleTag != "" {
		set["role_tag"] = upd.RoleTag
	}

	if _, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set}); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// phoneInUse reports whether any identity already holds the given
// digits-only phone.
func (s *Store) phoneInUse(ctx context.Context, phone string) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"phone": phone})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
