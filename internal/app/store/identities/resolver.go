// internal/app/store/identities/resolver.go
package identitystore

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/dalemusser/minglehub/internal/app/system/normalize"
	"github.com/dalemusser/minglehub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// PersonInput is a loosely structured description of a person arriving from
// any intake path. Every field is optional except that a name must be
// derivable from Name or FounderName.
type PersonInput struct {
	Name        string
	FounderName string // used when the row describes a company and names its founder
	Email       string
	Phone       string
	Company     string
	Bio         string
	Website     string
	RoleTag     string
}

// displayName derives the canonical display name for the input.
func (in PersonInput) displayName() string {
	if n := normalize.Name(in.Name); n != "" {
		return n
	}
	return normalize.Name(in.FounderName)
}

// matcher is one step of the resolution chain. It returns (nil, nil) when
// its criteria are absent from the input or nothing matched.
type matcher func(ctx context.Context, s *Store, in PersonInput) (*models.Identity, error)

// matchers is the resolution order: phone beats email beats (name, company).
// The chain is an ordered list, not nested conditionals, so the precedence
// stays independently testable.
var matchers = []matcher{
	matchByPhone,
	matchByEmail,
	matchByNameCompany,
}

func matchByPhone(ctx context.Context, s *Store, in PersonInput) (*models.Identity, error) {
	phone := normalize.Phone(in.Phone)
	if phone == "" {
		return nil, nil
	}
	ident, err := s.GetByPhone(ctx, phone)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return ident, err
}

func matchByEmail(ctx context.Context, s *Store, in PersonInput) (*models.Identity, error) {
	email := normalize.Email(in.Email)
	if email == "" {
		return nil, nil
	}
	ident, err := s.GetByEmail(ctx, email)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return ident, err
}

func matchByNameCompany(ctx context.Context, s *Store, in PersonInput) (*models.Identity, error) {
	name := in.displayName()
	if name == "" || in.Company == "" {
		return nil, nil
	}
	var ident models.Identity
	err := s.c.FindOne(ctx, bson.M{
		"full_name_ci": text.Fold(name),
		"company_ci":   text.Fold(in.Company),
	}).Decode(&ident)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ident, nil
}

// Resolve finds or creates exactly one canonical identity for the input.
// First match in the chain wins; when nothing matches a new identity is
// created with synthesized contact fields as needed. Matching never mutates
// an existing identity's contact fields.
func (s *Store) Resolve(ctx context.Context, in PersonInput) (models.Identity, bool, error) {
	name := in.displayName()
	if name == "" {
		return models.Identity{}, false, ErrNameRequired
	}

	for _, m := range matchers {
		ident, err := m(ctx, s, in)
		if err != nil {
			return models.Identity{}, false, err
		}
		if ident != nil {
			return *ident, false, nil
		}
	}

	created, err := s.createFromInput(ctx, in, name)
	if err == ErrDuplicateIdentity {
		// Lost a race with a concurrent resolve of the same person. The
		// unique index is the arbiter; re-run the chain and adopt the winner.
		for _, m := range matchers {
			ident, merr := m(ctx, s, in)
			if merr != nil {
				return models.Identity{}, false, merr
			}
			if ident != nil {
				return *ident, false, nil
			}
		}
		return models.Identity{}, false, err
	}
	if err != nil {
		return models.Identity{}, false, err
	}
	return created, true, nil
}

// syntheticPhoneAttempts bounds the random search for an unused 10-digit
// placeholder number.
const syntheticPhoneAttempts = 100

func (s *Store) createFromInput(ctx context.Context, in PersonInput, name string) (models.Identity, error) {
	phone := normalize.Phone(in.Phone)
	if phone == "" {
		var err error
		phone, err = s.synthesizePhone(ctx)
		if err != nil {
			return models.Identity{}, err
		}
	}

	email := normalize.Email(in.Email)
	if email == "" {
		// Deterministic placeholder keyed by the phone so the email
		// uniqueness invariant holds without a real contact channel.
		email = fmt.Sprintf("user%s@placeholder.invalid", phone)
	}

	ident := models.Identity{
		FullName: name,
		Email:    email,
		Phone:    phone,
		Company:  in.Company,
		Bio:      in.Bio,
		Website:  in.Website,
		RoleTag:  in.RoleTag,
	}

	created, err := s.Create(ctx, ident)
	if err != nil {
		return models.Identity{}, err
	}
	return created, nil
}

// synthesizePhone picks a random, locally unique 10-digit number. The
// in-use check is advisory; the unique phone index remains the arbiter if
// two synthesizers collide between check and insert.
func (s *Store) synthesizePhone(ctx context.Context) (string, error) {
	for i := 0; i < syntheticPhoneAttempts; i++ {
		candidate := fmt.Sprintf("%d", 1_000_000_000+rand.Int64N(9_000_000_000))
		used, err := s.phoneInUse(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !used {
			return candidate, nil
		}
	}
	return "", ErrPhoneSpaceExhausted
}
