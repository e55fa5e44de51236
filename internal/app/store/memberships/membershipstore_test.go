package membershipstore_test

import (
	"testing"
	"time"

	membershipstore "github.com/dalemusser/minglehub/internal/app/store/memberships"
	"github.com/dalemusser/minglehub/internal/domain/models"
	"github.com/dalemusser/minglehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAddTwiceYieldsOneEdge(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	ev := fix.CreateEvent(ctx, "Founder Mixer")
	ident := fix.CreateIdentity(ctx, "Asha Rao", "asha@example.com", "2125550147")
	store := membershipstore.New(db)

	if _, err := store.Add(ctx, ev.ID, ev.OrganizerID, ident, models.SourceSelfJoin); err != nil {
		t.Fatalf("first add: %v", err)
	}
	_, err := store.Add(ctx, ev.ID, ev.OrganizerID, ident, models.SourceManual)
	if err != membershipstore.ErrAlreadyMember {
		t.Fatalf("second add: got %v, want ErrAlreadyMember", err)
	}

	n, err := db.Collection("memberships").CountDocuments(ctx, bson.M{"event_id": ev.ID})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("expected exactly one edge, got %d", n)
	}
}

func TestRemoveIsIdempotentAndReAddIsFresh(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	ev := fix.CreateEvent(ctx, "Founder Mixer")
	ident := fix.CreateIdentity(ctx, "Asha Rao", "asha@example.com", "2125550147")
	store := membershipstore.New(db)

	first, err := store.Add(ctx, ev.ID, ev.OrganizerID, ident, models.SourceSelfJoin)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.Remove(ctx, ev.ID, ident.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	// Removing an absent edge must also succeed.
	if err := store.Remove(ctx, ev.ID, ident.ID); err != nil {
		t.Fatalf("second remove: %v", err)
	}

	again, err := store.Add(ctx, ev.ID, ev.OrganizerID, ident, models.SourceManual)
	if err != nil {
		t.Fatalf("re-add after remove: %v", err)
	}
	if again.ID == first.ID {
		t.Error("re-add must create a fresh edge, not resurrect the old one")
	}
	if again.Source != models.SourceManual {
		t.Errorf("re-added edge source: got %q, want %q", again.Source, models.SourceManual)
	}
}

func TestCountForEvent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	ev := fix.CreateEvent(ctx, "Founder Mixer")
	other := fix.CreateEvent(ctx, "Other Event")
	store := membershipstore.New(db)

	for i, who := range []struct{ name, email, phone string }{
		{"Asha Rao", "asha@example.com", "2125550147"},
		{"Ben Ortiz", "ben@example.com", "2125550148"},
		{"Kei Tanaka", "kei@example.com", "2125550149"},
	} {
		ident := fix.CreateIdentity(ctx, who.name, who.email, who.phone)
		target := ev
		if i == 2 {
			target = other
		}
		if _, err := store.Add(ctx, target.ID, target.OrganizerID, ident, models.SourceManual); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}

	n, err := store.CountForEvent(ctx, ev.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Errorf("count scoped to event: got %d, want 2", n)
	}
}

func TestAddAndRemoveFireHooks(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	ev := fix.CreateEvent(ctx, "Founder Mixer")
	ident := fix.CreateIdentity(ctx, "Asha Rao", "asha@example.com", "2125550147")
	store := membershipstore.New(db)

	added := make(chan primitive.ObjectID, 1)
	removed := make(chan primitive.ObjectID, 1)
	store.SetAfterAdd(func(eventID primitive.ObjectID, got models.Identity) {
		added <- got.ID
	})
	store.SetAfterRemove(func(eventID, identityID primitive.ObjectID) {
		removed <- identityID
	})

	if _, err := store.Add(ctx, ev.ID, ev.OrganizerID, ident, models.SourceSelfJoin); err != nil {
		t.Fatalf("add: %v", err)
	}
	select {
	case id := <-added:
		if id != ident.ID {
			t.Errorf("afterAdd saw identity %s, want %s", id.Hex(), ident.ID.Hex())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("afterAdd hook never fired")
	}

	if err := store.Remove(ctx, ev.ID, ident.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	select {
	case id := <-removed:
		if id != ident.ID {
			t.Errorf("afterRemove saw identity %s, want %s", id.Hex(), ident.ID.Hex())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("afterRemove hook never fired")
	}
}

func TestAddDuplicateDoesNotFireHook(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	ev := fix.CreateEvent(ctx, "Founder Mixer")
	ident := fix.CreateIdentity(ctx, "Asha Rao", "asha@example.com", "2125550147")
	store := membershipstore.New(db)

	if _, err := store.Add(ctx, ev.ID, ev.OrganizerID, ident, models.SourceSelfJoin); err != nil {
		t.Fatalf("add: %v", err)
	}

	fired := make(chan struct{}, 1)
	store.SetAfterAdd(func(primitive.ObjectID, models.Identity) {
		fired <- struct{}{}
	})
	if _, err := store.Add(ctx, ev.ID, ev.OrganizerID, ident, models.SourceManual); err != membershipstore.ErrAlreadyMember {
		t.Fatalf("duplicate add: got %v, want ErrAlreadyMember", err)
	}

	select {
	case <-fired:
		t.Error("afterAdd must not fire for a duplicate add")
	case <-time.After(200 * time.Millisecond):
	}
}
