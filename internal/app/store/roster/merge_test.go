package rosterstore

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func oid() *primitive.ObjectID {
	id := primitive.NewObjectID()
	return &id
}

func TestMergeDedupByPhoneFirstWriterWins(t *testing.T) {
	rows := []ParticipantView{
		{Name: "Asha Rao", Phone: "2125550147", Source: "self-join"},
		{Name: "A. Rao (legacy)", Phone: "2125550147", Email: "asha@example.com", Source: "legacy-participant"},
	}

	out := merge(rows)

	if len(out) != 1 {
		t.Fatalf("expected 1 row after dedup, got %d", len(out))
	}
	if out[0].Source != "self-join" {
		t.Errorf("first writer must win: got source %q", out[0].Source)
	}
	if out[0].Name != "Asha Rao" {
		t.Errorf("winner's fields must be untouched: got %q", out[0].Name)
	}
}

func TestMergeDedupFallsBackToEmailThenID(t *testing.T) {
	shared := oid()
	rows := []ParticipantView{
		{Name: "Ben", Email: "ben@example.com", Source: "memberships"},
		{Name: "Ben O.", Email: "BEN@EXAMPLE.COM", Source: "legacy-signup"},
		{Name: "Kei", IdentityID: shared, Source: "memberships"},
		{Name: "Kei T.", IdentityID: shared, Source: "attendee-array"},
	}

	out := merge(rows)

	if len(out) != 2 {
		t.Fatalf("expected 2 rows, got %d: %+v", len(out), out)
	}
	if out[0].Name != "Ben" || out[1].Name != "Kei" {
		t.Errorf("unexpected winners: %+v", out)
	}
}

func TestMergePhoneOutranksEmail(t *testing.T) {
	// Same person, one row keyed by phone and one by email: these CANNOT be
	// unified (different keys), but a phone-bearing row must key on phone so
	// it still collides with other phone rows.
	rows := []ParticipantView{
		{Name: "Asha", Phone: "2125550147", Email: "asha@example.com"},
		{Name: "Asha dup", Phone: "2125550147", Email: "different@example.com"},
	}
	if out := merge(rows); len(out) != 1 {
		t.Fatalf("phone key must deduplicate despite differing emails, got %d rows", len(out))
	}
}

func TestMergeDropsKeylessRows(t *testing.T) {
	rows := []ParticipantView{
		{Name: "Ghost"},
		{Name: "Asha", Phone: "2125550147"},
	}

	out := merge(rows)

	if len(out) != 1 || out[0].Name != "Asha" {
		t.Fatalf("keyless row must be dropped, got %+v", out)
	}
}

func TestMergeSortsByNameCaseInsensitiveStable(t *testing.T) {
	rows := []ParticipantView{
		{Name: "zara", Phone: "1000000001"},
		{Name: "Asha", Phone: "1000000002"},
		{Name: "ASHA", Phone: "1000000003"},
		{Name: "ben", Phone: "1000000004"},
	}

	out := merge(rows)

	if len(out) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(out))
	}
	wantOrder := []string{"Asha", "ASHA", "ben", "zara"}
	for i, want := range wantOrder {
		if out[i].Name != want {
			t.Errorf("position %d: got %q, want %q (stable case-insensitive order)", i, out[i].Name, want)
		}
	}
}

func TestMergeEmpty(t *testing.T) {
	if out := merge(nil); len(out) != 0 {
		t.Fatalf("merging nothing must yield nothing, got %+v", out)
	}
}
