package store

import (
	"testing"

	"github.com/rowanvale/chorewheel/internal/database"
)

func setupHouseholdTestDB(t *testing.T) (*HouseholdStore, *UserStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewHouseholdStore(db), NewUserStore(db)
}

func TestHouseholdMembership(t *testing.T) {
	hs, us := setupHouseholdTestDB(t)

	h, err := hs.Create("Vale House")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	u, err := us.Create("rowan@example.com", "Rowan", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	m, err := hs.AddMember(h.ID, u.ID, "admin")
	if err != nil {
		t.Fatalf("add member: %v", err)
	}
	if m.Role != "admin" {
		t.Errorf("role = %q, want admin", m.Role)
	}

	// UNIQUE(household_id, user_id) rejects a second membership row.
	if _, err := hs.AddMember(h.ID, u.ID, "member"); err == nil {
		t.Error("duplicate membership did not error")
	}

	got, err := hs.GetMember(h.ID, u.ID)
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if got == nil || got.ID != m.ID {
		t.Fatalf("get member = %+v, want id %d", got, m.ID)
	}

	households, err := hs.ListHouseholdsForUser(u.ID)
	if err != nil {
		t.Fatalf("list households: %v", err)
	}
	// The migration seeds a default household; only the joined one lists.
	if len(households) != 1 || households[0].ID != h.ID {
		t.Fatalf("households = %+v, want just %d", households, h.ID)
	}
}

func TestHouseholdUpdateMemberRole(t *testing.T) {
	hs, us := setupHouseholdTestDB(t)

	h, _ := hs.Create("Vale House")
	u, _ := us.Create("rowan@example.com", "Rowan", "hash")
	if _, err := hs.AddMember(h.ID, u.ID, "member"); err != nil {
		t.Fatalf("add member: %v", err)
	}

	m, err := hs.UpdateMemberRole(h.ID, u.ID, "admin")
	if err != nil {
		t.Fatalf("update role: %v", err)
	}
	if m.Role != "admin" {
		t.Errorf("role = %q, want admin", m.Role)
	}
}

func TestHouseholdRemoveMember(t *testing.T) {
	hs, us := setupHouseholdTestDB(t)

	h, _ := hs.Create("Vale House")
	u, _ := us.Create("rowan@example.com", "Rowan", "hash")
	if _, err := hs.AddMember(h.ID, u.ID, "member"); err != nil {
		t.Fatalf("add member: %v", err)
	}

	if err := hs.RemoveMember(h.ID, u.ID); err != nil {
		t.Fatalf("remove member: %v", err)
	}
	got, err := hs.GetMember(h.ID, u.ID)
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if got != nil {
		t.Errorf("member still present after removal: %+v", got)
	}

	members, err := hs.ListMembers(h.ID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 0 {
		t.Errorf("members = %d, want 0", len(members))
	}
}

func TestUserGetByEmailAndSetPassword(t *testing.T) {
	_, us := setupHouseholdTestDB(t)

	u, err := us.Create("rowan@example.com", "Rowan", "hash1")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	got, err := us.GetByEmail("rowan@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got == nil || got.ID != u.ID || got.PasswordHash != "hash1" {
		t.Fatalf("get by email = %+v", got)
	}

	missing, err := us.GetByEmail("nobody@example.com")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown email, got %+v", missing)
	}

	if err := us.SetPassword(u.ID, "hash2"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	got, _ = us.GetByID(u.ID)
	if got.PasswordHash != "hash2" {
		t.Errorf("password hash = %q, want hash2", got.PasswordHash)
	}
}
