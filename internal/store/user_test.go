package store

import (
	"database/sql"
	"testing"

	"github.com/perivale/fitquest/internal/database"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUserCreateAndGet(t *testing.T) {
	us := NewUserStore(setupTestDB(t))

	u, err := us.Create("alice@example.com", "Alice", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Errorf("email = %q, want %q", u.Email, "alice@example.com")
	}
	if u.Points != 0 {
		t.Errorf("points = %d, want 0", u.Points)
	}
	if u.IsPremium {
		t.Error("new user should not be premium")
	}

	got, err := us.GetByEmail("alice@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got == nil || got.ID != u.ID {
		t.Fatalf("get by email = %+v, want id %d", got, u.ID)
	}

	hash, err := us.PasswordHash("alice@example.com")
	if err != nil {
		t.Fatalf("password hash: %v", err)
	}
	if hash != "hash" {
		t.Errorf("hash = %q, want %q", hash, "hash")
	}
}

func TestUserGetByIDNotFound(t *testing.T) {
	us := NewUserStore(setupTestDB(t))

	got, err := us.GetByID(9999)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got != nil {
		t.Error("expected nil for nonexistent user")
	}
}

func TestUserDuplicateEmail(t *testing.T) {
	us := NewUserStore(setupTestDB(t))

	if _, err := us.Create("bob@example.com", "Bob", "h"); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := us.Create("bob@example.com", "Bobby", "h"); err == nil {
		t.Error("expected error for duplicate email")
	}
}

func TestUserUpdateProfile(t *testing.T) {
	us := NewUserStore(setupTestDB(t))

	u, err := us.Create("carol@example.com", "Carol", "h")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	updated, err := us.UpdateProfile(u.ID, "Caroline", 65.5, 170)
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.Name != "Caroline" {
		t.Errorf("name = %q, want %q", updated.Name, "Caroline")
	}
	if updated.TargetWeight != 65.5 {
		t.Errorf("target weight = %v, want 65.5", updated.TargetWeight)
	}
	if updated.HeightCM != 170 {
		t.Errorf("height = %v, want 170", updated.HeightCM)
	}
}
