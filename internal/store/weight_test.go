package store

import "testing"

func TestWeightCreateSyncsCurrentWeight(t *testing.T) {
	db := setupTestDB(t)
	us := NewUserStore(db)
	ws := NewWeightStore(db)

	u, err := us.Create("hana@example.com", "Hana", "h")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	if _, err := ws.Create(u.ID, 71.0, "2024-01-01"); err != nil {
		t.Fatalf("create weight record: %v", err)
	}
	if _, err := ws.Create(u.ID, 70.0, "2024-01-08"); err != nil {
		t.Fatalf("create weight record: %v", err)
	}

	user, _ := us.GetByID(u.ID)
	if user.CurrentWeight != 70.0 {
		t.Errorf("current weight = %v, want 70.0", user.CurrentWeight)
	}

	// A backdated record must not clobber the newest weight.
	if _, err := ws.Create(u.ID, 75.0, "2023-12-25"); err != nil {
		t.Fatalf("create weight record: %v", err)
	}
	user, _ = us.GetByID(u.ID)
	if user.CurrentWeight != 70.0 {
		t.Errorf("current weight after backdated record = %v, want 70.0", user.CurrentWeight)
	}
}

func TestWeightListNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	us := NewUserStore(db)
	ws := NewWeightStore(db)

	u, _ := us.Create("iris@example.com", "Iris", "h")

	ws.Create(u.ID, 71.0, "2024-01-01")
	ws.Create(u.ID, 70.0, "2024-01-08")
	// Same date as the previous record: the later insert wins the tie.
	ws.Create(u.ID, 69.5, "2024-01-08")

	records, err := ws.ListByUser(u.ID)
	if err != nil {
		t.Fatalf("list weight records: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len = %d, want 3", len(records))
	}
	if records[0].WeightKg != 69.5 {
		t.Errorf("newest = %v, want 69.5 (tie broken by insertion order)", records[0].WeightKg)
	}
	if records[2].WeightKg != 71.0 {
		t.Errorf("oldest = %v, want 71.0", records[2].WeightKg)
	}
}
