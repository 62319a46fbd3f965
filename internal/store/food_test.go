package store

import "testing"

func TestFoodCRUD(t *testing.T) {
	db := setupTestDB(t)
	us := NewUserStore(db)
	fs := NewFoodStore(db)

	u, _ := us.Create("pia@example.com", "Pia", "h")

	f, err := fs.Create(u.ID, "Oatmeal", "breakfast", 350, 12, 6, 60, 8, "2024-01-08", "07:30")
	if err != nil {
		t.Fatalf("create food entry: %v", err)
	}
	if f.Calories != 350 {
		t.Errorf("calories = %v, want 350", f.Calories)
	}
	if f.MealType != "breakfast" {
		t.Errorf("meal type = %q, want breakfast", f.MealType)
	}

	updated, err := fs.Update(f.ID, "Oatmeal with berries", "breakfast", 400, 13, 7, 70, 10, "2024-01-08", "07:30")
	if err != nil {
		t.Fatalf("update food entry: %v", err)
	}
	if updated.Name != "Oatmeal with berries" || updated.Calories != 400 {
		t.Errorf("updated entry = %+v", updated)
	}

	if err := fs.Delete(f.ID); err != nil {
		t.Fatalf("delete food entry: %v", err)
	}
	got, err := fs.GetByID(f.ID)
	if err != nil {
		t.Fatalf("get deleted entry: %v", err)
	}
	if got != nil {
		t.Error("expected nil for deleted entry")
	}
}

func TestFoodListByUserAndDate(t *testing.T) {
	db := setupTestDB(t)
	us := NewUserStore(db)
	fs := NewFoodStore(db)

	u, _ := us.Create("quin@example.com", "Quin", "h")
	other, _ := us.Create("rex@example.com", "Rex", "h")

	fs.Create(u.ID, "Toast", "breakfast", 200, 6, 4, 30, 2, "2024-01-08", "08:00")
	fs.Create(u.ID, "Salad", "lunch", 300, 8, 10, 20, 5, "2024-01-08", "12:30")
	fs.Create(u.ID, "Pasta", "dinner", 600, 20, 15, 80, 4, "2024-01-07", "19:00")
	fs.Create(other.ID, "Burger", "lunch", 800, 30, 40, 60, 3, "2024-01-08", "13:00")

	entries, err := fs.ListByUserAndDate(u.ID, "2024-01-08")
	if err != nil {
		t.Fatalf("list by date: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	if entries[0].Name != "Toast" {
		t.Errorf("first entry = %q, want Toast (time ascending)", entries[0].Name)
	}

	all, err := fs.ListByUser(u.ID)
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	if all[0].Date != "2024-01-08" {
		t.Errorf("newest-first ordering violated: %+v", all[0])
	}
}
