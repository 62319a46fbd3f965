package store

import "testing"

func TestBackupCreateAndList(t *testing.T) {
	db := setupTestDB(t)
	bs := NewBackupStore(db)

	b, err := bs.Create("backups/fitquest-1.db.enc", 2048, "abc123")
	if err != nil {
		t.Fatalf("create backup record: %v", err)
	}
	if b.ObjectKey != "backups/fitquest-1.db.enc" || b.SizeBytes != 2048 {
		t.Errorf("record = %+v", b)
	}

	records, err := bs.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
}

func TestBackupPrune(t *testing.T) {
	db := setupTestDB(t)
	bs := NewBackupStore(db)

	for i := 0; i < 5; i++ {
		if _, err := bs.Create("backups/fitquest-"+string(rune('a'+i))+".db.enc", 100, ""); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	stale, err := bs.Prune(2)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if len(stale) != 3 {
		t.Errorf("pruned %d records, want 3", len(stale))
	}

	remaining, err := bs.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(remaining) != 2 {
		t.Errorf("got %d remaining, want 2", len(remaining))
	}
	// newest records survive
	for _, r := range remaining {
		for _, s := range stale {
			if r.ID == s.ID {
				t.Errorf("record %d both kept and pruned", r.ID)
			}
		}
	}
}
