package store

import (
	"errors"
	"testing"
	"time"
)

func TestStoreItemSeedData(t *testing.T) {
	ss := NewStoreItemStore(setupTestDB(t))

	items, err := ss.List()
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 seed items, got %d", len(items))
	}
	if items[0].Title != "Dark Theme" {
		t.Errorf("cheapest item = %q, want %q", items[0].Title, "Dark Theme")
	}
}

func TestPurchaseDebitsPoints(t *testing.T) {
	db := setupTestDB(t)
	us := NewUserStore(db)
	ms := NewMissionStore(db)
	ss := NewStoreItemStore(db)

	u, _ := us.Create("jo@example.com", "Jo", "h")

	// Earn 60 points through a mission completion.
	m, _ := ms.Create(u.ID, "Deficit Streak", "", "weekly", "deficit_days", 60, 4, time.Now().Add(24*time.Hour))
	ms.ReportProgress(m.ID, 4)

	items, _ := ss.List()
	item := items[0] // Dark Theme, 50 points

	p, err := ss.Purchase(item.ID, u.ID, item.PointCost)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if p.PointsSpent != 50 {
		t.Errorf("points spent = %d, want 50", p.PointsSpent)
	}
	if p.Receipt == "" {
		t.Error("expected non-empty receipt")
	}

	user, _ := us.GetByID(u.ID)
	if user.Points != 10 {
		t.Errorf("points after purchase = %d, want 10", user.Points)
	}

	// Second purchase exceeds the remaining balance.
	_, err = ss.Purchase(item.ID, u.ID, item.PointCost)
	if !errors.Is(err, ErrInsufficientPoints) {
		t.Errorf("err = %v, want ErrInsufficientPoints", err)
	}
	user, _ = us.GetByID(u.ID)
	if user.Points != 10 {
		t.Errorf("points after failed purchase = %d, want 10", user.Points)
	}
}

func TestBadgeAwardEligible(t *testing.T) {
	db := setupTestDB(t)
	us := NewUserStore(db)
	ms := NewMissionStore(db)
	bs := NewBadgeStore(db)

	u, _ := us.Create("kai@example.com", "Kai", "h")

	m, _ := ms.Create(u.ID, "Deficit Streak", "", "weekly", "deficit_days", 120, 4, time.Now().Add(24*time.Hour))
	ms.ReportProgress(m.ID, 4)

	awarded, err := bs.AwardEligible(u.ID)
	if err != nil {
		t.Fatalf("award eligible: %v", err)
	}
	// 120 points unlocks First Steps (10) and Getting Warm (100).
	if len(awarded) != 2 {
		t.Fatalf("awarded = %d badges, want 2", len(awarded))
	}

	// Re-running awards nothing new.
	awarded, err = bs.AwardEligible(u.ID)
	if err != nil {
		t.Fatalf("award eligible: %v", err)
	}
	if len(awarded) != 0 {
		t.Errorf("second run awarded %d badges, want 0", len(awarded))
	}

	mine, _ := bs.ListByUser(u.ID)
	if len(mine) != 2 {
		t.Errorf("user badges = %d, want 2", len(mine))
	}
}

func TestPremiumCodeRedeemOnce(t *testing.T) {
	db := setupTestDB(t)
	us := NewUserStore(db)
	ps := NewPremiumCodeStore(db)

	u1, _ := us.Create("lena@example.com", "Lena", "h")
	u2, _ := us.Create("max@example.com", "Max", "h")

	codes, err := ps.Generate(1)
	if err != nil {
		t.Fatalf("generate codes: %v", err)
	}

	if err := ps.Redeem(codes[0].Code, u1.ID); err != nil {
		t.Fatalf("redeem: %v", err)
	}
	user, _ := us.GetByID(u1.ID)
	if !user.IsPremium {
		t.Error("user should be premium after redeem")
	}
	if user.PremiumSince == nil {
		t.Error("premium_since should be set")
	}

	if err := ps.Redeem(codes[0].Code, u2.ID); !errors.Is(err, ErrCodeUsed) {
		t.Errorf("second redeem err = %v, want ErrCodeUsed", err)
	}
	other, _ := us.GetByID(u2.ID)
	if other.IsPremium {
		t.Error("second user must not become premium from a used code")
	}
}
