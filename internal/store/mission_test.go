package store

import (
	"testing"
	"time"
)

func TestMissionReportProgressCreditsOnce(t *testing.T) {
	db := setupTestDB(t)
	us := NewUserStore(db)
	ms := NewMissionStore(db)

	u, err := us.Create("dana@example.com", "Dana", "h")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	expires := time.Now().Add(24 * time.Hour)
	m, err := ms.Create(u.ID, "Get Moving", "Log 30 minutes of exercise", "daily", "exercise_minutes", 15, 30, expires)
	if err != nil {
		t.Fatalf("create mission: %v", err)
	}

	// Partial progress: no credit.
	updated, completed, err := ms.ReportProgress(m.ID, 20)
	if err != nil {
		t.Fatalf("report progress: %v", err)
	}
	if completed {
		t.Error("mission should not be completed at 20/30")
	}
	if updated.Progress != 20 {
		t.Errorf("progress = %d, want 20", updated.Progress)
	}

	// Reaching the target flips completed and credits points.
	updated, completed, err = ms.ReportProgress(m.ID, 35)
	if err != nil {
		t.Fatalf("report progress: %v", err)
	}
	if !completed {
		t.Error("expected completion at 35/30")
	}
	if !updated.Completed {
		t.Error("stored mission should be completed")
	}
	if updated.Progress != 35 {
		t.Errorf("raw progress = %d, want 35", updated.Progress)
	}

	user, _ := us.GetByID(u.ID)
	if user.Points != 15 {
		t.Errorf("points after completion = %d, want 15", user.Points)
	}

	// Reporting again must not credit a second time.
	_, completed, err = ms.ReportProgress(m.ID, 40)
	if err != nil {
		t.Fatalf("report progress: %v", err)
	}
	if completed {
		t.Error("already-completed mission must not complete again")
	}

	user, _ = us.GetByID(u.ID)
	if user.Points != 15 {
		t.Errorf("points after repeat report = %d, want 15", user.Points)
	}
}

func TestMissionListForPeriod(t *testing.T) {
	db := setupTestDB(t)
	us := NewUserStore(db)
	ms := NewMissionStore(db)

	u, _ := us.Create("erin@example.com", "Erin", "h")

	now := time.Now()
	periodStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	// An expired daily mission from yesterday.
	if _, err := ms.Create(u.ID, "Old", "", "daily", "meals_logged", 10, 3, periodStart.Add(-time.Hour)); err != nil {
		t.Fatalf("create mission: %v", err)
	}

	got, err := ms.ListForPeriod(u.ID, "daily", periodStart)
	if err != nil {
		t.Fatalf("list for period: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no active missions, got %d", len(got))
	}

	if _, err := ms.Create(u.ID, "Fresh", "", "daily", "meals_logged", 10, 3, now.Add(24*time.Hour)); err != nil {
		t.Fatalf("create mission: %v", err)
	}

	got, err = ms.ListForPeriod(u.ID, "daily", periodStart)
	if err != nil {
		t.Fatalf("list for period: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Fresh" {
		t.Fatalf("expected the fresh mission, got %+v", got)
	}
}

func TestMissionListActiveByMetric(t *testing.T) {
	db := setupTestDB(t)
	us := NewUserStore(db)
	ms := NewMissionStore(db)

	u, _ := us.Create("finn@example.com", "Finn", "h")
	now := time.Now()

	fresh, _ := ms.Create(u.ID, "Three Square Meals", "", "daily", "meals_logged", 10, 3, now.Add(time.Hour))
	ms.Create(u.ID, "Expired", "", "daily", "meals_logged", 10, 3, now.Add(-time.Hour))
	done, _ := ms.Create(u.ID, "Done", "", "daily", "meals_logged", 10, 1, now.Add(time.Hour))
	ms.ReportProgress(done.ID, 1)
	ms.Create(u.ID, "Other metric", "", "daily", "weigh_ins", 5, 1, now.Add(time.Hour))

	got, err := ms.ListActiveByMetric(u.ID, "meals_logged", now)
	if err != nil {
		t.Fatalf("list active by metric: %v", err)
	}
	if len(got) != 1 || got[0].ID != fresh.ID {
		t.Fatalf("expected only the fresh uncompleted mission, got %+v", got)
	}
}

func TestMissionDeleteExpired(t *testing.T) {
	db := setupTestDB(t)
	us := NewUserStore(db)
	ms := NewMissionStore(db)

	u, _ := us.Create("gus@example.com", "Gus", "h")
	now := time.Now()

	ms.Create(u.ID, "Stale", "", "daily", "meals_logged", 10, 3, now.Add(-48*time.Hour))
	completedStale, _ := ms.Create(u.ID, "Completed stale", "", "daily", "weigh_ins", 5, 1, now.Add(-48*time.Hour))
	ms.ReportProgress(completedStale.ID, 1)
	ms.Create(u.ID, "Live", "", "daily", "workouts", 10, 3, now.Add(time.Hour))

	n, err := ms.DeleteExpired(now.Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1 (completed history is kept)", n)
	}

	remaining, _ := ms.ListByUser(u.ID)
	if len(remaining) != 2 {
		t.Errorf("remaining = %d, want 2", len(remaining))
	}
}
