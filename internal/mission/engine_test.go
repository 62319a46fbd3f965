package mission

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/perivale/fitquest/internal/database"
	"github.com/perivale/fitquest/internal/model"
	"github.com/perivale/fitquest/internal/store"
)

func setupEngine(t *testing.T) (*Engine, *store.UserStore, *store.MissionStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ms := store.NewMissionStore(db)
	us := store.NewUserStore(db)
	return NewEngine(ms, slog.New(slog.DiscardHandler)), us, ms
}

var now = time.Date(2024, 1, 8, 15, 30, 0, 0, time.UTC) // a Monday

func TestEnsureForPeriodGeneratesOnce(t *testing.T) {
	e, us, _ := setupEngine(t)
	u, _ := us.Create("tess@example.com", "Tess", "h")

	missions, created, err := e.EnsureForPeriod(u.ID, model.PeriodDaily, now)
	if err != nil {
		t.Fatalf("ensure missions: %v", err)
	}
	if !created {
		t.Error("first call should create missions")
	}
	if len(missions) != 3 {
		t.Fatalf("len = %d, want 3 daily templates", len(missions))
	}
	for _, m := range missions {
		if m.Progress != 0 || m.Completed {
			t.Errorf("fresh mission should be 0/uncompleted: %+v", m)
		}
		if !m.ExpiresAt.Equal(now.Add(24 * time.Hour)) {
			t.Errorf("expires_at = %v, want %v", m.ExpiresAt, now.Add(24*time.Hour))
		}
	}

	again, created, err := e.EnsureForPeriod(u.ID, model.PeriodDaily, now.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("ensure missions: %v", err)
	}
	if created {
		t.Error("second call in the same period must be a no-op")
	}
	if len(again) != 3 {
		t.Fatalf("len = %d, want 3", len(again))
	}
	for i := range again {
		if again[i].ID != missions[i].ID {
			t.Errorf("mission ids changed between calls: %d vs %d", again[i].ID, missions[i].ID)
		}
	}
}

func TestEnsureForPeriodWeekly(t *testing.T) {
	e, us, _ := setupEngine(t)
	u, _ := us.Create("uma@example.com", "Uma", "h")

	missions, created, err := e.EnsureForPeriod(u.ID, model.PeriodWeekly, now)
	if err != nil {
		t.Fatalf("ensure missions: %v", err)
	}
	if !created || len(missions) != 3 {
		t.Fatalf("created=%v len=%d, want 3 weekly templates", created, len(missions))
	}
	if !missions[0].ExpiresAt.Equal(now.Add(7 * 24 * time.Hour)) {
		t.Errorf("expires_at = %v, want one week out", missions[0].ExpiresAt)
	}
}

func TestEnsureForPeriodRegeneratesNextDay(t *testing.T) {
	e, us, _ := setupEngine(t)
	u, _ := us.Create("vic@example.com", "Vic", "h")

	first, _, err := e.EnsureForPeriod(u.ID, model.PeriodDaily, now)
	if err != nil {
		t.Fatalf("ensure missions: %v", err)
	}

	// Two days later the old set has expired; a new one is generated.
	later := now.AddDate(0, 0, 2)
	second, created, err := e.EnsureForPeriod(u.ID, model.PeriodDaily, later)
	if err != nil {
		t.Fatalf("ensure missions: %v", err)
	}
	if !created {
		t.Error("expected regeneration after expiry")
	}
	if second[0].ID == first[0].ID {
		t.Error("regenerated missions should be new instances")
	}
}

func TestEnsureForPeriodUnknown(t *testing.T) {
	e, us, _ := setupEngine(t)
	u, _ := us.Create("wes@example.com", "Wes", "h")

	if _, _, err := e.EnsureForPeriod(u.ID, "monthly", now); !errors.Is(err, ErrUnknownPeriod) {
		t.Errorf("err = %v, want ErrUnknownPeriod", err)
	}
	if _, _, err := e.EnsureForPeriod(u.ID, model.PeriodSpecial, now); !errors.Is(err, ErrUnknownPeriod) {
		t.Errorf("special missions are not generated, err = %v, want ErrUnknownPeriod", err)
	}
}

func TestReportProgressClampsDisplayOnly(t *testing.T) {
	e, us, ms := setupEngine(t)
	u, _ := us.Create("xena@example.com", "Xena", "h")

	m, _ := ms.Create(u.ID, "Three Square Meals", "", model.PeriodDaily, MetricMeals, 10, 3, now.Add(24*time.Hour))

	p, err := e.ReportProgress(m.ID, 5, now)
	if err != nil {
		t.Fatalf("report progress: %v", err)
	}
	if !p.JustCompleted {
		t.Error("expected completion")
	}
	if p.DisplayProgress != 3 {
		t.Errorf("display progress = %d, want clamped 3", p.DisplayProgress)
	}
	if p.Mission.Progress != 5 {
		t.Errorf("stored progress = %d, want raw 5", p.Mission.Progress)
	}

	user, _ := us.GetByID(u.ID)
	if user.Points != 10 {
		t.Errorf("points = %d, want 10", user.Points)
	}

	// A second report past the target must not re-credit.
	p, err = e.ReportProgress(m.ID, 7, now)
	if err != nil {
		t.Fatalf("report progress: %v", err)
	}
	if p.JustCompleted {
		t.Error("must not complete twice")
	}
	user, _ = us.GetByID(u.ID)
	if user.Points != 10 {
		t.Errorf("points after repeat = %d, want 10", user.Points)
	}
}

func TestReportProgressExpired(t *testing.T) {
	e, us, ms := setupEngine(t)
	u, _ := us.Create("yuri@example.com", "Yuri", "h")

	m, _ := ms.Create(u.ID, "Step on the Scale", "", model.PeriodDaily, MetricWeighIns, 5, 1, now.Add(-time.Hour))

	if _, err := e.ReportProgress(m.ID, 1, now); !errors.Is(err, ErrExpired) {
		t.Errorf("err = %v, want ErrExpired", err)
	}

	user, _ := us.GetByID(u.ID)
	if user.Points != 0 {
		t.Errorf("expired mission must not award points, got %d", user.Points)
	}
}

func TestReportProgressNotFound(t *testing.T) {
	e, _, _ := setupEngine(t)
	if _, err := e.ReportProgress(9999, 1, now); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestAdvance(t *testing.T) {
	e, us, _ := setupEngine(t)
	u, _ := us.Create("zoe@example.com", "Zoe", "h")

	e.EnsureForPeriod(u.ID, model.PeriodDaily, now)
	e.EnsureForPeriod(u.ID, model.PeriodWeekly, now)

	// Logging 30 exercise minutes advances the daily Get Moving mission to
	// completion and the weekly workout counter by the same delta.
	results, err := e.Advance(u.ID, MetricExerciseMinutes, 30, now)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len = %d, want 1 mission tracking exercise minutes", len(results))
	}
	if !results[0].JustCompleted {
		t.Error("Get Moving should complete at 30 minutes")
	}

	results, err = e.Advance(u.ID, MetricWorkouts, 1, now)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if len(results) != 1 || results[0].JustCompleted {
		t.Errorf("weekly Five Workouts should advance to 1/5, got %+v", results)
	}

	// Zero or negative deltas are ignored.
	results, err = e.Advance(u.ID, MetricMeals, 0, now)
	if err != nil || results != nil {
		t.Errorf("zero delta should no-op, got %v, %v", results, err)
	}
}

func TestPeriodStart(t *testing.T) {
	wednesday := time.Date(2024, 1, 10, 17, 45, 0, 0, time.UTC)

	day := PeriodStart(model.PeriodDaily, wednesday)
	if !day.Equal(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("daily period start = %v", day)
	}

	week := PeriodStart(model.PeriodWeekly, wednesday)
	if !week.Equal(time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("weekly period start = %v, want Monday", week)
	}

	// Sunday belongs to the week that started the previous Monday.
	sunday := time.Date(2024, 1, 14, 9, 0, 0, 0, time.UTC)
	week = PeriodStart(model.PeriodWeekly, sunday)
	if !week.Equal(time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("weekly period start on Sunday = %v, want previous Monday", week)
	}
}

func TestPeriodStartNormalizesZone(t *testing.T) {
	// 23:30 local on Jan 8 in UTC+10 is still Jan 8 13:30 UTC; the window
	// must not depend on the caller's zone.
	auckland := time.FixedZone("UTC+10", 10*3600)
	local := time.Date(2024, 1, 8, 23, 30, 0, 0, auckland)

	for _, period := range []string{model.PeriodDaily, model.PeriodWeekly} {
		got := PeriodStart(period, local)
		want := PeriodStart(period, local.UTC())
		if !got.Equal(want) {
			t.Errorf("%s period start differs by zone: %v vs %v", period, got, want)
		}
	}

	// Just past local midnight, still the previous UTC day.
	early := time.Date(2024, 1, 9, 0, 30, 0, 0, auckland)
	day := PeriodStart(model.PeriodDaily, early)
	if !day.Equal(time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("daily period start = %v, want Jan 8 UTC", day)
	}
}

func TestEnsureForPeriodZoneAgnostic(t *testing.T) {
	e, us, _ := setupEngine(t)
	u, _ := us.Create("aro@example.com", "Aro", "h")

	missions, created, err := e.EnsureForPeriod(u.ID, model.PeriodDaily, now)
	if err != nil || !created {
		t.Fatalf("ensure missions: created=%v err=%v", created, err)
	}

	// The renewal scheduler runs on UTC while request handlers pass local
	// wall time; the same instant in another zone must not regenerate.
	local := now.In(time.FixedZone("UTC+13", 13*3600))
	again, created, err := e.EnsureForPeriod(u.ID, model.PeriodDaily, local)
	if err != nil {
		t.Fatalf("ensure missions: %v", err)
	}
	if created {
		t.Error("same instant in another zone must be a no-op")
	}
	if len(again) != len(missions) || again[0].ID != missions[0].ID {
		t.Errorf("mission set changed across zones: %+v vs %+v", again, missions)
	}
}
