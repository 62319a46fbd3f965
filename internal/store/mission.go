package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/perivale/fitquest/internal/model"
)

type MissionStore struct {
	db *sql.DB
}

func NewMissionStore(db *sql.DB) *MissionStore {
	return &MissionStore{db: db}
}

func scanMission(scanner interface{ Scan(...any) error }) (*model.Mission, error) {
	var m model.Mission
	var completed int

	err := scanner.Scan(
		&m.ID, &m.UserID, &m.Title, &m.Description, &m.Period, &m.Metric,
		&m.Points, &m.Target, &m.Progress, &completed, &m.ExpiresAt, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	m.Completed = completed != 0
	return &m, nil
}

const missionCols = `id, user_id, title, description, period, metric, points, target, progress, completed, expires_at, created_at`

func (s *MissionStore) Create(userID int64, title, description, period, metric string, points, target int, expiresAt time.Time) (*model.Mission, error) {
	result, err := s.db.Exec(
		`INSERT INTO missions (user_id, title, description, period, metric, points, target, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, title, description, period, metric, points, target, expiresAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert mission: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *MissionStore) GetByID(id int64) (*model.Mission, error) {
	row := s.db.QueryRow(`SELECT `+missionCols+` FROM missions WHERE id = ?`, id)
	m, err := scanMission(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get mission: %w", err)
	}
	return m, nil
}

func (s *MissionStore) ListByUser(userID int64) ([]model.Mission, error) {
	rows, err := s.db.Query(
		`SELECT `+missionCols+` FROM missions WHERE user_id = ? ORDER BY expires_at DESC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list missions: %w", err)
	}
	defer rows.Close()
	return collectMissions(rows)
}

// ListForPeriod returns the user's missions of a period that have not expired
// relative to the period start, i.e. the set the mission engine treats as
// "already generated".
func (s *MissionStore) ListForPeriod(userID int64, period string, periodStart time.Time) ([]model.Mission, error) {
	rows, err := s.db.Query(
		`SELECT `+missionCols+` FROM missions WHERE user_id = ? AND period = ? AND expires_at >= ? ORDER BY id ASC`,
		userID, period, periodStart.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("list missions for period: %w", err)
	}
	defer rows.Close()
	return collectMissions(rows)
}

// ListActiveByMetric returns uncompleted, unexpired missions tracking a metric.
func (s *MissionStore) ListActiveByMetric(userID int64, metric string, now time.Time) ([]model.Mission, error) {
	rows, err := s.db.Query(
		`SELECT `+missionCols+` FROM missions WHERE user_id = ? AND metric = ? AND completed = 0 AND expires_at > ? ORDER BY id ASC`,
		userID, metric, now.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("list active missions: %w", err)
	}
	defer rows.Close()
	return collectMissions(rows)
}

func collectMissions(rows *sql.Rows) ([]model.Mission, error) {
	var missions []model.Mission
	for rows.Next() {
		m, err := scanMission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan mission: %w", err)
		}
		missions = append(missions, *m)
	}
	return missions, rows.Err()
}

// ReportProgress stores the raw progress and, in the same transaction, flips
// completed and credits the mission's points to its owner. The flip is a
// conditional update on completed = 0, so two concurrent reports can not both
// credit: exactly one of them observes the flag change.
func (s *MissionStore) ReportProgress(id int64, newProgress int) (*model.Mission, bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE missions SET progress = ? WHERE id = ?`, newProgress, id); err != nil {
		return nil, false, fmt.Errorf("update progress: %w", err)
	}

	result, err := tx.Exec(
		`UPDATE missions SET completed = 1 WHERE id = ? AND completed = 0 AND progress >= target`,
		id,
	)
	if err != nil {
		return nil, false, fmt.Errorf("flip completed: %w", err)
	}
	flipped, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("rows affected: %w", err)
	}

	if flipped == 1 {
		_, err = tx.Exec(
			`UPDATE users SET points = points + (SELECT points FROM missions WHERE id = ?), updated_at = CURRENT_TIMESTAMP
			 WHERE id = (SELECT user_id FROM missions WHERE id = ?)`,
			id, id,
		)
		if err != nil {
			return nil, false, fmt.Errorf("credit points: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit: %w", err)
	}

	m, err := s.GetByID(id)
	if err != nil {
		return nil, false, err
	}
	return m, flipped == 1, nil
}

// DeleteExpired removes uncompleted missions that expired before the cutoff.
// Completed missions stay as history.
func (s *MissionStore) DeleteExpired(before time.Time) (int64, error) {
	result, err := s.db.Exec(
		`DELETE FROM missions WHERE completed = 0 AND expires_at < ?`,
		before.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("delete expired missions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
