package store

import (
	"database/sql"
	"fmt"

	"github.com/perivale/fitquest/internal/model"
)

type ExerciseStore struct {
	db *sql.DB
}

func NewExerciseStore(db *sql.DB) *ExerciseStore {
	return &ExerciseStore{db: db}
}

func scanExercise(scanner interface{ Scan(...any) error }) (*model.ExerciseEntry, error) {
	var e model.ExerciseEntry
	var burned sql.NullFloat64

	err := scanner.Scan(
		&e.ID, &e.UserID, &e.Activity, &e.DurationMinutes, &burned,
		&e.Date, &e.Time, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.CaloriesBurned = burned.Float64
	return &e, nil
}

const exerciseCols = `id, user_id, activity, duration_minutes, calories_burned, entry_date, entry_time, created_at, updated_at`

func (s *ExerciseStore) Create(userID int64, activity string, durationMinutes int, caloriesBurned float64, date, timeOfDay string) (*model.ExerciseEntry, error) {
	result, err := s.db.Exec(
		`INSERT INTO exercise_entries (user_id, activity, duration_minutes, calories_burned, entry_date, entry_time)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		userID, activity, durationMinutes, caloriesBurned, date, timeOfDay,
	)
	if err != nil {
		return nil, fmt.Errorf("insert exercise entry: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ExerciseStore) GetByID(id int64) (*model.ExerciseEntry, error) {
	row := s.db.QueryRow(`SELECT `+exerciseCols+` FROM exercise_entries WHERE id = ?`, id)
	e, err := scanExercise(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get exercise entry: %w", err)
	}
	return e, nil
}

func (s *ExerciseStore) ListByUser(userID int64) ([]model.ExerciseEntry, error) {
	rows, err := s.db.Query(
		`SELECT `+exerciseCols+` FROM exercise_entries WHERE user_id = ? ORDER BY entry_date DESC, entry_time DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list exercise entries: %w", err)
	}
	defer rows.Close()

	var entries []model.ExerciseEntry
	for rows.Next() {
		e, err := scanExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("scan exercise entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func (s *ExerciseStore) ListByUserAndDate(userID int64, date string) ([]model.ExerciseEntry, error) {
	rows, err := s.db.Query(
		`SELECT `+exerciseCols+` FROM exercise_entries WHERE user_id = ? AND entry_date = ? ORDER BY entry_time ASC, id ASC`,
		userID, date,
	)
	if err != nil {
		return nil, fmt.Errorf("list exercise entries by date: %w", err)
	}
	defer rows.Close()

	var entries []model.ExerciseEntry
	for rows.Next() {
		e, err := scanExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("scan exercise entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func (s *ExerciseStore) Update(id int64, activity string, durationMinutes int, caloriesBurned float64, date, timeOfDay string) (*model.ExerciseEntry, error) {
	_, err := s.db.Exec(
		`UPDATE exercise_entries SET activity = ?, duration_minutes = ?, calories_burned = ?, entry_date = ?, entry_time = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		activity, durationMinutes, caloriesBurned, date, timeOfDay, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update exercise entry: %w", err)
	}
	return s.GetByID(id)
}

func (s *ExerciseStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM exercise_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete exercise entry: %w", err)
	}
	return nil
}
