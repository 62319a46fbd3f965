package store

import (
	"database/sql"
	"fmt"

	"github.com/perivale/fitquest/internal/model"
)

type WeightStore struct {
	db *sql.DB
}

func NewWeightStore(db *sql.DB) *WeightStore {
	return &WeightStore{db: db}
}

func scanWeight(scanner interface{ Scan(...any) error }) (*model.WeightRecord, error) {
	var w model.WeightRecord
	err := scanner.Scan(&w.ID, &w.UserID, &w.WeightKg, &w.Date, &w.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

const weightCols = `id, user_id, weight_kg, record_date, created_at`

// Create inserts a weight record and keeps users.current_weight_kg in sync
// when the new record is the newest one, all in a single transaction.
func (s *WeightStore) Create(userID int64, weightKg float64, date string) (*model.WeightRecord, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO weight_records (user_id, weight_kg, record_date) VALUES (?, ?, ?)`,
		userID, weightKg, date,
	)
	if err != nil {
		return nil, fmt.Errorf("insert weight record: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	_, err = tx.Exec(
		`UPDATE users SET current_weight_kg = (
			SELECT weight_kg FROM weight_records WHERE user_id = ? ORDER BY record_date DESC, id DESC LIMIT 1
		 ), updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sync current weight: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(id)
}

func (s *WeightStore) GetByID(id int64) (*model.WeightRecord, error) {
	row := s.db.QueryRow(`SELECT `+weightCols+` FROM weight_records WHERE id = ?`, id)
	w, err := scanWeight(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get weight record: %w", err)
	}
	return w, nil
}

// ListByUser returns records newest first. Records sharing a date are ordered
// by id descending, so the later-inserted record counts as the newer
// observation for trend purposes.
func (s *WeightStore) ListByUser(userID int64) ([]model.WeightRecord, error) {
	rows, err := s.db.Query(
		`SELECT `+weightCols+` FROM weight_records WHERE user_id = ? ORDER BY record_date DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list weight records: %w", err)
	}
	defer rows.Close()

	var records []model.WeightRecord
	for rows.Next() {
		w, err := scanWeight(rows)
		if err != nil {
			return nil, fmt.Errorf("scan weight record: %w", err)
		}
		records = append(records, *w)
	}
	return records, rows.Err()
}

func (s *WeightStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM weight_records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete weight record: %w", err)
	}
	return nil
}
