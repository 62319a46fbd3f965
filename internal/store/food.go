package store

import (
	"database/sql"
	"fmt"

	"github.com/perivale/fitquest/internal/model"
)

type FoodStore struct {
	db *sql.DB
}

func NewFoodStore(db *sql.DB) *FoodStore {
	return &FoodStore{db: db}
}

func scanFood(scanner interface{ Scan(...any) error }) (*model.FoodEntry, error) {
	var f model.FoodEntry
	var calories, protein, fat, carbs, fiber sql.NullFloat64

	err := scanner.Scan(
		&f.ID, &f.UserID, &f.Name, &f.MealType,
		&calories, &protein, &fat, &carbs, &fiber,
		&f.Date, &f.Time, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	// Missing or malformed numerics read as zero so aggregation stays total.
	f.Calories = calories.Float64
	f.Protein = protein.Float64
	f.Fat = fat.Float64
	f.Carbs = carbs.Float64
	f.Fiber = fiber.Float64
	return &f, nil
}

const foodCols = `id, user_id, name, meal_type, calories, protein_g, fat_g, carbs_g, fiber_g, entry_date, entry_time, created_at, updated_at`

func (s *FoodStore) Create(userID int64, name, mealType string, calories, protein, fat, carbs, fiber float64, date, timeOfDay string) (*model.FoodEntry, error) {
	result, err := s.db.Exec(
		`INSERT INTO food_entries (user_id, name, meal_type, calories, protein_g, fat_g, carbs_g, fiber_g, entry_date, entry_time)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, name, mealType, calories, protein, fat, carbs, fiber, date, timeOfDay,
	)
	if err != nil {
		return nil, fmt.Errorf("insert food entry: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *FoodStore) GetByID(id int64) (*model.FoodEntry, error) {
	row := s.db.QueryRow(`SELECT `+foodCols+` FROM food_entries WHERE id = ?`, id)
	f, err := scanFood(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get food entry: %w", err)
	}
	return f, nil
}

func (s *FoodStore) ListByUser(userID int64) ([]model.FoodEntry, error) {
	rows, err := s.db.Query(
		`SELECT `+foodCols+` FROM food_entries WHERE user_id = ? ORDER BY entry_date DESC, entry_time DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list food entries: %w", err)
	}
	defer rows.Close()

	var entries []model.FoodEntry
	for rows.Next() {
		f, err := scanFood(rows)
		if err != nil {
			return nil, fmt.Errorf("scan food entry: %w", err)
		}
		entries = append(entries, *f)
	}
	return entries, rows.Err()
}

func (s *FoodStore) ListByUserAndDate(userID int64, date string) ([]model.FoodEntry, error) {
	rows, err := s.db.Query(
		`SELECT `+foodCols+` FROM food_entries WHERE user_id = ? AND entry_date = ? ORDER BY entry_time ASC, id ASC`,
		userID, date,
	)
	if err != nil {
		return nil, fmt.Errorf("list food entries by date: %w", err)
	}
	defer rows.Close()

	var entries []model.FoodEntry
	for rows.Next() {
		f, err := scanFood(rows)
		if err != nil {
			return nil, fmt.Errorf("scan food entry: %w", err)
		}
		entries = append(entries, *f)
	}
	return entries, rows.Err()
}

func (s *FoodStore) Update(id int64, name, mealType string, calories, protein, fat, carbs, fiber float64, date, timeOfDay string) (*model.FoodEntry, error) {
	_, err := s.db.Exec(
		`UPDATE food_entries SET name = ?, meal_type = ?, calories = ?, protein_g = ?, fat_g = ?, carbs_g = ?, fiber_g = ?, entry_date = ?, entry_time = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, mealType, calories, protein, fat, carbs, fiber, date, timeOfDay, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update food entry: %w", err)
	}
	return s.GetByID(id)
}

func (s *FoodStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM food_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete food entry: %w", err)
	}
	return nil
}
