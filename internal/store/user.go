package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/perivale/fitquest/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var premium int
	var premiumSince sql.NullTime

	err := scanner.Scan(
		&u.ID, &u.Email, &u.Name, &u.CurrentWeight, &u.TargetWeight, &u.HeightCM,
		&u.Points, &premium, &premiumSince, &u.StripeCustomer, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.IsPremium = premium != 0
	if premiumSince.Valid {
		u.PremiumSince = &premiumSince.Time
	}
	return &u, nil
}

const userCols = `id, email, name, current_weight_kg, target_weight_kg, height_cm, points, is_premium, premium_since, stripe_customer_id, created_at, updated_at`

func (s *UserStore) Create(email, name, passwordHash string) (*model.User, error) {
	result, err := s.db.Exec(
		`INSERT INTO users (email, name, password_hash) VALUES (?, ?, ?)`,
		email, name, passwordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id int64) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByEmail(email string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByStripeCustomer(customerID string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE stripe_customer_id = ?`, customerID)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by stripe customer: %w", err)
	}
	return u, nil
}

// PasswordHash returns the stored hash for an email, or "" when no such user
// exists. Kept separate from the User model so hashes never travel with
// profile data.
func (s *UserStore) PasswordHash(email string) (string, error) {
	var hash string
	err := s.db.QueryRow(`SELECT password_hash FROM users WHERE email = ?`, email).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get password hash: %w", err)
	}
	return hash, nil
}

func (s *UserStore) ListIDs() ([]int64, error) {
	rows, err := s.db.Query(`SELECT id FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list user ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *UserStore) UpdateProfile(id int64, name string, targetWeightKg, heightCM float64) (*model.User, error) {
	_, err := s.db.Exec(
		`UPDATE users SET name = ?, target_weight_kg = ?, height_cm = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, targetWeightKg, heightCM, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.GetByID(id)
}

// SetCurrentWeight keeps the denormalized profile weight in sync with the
// newest weight record.
func (s *UserStore) SetCurrentWeight(id int64, weightKg float64) error {
	_, err := s.db.Exec(
		`UPDATE users SET current_weight_kg = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		weightKg, id,
	)
	if err != nil {
		return fmt.Errorf("set current weight: %w", err)
	}
	return nil
}

func (s *UserStore) SetStripeCustomer(id int64, customerID string) error {
	_, err := s.db.Exec(
		`UPDATE users SET stripe_customer_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		customerID, id,
	)
	if err != nil {
		return fmt.Errorf("set stripe customer: %w", err)
	}
	return nil
}

func (s *UserStore) SetPremium(id int64, since time.Time) error {
	_, err := s.db.Exec(
		`UPDATE users SET is_premium = 1, premium_since = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		since.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("set premium: %w", err)
	}
	return nil
}

func (s *UserStore) ClearPremium(id int64) error {
	_, err := s.db.Exec(
		`UPDATE users SET is_premium = 0, premium_since = NULL, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("clear premium: %w", err)
	}
	return nil
}

func (s *UserStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
