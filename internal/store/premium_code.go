package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/perivale/fitquest/internal/model"
)

// ErrCodeUsed is returned when redeeming a premium code that was already
// claimed.
var ErrCodeUsed = errors.New("premium code already used")

type PremiumCodeStore struct {
	db *sql.DB
}

func NewPremiumCodeStore(db *sql.DB) *PremiumCodeStore {
	return &PremiumCodeStore{db: db}
}

func scanPremiumCode(scanner interface{ Scan(...any) error }) (*model.PremiumCode, error) {
	var c model.PremiumCode
	var usedBy sql.NullInt64
	var usedAt sql.NullTime

	err := scanner.Scan(&c.ID, &c.Code, &usedBy, &usedAt, &c.CreatedAt)
	if err != nil {
		return nil, err
	}

	if usedBy.Valid {
		c.UsedBy = &usedBy.Int64
	}
	if usedAt.Valid {
		c.UsedAt = &usedAt.Time
	}
	return &c, nil
}

const premiumCodeCols = `id, code, used_by, used_at, created_at`

// Generate mints n single-use premium codes.
func (s *PremiumCodeStore) Generate(n int) ([]model.PremiumCode, error) {
	var codes []model.PremiumCode
	for i := 0; i < n; i++ {
		code := uuid.NewString()
		result, err := s.db.Exec(`INSERT INTO premium_codes (code) VALUES (?)`, code)
		if err != nil {
			return codes, fmt.Errorf("insert premium code: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return codes, fmt.Errorf("last insert id: %w", err)
		}
		row := s.db.QueryRow(`SELECT `+premiumCodeCols+` FROM premium_codes WHERE id = ?`, id)
		c, err := scanPremiumCode(row)
		if err != nil {
			return codes, fmt.Errorf("get premium code: %w", err)
		}
		codes = append(codes, *c)
	}
	return codes, nil
}

func (s *PremiumCodeStore) GetByCode(code string) (*model.PremiumCode, error) {
	row := s.db.QueryRow(`SELECT `+premiumCodeCols+` FROM premium_codes WHERE code = ?`, code)
	c, err := scanPremiumCode(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get premium code: %w", err)
	}
	return c, nil
}

// Redeem claims a code for a user and flips the user to premium in one
// transaction. The claim is conditional on used_by still being NULL, so a
// code can only ever be redeemed once.
func (s *PremiumCodeStore) Redeem(code string, userID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`UPDATE premium_codes SET used_by = ?, used_at = CURRENT_TIMESTAMP WHERE code = ? AND used_by IS NULL`,
		userID, code,
	)
	if err != nil {
		return fmt.Errorf("claim premium code: %w", err)
	}
	claimed, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if claimed == 0 {
		return ErrCodeUsed
	}

	_, err = tx.Exec(
		`UPDATE users SET is_premium = 1, premium_since = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("set premium: %w", err)
	}

	return tx.Commit()
}
