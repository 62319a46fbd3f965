package store

import (
	"database/sql"
	"fmt"

	"github.com/perivale/fitquest/internal/model"
)

type BadgeStore struct {
	db *sql.DB
}

func NewBadgeStore(db *sql.DB) *BadgeStore {
	return &BadgeStore{db: db}
}

func scanBadge(scanner interface{ Scan(...any) error }) (*model.Badge, error) {
	var b model.Badge
	err := scanner.Scan(&b.ID, &b.Title, &b.Description, &b.Threshold, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

const badgeCols = `id, title, description, threshold, created_at`

func (s *BadgeStore) List() ([]model.Badge, error) {
	rows, err := s.db.Query(`SELECT ` + badgeCols + ` FROM badges ORDER BY threshold ASC`)
	if err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}
	defer rows.Close()

	var badges []model.Badge
	for rows.Next() {
		b, err := scanBadge(rows)
		if err != nil {
			return nil, fmt.Errorf("scan badge: %w", err)
		}
		badges = append(badges, *b)
	}
	return badges, rows.Err()
}

// ListByUser returns the badges already awarded to a user, lowest threshold
// first.
func (s *BadgeStore) ListByUser(userID int64) ([]model.Badge, error) {
	rows, err := s.db.Query(
		`SELECT b.id, b.title, b.description, b.threshold, b.created_at
		 FROM badges b JOIN badge_awards a ON a.badge_id = b.id
		 WHERE a.user_id = ? ORDER BY b.threshold ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list user badges: %w", err)
	}
	defer rows.Close()

	var badges []model.Badge
	for rows.Next() {
		b, err := scanBadge(rows)
		if err != nil {
			return nil, fmt.Errorf("scan badge: %w", err)
		}
		badges = append(badges, *b)
	}
	return badges, rows.Err()
}

// AwardEligible awards every badge whose threshold the user's points now meet
// and returns only the newly awarded ones. The unique (badge_id, user_id)
// constraint makes repeat awards a no-op.
func (s *BadgeStore) AwardEligible(userID int64) ([]model.Badge, error) {
	rows, err := s.db.Query(
		`SELECT `+badgeCols+` FROM badges
		 WHERE threshold <= (SELECT points FROM users WHERE id = ?)
		   AND id NOT IN (SELECT badge_id FROM badge_awards WHERE user_id = ?)
		 ORDER BY threshold ASC`,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list eligible badges: %w", err)
	}

	var eligible []model.Badge
	for rows.Next() {
		b, err := scanBadge(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan badge: %w", err)
		}
		eligible = append(eligible, *b)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	var awarded []model.Badge
	for _, b := range eligible {
		result, err := s.db.Exec(
			`INSERT OR IGNORE INTO badge_awards (badge_id, user_id) VALUES (?, ?)`,
			b.ID, userID,
		)
		if err != nil {
			return awarded, fmt.Errorf("award badge: %w", err)
		}
		if n, err := result.RowsAffected(); err == nil && n == 1 {
			awarded = append(awarded, b)
		}
	}
	return awarded, nil
}
