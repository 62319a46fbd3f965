package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/perivale/fitquest/internal/model"
)

// ErrInsufficientPoints is returned when a purchase would overdraw the
// user's balance.
var ErrInsufficientPoints = errors.New("insufficient points")

type StoreItemStore struct {
	db *sql.DB
}

func NewStoreItemStore(db *sql.DB) *StoreItemStore {
	return &StoreItemStore{db: db}
}

func scanStoreItem(scanner interface{ Scan(...any) error }) (*model.StoreItem, error) {
	var i model.StoreItem
	var active int

	err := scanner.Scan(&i.ID, &i.Title, &i.Description, &i.PointCost, &active, &i.CreatedAt)
	if err != nil {
		return nil, err
	}

	i.Active = active != 0
	return &i, nil
}

const storeItemCols = `id, title, description, point_cost, active, created_at`

func (s *StoreItemStore) Create(title, description string, pointCost int, active bool) (*model.StoreItem, error) {
	var a int
	if active {
		a = 1
	}

	result, err := s.db.Exec(
		`INSERT INTO store_items (title, description, point_cost, active) VALUES (?, ?, ?, ?)`,
		title, description, pointCost, a,
	)
	if err != nil {
		return nil, fmt.Errorf("insert store item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *StoreItemStore) GetByID(id int64) (*model.StoreItem, error) {
	row := s.db.QueryRow(`SELECT `+storeItemCols+` FROM store_items WHERE id = ?`, id)
	i, err := scanStoreItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get store item: %w", err)
	}
	return i, nil
}

// List returns all items, active first, then by point cost.
func (s *StoreItemStore) List() ([]model.StoreItem, error) {
	rows, err := s.db.Query(`SELECT ` + storeItemCols + ` FROM store_items ORDER BY active DESC, point_cost ASC, title ASC`)
	if err != nil {
		return nil, fmt.Errorf("list store items: %w", err)
	}
	defer rows.Close()

	var items []model.StoreItem
	for rows.Next() {
		i, err := scanStoreItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan store item: %w", err)
		}
		items = append(items, *i)
	}
	return items, rows.Err()
}

func (s *StoreItemStore) Update(id int64, title, description string, pointCost int, active bool) (*model.StoreItem, error) {
	var a int
	if active {
		a = 1
	}

	_, err := s.db.Exec(
		`UPDATE store_items SET title = ?, description = ?, point_cost = ?, active = ? WHERE id = ?`,
		title, description, pointCost, a, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update store item: %w", err)
	}
	return s.GetByID(id)
}

func (s *StoreItemStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM store_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete store item: %w", err)
	}
	return nil
}

// --- Purchase methods ---

func scanPurchase(scanner interface{ Scan(...any) error }) (*model.Purchase, error) {
	var p model.Purchase
	err := scanner.Scan(&p.ID, &p.Receipt, &p.ItemID, &p.UserID, &p.PointsSpent, &p.PurchasedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

const purchaseCols = `id, receipt, item_id, user_id, points_spent, purchased_at`

// Purchase debits the user's balance and records the purchase in one
// transaction. The debit is conditional on the balance covering the cost, so
// concurrent purchases can not drive points negative.
func (s *StoreItemStore) Purchase(itemID, userID int64, pointCost int) (*model.Purchase, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`UPDATE users SET points = points - ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND points >= ?`,
		pointCost, userID, pointCost,
	)
	if err != nil {
		return nil, fmt.Errorf("debit points: %w", err)
	}
	debited, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if debited == 0 {
		return nil, ErrInsufficientPoints
	}

	receipt := uuid.NewString()
	result, err = tx.Exec(
		`INSERT INTO purchases (receipt, item_id, user_id, points_spent) VALUES (?, ?, ?, ?)`,
		receipt, itemID, userID, pointCost,
	)
	if err != nil {
		return nil, fmt.Errorf("insert purchase: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+purchaseCols+` FROM purchases WHERE id = ?`, id)
	return scanPurchase(row)
}

func (s *StoreItemStore) ListPurchasesByUser(userID int64) ([]model.Purchase, error) {
	rows, err := s.db.Query(
		`SELECT `+purchaseCols+` FROM purchases WHERE user_id = ? ORDER BY purchased_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	var purchases []model.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		purchases = append(purchases, *p)
	}
	return purchases, rows.Err()
}
