package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/villegasmiguelangel268-maker/listify/internal/model"
)

// GroceryStore persists the whole grocery list. Row order is kept in the
// position column so a reload reproduces the live view exactly.
type GroceryStore struct {
	db *sql.DB
}

func NewGroceryStore(db *sql.DB) *GroceryStore {
	return &GroceryStore{db: db}
}

func scanItem(scanner interface{ Scan(...any) error }) (*model.GroceryItem, error) {
	var item model.GroceryItem
	var bought int
	if err := scanner.Scan(&item.ID, &item.Name, &item.Quantity, &item.Category, &bought); err != nil {
		return nil, err
	}
	item.IsBought = bought != 0
	return &item, nil
}

const itemCols = `id, name, quantity, category, is_bought`

func (s *GroceryStore) LoadAll(ctx context.Context) ([]model.GroceryItem, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+itemCols+` FROM grocery_items ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	defer rows.Close()

	items := []model.GroceryItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// SaveAll replaces every stored row with items in a single transaction.
func (s *GroceryStore) SaveAll(ctx context.Context, items []model.GroceryItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM grocery_items`); err != nil {
		return fmt.Errorf("clear items: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO grocery_items (id, name, quantity, category, is_bought, position) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, item := range items {
		bought := 0
		if item.IsBought {
			bought = 1
		}
		if _, err := stmt.ExecContext(ctx, item.ID, item.Name, item.Quantity, item.Category, bought, i); err != nil {
			return fmt.Errorf("insert item %d: %w", item.ID, err)
		}
	}

	return tx.Commit()
}
