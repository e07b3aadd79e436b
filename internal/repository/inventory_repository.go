package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/car-service-concierge/internal/model"
)

// InventoryRepo provides persistence for the owner's spare-part stock.
type InventoryRepo struct{ DB *sql.DB }

func NewInventoryRepo(db *sql.DB) *InventoryRepo { return &InventoryRepo{DB: db} }

// ErrItemNumberExists is returned when an item number is already taken.
var ErrItemNumberExists = errors.New("item number already exists")

const inventoryColumns = "id, item_number, item_name, item_quantity, item_price"

// Create inserts an inventory item and returns its ID.
func (r *InventoryRepo) Create(ctx context.Context, it model.Inventory) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO inventory (item_number, item_name, item_quantity, item_price) VALUES (?,?,?,?)",
		it.ItemNumber, it.ItemName, it.ItemQuantity, it.ItemPrice)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrItemNumberExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches one item.
func (r *InventoryRepo) GetByID(ctx context.Context, id uint64) (model.Inventory, error) {
	var it model.Inventory
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+inventoryColumns+" FROM inventory WHERE id=? LIMIT 1", id).
		Scan(&it.ID, &it.ItemNumber, &it.ItemName, &it.ItemQuantity, &it.ItemPrice)
	if err == sql.ErrNoRows {
		return it, ErrItemNotFound
	}
	return it, err
}

// List returns all items ordered by item number.
func (r *InventoryRepo) List(ctx context.Context) ([]model.Inventory, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+inventoryColumns+" FROM inventory ORDER BY item_number")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.Inventory, 0)
	for rows.Next() {
		var it model.Inventory
		if err := rows.Scan(&it.ID, &it.ItemNumber, &it.ItemName, &it.ItemQuantity, &it.ItemPrice); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Update edits an item.
func (r *InventoryRepo) Update(ctx context.Context, id uint64, it model.Inventory) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE inventory SET item_number=?, item_name=?, item_quantity=?, item_price=? WHERE id=?",
		it.ItemNumber, it.ItemName, it.ItemQuantity, it.ItemPrice, id)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrItemNumberExists
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes an item.
func (r *InventoryRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM inventory WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrItemNotFound
	}
	return nil
}
