package repository

import (
	"context"

	"github.com/smallbiznis/dinepos/internal/table/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const selectColumns = `SELECT id, name, capacity, status, current_order_id, created_at, updated_at FROM dining_tables`

func (r *repo) Create(ctx context.Context, db *gorm.DB, table *domain.Table) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO dining_tables (id, name, capacity, status, current_order_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		table.ID,
		table.Name,
		table.Capacity,
		table.Status,
		table.CurrentOrderID,
		table.CreatedAt,
		table.UpdatedAt,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id int64) (int64, error) {
	res := db.WithContext(ctx).Exec(`DELETE FROM dining_tables WHERE id = ?`, id)
	return res.RowsAffected, res.Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Table, error) {
	var t domain.Table
	if err := db.WithContext(ctx).Raw(selectColumns+` WHERE id = ?`, id).Scan(&t).Error; err != nil {
		return nil, err
	}
	if t.ID == 0 {
		return nil, nil
	}
	return &t, nil
}

func (r *repo) FindByName(ctx context.Context, db *gorm.DB, name string) (*domain.Table, error) {
	var t domain.Table
	if err := db.WithContext(ctx).Raw(selectColumns+` WHERE name = ?`, name).Scan(&t).Error; err != nil {
		return nil, err
	}
	if t.ID == 0 {
		return nil, nil
	}
	return &t, nil
}

func (r *repo) FindAll(ctx context.Context, db *gorm.DB) ([]domain.Table, error) {
	var items []domain.Table
	if err := db.WithContext(ctx).Raw(selectColumns + ` ORDER BY id ASC`).Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, table *domain.Table) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE dining_tables SET status = ?, current_order_id = ?, updated_at = ? WHERE id = ?`,
		table.Status,
		table.CurrentOrderID,
		table.UpdatedAt,
		table.ID,
	)
	return res.RowsAffected, res.Error
}

func (r *repo) CompareAndSetStatus(ctx context.Context, db *gorm.DB, table *domain.Table, expected domain.Status) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE dining_tables SET status = ?, current_order_id = ?, updated_at = ? WHERE id = ? AND status = ?`,
		table.Status,
		table.CurrentOrderID,
		table.UpdatedAt,
		table.ID,
		expected,
	)
	return res.RowsAffected, res.Error
}
