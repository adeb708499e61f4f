package repository

import (
	"context"

	"github.com/smallbiznis/dinepos/internal/catalog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const selectColumns = `SELECT id, name, category, price, tax_rate, image, created_at, updated_at FROM menu_items`

func (r *repo) Create(ctx context.Context, db *gorm.DB, item *domain.MenuItem) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO menu_items (id, name, category, price, tax_rate, image, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID,
		item.Name,
		item.Category,
		item.Price,
		item.TaxRate,
		item.Image,
		item.CreatedAt,
		item.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, item *domain.MenuItem) (int64, error) {
	if item == nil {
		return 0, gorm.ErrInvalidData
	}
	res := db.WithContext(ctx).Exec(
		`UPDATE menu_items
		 SET name = ?, category = ?, price = ?, tax_rate = ?, image = ?, updated_at = ?
		 WHERE id = ?`,
		item.Name,
		item.Category,
		item.Price,
		item.TaxRate,
		item.Image,
		item.UpdatedAt,
		item.ID,
	)
	return res.RowsAffected, res.Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id int64) (int64, error) {
	res := db.WithContext(ctx).Exec(`DELETE FROM menu_items WHERE id = ?`, id)
	return res.RowsAffected, res.Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.MenuItem, error) {
	var item domain.MenuItem
	err := db.WithContext(ctx).Raw(selectColumns+` WHERE id = ?`, id).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) FindByIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]domain.MenuItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []domain.MenuItem
	err := db.WithContext(ctx).Raw(selectColumns+` WHERE id IN ?`, ids).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindAll(ctx context.Context, db *gorm.DB) ([]domain.MenuItem, error) {
	var items []domain.MenuItem
	err := db.WithContext(ctx).Raw(selectColumns + ` ORDER BY category ASC, name ASC, id ASC`).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	if err := db.WithContext(ctx).Raw(`SELECT COUNT(*) FROM menu_items`).Scan(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
