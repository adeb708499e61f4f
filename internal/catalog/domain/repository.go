package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, item *MenuItem) error
	Update(ctx context.Context, db *gorm.DB, item *MenuItem) (int64, error)
	Delete(ctx context.Context, db *gorm.DB, id int64) (int64, error)
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*MenuItem, error)
	FindByIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]MenuItem, error)
	FindAll(ctx context.Context, db *gorm.DB) ([]MenuItem, error)
	Count(ctx context.Context, db *gorm.DB) (int64, error)
}
