package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, table *Table) error
	Delete(ctx context.Context, db *gorm.DB, id int64) (int64, error)
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Table, error)
	FindByName(ctx context.Context, db *gorm.DB, name string) (*Table, error)
	FindAll(ctx context.Context, db *gorm.DB) ([]Table, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, table *Table) (int64, error)
	// CompareAndSetStatus only writes when the row is still in the expected status.
	CompareAndSetStatus(ctx context.Context, db *gorm.DB, table *Table, expected Status) (int64, error)
}
