package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Cursor struct {
	ID        int64
	CreatedAt time.Time
}

type ListFilter struct {
	Cursor *Cursor
	Limit  int
}

type Repository interface {
	InsertOrder(ctx context.Context, db *gorm.DB, order *Order) error
	InsertLines(ctx context.Context, db *gorm.DB, lines []OrderLine) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Order, error)
	FindLines(ctx context.Context, db *gorm.DB, orderIDs []int64) ([]OrderLine, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*Order, error)
}
