package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type Service interface {
	Add(ctx context.Context, req CreateRequest) (*MenuItem, error)
	Update(ctx context.Context, req UpdateRequest) (*MenuItem, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]MenuItem, error)
	Get(ctx context.Context, id int64) (*MenuItem, error)
	GetMany(ctx context.Context, ids []int64) (map[int64]MenuItem, error)
	BulkImport(ctx context.Context, src ImportSource) (*ImportResult, error)
}

type CreateRequest struct {
	Name     string           `json:"name"`
	Category string           `json:"category"`
	Price    decimal.Decimal  `json:"price"`
	TaxRate  *decimal.Decimal `json:"tax_rate"`
	Image    *string          `json:"image"`
}

// UpdateRequest replaces every field of an existing item.
type UpdateRequest struct {
	ID       int64           `json:"-"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	TaxRate  decimal.Decimal `json:"tax_rate"`
	Image    *string         `json:"image"`
}

// ImportRow is one parsed line of a menu source file.
type ImportRow struct {
	Line     int
	Name     string
	Category string
	Price    decimal.Decimal
	TaxRate  *decimal.Decimal
	Image    *string
}

type ImportSource struct {
	Name string
	Rows []ImportRow
}

type ImportResult struct {
	Source   string `json:"source"`
	Inserted int    `json:"inserted"`
	Skipped  bool   `json:"skipped"`
	Reason   string `json:"reason,omitempty"`
}

const ReasonAlreadyPopulated = "already populated"

var (
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidName      = errors.New("invalid_name")
	ErrInvalidPrice     = errors.New("invalid_price")
	ErrInvalidTaxRate   = errors.New("invalid_tax_rate")
	ErrInvalidImportRow = errors.New("invalid_import_row")
	ErrNotFound         = errors.New("not_found")
)
