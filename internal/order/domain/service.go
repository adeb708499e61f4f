package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/dinepos/internal/pricing"
	tabledomain "github.com/smallbiznis/dinepos/internal/table/domain"
	"github.com/smallbiznis/dinepos/pkg/db/pagination"
)

type Service interface {
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*PlaceOrderResult, error)
	Get(ctx context.Context, id int64) (*Order, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	Quote(ctx context.Context, req QuoteRequest) (*QuoteResponse, error)
	Close(ctx context.Context, req CloseRequest) (*CloseResult, error)
}

type LineRequest struct {
	MenuItemID int64 `json:"menu_item_id,string"`
	Quantity   int   `json:"quantity"`
}

// PlaceOrderRequest carries the amounts the caller computed and showed to the
// guest. They are checked against the cart before anything is written.
type PlaceOrderRequest struct {
	OrderType      OrderType       `json:"order_type"`
	PaymentMode    PaymentMode     `json:"payment_mode"`
	TableID        *int64          `json:"table_id,string"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Items          []LineRequest   `json:"items"`
}

// PlaceOrderResult reports a committed order. MirrorErr is set when the order
// was stored but a flat-file mirror could not be appended.
type PlaceOrderResult struct {
	Order     *Order
	MirrorErr error
}

type QuoteRequest struct {
	Items         []LineRequest   `json:"items"`
	DiscountKind  string          `json:"discount_kind"`
	DiscountValue decimal.Decimal `json:"discount_value"`
}

type QuoteLine struct {
	MenuItemID int64           `json:"menu_item_id,string"`
	ItemName   string          `json:"item_name"`
	UnitPrice  decimal.Decimal `json:"price"`
	TaxRate    decimal.Decimal `json:"tax_rate"`
	Quantity   int             `json:"quantity"`
	LineTotal  decimal.Decimal `json:"line_total"`
}

type QuoteResponse struct {
	pricing.Breakdown
	TaxPolicy string      `json:"tax_policy"`
	TaxRate   string      `json:"tax_rate,omitempty"`
	Currency  string      `json:"currency"`
	Lines     []QuoteLine `json:"items"`
}

type ListRequest struct {
	pagination.Pagination
}

type ListResponse struct {
	pagination.PageInfo
	Orders []Order `json:"orders"`
}

type CloseRequest struct {
	OrderID int64              `json:"-"`
	Release tabledomain.Status `json:"release_to"`
}

type CloseResult struct {
	Order    *Order             `json:"order"`
	Table    *tabledomain.Table `json:"table,omitempty"`
	Released bool               `json:"released"`
}

var (
	ErrInvalidID          = errors.New("invalid_id")
	ErrEmptyCart          = errors.New("empty_cart")
	ErrInvalidQuantity    = errors.New("invalid_quantity")
	ErrInvalidOrderType   = errors.New("invalid_order_type")
	ErrInvalidPaymentMode = errors.New("invalid_payment_mode")
	ErrInvalidTable       = errors.New("invalid_table")
	ErrInvalidAmount      = errors.New("invalid_amount")
	ErrSubtotalMismatch   = errors.New("subtotal_mismatch")
	ErrTotalMismatch      = errors.New("total_mismatch")
	ErrInvalidPageToken   = errors.New("invalid_page_token")
	ErrUnknownMenuItem    = errors.New("unknown_menu_item")
	ErrTableNotFound      = errors.New("table_not_found")
	ErrTableUnavailable   = errors.New("table_unavailable")
	ErrOrderNotFound      = errors.New("order_not_found")
	ErrMirrorWrite        = errors.New("mirror_write_failed")
)
