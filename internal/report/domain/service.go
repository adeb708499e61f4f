package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodCustom  Period = "custom"
)

// DefaultTopN is how many items MostSold returns when no limit is given.
const DefaultTopN = 10

// RangeRequest selects sales by calendar date in the store time zone. Only the
// date part of Start and End is used; both days are included. A nil bound is
// open. A preset Period other than custom overrides Start and End.
type RangeRequest struct {
	Period Period
	Start  *time.Time
	End    *time.Time
}

// SaleLine is one sold line with its order header. Item fields come from the
// order snapshot, not the current menu.
type SaleLine struct {
	OrderID     int64           `json:"order_id,string"`
	OrderDate   time.Time       `json:"order_date"`
	OrderType   string          `json:"order_type"`
	PaymentMode string          `json:"payment_mode"`
	ItemName    string          `json:"item_name"`
	Category    string          `json:"category"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type ItemCount struct {
	ItemName string `json:"item_name"`
	Quantity int64  `json:"quantity"`
}

type Summary struct {
	Revenue    decimal.Decimal `json:"revenue"`
	OrderCount int             `json:"order_count"`
	ItemsSold  int64           `json:"items_sold"`
}

type Service interface {
	SalesInRange(ctx context.Context, req RangeRequest) ([]SaleLine, error)
	MostSold(ctx context.Context, req RangeRequest, topN int) ([]ItemCount, error)
	Summary(ctx context.Context, req RangeRequest) (Summary, error)
}

var (
	ErrInvalidPeriod = errors.New("invalid_period")
	ErrInvalidRange  = errors.New("invalid_range")
	ErrInvalidTopN   = errors.New("invalid_top_n")
)
