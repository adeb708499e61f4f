package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderType string

const (
	OrderTypeDineIn   OrderType = "Dine-In"
	OrderTypeTakeaway OrderType = "Takeaway"
)

func (t OrderType) Valid() bool {
	return t == OrderTypeDineIn || t == OrderTypeTakeaway
}

type PaymentMode string

const (
	PaymentCash PaymentMode = "Cash"
	PaymentCard PaymentMode = "Card"
	PaymentUPI  PaymentMode = "UPI"
)

func (m PaymentMode) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentUPI:
		return true
	default:
		return false
	}
}

// Order is immutable once written.
type Order struct {
	ID             int64           `json:"order_id,string" gorm:"primaryKey;autoIncrement:false"`
	OrderType      OrderType       `json:"order_type" gorm:"type:varchar(16);not null"`
	TableID        *int64          `json:"table_id,omitempty,string"`
	PaymentMode    PaymentMode     `json:"payment_mode" gorm:"type:varchar(16);not null"`
	Subtotal       decimal.Decimal `json:"subtotal" gorm:"type:numeric(12,2);not null"`
	TaxAmount      decimal.Decimal `json:"tax_amount" gorm:"type:numeric(12,2);not null"`
	DiscountAmount decimal.Decimal `json:"discount_amount" gorm:"type:numeric(12,2);not null"`
	TotalAmount    decimal.Decimal `json:"total_amount" gorm:"type:numeric(12,2);not null"`
	CreatedAt      time.Time       `json:"order_date" gorm:"not null;index"`
	Lines          []OrderLine     `json:"items" gorm:"-"`
}

func (Order) TableName() string { return "orders" }

// OrderLine carries the item as it was sold. MenuItemID is informational and
// may point at an item that no longer exists.
type OrderLine struct {
	ID         int64           `json:"id,string" gorm:"primaryKey;autoIncrement:false"`
	OrderID    int64           `json:"order_id,string" gorm:"not null;index"`
	MenuItemID int64           `json:"menu_item_id,string" gorm:"not null"`
	Position   int             `json:"position" gorm:"not null"`
	ItemName   string          `json:"item_name" gorm:"type:text;not null"`
	Category   string          `json:"category" gorm:"type:text;not null;default:''"`
	UnitPrice  decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	TaxRate    decimal.Decimal `json:"tax_rate" gorm:"type:numeric(5,2);not null"`
	Quantity   int             `json:"quantity" gorm:"not null"`
	LineTotal  decimal.Decimal `json:"line_total" gorm:"type:numeric(12,2);not null"`
}

func (OrderLine) TableName() string { return "order_lines" }
