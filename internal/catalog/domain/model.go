package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultTaxRate applies when a menu item is created without an explicit rate.
var DefaultTaxRate = decimal.NewFromInt(5)

type MenuItem struct {
	ID        int64           `json:"id,string" gorm:"primaryKey;autoIncrement:false"`
	Name      string          `json:"name" gorm:"type:text;not null"`
	Category  string          `json:"category" gorm:"type:text;not null;default:'';index:ix_menu_items_category_name,priority:1"`
	Price     decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	TaxRate   decimal.Decimal `json:"tax_rate" gorm:"type:numeric(5,2);not null;default:5"`
	Image     *string         `json:"image,omitempty" gorm:"type:text"`
	CreatedAt time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time       `json:"updated_at" gorm:"not null"`
}

func (MenuItem) TableName() string { return "menu_items" }
