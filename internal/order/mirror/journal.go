package mirror

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	orderdomain "github.com/smallbiznis/dinepos/internal/order/domain"
)

type journalItem struct {
	ItemID   string      `json:"item_id"`
	Name     string      `json:"name"`
	Price    json.Number `json:"price"`
	Quantity int         `json:"quantity"`
	GST      json.Number `json:"gst"`
	Category string      `json:"category"`
}

type journalRecord struct {
	OrderID     string        `json:"order_id"`
	OrderType   string        `json:"order_type"`
	TableID     *string       `json:"table_id"`
	PaymentMode string        `json:"payment_mode"`
	Subtotal    json.Number   `json:"subtotal"`
	GST         json.Number   `json:"gst"`
	Discount    json.Number   `json:"discount"`
	Total       json.Number   `json:"total"`
	OrderDate   string        `json:"order_date"`
	Items       []journalItem `json:"items"`
}

// Journal appends one JSON object per order.
type Journal struct {
	path string
	loc  *time.Location
}

func NewJournal(path string, loc *time.Location) *Journal {
	return &Journal{path: path, loc: loc}
}

func (j *Journal) Name() string { return "journal" }

func (j *Journal) Append(order orderdomain.Order) error {
	payload, err := json.Marshal(newJournalRecord(order, j.loc))
	if err != nil {
		return err
	}
	payload = append(payload, '\n')

	f, err := openAppend(j.path)
	if err != nil {
		return err
	}
	if _, err := f.Write(payload); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func newJournalRecord(order orderdomain.Order, loc *time.Location) journalRecord {
	rec := journalRecord{
		OrderID:     snowflake.ID(order.ID).String(),
		OrderType:   string(order.OrderType),
		PaymentMode: string(order.PaymentMode),
		Subtotal:    money(order.Subtotal),
		GST:         money(order.TaxAmount),
		Discount:    money(order.DiscountAmount),
		Total:       money(order.TotalAmount),
		OrderDate:   formatDate(order.CreatedAt, loc),
		Items:       make([]journalItem, 0, len(order.Lines)),
	}
	if order.TableID != nil {
		tableID := snowflake.ID(*order.TableID).String()
		rec.TableID = &tableID
	}
	for _, line := range order.Lines {
		rec.Items = append(rec.Items, journalItem{
			ItemID:   snowflake.ID(line.MenuItemID).String(),
			Name:     line.ItemName,
			Price:    money(line.UnitPrice),
			Quantity: line.Quantity,
			GST:      money(line.TaxRate),
			Category: line.Category,
		})
	}
	return rec
}

func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

func openAppend(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}
