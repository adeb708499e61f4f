package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	orderdomain "github.com/smallbiznis/dinepos/internal/order/domain"
	"github.com/smallbiznis/dinepos/internal/pricing"
)

// BillCSV writes one row per line followed by a ",,Total,<total>" row.
func BillCSV(order *orderdomain.Order) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"item_name", "quantity", "price", "line_total"}); err != nil {
		return nil, err
	}
	for _, line := range order.Lines {
		record := []string{
			line.ItemName,
			fmt.Sprintf("%d", line.Quantity),
			line.UnitPrice.StringFixed(2),
			line.LineTotal.StringFixed(2),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	if err := w.Write([]string{"", "", "Total", order.TotalAmount.StringFixed(2)}); err != nil {
		return nil, err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type billJSON struct {
	OrderID     int64          `json:"order_id,string"`
	OrderType   string         `json:"order_type"`
	TableID     *int64         `json:"table_id,string"`
	PaymentMode string         `json:"payment_mode"`
	TotalAmount json.Number    `json:"total_amount"`
	OrderDate   string         `json:"order_date"`
	Items       []billJSONItem `json:"items"`
}

type billJSONItem struct {
	ItemName  string      `json:"item_name"`
	Quantity  int         `json:"quantity"`
	Price     json.Number `json:"price"`
	LineTotal json.Number `json:"line_total"`
}

func BillJSON(order *orderdomain.Order, loc *time.Location) ([]byte, error) {
	if loc == nil {
		loc = time.Local
	}
	out := billJSON{
		OrderID:     order.ID,
		OrderType:   string(order.OrderType),
		TableID:     order.TableID,
		PaymentMode: string(order.PaymentMode),
		TotalAmount: json.Number(order.TotalAmount.StringFixed(2)),
		OrderDate:   order.CreatedAt.In(loc).Format(dateLayout),
		Items:       make([]billJSONItem, 0, len(order.Lines)),
	}
	for _, line := range order.Lines {
		out.Items = append(out.Items, billJSONItem{
			ItemName:  line.ItemName,
			Quantity:  line.Quantity,
			Price:     json.Number(line.UnitPrice.StringFixed(2)),
			LineTotal: json.Number(line.LineTotal.StringFixed(2)),
		})
	}
	return json.MarshalIndent(out, "", "    ")
}

// BillPDF prints the bill with tax at the store's fixed rate, whatever rates
// were recorded on the lines.
func BillPDF(order *orderdomain.Order, opts BillOptions) ([]byte, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	title := opts.StoreName
	if title == "" {
		title = "Restaurant Bill"
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(14,
		text.NewCol(12, title, props.Text{
			Size:  14,
			Style: fontstyle.Bold,
			Align: align.Center,
		}),
	)

	table := "-"
	if order.TableID != nil {
		table = fmt.Sprintf("%d", *order.TableID)
	}
	m.AddRow(16,
		col.New(12).Add(
			text.New(fmt.Sprintf("Order ID: %d  |  Type: %s  |  Table: %s", order.ID, order.OrderType, table), props.Text{Size: 10}),
			text.New("Date: "+order.CreatedAt.In(loc).Format(dateLayout), props.Text{Size: 10, Top: 6}),
		),
	)

	m.AddRow(8,
		text.NewCol(6, "Item", props.Text{Style: fontstyle.Bold, Size: 10}),
		text.NewCol(2, "Price", props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right}),
		text.NewCol(2, "Qty", props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right}),
		text.NewCol(2, "Total", props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right}),
	)

	subtotal := decimal.Zero
	for _, line := range order.Lines {
		subtotal = subtotal.Add(line.LineTotal)
		m.AddRow(7,
			text.NewCol(6, line.ItemName, props.Text{Size: 10}),
			text.NewCol(2, line.UnitPrice.StringFixed(2), props.Text{Size: 10, Align: align.Right}),
			text.NewCol(2, fmt.Sprintf("%d", line.Quantity), props.Text{Size: 10, Align: align.Right}),
			text.NewCol(2, line.LineTotal.StringFixed(2), props.Text{Size: 10, Align: align.Right}),
		)
	}

	tax := pricing.Round(pricing.Tax(subtotal, opts.TaxRate))
	total := pricing.Round(pricing.Total(subtotal, tax, order.DiscountAmount))

	totals := []struct {
		label string
		value decimal.Decimal
		bold  bool
	}{
		{"Subtotal:", subtotal, false},
		{fmt.Sprintf("GST (%s%%):", opts.TaxRate.String()), tax, false},
		{"Discount:", order.DiscountAmount, false},
		{"Total:", total, true},
	}
	for _, row := range totals {
		style := fontstyle.Normal
		if row.bold {
			style = fontstyle.Bold
		}
		value := row.value.StringFixed(2)
		if opts.Currency != "" {
			value += " " + opts.Currency
		}
		m.AddRow(7,
			col.New(8),
			text.NewCol(2, row.label, props.Text{Size: 10, Style: style, Align: align.Right}),
			text.NewCol(2, value, props.Text{Size: 10, Style: style, Align: align.Right}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}
