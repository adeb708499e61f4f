package export

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/dinepos/internal/config"
	orderdomain "github.com/smallbiznis/dinepos/internal/order/domain"
	reportdomain "github.com/smallbiznis/dinepos/internal/report/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func sampleOrder() *orderdomain.Order {
	tableID := int64(7)
	return &orderdomain.Order{
		ID:             1234,
		OrderType:      orderdomain.OrderTypeDineIn,
		TableID:        &tableID,
		PaymentMode:    orderdomain.PaymentCard,
		Subtotal:       decimal.RequireFromString("12.50"),
		TaxAmount:      decimal.RequireFromString("0.63"),
		DiscountAmount: decimal.Zero,
		TotalAmount:    decimal.RequireFromString("13.13"),
		CreatedAt:      time.Date(2026, 6, 1, 18, 30, 5, 0, time.UTC),
		Lines: []orderdomain.OrderLine{
			{ItemName: "Burger", Quantity: 2, UnitPrice: decimal.RequireFromString("5"), LineTotal: decimal.RequireFromString("10")},
			{ItemName: "Fries, large", Quantity: 1, UnitPrice: decimal.RequireFromString("2.5"), LineTotal: decimal.RequireFromString("2.5")},
		},
	}
}

func TestBillCSV(t *testing.T) {
	out, err := BillCSV(sampleOrder())
	require.NoError(t, err)

	want := "item_name,quantity,price,line_total\n" +
		"Burger,2,5.00,10.00\n" +
		"\"Fries, large\",1,2.50,2.50\n" +
		",,Total,13.13\n"
	assert.Equal(t, want, string(out))
}

func TestBillJSON(t *testing.T) {
	out, err := BillJSON(sampleOrder(), time.UTC)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "1234", decoded["order_id"])
	assert.Equal(t, "7", decoded["table_id"])
	assert.Equal(t, "Dine-In", decoded["order_type"])
	assert.Equal(t, 13.13, decoded["total_amount"])
	assert.Equal(t, "2026-06-01 18:30:05", decoded["order_date"])

	items, ok := decoded["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 2)
	first := items[0].(map[string]any)
	assert.Equal(t, "Burger", first["item_name"])
	assert.Equal(t, 10.0, first["line_total"])

	assert.True(t, strings.Contains(string(out), "\n    \"order_id\""), "expected four-space indent")
}

func TestBillJSONTakeawayHasNullTable(t *testing.T) {
	order := sampleOrder()
	order.TableID = nil
	out, err := BillJSON(order, time.UTC)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"table_id": null`)
}

func TestBillPDF(t *testing.T) {
	out, err := BillPDF(sampleOrder(), BillOptions{StoreName: "Test Bistro", Currency: "DA", TaxRate: decimal.NewFromInt(5)})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestReportPDFManyRows(t *testing.T) {
	table := Table{Columns: []string{"item_name", "quantity"}}
	for i := 0; i < 200; i++ {
		table.Rows = append(table.Rows, []string{"Tea", "1"})
	}
	out, err := ReportPDF("Sales", table)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestFormatReportLine(t *testing.T) {
	line := formatReportLine([]string{"item_name", "quantity", "extra"}, []string{"Tea", "3"})
	assert.Equal(t, "item_name: Tea | quantity: 3 | extra: ", line)
}

func TestReportXLSX(t *testing.T) {
	table := Table{
		Columns: []string{"item_name", "quantity"},
		Rows:    [][]string{{"Tea", "3"}, {"Cake", "1"}},
	}
	out, err := ReportXLSX("Most sold: May", table)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Most sold_ May")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"item_name", "quantity"}, {"Tea", "3"}, {"Cake", "1"}}, rows)
}

func TestReportCSV(t *testing.T) {
	out, err := ReportCSV(Table{Columns: []string{"a", "b"}, Rows: [][]string{{"1", "2"}}})
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(out))
}

func TestSalesTable(t *testing.T) {
	loc := time.FixedZone("store", 3600)
	table := SalesTable([]reportdomain.SaleLine{{
		OrderID:     9,
		OrderDate:   time.Date(2026, 6, 1, 22, 0, 0, 0, time.UTC),
		OrderType:   "Takeaway",
		PaymentMode: "Cash",
		ItemName:    "Soup",
		Category:    "Starters",
		Quantity:    2,
		Price:       decimal.RequireFromString("3"),
		LineTotal:   decimal.RequireFromString("6"),
	}}, loc)

	require.Len(t, table.Rows, 1)
	assert.Equal(t, []string{"9", "2026-06-01 23:00:00", "Takeaway", "Cash", "Soup", "Starters", "3.00", "2", "6.00"}, table.Rows[0])
	assert.Len(t, table.Columns, len(table.Rows[0]))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)

	_, err = ParseFormat("docx")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExporterDispatch(t *testing.T) {
	e := New(Params{
		Config:  config.Config{Store: config.StoreConfig{Name: "Test Bistro", Timezone: "UTC"}},
		Pricing: config.NewStaticPricingConfigHolder(config.DefaultPricingConfig()),
		Log:     zap.NewNop(),
	})
	ctx := context.Background()

	doc, err := e.Bill(ctx, sampleOrder(), FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "bill_1234.csv", doc.Filename)
	assert.Equal(t, "text/csv", doc.ContentType)

	doc, err = e.Bill(ctx, sampleOrder(), FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", doc.ContentType)

	_, err = e.Bill(ctx, sampleOrder(), FormatXLSX)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	doc, err = e.Report(ctx, "Sales Report", MostSoldTable([]reportdomain.ItemCount{{ItemName: "Tea", Quantity: 2}}), FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "sales-report.csv", doc.Filename)
	assert.Equal(t, "item_name,quantity\nTea,2\n", string(doc.Body))

	_, err = e.Report(ctx, "Sales", Table{}, FormatJSON)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
