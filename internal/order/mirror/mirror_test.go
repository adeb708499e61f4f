package mirror

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	orderdomain "github.com/smallbiznis/dinepos/internal/order/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOrder(id int64) orderdomain.Order {
	tableID := int64(7)
	return orderdomain.Order{
		ID:             id,
		OrderType:      orderdomain.OrderTypeDineIn,
		TableID:        &tableID,
		PaymentMode:    orderdomain.PaymentCash,
		Subtotal:       decimal.RequireFromString("250"),
		TaxAmount:      decimal.RequireFromString("12.5"),
		DiscountAmount: decimal.RequireFromString("25"),
		TotalAmount:    decimal.RequireFromString("237.5"),
		CreatedAt:      time.Date(2026, 6, 1, 13, 45, 0, 0, time.UTC),
		Lines: []orderdomain.OrderLine{
			{MenuItemID: 1, ItemName: "Biryani", Category: "Mains", UnitPrice: decimal.RequireFromString("100"), TaxRate: decimal.RequireFromString("5"), Quantity: 2, LineTotal: decimal.RequireFromString("200")},
			{MenuItemID: 2, ItemName: "Raita, plain", Category: "Sides", UnitPrice: decimal.RequireFromString("50"), TaxRate: decimal.RequireFromString("5"), Quantity: 1, LineTotal: decimal.RequireFromString("50")},
		},
	}
}

func TestJournalAppendsOneLinePerOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "sample_bills.json")
	j := NewJournal(path, time.UTC)

	require.NoError(t, j.Append(sampleOrder(1)))
	require.NoError(t, j.Append(sampleOrder(2)))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var records []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		records = append(records, rec)
	}
	require.Len(t, records, 2)
	assert.Equal(t, "1", records[0]["order_id"])
	assert.Equal(t, "7", records[0]["table_id"])
	assert.Equal(t, 237.5, records[0]["total"])
	assert.Equal(t, 12.5, records[0]["gst"])
	assert.Equal(t, "2026-06-01 13:45:00", records[0]["order_date"])
	items := records[0]["items"].([]any)
	assert.Len(t, items, 2)
	assert.Equal(t, "Biryani", items[0].(map[string]any)["name"])
}

func TestJournalTakeawayHasNullTable(t *testing.T) {
	order := sampleOrder(3)
	order.OrderType = orderdomain.OrderTypeTakeaway
	order.TableID = nil

	rec := newJournalRecord(order, time.UTC)
	payload, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"table_id":null`)
}

func TestSalesCSVWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales_report.csv")
	s := NewSalesCSV(path, time.UTC)

	require.NoError(t, s.Append(sampleOrder(1)))
	require.NoError(t, s.Append(sampleOrder(2)))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, salesHeader, rows[0])
	assert.Equal(t, []string{"1", "2026-06-01 13:45:00", "Biryani", "2", "100.00", "200.00"}, rows[1])
	assert.Equal(t, "Raita, plain", rows[2][2])
	assert.Equal(t, "2", rows[3][0])
}

func TestSinksFailOnUnwritablePath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	j := NewJournal(filepath.Join(blocker, "journal.json"), time.UTC)
	assert.Error(t, j.Append(sampleOrder(1)))

	s := NewSalesCSV(filepath.Join(blocker, "sales.csv"), time.UTC)
	assert.Error(t, s.Append(sampleOrder(1)))
}
