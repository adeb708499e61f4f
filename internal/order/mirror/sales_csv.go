package mirror

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	orderdomain "github.com/smallbiznis/dinepos/internal/order/domain"
)

var salesHeader = []string{"order_id", "order_date", "item_name", "quantity", "price", "line_total"}

// SalesCSV appends one row per sold line. The header is written only when
// the file is created.
type SalesCSV struct {
	path string
	loc  *time.Location
}

func NewSalesCSV(path string, loc *time.Location) *SalesCSV {
	return &SalesCSV{path: path, loc: loc}
}

func (s *SalesCSV) Name() string { return "sales_csv" }

func (s *SalesCSV) Append(order orderdomain.Order) error {
	writeHeader := false
	info, err := os.Stat(s.path)
	switch {
	case os.IsNotExist(err):
		writeHeader = true
	case err != nil:
		return err
	case info.Size() == 0:
		writeHeader = true
	}

	f, err := openAppend(s.path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(salesHeader); err != nil {
			f.Close()
			return err
		}
	}

	orderID := snowflake.ID(order.ID).String()
	date := formatDate(order.CreatedAt, s.loc)
	for _, line := range order.Lines {
		record := []string{
			orderID,
			date,
			line.ItemName,
			strconv.Itoa(line.Quantity),
			line.UnitPrice.StringFixed(2),
			line.LineTotal.StringFixed(2),
		}
		if err := w.Write(record); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
