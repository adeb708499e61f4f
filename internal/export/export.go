// Package export renders bills and sales reports into downloadable files.
package export

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/dinepos/internal/config"
	"github.com/smallbiznis/dinepos/internal/observability/metrics"
	orderdomain "github.com/smallbiznis/dinepos/internal/order/domain"
	reportdomain "github.com/smallbiznis/dinepos/internal/report/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

// dateLayout matches the timestamps written by the order mirrors.
const dateLayout = "2006-01-02 15:04:05"

var ErrUnsupportedFormat = errors.New("unsupported_format")

func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatPDF:
		return FormatPDF, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// Document is a rendered file ready to be served as an attachment.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Table is a rectangular report: one header row and string cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// BillOptions carries the store settings printed on a PDF bill.
type BillOptions struct {
	StoreName string
	Currency  string
	TaxRate   decimal.Decimal
	Location  *time.Location
}

var Module = fx.Module("export",
	fx.Provide(New),
)

type Params struct {
	fx.In

	Config  config.Config
	Pricing *config.PricingConfigHolder
	Log     *zap.Logger
	Metrics *metrics.Metrics `optional:"true"`
}

type Exporter struct {
	storeName string
	loc       *time.Location
	pricing   *config.PricingConfigHolder
	log       *zap.Logger
	metrics   *metrics.Metrics
}

func New(p Params) *Exporter {
	return &Exporter{
		storeName: p.Config.Store.Name,
		loc:       p.Config.Location(),
		pricing:   p.Pricing,
		log:       p.Log.Named("export"),
		metrics:   p.Metrics,
	}
}

// Bill renders one order. csv, json and pdf are supported.
func (e *Exporter) Bill(ctx context.Context, order *orderdomain.Order, format Format) (*Document, error) {
	if order == nil {
		return nil, orderdomain.ErrOrderNotFound
	}

	var (
		body        []byte
		contentType string
		err         error
	)
	switch format {
	case FormatCSV:
		body, err = BillCSV(order)
		contentType = "text/csv"
	case FormatJSON:
		body, err = BillJSON(order, e.loc)
		contentType = "application/json"
	case FormatPDF:
		cfg := e.pricing.Get()
		body, err = BillPDF(order, BillOptions{
			StoreName: e.storeName,
			Currency:  cfg.Currency,
			TaxRate:   decimal.NewFromFloat(cfg.TaxRate),
			Location:  e.loc,
		})
		contentType = "application/pdf"
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, fmt.Errorf("render bill: %w", err)
	}

	e.metrics.RecordExport(ctx, "bill", string(format))
	return &Document{
		Filename:    fmt.Sprintf("bill_%d.%s", order.ID, format),
		ContentType: contentType,
		Body:        body,
	}, nil
}

// Report renders a table. pdf, xlsx and csv are supported.
func (e *Exporter) Report(ctx context.Context, title string, table Table, format Format) (*Document, error) {
	var (
		body        []byte
		contentType string
		err         error
	)
	switch format {
	case FormatPDF:
		body, err = ReportPDF(title, table)
		contentType = "application/pdf"
	case FormatXLSX:
		body, err = ReportXLSX(title, table)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatCSV:
		body, err = ReportCSV(table)
		contentType = "text/csv"
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}

	name := slug.Make(title)
	if name == "" {
		name = "report"
	}
	e.metrics.RecordExport(ctx, "report", string(format))
	e.log.Debug("report rendered", zap.String("title", title), zap.Int("rows", len(table.Rows)), zap.String("format", string(format)))
	return &Document{
		Filename:    name + "." + string(format),
		ContentType: contentType,
		Body:        body,
	}, nil
}

// SalesTable lays out sale lines with the columns of the sales report.
func SalesTable(sales []reportdomain.SaleLine, loc *time.Location) Table {
	if loc == nil {
		loc = time.Local
	}
	table := Table{
		Columns: []string{"order_id", "order_date", "order_type", "payment_mode", "item_name", "category", "price", "quantity", "line_total"},
		Rows:    make([][]string, 0, len(sales)),
	}
	for _, sale := range sales {
		table.Rows = append(table.Rows, []string{
			fmt.Sprintf("%d", sale.OrderID),
			sale.OrderDate.In(loc).Format(dateLayout),
			sale.OrderType,
			sale.PaymentMode,
			sale.ItemName,
			sale.Category,
			sale.Price.StringFixed(2),
			fmt.Sprintf("%d", sale.Quantity),
			sale.LineTotal.StringFixed(2),
		})
	}
	return table
}

func MostSoldTable(items []reportdomain.ItemCount) Table {
	table := Table{
		Columns: []string{"item_name", "quantity"},
		Rows:    make([][]string, 0, len(items)),
	}
	for _, item := range items {
		table.Rows = append(table.Rows, []string{item.ItemName, fmt.Sprintf("%d", item.Quantity)})
	}
	return table
}
