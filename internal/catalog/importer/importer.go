// Package importer reads menu source files into catalog import rows.
//
// Both formats share one layout: a header row naming item_name, category,
// price and gst, plus an optional image column, in any order.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/dinepos/internal/catalog/domain"
	"github.com/xuri/excelize/v2"
)

var ErrUnsupportedFormat = errors.New("unsupported_format")

const (
	colName     = "item_name"
	colCategory = "category"
	colPrice    = "price"
	colTax      = "gst"
	colImage    = "image"
)

var headerAliases = map[string]string{
	"item_name": colName,
	"name":      colName,
	"category":  colCategory,
	"price":     colPrice,
	"gst":       colTax,
	"tax_rate":  colTax,
	"image":     colImage,
}

// LoadFile picks the parser from the file extension.
func LoadFile(path string) (domain.ImportSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.ImportSource{}, err
	}
	defer f.Close()

	return Parse(filepath.Base(path), f)
}

// Parse reads an uploaded or opened source named name.
func Parse(name string, r io.Reader) (domain.ImportSource, error) {
	var (
		rows []domain.ImportRow
		err  error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		rows, err = ParseCSV(r)
	case ".xlsx":
		rows, err = ParseXLSX(r)
	default:
		return domain.ImportSource{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(name))
	}
	if err != nil {
		return domain.ImportSource{}, err
	}
	return domain.ImportSource{Name: name, Rows: rows}, nil
}

func ParseCSV(r io.Reader) ([]domain.ImportRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidImportRow, err)
	}
	return parseRecords(records)
}

// ParseXLSX reads the first sheet of the workbook.
func ParseXLSX(r io.Reader) ([]domain.ImportRow, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	records, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	return parseRecords(records)
}

func parseRecords(records [][]string) ([]domain.ImportRow, error) {
	if len(records) == 0 {
		return nil, nil
	}

	index, err := headerIndex(records[0])
	if err != nil {
		return nil, err
	}

	rows := make([]domain.ImportRow, 0, len(records)-1)
	for i, record := range records[1:] {
		line := i + 2
		if isBlank(record) {
			continue
		}
		row, err := parseRow(line, record, index)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, raw := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(raw, "\ufeff")))
		if canonical, ok := headerAliases[key]; ok {
			index[canonical] = i
		}
	}
	for _, required := range []string{colName, colCategory, colPrice} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("%w: header is missing %q", domain.ErrInvalidImportRow, required)
		}
	}
	return index, nil
}

func parseRow(line int, record []string, index map[string]int) (domain.ImportRow, error) {
	row := domain.ImportRow{
		Line:     line,
		Name:     cell(record, index, colName),
		Category: cell(record, index, colCategory),
	}
	if row.Name == "" {
		return row, rowErr(line, "item_name is empty")
	}

	price, err := decimal.NewFromString(cell(record, index, colPrice))
	if err != nil {
		return row, rowErr(line, "price is not a number")
	}
	row.Price = price

	if raw := cell(record, index, colTax); raw != "" {
		rate, err := decimal.NewFromString(strings.TrimSuffix(raw, "%"))
		if err != nil {
			return row, rowErr(line, "gst is not a number")
		}
		row.TaxRate = &rate
	}
	if image := cell(record, index, colImage); image != "" {
		row.Image = &image
	}
	return row, nil
}

func cell(record []string, index map[string]int, col string) string {
	i, ok := index[col]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func rowErr(line int, reason string) error {
	return fmt.Errorf("%w: row %d: %s", domain.ErrInvalidImportRow, line, reason)
}
