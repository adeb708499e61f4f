package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ParsePeriod accepts the preset names case-insensitively. Empty means custom.
func ParsePeriod(raw string) (Period, error) {
	switch Period(strings.ToLower(strings.TrimSpace(raw))) {
	case "", PeriodCustom:
		return PeriodCustom, nil
	case PeriodDaily:
		return PeriodDaily, nil
	case PeriodWeekly:
		return PeriodWeekly, nil
	case PeriodMonthly:
		return PeriodMonthly, nil
	default:
		return "", ErrInvalidPeriod
	}
}

// PeriodRange resolves a preset to its first and last day relative to now.
// Weekly covers the seven days before today plus today. Custom yields nil
// bounds so the caller's own dates apply.
func PeriodRange(period Period, now time.Time) (*time.Time, *time.Time, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var start time.Time
	switch period {
	case PeriodCustom, "":
		return nil, nil, nil
	case PeriodDaily:
		start = today
	case PeriodWeekly:
		start = today.AddDate(0, 0, -7)
	case PeriodMonthly:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	default:
		return nil, nil, ErrInvalidPeriod
	}
	return &start, &today, nil
}

// MostSold groups lines by item name and returns the topN largest quantities.
// Equal quantities are ordered by name.
func MostSold(sales []SaleLine, topN int) []ItemCount {
	if topN <= 0 {
		topN = DefaultTopN
	}

	totals := make(map[string]int64)
	for _, sale := range sales {
		totals[sale.ItemName] += int64(sale.Quantity)
	}

	out := make([]ItemCount, 0, len(totals))
	for name, qty := range totals {
		out = append(out, ItemCount{ItemName: name, Quantity: qty})
	}
	// Equal quantities keep name order, as a name-sorted group-by followed by a
	// stable quantity sort would leave them.
	slices.SortStableFunc(out, func(a, b ItemCount) int {
		switch {
		case a.Quantity > b.Quantity:
			return -1
		case a.Quantity < b.Quantity:
			return 1
		default:
			return strings.Compare(a.ItemName, b.ItemName)
		}
	})

	if len(out) > topN {
		out = out[:topN]
	}
	return out
}

// Summarize totals revenue from line totals and counts distinct orders.
func Summarize(sales []SaleLine) Summary {
	summary := Summary{Revenue: decimal.Zero}
	orders := make(map[int64]struct{})
	for _, sale := range sales {
		summary.Revenue = summary.Revenue.Add(sale.LineTotal)
		summary.ItemsSold += int64(sale.Quantity)
		orders[sale.OrderID] = struct{}{}
	}
	summary.OrderCount = len(orders)
	return summary
}
