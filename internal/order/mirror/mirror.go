// Package mirror appends committed orders to flat files kept for
// spreadsheet users: a JSON-lines journal and a per-line sales CSV.
// Each append opens, writes and closes its file.
package mirror

import (
	"time"

	"github.com/smallbiznis/dinepos/internal/config"
	orderdomain "github.com/smallbiznis/dinepos/internal/order/domain"
	"go.uber.org/fx"
)

// DateLayout is how order timestamps are written to both mirrors.
const DateLayout = "2006-01-02 15:04:05"

// Sink receives every committed order.
type Sink interface {
	Name() string
	Append(order orderdomain.Order) error
}

var Module = fx.Module("order.mirror",
	fx.Provide(
		fx.Annotate(NewSinks, fx.ResultTags(`group:"order_mirrors,flatten"`)),
	),
)

func NewSinks(cfg config.Config) []Sink {
	loc := cfg.Location()
	return []Sink{
		NewJournal(cfg.Files.JournalPath, loc),
		NewSalesCSV(cfg.Files.SalesMirrorPath, loc),
	}
}

func formatDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateLayout)
}
