package service

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/dinepos/internal/clock"
	"github.com/smallbiznis/dinepos/internal/config"
	"github.com/smallbiznis/dinepos/internal/report/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Clock  clock.Clock
	Config config.Config
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	loc   *time.Location
}

func NewService(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("report.service"),
		clock: p.Clock,
		loc:   p.Config.Location(),
	}
}

type saleRow struct {
	OrderID     int64           `gorm:"column:order_id"`
	OrderDate   time.Time       `gorm:"column:order_date"`
	OrderType   string          `gorm:"column:order_type"`
	PaymentMode string          `gorm:"column:payment_mode"`
	ItemName    string          `gorm:"column:item_name"`
	Category    string          `gorm:"column:category"`
	Quantity    int             `gorm:"column:quantity"`
	Price       decimal.Decimal `gorm:"column:price"`
	LineTotal   decimal.Decimal `gorm:"column:line_total"`
}

// SalesInRange returns every sold line of orders placed between the first
// instant of the start day and the last instant of the end day, newest first.
func (s *Service) SalesInRange(ctx context.Context, req domain.RangeRequest) ([]domain.SaleLine, error) {
	from, until, err := s.bounds(req)
	if err != nil {
		return nil, err
	}

	var (
		where []string
		args  []any
	)
	if from != nil {
		where = append(where, "o.created_at >= ?")
		args = append(args, *from)
	}
	if until != nil {
		where = append(where, "o.created_at < ?")
		args = append(args, *until)
	}

	query := `SELECT o.id AS order_id, o.created_at AS order_date, o.order_type, o.payment_mode,
			l.item_name, l.category, l.quantity, l.unit_price AS price, l.line_total
		 FROM order_lines l
		 JOIN orders o ON o.id = l.order_id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY o.created_at DESC, o.id DESC, l.position ASC"

	var rows []saleRow
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	sales := make([]domain.SaleLine, 0, len(rows))
	for _, row := range rows {
		sales = append(sales, domain.SaleLine{
			OrderID:     row.OrderID,
			OrderDate:   row.OrderDate.In(s.loc),
			OrderType:   row.OrderType,
			PaymentMode: row.PaymentMode,
			ItemName:    row.ItemName,
			Category:    row.Category,
			Quantity:    row.Quantity,
			Price:       row.Price,
			LineTotal:   row.LineTotal,
		})
	}
	return sales, nil
}

func (s *Service) MostSold(ctx context.Context, req domain.RangeRequest, topN int) ([]domain.ItemCount, error) {
	if topN < 0 {
		return nil, domain.ErrInvalidTopN
	}
	sales, err := s.SalesInRange(ctx, req)
	if err != nil {
		return nil, err
	}
	return domain.MostSold(sales, topN), nil
}

func (s *Service) Summary(ctx context.Context, req domain.RangeRequest) (domain.Summary, error) {
	sales, err := s.SalesInRange(ctx, req)
	if err != nil {
		return domain.Summary{}, err
	}
	return domain.Summarize(sales), nil
}

// bounds converts calendar dates into a half-open UTC interval. The end bound
// is midnight of the day after End, so 23:59:59 is still inside the range.
func (s *Service) bounds(req domain.RangeRequest) (*time.Time, *time.Time, error) {
	start, end := req.Start, req.End
	if req.Period != "" && req.Period != domain.PeriodCustom {
		var err error
		start, end, err = domain.PeriodRange(req.Period, s.clock.Now().In(s.loc))
		if err != nil {
			return nil, nil, err
		}
	}

	var from, until *time.Time
	if start != nil {
		t := startOfDay(*start, s.loc).UTC()
		from = &t
	}
	if end != nil {
		t := startOfDay(*end, s.loc).AddDate(0, 0, 1).UTC()
		until = &t
	}
	if from != nil && until != nil && !from.Before(*until) {
		return nil, nil, domain.ErrInvalidRange
	}
	return from, until, nil
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
