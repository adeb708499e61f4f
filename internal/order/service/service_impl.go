package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	catalogdomain "github.com/smallbiznis/dinepos/internal/catalog/domain"
	"github.com/smallbiznis/dinepos/internal/clock"
	"github.com/smallbiznis/dinepos/internal/config"
	obslogger "github.com/smallbiznis/dinepos/internal/observability/logger"
	"github.com/smallbiznis/dinepos/internal/observability/metrics"
	"github.com/smallbiznis/dinepos/internal/order/domain"
	"github.com/smallbiznis/dinepos/internal/order/mirror"
	"github.com/smallbiznis/dinepos/internal/pricing"
	tabledomain "github.com/smallbiznis/dinepos/internal/table/domain"
	"github.com/smallbiznis/dinepos/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    domain.Repository
	Catalog catalogdomain.Service
	Tables  tabledomain.Service
	Pricing *config.PricingConfigHolder
	Clock   clock.Clock
	Mirrors []mirror.Sink    `group:"order_mirrors"`
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	catalog catalogdomain.Service
	tables  tabledomain.Service
	pricing *config.PricingConfigHolder
	clock   clock.Clock
	mirrors []mirror.Sink
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("order.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		catalog: p.Catalog,
		tables:  p.Tables,
		pricing: p.Pricing,
		clock:   p.Clock,
		mirrors: p.Mirrors,
		metrics: p.Metrics,
	}
}

// PlaceOrder validates the request, stores the order with its lines in one
// transaction and then appends it to the mirrors. A mirror failure never
// undoes the order; it is reported through PlaceOrderResult.MirrorErr.
func (s *Service) PlaceOrder(ctx context.Context, req domain.PlaceOrderRequest) (*domain.PlaceOrderResult, error) {
	if err := validateShape(req); err != nil {
		return nil, err
	}

	items, err := s.resolveItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	if req.OrderType == domain.OrderTypeDineIn {
		table, err := s.tables.Get(ctx, *req.TableID)
		if err != nil {
			if errors.Is(err, tabledomain.ErrNotFound) {
				return nil, domain.ErrTableNotFound
			}
			return nil, err
		}
		if table.Status != tabledomain.StatusAvailable {
			return nil, domain.ErrTableUnavailable
		}
	}

	orderID := s.genID.Generate().Int64()
	lines := make([]domain.OrderLine, 0, len(req.Items))
	subtotal := decimal.Zero
	for i, reqLine := range req.Items {
		item := items[reqLine.MenuItemID]
		lineTotal := item.Price.Mul(decimal.NewFromInt(int64(reqLine.Quantity)))
		subtotal = subtotal.Add(lineTotal)
		lines = append(lines, domain.OrderLine{
			ID:         s.genID.Generate().Int64(),
			OrderID:    orderID,
			MenuItemID: item.ID,
			Position:   i + 1,
			ItemName:   item.Name,
			Category:   item.Category,
			UnitPrice:  item.Price,
			TaxRate:    item.TaxRate,
			Quantity:   reqLine.Quantity,
			LineTotal:  pricing.Round(lineTotal),
		})
	}

	if !pricing.Round(subtotal).Equal(pricing.Round(req.Subtotal)) {
		return nil, domain.ErrSubtotalMismatch
	}
	expected := pricing.Total(req.Subtotal, req.TaxAmount, req.DiscountAmount)
	if !pricing.Round(expected).Equal(pricing.Round(req.TotalAmount)) {
		return nil, domain.ErrTotalMismatch
	}

	order := &domain.Order{
		ID:             orderID,
		OrderType:      req.OrderType,
		PaymentMode:    req.PaymentMode,
		Subtotal:       pricing.Round(req.Subtotal),
		TaxAmount:      pricing.Round(req.TaxAmount),
		DiscountAmount: pricing.Round(req.DiscountAmount),
		TotalAmount:    pricing.Round(req.TotalAmount),
		CreatedAt:      s.clock.Now().UTC(),
		Lines:          lines,
	}
	if req.OrderType == domain.OrderTypeDineIn {
		tableID := *req.TableID
		order.TableID = &tableID
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.InsertOrder(ctx, tx, order); err != nil {
			return err
		}
		return s.repo.InsertLines(ctx, tx, lines)
	})
	if err != nil {
		return nil, fmt.Errorf("store order: %w", err)
	}

	log := obslogger.WithOrder(obslogger.WithContext(ctx, s.log), snowflake.ID(orderID).String())
	log.Info("order placed",
		zap.String("order_type", string(order.OrderType)),
		zap.String("payment_mode", string(order.PaymentMode)),
		zap.String("total", order.TotalAmount.StringFixed(2)),
		zap.Int("lines", len(lines)),
	)
	s.metrics.RecordOrderPlaced(ctx, string(order.OrderType), string(order.PaymentMode), order.TotalAmount.InexactFloat64())

	result := &domain.PlaceOrderResult{Order: order}
	if err := s.writeMirrors(ctx, log, *order); err != nil {
		result.MirrorErr = err
	}
	return result, nil
}

func (s *Service) writeMirrors(ctx context.Context, log *zap.Logger, order domain.Order) error {
	var errs []error
	for _, sink := range s.mirrors {
		if err := sink.Append(order); err != nil {
			log.Warn("order mirror append failed", zap.String("sink", sink.Name()), zap.Error(err))
			s.metrics.RecordMirrorFailure(ctx, sink.Name())
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", domain.ErrMirrorWrite, errors.Join(errs...))
}

func validateShape(req domain.PlaceOrderRequest) error {
	if len(req.Items) == 0 {
		return domain.ErrEmptyCart
	}
	for _, line := range req.Items {
		if line.Quantity <= 0 {
			return domain.ErrInvalidQuantity
		}
		if line.MenuItemID <= 0 {
			return domain.ErrUnknownMenuItem
		}
	}
	if !req.OrderType.Valid() {
		return domain.ErrInvalidOrderType
	}
	if !req.PaymentMode.Valid() {
		return domain.ErrInvalidPaymentMode
	}
	hasTable := req.TableID != nil && *req.TableID > 0
	if (req.OrderType == domain.OrderTypeDineIn) != hasTable {
		return domain.ErrInvalidTable
	}
	for _, amount := range []decimal.Decimal{req.Subtotal, req.TaxAmount, req.DiscountAmount, req.TotalAmount} {
		if amount.IsNegative() {
			return domain.ErrInvalidAmount
		}
	}
	return nil
}

func (s *Service) resolveItems(ctx context.Context, lines []domain.LineRequest) (map[int64]catalogdomain.MenuItem, error) {
	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.MenuItemID)
	}
	items, err := s.catalog.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, ok := items[id]; !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownMenuItem, snowflake.ID(id).String())
		}
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Order, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidID
	}
	order, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}
	lines, err := s.repo.FindLines(ctx, s.db, []int64{order.ID})
	if err != nil {
		return nil, err
	}
	order.Lines = lines
	if order.Lines == nil {
		order.Lines = []domain.OrderLine{}
	}
	return order, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	var cursor *domain.Cursor
	if strings.TrimSpace(req.PageToken) != "" {
		decoded, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return domain.ListResponse{}, domain.ErrInvalidPageToken
		}
		createdAt, err := time.Parse(time.RFC3339Nano, decoded.CreatedAt)
		if err != nil {
			return domain.ListResponse{}, domain.ErrInvalidPageToken
		}
		id, err := snowflake.ParseString(strings.TrimSpace(decoded.ID))
		if err != nil || id == 0 {
			return domain.ListResponse{}, domain.ErrInvalidPageToken
		}
		cursor = &domain.Cursor{ID: id.Int64(), CreatedAt: createdAt}
	}

	limit := req.Limit()
	orders, err := s.repo.List(ctx, s.db, domain.ListFilter{Cursor: cursor, Limit: limit})
	if err != nil {
		return domain.ListResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(orders, int32(limit), func(o *domain.Order) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        snowflake.ID(o.ID).String(),
			CreatedAt: o.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if len(orders) > limit {
		orders = orders[:limit]
	}

	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	lines, err := s.repo.FindLines(ctx, s.db, ids)
	if err != nil {
		return domain.ListResponse{}, err
	}
	byOrder := make(map[int64][]domain.OrderLine, len(orders))
	for _, line := range lines {
		byOrder[line.OrderID] = append(byOrder[line.OrderID], line)
	}

	resp := domain.ListResponse{Orders: make([]domain.Order, 0, len(orders))}
	for _, o := range orders {
		o.Lines = byOrder[o.ID]
		if o.Lines == nil {
			o.Lines = []domain.OrderLine{}
		}
		resp.Orders = append(resp.Orders, *o)
	}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

// Quote prices a cart with the live catalog and the configured tax policy.
func (s *Service) Quote(ctx context.Context, req domain.QuoteRequest) (*domain.QuoteResponse, error) {
	kind, err := pricing.ParseDiscountKind(req.DiscountKind)
	if err != nil {
		return nil, err
	}
	if req.DiscountValue.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}
	for _, line := range req.Items {
		if line.Quantity < 0 {
			return nil, domain.ErrInvalidQuantity
		}
	}

	items, err := s.resolveItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	cfg := s.pricing.Get()
	policy := pricing.FixedTax(decimal.NewFromFloat(cfg.TaxRate))
	if cfg.TaxPolicy == config.TaxPolicyPerItem {
		policy = pricing.PerItemTax()
	}

	cart := make([]pricing.Line, 0, len(req.Items))
	quoteLines := make([]domain.QuoteLine, 0, len(req.Items))
	for _, line := range req.Items {
		item := items[line.MenuItemID]
		cart = append(cart, pricing.Line{Price: item.Price, Quantity: line.Quantity, TaxRate: item.TaxRate})
		quoteLines = append(quoteLines, domain.QuoteLine{
			MenuItemID: item.ID,
			ItemName:   item.Name,
			UnitPrice:  item.Price,
			TaxRate:    item.TaxRate,
			Quantity:   line.Quantity,
			LineTotal:  pricing.Round(item.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))),
		})
	}

	breakdown, err := pricing.Quote(cart, policy, kind, req.DiscountValue)
	if err != nil {
		return nil, err
	}

	resp := &domain.QuoteResponse{
		Breakdown: breakdown,
		TaxPolicy: string(policy.Mode),
		Currency:  cfg.Currency,
		Lines:     quoteLines,
	}
	if policy.Mode == pricing.TaxModeFixed {
		resp.TaxRate = policy.Rate.String()
	}
	return resp, nil
}

// Close ends the dine-in session of an order by releasing its table, but only
// while the table still points at this order.
func (s *Service) Close(ctx context.Context, req domain.CloseRequest) (*domain.CloseResult, error) {
	order, err := s.Get(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	result := &domain.CloseResult{Order: order}
	if order.TableID == nil {
		return result, nil
	}

	table, err := s.tables.Get(ctx, *order.TableID)
	if err != nil {
		if errors.Is(err, tabledomain.ErrNotFound) {
			return result, nil
		}
		return nil, err
	}
	result.Table = table
	if table.Status != tabledomain.StatusOccupied || table.CurrentOrderID == nil || *table.CurrentOrderID != order.ID {
		return result, nil
	}

	released, err := s.tables.Release(ctx, table.ID, req.Release)
	if err != nil {
		return nil, err
	}
	result.Table = released
	result.Released = true
	return result, nil
}
