package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	auditdomain "github.com/smallbiznis/dinepos/internal/audit/domain"
	"github.com/smallbiznis/dinepos/internal/cache"
	"github.com/smallbiznis/dinepos/internal/catalog/domain"
	"github.com/smallbiznis/dinepos/internal/clock"
	"github.com/smallbiznis/dinepos/internal/config"
	"github.com/smallbiznis/dinepos/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	Cache    cache.MenuCache
	Clock    clock.Clock
	Config   config.Config
	AuditSvc auditdomain.Service `optional:"true"`
	Metrics  *metrics.Metrics    `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	cache     cache.MenuCache
	clock     clock.Clock
	imagesDir string
	auditSvc  auditdomain.Service
	metrics   *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("catalog.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		cache:     p.Cache,
		clock:     p.Clock,
		imagesDir: p.Config.Files.ImagesDir,
		auditSvc:  p.AuditSvc,
		metrics:   p.Metrics,
	}
}

func (s *Service) Add(ctx context.Context, req domain.CreateRequest) (*domain.MenuItem, error) {
	rate := domain.DefaultTaxRate
	if req.TaxRate != nil {
		rate = *req.TaxRate
	}

	item, err := s.buildItem(req.Name, req.Category, req.Price, rate, req.Image)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, s.db, item); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	s.emitAudit(ctx, "menu_item.create", item, nil)
	return item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.MenuItem, error) {
	if req.ID <= 0 {
		return nil, domain.ErrInvalidID
	}

	existing, err := s.repo.FindByID(ctx, s.db, req.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.ErrNotFound
	}

	item, err := s.buildItem(req.Name, req.Category, req.Price, req.TaxRate, req.Image)
	if err != nil {
		return nil, err
	}
	item.ID = existing.ID
	item.CreatedAt = existing.CreatedAt

	affected, err := s.repo.Update(ctx, s.db, item)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, domain.ErrNotFound
	}
	s.cache.Invalidate(ctx)
	s.emitAudit(ctx, "menu_item.update", item, map[string]any{
		"previous_price": existing.Price.String(),
	})
	return item, nil
}

// Delete removes the item outright. Sold lines keep their own copy of the
// item's name and price, so history is unaffected.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.ErrInvalidID
	}

	existing, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrNotFound
	}

	affected, err := s.repo.Delete(ctx, s.db, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	s.cache.Invalidate(ctx)
	s.emitAudit(ctx, "menu_item.delete", existing, nil)
	return nil
}

func (s *Service) List(ctx context.Context) ([]domain.MenuItem, error) {
	if items, ok := s.cache.Get(ctx); ok {
		return items, nil
	}

	items, err := s.repo.FindAll(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.MenuItem{}
	}
	s.cache.Set(ctx, items)
	return items, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.MenuItem, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidID
	}
	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

// GetMany resolves ids in one query. Missing ids are simply absent from the map.
func (s *Service) GetMany(ctx context.Context, ids []int64) (map[int64]domain.MenuItem, error) {
	items, err := s.repo.FindByIDs(ctx, s.db, uniqueIDs(ids))
	if err != nil {
		return nil, err
	}
	out := make(map[int64]domain.MenuItem, len(items))
	for _, item := range items {
		out[item.ID] = item
	}
	return out, nil
}

// BulkImport seeds an empty catalog. A catalog with any item is left untouched.
func (s *Service) BulkImport(ctx context.Context, src domain.ImportSource) (*domain.ImportResult, error) {
	result := &domain.ImportResult{Source: src.Name}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		count, err := s.repo.Count(ctx, tx)
		if err != nil {
			return err
		}
		if count > 0 {
			result.Skipped = true
			result.Reason = domain.ReasonAlreadyPopulated
			return nil
		}

		for _, row := range src.Rows {
			item, err := s.importItem(row)
			if err != nil {
				return err
			}
			if err := s.repo.Create(ctx, tx, item); err != nil {
				return err
			}
			result.Inserted++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Skipped {
		s.log.Info("menu import skipped",
			zap.String("source", src.Name),
			zap.String("reason", result.Reason),
		)
		return result, nil
	}

	s.cache.Invalidate(ctx)
	s.metrics.RecordMenuImport(ctx, sourceKind(src.Name), result.Inserted)
	s.log.Info("menu imported", zap.String("source", src.Name), zap.Int("inserted", result.Inserted))
	if s.auditSvc != nil {
		_ = s.auditSvc.Record(ctx, "menu_item.import", "menu", nil, map[string]any{
			"source":   src.Name,
			"inserted": result.Inserted,
		})
	}
	return result, nil
}

func (s *Service) importItem(row domain.ImportRow) (*domain.MenuItem, error) {
	rate := domain.DefaultTaxRate
	if row.TaxRate != nil {
		rate = *row.TaxRate
	}
	image := row.Image
	if image == nil {
		fallback := s.defaultImage(row.Name)
		image = &fallback
	}
	item, err := s.buildItem(row.Name, row.Category, row.Price, rate, image)
	if err != nil {
		return nil, fmt.Errorf("%w: row %d: %v", domain.ErrInvalidImportRow, row.Line, err)
	}
	return item, nil
}

func (s *Service) buildItem(name, category string, price, rate decimal.Decimal, image *string) (*domain.MenuItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	if price.IsNegative() {
		return nil, domain.ErrInvalidPrice
	}
	if rate.IsNegative() || rate.GreaterThan(hundred) {
		return nil, domain.ErrInvalidTaxRate
	}

	now := s.clock.Now()
	return &domain.MenuItem{
		ID:        s.genID.Generate().Int64(),
		Name:      name,
		Category:  strings.TrimSpace(category),
		Price:     price.Round(2),
		TaxRate:   rate.Round(2),
		Image:     normalizePointer(image),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *Service) defaultImage(name string) string {
	return filepath.ToSlash(filepath.Join(s.imagesDir, slug.Make(name)+".jpg"))
}

func (s *Service) emitAudit(ctx context.Context, action string, item *domain.MenuItem, extra map[string]any) {
	if s.auditSvc == nil || item == nil {
		return
	}
	metadata := map[string]any{
		"name":     item.Name,
		"category": item.Category,
		"price":    item.Price.String(),
		"tax_rate": item.TaxRate.String(),
	}
	for key, value := range extra {
		if key == "" {
			continue
		}
		metadata[key] = value
	}

	targetID := snowflake.ID(item.ID).String()
	_ = s.auditSvc.Record(ctx, action, "menu_item", &targetID, metadata)
}

func sourceKind(name string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if ext == "" {
		return "api"
	}
	return ext
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func normalizePointer(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
