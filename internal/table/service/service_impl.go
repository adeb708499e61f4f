package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/dinepos/internal/audit/domain"
	"github.com/smallbiznis/dinepos/internal/clock"
	"github.com/smallbiznis/dinepos/internal/table/domain"
	"github.com/smallbiznis/dinepos/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	Clock    clock.Clock
	AuditSvc auditdomain.Service `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	clock    clock.Clock
	auditSvc auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("table.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		clock:    p.Clock,
		auditSvc: p.AuditSvc,
	}
}

func (s *Service) Add(ctx context.Context, req domain.CreateRequest) (*domain.Table, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	capacity := domain.DefaultCapacity
	if req.Capacity != nil {
		capacity = *req.Capacity
	}
	if capacity < 1 {
		return nil, domain.ErrInvalidCapacity
	}

	existing, err := s.repo.FindByName(ctx, s.db, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateName
	}

	now := s.clock.Now()
	table := &domain.Table{
		ID:        s.genID.Generate().Int64(),
		Name:      name,
		Capacity:  capacity,
		Status:    domain.StatusAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, s.db, table); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateName
		}
		return nil, err
	}

	s.emitAudit(ctx, "table.create", table, nil)
	return table, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.ErrInvalidID
	}
	table, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if table == nil {
		return domain.ErrNotFound
	}
	return s.delete(ctx, table)
}

// DeleteByName reports false without error when no table has that name.
func (s *Service) DeleteByName(ctx context.Context, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, nil
	}
	table, err := s.repo.FindByName(ctx, s.db, name)
	if err != nil {
		return false, err
	}
	if table == nil {
		return false, nil
	}
	if err := s.delete(ctx, table); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Service) delete(ctx context.Context, table *domain.Table) error {
	if table.Status == domain.StatusOccupied {
		return domain.ErrTableOccupied
	}
	affected, err := s.repo.Delete(ctx, s.db, table.ID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	s.emitAudit(ctx, "table.delete", table, nil)
	return nil
}

// SetStatus overwrites status and order unconditionally. Only the shape is
// checked: an occupied table must reference an order and no other status may.
func (s *Service) SetStatus(ctx context.Context, req domain.SetStatusRequest) (*domain.Table, error) {
	if req.ID <= 0 {
		return nil, domain.ErrInvalidID
	}
	if !req.Status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	hasOrder := req.CurrentOrderID != nil && *req.CurrentOrderID > 0
	if (req.Status == domain.StatusOccupied) != hasOrder {
		return nil, domain.ErrInvalidOccupancy
	}

	table, err := s.repo.FindByID(ctx, s.db, req.ID)
	if err != nil {
		return nil, err
	}
	if table == nil {
		return nil, domain.ErrNotFound
	}

	previous := table.Status
	table.Status = req.Status
	table.CurrentOrderID = nil
	if hasOrder {
		orderID := *req.CurrentOrderID
		table.CurrentOrderID = &orderID
	}
	table.UpdatedAt = s.clock.Now()

	affected, err := s.repo.UpdateStatus(ctx, s.db, table)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, domain.ErrNotFound
	}

	s.emitAudit(ctx, "table.status", table, map[string]any{"previous_status": string(previous)})
	return table, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Table, error) {
	items, err := s.repo.FindAll(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Table{}
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Table, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidID
	}
	table, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if table == nil {
		return nil, domain.ErrNotFound
	}
	return table, nil
}

func (s *Service) FindByName(ctx context.Context, name string) (*domain.Table, error) {
	table, err := s.repo.FindByName(ctx, s.db, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	if table == nil {
		return nil, domain.ErrNotFound
	}
	return table, nil
}

// Occupy seats an order at an available table.
func (s *Service) Occupy(ctx context.Context, id, orderID int64) (*domain.Table, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidID
	}
	if orderID <= 0 {
		return nil, domain.ErrInvalidOccupancy
	}

	table, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if table == nil {
		return nil, domain.ErrNotFound
	}
	if table.Status != domain.StatusAvailable {
		return nil, domain.ErrTableUnavailable
	}

	table.Status = domain.StatusOccupied
	table.CurrentOrderID = &orderID
	table.UpdatedAt = s.clock.Now()

	affected, err := s.repo.CompareAndSetStatus(ctx, s.db, table, domain.StatusAvailable)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, domain.ErrTableUnavailable
	}
	return table, nil
}

// Release frees a table, either straight to available or to cleaning first.
func (s *Service) Release(ctx context.Context, id int64, to domain.Status) (*domain.Table, error) {
	if to == "" {
		to = domain.StatusAvailable
	}
	if to != domain.StatusAvailable && to != domain.StatusCleaning {
		return nil, domain.ErrInvalidStatus
	}
	if id <= 0 {
		return nil, domain.ErrInvalidID
	}

	table, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if table == nil {
		return nil, domain.ErrNotFound
	}

	table.Status = to
	table.CurrentOrderID = nil
	table.UpdatedAt = s.clock.Now()
	if _, err := s.repo.UpdateStatus(ctx, s.db, table); err != nil {
		return nil, err
	}
	return table, nil
}

func (s *Service) emitAudit(ctx context.Context, action string, table *domain.Table, extra map[string]any) {
	if s.auditSvc == nil || table == nil {
		return
	}
	metadata := map[string]any{
		"name":     table.Name,
		"capacity": table.Capacity,
		"status":   string(table.Status),
	}
	for key, value := range extra {
		metadata[key] = value
	}
	targetID := snowflake.ID(table.ID).String()
	_ = s.auditSvc.Record(ctx, action, "table", &targetID, metadata)
}
