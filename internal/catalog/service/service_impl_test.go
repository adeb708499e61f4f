package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	auditdomain "github.com/smallbiznis/dinepos/internal/audit/domain"
	"github.com/smallbiznis/dinepos/internal/cache"
	"github.com/smallbiznis/dinepos/internal/catalog/domain"
	"github.com/smallbiznis/dinepos/internal/catalog/repository"
	"github.com/smallbiznis/dinepos/internal/clock"
	"github.com/smallbiznis/dinepos/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type mockAudit struct {
	mock.Mock
}

func (m *mockAudit) Record(ctx context.Context, action string, targetType string, targetID *string, metadata map[string]any) error {
	args := m.Called(ctx, action, targetType, targetID, metadata)
	return args.Error(0)
}

func (m *mockAudit) List(ctx context.Context, req auditdomain.ListAuditLogRequest) (auditdomain.ListAuditLogResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(auditdomain.ListAuditLogResponse), args.Error(1)
}

func setupCatalogService(t *testing.T, audit auditdomain.Service) (domain.Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.MenuItem{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	cfg := config.Config{Files: config.FilesConfig{ImagesDir: "images"}}
	svc := New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Repo:     repository.Provide(),
		Cache:    cache.NewMemoryMenuCache(),
		Clock:    clock.NewFakeClock(time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)),
		Config:   cfg,
		AuditSvc: audit,
	})
	return svc, db
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAddDefaultsAndValidation(t *testing.T) {
	svc, _ := setupCatalogService(t, nil)
	ctx := context.Background()

	item, err := svc.Add(ctx, domain.CreateRequest{Name: " Paneer Tikka ", Category: "Starters", Price: dec("180")})
	require.NoError(t, err)
	assert.NotZero(t, item.ID)
	assert.Equal(t, "Paneer Tikka", item.Name)
	assert.True(t, item.TaxRate.Equal(dec("5")))
	assert.Nil(t, item.Image)

	_, err = svc.Add(ctx, domain.CreateRequest{Name: "", Price: dec("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Add(ctx, domain.CreateRequest{Name: "x", Price: dec("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	bad := dec("101")
	_, err = svc.Add(ctx, domain.CreateRequest{Name: "x", Price: dec("1"), TaxRate: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidTaxRate)
}

func TestListOrdersByCategoryThenName(t *testing.T) {
	svc, _ := setupCatalogService(t, nil)
	ctx := context.Background()

	for _, req := range []domain.CreateRequest{
		{Name: "Samosa", Category: "Starters", Price: dec("20")},
		{Name: "Lassi", Category: "Beverages", Price: dec("50")},
		{Name: "Chai", Category: "Beverages", Price: dec("15")},
	} {
		_, err := svc.Add(ctx, req)
		require.NoError(t, err)
	}

	items, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"Chai", "Lassi", "Samosa"}, []string{items[0].Name, items[1].Name, items[2].Name})
}

func TestListCacheIsInvalidatedOnWrite(t *testing.T) {
	svc, _ := setupCatalogService(t, nil)
	ctx := context.Background()

	items, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	added, err := svc.Add(ctx, domain.CreateRequest{Name: "Chai", Price: dec("15")})
	require.NoError(t, err)

	items, err = svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.NoError(t, svc.Delete(ctx, added.ID))
	items, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestUpdateReplacesAllFields(t *testing.T) {
	audit := &mockAudit{}
	audit.On("Record", mock.Anything, "menu_item.create", "menu_item", mock.Anything, mock.Anything).Return(nil)
	audit.On("Record", mock.Anything, "menu_item.update", "menu_item", mock.Anything, mock.MatchedBy(func(m map[string]any) bool {
		return m["previous_price"] == "15"
	})).Return(nil)

	svc, _ := setupCatalogService(t, audit)
	ctx := context.Background()

	image := "images/chai.jpg"
	added, err := svc.Add(ctx, domain.CreateRequest{Name: "Chai", Category: "Beverages", Price: dec("15"), Image: &image})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, domain.UpdateRequest{
		ID: added.ID, Name: "Masala Chai", Category: "Hot Drinks", Price: dec("20"), TaxRate: dec("12"),
	})
	require.NoError(t, err)
	assert.Equal(t, added.ID, updated.ID)

	got, err := svc.Get(ctx, added.ID)
	require.NoError(t, err)
	assert.Equal(t, "Masala Chai", got.Name)
	assert.Equal(t, "Hot Drinks", got.Category)
	assert.True(t, got.Price.Equal(dec("20")))
	assert.True(t, got.TaxRate.Equal(dec("12")))
	assert.Nil(t, got.Image)

	audit.AssertExpectations(t)
}

func TestUpdateAndDeleteUnknownItem(t *testing.T) {
	svc, _ := setupCatalogService(t, nil)
	ctx := context.Background()

	_, err := svc.Update(ctx, domain.UpdateRequest{ID: 999, Name: "x", Price: dec("1"), TaxRate: dec("5")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, 999), domain.ErrNotFound)

	_, err = svc.Get(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetManySkipsMissing(t *testing.T) {
	svc, _ := setupCatalogService(t, nil)
	ctx := context.Background()

	a, err := svc.Add(ctx, domain.CreateRequest{Name: "Idli", Price: dec("30")})
	require.NoError(t, err)

	found, err := svc.GetMany(ctx, []int64{a.ID, a.ID, 12345})
	require.NoError(t, err)
	assert.Len(t, found, 1)
	assert.Equal(t, "Idli", found[a.ID].Name)
}

func TestBulkImportOnlyRunsOnEmptyCatalog(t *testing.T) {
	svc, db := setupCatalogService(t, nil)
	ctx := context.Background()

	custom := "images/custom.png"
	rate := dec("12")
	src := domain.ImportSource{
		Name: "menu.csv",
		Rows: []domain.ImportRow{
			{Line: 2, Name: "Butter Naan", Category: "Breads", Price: dec("40")},
			{Line: 3, Name: "Dal Makhani", Category: "Mains", Price: dec("160"), TaxRate: &rate, Image: &custom},
		},
	}

	first, err := svc.BulkImport(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Inserted)
	assert.False(t, first.Skipped)

	second, err := svc.BulkImport(ctx, src)
	require.NoError(t, err)
	assert.True(t, second.Skipped)
	assert.Equal(t, domain.ReasonAlreadyPopulated, second.Reason)

	var count int64
	require.NoError(t, db.Model(&domain.MenuItem{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	items, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "images/butter-naan.jpg", *items[0].Image)
	assert.True(t, items[0].TaxRate.Equal(dec("5")))
	assert.Equal(t, "images/custom.png", *items[1].Image)
}

func TestBulkImportRollsBackOnBadRow(t *testing.T) {
	svc, db := setupCatalogService(t, nil)
	ctx := context.Background()

	_, err := svc.BulkImport(ctx, domain.ImportSource{
		Name: "menu.csv",
		Rows: []domain.ImportRow{
			{Line: 2, Name: "Roti", Price: dec("10")},
			{Line: 3, Name: "Broken", Price: dec("-5")},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidImportRow)
	assert.Contains(t, err.Error(), "row 3")

	var count int64
	require.NoError(t, db.Model(&domain.MenuItem{}).Count(&count).Error)
	assert.Zero(t, count)
}
