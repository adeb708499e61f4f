package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	auditdomain "github.com/smallbiznis/dinepos/internal/audit/domain"
	"github.com/smallbiznis/dinepos/internal/config"
	"github.com/smallbiznis/dinepos/internal/export"
	orderdomain "github.com/smallbiznis/dinepos/internal/order/domain"
	reportdomain "github.com/smallbiznis/dinepos/internal/report/domain"
	tabledomain "github.com/smallbiznis/dinepos/internal/table/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeOrderService struct {
	orderdomain.Service

	placeResult *orderdomain.PlaceOrderResult
	placeErr    error
	order       *orderdomain.Order
	getErr      error
	lastClose   orderdomain.CloseRequest
}

func (f *fakeOrderService) PlaceOrder(ctx context.Context, req orderdomain.PlaceOrderRequest) (*orderdomain.PlaceOrderResult, error) {
	return f.placeResult, f.placeErr
}

func (f *fakeOrderService) Get(ctx context.Context, id int64) (*orderdomain.Order, error) {
	return f.order, f.getErr
}

func (f *fakeOrderService) Close(ctx context.Context, req orderdomain.CloseRequest) (*orderdomain.CloseResult, error) {
	f.lastClose = req
	return &orderdomain.CloseResult{Order: f.order}, nil
}

type fakeTableService struct {
	tabledomain.Service

	occupyErr   error
	occupyCalls int
}

func (f *fakeTableService) Occupy(ctx context.Context, id, orderID int64) (*tabledomain.Table, error) {
	f.occupyCalls++
	if f.occupyErr != nil {
		return nil, f.occupyErr
	}
	return &tabledomain.Table{ID: id, Status: tabledomain.StatusOccupied, CurrentOrderID: &orderID}, nil
}

type fakeReportService struct {
	reportdomain.Service

	lastReq  reportdomain.RangeRequest
	lastTopN int
	sales    []reportdomain.SaleLine
}

func (f *fakeReportService) SalesInRange(ctx context.Context, req reportdomain.RangeRequest) ([]reportdomain.SaleLine, error) {
	f.lastReq = req
	return f.sales, nil
}

func (f *fakeReportService) MostSold(ctx context.Context, req reportdomain.RangeRequest, topN int) ([]reportdomain.ItemCount, error) {
	f.lastReq = req
	f.lastTopN = topN
	return reportdomain.MostSold(f.sales, topN), nil
}

type fakeAuditService struct {
	auditdomain.Service

	lastList auditdomain.ListAuditLogRequest
}

func (f *fakeAuditService) List(ctx context.Context, req auditdomain.ListAuditLogRequest) (auditdomain.ListAuditLogResponse, error) {
	f.lastList = req
	if req.ActorType != "" && !req.ActorType.Valid() {
		return auditdomain.ListAuditLogResponse{}, auditdomain.ErrInvalidActorType
	}
	return auditdomain.ListAuditLogResponse{AuditLogs: []auditdomain.AuditLog{{Action: "order.close", ActorType: "operator"}}}, nil
}

func dineInOrder() *orderdomain.Order {
	tableID := int64(7)
	return &orderdomain.Order{
		ID:          1234,
		OrderType:   orderdomain.OrderTypeDineIn,
		TableID:     &tableID,
		PaymentMode: orderdomain.PaymentCash,
		Subtotal:    decimal.RequireFromString("10"),
		TotalAmount: decimal.RequireFromString("10.5"),
		TaxAmount:   decimal.RequireFromString("0.5"),
		Lines: []orderdomain.OrderLine{
			{ItemName: "Burger", Quantity: 2, UnitPrice: decimal.RequireFromString("5"), LineTotal: decimal.RequireFromString("10")},
		},
	}
}

func newTestRouter(srv *Server, method, path string, handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.Handle(method, path, handler)
	return router
}

func doJSON(router *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestPlaceOrderSeatsDineInTable(t *testing.T) {
	orders := &fakeOrderService{placeResult: &orderdomain.PlaceOrderResult{Order: dineInOrder()}}
	tables := &fakeTableService{}
	srv := &Server{log: zap.NewNop(), orderSvc: orders, tableSvc: tables}
	router := newTestRouter(srv, http.MethodPost, "/api/orders", srv.PlaceOrder)

	resp := doJSON(router, http.MethodPost, "/api/orders", `{"order_type":"Dine-In","payment_mode":"Cash","table_id":"7","items":[{"menu_item_id":"1","quantity":2}]}`)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var body struct {
		Data struct {
			ID      string `json:"order_id"`
			TableID string `json:"table_id"`
		} `json:"data"`
		Warnings []string `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "1234", body.Data.ID)
	assert.Equal(t, "7", body.Data.TableID)
	assert.Empty(t, body.Warnings)
	assert.Equal(t, 1, tables.occupyCalls)
}

func TestPlaceOrderReportsPostCommitWarnings(t *testing.T) {
	orders := &fakeOrderService{placeResult: &orderdomain.PlaceOrderResult{
		Order:     dineInOrder(),
		MirrorErr: fmt.Errorf("%w: %w", orderdomain.ErrMirrorWrite, errors.New("disk full")),
	}}
	tables := &fakeTableService{occupyErr: tabledomain.ErrTableOccupied}
	srv := &Server{log: zap.NewNop(), orderSvc: orders, tableSvc: tables}
	router := newTestRouter(srv, http.MethodPost, "/api/orders", srv.PlaceOrder)

	resp := doJSON(router, http.MethodPost, "/api/orders", `{"order_type":"Dine-In","payment_mode":"Cash","table_id":"7","items":[{"menu_item_id":"1","quantity":2}]}`)
	require.Equal(t, http.StatusCreated, resp.Code)

	var body struct {
		Warnings []string `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Len(t, body.Warnings, 2)
	assert.Contains(t, body.Warnings[0], "mirror_write_failed")
	assert.Contains(t, body.Warnings[1], "table_occupy_failed")
}

func TestPlaceOrderErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "empty cart", err: orderdomain.ErrEmptyCart, status: http.StatusBadRequest, code: "empty_cart"},
		{name: "wrapped mismatch", err: fmt.Errorf("%w: want 10.50", orderdomain.ErrTotalMismatch), status: http.StatusBadRequest, code: "total_mismatch"},
		{name: "unknown item", err: fmt.Errorf("%w: 99", orderdomain.ErrUnknownMenuItem), status: http.StatusConflict},
		{name: "table missing", err: orderdomain.ErrTableNotFound, status: http.StatusNotFound},
		{name: "table busy", err: orderdomain.ErrTableUnavailable, status: http.StatusConflict},
		{name: "storage", err: errors.New("database is locked"), status: http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := &Server{log: zap.NewNop(), orderSvc: &fakeOrderService{placeErr: tc.err}, tableSvc: &fakeTableService{}}
			router := newTestRouter(srv, http.MethodPost, "/api/orders", srv.PlaceOrder)

			resp := doJSON(router, http.MethodPost, "/api/orders", `{"order_type":"Takeaway","payment_mode":"Cash","items":[]}`)
			require.Equal(t, tc.status, resp.Code)

			var body errorResponse
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
			if tc.code != "" {
				require.Len(t, body.Error.Errors, 1)
				assert.Equal(t, tc.code, body.Error.Errors[0].Code)
			}
		})
	}
}

func TestPlaceOrderRejectsMalformedBody(t *testing.T) {
	srv := &Server{log: zap.NewNop(), orderSvc: &fakeOrderService{}, tableSvc: &fakeTableService{}}
	router := newTestRouter(srv, http.MethodPost, "/api/orders", srv.PlaceOrder)

	resp := doJSON(router, http.MethodPost, "/api/orders", `{"items":`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestGetOrderByIDRejectsBadID(t *testing.T) {
	srv := &Server{orderSvc: &fakeOrderService{getErr: orderdomain.ErrOrderNotFound}}
	router := newTestRouter(srv, http.MethodGet, "/api/orders/:id", srv.GetOrderByID)

	resp := doJSON(router, http.MethodGet, "/api/orders/abc", "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = doJSON(router, http.MethodGet, "/api/orders/42", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestCloseOrderAcceptsEmptyBody(t *testing.T) {
	orders := &fakeOrderService{order: dineInOrder()}
	srv := &Server{orderSvc: orders}
	router := newTestRouter(srv, http.MethodPost, "/api/orders/:id/close", srv.CloseOrder)

	resp := doJSON(router, http.MethodPost, "/api/orders/1234/close", "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, int64(1234), orders.lastClose.OrderID)
	assert.Equal(t, tabledomain.Status(""), orders.lastClose.Release)

	resp = doJSON(router, http.MethodPost, "/api/orders/1234/close", `{"release_to":"Cleaning"}`)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, tabledomain.StatusCleaning, orders.lastClose.Release)
}

func TestExportBill(t *testing.T) {
	pricing := config.NewStaticPricingConfigHolder(config.DefaultPricingConfig())
	exporter := export.New(export.Params{Config: config.Config{}, Pricing: pricing, Log: zap.NewNop()})
	srv := &Server{orderSvc: &fakeOrderService{order: dineInOrder()}, exporter: exporter}
	router := newTestRouter(srv, http.MethodGet, "/api/orders/:id/bill", srv.ExportBill)

	resp := doJSON(router, http.MethodGet, "/api/orders/1234/bill?format=csv", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "text/csv", resp.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="bill_1234.csv"`, resp.Header().Get("Content-Disposition"))
	assert.Contains(t, resp.Body.String(), ",,Total,10.50")

	resp = doJSON(router, http.MethodGet, "/api/orders/1234/bill?format=docx", "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestGetMostSoldParsesQuery(t *testing.T) {
	reports := &fakeReportService{sales: []reportdomain.SaleLine{
		{ItemName: "Cola", Quantity: 1},
		{ItemName: "Burger", Quantity: 4},
	}}
	srv := &Server{reportSvc: reports}
	router := newTestRouter(srv, http.MethodGet, "/api/reports/most-sold", srv.GetMostSold)

	resp := doJSON(router, http.MethodGet, "/api/reports/most-sold?start=2026-05-01&end=2026-05-31&top_n=1", "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body struct {
		Data []reportdomain.ItemCount `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "Burger", body.Data[0].ItemName)
	assert.Equal(t, 1, reports.lastTopN)
	assert.Equal(t, reportdomain.PeriodCustom, reports.lastReq.Period)
	require.NotNil(t, reports.lastReq.Start)
	assert.Equal(t, 1, reports.lastReq.Start.Day())

	resp = doJSON(router, http.MethodGet, "/api/reports/most-sold?period=yearly", "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = doJSON(router, http.MethodGet, "/api/reports/most-sold?start=05/01/2026", "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestExportSalesReportRejectsJSON(t *testing.T) {
	pricing := config.NewStaticPricingConfigHolder(config.DefaultPricingConfig())
	exporter := export.New(export.Params{Config: config.Config{}, Pricing: pricing, Log: zap.NewNop()})
	srv := &Server{reportSvc: &fakeReportService{}, exporter: exporter}
	router := newTestRouter(srv, http.MethodGet, "/api/reports/sales/export", srv.ExportSalesReport)

	resp := doJSON(router, http.MethodGet, "/api/reports/sales/export?format=json", "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = doJSON(router, http.MethodGet, "/api/reports/sales/export?format=csv&period=daily", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, `attachment; filename="sales-report.csv"`, resp.Header().Get("Content-Disposition"))
}

func TestGetPricingHidesRateForPerItem(t *testing.T) {
	srv := &Server{pricing: config.NewStaticPricingConfigHolder(config.PricingConfig{
		TaxPolicy: config.TaxPolicyPerItem,
		Currency:  "DA",
	})}
	router := newTestRouter(srv, http.MethodGet, "/api/pricing", srv.GetPricing)

	resp := doJSON(router, http.MethodGet, "/api/pricing", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"data":{"tax_policy":"per_item","currency":"DA"}}`, resp.Body.String())
}

func TestListAuditLogsPassesFilters(t *testing.T) {
	audit := &fakeAuditService{}
	srv := &Server{auditSvc: audit}
	router := newTestRouter(srv, http.MethodGet, "/api/audit-logs", srv.ListAuditLogs)

	resp := doJSON(router, http.MethodGet, "/api/audit-logs?actor_type=Operator&target_type=order&target_id=42&page_size=10", "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, auditdomain.ActorTypeOperator, audit.lastList.ActorType)
	assert.Equal(t, "order", audit.lastList.TargetType)
	assert.Equal(t, "42", audit.lastList.TargetID)
	assert.Equal(t, 10, audit.lastList.PageSize)

	resp = doJSON(router, http.MethodGet, "/api/audit-logs?actor_type=waiter", "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = doJSON(router, http.MethodGet, "/api/audit-logs?start_at=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
