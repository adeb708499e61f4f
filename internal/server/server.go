package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/dinepos/internal/audit"
	auditdomain "github.com/smallbiznis/dinepos/internal/audit/domain"
	"github.com/smallbiznis/dinepos/internal/cache"
	"github.com/smallbiznis/dinepos/internal/catalog"
	catalogdomain "github.com/smallbiznis/dinepos/internal/catalog/domain"
	"github.com/smallbiznis/dinepos/internal/config"
	"github.com/smallbiznis/dinepos/internal/export"
	"github.com/smallbiznis/dinepos/internal/observability"
	obsmiddleware "github.com/smallbiznis/dinepos/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/dinepos/internal/observability/metrics"
	obstracing "github.com/smallbiznis/dinepos/internal/observability/tracing"
	"github.com/smallbiznis/dinepos/internal/order"
	orderdomain "github.com/smallbiznis/dinepos/internal/order/domain"
	"github.com/smallbiznis/dinepos/internal/report"
	reportdomain "github.com/smallbiznis/dinepos/internal/report/domain"
	"github.com/smallbiznis/dinepos/internal/table"
	tabledomain "github.com/smallbiznis/dinepos/internal/table/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	cache.Module,
	audit.Module,
	catalog.Module,
	table.Module,
	order.Module,
	report.Module,
	export.Module,
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware(obstracing.MiddlewareConfig{
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(httpMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	addr := strings.TrimSpace(cfg.HTTPAddr)
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	pricing    *config.PricingConfigHolder
	log        *zap.Logger
	catalogSvc catalogdomain.Service
	tableSvc   tabledomain.Service
	orderSvc   orderdomain.Service
	reportSvc  reportdomain.Service
	auditSvc   auditdomain.Service
	exporter   *export.Exporter
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	Pricing    *config.PricingConfigHolder
	Log        *zap.Logger
	CatalogSvc catalogdomain.Service
	TableSvc   tabledomain.Service
	OrderSvc   orderdomain.Service
	ReportSvc  reportdomain.Service
	AuditSvc   auditdomain.Service
	Exporter   *export.Exporter
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		pricing:    p.Pricing,
		log:        p.Log.Named("http.server"),
		catalogSvc: p.CatalogSvc,
		tableSvc:   p.TableSvc,
		orderSvc:   p.OrderSvc,
		reportSvc:  p.ReportSvc,
		auditSvc:   p.AuditSvc,
		exporter:   p.Exporter,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")
	api.Use(OperatorActor())

	// -------- Menu --------
	api.GET("/menu", s.ListMenuItems)
	api.POST("/menu", s.CreateMenuItem)
	api.POST("/menu/import", s.ImportMenu)
	api.GET("/menu/:id", s.GetMenuItemByID)
	api.PUT("/menu/:id", s.UpdateMenuItem)
	api.DELETE("/menu/:id", s.DeleteMenuItem)

	// -------- Tables --------
	api.GET("/tables", s.ListTables)
	api.POST("/tables", s.CreateTable)
	api.GET("/tables/by-name/:name", s.GetTableByName)
	api.DELETE("/tables/by-name/:name", s.DeleteTableByName)
	api.GET("/tables/:id", s.GetTableByID)
	api.DELETE("/tables/:id", s.DeleteTable)
	api.PUT("/tables/:id/status", s.SetTableStatus)

	// -------- Orders --------
	api.GET("/orders", s.ListOrders)
	api.POST("/orders", s.PlaceOrder)
	api.POST("/orders/quote", s.QuoteOrder)
	api.GET("/orders/:id", s.GetOrderByID)
	api.POST("/orders/:id/close", s.CloseOrder)
	api.GET("/orders/:id/bill", s.ExportBill)

	// -------- Reports --------
	api.GET("/reports/sales", s.GetSalesReport)
	api.GET("/reports/most-sold", s.GetMostSold)
	api.GET("/reports/sales/export", s.ExportSalesReport)

	api.GET("/pricing", s.GetPricing)
	api.GET("/audit-logs", s.ListAuditLogs)
}
