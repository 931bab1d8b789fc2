package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tallyworks/tally/internal/billing"
	billingdomain "github.com/tallyworks/tally/internal/billing/domain"
	"github.com/tallyworks/tally/internal/client"
	clientdomain "github.com/tallyworks/tally/internal/client/domain"
	"github.com/tallyworks/tally/internal/config"
	"github.com/tallyworks/tally/internal/invoice"
	invoicedomain "github.com/tallyworks/tally/internal/invoice/domain"
	obslogger "github.com/tallyworks/tally/internal/observability/logger"
	obsmetrics "github.com/tallyworks/tally/internal/observability/metrics"
	"github.com/tallyworks/tally/internal/payable"
	payabledomain "github.com/tallyworks/tally/internal/payable/domain"
	"github.com/tallyworks/tally/internal/subscription"
	subscriptiondomain "github.com/tallyworks/tally/internal/subscription/domain"
	"github.com/tallyworks/tally/internal/timeentry"
	timeentrydomain "github.com/tallyworks/tally/internal/timeentry/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	client.Module,
	timeentry.Module,
	subscription.Module,
	payable.Module,
	invoice.Module,
	billing.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics, reg *prometheus.Registry) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(log))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	return r
}

func registerGin(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics, reg *prometheus.Registry) *gin.Engine {
	return NewEngine(log, httpMetrics, reg)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
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
	engine          *gin.Engine
	cfg             config.Config
	clientSvc       clientdomain.Service
	timeEntrySvc    timeentrydomain.Service
	subscriptionSvc subscriptiondomain.Service
	payableSvc      payabledomain.Service
	invoiceSvc      invoicedomain.Service
	billingSvc      billingdomain.Service
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	ClientSvc       clientdomain.Service
	TimeEntrySvc    timeentrydomain.Service
	SubscriptionSvc subscriptiondomain.Service
	PayableSvc      payabledomain.Service
	InvoiceSvc      invoicedomain.Service
	BillingSvc      billingdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		clientSvc:       p.ClientSvc,
		timeEntrySvc:    p.TimeEntrySvc,
		subscriptionSvc: p.SubscriptionSvc,
		payableSvc:      p.PayableSvc,
		invoiceSvc:      p.InvoiceSvc,
		billingSvc:      p.BillingSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Clients --------
	api.GET("/clients", s.ListClients)
	api.POST("/clients", s.CreateClient)
	api.GET("/clients/:id", s.GetClientByID)
	api.PATCH("/clients/:id", s.UpdateClient)
	api.POST("/clients/:id/period", s.OpenClientPeriod)
	api.POST("/clients/:id/archive", s.ArchiveClientPeriod)

	// -------- Time entries --------
	api.GET("/clients/:id/time-entries", s.ListOpenTimeEntries)
	api.POST("/time-entries", s.CreateTimeEntry)
	api.GET("/time-entries/:id", s.GetTimeEntryByID)
	api.PATCH("/time-entries/:id", s.UpdateTimeEntry)
	api.DELETE("/time-entries/:id", s.DeleteTimeEntry)

	// -------- Subscriptions --------
	api.GET("/clients/:id/subscriptions", s.ListOpenSubscriptions)
	api.POST("/subscriptions", s.CreateSubscription)
	api.GET("/subscriptions/:id", s.GetSubscriptionByID)
	api.PATCH("/subscriptions/:id", s.UpdateSubscription)
	api.DELETE("/subscriptions/:id", s.DeleteSubscription)

	// -------- Payables --------
	api.GET("/clients/:id/payables", s.ListOpenPayables)
	api.POST("/payables", s.CreatePayable)
	api.GET("/payables/:id", s.GetPayableByID)
	api.PATCH("/payables/:id", s.UpdatePayable)
	api.DELETE("/payables/:id", s.DeletePayable)

	// -------- Invoices --------
	api.GET("/invoices", s.ListInvoices)
	api.GET("/invoices/:id", s.GetInvoiceByID)
	api.GET("/invoices/:id/time-entries", s.ListInvoiceTimeEntries)
	api.GET("/invoices/:id/subscriptions", s.ListInvoiceSubscriptions)
	api.GET("/invoices/:id/payables", s.ListInvoicePayables)
	api.POST("/invoices/:id/paid", s.SetInvoicePaid)
	api.POST("/invoices/:id/correct-rate", s.CorrectInvoiceRate)
}
