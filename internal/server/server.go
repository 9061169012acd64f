package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/invorahq/invora/internal/auth"
	authdomain "github.com/invorahq/invora/internal/auth/domain"
	"github.com/invorahq/invora/internal/auth/session"
	"github.com/invorahq/invora/internal/client"
	clientdomain "github.com/invorahq/invora/internal/client/domain"
	"github.com/invorahq/invora/internal/clock"
	"github.com/invorahq/invora/internal/company"
	companydomain "github.com/invorahq/invora/internal/company/domain"
	"github.com/invorahq/invora/internal/config"
	"github.com/invorahq/invora/internal/credits"
	creditsdomain "github.com/invorahq/invora/internal/credits/domain"
	"github.com/invorahq/invora/internal/invoice"
	invoicedomain "github.com/invorahq/invora/internal/invoice/domain"
	"github.com/invorahq/invora/internal/observability"
	obsmiddleware "github.com/invorahq/invora/internal/observability/logger"
	obsmetrics "github.com/invorahq/invora/internal/observability/metrics"
	obstracing "github.com/invorahq/invora/internal/observability/tracing"
	"github.com/invorahq/invora/internal/providers"
	"github.com/invorahq/invora/internal/publicinvoice"
	publicinvoicedomain "github.com/invorahq/invora/internal/publicinvoice/domain"
	"github.com/invorahq/invora/internal/ratelimit"
	"github.com/invorahq/invora/internal/scheduler"
	"github.com/invorahq/invora/internal/signup"
	signupdomain "github.com/invorahq/invora/internal/signup/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	config.Module,
	clock.Module,
	fx.Provide(registerGin),
	auth.Module,
	signup.Module,
	company.Module,
	client.Module,
	credits.Module,
	invoice.Module,
	publicinvoice.Module,
	providers.Module,
	ratelimit.Module,
	scheduler.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug: obsCfg.Debug(),
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
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
	engine           *gin.Engine
	cfg              config.Config
	db               *gorm.DB
	genID            *snowflake.Node
	authsvc          authdomain.Service
	sessions         *session.Manager
	signupsvc        signupdomain.Service
	companySvc       companydomain.Service
	companyRepo      companydomain.Repository
	clientSvc        clientdomain.Service
	creditsSvc       creditsdomain.Service
	invoiceSvc       invoicedomain.Service
	publicInvoiceSvc publicinvoicedomain.Service
	plans            *config.PlanCatalogHolder
	publicLimiter    *ratelimit.Limiter
	obsMetrics       *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin              *gin.Engine
	Cfg              config.Config
	DB               *gorm.DB
	GenID            *snowflake.Node
	Authsvc          authdomain.Service
	Sessions         *session.Manager
	Signupsvc        signupdomain.Service
	CompanySvc       companydomain.Service
	CompanyRepo      companydomain.Repository
	ClientSvc        clientdomain.Service
	CreditsSvc       creditsdomain.Service
	InvoiceSvc       invoicedomain.Service
	PublicInvoiceSvc publicinvoicedomain.Service
	Plans            *config.PlanCatalogHolder
	PublicLimiter    *ratelimit.Limiter
	ObsMetrics       *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:           p.Gin,
		cfg:              p.Cfg,
		db:               p.DB,
		genID:            p.GenID,
		authsvc:          p.Authsvc,
		sessions:         p.Sessions,
		signupsvc:        p.Signupsvc,
		companySvc:       p.CompanySvc,
		companyRepo:      p.CompanyRepo,
		clientSvc:        p.ClientSvc,
		creditsSvc:       p.CreditsSvc,
		invoiceSvc:       p.InvoiceSvc,
		publicInvoiceSvc: p.PublicInvoiceSvc,
		plans:            p.Plans,
		publicLimiter:    p.PublicLimiter,
		obsMetrics:       p.ObsMetrics,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()
	svc.registerPublicRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/register", s.Register)
	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
	auth.GET("/me", s.AuthRequired(), s.Me)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.AuthRequired())

	api.GET("/company", s.GetCompany)
	api.PATCH("/company", s.UpdateCompany)

	clients := api.Group("/clients")
	{
		clients.GET("", s.ListClients)
		clients.POST("", s.CreateClient)
		clients.GET("/:id", s.GetClient)
		clients.PATCH("/:id", s.UpdateClient)
		clients.DELETE("/:id", s.DeleteClient)
	}

	invoices := api.Group("/invoices")
	{
		invoices.GET("", s.ListInvoices)
		invoices.POST("", s.CreateInvoice)
		invoices.GET("/:id", s.GetInvoice)
		invoices.PATCH("/:id", s.UpdateInvoice)
		invoices.DELETE("/:id", s.DeleteInvoice)
		invoices.POST("/:id/send", s.SendInvoice)
		invoices.POST("/:id/pay", s.MarkInvoicePaid)
		invoices.POST("/:id/cancel", s.CancelInvoice)
		invoices.POST("/:id/public-link", s.EnsurePublicLink)
		invoices.DELETE("/:id/public-link", s.DisablePublicLink)
	}

	api.GET("/credits", s.GetCredits)
	api.GET("/plans", s.ListPlans)
	api.POST("/plans/upgrade", s.UpgradePlan)
}

func (s *Server) registerPublicRoutes() {
	public := s.engine.Group("/public", s.PublicRateLimit())

	public.GET("/invoices/:token", s.GetPublicInvoice)
	public.GET("/invoices/:token/pdf", s.GetPublicInvoicePDF)
}
