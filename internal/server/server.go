package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rutujak-bora/crm/internal/apierror"
	"github.com/rutujak-bora/crm/internal/auth"
	authdomain "github.com/rutujak-bora/crm/internal/auth/domain"
	"github.com/rutujak-bora/crm/internal/authorization"
	"github.com/rutujak-bora/crm/internal/bid"
	biddomain "github.com/rutujak-bora/crm/internal/bid/domain"
	"github.com/rutujak-bora/crm/internal/bidorder"
	bidorderdomain "github.com/rutujak-bora/crm/internal/bidorder/domain"
	"github.com/rutujak-bora/crm/internal/bulkimport"
	"github.com/rutujak-bora/crm/internal/config"
	"github.com/rutujak-bora/crm/internal/customer"
	customerdomain "github.com/rutujak-bora/crm/internal/customer/domain"
	"github.com/rutujak-bora/crm/internal/dashboard"
	"github.com/rutujak-bora/crm/internal/lead"
	leaddomain "github.com/rutujak-bora/crm/internal/lead/domain"
	"github.com/rutujak-bora/crm/internal/margin"
	margindomain "github.com/rutujak-bora/crm/internal/margin/domain"
	"github.com/rutujak-bora/crm/internal/observability"
	obsmiddleware "github.com/rutujak-bora/crm/internal/observability/logger"
	obsmetrics "github.com/rutujak-bora/crm/internal/observability/metrics"
	obstracing "github.com/rutujak-bora/crm/internal/observability/tracing"
	"github.com/rutujak-bora/crm/internal/proformainvoice"
	pidomain "github.com/rutujak-bora/crm/internal/proformainvoice/domain"
	"github.com/rutujak-bora/crm/internal/providers"
	"github.com/rutujak-bora/crm/internal/purchaseorder"
	podomain "github.com/rutujak-bora/crm/internal/purchaseorder/domain"
	"github.com/rutujak-bora/crm/internal/ratelimit"
	"github.com/rutujak-bora/crm/internal/reminder"
	"github.com/rutujak-bora/crm/internal/storage"
	"github.com/rutujak-bora/crm/pkg/attachment"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	ratelimit.Module,
	auth.Module,
	storage.Module,
	providers.Module,
	customer.Module,
	lead.Module,
	proformainvoice.Module,
	purchaseorder.Module,
	margin.Module,
	dashboard.Module,
	bid.Module,
	bidorder.Module,
	bulkimport.Module,
	reminder.Module,
	fx.Provide(NewServer),
	fx.Invoke(run),
)

// NewEngine builds the gin engine with the shared middleware chain.
func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics, corsOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())
	r.Use(CORS(corsOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(cfg config.Config, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	return NewEngine(obsCfg, httpMetrics, cfg.CORSOrigins)
}

func run(lc fx.Lifecycle, cfg config.Config, s *Server, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           s.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
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
	engine      *gin.Engine
	cfg         config.Config
	log         *zap.Logger
	authsvc     authdomain.Service
	authzSvc    authorization.Service
	customerSvc customerdomain.Service
	leadSvc     leaddomain.Service
	invoiceSvc  pidomain.Service
	orderSvc    podomain.Service
	marginSvc   margindomain.Service
	dashboard   *dashboard.Service
	bidSvc      biddomain.Service
	bidOrderSvc bidorderdomain.Service
	importer    *bulkimport.Importer
	stores      *storage.Stores
	reminder    *reminder.Job
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	Log         *zap.Logger
	Authsvc     authdomain.Service
	AuthzSvc    authorization.Service `optional:"true"`
	CustomerSvc customerdomain.Service
	LeadSvc     leaddomain.Service
	InvoiceSvc  pidomain.Service
	OrderSvc    podomain.Service
	MarginSvc   margindomain.Service
	Dashboard   *dashboard.Service
	BidSvc      biddomain.Service
	BidOrderSvc bidorderdomain.Service
	Importer    *bulkimport.Importer
	Stores      *storage.Stores
	Reminder    *reminder.Job `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		log:         p.Log.Named("http.server"),
		authsvc:     p.Authsvc,
		authzSvc:    p.AuthzSvc,
		customerSvc: p.CustomerSvc,
		leadSvc:     p.LeadSvc,
		invoiceSvc:  p.InvoiceSvc,
		orderSvc:    p.OrderSvc,
		marginSvc:   p.MarginSvc,
		dashboard:   p.Dashboard,
		bidSvc:      p.BidSvc,
		bidOrderSvc: p.BidOrderSvc,
		importer:    p.Importer,
		stores:      p.Stores,
		reminder:    p.Reminder,
	}

	s.registerCRMRoutes()
	s.registerGemBidRoutes()
	s.registerFallback()

	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerCRMRoutes() {
	api := s.engine.Group("/api", inNamespace(authdomain.NamespaceCRM))

	api.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "CRM API Running"})
	})
	api.POST("/auth/login", s.Login(authdomain.NamespaceCRM))
	api.GET("/auth/verify", s.Verify(authdomain.NamespaceCRM))

	// Links to stored documents open in a new tab and carry no bearer token.
	api.GET("/uploads/:filename", s.ServeUpload(s.stores.CRM))

	crm := api.Group("", s.TokenRequired(authdomain.NamespaceCRM))

	// -------- Dashboard --------
	crm.GET("/dashboard/kpi", s.authorize(authorization.ObjectDashboard, authorization.ActionView), s.GetDashboardKPI)

	// -------- Customers --------
	crm.GET("/customers", s.authorize(authorization.ObjectCustomer, authorization.ActionView), s.ListCustomers)
	crm.POST("/customers", s.authorize(authorization.ObjectCustomer, authorization.ActionCreate), s.CreateCustomer)
	crm.POST("/customers/bulk-upload", s.authorize(authorization.ObjectCustomer, authorization.ActionCreate), s.BulkUpload(bulkimport.KindCustomers))
	crm.GET("/customers/template/download", s.authorize(authorization.ObjectCustomer, authorization.ActionView), s.DownloadTemplate(bulkimport.KindCustomers))
	crm.GET("/customers/:id", s.authorize(authorization.ObjectCustomer, authorization.ActionView), s.GetCustomerByID)
	crm.PUT("/customers/:id", s.authorize(authorization.ObjectCustomer, authorization.ActionUpdate), s.UpdateCustomer)
	crm.DELETE("/customers/:id", s.authorize(authorization.ObjectCustomer, authorization.ActionDelete), s.DeleteCustomer)

	// -------- Leads --------
	crm.GET("/leads", s.authorize(authorization.ObjectLead, authorization.ActionView), s.ListLeads)
	crm.POST("/leads", s.authorize(authorization.ObjectLead, authorization.ActionCreate), s.CreateLead)
	crm.POST("/leads/bulk-upload", s.authorize(authorization.ObjectLead, authorization.ActionCreate), s.BulkUpload(bulkimport.KindLeads))
	crm.GET("/leads/template/download", s.authorize(authorization.ObjectLead, authorization.ActionView), s.DownloadTemplate(bulkimport.KindLeads))
	crm.GET("/leads/:id", s.authorize(authorization.ObjectLead, authorization.ActionView), s.GetLeadByID)
	crm.PUT("/leads/:id", s.authorize(authorization.ObjectLead, authorization.ActionUpdate), s.UpdateLead)
	crm.DELETE("/leads/:id", s.authorize(authorization.ObjectLead, authorization.ActionDelete), s.DeleteLead)
	crm.POST("/leads/:id/convert", s.authorize(authorization.ObjectProformaInvoice, authorization.ActionCreate), s.ConvertLead)
	for _, slot := range attachment.Slots {
		crm.POST("/leads/:id/upload-"+slot.Path(), s.authorize(authorization.ObjectLead, authorization.ActionUpdate), s.UploadLeadDocument(slot))
		crm.DELETE("/leads/:id/"+slot.Path(), s.authorize(authorization.ObjectLead, authorization.ActionUpdate), s.DeleteLeadDocument(slot))
	}

	// -------- Proforma Invoices --------
	crm.GET("/proforma-invoices", s.authorize(authorization.ObjectProformaInvoice, authorization.ActionView), s.ListProformaInvoices)
	crm.GET("/proforma-invoices/:id", s.authorize(authorization.ObjectProformaInvoice, authorization.ActionView), s.GetProformaInvoiceByID)
	crm.GET("/proforma-invoices/:id/pdf", s.authorize(authorization.ObjectProformaInvoice, authorization.ActionView), s.DownloadProformaInvoicePDF)
	crm.PUT("/proforma-invoices/:id", s.authorize(authorization.ObjectProformaInvoice, authorization.ActionUpdate), s.UpdateProformaInvoice)
	crm.DELETE("/proforma-invoices/:id", s.authorize(authorization.ObjectProformaInvoice, authorization.ActionDelete), s.DeleteProformaInvoice)

	// -------- Purchase Orders --------
	crm.GET("/purchase-orders", s.authorize(authorization.ObjectPurchaseOrder, authorization.ActionView), s.ListPurchaseOrders)
	crm.POST("/purchase-orders", s.authorize(authorization.ObjectPurchaseOrder, authorization.ActionCreate), s.CreatePurchaseOrder)
	crm.POST("/purchase-orders/bulk-upload", s.authorize(authorization.ObjectPurchaseOrder, authorization.ActionCreate), s.BulkUpload(bulkimport.KindPurchaseOrders))
	crm.GET("/purchase-orders/template/download", s.authorize(authorization.ObjectPurchaseOrder, authorization.ActionView), s.DownloadTemplate(bulkimport.KindPurchaseOrders))
	crm.GET("/purchase-orders/:id", s.authorize(authorization.ObjectPurchaseOrder, authorization.ActionView), s.GetPurchaseOrderByID)
	crm.PUT("/purchase-orders/:id", s.authorize(authorization.ObjectPurchaseOrder, authorization.ActionUpdate), s.UpdatePurchaseOrder)
	crm.DELETE("/purchase-orders/:id", s.authorize(authorization.ObjectPurchaseOrder, authorization.ActionDelete), s.DeletePurchaseOrder)

	// -------- Margin --------
	crm.GET("/margin-calculator", s.authorize(authorization.ObjectMargin, authorization.ActionView), s.ListMargins)
	crm.PUT("/margin-calculator/:proformaId/:poId", s.authorize(authorization.ObjectMargin, authorization.ActionUpdate), s.UpdateFreight)
}

func (s *Server) registerGemBidRoutes() {
	api := s.engine.Group("/api/gem-bid", inNamespace(authdomain.NamespaceGemBid))

	api.POST("/auth/login", s.Login(authdomain.NamespaceGemBid))
	api.GET("/auth/verify", s.Verify(authdomain.NamespaceGemBid))
	api.GET("/uploads/:filename", s.ServeUpload(s.stores.GemBid))

	gem := api.Group("", s.TokenRequired(authdomain.NamespaceGemBid))

	gem.GET("/scheduler/status", s.authorize(authorization.ObjectScheduler, authorization.ActionView), s.SchedulerStatus)
	gem.GET("/statuses", s.authorize(authorization.ObjectBid, authorization.ActionView), s.ListBidStatuses)
	gem.GET("/template/download", s.authorize(authorization.ObjectBid, authorization.ActionView), s.DownloadTemplate(bulkimport.KindBids))
	gem.POST("/bulk-upload", s.authorize(authorization.ObjectBid, authorization.ActionCreate), s.BulkUpload(bulkimport.KindBids))

	// -------- Bids --------
	gem.GET("/bids", s.authorize(authorization.ObjectBid, authorization.ActionView), s.ListBids)
	gem.GET("/bids/new", s.authorize(authorization.ObjectBid, authorization.ActionView), s.ListNewBids)
	gem.GET("/bids/completed", s.authorize(authorization.ObjectBid, authorization.ActionView), s.ListCompletedBids)
	gem.POST("/bids", s.authorize(authorization.ObjectBid, authorization.ActionCreate), s.CreateBid)
	gem.GET("/bids/:id", s.authorize(authorization.ObjectBid, authorization.ActionView), s.GetBidByID)
	gem.PUT("/bids/:id", s.authorize(authorization.ObjectBid, authorization.ActionUpdate), s.UpdateBid)
	gem.PATCH("/bids/:id/status", s.authorize(authorization.ObjectBid, authorization.ActionUpdate), s.PatchBidStatus)
	gem.DELETE("/bids/:id", s.authorize(authorization.ObjectBid, authorization.ActionDelete), s.DeleteBid)
	gem.POST("/bids/:id/documents", s.authorize(authorization.ObjectBid, authorization.ActionUpdate), s.UploadBidDocument)
	gem.DELETE("/bids/:id/documents/:index", s.authorize(authorization.ObjectBid, authorization.ActionUpdate), s.DeleteBidDocument)

	// -------- Orders --------
	gem.GET("/orders", s.authorize(authorization.ObjectBidOrder, authorization.ActionView), s.ListBidOrders)
	gem.POST("/orders", s.authorize(authorization.ObjectBidOrder, authorization.ActionCreate), s.CreateBidOrder)
	gem.GET("/orders/:id", s.authorize(authorization.ObjectBidOrder, authorization.ActionView), s.GetBidOrderByID)
	gem.PUT("/orders/:id", s.authorize(authorization.ObjectBidOrder, authorization.ActionUpdate), s.UpdateBidOrder)
	gem.DELETE("/orders/:id", s.authorize(authorization.ObjectBidOrder, authorization.ActionDelete), s.DeleteBidOrder)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, apierror.ErrNotFound)
	})
}
