package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "precast-erp/api/swagger" // swagger docs
	"precast-erp/internal/config"
	"precast-erp/internal/database"
	"precast-erp/internal/handler"
	"precast-erp/internal/logger"
	"precast-erp/internal/middleware"
	"precast-erp/internal/repository"
	"precast-erp/internal/service"
	"precast-erp/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Precast ERP API
// @version         1.0
// @description     Production reports, stock ledger and the order to payment pipeline of a precast-concrete plant.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Get().WithError(err).Fatal("invalid configuration")
	}
	logger.Configure(cfg.LogLevel, cfg.LogFormat)
	log := logger.Get()
	gin.SetMode(cfg.GinMode)

	db, err := database.NewConnection(cfg.DB)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	log.WithFields(logrus.Fields{"host": cfg.DB.Host, "database": cfg.DB.Name}).Info("connected to PostgreSQL")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go database.KeepAlive(ctx, db, cfg.DB.KeepAlive)

	// Set up WebSocket Hub
	wsHub := websocket.NewHub(cfg.CORSOrigins)
	go wsHub.Run(ctx)

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	stockRepo := repository.NewStockRepository(db)
	clientRepo := repository.NewClientRepository(db)

	ledgerService := service.NewLedgerService(stockRepo, repository.NewMovementRepository(db), catalogRepo, auditRepo, txManager, wsHub, cfg.LowStockThreshold)
	numberingService := service.NewNumberingService(repository.NewCounterRepository(db), txManager)
	reportService := service.NewReportService(repository.NewReportRepository(db), catalogRepo, auditRepo, ledgerService, txManager, wsHub)
	quoteRepo := repository.NewQuoteRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	orderService := service.NewOrderService(
		repository.NewOrderRepository(db),
		quoteRepo,
		invoiceRepo,
		clientRepo,
		catalogRepo,
		auditRepo,
		ledgerService,
		numberingService,
		txManager,
		wsHub,
	)
	billingService := service.NewBillingService(invoiceRepo, quoteRepo)
	userService := service.NewUserService(userRepo, cfg.JWTSecret)
	clientService := service.NewClientService(clientRepo, auditRepo, txManager)
	catalogService := service.NewCatalogService(catalogRepo, stockRepo, auditRepo, txManager)
	auditService := service.NewAuditService(auditRepo)
	statisticsService := service.NewStatisticsService(repository.NewStatisticsRepository(db), ledgerService)
	revenueService := service.NewRevenueService(repository.NewRevenueRepository(db))

	if created, err := userService.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.WithError(err).Fatal("failed to create bootstrap admin")
	} else if created {
		log.WithField("username", cfg.AdminUsername).Info("bootstrap admin created")
	}

	auth := middleware.NewAuth(cfg.JWTSecret, cfg.GinMode == gin.ReleaseMode)
	handler.RegisterValidators()

	// Set up Gin Router
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.ExposeHeaders = []string{"Content-Disposition"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "DOWN"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, []byte(cfg.JWTSecret))
	})

	// API Routing
	handler.NewUserHandler(userService, auth).RegisterRoutes(router.Group(""))
	handler.NewClientHandler(clientService, auth).RegisterRoutes(router.Group(""))
	handler.NewCatalogHandler(catalogService, auth).RegisterRoutes(router.Group(""))
	handler.NewReportHandler(reportService, auth).RegisterRoutes(router.Group(""))
	handler.NewOrderHandler(orderService, auth).RegisterRoutes(router.Group(""))
	handler.NewStockHandler(ledgerService, auth).RegisterRoutes(router.Group(""))
	handler.NewInvoiceHandler(billingService, auth).RegisterRoutes(router.Group(""))
	handler.NewAuditHandler(auditService, auth).RegisterRoutes(router.Group(""))
	handler.NewDashboardHandler(statisticsService, revenueService, auth).RegisterRoutes(router.Group(""))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
