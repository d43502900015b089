package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chatbot-admin-console/internal/ai"
	"chatbot-admin-console/internal/config"
	"chatbot-admin-console/internal/logger"
	"chatbot-admin-console/internal/queue"
	"chatbot-admin-console/internal/telemetry"
	"chatbot-admin-console/middleware"
	"chatbot-admin-console/models"
	"chatbot-admin-console/routes"
	"chatbot-admin-console/services"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	// Tracing + metrics
	shutdownTracer, err := telemetry.InitTracer("chatbot-admin-console")
	if err != nil {
		logger.Warn("Tracing disabled", "error", err)
		shutdownTracer = func() {}
	}
	defer shutdownTracer()

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		log.Fatal("Failed to init metrics:", err)
	}

	// Connect to MongoDB
	mongoClient, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		mongoClient.Disconnect(ctx)
	}()

	// Connect to Redis
	rdb, err := config.NewRedisClient(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer rdb.Close()

	// Asynq client for background jobs
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer asynqClient.Close()

	// Domain services
	scanClient := services.NewScanClient(cfg)
	qaGate := services.NewQAGateClient(cfg)
	drafter, err := ai.NewPromptDrafter(cfg.GeminiAPIKey)
	if err != nil {
		log.Fatal("Failed to init prompt drafter:", err)
	}
	verifier := services.NewEmbedVerifier(cfg.WidgetBaseURL, time.Duration(cfg.EngineTimeout)*time.Second)
	exportService := services.NewExportService(mongoClient.Database(cfg.DBName))
	auditor := models.NewAuditLogger(mongoClient.Database(cfg.DBName))

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	router.Use(middleware.TracingMiddleware())
	router.Use(middleware.EnrichTrace())
	router.Use(middleware.MetricsMiddleware(metrics))
	router.Use(middleware.RateLimitMiddleware(rdb, cfg))
	router.Use(middleware.AuditMiddleware(auditor))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})

	// Auth + role middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg, rdb)
	roleMiddleware := middleware.NewRoleMiddleware()

	// Setup routes
	routes.SetupAuthRoutes(router, cfg, mongoClient, rdb, authMiddleware)
	routes.SetupSuperAdminRoutes(router, cfg, mongoClient, authMiddleware, roleMiddleware, verifier)
	routes.SetupOnboardingRoutes(router, cfg, mongoClient, authMiddleware, roleMiddleware, drafter, qaGate, asynqClient, metrics)
	routes.SetupWebsiteImportRoutes(router, cfg, mongoClient, authMiddleware, roleMiddleware, scanClient, asynqClient, metrics)
	routes.SetupPolicyImportRoutes(router, cfg, mongoClient, authMiddleware, roleMiddleware)
	routes.SetupNotificationLogRoutes(router, cfg, mongoClient, authMiddleware, roleMiddleware)
	routes.SetupHistoryRoutes(router, cfg, mongoClient, authMiddleware, roleMiddleware, exportService, asynqClient)
	routes.SetupAuditRoutes(router, auditor, authMiddleware, roleMiddleware)

	// Weekly rescan of live bots
	importsCollection := mongoClient.Database(cfg.DBName).Collection("website_imports")
	rescan := services.NewRescanScheduler(cfg, mongoClient, func(bot *models.Bot) error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		imp := models.WebsiteImport{
			WorkspaceID: bot.WorkspaceID,
			BotID:       bot.ID,
			URL:         bot.Profile.Website,
			Status:      models.ImportStatusPending,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}
		result, err := importsCollection.InsertOne(ctx, imp)
		if err != nil {
			return err
		}

		task, err := queue.NewScanWebsiteTask(result.InsertedID.(primitive.ObjectID).Hex(), bot.ID.Hex(), imp.URL)
		if err != nil {
			return err
		}
		_, err = asynqClient.Enqueue(task, asynq.Queue("low"))
		return err
	})
	if err := rescan.Start(); err != nil {
		logger.Warn("Rescan scheduler disabled", "error", err)
	}
	defer rescan.Stop()

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
