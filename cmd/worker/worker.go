package main

import (
	"context"
	"log"
	"time"

	"chatbot-admin-console/internal/config"
	"chatbot-admin-console/internal/logger"
	"chatbot-admin-console/internal/queue"
	"chatbot-admin-console/internal/telemetry"
	"chatbot-admin-console/services"

	"github.com/hibiken/asynq"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

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

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		log.Fatal("Failed to initialize metrics:", err)
	}

	// Engine clients
	scanClient := services.NewScanClient(cfg)
	notifier := services.NewNotifier(cfg, mongoClient, metrics)

	// Redis options for Asynq
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}

	// Create Asynq server. Notifications take priority over scans; periodic
	// rescans run on the low queue.
	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 20,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			StrictPriority: true,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("Task failed", "type", task.Type(), "error", err)
			}),
		},
	)

	processor := queue.NewTaskProcessor(cfg, mongoClient, scanClient, notifier)

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskScanWebsite, processor.ProcessScanWebsite)
	mux.HandleFunc(queue.TaskNotifyDispatch, processor.ProcessNotifyDispatch)

	logger.Info("Starting worker",
		"concurrency", 20,
		"queues", "critical(6), default(3), low(1)",
		"redis", redisOpt.Addr,
	)

	if err := server.Run(mux); err != nil {
		log.Fatal("Failed to start worker:", err)
	}
}
