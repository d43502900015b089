package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"chatbot-admin-console/internal/config"
	"chatbot-admin-console/internal/logger"
	"chatbot-admin-console/models"
	"chatbot-admin-console/services"
)

const (
	TaskScanWebsite    = "scan:website"
	TaskNotifyDispatch = "notify:dispatch"
)

type ScanWebsitePayload struct {
	ImportID string `json:"import_id"`
	BotID    string `json:"bot_id"`
	URL      string `json:"url"`
}

type NotifyDispatchPayload struct {
	BotID   string            `json:"bot_id"`
	Type    string            `json:"type"`
	Payload map[string]string `json:"payload"`
}

// Task creators
func NewScanWebsiteTask(importID, botID, url string) (*asynq.Task, error) {
	payload, err := json.Marshal(ScanWebsitePayload{
		ImportID: importID,
		BotID:    botID,
		URL:      url,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskScanWebsite,
		payload,
		asynq.MaxRetry(3),
		asynq.Timeout(10*time.Minute),
		asynq.Queue("default"),
	), nil
}

func NewNotifyDispatchTask(botID, notifType string, data map[string]string) (*asynq.Task, error) {
	payload, err := json.Marshal(NotifyDispatchPayload{
		BotID:   botID,
		Type:    notifType,
		Payload: data,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskNotifyDispatch,
		payload,
		asynq.MaxRetry(5),
		asynq.Timeout(2*time.Minute),
		asynq.Queue("critical"),
	), nil
}

// Task handlers
type TaskProcessor struct {
	cfg        *config.Config
	db         *mongo.Database
	scanClient *services.ScanClient
	notifier   *services.Notifier
}

func NewTaskProcessor(cfg *config.Config, mongoClient *mongo.Client, scanClient *services.ScanClient, notifier *services.Notifier) *TaskProcessor {
	return &TaskProcessor{
		cfg:        cfg,
		db:         mongoClient.Database(cfg.DBName),
		scanClient: scanClient,
		notifier:   notifier,
	}
}

// ProcessScanWebsite runs a queued website scan: call the engine, persist
// the suggestions on the import record, then safe-merge the selected items
// into the bot. Bot fields the owner already filled are left untouched.
func (p *TaskProcessor) ProcessScanWebsite(ctx context.Context, t *asynq.Task) error {
	var payload ScanWebsitePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal failed: %w", asynq.SkipRetry)
	}

	importID, err := primitive.ObjectIDFromHex(payload.ImportID)
	if err != nil {
		return fmt.Errorf("bad import id: %w", asynq.SkipRetry)
	}
	botID, err := primitive.ObjectIDFromHex(payload.BotID)
	if err != nil {
		return fmt.Errorf("bad bot id: %w", asynq.SkipRetry)
	}

	imports := p.db.Collection("website_imports")
	bots := p.db.Collection("bots")

	logger.Info("Starting website scan", "import_id", payload.ImportID, "url", payload.URL)
	p.setImportStatus(ctx, imports, importID, models.ImportStatusScanning, "")

	data, err := p.scanClient.Extract(ctx, payload.URL)
	if err != nil {
		logger.Error("Website scan failed", "import_id", payload.ImportID, "error", err)
		p.setImportStatus(ctx, imports, importID, models.ImportStatusFailed, err.Error())
		return err
	}

	if _, err := imports.UpdateOne(ctx,
		bson.M{"_id": importID},
		bson.M{"$set": bson.M{
			"status":       models.ImportStatusCompleted,
			"data":         data,
			"completed_at": time.Now(),
			"updated_at":   time.Now(),
		}},
	); err != nil {
		return err
	}

	var bot models.Bot
	if err := bots.FindOne(ctx, bson.M{"_id": botID}).Decode(&bot); err != nil {
		return err
	}

	report := services.SafeMerge(&bot, data)
	update := bson.M{
		"website_scanned": true,
		"last_scan_at":    time.Now(),
		"updated_at":      time.Now(),
	}
	if report.Changed() {
		update["profile"] = bot.Profile
		update["faqs"] = bot.FAQs
		update["policies"] = bot.Policies
	}

	if _, err := bots.UpdateOne(ctx, bson.M{"_id": botID}, bson.M{"$set": update}); err != nil {
		return err
	}

	logger.Info("Website scan completed",
		"import_id", payload.ImportID,
		"pages", data.PagesScanned,
		"filled_fields", len(report.FilledFields),
		"added_services", report.AddedServices,
		"added_faqs", report.AddedFAQs,
	)
	return nil
}

// ProcessNotifyDispatch delivers a queued owner notification.
func (p *TaskProcessor) ProcessNotifyDispatch(ctx context.Context, t *asynq.Task) error {
	var payload NotifyDispatchPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal failed: %w", asynq.SkipRetry)
	}

	botID, err := primitive.ObjectIDFromHex(payload.BotID)
	if err != nil {
		return fmt.Errorf("bad bot id: %w", asynq.SkipRetry)
	}

	var bot models.Bot
	if err := p.db.Collection("bots").FindOne(ctx, bson.M{"_id": botID}).Decode(&bot); err != nil {
		if err == mongo.ErrNoDocuments {
			return fmt.Errorf("bot not found: %w", asynq.SkipRetry)
		}
		return err
	}

	return p.notifier.Dispatch(ctx, &bot, payload.Type, payload.Payload)
}

func (p *TaskProcessor) setImportStatus(ctx context.Context, col *mongo.Collection, id primitive.ObjectID, status, errMsg string) {
	set := bson.M{"status": status, "updated_at": time.Now()}
	if errMsg != "" {
		set["error"] = errMsg
	}
	if _, err := col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set}); err != nil {
		logger.Error("Failed to update import status", "import_id", id.Hex(), "error", err)
	}
}
