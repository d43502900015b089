package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"chatbot-admin-console/internal/config"
	"chatbot-admin-console/internal/logger"
	"chatbot-admin-console/internal/telemetry"
	"chatbot-admin-console/models"

	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Notifier dispatches owner notifications through the external delivery
// service and records one immutable notification_logs entry per recipient
// and channel, including skips.
type Notifier struct {
	baseURL    string
	httpClient *http.Client
	logs       *mongo.Collection
	metrics    *telemetry.Metrics
}

type notifyRequest struct {
	Channel   string            `json:"channel"`
	Recipient string            `json:"recipient"`
	Type      string            `json:"type"`
	Payload   map[string]string `json:"payload"`
}

func NewNotifier(cfg *config.Config, mongoClient *mongo.Client, metrics *telemetry.Metrics) *Notifier {
	return &Notifier{
		baseURL: cfg.NotifyServiceURL,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.EngineTimeout) * time.Second,
		},
		logs:    mongoClient.Database(cfg.DBName).Collection("notification_logs"),
		metrics: metrics,
	}
}

// Dispatch fans a notification out to every configured recipient on every
// enabled channel. Each attempt gets its own log entry; a disabled channel
// or event toggle produces a skipped entry instead of a delivery attempt.
func (n *Notifier) Dispatch(ctx context.Context, bot *models.Bot, notifType string, payload map[string]string) error {
	tracer := otel.Tracer("notifier")
	ctx, span := tracer.Start(ctx, "notifier.dispatch")
	defer span.End()
	span.SetAttributes(
		attribute.String("bot.id", bot.ID.Hex()),
		attribute.String("notify.type", notifType),
	)

	prefs := bot.Notifications

	eventEnabled := true
	switch notifType {
	case models.NotifyTypeLead:
		eventEnabled = prefs.NotifyOnLead
	case models.NotifyTypeAppointment:
		eventEnabled = prefs.NotifyOnAppointment
	}

	channels := []struct {
		name    string
		enabled bool
	}{
		{"email", prefs.EmailEnabled},
		{"sms", prefs.SMSEnabled},
	}

	metadata := make(map[string]interface{}, len(payload))
	for k, v := range payload {
		metadata[k] = v
	}

	var firstErr error
	for _, ch := range channels {
		for _, recipient := range prefs.Recipients {
			entry := models.NotificationLog{
				WorkspaceID: bot.WorkspaceID,
				BotID:       bot.ID,
				Type:        notifType,
				Channel:     ch.name,
				Recipient:   recipient,
				Metadata:    metadata,
				CreatedAt:   time.Now(),
			}

			if !eventEnabled || !ch.enabled {
				entry.Status = models.NotifyStatusSkipped
			} else if err := n.send(ctx, ch.name, recipient, notifType, payload); err != nil {
				entry.Status = models.NotifyStatusFailed
				entry.Error = err.Error()
				if firstErr == nil {
					firstErr = err
				}
				logger.Error("Notification delivery failed", "bot_id", bot.ID.Hex(), "channel", ch.name, "error", err)
			} else {
				entry.Status = models.NotifyStatusSent
			}

			if n.metrics != nil {
				n.metrics.RecordNotification(notifType, ch.name, entry.Status)
			}

			if _, err := n.logs.InsertOne(ctx, entry); err != nil {
				logger.Error("Failed to write notification log", "bot_id", bot.ID.Hex(), "error", err)
			}
		}
	}

	return firstErr
}

func (n *Notifier) send(ctx context.Context, channel, recipient, notifType string, payload map[string]string) error {
	body, err := json.Marshal(notifyRequest{
		Channel:   channel,
		Recipient: recipient,
		Type:      notifType,
		Payload:   payload,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+"/v1/send", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("notify service returned %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}
	return nil
}
