package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all application metrics
type Metrics struct {
	RequestCounter     metric.Int64Counter
	RequestDuration    metric.Float64Histogram
	WebsiteScans       metric.Int64Counter
	QAGateRuns         metric.Int64Counter
	GoLives            metric.Int64Counter
	NotificationsSent  metric.Int64Counter
	AuditEventsLogged  metric.Int64Counter
	DatabaseOperations metric.Int64Counter
}

// InitMetrics initializes all application metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("chatbot-admin-console")

	requestCounter, err := meter.Int64Counter(
		"http.requests.total",
		metric.WithDescription("Total HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	websiteScans, err := meter.Int64Counter(
		"website.scans.total",
		metric.WithDescription("Total website scans started"),
	)
	if err != nil {
		return nil, err
	}

	qaGateRuns, err := meter.Int64Counter(
		"qagate.runs.total",
		metric.WithDescription("Total QA gate runs"),
	)
	if err != nil {
		return nil, err
	}

	goLives, err := meter.Int64Counter(
		"bots.golive.total",
		metric.WithDescription("Total bots taken live"),
	)
	if err != nil {
		return nil, err
	}

	notificationsSent, err := meter.Int64Counter(
		"notifications.dispatched.total",
		metric.WithDescription("Total notification dispatch attempts"),
	)
	if err != nil {
		return nil, err
	}

	auditEventsLogged, err := meter.Int64Counter(
		"audit.events.logged",
		metric.WithDescription("Total audit events logged"),
	)
	if err != nil {
		return nil, err
	}

	databaseOperations, err := meter.Int64Counter(
		"database.operations.total",
		metric.WithDescription("Total database operations"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		RequestCounter:     requestCounter,
		RequestDuration:    requestDuration,
		WebsiteScans:       websiteScans,
		QAGateRuns:         qaGateRuns,
		GoLives:            goLives,
		NotificationsSent:  notificationsSent,
		AuditEventsLogged:  auditEventsLogged,
		DatabaseOperations: databaseOperations,
	}, nil
}

// RecordRequest records HTTP request metrics
func (m *Metrics) RecordRequest(method, path, status string, duration float64) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.path", path),
		attribute.String("http.status", status),
	}

	m.RequestCounter.Add(context.Background(), 1, metric.WithAttributes(attrs...))
	m.RequestDuration.Record(context.Background(), duration, metric.WithAttributes(attrs...))
}

// RecordWebsiteScan records a website scan by outcome
func (m *Metrics) RecordWebsiteScan(status string) {
	m.WebsiteScans.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("scan.status", status),
	))
}

// RecordQAGateRun records a QA gate run and its verdict
func (m *Metrics) RecordQAGateRun(passed bool) {
	m.QAGateRuns.Add(context.Background(), 1, metric.WithAttributes(
		attribute.Bool("qa.passed", passed),
	))
}

// RecordGoLive records a successful go-live
func (m *Metrics) RecordGoLive() {
	m.GoLives.Add(context.Background(), 1)
}

// RecordNotification records a notification dispatch attempt by status
func (m *Metrics) RecordNotification(notifType, channel, status string) {
	attrs := []attribute.KeyValue{
		attribute.String("notify.type", notifType),
		attribute.String("notify.channel", channel),
		attribute.String("notify.status", status),
	}

	m.NotificationsSent.Add(context.Background(), 1, metric.WithAttributes(attrs...))
}

// RecordAuditEvent records audit event logging
func (m *Metrics) RecordAuditEvent(action, resource string) {
	attrs := []attribute.KeyValue{
		attribute.String("audit.action", action),
		attribute.String("audit.resource", resource),
	}

	m.AuditEventsLogged.Add(context.Background(), 1, metric.WithAttributes(attrs...))
}

// RecordDatabaseOperation records database operation metrics
func (m *Metrics) RecordDatabaseOperation(operation, collection string, success bool) {
	attrs := []attribute.KeyValue{
		attribute.String("db.operation", operation),
		attribute.String("db.collection", collection),
		attribute.Bool("db.success", success),
	}

	m.DatabaseOperations.Add(context.Background(), 1, metric.WithAttributes(attrs...))
}
