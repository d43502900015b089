package models

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"chatbot-admin-console/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AuditEvent represents an immutable audit log entry
type AuditEvent struct {
	ID           string                 `bson:"_id,omitempty"`
	Timestamp    time.Time              `bson:"timestamp"`
	WorkspaceID  string                 `bson:"workspace_id"`
	UserID       string                 `bson:"user_id"`
	Action       string                 `bson:"action"`   // CREATE, READ, UPDATE, DELETE
	Resource     string                 `bson:"resource"` // bot, workspace, draft, import
	ResourceID   string                 `bson:"resource_id"`
	IPAddress    string                 `bson:"ip_address"`
	UserAgent    string                 `bson:"user_agent"`
	RequestID    string                 `bson:"request_id"`
	Success      bool                   `bson:"success"`
	ErrorMessage string                 `bson:"error_message,omitempty"`
	Changes      map[string]interface{} `bson:"changes,omitempty"`
	PreviousHash string                 `bson:"previous_hash"` // Hash of previous audit entry
	CurrentHash  string                 `bson:"current_hash"`  // Hash of this entry
	CreatedAt    time.Time              `bson:"created_at"`
}

// ComputeHash computes the hash of this audit event
func (e *AuditEvent) ComputeHash() string {
	data := fmt.Sprintf("%s|%s|%s|%s|%s|%s|%t|%s",
		e.Timestamp.Format(time.RFC3339Nano),
		e.WorkspaceID,
		e.UserID,
		e.Action,
		e.Resource,
		e.ResourceID,
		e.Success,
		e.PreviousHash,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// AuditLogger handles immutable, hash-chained audit logging per workspace.
type AuditLogger struct {
	col        *mongo.Collection
	lastHashMu sync.RWMutex
	lastHashes map[string]string // workspaceID -> last hash
}

func NewAuditLogger(db *mongo.Database) *AuditLogger {
	col := db.Collection("audit_logs")

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "workspace_id", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "resource", Value: 1}, {Key: "resource_id", Value: 1}}},
		{Keys: bson.D{{Key: "request_id", Value: 1}}},
	}
	col.Indexes().CreateMany(context.Background(), indexes)

	return &AuditLogger{
		col:        col,
		lastHashes: make(map[string]string),
	}
}

// Log logs an audit event (insert-only, never updated)
func (al *AuditLogger) Log(event *AuditEvent) error {
	al.lastHashMu.Lock()
	defer al.lastHashMu.Unlock()

	// Chain to the previous event of the same workspace
	event.PreviousHash = al.lastHashes[event.WorkspaceID]
	event.Timestamp = time.Now().UTC()
	event.CreatedAt = time.Now().UTC()
	event.ID = fmt.Sprintf("%d_%s", time.Now().UnixNano(), event.WorkspaceID)
	event.CurrentHash = event.ComputeHash()

	ctx := context.Background()
	_, err := al.col.InsertOne(ctx, event)
	if err != nil {
		logger.Error("Failed to log audit event", "error", err)
		return err
	}

	al.lastHashes[event.WorkspaceID] = event.CurrentHash
	return nil
}

// LogAsync logs an audit event without blocking the response
func (al *AuditLogger) LogAsync(event *AuditEvent) {
	go func() {
		if err := al.Log(event); err != nil {
			logger.Error("Async audit logging failed", "error", err)
		}
	}()
}

// VerifyChain verifies the integrity of the audit chain for a workspace
func (al *AuditLogger) VerifyChain(workspaceID string) (bool, error) {
	ctx := context.Background()
	cursor, err := al.col.Find(ctx,
		bson.M{"workspace_id": workspaceID},
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}),
	)
	if err != nil {
		return false, err
	}
	defer cursor.Close(ctx)

	var previousHash string
	eventCount := 0

	for cursor.Next(ctx) {
		var event AuditEvent
		if err := cursor.Decode(&event); err != nil {
			return false, err
		}

		eventCount++

		if eventCount > 1 && event.PreviousHash != previousHash {
			logger.Warn("Audit chain broken", "event_id", event.ID)
			return false, nil
		}

		if event.CurrentHash != event.ComputeHash() {
			logger.Warn("Audit event hash mismatch", "event_id", event.ID)
			return false, nil
		}

		previousHash = event.CurrentHash
	}

	return true, nil
}

// QueryAuditLogs queries audit logs with filters
func (al *AuditLogger) QueryAuditLogs(filter bson.M, page, pageSize int) ([]AuditEvent, int64, error) {
	ctx := context.Background()

	total, err := al.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	skip := (page - 1) * pageSize
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(pageSize))

	cursor, err := al.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var events []AuditEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, 0, err
	}

	return events, total, nil
}
