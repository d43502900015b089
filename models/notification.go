package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification log status constants
const (
	NotifyStatusSent    = "sent"
	NotifyStatusFailed  = "failed"
	NotifyStatusSkipped = "skipped"
)

// Notification types
const (
	NotifyTypeLead        = "lead"
	NotifyTypeAppointment = "appointment"
	NotifyTypeGoLive      = "go_live"
)

// NotificationLog is an immutable record of one delivery attempt. Entries
// are insert-only; the console reads them paginated.
type NotificationLog struct {
	ID          primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	WorkspaceID primitive.ObjectID     `bson:"workspace_id" json:"workspace_id"`
	BotID       primitive.ObjectID     `bson:"bot_id,omitempty" json:"bot_id,omitempty"`
	Type        string                 `bson:"type" json:"type"`
	Channel     string                 `bson:"channel" json:"channel"` // email, sms
	Recipient   string                 `bson:"recipient" json:"recipient"`
	Status      string                 `bson:"status" json:"status"`
	Error       string                 `bson:"error,omitempty" json:"error,omitempty"`
	Metadata    map[string]interface{} `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt   time.Time              `bson:"created_at" json:"created_at"`
}
