package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Conversation is the visitor-facing transcript; stored by the chat runtime,
// consumed read-only by the console.
type Conversation struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkspaceID primitive.ObjectID `bson:"workspace_id" json:"workspace_id"`
	BotID       primitive.ObjectID `bson:"bot_id" json:"bot_id"`
	VisitorID   string             `bson:"visitor_id" json:"visitor_id"`
	Messages    []ChatMessage      `bson:"messages" json:"messages"`
	StartedAt   time.Time          `bson:"started_at" json:"started_at"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

type ChatMessage struct {
	Role      string    `bson:"role" json:"role"` // visitor, assistant
	Text      string    `bson:"text" json:"text"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

type Lead struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkspaceID primitive.ObjectID `bson:"workspace_id" json:"workspace_id"`
	BotID       primitive.ObjectID `bson:"bot_id,omitempty" json:"bot_id,omitempty"`
	Name        string             `bson:"name" json:"name"`
	Phone       string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Email       string             `bson:"email,omitempty" json:"email,omitempty"`
	Message     string             `bson:"message,omitempty" json:"message,omitempty"`
	Source      string             `bson:"source,omitempty" json:"source,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

type Appointment struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkspaceID primitive.ObjectID `bson:"workspace_id" json:"workspace_id"`
	BotID       primitive.ObjectID `bson:"bot_id,omitempty" json:"bot_id,omitempty"`
	Name        string             `bson:"name" json:"name"`
	Phone       string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Email       string             `bson:"email,omitempty" json:"email,omitempty"`
	Service     string             `bson:"service,omitempty" json:"service,omitempty"`
	ScheduledAt time.Time          `bson:"scheduled_at" json:"scheduled_at"`
	Status      string             `bson:"status,omitempty" json:"status,omitempty"` // requested, confirmed, cancelled
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

type LeadHookRequest struct {
	WorkspaceID string `json:"workspace_id" binding:"required"`
	BotID       string `json:"bot_id,omitempty"`
	Name        string `json:"name" binding:"required"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty" binding:"omitempty,email"`
	Message     string `json:"message,omitempty"`
	Source      string `json:"source,omitempty"`
}

type AppointmentHookRequest struct {
	WorkspaceID string    `json:"workspace_id" binding:"required"`
	BotID       string    `json:"bot_id,omitempty"`
	Name        string    `json:"name" binding:"required"`
	Phone       string    `json:"phone,omitempty"`
	Email       string    `json:"email,omitempty" binding:"omitempty,email"`
	Service     string    `json:"service,omitempty"`
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
}
