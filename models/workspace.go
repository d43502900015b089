package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Workspace is a tenant/client account grouping one or more bots.
type Workspace struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Slug         string             `bson:"slug" json:"slug" binding:"required,min=2,max=60"`
	Name         string             `bson:"name" json:"name" binding:"required,min=2,max=100"`
	Status       string             `bson:"status,omitempty" json:"status,omitempty"` // optional, default "active"
	ContactEmail string             `bson:"contact_email,omitempty" json:"contact_email,omitempty"`
	ContactPhone string             `bson:"contact_phone,omitempty" json:"contact_phone,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

type CreateWorkspaceRequest struct {
	Slug         string `json:"slug" binding:"required,min=2,max=60"`
	Name         string `json:"name" binding:"required,min=2,max=100"`
	Status       string `json:"status,omitempty"`
	ContactEmail string `json:"contact_email,omitempty" binding:"omitempty,email"`
	ContactPhone string `json:"contact_phone,omitempty"`
}

type UpdateWorkspaceRequest struct {
	Name         *string `json:"name,omitempty" binding:"omitempty,min=2,max=100"`
	Status       *string `json:"status,omitempty"`
	ContactEmail *string `json:"contact_email,omitempty" binding:"omitempty,email"`
	ContactPhone *string `json:"contact_phone,omitempty"`
}

// WorkspaceOverview is the dashboard row: workspace plus bot counts.
type WorkspaceOverview struct {
	Workspace Workspace `json:"workspace"`
	TotalBots int       `json:"total_bots"`
	LiveBots  int       `json:"live_bots"`
}
