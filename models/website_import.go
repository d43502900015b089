package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WebsiteImport status constants
const (
	ImportStatusPending   = "pending"
	ImportStatusScanning  = "scanning"
	ImportStatusCompleted = "completed"
	ImportStatusFailed    = "failed"
)

// WebsiteImport is one scan of a client website, holding the
// confidence-scored suggestions the operator reviews before merging.
type WebsiteImport struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkspaceID primitive.ObjectID `bson:"workspace_id" json:"workspace_id"`
	BotID       primitive.ObjectID `bson:"bot_id" json:"bot_id"`
	URL         string             `bson:"url" json:"url"`
	Status      string             `bson:"status" json:"status"`
	Error       string             `bson:"error,omitempty" json:"error,omitempty"`
	Data        *WebsiteImportData `bson:"data,omitempty" json:"data,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
	CompletedAt *time.Time         `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
}

// WebsiteImportData holds everything the extraction engine found.
type WebsiteImportData struct {
	BusinessName SuggestedField  `bson:"business_name" json:"business_name"`
	Phone        SuggestedField  `bson:"phone" json:"phone"`
	Email        SuggestedField  `bson:"email" json:"email"`
	BookingURL   SuggestedField  `bson:"booking_url" json:"booking_url"`
	Services     []Suggestion    `bson:"services" json:"services"`
	FAQs         []FAQSuggestion `bson:"faqs" json:"faqs"`
	Policies     []Suggestion    `bson:"policies" json:"policies"`
	SocialLinks  []Suggestion    `bson:"social_links" json:"social_links"`
	PagesScanned int             `bson:"pages_scanned" json:"pages_scanned"`
}

// SuggestedField is a single extracted scalar value.
type SuggestedField struct {
	Value      string  `bson:"value" json:"value"`
	Confidence float64 `bson:"confidence" json:"confidence"`
	Selected   bool    `bson:"selected" json:"selected"`
}

// Suggestion is an extracted list item the operator can toggle.
type Suggestion struct {
	Value      string  `bson:"value" json:"value"`
	Confidence float64 `bson:"confidence" json:"confidence"`
	Selected   bool    `bson:"selected" json:"selected"`
	Source     string  `bson:"source,omitempty" json:"source,omitempty"` // page URL
}

type FAQSuggestion struct {
	Question   string  `bson:"question" json:"question"`
	Answer     string  `bson:"answer" json:"answer"`
	Confidence float64 `bson:"confidence" json:"confidence"`
	Selected   bool    `bson:"selected" json:"selected"`
	Source     string  `bson:"source,omitempty" json:"source,omitempty"`
}

type StartImportRequest struct {
	WorkspaceID string `json:"workspace_id" binding:"required"`
	BotID       string `json:"bot_id" binding:"required"`
	URL         string `json:"url" binding:"required,url"`
	// Sync forces an inline scan instead of queueing a background job.
	Sync bool `json:"sync,omitempty"`
}

// UpdateSelectionRequest toggles selection flags before a manual apply.
type UpdateSelectionRequest struct {
	BusinessName *bool `json:"business_name,omitempty"`
	Phone        *bool `json:"phone,omitempty"`
	Email        *bool `json:"email,omitempty"`
	BookingURL   *bool `json:"booking_url,omitempty"`

	Services    map[int]bool `json:"services,omitempty"`
	FAQs        map[int]bool `json:"faqs,omitempty"`
	Policies    map[int]bool `json:"policies,omitempty"`
	SocialLinks map[int]bool `json:"social_links,omitempty"`
}
