package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Bot is the full per-client assistant configuration. Updates replace the
// whole document (last write wins); there are no partial-update semantics.
type Bot struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkspaceID    primitive.ObjectID `bson:"workspace_id" json:"workspace_id"`
	Name           string             `bson:"name" json:"name" binding:"required,min=2,max=100"`
	Profile        BusinessProfile    `bson:"profile" json:"profile"`
	Rules          RuleSet            `bson:"rules" json:"rules"`
	FAQs           []FAQ              `bson:"faqs" json:"faqs"`
	Policies       []string           `bson:"policies" json:"policies"`
	Automations    []Automation       `bson:"automations" json:"automations"`
	Notifications  NotificationPrefs  `bson:"notifications" json:"notifications"`
	SystemPrompt   string             `bson:"system_prompt" json:"system_prompt"`
	EmbedSecret    string             `bson:"embed_secret" json:"embed_secret"`
	Status         string             `bson:"status,omitempty" json:"status,omitempty"` // optional, default "inactive"
	WebsiteScanned bool               `bson:"website_scanned" json:"website_scanned"`
	LastScanAt     *time.Time         `bson:"last_scan_at,omitempty" json:"last_scan_at,omitempty"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

type BusinessProfile struct {
	BusinessName string           `bson:"business_name" json:"business_name"`
	BusinessType string           `bson:"business_type" json:"business_type"`
	Phone        string           `bson:"phone" json:"phone"`
	Email        string           `bson:"email" json:"email" binding:"omitempty,email"`
	Website      string           `bson:"website" json:"website" binding:"omitempty,url"`
	Address      string           `bson:"address,omitempty" json:"address,omitempty"`
	BookingURL   string           `bson:"booking_url,omitempty" json:"booking_url,omitempty"`
	Hours        []OperatingHours `bson:"hours" json:"hours" binding:"max=7"`
	Services     []string         `bson:"services" json:"services"`
	SocialLinks  []string         `bson:"social_links,omitempty" json:"social_links,omitempty"`
}

type OperatingHours struct {
	Day    string `bson:"day" json:"day"`
	Open   string `bson:"open" json:"open"`   // "09:00"
	Close  string `bson:"close" json:"close"` // "17:00"
	Closed bool   `bson:"closed" json:"closed"`
}

// RuleSet bounds what the assistant may talk about. CrisisKeywords trigger
// the crisis response template instead of a generated reply.
type RuleSet struct {
	AllowedTopics  []string `bson:"allowed_topics" json:"allowed_topics"`
	BlockedTopics  []string `bson:"blocked_topics" json:"blocked_topics"`
	CrisisKeywords []string `bson:"crisis_keywords" json:"crisis_keywords"`
	CrisisResponse string   `bson:"crisis_response" json:"crisis_response"`
}

type FAQ struct {
	Question string `bson:"question" json:"question" binding:"required"`
	Answer   string `bson:"answer" json:"answer" binding:"required"`
}

type Automation struct {
	Keyword  string `bson:"keyword" json:"keyword" binding:"required"`
	Response string `bson:"response" json:"response" binding:"required"`
	Enabled  bool   `bson:"enabled" json:"enabled"`
}

type NotificationPrefs struct {
	EmailEnabled        bool     `bson:"email_enabled" json:"email_enabled"`
	SMSEnabled          bool     `bson:"sms_enabled" json:"sms_enabled"`
	Recipients          []string `bson:"recipients" json:"recipients"`
	NotifyOnLead        bool     `bson:"notify_on_lead" json:"notify_on_lead"`
	NotifyOnAppointment bool     `bson:"notify_on_appointment" json:"notify_on_appointment"`
}

type CreateBotRequest struct {
	WorkspaceID   string            `json:"workspace_id" binding:"required"`
	Name          string            `json:"name" binding:"required,min=2,max=100"`
	Profile       BusinessProfile   `json:"profile"`
	Rules         RuleSet           `json:"rules"`
	FAQs          []FAQ             `json:"faqs"`
	Policies      []string          `json:"policies"`
	Automations   []Automation      `json:"automations"`
	Notifications NotificationPrefs `json:"notifications"`
	SystemPrompt  string            `json:"system_prompt"`
}

// UpdateBotRequest carries the full replacement config for PUT.
type UpdateBotRequest struct {
	Name          string            `json:"name" binding:"required,min=2,max=100"`
	Profile       BusinessProfile   `json:"profile"`
	Rules         RuleSet           `json:"rules"`
	FAQs          []FAQ             `json:"faqs"`
	Policies      []string          `json:"policies"`
	Automations   []Automation      `json:"automations"`
	Notifications NotificationPrefs `json:"notifications"`
	SystemPrompt  string            `json:"system_prompt"`
}

// HasOpenHours reports whether at least one operating hour is not closed.
func (p *BusinessProfile) HasOpenHours() bool {
	for _, h := range p.Hours {
		if !h.Closed {
			return true
		}
	}
	return false
}

// HasContact reports whether a phone number or email is present.
func (p *BusinessProfile) HasContact() bool {
	return p.Phone != "" || p.Email != ""
}

// PolicyChars returns the total character count of all policy texts.
func (b *Bot) PolicyChars() int {
	n := 0
	for _, p := range b.Policies {
		n += len(p)
	}
	return n
}
