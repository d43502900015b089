package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Draft lifecycle statuses. Transitions are strictly forward and happen only
// on successful engine responses; a failed call leaves the prior status.
const (
	DraftStatusDraft     = "draft"
	DraftStatusQAPending = "qa_pending"
	DraftStatusQAPassed  = "qa_passed"
	DraftStatusLive      = "live"
)

var (
	ErrNotQAPassed   = errors.New("draft has not passed the QA gate")
	ErrAlreadyLive   = errors.New("bot is already live")
	ErrDraftVerified = errors.New("draft already verified; regenerating would discard the QA result")
)

// OnboardingDraft tracks a bot through the agency-onboarding wizard.
type OnboardingDraft struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkspaceID primitive.ObjectID `bson:"workspace_id" json:"workspace_id"`
	BotID       primitive.ObjectID `bson:"bot_id" json:"bot_id"`
	Status      string             `bson:"status" json:"status"`
	QAResults   *QAResults         `bson:"qa_results,omitempty" json:"qa_results,omitempty"`
	EmbedCode   string             `bson:"embed_code,omitempty" json:"embed_code,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
	WentLiveAt  *time.Time         `bson:"went_live_at,omitempty" json:"went_live_at,omitempty"`
}

// QAResults is the QA gate engine's verdict, attached as-is to the draft.
type QAResults struct {
	Passed   bool      `bson:"passed" json:"passed"`
	Warnings []string  `bson:"warnings" json:"warnings"`
	Errors   []string  `bson:"errors" json:"errors"`
	Report   string    `bson:"report" json:"report"`
	RanAt    time.Time `bson:"ran_at" json:"ran_at"`
}

// CanRegenerate reports whether generate-draft-setup may run again. Once the
// draft passed QA (or went live) a regenerate would silently regress the
// status, so it is rejected.
func (d *OnboardingDraft) CanRegenerate() bool {
	return d.Status == DraftStatusDraft || d.Status == DraftStatusQAPending
}

// ApplyQAResult records an explicit QA run. The status moves to qa_passed or
// qa_pending depending on the verdict; a live bot never changes status.
func (d *OnboardingDraft) ApplyQAResult(res QAResults) error {
	if d.Status == DraftStatusLive {
		return ErrAlreadyLive
	}

	d.QAResults = &res
	if res.Passed {
		d.Status = DraftStatusQAPassed
	} else {
		d.Status = DraftStatusQAPending
	}
	d.UpdatedAt = time.Now()
	return nil
}

// CanGoLive reports whether the go-live transition is reachable.
func (d *OnboardingDraft) CanGoLive() bool {
	return d.Status == DraftStatusQAPassed
}

// GoLive moves the draft to live and attaches the embed code. Only reachable
// from qa_passed.
func (d *OnboardingDraft) GoLive(embedCode string) error {
	if d.Status == DraftStatusLive {
		return ErrAlreadyLive
	}
	if d.Status != DraftStatusQAPassed {
		return ErrNotQAPassed
	}

	now := time.Now()
	d.Status = DraftStatusLive
	d.EmbedCode = embedCode
	d.UpdatedAt = now
	d.WentLiveAt = &now
	return nil
}

type GenerateDraftRequest struct {
	WorkspaceID   string            `json:"workspace_id" binding:"required"`
	BotID         string            `json:"bot_id,omitempty"`
	Name          string            `json:"name" binding:"required,min=2,max=100"`
	Profile       BusinessProfile   `json:"profile"`
	Rules         RuleSet           `json:"rules"`
	FAQs          []FAQ             `json:"faqs"`
	Policies      []string          `json:"policies"`
	Automations   []Automation      `json:"automations"`
	Notifications NotificationPrefs `json:"notifications"`
	SystemPrompt  string            `json:"system_prompt,omitempty"`

	// Selected website-import suggestions to merge into the draft.
	ImportID string `json:"import_id,omitempty"`
}

type RunQAGateRequest struct {
	BotID string `json:"bot_id" binding:"required"`
}

type GoLiveRequest struct {
	BotID string `json:"bot_id" binding:"required"`
}

// EmbedSnippet is returned on go-live for embedding the chat widget.
type EmbedSnippet struct {
	BotID       string `json:"bot_id"`
	EmbedSecret string `json:"embed_secret"`
	ScriptTag   string `json:"script_tag"`
	IframeTag   string `json:"iframe_tag"`
}
