package services

import (
	"net/url"
	"strings"

	"chatbot-admin-console/internal/config"
	"chatbot-admin-console/models"
)

// Checklist criterion statuses
const (
	CheckPass = "pass"
	CheckWarn = "warn"
	CheckFail = "fail"
)

// Booking URL states
const (
	BookingInternal = "internal" // empty, internal capture flow
	BookingWarning  = "warning"  // parseable but not HTTPS
	BookingFailsafe = "failsafe" // unparsable, falls back to internal capture
	BookingOK       = "ok"       // valid HTTPS
)

type ChecklistItem struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type LaunchChecklist struct {
	Items []ChecklistItem `json:"items"`
	Ready bool            `json:"ready"` // no fail items
}

// BuildLaunchChecklist derives the go-live readiness view from the current
// bot config. It is recomputed on every request and never persisted.
func BuildLaunchChecklist(cfg *config.Config, bot *models.Bot, qa *models.QAResults) LaunchChecklist {
	var items []ChecklistItem

	// Business name
	if strings.TrimSpace(bot.Profile.BusinessName) != "" {
		items = append(items, ChecklistItem{Key: "business_name", Label: "Business name", Status: CheckPass})
	} else {
		items = append(items, ChecklistItem{Key: "business_name", Label: "Business name", Status: CheckFail, Detail: "Business name is required before launch"})
	}

	// Website scanned
	if bot.WebsiteScanned {
		items = append(items, ChecklistItem{Key: "website_scanned", Label: "Website scanned", Status: CheckPass})
	} else {
		items = append(items, ChecklistItem{Key: "website_scanned", Label: "Website scanned", Status: CheckWarn, Detail: "Run a website scan to pre-fill the knowledge base"})
	}

	// KB minimum
	if kbMinimumMet(cfg, bot) {
		items = append(items, ChecklistItem{Key: "kb_minimum", Label: "KB minimum content", Status: CheckPass})
	} else {
		items = append(items, ChecklistItem{Key: "kb_minimum", Label: "KB minimum content", Status: CheckFail, Detail: "Add services, FAQs or policy text, operating hours and a contact"})
	}

	// Contact present
	if bot.Profile.HasContact() {
		items = append(items, ChecklistItem{Key: "contact", Label: "Contact details", Status: CheckPass})
	} else {
		items = append(items, ChecklistItem{Key: "contact", Label: "Contact details", Status: CheckFail, Detail: "Add a phone number or email"})
	}

	// Booking URL failsafe
	switch state := BookingURLState(bot.Profile.BookingURL); state {
	case BookingOK:
		items = append(items, ChecklistItem{Key: "booking_url", Label: "Booking link", Status: CheckPass})
	case BookingInternal:
		items = append(items, ChecklistItem{Key: "booking_url", Label: "Booking link", Status: CheckPass, Detail: "Using internal appointment capture"})
	case BookingWarning:
		items = append(items, ChecklistItem{Key: "booking_url", Label: "Booking link", Status: CheckWarn, Detail: "Booking URL is not HTTPS"})
	default: // failsafe
		items = append(items, ChecklistItem{Key: "booking_url", Label: "Booking link", Status: CheckWarn, Detail: "Booking URL is invalid; falling back to internal capture"})
	}

	// QA gate
	switch {
	case qa != nil && qa.Passed:
		items = append(items, ChecklistItem{Key: "qa_gate", Label: "QA gate", Status: CheckPass})
	case qa != nil:
		items = append(items, ChecklistItem{Key: "qa_gate", Label: "QA gate", Status: CheckFail, Detail: "Last QA run did not pass"})
	default:
		items = append(items, ChecklistItem{Key: "qa_gate", Label: "QA gate", Status: CheckFail, Detail: "QA gate has not been run"})
	}

	ready := true
	for _, item := range items {
		if item.Status == CheckFail {
			ready = false
			break
		}
	}

	return LaunchChecklist{Items: items, Ready: ready}
}

// kbMinimumMet: (services >= min OR FAQs >= min OR policy chars >= min)
// AND at least one non-closed operating hour AND (phone OR email).
func kbMinimumMet(cfg *config.Config, bot *models.Bot) bool {
	content := len(bot.Profile.Services) >= cfg.KBMinServices ||
		len(bot.FAQs) >= cfg.KBMinFAQs ||
		bot.PolicyChars() >= cfg.KBMinPolicyChars

	return content && bot.Profile.HasOpenHours() && bot.Profile.HasContact()
}

// BookingURLState classifies the external booking URL. An unparsable value
// is not an error: the bot falls back to internal appointment capture.
func BookingURLState(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return BookingInternal
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" || !parsed.IsAbs() {
		return BookingFailsafe
	}

	if parsed.Scheme != "https" {
		return BookingWarning
	}

	return BookingOK
}
