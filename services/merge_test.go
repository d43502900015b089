package services

import (
	"testing"

	"chatbot-admin-console/models"
)

func scanData() *models.WebsiteImportData {
	return &models.WebsiteImportData{
		BusinessName: models.SuggestedField{Value: "Bright Smile Dental", Confidence: 0.9, Selected: true},
		Phone:        models.SuggestedField{Value: "555-0100", Confidence: 0.8, Selected: true},
		Email:        models.SuggestedField{Value: "hello@brightsmile.test", Confidence: 0.7, Selected: true},
		BookingURL:   models.SuggestedField{Value: "https://brightsmile.test/book", Confidence: 0.9, Selected: true},
		Services: []models.Suggestion{
			{Value: "Teeth Whitening", Confidence: 0.9, Selected: true},
			{Value: "  Cleanings  ", Confidence: 0.8, Selected: true},
		},
		FAQs: []models.FAQSuggestion{
			{Question: "Do you take insurance?", Answer: "Yes, most plans.", Confidence: 0.9, Selected: true},
		},
		Policies: []models.Suggestion{
			{Value: "Cancellations require 24h notice.", Confidence: 0.9, Selected: true},
		},
	}
}

func TestSafeMergeFillsOnlyEmptyScalars(t *testing.T) {
	bot := &models.Bot{}
	bot.Profile.Phone = "555-9999" // operator already typed one in

	report := SafeMerge(bot, scanData())

	if bot.Profile.Phone != "555-9999" {
		t.Fatalf("safe merge overwrote a non-empty phone: %q", bot.Profile.Phone)
	}
	if bot.Profile.BusinessName != "Bright Smile Dental" {
		t.Fatalf("empty business name not filled: %q", bot.Profile.BusinessName)
	}
	if bot.Profile.Email != "hello@brightsmile.test" {
		t.Fatalf("empty email not filled: %q", bot.Profile.Email)
	}
	for _, f := range report.FilledFields {
		if f == "phone" {
			t.Fatalf("report claims phone was filled")
		}
	}
}

func TestSafeMergeAppendsListsWithDedup(t *testing.T) {
	bot := &models.Bot{}
	bot.Profile.Services = []string{"teeth whitening"} // same service, different case

	report := SafeMerge(bot, scanData())

	if report.AddedServices != 1 {
		t.Fatalf("expected 1 added service, got %d", report.AddedServices)
	}
	if report.SkippedDupes != 1 {
		t.Fatalf("expected 1 skipped duplicate, got %d", report.SkippedDupes)
	}
	if len(bot.Profile.Services) != 2 {
		t.Fatalf("expected 2 services, got %v", bot.Profile.Services)
	}
	if bot.Profile.Services[1] != "Cleanings" {
		t.Fatalf("appended value not trimmed: %q", bot.Profile.Services[1])
	}
	if report.AddedFAQs != 1 || report.AddedPolicies != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestSafeMergeFAQDedupOnQuestion(t *testing.T) {
	bot := &models.Bot{
		FAQs: []models.FAQ{{Question: "do you take insurance?", Answer: "Call us."}},
	}

	report := SafeMerge(bot, scanData())

	if report.AddedFAQs != 0 {
		t.Fatalf("reworded answer to an existing question should dedup, got %d added", report.AddedFAQs)
	}
	if bot.FAQs[0].Answer != "Call us." {
		t.Fatalf("existing answer was replaced: %q", bot.FAQs[0].Answer)
	}
}

func TestSafeMergeIgnoresDeselected(t *testing.T) {
	data := scanData()
	data.BusinessName.Selected = false
	data.Services[0].Selected = false
	data.Services[1].Selected = false

	bot := &models.Bot{}
	report := SafeMerge(bot, data)

	if bot.Profile.BusinessName != "" {
		t.Fatalf("deselected scalar was applied: %q", bot.Profile.BusinessName)
	}
	if report.AddedServices != 0 {
		t.Fatalf("deselected services were appended: %d", report.AddedServices)
	}
}

func TestSafeMergeNilData(t *testing.T) {
	bot := &models.Bot{}
	report := SafeMerge(bot, nil)
	if report.Changed() {
		t.Fatalf("nil data reported changes: %+v", report)
	}
}

func TestApplySelectedOverwritesScalars(t *testing.T) {
	bot := &models.Bot{}
	bot.Profile.Phone = "555-9999"

	report := ApplySelected(bot, scanData())

	if bot.Profile.Phone != "555-0100" {
		t.Fatalf("selected phone should overwrite, got %q", bot.Profile.Phone)
	}
	found := false
	for _, f := range report.FilledFields {
		if f == "phone" {
			found = true
		}
	}
	if !found {
		t.Fatalf("phone overwrite missing from report: %v", report.FilledFields)
	}
}

func TestApplySelectedSkipsDeselectedScalar(t *testing.T) {
	data := scanData()
	data.Phone.Selected = false

	bot := &models.Bot{}
	bot.Profile.Phone = "555-9999"
	ApplySelected(bot, data)

	if bot.Profile.Phone != "555-9999" {
		t.Fatalf("deselected phone was applied: %q", bot.Profile.Phone)
	}
}

func TestFilterSuggestionsThreshold(t *testing.T) {
	data := &models.WebsiteImportData{
		BusinessName: models.SuggestedField{Value: "Acme", Confidence: 0.65},
		Phone:        models.SuggestedField{Value: "555-0100", Confidence: 0.4},
		Email:        models.SuggestedField{Value: "", Confidence: 0.99},
		Services: []models.Suggestion{
			{Value: "Roofing", Confidence: 0.6},
			{Value: "Gutters", Confidence: 0.59},
		},
		FAQs: []models.FAQSuggestion{
			{Question: "Open weekends?", Answer: "Yes", Confidence: 0.7},
		},
	}

	FilterSuggestions(data, 0.6)

	if !data.BusinessName.Selected {
		t.Fatalf("0.65 >= 0.6 should be selected")
	}
	if data.Phone.Selected {
		t.Fatalf("0.4 < 0.6 should be deselected")
	}
	if data.Email.Selected {
		t.Fatalf("empty value should never be selected")
	}
	if !data.Services[0].Selected || data.Services[1].Selected {
		t.Fatalf("service threshold wrong: %+v", data.Services)
	}
	if !data.FAQs[0].Selected {
		t.Fatalf("faq above threshold should be selected")
	}
}
