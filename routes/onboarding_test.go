package routes

import (
	"testing"

	"chatbot-admin-console/models"
)

func draftRequest() models.GenerateDraftRequest {
	return models.GenerateDraftRequest{
		WorkspaceID: "64f000000000000000000001",
		Name:        "Bright Smiles Assistant",
		Profile: models.BusinessProfile{
			BusinessName: "Bright Smiles Dental",
			Phone:        "555-0100",
		},
		Policies: []string{"Cancellations require 24 hours notice."},
	}
}

func completedImportData() *models.WebsiteImportData {
	return &models.WebsiteImportData{
		Email:      models.SuggestedField{Value: "front-desk@brightsmiles.example", Confidence: 0.9, Selected: true},
		BookingURL: models.SuggestedField{Value: "https://book.brightsmiles.example", Confidence: 0.8, Selected: false},
		Services: []models.Suggestion{
			{Value: "Teeth Whitening", Confidence: 0.9, Selected: true},
			{Value: "Veneers", Confidence: 0.7, Selected: false},
		},
		FAQs: []models.FAQSuggestion{
			{Question: "Do you take walk-ins?", Answer: "Yes, before noon.", Confidence: 0.85, Selected: true},
		},
	}
}

func TestApplyDraftConfigAppliesRequestFields(t *testing.T) {
	var bot models.Bot
	req := draftRequest()

	applyDraftConfig(&bot, &req, nil)

	if bot.Name != "Bright Smiles Assistant" {
		t.Errorf("Name = %q, want request name", bot.Name)
	}
	if bot.Profile.Phone != "555-0100" {
		t.Errorf("Profile.Phone = %q, want 555-0100", bot.Profile.Phone)
	}
	if len(bot.Policies) != 1 {
		t.Errorf("Policies = %v, want the request policy", bot.Policies)
	}
	if bot.UpdatedAt.IsZero() {
		t.Error("UpdatedAt was not set")
	}
}

func TestApplyDraftConfigMergesSelectedImportSuggestions(t *testing.T) {
	var bot models.Bot
	req := draftRequest()

	applyDraftConfig(&bot, &req, completedImportData())

	if bot.Profile.Email != "front-desk@brightsmiles.example" {
		t.Errorf("Profile.Email = %q, want the selected suggestion", bot.Profile.Email)
	}
	if bot.Profile.BookingURL != "" {
		t.Errorf("Profile.BookingURL = %q, want empty for a deselected suggestion", bot.Profile.BookingURL)
	}

	wantService := false
	for _, s := range bot.Profile.Services {
		if s == "Teeth Whitening" {
			wantService = true
		}
		if s == "Veneers" {
			t.Error("deselected service was merged")
		}
	}
	if !wantService {
		t.Errorf("Services = %v, missing the selected suggestion", bot.Profile.Services)
	}

	foundFAQ := false
	for _, f := range bot.FAQs {
		if f.Question == "Do you take walk-ins?" {
			foundFAQ = true
		}
	}
	if !foundFAQ {
		t.Errorf("FAQs = %v, missing the selected suggestion", bot.FAQs)
	}
}

func TestApplyDraftConfigWithoutImportLeavesScanFieldsAlone(t *testing.T) {
	var bot models.Bot
	req := draftRequest()

	applyDraftConfig(&bot, &req, nil)

	if bot.Profile.Email != "" {
		t.Errorf("Profile.Email = %q, want empty with no import attached", bot.Profile.Email)
	}
	if len(bot.Profile.Services) != 0 {
		t.Errorf("Services = %v, want empty with no import attached", bot.Profile.Services)
	}
}
