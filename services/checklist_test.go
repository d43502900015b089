package services

import (
	"testing"
	"time"

	"chatbot-admin-console/internal/config"
	"chatbot-admin-console/models"
)

func testConfig() *config.Config {
	return &config.Config{
		KBMinServices:    6,
		KBMinFAQs:        8,
		KBMinPolicyChars: 80,
	}
}

func TestBookingURLState(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"", BookingInternal},
		{"   ", BookingInternal},
		{"https://example.com/book", BookingOK},
		{"http://example.com/book", BookingWarning},
		{"not-a-url", BookingFailsafe},
		{"::::", BookingFailsafe},
		{"/relative/path", BookingFailsafe},
	}

	for _, tt := range tests {
		if got := BookingURLState(tt.raw); got != tt.want {
			t.Errorf("BookingURLState(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestKBMinimumContentORLogic(t *testing.T) {
	base := func() *models.Bot {
		bot := &models.Bot{}
		bot.Profile.Phone = "555-0100"
		bot.Profile.Hours = []models.OperatingHours{{Day: "monday", Open: "09:00", Close: "17:00"}}
		return bot
	}

	cfg := testConfig()

	// No content at all
	if kbMinimumMet(cfg, base()) {
		t.Fatalf("empty KB should not meet minimum")
	}

	// Enough services alone
	bot := base()
	bot.Profile.Services = []string{"a", "b", "c", "d", "e", "f"}
	if !kbMinimumMet(cfg, bot) {
		t.Fatalf("6 services should meet minimum")
	}

	// Enough FAQs alone
	bot = base()
	for i := 0; i < 8; i++ {
		bot.FAQs = append(bot.FAQs, models.FAQ{Question: "q", Answer: "a"})
	}
	if !kbMinimumMet(cfg, bot) {
		t.Fatalf("8 FAQs should meet minimum")
	}

	// Enough policy text alone
	bot = base()
	bot.Policies = []string{string(make([]byte, 80))}
	if !kbMinimumMet(cfg, bot) {
		t.Fatalf("80 policy chars should meet minimum")
	}

	// Content but no open hours
	bot = base()
	bot.Profile.Services = []string{"a", "b", "c", "d", "e", "f"}
	bot.Profile.Hours = []models.OperatingHours{{Day: "monday", Closed: true}}
	if kbMinimumMet(cfg, bot) {
		t.Fatalf("all-closed hours should fail the minimum")
	}

	// Content but no contact
	bot = base()
	bot.Profile.Services = []string{"a", "b", "c", "d", "e", "f"}
	bot.Profile.Phone = ""
	if kbMinimumMet(cfg, bot) {
		t.Fatalf("no contact should fail the minimum")
	}
}

func TestBuildLaunchChecklistReady(t *testing.T) {
	bot := &models.Bot{
		Name:           "Test Bot",
		WebsiteScanned: true,
	}
	bot.Profile.BusinessName = "Bright Smile Dental"
	bot.Profile.Phone = "555-0100"
	bot.Profile.BookingURL = "https://brightsmile.test/book"
	bot.Profile.Hours = []models.OperatingHours{{Day: "monday", Open: "09:00", Close: "17:00"}}
	bot.Profile.Services = []string{"a", "b", "c", "d", "e", "f"}

	qa := &models.QAResults{Passed: true, RanAt: time.Now()}

	checklist := BuildLaunchChecklist(testConfig(), bot, qa)

	if !checklist.Ready {
		t.Fatalf("fully configured bot should be ready: %+v", checklist.Items)
	}
	for _, item := range checklist.Items {
		if item.Status == CheckFail {
			t.Errorf("unexpected fail item %q: %s", item.Key, item.Detail)
		}
	}
}

func TestBuildLaunchChecklistFailures(t *testing.T) {
	bot := &models.Bot{Name: "Test Bot"}
	checklist := BuildLaunchChecklist(testConfig(), bot, nil)

	if checklist.Ready {
		t.Fatalf("empty bot should not be ready")
	}

	status := map[string]string{}
	for _, item := range checklist.Items {
		status[item.Key] = item.Status
	}

	if status["business_name"] != CheckFail {
		t.Errorf("business_name = %s, want fail", status["business_name"])
	}
	if status["kb_minimum"] != CheckFail {
		t.Errorf("kb_minimum = %s, want fail", status["kb_minimum"])
	}
	if status["contact"] != CheckFail {
		t.Errorf("contact = %s, want fail", status["contact"])
	}
	if status["qa_gate"] != CheckFail {
		t.Errorf("qa_gate = %s, want fail (never run)", status["qa_gate"])
	}
	// A skipped scan is a warning, not a blocker.
	if status["website_scanned"] != CheckWarn {
		t.Errorf("website_scanned = %s, want warn", status["website_scanned"])
	}
	// Empty booking URL means internal capture, which passes.
	if status["booking_url"] != CheckPass {
		t.Errorf("booking_url = %s, want pass", status["booking_url"])
	}
}

func TestBuildLaunchChecklistBookingWarningDoesNotBlock(t *testing.T) {
	bot := &models.Bot{Name: "Test Bot", WebsiteScanned: true}
	bot.Profile.BusinessName = "Acme"
	bot.Profile.Email = "ops@acme.test"
	bot.Profile.BookingURL = "http://acme.test/book"
	bot.Profile.Hours = []models.OperatingHours{{Day: "monday", Open: "09:00", Close: "17:00"}}
	bot.Profile.Services = []string{"a", "b", "c", "d", "e", "f"}

	checklist := BuildLaunchChecklist(testConfig(), bot, &models.QAResults{Passed: true})

	if !checklist.Ready {
		t.Fatalf("non-HTTPS booking URL should warn, not block: %+v", checklist.Items)
	}
}

func TestBuildLaunchChecklistFailedQABlocks(t *testing.T) {
	bot := &models.Bot{Name: "Test Bot", WebsiteScanned: true}
	bot.Profile.BusinessName = "Acme"
	bot.Profile.Email = "ops@acme.test"
	bot.Profile.Hours = []models.OperatingHours{{Day: "monday", Open: "09:00", Close: "17:00"}}
	bot.Profile.Services = []string{"a", "b", "c", "d", "e", "f"}

	checklist := BuildLaunchChecklist(testConfig(), bot, &models.QAResults{Passed: false, Errors: []string{"missing crisis response"}})

	if checklist.Ready {
		t.Fatalf("failed QA run should block readiness")
	}
}
