package telemetry

import "testing"

func TestInitMetrics(t *testing.T) {
	m, err := InitMetrics()
	if err != nil {
		t.Fatalf("InitMetrics() error = %v", err)
	}
	if m.NotificationsSent == nil {
		t.Fatal("NotificationsSent counter not created")
	}
}

func TestRecordersAcceptAllStatuses(t *testing.T) {
	m, err := InitMetrics()
	if err != nil {
		t.Fatalf("InitMetrics() error = %v", err)
	}

	// Counters back onto the global meter provider; recording must not panic
	// for any status an attempt can end in.
	for _, status := range []string{"sent", "failed", "skipped"} {
		m.RecordNotification("lead", "email", status)
	}
	m.RecordWebsiteScan("completed")
	m.RecordQAGateRun(true)
	m.RecordGoLive()
}
