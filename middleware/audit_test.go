package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func auditTestContext(t *testing.T, method, path string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, nil)
	return c, w
}

func TestCreateAuditEventFailureRecordsStatusCode(t *testing.T) {
	c, _ := auditTestContext(t, http.MethodPost, "/api/agency-onboarding/go-live")
	c.Writer.WriteHeader(http.StatusConflict)

	event := createAuditEvent(c, nil, time.Now(), "req-1")

	if event.Success {
		t.Error("Success = true for a 409 response")
	}
	if event.ErrorMessage != "HTTP 409" {
		t.Errorf("ErrorMessage = %q, want %q", event.ErrorMessage, "HTTP 409")
	}
}

func TestCreateAuditEventSuccessHasNoErrorMessage(t *testing.T) {
	c, _ := auditTestContext(t, http.MethodGet, "/api/notification-logs")
	c.Writer.WriteHeader(http.StatusOK)

	event := createAuditEvent(c, nil, time.Now(), "req-2")

	if !event.Success {
		t.Error("Success = false for a 200 response")
	}
	if event.ErrorMessage != "" {
		t.Errorf("ErrorMessage = %q, want empty", event.ErrorMessage)
	}
	if event.Action != "READ" {
		t.Errorf("Action = %q, want READ", event.Action)
	}
	if event.Resource != "notification_log" {
		t.Errorf("Resource = %q, want notification_log", event.Resource)
	}
}

func TestExtractChangesFromBodyRedactsSensitiveFields(t *testing.T) {
	body := []byte(`{"name":"Bright Smiles","password":"hunter2","embed_secret":"abc"}`)

	changes := extractChangesFromBody(body, "CREATE")

	if changes["name"] != "Bright Smiles" {
		t.Errorf("name = %v, want passthrough", changes["name"])
	}
	if changes["password"] != "[REDACTED]" {
		t.Errorf("password = %v, want [REDACTED]", changes["password"])
	}
	if changes["embed_secret"] != "[REDACTED]" {
		t.Errorf("embed_secret = %v, want [REDACTED]", changes["embed_secret"])
	}
}

func TestExtractChangesFromBodySkipsReads(t *testing.T) {
	if changes := extractChangesFromBody([]byte(`{"a":1}`), "READ"); changes != nil {
		t.Errorf("changes = %v, want nil for READ", changes)
	}
}
