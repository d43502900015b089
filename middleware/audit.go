package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"time"

	"chatbot-admin-console/internal/auth"
	"chatbot-admin-console/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditMiddleware creates hash-chained audit log entries for all requests
func AuditMiddleware(auditor *models.AuditLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// Capture request body for audit (skip multipart and cap size)
		var bodyBytes []byte
		if c.Request.Body != nil {
			ct := c.Request.Header.Get("Content-Type")
			if !strings.HasPrefix(ct, "multipart/") {
				limited := io.LimitReader(c.Request.Body, 1<<20) // 1MB cap
				bodyBytes, _ = io.ReadAll(limited)
				c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			}
		}

		requestID := c.GetString("request_id")
		if requestID == "" {
			requestID = uuid.NewString()
			c.Set("request_id", requestID)
		}

		c.Next()

		event := createAuditEvent(c, bodyBytes, start, requestID)

		// Log asynchronously to not block the response
		auditor.LogAsync(event)
	}
}

func createAuditEvent(c *gin.Context, bodyBytes []byte, start time.Time, requestID string) *models.AuditEvent {
	event := &models.AuditEvent{
		Timestamp: start,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		RequestID: requestID,
		Success:   c.Writer.Status() < 400,
		CreatedAt: time.Now(),
	}

	if claims, exists := c.Get("claims"); exists {
		if cl, ok := claims.(*auth.Claims); ok {
			event.WorkspaceID = cl.WorkspaceID
			event.UserID = cl.UserID
		}
	}

	event.Action = mapHTTPMethodToAction(c.Request.Method)
	event.Resource, event.ResourceID = extractResourceFromPath(c)

	if !event.Success {
		event.ErrorMessage = "HTTP " + strconv.Itoa(c.Writer.Status())
	}

	event.Changes = extractChangesFromBody(bodyBytes, event.Action)

	return event
}

func mapHTTPMethodToAction(method string) string {
	switch method {
	case "GET":
		return "READ"
	case "POST":
		return "CREATE"
	case "PUT", "PATCH":
		return "UPDATE"
	case "DELETE":
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

func extractResourceFromPath(c *gin.Context) (string, string) {
	path := c.Request.URL.Path
	switch {
	case strings.HasPrefix(path, "/api/auth/"):
		return "auth", ""
	case strings.HasPrefix(path, "/api/agency-onboarding/"):
		return "draft", firstParam(c, "botId", "id")
	case strings.HasPrefix(path, "/api/admin/website-import"):
		return "import", firstParam(c, "importId", "id")
	case strings.HasPrefix(path, "/api/super-admin/workspaces"):
		return "workspace", firstParam(c, "slug", "id")
	case strings.HasPrefix(path, "/api/super-admin/bots"):
		return "bot", firstParam(c, "botId", "id")
	case strings.HasPrefix(path, "/api/notification-logs"):
		return "notification_log", ""
	case strings.HasPrefix(path, "/api/history/"):
		return "history", ""
	case strings.HasPrefix(path, "/api/hooks/"):
		return "hook", ""
	default:
		return "unknown", ""
	}
}

func firstParam(c *gin.Context, names ...string) string {
	for _, name := range names {
		if v := c.Param(name); v != "" {
			return v
		}
	}
	return ""
}

func extractChangesFromBody(bodyBytes []byte, action string) map[string]interface{} {
	if len(bodyBytes) == 0 || action == "READ" || action == "DELETE" {
		return nil
	}

	var body map[string]interface{}
	if err := json.Unmarshal(bodyBytes, &body); err != nil {
		return map[string]interface{}{
			"raw_body": string(bodyBytes),
		}
	}

	// Filter sensitive fields
	sensitiveFields := []string{"password", "token", "secret", "key"}
	filteredBody := make(map[string]interface{})

	for key, value := range body {
		if containsSensitiveField(key, sensitiveFields) {
			filteredBody[key] = "[REDACTED]"
		} else {
			filteredBody[key] = value
		}
	}

	return filteredBody
}

func containsSensitiveField(field string, sensitiveFields []string) bool {
	fieldLower := strings.ToLower(field)
	for _, sensitive := range sensitiveFields {
		if strings.Contains(fieldLower, sensitive) {
			return true
		}
	}
	return false
}
