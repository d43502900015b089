package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func authedContext(t *testing.T, role, workspaceID string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	c.Set("role", role)
	c.Set("workspace_id", workspaceID)
	return c, w
}

func TestRequireWorkspaceOwnership(t *testing.T) {
	owned := primitive.NewObjectID()
	other := primitive.NewObjectID()

	tests := []struct {
		name        string
		role        string
		workspaceID string
		target      primitive.ObjectID
		allowed     bool
	}{
		{"admin in own workspace", "admin", owned.Hex(), owned, true},
		{"admin in another workspace", "admin", owned.Hex(), other, false},
		{"superadmin anywhere", "superadmin", "", other, true},
		{"admin with no workspace claim", "admin", "", owned, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := authedContext(t, tt.role, tt.workspaceID)

			got := requireWorkspaceOwnership(c, tt.target)
			if got != tt.allowed {
				t.Fatalf("requireWorkspaceOwnership() = %v, want %v", got, tt.allowed)
			}
			if !tt.allowed && w.Code != http.StatusForbidden {
				t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
			}
		})
	}
}

func TestParsePaginationBounds(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?page=0&limit=500", nil)

	page, limit, skip := parsePagination(c)
	if page != 1 || limit != 20 || skip != 0 {
		t.Errorf("parsePagination() = (%d, %d, %d), want (1, 20, 0)", page, limit, skip)
	}
}
