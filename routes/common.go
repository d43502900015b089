package routes

import (
	"strconv"

	"chatbot-admin-console/middleware"
	"chatbot-admin-console/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func parseObjectID(hex string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(hex)
}

// requireWorkspaceOwnership rejects admins acting on resources owned by
// another workspace. Superadmins always pass.
func requireWorkspaceOwnership(c *gin.Context, workspaceID primitive.ObjectID) bool {
	if middleware.CanAccessWorkspace(c, workspaceID.Hex()) {
		return true
	}
	utils.RespondWithForbidden(c, "Access denied to this workspace")
	return false
}

// parsePagination reads page/limit query params with sane bounds.
func parsePagination(c *gin.Context) (page, limit, skip int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	skip = (page - 1) * limit
	return page, limit, skip
}

func totalPages(total int64, limit int) int64 {
	return (total + int64(limit) - 1) / int64(limit)
}
