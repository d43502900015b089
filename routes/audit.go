package routes

import (
	"net/http"
	"strconv"
	"time"

	"chatbot-admin-console/middleware"
	"chatbot-admin-console/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
)

// SetupAuditRoutes exposes the hash-chained audit trail to superadmins.
func SetupAuditRoutes(router *gin.Engine, auditor *models.AuditLogger, authMiddleware *middleware.AuthMiddleware, roleMiddleware *middleware.RoleMiddleware) {
	group := router.Group("/api/audit")
	group.Use(authMiddleware.RequireAuth(), roleMiddleware.SuperAdminGuard())

	group.GET("/logs", func(c *gin.Context) {
		page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
		if err != nil || page < 1 {
			page = 1
		}
		pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "20"))
		if err != nil || pageSize < 1 || pageSize > 100 {
			pageSize = 20
		}

		filter := bson.M{}
		if workspaceID := c.Query("workspace_id"); workspaceID != "" {
			filter["workspace_id"] = workspaceID
		}
		if userID := c.Query("user_id"); userID != "" {
			filter["user_id"] = userID
		}
		if action := c.Query("action"); action != "" {
			filter["action"] = action
		}
		if resource := c.Query("resource"); resource != "" {
			filter["resource"] = resource
		}

		timeFilter := bson.M{}
		if v := c.Query("start_time"); v != "" {
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				timeFilter["$gte"] = t
			}
		}
		if v := c.Query("end_time"); v != "" {
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				timeFilter["$lte"] = t
			}
		}
		if len(timeFilter) > 0 {
			filter["timestamp"] = timeFilter
		}

		events, total, err := auditor.QueryAuditLogs(filter, page, pageSize)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error_code": "query_failed",
				"message":    "Failed to query audit logs",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"events":      events,
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
		})
	})

	// Verify the hash chain for one workspace
	group.GET("/verify/:workspaceId", func(c *gin.Context) {
		valid, err := auditor.VerifyChain(c.Param("workspaceId"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error_code": "verify_failed",
				"message":    "Failed to verify audit chain",
				"details":    gin.H{"error": err.Error()},
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"workspace_id": c.Param("workspaceId"),
			"chain_valid":  valid,
		})
	})
}
