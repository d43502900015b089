package routes

import (
	"context"
	"net/http"
	"time"

	"chatbot-admin-console/internal/config"
	"chatbot-admin-console/middleware"
	"chatbot-admin-console/models"
	"chatbot-admin-console/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SetupNotificationLogRoutes exposes the immutable notification log. Read
// side only; entries are written by the dispatch worker.
func SetupNotificationLogRoutes(router *gin.Engine, cfg *config.Config, mongoClient *mongo.Client, authMiddleware *middleware.AuthMiddleware, roleMiddleware *middleware.RoleMiddleware) {
	group := router.Group("/api/notification-logs")
	group.Use(authMiddleware.RequireAuth(), roleMiddleware.AdminGuard(), roleMiddleware.RequireWorkspaceAccess())

	logsCollection := mongoClient.Database(cfg.DBName).Collection("notification_logs")

	group.GET("", func(c *gin.Context) {
		page, limit, skip := parsePagination(c)

		filter := bson.M{}
		if workspaceID := c.Query("workspace_id"); workspaceID != "" {
			objID, err := parseObjectID(workspaceID)
			if err != nil {
				utils.RespondWithBadRequest(c, "Invalid workspace ID format", nil)
				return
			}
			filter["workspace_id"] = objID
		} else if !middleware.IsSuperAdmin(c) {
			// Admins without an explicit filter see only their own workspace
			objID, err := parseObjectID(middleware.GetWorkspaceID(c))
			if err != nil {
				utils.RespondWithForbidden(c, "No workspace associated with this account")
				return
			}
			filter["workspace_id"] = objID
		}
		if botID := c.Query("bot_id"); botID != "" {
			objID, err := parseObjectID(botID)
			if err != nil {
				utils.RespondWithBadRequest(c, "Invalid bot ID format", nil)
				return
			}
			filter["bot_id"] = objID
		}
		if notifType := c.Query("type"); notifType != "" {
			filter["type"] = notifType
		}
		if status := c.Query("status"); status != "" {
			filter["status"] = status
		}
		if channel := c.Query("channel"); channel != "" {
			filter["channel"] = channel
		}
		if from := c.Query("from"); from != "" {
			if t, err := time.Parse(time.RFC3339, from); err == nil {
				filter["created_at"] = bson.M{"$gte": t}
			}
		}

		total, err := logsCollection.CountDocuments(context.Background(), filter)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to count notification logs", nil)
			return
		}

		cursor, err := logsCollection.Find(context.Background(), filter,
			options.Find().SetSort(bson.M{"created_at": -1}).SetSkip(int64(skip)).SetLimit(int64(limit)))
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to retrieve notification logs", nil)
			return
		}
		defer cursor.Close(context.Background())

		logs := []models.NotificationLog{}
		if err := cursor.All(context.Background(), &logs); err != nil {
			utils.RespondWithInternalError(c, "Failed to decode notification logs", nil)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"logs":        logs,
			"page":        page,
			"limit":       limit,
			"total":       total,
			"total_pages": totalPages(total, limit),
		})
	})
}
