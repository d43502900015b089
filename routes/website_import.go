package routes

import (
	"context"
	"net/http"
	"time"

	"chatbot-admin-console/internal/config"
	"chatbot-admin-console/internal/queue"
	"chatbot-admin-console/internal/telemetry"
	"chatbot-admin-console/middleware"
	"chatbot-admin-console/models"
	"chatbot-admin-console/services"
	"chatbot-admin-console/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// SetupWebsiteImportRoutes wires the website scan/import workflow: start a
// scan, review the suggestions, toggle selections, and apply the merge.
func SetupWebsiteImportRoutes(router *gin.Engine, cfg *config.Config, mongoClient *mongo.Client, authMiddleware *middleware.AuthMiddleware, roleMiddleware *middleware.RoleMiddleware, scanClient *services.ScanClient, asynqClient *asynq.Client, metrics *telemetry.Metrics) {
	group := router.Group("/api/admin/website-import")
	group.Use(authMiddleware.RequireAuth(), roleMiddleware.AdminGuard())

	db := mongoClient.Database(cfg.DBName)
	importsCollection := db.Collection("website_imports")
	botsCollection := db.Collection("bots")

	runScanInline := func(c *gin.Context, imp *models.WebsiteImport, bot *models.Bot) {
		ctx, cancel := utils.WithLongTimeout(c.Request.Context())
		defer cancel()

		importsCollection.UpdateOne(ctx, bson.M{"_id": imp.ID},
			bson.M{"$set": bson.M{"status": models.ImportStatusScanning, "updated_at": time.Now()}})

		data, err := scanClient.Extract(ctx, imp.URL)
		if err != nil {
			importsCollection.UpdateOne(context.Background(), bson.M{"_id": imp.ID},
				bson.M{"$set": bson.M{"status": models.ImportStatusFailed, "error": err.Error(), "updated_at": time.Now()}})
			metrics.RecordWebsiteScan("failed")
			utils.RespondWithBadGateway(c, "Website scan failed", gin.H{"error": err.Error()})
			return
		}

		now := time.Now()
		imp.Status = models.ImportStatusCompleted
		imp.Data = data
		imp.CompletedAt = &now
		imp.UpdatedAt = now

		if _, err := importsCollection.UpdateOne(context.Background(), bson.M{"_id": imp.ID},
			bson.M{"$set": bson.M{"status": imp.Status, "data": data, "completed_at": now, "updated_at": now}}); err != nil {
			utils.RespondWithInternalError(c, "Failed to store scan results", nil)
			return
		}

		// Automatic safe merge: fill empty fields, append lists with dedup
		report := services.SafeMerge(bot, data)
		update := bson.M{
			"website_scanned": true,
			"last_scan_at":    now,
			"updated_at":      now,
		}
		if report.Changed() {
			update["profile"] = bot.Profile
			update["faqs"] = bot.FAQs
			update["policies"] = bot.Policies
		}
		botsCollection.UpdateOne(context.Background(), bson.M{"_id": bot.ID}, bson.M{"$set": update})

		metrics.RecordWebsiteScan("completed")
		c.JSON(http.StatusOK, gin.H{
			"import":       imp,
			"merge_report": report,
		})
	}

	// Start a scan. By default the scan runs as a background job; sync=true
	// runs it inline and returns the merged result.
	group.POST("", func(c *gin.Context) {
		var req models.StartImportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error_code": "invalid_input",
				"message":    "Invalid request data",
				"details":    gin.H{"error": err.Error()},
			})
			return
		}

		workspaceID, err := parseObjectID(req.WorkspaceID)
		if err != nil {
			utils.RespondWithBadRequest(c, "Invalid workspace ID format", nil)
			return
		}
		botID, err := parseObjectID(req.BotID)
		if err != nil {
			utils.RespondWithBadRequest(c, "Invalid bot ID format", nil)
			return
		}

		if !requireWorkspaceOwnership(c, workspaceID) {
			return
		}

		var bot models.Bot
		if err := botsCollection.FindOne(context.Background(), bson.M{"_id": botID}).Decode(&bot); err != nil {
			utils.RespondWithNotFound(c, "Bot not found")
			return
		}
		if !requireWorkspaceOwnership(c, bot.WorkspaceID) {
			return
		}

		imp := models.WebsiteImport{
			WorkspaceID: workspaceID,
			BotID:       botID,
			URL:         req.URL,
			Status:      models.ImportStatusPending,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}

		result, err := importsCollection.InsertOne(context.Background(), imp)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to create import", nil)
			return
		}
		imp.ID = result.InsertedID.(primitive.ObjectID)

		if req.Sync {
			runScanInline(c, &imp, &bot)
			return
		}

		task, err := queue.NewScanWebsiteTask(imp.ID.Hex(), botID.Hex(), req.URL)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to build scan task", nil)
			return
		}
		if _, err := asynqClient.Enqueue(task); err != nil {
			utils.RespondWithInternalError(c, "Failed to enqueue scan", gin.H{"error": err.Error()})
			return
		}

		metrics.RecordWebsiteScan("queued")
		c.JSON(http.StatusAccepted, gin.H{
			"import_id": imp.ID.Hex(),
			"status":    imp.Status,
		})
	})

	// Fetch an import with its suggestions
	group.GET("/:importId", func(c *gin.Context) {
		importID, err := parseObjectID(c.Param("importId"))
		if err != nil {
			utils.RespondWithBadRequest(c, "Invalid import ID format", nil)
			return
		}

		var imp models.WebsiteImport
		if err := importsCollection.FindOne(context.Background(), bson.M{"_id": importID}).Decode(&imp); err != nil {
			utils.RespondWithNotFound(c, "Website import not found")
			return
		}
		if !requireWorkspaceOwnership(c, imp.WorkspaceID) {
			return
		}

		c.JSON(http.StatusOK, imp)
	})

	// Toggle suggestion selections before applying
	group.PUT("/:importId/selection", func(c *gin.Context) {
		importID, err := parseObjectID(c.Param("importId"))
		if err != nil {
			utils.RespondWithBadRequest(c, "Invalid import ID format", nil)
			return
		}

		var req models.UpdateSelectionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		var imp models.WebsiteImport
		if err := importsCollection.FindOne(context.Background(), bson.M{"_id": importID}).Decode(&imp); err != nil {
			utils.RespondWithNotFound(c, "Website import not found")
			return
		}
		if !requireWorkspaceOwnership(c, imp.WorkspaceID) {
			return
		}
		if imp.Status != models.ImportStatusCompleted || imp.Data == nil {
			utils.RespondWithConflict(c, "Import has no completed scan data", gin.H{"status": imp.Status})
			return
		}

		applySelection(imp.Data, &req)

		if _, err := importsCollection.UpdateOne(context.Background(),
			bson.M{"_id": importID},
			bson.M{"$set": bson.M{"data": imp.Data, "updated_at": time.Now()}},
		); err != nil {
			utils.RespondWithInternalError(c, "Failed to store selection", nil)
			return
		}

		c.JSON(http.StatusOK, imp)
	})

	// Apply the selected suggestions to the bot. Selected scalars overwrite
	// existing values; lists are appended with dedup.
	group.POST("/:importId/apply", func(c *gin.Context) {
		importID, err := parseObjectID(c.Param("importId"))
		if err != nil {
			utils.RespondWithBadRequest(c, "Invalid import ID format", nil)
			return
		}

		var imp models.WebsiteImport
		if err := importsCollection.FindOne(context.Background(), bson.M{"_id": importID}).Decode(&imp); err != nil {
			utils.RespondWithNotFound(c, "Website import not found")
			return
		}
		if !requireWorkspaceOwnership(c, imp.WorkspaceID) {
			return
		}
		if imp.Status != models.ImportStatusCompleted || imp.Data == nil {
			utils.RespondWithConflict(c, "Import has no completed scan data", gin.H{"status": imp.Status})
			return
		}

		var bot models.Bot
		if err := botsCollection.FindOne(context.Background(), bson.M{"_id": imp.BotID}).Decode(&bot); err != nil {
			utils.RespondWithNotFound(c, "Bot not found")
			return
		}

		report := services.ApplySelected(&bot, imp.Data)

		now := time.Now()
		if _, err := botsCollection.UpdateOne(context.Background(),
			bson.M{"_id": bot.ID},
			bson.M{"$set": bson.M{
				"profile":         bot.Profile,
				"faqs":            bot.FAQs,
				"policies":        bot.Policies,
				"website_scanned": true,
				"updated_at":      now,
			}},
		); err != nil {
			utils.RespondWithInternalError(c, "Failed to apply suggestions", nil)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"merge_report": report,
			"bot":          bot,
		})
	})
}

// applySelection flips the Selected flags named in the request. Out-of-range
// list indices are ignored.
func applySelection(data *models.WebsiteImportData, req *models.UpdateSelectionRequest) {
	if req.BusinessName != nil {
		data.BusinessName.Selected = *req.BusinessName
	}
	if req.Phone != nil {
		data.Phone.Selected = *req.Phone
	}
	if req.Email != nil {
		data.Email.Selected = *req.Email
	}
	if req.BookingURL != nil {
		data.BookingURL.Selected = *req.BookingURL
	}

	for idx, sel := range req.Services {
		if idx >= 0 && idx < len(data.Services) {
			data.Services[idx].Selected = sel
		}
	}
	for idx, sel := range req.FAQs {
		if idx >= 0 && idx < len(data.FAQs) {
			data.FAQs[idx].Selected = sel
		}
	}
	for idx, sel := range req.Policies {
		if idx >= 0 && idx < len(data.Policies) {
			data.Policies[idx].Selected = sel
		}
	}
	for idx, sel := range req.SocialLinks {
		if idx >= 0 && idx < len(data.SocialLinks) {
			data.SocialLinks[idx].Selected = sel
		}
	}
}
