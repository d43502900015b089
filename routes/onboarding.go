package routes

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"chatbot-admin-console/internal/ai"
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

// applyDraftConfig copies the wizard request onto the bot and merges the
// selected suggestions from a completed website import when one is attached.
func applyDraftConfig(bot *models.Bot, req *models.GenerateDraftRequest, imp *models.WebsiteImportData) {
	bot.Name = req.Name
	bot.Profile = req.Profile
	bot.Rules = req.Rules
	bot.FAQs = req.FAQs
	bot.Policies = req.Policies
	bot.Automations = req.Automations
	bot.Notifications = req.Notifications
	bot.UpdatedAt = time.Now()

	if imp != nil {
		services.ApplySelected(bot, imp)
	}
}

// SetupOnboardingRoutes wires the agency onboarding wizard: draft
// generation, the QA gate, and go-live. The lifecycle moves strictly
// forward (draft -> qa_pending -> qa_passed -> live); a failed engine call
// never changes the stored status.
func SetupOnboardingRoutes(router *gin.Engine, cfg *config.Config, mongoClient *mongo.Client, authMiddleware *middleware.AuthMiddleware, roleMiddleware *middleware.RoleMiddleware, drafter *ai.PromptDrafter, qaGate *services.QAGateClient, asynqClient *asynq.Client, metrics *telemetry.Metrics) {
	group := router.Group("/api/agency-onboarding")
	group.Use(authMiddleware.RequireAuth(), roleMiddleware.AdminGuard())

	db := mongoClient.Database(cfg.DBName)
	botsCollection := db.Collection("bots")
	draftsCollection := db.Collection("onboarding_drafts")
	importsCollection := db.Collection("website_imports")

	findDraftByBot := func(ctx context.Context, botID primitive.ObjectID) (*models.OnboardingDraft, error) {
		var draft models.OnboardingDraft
		err := draftsCollection.FindOne(ctx, bson.M{"bot_id": botID}).Decode(&draft)
		if err != nil {
			return nil, err
		}
		return &draft, nil
	}

	// loadImportData resolves the optional import_id on a wizard request.
	// Returns (nil, true) when no import is named.
	loadImportData := func(c *gin.Context, importID string) (*models.WebsiteImportData, bool) {
		if importID == "" {
			return nil, true
		}

		id, err := parseObjectID(importID)
		if err != nil {
			utils.RespondWithBadRequest(c, "Invalid import ID format", nil)
			return nil, false
		}

		var imp models.WebsiteImport
		if err := importsCollection.FindOne(context.Background(), bson.M{"_id": id}).Decode(&imp); err != nil {
			utils.RespondWithNotFound(c, "Website import not found")
			return nil, false
		}
		if imp.Status != models.ImportStatusCompleted || imp.Data == nil {
			utils.RespondWithConflict(c, "Website import has no completed scan data", gin.H{"status": imp.Status})
			return nil, false
		}

		return imp.Data, true
	}

	buildEmbedSnippet := func(bot *models.Bot) models.EmbedSnippet {
		return models.EmbedSnippet{
			BotID:       bot.ID.Hex(),
			EmbedSecret: bot.EmbedSecret,
			ScriptTag: fmt.Sprintf(`<script src="%s/widget.js" data-bot-id="%s" data-embed-secret="%s" async></script>`,
				cfg.WidgetBaseURL, bot.ID.Hex(), bot.EmbedSecret),
			IframeTag: fmt.Sprintf(`<iframe src="%s/embed/%s" width="400" height="600" frameborder="0"></iframe>`,
				cfg.WidgetBaseURL, bot.ID.Hex()),
		}
	}

	runQAGate := func(c *gin.Context, bot *models.Bot, draft *models.OnboardingDraft) (*models.OnboardingDraft, bool) {
		ctx, cancel := utils.WithLongTimeout(c.Request.Context())
		defer cancel()

		qaResults, err := qaGate.Validate(ctx, bot)
		if err != nil {
			// Transport failure: status stays where it was
			utils.RespondWithBadGateway(c, "QA gate is unreachable; draft status unchanged", gin.H{"error": err.Error()})
			return nil, false
		}

		metrics.RecordQAGateRun(qaResults.Passed)

		if err := draft.ApplyQAResult(*qaResults); err != nil {
			utils.RespondWithConflict(c, "Bot is already live", nil)
			return nil, false
		}

		if _, err := draftsCollection.UpdateOne(context.Background(),
			bson.M{"_id": draft.ID},
			bson.M{"$set": bson.M{
				"status":     draft.Status,
				"qa_results": draft.QAResults,
				"updated_at": draft.UpdatedAt,
			}},
		); err != nil {
			utils.RespondWithInternalError(c, "Failed to store QA results", nil)
			return nil, false
		}

		return draft, true
	}

	performGoLive := func(c *gin.Context, bot *models.Bot, draft *models.OnboardingDraft) (models.EmbedSnippet, bool) {
		snippet := buildEmbedSnippet(bot)
		if err := draft.GoLive(snippet.ScriptTag); err != nil {
			switch {
			case errors.Is(err, models.ErrAlreadyLive):
				utils.RespondWithConflict(c, "Bot is already live", nil)
			case errors.Is(err, models.ErrNotQAPassed):
				utils.RespondWithConflict(c, "Draft must pass the QA gate before going live",
					gin.H{"status": draft.Status})
			default:
				utils.RespondWithInternalError(c, "Failed to transition draft", nil)
			}
			return snippet, false
		}

		if _, err := draftsCollection.UpdateOne(context.Background(),
			bson.M{"_id": draft.ID},
			bson.M{"$set": bson.M{
				"status":       draft.Status,
				"embed_code":   draft.EmbedCode,
				"updated_at":   draft.UpdatedAt,
				"went_live_at": draft.WentLiveAt,
			}},
		); err != nil {
			utils.RespondWithInternalError(c, "Failed to store go-live", nil)
			return snippet, false
		}

		if _, err := botsCollection.UpdateOne(context.Background(),
			bson.M{"_id": bot.ID},
			bson.M{"$set": bson.M{"status": models.DraftStatusLive, "updated_at": time.Now()}},
		); err != nil {
			utils.RespondWithInternalError(c, "Failed to activate bot", nil)
			return snippet, false
		}

		metrics.RecordGoLive()

		// Owner notification is best-effort; the go-live itself is done
		if task, err := queue.NewNotifyDispatchTask(bot.ID.Hex(), models.NotifyTypeGoLive, map[string]string{
			"bot_name": bot.Name,
		}); err == nil {
			asynqClient.Enqueue(task)
		}

		return snippet, true
	}

	// Generate (or regenerate) the draft bot setup. Regenerating is only
	// allowed while the draft has not yet passed QA.
	group.POST("/generate-draft-setup", func(c *gin.Context) {
		var req models.GenerateDraftRequest
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
		if !requireWorkspaceOwnership(c, workspaceID) {
			return
		}

		var bot models.Bot
		var draft *models.OnboardingDraft

		if req.BotID != "" {
			botID, err := parseObjectID(req.BotID)
			if err != nil {
				utils.RespondWithBadRequest(c, "Invalid bot ID format", nil)
				return
			}
			if err := botsCollection.FindOne(context.Background(), bson.M{"_id": botID}).Decode(&bot); err != nil {
				utils.RespondWithNotFound(c, "Bot not found")
				return
			}
			if !requireWorkspaceOwnership(c, bot.WorkspaceID) {
				return
			}
			if d, err := findDraftByBot(context.Background(), botID); err == nil {
				if !d.CanRegenerate() {
					utils.RespondWithConflict(c, "Draft already passed QA; regenerating would discard the result",
						gin.H{"status": d.Status})
					return
				}
				draft = d
			}
		}

		impData, ok := loadImportData(c, req.ImportID)
		if !ok {
			return
		}

		// Apply the request config, merging import suggestions when named
		bot.WorkspaceID = workspaceID
		applyDraftConfig(&bot, &req, impData)

		// Draft the system prompt unless the caller supplied one
		if req.SystemPrompt != "" {
			bot.SystemPrompt = req.SystemPrompt
		} else {
			ctx, cancel := utils.WithLongTimeout(c.Request.Context())
			bot.SystemPrompt = drafter.DraftSystemPrompt(ctx, &bot)
			cancel()
		}

		if bot.ID.IsZero() {
			embedSecret, err := utils.GenerateEmbedSecret()
			if err != nil {
				utils.RespondWithInternalError(c, "Failed to generate embed secret", nil)
				return
			}
			bot.EmbedSecret = embedSecret
			bot.Status = "inactive"
			bot.CreatedAt = time.Now()

			result, err := botsCollection.InsertOne(context.Background(), bot)
			if err != nil {
				utils.RespondWithInternalError(c, "Failed to create bot", nil)
				return
			}
			bot.ID = result.InsertedID.(primitive.ObjectID)
		} else {
			if _, err := botsCollection.ReplaceOne(context.Background(), bson.M{"_id": bot.ID}, bot); err != nil {
				utils.RespondWithInternalError(c, "Failed to update bot", nil)
				return
			}
		}

		// Upsert the draft record back to draft status
		now := time.Now()
		if draft == nil {
			draft = &models.OnboardingDraft{
				WorkspaceID: workspaceID,
				BotID:       bot.ID,
				Status:      models.DraftStatusDraft,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			result, err := draftsCollection.InsertOne(context.Background(), draft)
			if err != nil {
				utils.RespondWithInternalError(c, "Failed to create draft", nil)
				return
			}
			draft.ID = result.InsertedID.(primitive.ObjectID)
		} else {
			draft.Status = models.DraftStatusDraft
			draft.QAResults = nil
			draft.UpdatedAt = now
			if _, err := draftsCollection.UpdateOne(context.Background(),
				bson.M{"_id": draft.ID},
				bson.M{
					"$set":   bson.M{"status": draft.Status, "updated_at": now},
					"$unset": bson.M{"qa_results": ""},
				},
			); err != nil {
				utils.RespondWithInternalError(c, "Failed to update draft", nil)
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"draft": draft,
			"bot":   bot,
		})
	})

	// Run the QA gate explicitly
	group.POST("/run-qa-gate", func(c *gin.Context) {
		var req models.RunQAGateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		botID, err := parseObjectID(req.BotID)
		if err != nil {
			utils.RespondWithBadRequest(c, "Invalid bot ID format", nil)
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

		draft, err := findDraftByBot(context.Background(), botID)
		if err != nil {
			utils.RespondWithNotFound(c, "No onboarding draft for this bot")
			return
		}

		updated, ok := runQAGate(c, &bot, draft)
		if !ok {
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":     updated.Status,
			"qa_results": updated.QAResults,
		})
	})

	// Generate, run QA, and go live in one round-trip. Stops at qa_pending
	// when QA fails; go-live is only attempted from qa_passed.
	group.POST("/generate-and-verify", func(c *gin.Context) {
		var req models.GenerateDraftRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}
		if req.BotID == "" {
			utils.RespondWithBadRequest(c, "bot_id is required for generate-and-verify", nil)
			return
		}

		botID, err := parseObjectID(req.BotID)
		if err != nil {
			utils.RespondWithBadRequest(c, "Invalid bot ID format", nil)
			return
		}

		draft, err := findDraftByBot(context.Background(), botID)
		if err != nil {
			utils.RespondWithNotFound(c, "No onboarding draft for this bot")
			return
		}
		if !draft.CanRegenerate() {
			utils.RespondWithConflict(c, "Draft already passed QA; regenerating would discard the result",
				gin.H{"status": draft.Status})
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

		impData, ok := loadImportData(c, req.ImportID)
		if !ok {
			return
		}
		applyDraftConfig(&bot, &req, impData)

		if req.SystemPrompt != "" {
			bot.SystemPrompt = req.SystemPrompt
		} else {
			ctx, cancel := utils.WithLongTimeout(c.Request.Context())
			bot.SystemPrompt = drafter.DraftSystemPrompt(ctx, &bot)
			cancel()
		}

		if _, err := botsCollection.ReplaceOne(context.Background(), bson.M{"_id": bot.ID}, bot); err != nil {
			utils.RespondWithInternalError(c, "Failed to update bot", nil)
			return
		}

		updated, ok := runQAGate(c, &bot, draft)
		if !ok {
			return
		}

		// QA did not pass: stop at qa_pending, go-live is not attempted
		if !updated.CanGoLive() {
			c.JSON(http.StatusOK, gin.H{
				"status":     updated.Status,
				"qa_results": updated.QAResults,
				"bot":        bot,
			})
			return
		}

		snippet, ok := performGoLive(c, &bot, updated)
		if !ok {
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":       updated.Status,
			"qa_results":   updated.QAResults,
			"went_live_at": updated.WentLiveAt,
			"embed":        snippet,
			"bot":          bot,
		})
	})

	// Go live. Only reachable from qa_passed; returns the embed snippet.
	group.POST("/go-live", func(c *gin.Context) {
		var req models.GoLiveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		botID, err := parseObjectID(req.BotID)
		if err != nil {
			utils.RespondWithBadRequest(c, "Invalid bot ID format", nil)
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

		draft, err := findDraftByBot(context.Background(), botID)
		if err != nil {
			utils.RespondWithNotFound(c, "No onboarding draft for this bot")
			return
		}

		snippet, ok := performGoLive(c, &bot, draft)
		if !ok {
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":       draft.Status,
			"went_live_at": draft.WentLiveAt,
			"embed":        snippet,
		})
	})

	// Current onboarding status for a bot
	group.GET("/:botId/status", func(c *gin.Context) {
		botID, err := parseObjectID(c.Param("botId"))
		if err != nil {
			utils.RespondWithBadRequest(c, "Invalid bot ID format", nil)
			return
		}

		draft, err := findDraftByBot(context.Background(), botID)
		if err != nil {
			utils.RespondWithNotFound(c, "No onboarding draft for this bot")
			return
		}
		if !requireWorkspaceOwnership(c, draft.WorkspaceID) {
			return
		}

		resp := gin.H{
			"status":     draft.Status,
			"qa_results": draft.QAResults,
			"updated_at": draft.UpdatedAt,
		}
		if draft.Status == models.DraftStatusLive {
			resp["went_live_at"] = draft.WentLiveAt
			resp["embed_code"] = draft.EmbedCode
		}

		c.JSON(http.StatusOK, resp)
	})

}
