package routes

import (
	"context"
	"net/http"
	"time"

	"chatbot-admin-console/internal/config"
	"chatbot-admin-console/middleware"
	"chatbot-admin-console/models"
	"chatbot-admin-console/services"
	"chatbot-admin-console/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SetupSuperAdminRoutes wires the workspace directory and bot configuration
// endpoints. Everything here requires the superadmin role.
func SetupSuperAdminRoutes(router *gin.Engine, cfg *config.Config, mongoClient *mongo.Client, authMiddleware *middleware.AuthMiddleware, roleMiddleware *middleware.RoleMiddleware, verifier *services.EmbedVerifier) {
	group := router.Group("/api/super-admin")
	group.Use(authMiddleware.RequireAuth(), roleMiddleware.SuperAdminGuard())

	db := mongoClient.Database(cfg.DBName)
	workspacesCollection := db.Collection("workspaces")
	botsCollection := db.Collection("bots")
	draftsCollection := db.Collection("onboarding_drafts")

	// List workspaces with bot counts
	group.GET("/workspaces", func(c *gin.Context) {
		page, limit, skip := parsePagination(c)

		filter := bson.M{}
		if status := c.Query("status"); status != "" {
			filter["status"] = status
		}

		total, err := workspacesCollection.CountDocuments(context.Background(), filter)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to count workspaces", nil)
			return
		}

		cursor, err := workspacesCollection.Find(context.Background(), filter,
			options.Find().SetSort(bson.M{"created_at": -1}).SetSkip(int64(skip)).SetLimit(int64(limit)))
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to retrieve workspaces", nil)
			return
		}
		defer cursor.Close(context.Background())

		overviews := []models.WorkspaceOverview{}
		for cursor.Next(context.Background()) {
			var ws models.Workspace
			if err := cursor.Decode(&ws); err != nil {
				continue
			}

			totalBots, _ := botsCollection.CountDocuments(context.Background(), bson.M{"workspace_id": ws.ID})
			liveBots, _ := botsCollection.CountDocuments(context.Background(), bson.M{"workspace_id": ws.ID, "status": models.DraftStatusLive})

			overviews = append(overviews, models.WorkspaceOverview{
				Workspace: ws,
				TotalBots: int(totalBots),
				LiveBots:  int(liveBots),
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"workspaces":  overviews,
			"page":        page,
			"limit":       limit,
			"total":       total,
			"total_pages": totalPages(total, limit),
		})
	})

	// Create workspace; slug must be unique
	group.POST("/workspaces", func(c *gin.Context) {
		var req models.CreateWorkspaceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error_code": "invalid_input",
				"message":    "Invalid request data",
				"details":    gin.H{"error": err.Error()},
			})
			return
		}

		var existing models.Workspace
		if err := workspacesCollection.FindOne(context.Background(), bson.M{"slug": req.Slug}).Decode(&existing); err == nil {
			c.JSON(http.StatusConflict, gin.H{
				"error_code": "slug_exists",
				"message":    "A workspace with this slug already exists",
			})
			return
		}

		status := req.Status
		if status == "" {
			status = "active"
		}

		workspace := models.Workspace{
			Slug:         req.Slug,
			Name:         req.Name,
			Status:       status,
			ContactEmail: req.ContactEmail,
			ContactPhone: req.ContactPhone,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}

		result, err := workspacesCollection.InsertOne(context.Background(), workspace)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to create workspace", nil)
			return
		}

		workspace.ID = result.InsertedID.(primitive.ObjectID)
		c.JSON(http.StatusCreated, workspace)
	})

	// Get workspace by slug
	group.GET("/workspaces/:slug", func(c *gin.Context) {
		var workspace models.Workspace
		if err := workspacesCollection.FindOne(context.Background(), bson.M{"slug": c.Param("slug")}).Decode(&workspace); err != nil {
			utils.RespondWithNotFound(c, "Workspace not found")
			return
		}

		totalBots, _ := botsCollection.CountDocuments(context.Background(), bson.M{"workspace_id": workspace.ID})
		liveBots, _ := botsCollection.CountDocuments(context.Background(), bson.M{"workspace_id": workspace.ID, "status": models.DraftStatusLive})

		c.JSON(http.StatusOK, models.WorkspaceOverview{
			Workspace: workspace,
			TotalBots: int(totalBots),
			LiveBots:  int(liveBots),
		})
	})

	// Update workspace (partial; slug is immutable)
	group.PUT("/workspaces/:slug", func(c *gin.Context) {
		var req models.UpdateWorkspaceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		set := bson.M{"updated_at": time.Now()}
		if req.Name != nil {
			set["name"] = *req.Name
		}
		if req.Status != nil {
			set["status"] = *req.Status
		}
		if req.ContactEmail != nil {
			set["contact_email"] = *req.ContactEmail
		}
		if req.ContactPhone != nil {
			set["contact_phone"] = *req.ContactPhone
		}

		result := workspacesCollection.FindOneAndUpdate(context.Background(),
			bson.M{"slug": c.Param("slug")},
			bson.M{"$set": set},
			options.FindOneAndUpdate().SetReturnDocument(options.After))

		var workspace models.Workspace
		if err := result.Decode(&workspace); err != nil {
			utils.RespondWithNotFound(c, "Workspace not found")
			return
		}

		c.JSON(http.StatusOK, workspace)
	})

	// Create bot under a workspace
	group.POST("/bots", func(c *gin.Context) {
		var req models.CreateBotRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		workspaceID, err := parseObjectID(req.WorkspaceID)
		if err != nil {
			utils.RespondWithBadRequest(c, "Invalid workspace ID format", nil)
			return
		}

		var workspace models.Workspace
		if err := workspacesCollection.FindOne(context.Background(), bson.M{"_id": workspaceID}).Decode(&workspace); err != nil {
			utils.RespondWithNotFound(c, "Workspace not found")
			return
		}

		embedSecret, err := utils.GenerateEmbedSecret()
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to generate embed secret", nil)
			return
		}

		bot := models.Bot{
			WorkspaceID:   workspaceID,
			Name:          req.Name,
			Profile:       req.Profile,
			Rules:         req.Rules,
			FAQs:          req.FAQs,
			Policies:      req.Policies,
			Automations:   req.Automations,
			Notifications: req.Notifications,
			SystemPrompt:  req.SystemPrompt,
			EmbedSecret:   embedSecret,
			Status:        "inactive",
			CreatedAt:     time.Now(),
			UpdatedAt:     time.Now(),
		}

		result, err := botsCollection.InsertOne(context.Background(), bot)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to create bot", nil)
			return
		}

		bot.ID = result.InsertedID.(primitive.ObjectID)
		c.JSON(http.StatusCreated, bot)
	})

	// Get full bot config
	group.GET("/bots/:botId", func(c *gin.Context) {
		botID, err := parseObjectID(c.Param("botId"))
		if err != nil {
			utils.RespondWithBadRequest(c, "Invalid bot ID format", nil)
			return
		}

		var bot models.Bot
		if err := botsCollection.FindOne(context.Background(), bson.M{"_id": botID}).Decode(&bot); err != nil {
			utils.RespondWithNotFound(c, "Bot not found")
			return
		}

		c.JSON(http.StatusOK, bot)
	})

	// Wholesale replace the bot config. Last write wins; no field-level
	// merge is attempted.
	group.PUT("/bots/:botId", func(c *gin.Context) {
		botID, err := parseObjectID(c.Param("botId"))
		if err != nil {
			utils.RespondWithBadRequest(c, "Invalid bot ID format", nil)
			return
		}

		var req models.UpdateBotRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		result := botsCollection.FindOneAndUpdate(context.Background(),
			bson.M{"_id": botID},
			bson.M{"$set": bson.M{
				"name":          req.Name,
				"profile":       req.Profile,
				"rules":         req.Rules,
				"faqs":          req.FAQs,
				"policies":      req.Policies,
				"automations":   req.Automations,
				"notifications": req.Notifications,
				"system_prompt": req.SystemPrompt,
				"updated_at":    time.Now(),
			}},
			options.FindOneAndUpdate().SetReturnDocument(options.After))

		var bot models.Bot
		if err := result.Decode(&bot); err != nil {
			utils.RespondWithNotFound(c, "Bot not found")
			return
		}

		c.JSON(http.StatusOK, bot)
	})

	// List bots in a workspace
	group.GET("/workspaces/:slug/bots", func(c *gin.Context) {
		var workspace models.Workspace
		if err := workspacesCollection.FindOne(context.Background(), bson.M{"slug": c.Param("slug")}).Decode(&workspace); err != nil {
			utils.RespondWithNotFound(c, "Workspace not found")
			return
		}

		cursor, err := botsCollection.Find(context.Background(), bson.M{"workspace_id": workspace.ID},
			options.Find().SetSort(bson.M{"created_at": -1}))
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to retrieve bots", nil)
			return
		}
		defer cursor.Close(context.Background())

		bots := []models.Bot{}
		if err := cursor.All(context.Background(), &bots); err != nil {
			utils.RespondWithInternalError(c, "Failed to decode bots", nil)
			return
		}

		c.JSON(http.StatusOK, gin.H{"bots": bots, "total": len(bots)})
	})

	// Launch checklist for a bot
	group.GET("/bots/:botId/launch-checklist", func(c *gin.Context) {
		botID, err := parseObjectID(c.Param("botId"))
		if err != nil {
			utils.RespondWithBadRequest(c, "Invalid bot ID format", nil)
			return
		}

		var bot models.Bot
		if err := botsCollection.FindOne(context.Background(), bson.M{"_id": botID}).Decode(&bot); err != nil {
			utils.RespondWithNotFound(c, "Bot not found")
			return
		}

		var qa *models.QAResults
		var draft models.OnboardingDraft
		if err := draftsCollection.FindOne(context.Background(), bson.M{"bot_id": botID}).Decode(&draft); err == nil {
			qa = draft.QAResults
		}

		c.JSON(http.StatusOK, services.BuildLaunchChecklist(cfg, &bot, qa))
	})

	// Check whether the embed snippet is installed on the client's site
	group.POST("/bots/:botId/verify-embed", func(c *gin.Context) {
		botID, err := parseObjectID(c.Param("botId"))
		if err != nil {
			utils.RespondWithBadRequest(c, "Invalid bot ID format", nil)
			return
		}

		var bot models.Bot
		if err := botsCollection.FindOne(context.Background(), bson.M{"_id": botID}).Decode(&bot); err != nil {
			utils.RespondWithNotFound(c, "Bot not found")
			return
		}

		pageURL := c.Query("url")
		if pageURL == "" {
			pageURL = bot.Profile.Website
		}
		if pageURL == "" {
			utils.RespondWithBadRequest(c, "No page URL to check; set the bot's website or pass ?url=", nil)
			return
		}

		ctx, cancel := utils.WithLongTimeout(c.Request.Context())
		defer cancel()

		result, err := verifier.Verify(ctx, pageURL, bot.ID.Hex())
		if err != nil {
			utils.RespondWithBadGateway(c, "Failed to fetch the client page", gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, result)
	})
}
