package routes

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"chatbot-admin-console/internal/config"
	"chatbot-admin-console/middleware"
	"chatbot-admin-console/models"
	"chatbot-admin-console/services"
	"chatbot-admin-console/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const maxPolicyPDFSize = 15 << 20 // 15MB

// SetupPolicyImportRoutes lets an operator upload a policy PDF and append
// its extracted paragraphs to a bot's policies, deduplicated the same way
// website suggestions are.
func SetupPolicyImportRoutes(router *gin.Engine, cfg *config.Config, mongoClient *mongo.Client, authMiddleware *middleware.AuthMiddleware, roleMiddleware *middleware.RoleMiddleware) {
	group := router.Group("/api/admin/policy-import")
	group.Use(authMiddleware.RequireAuth(), roleMiddleware.AdminGuard())

	botsCollection := mongoClient.Database(cfg.DBName).Collection("bots")

	group.POST("/:botId", func(c *gin.Context) {
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
		if !requireWorkspaceOwnership(c, bot.WorkspaceID) {
			return
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			utils.RespondWithBadRequest(c, "A PDF file upload is required (field 'file')", nil)
			return
		}
		if fileHeader.Size > maxPolicyPDFSize {
			utils.RespondWithBadRequest(c, "PDF exceeds the 15MB limit", gin.H{"size": fileHeader.Size})
			return
		}
		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
			utils.RespondWithBadRequest(c, "Only PDF files are supported", nil)
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to read upload", nil)
			return
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxPolicyPDFSize))
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to read upload", nil)
			return
		}

		result, err := services.ExtractPoliciesFromPDF(data)
		if err != nil {
			utils.RespondWithBadRequest(c, "Could not extract text from the PDF", gin.H{"error": err.Error()})
			return
		}

		// Append with dedup against existing policies
		existing := make(map[string]bool, len(bot.Policies))
		for _, p := range bot.Policies {
			existing[strings.ToLower(strings.TrimSpace(p))] = true
		}
		added := 0
		for _, p := range result.Policies {
			key := strings.ToLower(strings.TrimSpace(p))
			if existing[key] {
				continue
			}
			existing[key] = true
			bot.Policies = append(bot.Policies, p)
			added++
		}

		if added > 0 {
			if _, err := botsCollection.UpdateOne(context.Background(),
				bson.M{"_id": bot.ID},
				bson.M{"$set": bson.M{"policies": bot.Policies, "updated_at": time.Now()}},
			); err != nil {
				utils.RespondWithInternalError(c, "Failed to store policies", nil)
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"pages":          result.Pages,
			"extracted":      len(result.Policies),
			"added":          added,
			"total_policies": len(bot.Policies),
		})
	})
}
