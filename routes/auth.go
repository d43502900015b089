package routes

import (
	"context"
	"net/http"
	"time"

	"chatbot-admin-console/internal/auth"
	"chatbot-admin-console/internal/config"
	"chatbot-admin-console/middleware"
	"chatbot-admin-console/models"
	"chatbot-admin-console/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func SetupAuthRoutes(router *gin.Engine, cfg *config.Config, mongoClient *mongo.Client, rdb *redis.Client, authMiddleware *middleware.AuthMiddleware) {
	authGroup := router.Group("/api/auth")

	db := mongoClient.Database(cfg.DBName)
	usersCollection := db.Collection("users")

	setTokenCookies := func(c *gin.Context, pair *auth.TokenPair) {
		secure := cfg.GinMode == "release"
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie("access_token", pair.AccessToken,
			int(time.Until(pair.AccessExp).Seconds()), "/", "", secure, true)
		c.SetCookie("refresh_token", pair.RefreshToken,
			int(time.Until(pair.RefreshExp).Seconds()), "/", "", secure, true)
	}

	// Login endpoint
	authGroup.POST("/login", func(c *gin.Context) {
		var req models.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error_code": "invalid_input",
				"message":    "Invalid request data",
				"details":    gin.H{"error": err.Error()},
			})
			return
		}

		var user models.User
		if err := usersCollection.FindOne(context.Background(), bson.M{"username": req.Username}).Decode(&user); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error_code": "invalid_credentials",
				"message":    "Invalid username or password",
			})
			return
		}

		if !utils.CheckPassword(req.Password, user.PasswordHash) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error_code": "invalid_credentials",
				"message":    "Invalid username or password",
			})
			return
		}

		workspaceID := ""
		if user.WorkspaceID != nil {
			workspaceID = user.WorkspaceID.Hex()
		}

		tokenPair, err := auth.IssueTokenPair(user.ID.Hex(), workspaceID, user.Role, rdb)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to issue tokens", nil)
			return
		}

		setTokenCookies(c, tokenPair)

		c.JSON(http.StatusOK, gin.H{
			"access_token":  tokenPair.AccessToken,
			"refresh_token": tokenPair.RefreshToken,
			"expires_at":    tokenPair.AccessExp,
			"user": models.UserInfo{
				ID:       user.ID.Hex(),
				Username: user.Username,
				Name:     user.Name,
				Email:    user.Email,
				Role:     user.Role,
			},
		})
	})

	// Refresh endpoint: rotate the refresh token and issue a new pair
	authGroup.POST("/refresh", func(c *gin.Context) {
		refreshToken, err := c.Cookie("refresh_token")
		if refreshToken == "" || err != nil {
			var body struct {
				RefreshToken string `json:"refresh_token"`
			}
			if err := c.ShouldBindJSON(&body); err == nil {
				refreshToken = body.RefreshToken
			}
		}

		if refreshToken == "" {
			utils.RespondWithUnauthorized(c, "Refresh token is required")
			return
		}

		claims, err := auth.ValidateRefreshToken(refreshToken, rdb)
		if err != nil {
			utils.RespondWithUnauthorized(c, "Invalid or expired refresh token")
			return
		}

		// One-time use
		_ = auth.RevokeToken(claims.ID, true, rdb)

		tokenPair, err := auth.IssueTokenPair(claims.UserID, claims.WorkspaceID, claims.Role, rdb)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to issue tokens", nil)
			return
		}

		setTokenCookies(c, tokenPair)

		c.JSON(http.StatusOK, gin.H{
			"access_token":  tokenPair.AccessToken,
			"refresh_token": tokenPair.RefreshToken,
			"expires_at":    tokenPair.AccessExp,
		})
	})

	// Logout endpoint: revoke everything for the user
	authGroup.POST("/logout", authMiddleware.RequireAuth(), func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if err := auth.RevokeAllUserTokens(userID, rdb); err != nil {
			utils.RespondWithInternalError(c, "Failed to revoke tokens", nil)
			return
		}

		secure := cfg.GinMode == "release"
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie("access_token", "", -1, "/", "", secure, true)
		c.SetCookie("refresh_token", "", -1, "/", "", secure, true)

		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	})

	// Current user endpoint
	authGroup.GET("/me", authMiddleware.RequireAuth(), func(c *gin.Context) {
		userID := middleware.GetUserID(c)

		objID, err := parseObjectID(userID)
		if err != nil {
			utils.RespondWithUnauthorized(c, "Invalid user ID in token")
			return
		}

		var user models.User
		if err := usersCollection.FindOne(context.Background(), bson.M{"_id": objID}).Decode(&user); err != nil {
			utils.RespondWithNotFound(c, "User not found")
			return
		}

		c.JSON(http.StatusOK, models.UserInfo{
			ID:       user.ID.Hex(),
			Username: user.Username,
			Name:     user.Name,
			Email:    user.Email,
			Role:     user.Role,
		})
	})
}
