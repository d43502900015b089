package routes

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"chatbot-admin-console/internal/config"
	"chatbot-admin-console/internal/queue"
	"chatbot-admin-console/middleware"
	"chatbot-admin-console/models"
	"chatbot-admin-console/services"
	"chatbot-admin-console/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SetupHistoryRoutes wires read-only conversation/lead/appointment history
// plus Excel exports, and the ingestion hooks the chat runtime calls when a
// lead or appointment is captured.
func SetupHistoryRoutes(router *gin.Engine, cfg *config.Config, mongoClient *mongo.Client, authMiddleware *middleware.AuthMiddleware, roleMiddleware *middleware.RoleMiddleware, exportService *services.ExportService, asynqClient *asynq.Client) {
	db := mongoClient.Database(cfg.DBName)
	conversationsCollection := db.Collection("conversations")
	leadsCollection := db.Collection("leads")
	appointmentsCollection := db.Collection("appointments")

	group := router.Group("/api/history")
	group.Use(authMiddleware.RequireAuth(), roleMiddleware.AdminGuard(), roleMiddleware.RequireWorkspaceAccess())

	workspaceFilter := func(c *gin.Context) (bson.M, bool) {
		workspaceID := c.Query("workspace_id")
		if workspaceID == "" {
			utils.RespondWithBadRequest(c, "workspace_id query parameter is required", nil)
			return nil, false
		}
		objID, err := parseObjectID(workspaceID)
		if err != nil {
			utils.RespondWithBadRequest(c, "Invalid workspace ID format", nil)
			return nil, false
		}
		if !middleware.CanAccessWorkspace(c, workspaceID) {
			utils.RespondWithForbidden(c, "Access denied to this workspace")
			return nil, false
		}
		return bson.M{"workspace_id": objID}, true
	}

	listPaginated := func(c *gin.Context, col *mongo.Collection, sortField string, out interface{}) (gin.H, bool) {
		filter, ok := workspaceFilter(c)
		if !ok {
			return nil, false
		}
		if botID := c.Query("bot_id"); botID != "" {
			objID, err := parseObjectID(botID)
			if err != nil {
				utils.RespondWithBadRequest(c, "Invalid bot ID format", nil)
				return nil, false
			}
			filter["bot_id"] = objID
		}

		page, limit, skip := parsePagination(c)

		total, err := col.CountDocuments(context.Background(), filter)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to count records", nil)
			return nil, false
		}

		cursor, err := col.Find(context.Background(), filter,
			options.Find().SetSort(bson.M{sortField: -1}).SetSkip(int64(skip)).SetLimit(int64(limit)))
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to retrieve records", nil)
			return nil, false
		}
		defer cursor.Close(context.Background())

		if err := cursor.All(context.Background(), out); err != nil {
			utils.RespondWithInternalError(c, "Failed to decode records", nil)
			return nil, false
		}

		return gin.H{
			"page":        page,
			"limit":       limit,
			"total":       total,
			"total_pages": totalPages(total, limit),
		}, true
	}

	group.GET("/conversations", func(c *gin.Context) {
		conversations := []models.Conversation{}
		meta, ok := listPaginated(c, conversationsCollection, "started_at", &conversations)
		if !ok {
			return
		}
		meta["conversations"] = conversations
		c.JSON(http.StatusOK, meta)
	})

	group.GET("/leads", func(c *gin.Context) {
		leads := []models.Lead{}
		meta, ok := listPaginated(c, leadsCollection, "created_at", &leads)
		if !ok {
			return
		}
		meta["leads"] = leads
		c.JSON(http.StatusOK, meta)
	})

	group.GET("/appointments", func(c *gin.Context) {
		appointments := []models.Appointment{}
		meta, ok := listPaginated(c, appointmentsCollection, "scheduled_at", &appointments)
		if !ok {
			return
		}
		meta["appointments"] = appointments
		c.JSON(http.StatusOK, meta)
	})

	parseRange := func(c *gin.Context) (time.Time, time.Time) {
		var from, to time.Time
		if v := c.Query("from"); v != "" {
			from, _ = time.Parse(time.RFC3339, v)
		}
		if v := c.Query("to"); v != "" {
			to, _ = time.Parse(time.RFC3339, v)
		}
		return from, to
	}

	serveExcel := func(c *gin.Context, name string, data []byte, count int) {
		filename := fmt.Sprintf("%s_%s.xlsx", name, time.Now().Format("2006-01-02"))
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		c.Header("X-Record-Count", fmt.Sprintf("%d", count))
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
	}

	group.GET("/leads/export", func(c *gin.Context) {
		filter, ok := workspaceFilter(c)
		if !ok {
			return
		}
		from, to := parseRange(c)

		ctx, cancel := utils.WithLongTimeout(c.Request.Context())
		defer cancel()

		data, count, err := exportService.ExportLeads(ctx, filter["workspace_id"].(primitive.ObjectID), from, to)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to export leads", gin.H{"error": err.Error()})
			return
		}
		serveExcel(c, "leads", data, count)
	})

	group.GET("/appointments/export", func(c *gin.Context) {
		filter, ok := workspaceFilter(c)
		if !ok {
			return
		}
		from, to := parseRange(c)

		ctx, cancel := utils.WithLongTimeout(c.Request.Context())
		defer cancel()

		data, count, err := exportService.ExportAppointments(ctx, filter["workspace_id"].(primitive.ObjectID), from, to)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to export appointments", gin.H{"error": err.Error()})
			return
		}
		serveExcel(c, "appointments", data, count)
	})

	// Ingestion hooks. The chat runtime posts captured leads/appointments
	// here; each write also queues an owner notification.
	hooks := router.Group("/api/hooks")
	hooks.Use(authMiddleware.RequireAuth())

	enqueueNotify := func(botID, notifType string, payload map[string]string) {
		if botID == "" {
			return
		}
		task, err := queue.NewNotifyDispatchTask(botID, notifType, payload)
		if err != nil {
			return
		}
		asynqClient.Enqueue(task)
	}

	hooks.POST("/lead", func(c *gin.Context) {
		var req models.LeadHookRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		workspaceID, err := parseObjectID(req.WorkspaceID)
		if err != nil {
			utils.RespondWithBadRequest(c, "Invalid workspace ID format", nil)
			return
		}

		lead := models.Lead{
			WorkspaceID: workspaceID,
			Name:        req.Name,
			Phone:       req.Phone,
			Email:       req.Email,
			Message:     req.Message,
			Source:      req.Source,
			CreatedAt:   time.Now(),
		}
		if req.BotID != "" {
			botID, err := parseObjectID(req.BotID)
			if err != nil {
				utils.RespondWithBadRequest(c, "Invalid bot ID format", nil)
				return
			}
			lead.BotID = botID
		}

		result, err := leadsCollection.InsertOne(context.Background(), lead)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to store lead", nil)
			return
		}
		lead.ID = result.InsertedID.(primitive.ObjectID)

		enqueueNotify(req.BotID, models.NotifyTypeLead, map[string]string{
			"name":  req.Name,
			"phone": req.Phone,
			"email": req.Email,
		})

		c.JSON(http.StatusCreated, lead)
	})

	hooks.POST("/appointment", func(c *gin.Context) {
		var req models.AppointmentHookRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		workspaceID, err := parseObjectID(req.WorkspaceID)
		if err != nil {
			utils.RespondWithBadRequest(c, "Invalid workspace ID format", nil)
			return
		}

		appt := models.Appointment{
			WorkspaceID: workspaceID,
			Name:        req.Name,
			Phone:       req.Phone,
			Email:       req.Email,
			Service:     req.Service,
			ScheduledAt: req.ScheduledAt,
			Status:      "requested",
			CreatedAt:   time.Now(),
		}
		if req.BotID != "" {
			botID, err := parseObjectID(req.BotID)
			if err != nil {
				utils.RespondWithBadRequest(c, "Invalid bot ID format", nil)
				return
			}
			appt.BotID = botID
		}

		result, err := appointmentsCollection.InsertOne(context.Background(), appt)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to store appointment", nil)
			return
		}
		appt.ID = result.InsertedID.(primitive.ObjectID)

		enqueueNotify(req.BotID, models.NotifyTypeAppointment, map[string]string{
			"name":         req.Name,
			"service":      req.Service,
			"scheduled_at": req.ScheduledAt.Format(time.RFC3339),
		})

		c.JSON(http.StatusCreated, appt)
	})
}
