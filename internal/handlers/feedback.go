package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"campuscafe/internal/models"
)

type createFeedbackRequest struct {
	Subject  string `json:"subject" binding:"required"`
	Message  string `json:"message" binding:"required"`
	Category string `json:"category" binding:"required"`
	Priority string `json:"priority"`
	OrderID  string `json:"orderId"`
}

type feedbackResponseRequest struct {
	Response string `json:"response" binding:"required"`
}

// CreateFeedback opens a support ticket.
func CreateFeedback(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/feedback"
		defer handlePanic(c, route)

		userID, ok := userIDFromContext(c)
		if !ok {
			return
		}

		var req createFeedbackRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if !models.ValidFeedbackCategory(req.Category) {
			respondWithError(c, http.StatusBadRequest, route, "invalid category")
			return
		}

		priority := req.Priority
		if priority == "" {
			priority = "Normal"
		}
		if !models.ValidFeedbackPriority(priority) {
			respondWithError(c, http.StatusBadRequest, route, "invalid priority")
			return
		}

		var orderID *primitive.ObjectID
		if req.OrderID != "" {
			parsed, err := primitive.ObjectIDFromHex(req.OrderID)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid orderId")
				return
			}
			orderID = &parsed
		}

		feedback := models.Feedback{
			UserID:    userID,
			OrderID:   orderID,
			Subject:   strings.TrimSpace(req.Subject),
			Message:   strings.TrimSpace(req.Message),
			Category:  req.Category,
			Priority:  priority,
			Status:    models.FeedbackOpen,
			CreatedAt: time.Now(),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("feedback").InsertOne(ctx, feedback)
		if err != nil {
			log.Println("[FEEDBACK] [ERROR] create failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if id, idOK := res.InsertedID.(primitive.ObjectID); idOK {
			feedback.ID = id
		}

		c.JSON(http.StatusCreated, feedback)
	}
}

// GetMyFeedback lists the caller's tickets.
func GetMyFeedback(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromContext(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("feedback").Find(ctx,
			bson.M{"userId": userID},
			options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		tickets := make([]models.Feedback, 0)
		if err := cursor.All(ctx, &tickets); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, tickets)
	}
}

// ListFeedback lets admins browse tickets, optionally by status.
func ListFeedback(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/feedback"

		filter := bson.M{}
		if status := strings.TrimSpace(c.Query("status")); status != "" {
			switch models.FeedbackStatus(status) {
			case models.FeedbackOpen, models.FeedbackInProgress, models.FeedbackResolved:
				filter["status"] = models.FeedbackStatus(status)
			default:
				respondWithError(c, http.StatusBadRequest, route, "invalid status")
				return
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("feedback").Find(ctx, filter,
			options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		tickets := make([]models.Feedback, 0)
		if err := cursor.All(ctx, &tickets); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, tickets)
	}
}

// RespondFeedback records an admin response and resolves the ticket.
func RespondFeedback(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/admin/feedback/:id/respond"
		defer handlePanic(c, route)

		feedbackID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req feedbackResponseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		now := time.Now()
		var feedback models.Feedback
		err = db.Collection("feedback").FindOneAndUpdate(ctx,
			bson.M{"_id": feedbackID},
			bson.M{"$set": bson.M{
				"response":    strings.TrimSpace(req.Response),
				"respondedAt": now,
				"status":      models.FeedbackResolved,
			}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&feedback)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "feedback not found")
			return
		}
		if err != nil {
			log.Println("[FEEDBACK] [ERROR] respond failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, feedback)
	}
}
