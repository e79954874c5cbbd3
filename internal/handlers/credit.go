package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"campuscafe/internal/models"
)

type spendCreditsRequest struct {
	Amount      float64 `json:"amount" binding:"required"`
	Description string  `json:"description" binding:"required"`
	OrderID     string  `json:"orderId"`
}

// GetCredits returns the caller's balance, creating nothing: users without
// a ledger row simply have a zero balance.
func GetCredits(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromContext(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var credit models.UserCredit
		err := db.Collection("user_credits").FindOne(ctx, bson.M{"userId": userID}).Decode(&credit)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusOK, gin.H{
				"currentCredits": 0.0,
				"totalEarned":    0.0,
				"totalSpent":     0.0,
			})
			return
		}
		if err != nil {
			log.Println("[CREDIT] [ERROR] balance lookup failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"currentCredits": credit.CurrentCredits,
			"totalEarned":    credit.TotalEarned,
			"totalSpent":     credit.TotalSpent,
		})
	}
}

// GetCreditHistory returns the caller's ledger entries, newest first.
func GetCreditHistory(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromContext(c)
		if !ok {
			return
		}

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pagination"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetSkip((page - 1) * limit).
			SetLimit(limit)

		cursor, err := db.Collection("credit_history").Find(ctx, bson.M{"userId": userID}, opts)
		if err != nil {
			log.Println("[CREDIT] [ERROR] history query failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		history := make([]models.CreditHistory, 0)
		if err := cursor.All(ctx, &history); err != nil {
			log.Println("[CREDIT] [ERROR] history decode failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"history": history, "page": page, "limit": limit})
	}
}

// spendStatus maps a ledger error to the response the spend endpoint sends.
func spendStatus(err error) (int, string) {
	switch {
	case errors.Is(err, errInvalidCreditAmount):
		return http.StatusBadRequest, "amount must be positive"
	case errors.Is(err, errInsufficientCredits):
		return http.StatusConflict, "insufficient credits"
	default:
		return http.StatusInternalServerError, "db error"
	}
}

// SpendCredits debits the caller's balance. The decrement and the ledger
// entry commit together: a failed insert rolls the balance back.
func SpendCredits(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/credits/spend"
		defer handlePanic(c, route)

		userID, ok := userIDFromContext(c)
		if !ok {
			return
		}

		var req spendCreditsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if !validCreditAmount(req.Amount) {
			respondWithError(c, http.StatusBadRequest, route, "amount must be positive")
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

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		session, err := db.Client().StartSession()
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer session.EndSession(ctx)

		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			return nil, spendCredits(sessCtx, db, userID, req.Amount, req.Description, orderID)
		})
		if err != nil {
			status, message := spendStatus(err)
			if status == http.StatusInternalServerError {
				log.Println("[CREDIT] [ERROR] spend failed:", err)
			}
			respondWithError(c, status, route, message)
			return
		}

		log.Println("[CREDIT] [INFO] credits spent for user:", userID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "credits spent"})
	}
}

// GetUserCredits lets support staff inspect a user's balance and history.
func GetUserCredits(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var credit models.UserCredit
		if err := db.Collection("user_credits").FindOne(ctx, bson.M{"userId": userID}).Decode(&credit); err != nil && err != mongo.ErrNoDocuments {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		opts := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetLimit(100)

		cursor, err := db.Collection("credit_history").Find(ctx, bson.M{"userId": userID}, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		history := make([]models.CreditHistory, 0)
		if err := cursor.All(ctx, &history); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"credit": credit, "history": history})
	}
}
