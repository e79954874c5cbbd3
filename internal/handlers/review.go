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
	"campuscafe/internal/notify"
)

type createReviewRequest struct {
	OrderID    string `json:"orderId" binding:"required"`
	MenuItemID string `json:"menuItemId" binding:"required"`
	Rating     int    `json:"rating" binding:"required,min=1,max=5"`
	Comment    string `json:"comment"`
}

type reviewReplyRequest struct {
	Reply string `json:"reply" binding:"required"`
}

type reviewPayload struct {
	ReviewID   string `json:"reviewId"`
	OrderID    string `json:"orderId"`
	MenuItemID string `json:"menuItemId"`
	Rating     int    `json:"rating,omitempty"`
	Comment    string `json:"comment,omitempty"`
	Reply      string `json:"reply,omitempty"`
}

// CreateReview lets a customer rate an item from one of their completed
// orders. One review per order and item.
func CreateReview(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/reviews"
		defer handlePanic(c, route)

		userID, ok := userIDFromContext(c)
		if !ok {
			return
		}

		var req createReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		orderID, err := primitive.ObjectIDFromHex(req.OrderID)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid orderId")
			return
		}
		menuItemID, err := primitive.ObjectIDFromHex(req.MenuItemID)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid menuItemId")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID, "userId": userID}).Decode(&order); err != nil {
			respondWithError(c, http.StatusNotFound, route, "order not found")
			return
		}

		if order.Status != models.StatusCompleted {
			respondWithError(c, http.StatusConflict, route, "only completed orders can be reviewed")
			return
		}

		found := false
		for _, item := range order.Items {
			if item.MenuItemID == menuItemID {
				found = true
				break
			}
		}
		if !found {
			respondWithError(c, http.StatusBadRequest, route, "item is not part of the order")
			return
		}

		review := models.Review{
			OrderID:     orderID,
			MenuItemID:  menuItemID,
			UserID:      userID,
			VendorEmail: order.VendorEmail,
			Rating:      req.Rating,
			Comment:     strings.TrimSpace(req.Comment),
			Status:      models.ReviewPending,
			CreatedAt:   time.Now(),
		}

		res, err := db.Collection("reviews").InsertOne(ctx, review)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				respondWithError(c, http.StatusConflict, route, "item already reviewed for this order")
				return
			}
			log.Println("[REVIEW] [ERROR] create failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if id, idOK := res.InsertedID.(primitive.ObjectID); idOK {
			review.ID = id
		}

		payload := reviewPayload{
			ReviewID:   review.ID.Hex(),
			OrderID:    orderID.Hex(),
			MenuItemID: menuItemID.Hex(),
			Rating:     review.Rating,
			Comment:    review.Comment,
		}
		if err := notify.Append(ctx, db, notify.EventNewReview, notify.MerchantGroup(order.VendorEmail), payload); err != nil {
			log.Println("[REVIEW] [ERROR] notify append failed:", err)
		}

		c.JSON(http.StatusCreated, review)
	}
}

// ReplyReview records the vendor's reply and marks the review Replied.
func ReplyReview(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/vendor/reviews/:id/reply"
		defer handlePanic(c, route)

		vendorEmail, ok := vendorEmailFromContext(c)
		if !ok {
			return
		}

		reviewID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req reviewReplyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		now := time.Now()
		var review models.Review
		err = db.Collection("reviews").FindOneAndUpdate(ctx,
			bson.M{"_id": reviewID, "vendorEmail": vendorEmail},
			bson.M{"$set": bson.M{
				"reply":     strings.TrimSpace(req.Reply),
				"repliedAt": now,
				"status":    models.ReviewReplied,
			}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&review)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "review not found")
			return
		}
		if err != nil {
			log.Println("[REVIEW] [ERROR] reply failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		payload := reviewPayload{
			ReviewID:   review.ID.Hex(),
			OrderID:    review.OrderID.Hex(),
			MenuItemID: review.MenuItemID.Hex(),
			Reply:      review.Reply,
		}
		if err := notify.Append(ctx, db, notify.EventReviewReply, notify.CustomerGroup(review.UserID.Hex()), payload); err != nil {
			log.Println("[REVIEW] [ERROR] notify append failed:", err)
		}

		c.JSON(http.StatusOK, review)
	}
}

// GetMenuItemReviews lists the non-hidden reviews for a menu item.
func GetMenuItemReviews(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		menuItemID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		filter := bson.M{
			"menuItemId": menuItemID,
			"status":     bson.M{"$ne": models.ReviewHidden},
		}

		cursor, err := db.Collection("reviews").Find(ctx, filter,
			options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		reviews := make([]models.Review, 0)
		if err := cursor.All(ctx, &reviews); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, reviews)
	}
}

// GetVendorReviews lists all reviews across the vendor's items.
func GetVendorReviews(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		vendorEmail, ok := vendorEmailFromContext(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("reviews").Find(ctx,
			bson.M{"vendorEmail": vendorEmail},
			options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		reviews := make([]models.Review, 0)
		if err := cursor.All(ctx, &reviews); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, reviews)
	}
}

// HideReview removes a review from public listings without deleting it.
func HideReview(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /api/admin/reviews/:id/hide"

		reviewID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("reviews").UpdateOne(ctx,
			bson.M{"_id": reviewID},
			bson.M{"$set": bson.M{"status": models.ReviewHidden}})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "review not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "review hidden"})
	}
}
