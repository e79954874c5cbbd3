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

type menuItemRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"imageUrl"`
	IsAvailable *bool   `json:"isAvailable"`
}

/* =========================
   PUBLIC MENU
========================= */

// GetMenu lists available items, optionally filtered by vendor or category.
// Items of deactivated vendors are hidden.
func GetMenu(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		filter := bson.M{"isAvailable": true}
		if category := strings.TrimSpace(c.Query("category")); category != "" {
			filter["category"] = category
		}

		inactive, err := inactiveVendorEmails(ctx, db)
		if err != nil {
			log.Println("[MENU] [ERROR] vendor lookup failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		if vendor := strings.ToLower(strings.TrimSpace(c.Query("vendor"))); vendor != "" {
			for _, email := range inactive {
				if email == vendor {
					c.JSON(http.StatusOK, []models.MenuItem{})
					return
				}
			}
			filter["vendorEmail"] = vendor
		} else if len(inactive) > 0 {
			filter["vendorEmail"] = bson.M{"$nin": inactive}
		}

		cursor, err := db.Collection("menu_items").Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
		if err != nil {
			log.Println("[MENU] [ERROR] menu query failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		items := make([]models.MenuItem, 0)
		if err := cursor.All(ctx, &items); err != nil {
			log.Println("[MENU] [ERROR] menu decode failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, items)
	}
}

func GetMenuItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		itemID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var item models.MenuItem
		if err := db.Collection("menu_items").FindOne(ctx, bson.M{"_id": itemID}).Decode(&item); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "menu item not found"})
			return
		}

		c.JSON(http.StatusOK, item)
	}
}

/* =========================
   VENDOR MENU CRUD
========================= */

func CreateMenuItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/vendor/menu"
		defer handlePanic(c, route)

		vendorEmail, ok := vendorEmailFromContext(c)
		if !ok {
			return
		}

		var req menuItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if req.Price <= 0 {
			respondWithError(c, http.StatusBadRequest, route, "price must be greater than zero")
			return
		}

		now := time.Now()
		available := true
		if req.IsAvailable != nil {
			available = *req.IsAvailable
		}

		item := models.MenuItem{
			VendorEmail: vendorEmail,
			Name:        strings.TrimSpace(req.Name),
			Description: strings.TrimSpace(req.Description),
			Price:       req.Price,
			Category:    strings.TrimSpace(req.Category),
			ImageURL:    strings.TrimSpace(req.ImageURL),
			IsAvailable: available,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("menu_items").InsertOne(ctx, item)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				respondWithError(c, http.StatusConflict, route, "menu item already exists")
				return
			}
			log.Println("[MENU] [ERROR] create failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if id, idOK := res.InsertedID.(primitive.ObjectID); idOK {
			item.ID = id
		}

		c.JSON(http.StatusCreated, item)
	}
}

func UpdateMenuItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/vendor/menu/:id"
		defer handlePanic(c, route)

		vendorEmail, ok := vendorEmailFromContext(c)
		if !ok {
			return
		}

		itemID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req menuItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if req.Price <= 0 {
			respondWithError(c, http.StatusBadRequest, route, "price must be greater than zero")
			return
		}

		update := bson.M{
			"name":        strings.TrimSpace(req.Name),
			"description": strings.TrimSpace(req.Description),
			"price":       req.Price,
			"category":    strings.TrimSpace(req.Category),
			"imageUrl":    strings.TrimSpace(req.ImageURL),
			"updatedAt":   time.Now(),
		}
		if req.IsAvailable != nil {
			update["isAvailable"] = *req.IsAvailable
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("menu_items").UpdateOne(ctx,
			bson.M{"_id": itemID, "vendorEmail": vendorEmail},
			bson.M{"$set": update})
		if err != nil {
			log.Println("[MENU] [ERROR] update failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "menu item not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "menu item updated"})
	}
}

func SetMenuItemAvailability(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /api/vendor/menu/:id/availability"

		vendorEmail, ok := vendorEmailFromContext(c)
		if !ok {
			return
		}

		itemID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req struct {
			IsAvailable *bool `json:"isAvailable" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("menu_items").UpdateOne(ctx,
			bson.M{"_id": itemID, "vendorEmail": vendorEmail},
			bson.M{"$set": bson.M{"isAvailable": *req.IsAvailable, "updatedAt": time.Now()}})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "menu item not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "availability updated"})
	}
}

func DeleteMenuItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/vendor/menu/:id"

		vendorEmail, ok := vendorEmailFromContext(c)
		if !ok {
			return
		}

		itemID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("menu_items").DeleteOne(ctx, bson.M{"_id": itemID, "vendorEmail": vendorEmail})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.DeletedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "menu item not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "menu item deleted"})
	}
}

func inactiveVendorEmails(ctx context.Context, db *mongo.Database) ([]string, error) {
	cursor, err := db.Collection("vendors").Find(ctx, bson.M{"isActive": false})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var vendors []models.Vendor
	if err := cursor.All(ctx, &vendors); err != nil {
		return nil, err
	}

	emails := make([]string, 0, len(vendors))
	for _, vendor := range vendors {
		emails = append(emails, vendor.Email)
	}
	return emails, nil
}
