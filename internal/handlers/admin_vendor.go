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

type vendorRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Description string `json:"description"`
}

func ListVendors(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("vendors").Find(ctx, bson.M{},
			options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		vendors := make([]models.Vendor, 0)
		if err := cursor.All(ctx, &vendors); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, vendors)
	}
}

func CreateVendor(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/admin/vendors"
		defer handlePanic(c, route)

		var req vendorRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		now := time.Now()
		vendor := models.Vendor{
			Name:        strings.TrimSpace(req.Name),
			Email:       strings.ToLower(strings.TrimSpace(req.Email)),
			Description: strings.TrimSpace(req.Description),
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("vendors").InsertOne(ctx, vendor)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				respondWithError(c, http.StatusConflict, route, "vendor email already registered")
				return
			}
			log.Println("[VENDOR] [ERROR] create failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if id, idOK := res.InsertedID.(primitive.ObjectID); idOK {
			vendor.ID = id
		}

		c.JSON(http.StatusCreated, vendor)
	}
}

func UpdateVendor(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/vendors/:id"
		defer handlePanic(c, route)

		vendorID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req vendorRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("vendors").UpdateOne(ctx,
			bson.M{"_id": vendorID},
			bson.M{"$set": bson.M{
				"name":        strings.TrimSpace(req.Name),
				"email":       strings.ToLower(strings.TrimSpace(req.Email)),
				"description": strings.TrimSpace(req.Description),
				"updatedAt":   time.Now(),
			}})
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				respondWithError(c, http.StatusConflict, route, "vendor email already registered")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "vendor not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "vendor updated"})
	}
}

// DeactivateVendor keeps the vendor's data but hides its menu from the
// public listing.
func DeactivateVendor(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /api/admin/vendors/:id/deactivate"

		vendorID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("vendors").UpdateOne(ctx,
			bson.M{"_id": vendorID},
			bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now()}})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "vendor not found")
			return
		}

		log.Println("[VENDOR] [INFO] vendor deactivated:", vendorID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "vendor deactivated"})
	}
}
