package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"campuscafe/internal/models"
)

// vendorOrderFilter composes the optional status / date-range / search
// filters into a single query.
func vendorOrderFilter(vendorEmail string, status *models.OrderStatus, start, end *time.Time, search string) bson.M {
	filter := bson.M{"vendorEmail": vendorEmail}

	if status != nil {
		filter["status"] = *status
	}

	if start != nil || end != nil {
		createdAt := bson.M{}
		if start != nil {
			createdAt["$gte"] = *start
		}
		if end != nil {
			createdAt["$lte"] = *end
		}
		filter["createdAt"] = createdAt
	}

	if search != "" {
		filter["$or"] = bson.A{
			bson.M{"orderNumber": bson.M{"$regex": search, "$options": "i"}},
			bson.M{"items.name": bson.M{"$regex": search, "$options": "i"}},
		}
	}

	return filter
}

// GetVendorOrders lists the vendor's orders with optional filters and
// pagination, newest first.
func GetVendorOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/vendor/orders"

		vendorEmail, ok := vendorEmailFromContext(c)
		if !ok {
			return
		}

		var status *models.OrderStatus
		if statusStr := c.Query("status"); statusStr != "" {
			parsed, valid := models.ParseOrderStatus(statusStr)
			if !valid {
				respondWithError(c, http.StatusBadRequest, route, "invalid status")
				return
			}
			status = &parsed
		}

		var start, end *time.Time
		if c.Query("start") != "" || c.Query("end") != "" {
			parsedStart, parsedEnd, err := parseDateRange(c.Query("start"), c.Query("end"), time.Now())
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, err.Error())
				return
			}
			start, end = &parsedStart, &parsedEnd
		}

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid pagination")
			return
		}

		filter := vendorOrderFilter(vendorEmail, status, start, end, c.Query("search"))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		total, err := db.Collection("orders").CountDocuments(ctx, filter)
		if err != nil {
			log.Println("[ORDER] [ERROR] vendor order count failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		opts := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetSkip((page - 1) * limit).
			SetLimit(limit)

		cursor, err := db.Collection("orders").Find(ctx, filter, opts)
		if err != nil {
			log.Println("[ORDER] [ERROR] vendor order query failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			log.Println("[ORDER] [ERROR] vendor order decode failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"orders": orders,
			"total":  total,
			"page":   page,
			"limit":  limit,
		})
	}
}

// GetVendorOrderStats returns completed revenue and total order count for a
// date range.
func GetVendorOrderStats(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/vendor/orders/stats"

		vendorEmail, ok := vendorEmailFromContext(c)
		if !ok {
			return
		}

		start, end, err := parseDateRange(c.Query("start"), c.Query("end"), time.Now())
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		rangeFilter := vendorOrderFilter(vendorEmail, nil, &start, &end, "")

		totalOrders, err := db.Collection("orders").CountDocuments(ctx, rangeFilter)
		if err != nil {
			log.Println("[ORDER] [ERROR] stats count failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		completed := models.StatusCompleted
		completedOrders, err := fetchOrders(ctx, db, vendorOrderFilter(vendorEmail, &completed, &start, &end, ""))
		if err != nil {
			log.Println("[ORDER] [ERROR] stats query failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		revenue := 0.0
		for _, order := range completedOrders {
			revenue += order.TotalAmount
		}

		c.JSON(http.StatusOK, gin.H{
			"totalRevenue":    roundCents(revenue),
			"totalOrders":     totalOrders,
			"completedOrders": len(completedOrders),
			"start":           start,
			"end":             end,
		})
	}
}

func fetchOrders(ctx context.Context, db *mongo.Database, filter bson.M) ([]models.Order, error) {
	cursor, err := db.Collection("orders").Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	orders := make([]models.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// completedOrdersInRange feeds the reporting aggregator.
func completedOrdersInRange(ctx context.Context, db *mongo.Database, vendorEmail string, start, end time.Time) ([]models.Order, error) {
	completed := models.StatusCompleted
	return fetchOrders(ctx, db, vendorOrderFilter(vendorEmail, &completed, &start, &end, ""))
}
