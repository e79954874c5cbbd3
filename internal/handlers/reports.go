package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"campuscafe/internal/cache"
	"campuscafe/internal/models"
)

const (
	reportSales    = "sales"
	reportDaily    = "daily"
	reportHourly   = "hourly"
	reportProducts = "products"
)

// reportHandler wraps the fetch/compute/cache cycle shared by every report
// endpoint. compute runs only on a cache miss.
func reportHandler(db *mongo.Database, reports *cache.ReportCache, name string, compute func(orders []models.Order, start, end time.Time) interface{}) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := "GET /api/vendor/reports/" + name
		defer handlePanic(c, route)

		vendorEmail, ok := vendorEmailFromContext(c)
		if !ok {
			return
		}

		start, end, err := parseDateRange(c.Query("start"), c.Query("end"), time.Now())
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		var cached json.RawMessage
		if reports.Get(ctx, vendorEmail, name, start, end, &cached) {
			c.Data(http.StatusOK, "application/json", cached)
			return
		}

		orders, err := completedOrdersInRange(ctx, db, vendorEmail, start, end)
		if err != nil {
			log.Println("[REPORT] [ERROR] order fetch failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		result := compute(orders, start, end)
		reports.Set(ctx, vendorEmail, name, start, end, result)

		c.JSON(http.StatusOK, result)
	}
}

func GetSalesReport(db *mongo.Database, reports *cache.ReportCache) gin.HandlerFunc {
	return reportHandler(db, reports, reportSales, func(orders []models.Order, start, end time.Time) interface{} {
		return computeSalesSummary(orders)
	})
}

func GetDailyReport(db *mongo.Database, reports *cache.ReportCache) gin.HandlerFunc {
	return reportHandler(db, reports, reportDaily, func(orders []models.Order, start, end time.Time) interface{} {
		return gin.H{"days": computeDailySales(orders, start, end)}
	})
}

func GetHourlyReport(db *mongo.Database, reports *cache.ReportCache) gin.HandlerFunc {
	return reportHandler(db, reports, reportHourly, func(orders []models.Order, start, end time.Time) interface{} {
		return gin.H{"hours": computeHourlyDistribution(orders)}
	})
}

func GetProductReport(db *mongo.Database, reports *cache.ReportCache) gin.HandlerFunc {
	return reportHandler(db, reports, reportProducts, func(orders []models.Order, start, end time.Time) interface{} {
		return gin.H{"products": computeProductRanking(orders, productRankingLimit)}
	})
}

// parseClearCacheBody accepts either {"vendorEmail": "..."} or a bare JSON
// string, for older service callers.
func parseClearCacheBody(body []byte) (string, bool) {
	var req struct {
		VendorEmail string `json:"vendorEmail"`
	}
	if err := json.Unmarshal(body, &req); err == nil && strings.TrimSpace(req.VendorEmail) != "" {
		return strings.TrimSpace(req.VendorEmail), true
	}

	var bare string
	if err := json.Unmarshal(body, &bare); err == nil && strings.TrimSpace(bare) != "" {
		return strings.TrimSpace(bare), true
	}

	return "", false
}

// ClearReportCache bumps the vendor's cache version. Unauthenticated:
// intended for internal service-to-service calls.
func ClearReportCache(reports *cache.ReportCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/reports/clear-cache"
		defer handlePanic(c, route)

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid body")
			return
		}

		vendorEmail, ok := parseClearCacheBody(body)
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "vendorEmail is required")
			return
		}

		reports.Invalidate(c.Request.Context(), vendorEmail)
		log.Println("[REPORT] [INFO] cache cleared for vendor:", vendorEmail)

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "cache cleared"})
	}
}
