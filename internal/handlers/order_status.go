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

	"campuscafe/internal/cache"
	"campuscafe/internal/models"
	"campuscafe/internal/notify"
)

type updateOrderStatusRequest struct {
	Status        string     `json:"status" binding:"required"`
	EstimatedTime *time.Time `json:"estimatedCompletionTime"`
}

type orderStatusPayload struct {
	OrderID       string     `json:"orderId"`
	OrderNumber   string     `json:"orderNumber"`
	Status        string     `json:"status"`
	EstimatedTime *time.Time `json:"estimatedCompletionTime,omitempty"`
	CompletedTime *time.Time `json:"completedTime,omitempty"`
}

var errCancelTooLate = errors.New("order can no longer be cancelled")

// UpdateOrderStatus advances an order through its lifecycle. The status
// write, the completion credit award and the outbox events commit together.
func UpdateOrderStatus(db *mongo.Database, reports *cache.ReportCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /api/orders/:id/status"
		defer handlePanic(c, route)

		vendorEmail, ok := vendorEmailFromContext(c)
		if !ok {
			return
		}

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req updateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		newStatus, valid := models.ParseOrderStatus(req.Status)
		if !valid {
			respondWithError(c, http.StatusBadRequest, route, "invalid status")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		session, err := db.Client().StartSession()
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer session.EndSession(ctx)

		var order models.Order
		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			findErr := db.Collection("orders").FindOne(sessCtx, bson.M{
				"_id":         orderID,
				"vendorEmail": vendorEmail,
			}).Decode(&order)
			if findErr != nil {
				return nil, findErr
			}

			if newStatus == models.StatusCancelled && !cancelAllowed(order.Status) {
				return nil, errCancelTooLate
			}

			now := time.Now()
			transition := applyStatusPolicy(order, newStatus, req.EstimatedTime, now)

			update := bson.M{"$set": transition.Set}
			if len(transition.Unset) > 0 {
				update["$unset"] = transition.Unset
			}

			if _, updateErr := db.Collection("orders").UpdateOne(sessCtx, bson.M{"_id": order.ID}, update); updateErr != nil {
				return nil, updateErr
			}

			if transition.AwardCredits {
				credited, checkErr := orderAlreadyCredited(sessCtx, db, order.ID)
				if checkErr != nil {
					return nil, checkErr
				}
				if !credited {
					award := creditAward(order.TotalAmount)
					if validCreditAmount(award) {
						description := "Credits earned on order " + order.OrderNumber
						if earnErr := addCredits(sessCtx, db, order.UserID, award, description, &order.ID); earnErr != nil {
							return nil, earnErr
						}
					}
				}
			}

			order.Status = newStatus
			if estimate, isSet := transition.Set["estimatedCompletionTime"].(time.Time); isSet {
				order.EstimatedTime = &estimate
			}
			if completed, isSet := transition.Set["completedTime"].(time.Time); isSet {
				order.CompletedTime = &completed
			} else if _, cleared := transition.Unset["completedTime"]; cleared {
				order.CompletedTime = nil
			}

			payload := orderStatusPayload{
				OrderID:       order.ID.Hex(),
				OrderNumber:   order.OrderNumber,
				Status:        string(order.Status),
				EstimatedTime: order.EstimatedTime,
				CompletedTime: order.CompletedTime,
			}
			if appendErr := notify.Append(sessCtx, db, notify.EventOrderStatusUpdated, notify.MerchantGroup(order.VendorEmail), payload); appendErr != nil {
				return nil, appendErr
			}
			if appendErr := notify.Append(sessCtx, db, notify.EventOrderStatusUpdated, notify.CustomerGroup(order.UserID.Hex()), payload); appendErr != nil {
				return nil, appendErr
			}

			return nil, nil
		})
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				respondWithError(c, http.StatusNotFound, route, "order not found")
				return
			}
			if errors.Is(err, errCancelTooLate) {
				respondWithError(c, http.StatusConflict, route, "order can no longer be cancelled")
				return
			}
			log.Println("[ORDER] [ERROR] status update failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		reports.Invalidate(c.Request.Context(), order.VendorEmail)
		log.Printf("[ORDER] [INFO] order %s moved to %s", order.OrderNumber, order.Status)

		c.JSON(http.StatusOK, gin.H{
			"orderId":                 order.ID.Hex(),
			"status":                  order.Status,
			"estimatedCompletionTime": order.EstimatedTime,
			"completedTime":           order.CompletedTime,
		})
	}
}
