package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"campuscafe/internal/cache"
	"campuscafe/internal/middleware"
	"campuscafe/internal/models"
	"campuscafe/internal/notify"
)

/* =========================
   REQUEST DTOs
========================= */

type createOrderItemRequest struct {
	MenuItemID string `json:"menuItemId" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required"`
}

type createOrderRequest struct {
	Items           []createOrderItemRequest `json:"items" binding:"required"`
	PaymentMethod   string                   `json:"paymentMethod" binding:"required"`
	DeliveryType    string                   `json:"deliveryType" binding:"required"`
	DeliveryAddress string                   `json:"deliveryAddress"`
}

type newOrderPayload struct {
	OrderID     string    `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	VendorEmail string    `json:"vendorEmail"`
	TotalAmount float64   `json:"totalAmount"`
	ItemCount   int       `json:"itemCount"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

/* =========================
   CREATE ORDER (checkout)
========================= */

func CreateOrder(db *mongo.Database, reports *cache.ReportCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		userID, ok := userIDFromContext(c)
		if !ok {
			return
		}

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if err := validateOrderRequest(req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
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
			now := time.Now()
			items := make([]models.OrderItem, 0, len(req.Items))
			vendorEmail := ""
			total := 0.0

			for _, line := range req.Items {
				menuItemID, parseErr := primitive.ObjectIDFromHex(line.MenuItemID)
				if parseErr != nil {
					return nil, menuItemNotFoundError{MenuItemID: line.MenuItemID}
				}

				var menuItem models.MenuItem
				findErr := db.Collection("menu_items").FindOne(sessCtx, bson.M{"_id": menuItemID}).Decode(&menuItem)
				if findErr == mongo.ErrNoDocuments {
					return nil, menuItemNotFoundError{MenuItemID: line.MenuItemID}
				}
				if findErr != nil {
					return nil, findErr
				}

				if !menuItem.IsAvailable {
					return nil, itemUnavailableError{Name: menuItem.Name}
				}

				if vendorEmail == "" {
					vendorEmail = menuItem.VendorEmail
				} else if vendorEmail != menuItem.VendorEmail {
					return nil, errMixedVendors
				}

				// Snapshot name and price so menu edits never touch
				// historical orders.
				items = append(items, models.OrderItem{
					MenuItemID: menuItem.ID,
					Name:       menuItem.Name,
					UnitPrice:  menuItem.Price,
					Quantity:   line.Quantity,
				})
				total += menuItem.Price * float64(line.Quantity)
			}

			orderNumber, numErr := nextOrderNumber(sessCtx, db, now)
			if numErr != nil {
				return nil, numErr
			}

			order = models.Order{
				OrderNumber:     orderNumber,
				UserID:          userID,
				VendorEmail:     vendorEmail,
				Items:           items,
				TotalAmount:     roundCents(total),
				Status:          models.StatusPending,
				PaymentMethod:   req.PaymentMethod,
				DeliveryType:    req.DeliveryType,
				DeliveryAddress: strings.TrimSpace(req.DeliveryAddress),
				CreatedAt:       now,
			}

			res, insertErr := db.Collection("orders").InsertOne(sessCtx, order)
			if insertErr != nil {
				return nil, insertErr
			}
			if id, idOK := res.InsertedID.(primitive.ObjectID); idOK {
				order.ID = id
			}

			if req.PaymentMethod == "credits" {
				description := fmt.Sprintf("Payment for order %s", orderNumber)
				if spendErr := spendCredits(sessCtx, db, userID, order.TotalAmount, description, &order.ID); spendErr != nil {
					return nil, spendErr
				}
			}

			payload := newOrderPayload{
				OrderID:     order.ID.Hex(),
				OrderNumber: order.OrderNumber,
				VendorEmail: order.VendorEmail,
				TotalAmount: order.TotalAmount,
				ItemCount:   len(order.Items),
				Status:      string(order.Status),
				CreatedAt:   order.CreatedAt,
			}
			if appendErr := notify.Append(sessCtx, db, notify.EventNewOrder, notify.MerchantGroup(order.VendorEmail), payload); appendErr != nil {
				return nil, appendErr
			}
			if appendErr := notify.Append(sessCtx, db, notify.EventNewOrder, notify.CustomerGroup(userID.Hex()), payload); appendErr != nil {
				return nil, appendErr
			}

			return nil, nil
		})
		if err != nil {
			var notFoundErr menuItemNotFoundError
			if errors.As(err, &notFoundErr) {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":      "menu item not found",
					"menuItemId": notFoundErr.MenuItemID,
				})
				return
			}
			var unavailableErr itemUnavailableError
			if errors.As(err, &unavailableErr) {
				c.JSON(http.StatusBadRequest, gin.H{
					"error": "item not available",
					"name":  unavailableErr.Name,
				})
				return
			}
			if errors.Is(err, errMixedVendors) {
				respondWithError(c, http.StatusBadRequest, route, "all items must belong to the same vendor")
				return
			}
			if errors.Is(err, errInsufficientCredits) {
				respondWithError(c, http.StatusConflict, route, "insufficient credits")
				return
			}
			log.Println("[ORDER] [ERROR] create order failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		reports.Invalidate(c.Request.Context(), order.VendorEmail)
		middleware.RecordOrderCreated(order.VendorEmail)
		log.Println("[ORDER] [INFO] order created:", order.OrderNumber)

		c.JSON(http.StatusCreated, gin.H{
			"orderId":     order.ID.Hex(),
			"orderNumber": order.OrderNumber,
			"totalAmount": order.TotalAmount,
			"message":     "order created",
		})
	}
}

func validateOrderRequest(req createOrderRequest) error {
	if len(req.Items) == 0 {
		return errors.New("at least one item is required")
	}

	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return errors.New("quantity must be greater than zero")
		}
	}

	switch req.PaymentMethod {
	case "cash", "card", "credits":
	default:
		return errors.New("invalid payment method")
	}

	switch req.DeliveryType {
	case "pickup":
	case "delivery":
		if strings.TrimSpace(req.DeliveryAddress) == "" {
			return errors.New("delivery address is required for delivery orders")
		}
	default:
		return errors.New("invalid delivery type")
	}

	return nil
}

/* =========================
   CUSTOMER QUERIES
========================= */

// GetMyOrders lists the caller's orders, newest first.
func GetMyOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromContext(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("orders").Find(ctx, bson.M{"userId": userID}, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, orders)
	}
}

// GetOrder returns a single order to its owner or its vendor.
func GetOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}

		if userID, ok := c.Get("userId"); ok {
			if order.UserID != userID.(primitive.ObjectID) {
				c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
				return
			}
		} else if vendorEmail, ok := c.Get("vendorEmail"); ok {
			if order.VendorEmail != vendorEmail.(string) {
				c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
				return
			}
		} else {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

/* =========================
   TYPED ERRORS
========================= */

var errMixedVendors = errors.New("items span multiple vendors")

type menuItemNotFoundError struct {
	MenuItemID string
}

func (e menuItemNotFoundError) Error() string {
	return "menu item not found"
}

type itemUnavailableError struct {
	Name string
}

func (e itemUnavailableError) Error() string {
	return "item not available"
}
