package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "Pending"
	StatusConfirmed  OrderStatus = "Confirmed"
	StatusPreparing  OrderStatus = "Preparing"
	StatusReady      OrderStatus = "Ready"
	StatusInDelivery OrderStatus = "InDelivery"
	StatusCompleted  OrderStatus = "Completed"
	StatusCancelled  OrderStatus = "Cancelled"
)

var orderStatuses = []OrderStatus{
	StatusPending,
	StatusConfirmed,
	StatusPreparing,
	StatusReady,
	StatusInDelivery,
	StatusCompleted,
	StatusCancelled,
}

// ParseOrderStatus matches a status name case-insensitively.
func ParseOrderStatus(value string) (OrderStatus, bool) {
	trimmed := strings.TrimSpace(value)
	for _, status := range orderStatuses {
		if strings.EqualFold(trimmed, string(status)) {
			return status, true
		}
	}
	return "", false
}

// OrderItem is a denormalized snapshot of a menu item at order time, so
// later menu edits never alter historical orders.
type OrderItem struct {
	MenuItemID primitive.ObjectID `bson:"menuItemId" json:"menuItemId"`
	Name       string             `bson:"name" json:"name"`
	UnitPrice  float64            `bson:"unitPrice" json:"unitPrice"`
	Quantity   int                `bson:"quantity" json:"quantity"`
}

// TotalPrice is derived, never stored.
func (i OrderItem) TotalPrice() float64 {
	return i.UnitPrice * float64(i.Quantity)
}

// Order defines the persisted order document.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderNumber     string             `bson:"orderNumber" json:"orderNumber"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	VendorEmail     string             `bson:"vendorEmail" json:"vendorEmail"`
	Items           []OrderItem        `bson:"items" json:"items"`
	TotalAmount     float64            `bson:"totalAmount" json:"totalAmount"`
	Status          OrderStatus        `bson:"status" json:"status"`
	PaymentMethod   string             `bson:"paymentMethod" json:"paymentMethod"`
	DeliveryType    string             `bson:"deliveryType" json:"deliveryType"`
	DeliveryAddress string             `bson:"deliveryAddress,omitempty" json:"deliveryAddress,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	EstimatedTime   *time.Time         `bson:"estimatedCompletionTime,omitempty" json:"estimatedCompletionTime,omitempty"`
	CompletedTime   *time.Time         `bson:"completedTime,omitempty" json:"completedTime,omitempty"`
}
