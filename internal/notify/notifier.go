package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"campuscafe/internal/models"
)

// Event names consumed by the real-time hub.
const (
	EventNewOrder           = "NewOrder"
	EventOrderStatusUpdated = "OrderStatusUpdated"
	EventNewReview          = "NewReview"
	EventReviewReply        = "ReviewReply"
)

// MerchantGroup is the hub group for a vendor's dashboard connections.
func MerchantGroup(vendorEmail string) string {
	return fmt.Sprintf("Merchant_%s", vendorEmail)
}

// CustomerGroup is the hub group for a customer's connections.
func CustomerGroup(userID string) string {
	return fmt.Sprintf("Customer_%s", userID)
}

// Append records an event in the outbox. Callers pass the session context
// when the event belongs to a transaction, so the event is only recorded if
// the write it announces commits.
func Append(ctx context.Context, db *mongo.Database, event, group string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", event, err)
	}

	_, err = db.Collection("outbox").InsertOne(ctx, models.OutboxEvent{
		Event:     event,
		Group:     group,
		Payload:   data,
		Sent:      false,
		CreatedAt: time.Now(),
	})
	return err
}
