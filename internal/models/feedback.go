package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FeedbackStatus string

const (
	FeedbackOpen       FeedbackStatus = "Open"
	FeedbackInProgress FeedbackStatus = "InProgress"
	FeedbackResolved   FeedbackStatus = "Resolved"
)

var feedbackCategories = map[string]bool{
	"Order":   true,
	"Service": true,
	"App":     true,
	"Other":   true,
}

var feedbackPriorities = map[string]bool{
	"Low":    true,
	"Normal": true,
	"High":   true,
}

func ValidFeedbackCategory(category string) bool { return feedbackCategories[category] }
func ValidFeedbackPriority(priority string) bool { return feedbackPriorities[priority] }

// Feedback is a general support ticket, not necessarily tied to an order.
type Feedback struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID  `bson:"userId" json:"userId"`
	OrderID     *primitive.ObjectID `bson:"orderId,omitempty" json:"orderId,omitempty"`
	Subject     string              `bson:"subject" json:"subject"`
	Message     string              `bson:"message" json:"message"`
	Category    string              `bson:"category" json:"category"`
	Priority    string              `bson:"priority" json:"priority"`
	Status      FeedbackStatus      `bson:"status" json:"status"`
	Response    string              `bson:"response,omitempty" json:"response,omitempty"`
	RespondedAt *time.Time          `bson:"respondedAt,omitempty" json:"respondedAt,omitempty"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
}
