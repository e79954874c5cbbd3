package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OutboxEvent records a pending notification. Events are appended inside the
// same transaction as the write they announce and published by the
// dispatcher afterwards, so a failed publish is retried instead of dropped.
type OutboxEvent struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Event     string             `bson:"event" json:"event"`
	Group     string             `bson:"group" json:"group"`
	Payload   []byte             `bson:"payload" json:"payload"`
	Sent      bool               `bson:"sent" json:"sent"`
	Attempts  int                `bson:"attempts" json:"attempts"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	SentAt    *time.Time         `bson:"sentAt,omitempty" json:"sentAt,omitempty"`
}
