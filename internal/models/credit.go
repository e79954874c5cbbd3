package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CreditEarned = "Earned"
	CreditSpent  = "Spent"
)

// UserCredit holds one running balance per user.
type UserCredit struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID `bson:"userId" json:"userId"`
	CurrentCredits float64            `bson:"currentCredits" json:"currentCredits"`
	TotalEarned    float64            `bson:"totalEarned" json:"totalEarned"`
	TotalSpent     float64            `bson:"totalSpent" json:"totalSpent"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CreditHistory entries are append-only; they are never updated or deleted.
// BalanceAfter snapshots the balance the entry produced.
type CreditHistory struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID  `bson:"userId" json:"userId"`
	Amount       float64             `bson:"amount" json:"amount"`
	Type         string              `bson:"type" json:"type"`
	Description  string              `bson:"description" json:"description"`
	BalanceAfter float64             `bson:"balanceAfter" json:"balanceAfter"`
	OrderID      *primitive.ObjectID `bson:"orderId,omitempty" json:"orderId,omitempty"`
	CreatedAt    time.Time           `bson:"createdAt" json:"createdAt"`
}
