package handlers

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"campuscafe/internal/models"
)

// creditAwardRate is the loyalty share of a completed order's total.
const creditAwardRate = 0.05

func roundCents(value float64) float64 {
	return math.Round(value*100) / 100
}

// creditAward is what a completed order earns its customer.
func creditAward(orderTotal float64) float64 {
	return roundCents(orderTotal * creditAwardRate)
}

func validCreditAmount(amount float64) bool {
	return amount > 0
}

// spendGuardFilter only matches when the balance covers the spend, so the
// balance check and the decrement are a single atomic update and two racing
// spends cannot both pass.
func spendGuardFilter(userID primitive.ObjectID, amount float64) bson.M {
	return bson.M{
		"userId":         userID,
		"currentCredits": bson.M{"$gte": amount},
	}
}

func spendUpdate(amount float64, now time.Time) bson.M {
	return bson.M{
		"$inc": bson.M{
			"currentCredits": -amount,
			"totalSpent":     amount,
		},
		"$set": bson.M{"updatedAt": now},
	}
}

func earnUpdate(amount float64, now time.Time) bson.M {
	return bson.M{
		"$inc": bson.M{
			"currentCredits": amount,
			"totalEarned":    amount,
		},
		"$set": bson.M{"updatedAt": now},
	}
}

func newLedgerEntry(userID primitive.ObjectID, amount float64, kind, description string, orderID *primitive.ObjectID, balanceAfter float64, now time.Time) models.CreditHistory {
	return models.CreditHistory{
		UserID:       userID,
		Amount:       amount,
		Type:         kind,
		Description:  description,
		BalanceAfter: balanceAfter,
		OrderID:      orderID,
		CreatedAt:    now,
	}
}
