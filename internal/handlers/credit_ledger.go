package handlers

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"campuscafe/internal/models"
)

var (
	errInvalidCreditAmount = errors.New("credit amount must be positive")
	errInsufficientCredits = errors.New("insufficient credits")
)

// addCredits increments the user's balance (creating the row on first earn)
// and appends the matching ledger entry. Callers pass a session context when
// the earn belongs to a larger transaction.
func addCredits(ctx context.Context, db *mongo.Database, userID primitive.ObjectID, amount float64, description string, orderID *primitive.ObjectID) error {
	amount = roundCents(amount)
	if !validCreditAmount(amount) {
		return errInvalidCreditAmount
	}

	now := time.Now()

	var credit models.UserCredit
	err := db.Collection("user_credits").FindOneAndUpdate(ctx,
		bson.M{"userId": userID},
		earnUpdate(amount, now),
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&credit)
	if err != nil {
		return err
	}

	entry := newLedgerEntry(userID, amount, models.CreditEarned, description, orderID, credit.CurrentCredits, now)
	_, err = db.Collection("credit_history").InsertOne(ctx, entry)
	return err
}

// spendCredits debits the balance through a single conditional update and
// appends the ledger entry. Returns errInsufficientCredits, with nothing
// written, when the balance does not cover the amount.
func spendCredits(ctx context.Context, db *mongo.Database, userID primitive.ObjectID, amount float64, description string, orderID *primitive.ObjectID) error {
	amount = roundCents(amount)
	if !validCreditAmount(amount) {
		return errInvalidCreditAmount
	}

	now := time.Now()

	var credit models.UserCredit
	err := db.Collection("user_credits").FindOneAndUpdate(ctx,
		spendGuardFilter(userID, amount),
		spendUpdate(amount, now),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&credit)
	if err == mongo.ErrNoDocuments {
		return errInsufficientCredits
	}
	if err != nil {
		return err
	}

	entry := newLedgerEntry(userID, amount, models.CreditSpent, description, orderID, credit.CurrentCredits, now)
	_, err = db.Collection("credit_history").InsertOne(ctx, entry)
	return err
}

// orderAlreadyCredited guards the completion award against transition
// replays: at most one Earned entry per order.
func orderAlreadyCredited(ctx context.Context, db *mongo.Database, orderID primitive.ObjectID) (bool, error) {
	err := db.Collection("credit_history").FindOne(ctx, bson.M{
		"orderId": orderID,
		"type":    models.CreditEarned,
	}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
