package handlers

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"campuscafe/internal/models"
)

func TestCreditAward(t *testing.T) {
	tests := []struct {
		total    float64
		expected float64
	}{
		{20.00, 1.00},
		{100.00, 5.00},
		{7.90, 0.40},
		{0.10, 0.01},
		{0, 0},
	}
	for _, tt := range tests {
		if got := creditAward(tt.total); got != tt.expected {
			t.Fatalf("creditAward(%v) = %v, expected %v", tt.total, got, tt.expected)
		}
	}
}

func TestRoundCents(t *testing.T) {
	if got := roundCents(1.005); got != 1.01 {
		t.Fatalf("expected 1.005 to round to 1.01, got %v", got)
	}
	if got := roundCents(2.674999); got != 2.67 {
		t.Fatalf("expected 2.674999 to round to 2.67, got %v", got)
	}
}

func TestValidCreditAmount(t *testing.T) {
	if !validCreditAmount(0.01) {
		t.Fatal("expected 0.01 to be a valid amount")
	}
	if validCreditAmount(0) {
		t.Fatal("expected zero to be rejected")
	}
	if validCreditAmount(-5) {
		t.Fatal("expected negative amounts to be rejected")
	}
}

func TestSpendGuardFilterRequiresCoveringBalance(t *testing.T) {
	userID := primitive.NewObjectID()
	filter := spendGuardFilter(userID, 12.50)

	if filter["userId"] != userID {
		t.Fatalf("expected filter to scope to user %s, got %v", userID.Hex(), filter["userId"])
	}

	guard, ok := filter["currentCredits"].(bson.M)
	if !ok {
		t.Fatal("expected a balance condition on currentCredits")
	}
	if guard["$gte"] != 12.50 {
		t.Fatalf("expected $gte 12.50 guard, got %v", guard)
	}
}

func TestSpendUpdateDecrementsBalance(t *testing.T) {
	now := time.Now()
	update := spendUpdate(4.25, now)

	inc, ok := update["$inc"].(bson.M)
	if !ok {
		t.Fatal("expected $inc section")
	}
	if inc["currentCredits"] != -4.25 {
		t.Fatalf("expected currentCredits to drop by 4.25, got %v", inc["currentCredits"])
	}
	if inc["totalSpent"] != 4.25 {
		t.Fatalf("expected totalSpent to grow by 4.25, got %v", inc["totalSpent"])
	}
}

func TestEarnUpdateIncrementsBalance(t *testing.T) {
	now := time.Now()
	update := earnUpdate(2.00, now)

	inc, ok := update["$inc"].(bson.M)
	if !ok {
		t.Fatal("expected $inc section")
	}
	if inc["currentCredits"] != 2.00 {
		t.Fatalf("expected currentCredits to grow by 2.00, got %v", inc["currentCredits"])
	}
	if inc["totalEarned"] != 2.00 {
		t.Fatalf("expected totalEarned to grow by 2.00, got %v", inc["totalEarned"])
	}
}

func TestNewLedgerEntryRecordsBalanceAfter(t *testing.T) {
	userID := primitive.NewObjectID()
	orderID := primitive.NewObjectID()
	now := time.Now()

	entry := newLedgerEntry(userID, 1.50, models.CreditEarned, "order reward", &orderID, 11.50, now)

	if entry.UserID != userID {
		t.Fatal("expected ledger entry to carry the user id")
	}
	if entry.Type != models.CreditEarned {
		t.Fatalf("expected type %s, got %s", models.CreditEarned, entry.Type)
	}
	if entry.BalanceAfter != 11.50 {
		t.Fatalf("expected balanceAfter 11.50, got %v", entry.BalanceAfter)
	}
	if entry.OrderID == nil || *entry.OrderID != orderID {
		t.Fatal("expected ledger entry to reference the order")
	}
}

func TestLedgerBalancesChainAcrossEntries(t *testing.T) {
	userID := primitive.NewObjectID()
	now := time.Now()

	balance := 0.0
	var history []models.CreditHistory

	for _, amount := range []float64{5.00, 2.50} {
		balance = roundCents(balance + amount)
		history = append(history, newLedgerEntry(userID, amount, models.CreditEarned, "order reward", nil, balance, now))
	}

	balance = roundCents(balance - 3.00)
	history = append(history, newLedgerEntry(userID, 3.00, models.CreditSpent, "order payment", nil, balance, now))

	expected := []float64{5.00, 7.50, 4.50}
	for i, entry := range history {
		if entry.BalanceAfter != expected[i] {
			t.Fatalf("entry %d: expected balanceAfter %v, got %v", i, expected[i], entry.BalanceAfter)
		}
	}
}
