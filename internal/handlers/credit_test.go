package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// testDatabase returns a handle that connects lazily; tests exercising
// pre-database paths never touch a live server.
func testDatabase(t *testing.T) *mongo.Database {
	t.Helper()

	client, err := mongo.Connect(context.Background(),
		options.Client().
			ApplyURI("mongodb://127.0.0.1:1").
			SetServerSelectionTimeout(time.Millisecond))
	if err != nil {
		t.Fatalf("client init failed: %v", err)
	}
	return client.Database("campuscafe_test")
}

func TestSpendCreditsHandlerRejectsNonPositiveAmount(t *testing.T) {
	gin.SetMode(gin.TestMode)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Set("userId", primitive.NewObjectID())
	c.Request = httptest.NewRequest("POST", "/api/credits/spend",
		strings.NewReader(`{"amount": -5, "description": "coffee"}`))

	SpendCredits(testDatabase(t))(c)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if !strings.Contains(recorder.Body.String(), "amount must be positive") {
		t.Fatalf("unexpected body: %s", recorder.Body.String())
	}
}

func TestSpendCreditsHandlerRejectsBadOrderID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Set("userId", primitive.NewObjectID())
	c.Request = httptest.NewRequest("POST", "/api/credits/spend",
		strings.NewReader(`{"amount": 5, "description": "coffee", "orderId": "nope"}`))

	SpendCredits(testDatabase(t))(c)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", recorder.Code, recorder.Body.String())
	}
}

func TestSpendStatusInsufficientBalanceIsConflict(t *testing.T) {
	status, message := spendStatus(errInsufficientCredits)
	if status != http.StatusConflict {
		t.Fatalf("expected 409, got %d", status)
	}
	if message != "insufficient credits" {
		t.Fatalf("unexpected message: %s", message)
	}
}

func TestSpendStatusMapping(t *testing.T) {
	if status, _ := spendStatus(errInvalidCreditAmount); status != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid amount, got %d", status)
	}
	if status, _ := spendStatus(errors.New("broken pipe")); status != http.StatusInternalServerError {
		t.Fatalf("expected 500 for unknown errors, got %d", status)
	}
}
