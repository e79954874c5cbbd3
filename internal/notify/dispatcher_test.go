package notify

import (
	"encoding/json"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"campuscafe/internal/models"
)

func TestBuildMessageKeyedByGroup(t *testing.T) {
	event := models.OutboxEvent{
		ID:        primitive.NewObjectID(),
		Event:     EventNewOrder,
		Group:     MerchantGroup("cafe@campus.edu"),
		Payload:   []byte(`{"orderNumber":"20260310-0001"}`),
		CreatedAt: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}

	msg, err := buildMessage(event, "cafe.notifications")
	if err != nil {
		t.Fatalf("buildMessage returned error: %v", err)
	}

	if msg.Topic != "cafe.notifications" {
		t.Fatalf("unexpected topic: %s", msg.Topic)
	}

	key, err := msg.Key.Encode()
	if err != nil {
		t.Fatalf("key encode failed: %v", err)
	}
	if string(key) != "Merchant_cafe@campus.edu" {
		t.Fatalf("expected group as partition key, got %s", key)
	}
}

func TestBuildMessageEnvelope(t *testing.T) {
	created := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	event := models.OutboxEvent{
		Event:     EventReviewReply,
		Group:     CustomerGroup("user-1"),
		Payload:   []byte(`{"reply":"thanks"}`),
		CreatedAt: created,
	}

	msg, err := buildMessage(event, "cafe.notifications")
	if err != nil {
		t.Fatalf("buildMessage returned error: %v", err)
	}

	value, err := msg.Value.Encode()
	if err != nil {
		t.Fatalf("value encode failed: %v", err)
	}

	var envelope eventEnvelope
	if err := json.Unmarshal(value, &envelope); err != nil {
		t.Fatalf("envelope decode failed: %v", err)
	}

	if envelope.Event != EventReviewReply {
		t.Fatalf("expected event %s, got %s", EventReviewReply, envelope.Event)
	}
	if envelope.Group != "Customer_user-1" {
		t.Fatalf("unexpected group: %s", envelope.Group)
	}
	if string(envelope.Payload) != `{"reply":"thanks"}` {
		t.Fatalf("expected payload to pass through untouched, got %s", envelope.Payload)
	}
	if !envelope.OccurredAt.Equal(created) {
		t.Fatalf("expected occurredAt %v, got %v", created, envelope.OccurredAt)
	}
}

func TestGroupNames(t *testing.T) {
	if got := MerchantGroup("cafe@campus.edu"); got != "Merchant_cafe@campus.edu" {
		t.Fatalf("unexpected merchant group: %s", got)
	}
	if got := CustomerGroup("651f1a2b"); got != "Customer_651f1a2b" {
		t.Fatalf("unexpected customer group: %s", got)
	}
}
