package handlers

import (
	"testing"
	"time"

	"campuscafe/internal/models"
)

func TestApplyStatusPolicyPreparingSetsDefaultEstimate(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	order := models.Order{Status: models.StatusConfirmed}

	transition := applyStatusPolicy(order, models.StatusPreparing, nil, now)

	estimate, ok := transition.Set["estimatedCompletionTime"].(time.Time)
	if !ok {
		t.Fatal("expected estimatedCompletionTime to be set when entering Preparing")
	}
	if !estimate.Equal(now.Add(preparingLeadTime)) {
		t.Fatalf("expected default estimate %v, got %v", now.Add(preparingLeadTime), estimate)
	}
}

func TestApplyStatusPolicyPreparingKeepsExistingEstimate(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	existing := now.Add(45 * time.Minute)
	order := models.Order{Status: models.StatusConfirmed, EstimatedTime: &existing}

	transition := applyStatusPolicy(order, models.StatusPreparing, nil, now)

	if _, ok := transition.Set["estimatedCompletionTime"]; ok {
		t.Fatal("expected existing estimate to be left alone without an explicit value")
	}
}

func TestApplyStatusPolicyExplicitEstimateWins(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	existing := now.Add(45 * time.Minute)
	explicit := now.Add(10 * time.Minute)
	order := models.Order{Status: models.StatusConfirmed, EstimatedTime: &existing}

	transition := applyStatusPolicy(order, models.StatusPreparing, &explicit, now)

	estimate, ok := transition.Set["estimatedCompletionTime"].(time.Time)
	if !ok {
		t.Fatal("expected explicit estimate to be set")
	}
	if !estimate.Equal(explicit) {
		t.Fatalf("expected explicit estimate %v, got %v", explicit, estimate)
	}
}

func TestApplyStatusPolicyExplicitEstimateOnOtherStatus(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	explicit := now.Add(20 * time.Minute)
	order := models.Order{Status: models.StatusPreparing}

	transition := applyStatusPolicy(order, models.StatusReady, &explicit, now)

	estimate, ok := transition.Set["estimatedCompletionTime"].(time.Time)
	if !ok || !estimate.Equal(explicit) {
		t.Fatalf("expected explicit estimate %v on Ready, got %v (set=%v)", explicit, estimate, ok)
	}
}

func TestApplyStatusPolicyCompletedStampsTimeAndAwards(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	order := models.Order{Status: models.StatusReady}

	transition := applyStatusPolicy(order, models.StatusCompleted, nil, now)

	stamped, ok := transition.Set["completedTime"].(time.Time)
	if !ok || !stamped.Equal(now) {
		t.Fatalf("expected completedTime %v, got %v (set=%v)", now, stamped, ok)
	}
	if !transition.AwardCredits {
		t.Fatal("expected credits to be awarded on the transition into Completed")
	}
}

func TestApplyStatusPolicyCompletedRepeatDoesNotAwardTwice(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	order := models.Order{Status: models.StatusCompleted}

	transition := applyStatusPolicy(order, models.StatusCompleted, nil, now)

	if transition.AwardCredits {
		t.Fatal("expected no second award when already Completed")
	}
	if _, ok := transition.Set["completedTime"]; !ok {
		t.Fatal("expected completedTime to be restamped on repeat Completed")
	}
}

func TestApplyStatusPolicyLeavingCompletedClearsTime(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	completed := now.Add(-time.Hour)
	order := models.Order{Status: models.StatusCompleted, CompletedTime: &completed}

	transition := applyStatusPolicy(order, models.StatusReady, nil, now)

	if _, ok := transition.Unset["completedTime"]; !ok {
		t.Fatal("expected completedTime to be unset when leaving Completed")
	}
	if transition.AwardCredits {
		t.Fatal("expected no award when leaving Completed")
	}
}

func TestApplyStatusPolicyOtherTransitionsLeaveCompletedTimeAlone(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	order := models.Order{Status: models.StatusPending}

	transition := applyStatusPolicy(order, models.StatusConfirmed, nil, now)

	if _, ok := transition.Set["completedTime"]; ok {
		t.Fatal("expected no completedTime on Confirmed")
	}
	if len(transition.Unset) != 0 {
		t.Fatalf("expected no unsets, got %v", transition.Unset)
	}
}

func TestCancelAllowed(t *testing.T) {
	allowed := []models.OrderStatus{models.StatusPending, models.StatusConfirmed}
	for _, status := range allowed {
		if !cancelAllowed(status) {
			t.Fatalf("expected cancel to be allowed from %s", status)
		}
	}

	blocked := []models.OrderStatus{
		models.StatusPreparing,
		models.StatusReady,
		models.StatusInDelivery,
		models.StatusCompleted,
		models.StatusCancelled,
	}
	for _, status := range blocked {
		if cancelAllowed(status) {
			t.Fatalf("expected cancel to be blocked from %s", status)
		}
	}
}

func TestFormatOrderNumber(t *testing.T) {
	day := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

	if got := formatOrderNumber(day, 1); got != "20260310-0001" {
		t.Fatalf("expected 20260310-0001, got %s", got)
	}
	if got := formatOrderNumber(day, 427); got != "20260310-0427" {
		t.Fatalf("expected 20260310-0427, got %s", got)
	}
	if got := formatOrderNumber(day, 12345); got != "20260310-12345" {
		t.Fatalf("expected sequence beyond four digits to widen, got %s", got)
	}
}

func TestParseOrderStatusCaseInsensitive(t *testing.T) {
	for _, value := range []string{"preparing", "PREPARING", " Preparing "} {
		status, ok := models.ParseOrderStatus(value)
		if !ok || status != models.StatusPreparing {
			t.Fatalf("expected %q to parse as Preparing, got %q ok=%v", value, status, ok)
		}
	}

	if _, ok := models.ParseOrderStatus("Shipped"); ok {
		t.Fatal("expected unknown status to be rejected")
	}
}
