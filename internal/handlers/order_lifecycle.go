package handlers

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"campuscafe/internal/models"
)

// preparingLeadTime is the default completion estimate applied when a vendor
// starts preparing without giving one.
const preparingLeadTime = 15 * time.Minute

type statusTransition struct {
	Set          bson.M
	Unset        bson.M
	AwardCredits bool
}

// applyStatusPolicy computes the field changes for a status transition.
//
//   - entering Preparing fills in the completion estimate: an explicit value
//     from the vendor always wins, otherwise now+preparingLeadTime is set
//     only when no estimate exists yet
//   - entering Completed stamps completedTime (restamped on repeat calls, so
//     it can never go back to nil while Completed)
//   - leaving Completed clears completedTime
//   - credits are awarded only on the transition into Completed
func applyStatusPolicy(order models.Order, newStatus models.OrderStatus, explicitEstimate *time.Time, now time.Time) statusTransition {
	transition := statusTransition{
		Set:   bson.M{"status": newStatus},
		Unset: bson.M{},
	}

	if newStatus == models.StatusPreparing {
		if explicitEstimate != nil {
			transition.Set["estimatedCompletionTime"] = *explicitEstimate
		} else if order.EstimatedTime == nil {
			transition.Set["estimatedCompletionTime"] = now.Add(preparingLeadTime)
		}
	} else if explicitEstimate != nil {
		transition.Set["estimatedCompletionTime"] = *explicitEstimate
	}

	if newStatus == models.StatusCompleted {
		transition.Set["completedTime"] = now
		transition.AwardCredits = order.Status != models.StatusCompleted
	} else if order.Status == models.StatusCompleted {
		transition.Unset["completedTime"] = ""
	}

	return transition
}

// cancelAllowed reports whether an order may still be cancelled.
func cancelAllowed(status models.OrderStatus) bool {
	return status == models.StatusPending || status == models.StatusConfirmed
}

func formatOrderNumber(day time.Time, seq int64) string {
	return fmt.Sprintf("%s-%04d", day.Format("20060102"), seq)
}

// nextOrderNumber draws the next number from the day-scoped counter. The
// upsert with $inc is atomic, so numbers never collide within a day.
func nextOrderNumber(ctx context.Context, db *mongo.Database, now time.Time) (string, error) {
	counterID := "orders-" + now.Format("20060102")

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := db.Collection("counters").FindOneAndUpdate(ctx,
		bson.M{"_id": counterID},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return "", err
	}

	return formatOrderNumber(now, counter.Seq), nil
}
