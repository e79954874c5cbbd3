package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"campuscafe/internal/middleware"
	"campuscafe/internal/models"
)

const dispatchBatchSize = 50

// Dispatcher drains the outbox into the notifications topic. Events that
// fail to publish stay unsent and are retried on the next tick.
type Dispatcher struct {
	db       *mongo.Database
	producer sarama.SyncProducer
	topic    string
	interval time.Duration
	logger   *zap.Logger
}

type eventEnvelope struct {
	Event      string          `json:"event"`
	Group      string          `json:"group"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurredAt"`
}

func NewDispatcher(db *mongo.Database, producer sarama.SyncProducer, topic string, interval time.Duration, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		db:       db,
		producer: producer,
		topic:    topic,
		interval: interval,
		logger:   logger,
	}
}

// Run polls until the context is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("outbox dispatcher stopped")
			return
		case <-ticker.C:
			d.dispatchOnce(ctx)
		}
	}
}

func (d *Dispatcher) dispatchOnce(ctx context.Context) {
	findCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetLimit(dispatchBatchSize)

	cursor, err := d.db.Collection("outbox").Find(findCtx, bson.M{"sent": false}, opts)
	if err != nil {
		d.logger.Error("outbox query failed", zap.Error(err))
		return
	}

	var events []models.OutboxEvent
	if err := cursor.All(findCtx, &events); err != nil {
		d.logger.Error("outbox decode failed", zap.Error(err))
		return
	}

	for _, event := range events {
		if err := d.publish(event); err != nil {
			d.logger.Warn("event publish failed, will retry",
				zap.String("event", event.Event),
				zap.String("group", event.Group),
				zap.Int("attempts", event.Attempts+1),
				zap.Error(err))
			d.markAttempt(ctx, event)
			continue
		}
		d.markSent(ctx, event)
		middleware.RecordEventPublished(event.Event)
	}
}

// buildMessage wraps the outbox event for the hub. The group key doubles as
// the partition key so one group's events stay in order.
func buildMessage(event models.OutboxEvent, topic string) (*sarama.ProducerMessage, error) {
	envelope, err := json.Marshal(eventEnvelope{
		Event:      event.Event,
		Group:      event.Group,
		Payload:    json.RawMessage(event.Payload),
		OccurredAt: event.CreatedAt,
	})
	if err != nil {
		return nil, err
	}

	return &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(event.Group),
		Value: sarama.ByteEncoder(envelope),
	}, nil
}

func (d *Dispatcher) publish(event models.OutboxEvent) error {
	msg, err := buildMessage(event, d.topic)
	if err != nil {
		return err
	}

	_, _, err = d.producer.SendMessage(msg)
	return err
}

func (d *Dispatcher) markSent(ctx context.Context, event models.OutboxEvent) {
	updateCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	_, err := d.db.Collection("outbox").UpdateOne(updateCtx,
		bson.M{"_id": event.ID},
		bson.M{"$set": bson.M{"sent": true, "sentAt": now}, "$inc": bson.M{"attempts": 1}})
	if err != nil {
		d.logger.Error("outbox markSent failed", zap.Error(err))
	}
}

func (d *Dispatcher) markAttempt(ctx context.Context, event models.OutboxEvent) {
	updateCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := d.db.Collection("outbox").UpdateOne(updateCtx,
		bson.M{"_id": event.ID},
		bson.M{"$inc": bson.M{"attempts": 1}})
	if err != nil {
		d.logger.Error("outbox markAttempt failed", zap.Error(err))
	}
}
