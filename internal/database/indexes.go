package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureVendorIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("vendors").Indexes()

	emailIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	}

	log.Println("EnsureVendorIndexes: creating email_unique index")
	_, err := indexes.CreateOne(ctx, emailIndex)
	if err != nil {
		log.Println("EnsureVendorIndexes: email index error:", err)
		return err
	}
	return nil
}

func EnsureMenuIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("menu_items").Indexes()

	vendorNameIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "vendorEmail", Value: 1},
			{Key: "name", Value: 1},
		},
		Options: options.Index().
			SetName("vendor_name_unique").
			SetUnique(true),
	}

	log.Println("EnsureMenuIndexes: creating vendor_name_unique index")
	_, err := indexes.CreateOne(ctx, vendorNameIndex)
	if err != nil {
		log.Println("EnsureMenuIndexes: vendor/name index error:", err)
		return err
	}
	return nil
}

func EnsureOrderIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("orders").Indexes()

	orderIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("user_created_index"),
		},
		{
			Keys:    bson.D{{Key: "vendorEmail", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("vendor_created_index"),
		},
		{
			Keys:    bson.D{{Key: "orderNumber", Value: 1}},
			Options: options.Index().SetName("orderNumber_unique").SetUnique(true),
		},
	}

	log.Println("EnsureOrderIndexes: creating order indexes")
	_, err := indexes.CreateMany(ctx, orderIndexes)
	if err != nil {
		log.Println("EnsureOrderIndexes: order index error:", err)
		return err
	}
	return nil
}

func EnsureCreditIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	userIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().
			SetName("userId_unique").
			SetUnique(true),
	}

	log.Println("EnsureCreditIndexes: creating userId_unique index")
	if _, err := db.Collection("user_credits").Indexes().CreateOne(ctx, userIndex); err != nil {
		log.Println("EnsureCreditIndexes: user credit index error:", err)
		return err
	}

	historyIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("user_created_index"),
	}

	if _, err := db.Collection("credit_history").Indexes().CreateOne(ctx, historyIndex); err != nil {
		log.Println("EnsureCreditIndexes: history index error:", err)
		return err
	}
	return nil
}

func EnsureReviewIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	reviewIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "orderId", Value: 1},
			{Key: "menuItemId", Value: 1},
		},
		Options: options.Index().
			SetName("order_item_unique").
			SetUnique(true),
	}

	log.Println("EnsureReviewIndexes: creating order_item_unique index")
	_, err := db.Collection("reviews").Indexes().CreateOne(ctx, reviewIndex)
	if err != nil {
		log.Println("EnsureReviewIndexes: review index error:", err)
		return err
	}
	return nil
}

func EnsureOutboxIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pendingIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "sent", Value: 1}, {Key: "createdAt", Value: 1}},
		Options: options.Index().SetName("pending_index"),
	}

	log.Println("EnsureOutboxIndexes: creating pending_index index")
	_, err := db.Collection("outbox").Indexes().CreateOne(ctx, pendingIndex)
	if err != nil {
		log.Println("EnsureOutboxIndexes: outbox index error:", err)
		return err
	}
	return nil
}
