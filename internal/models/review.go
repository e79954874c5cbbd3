package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReviewStatus string

const (
	ReviewPending ReviewStatus = "Pending"
	ReviewReplied ReviewStatus = "Replied"
	ReviewHidden  ReviewStatus = "Hidden"
)

type Review struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID     primitive.ObjectID `bson:"orderId" json:"orderId"`
	MenuItemID  primitive.ObjectID `bson:"menuItemId" json:"menuItemId"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	VendorEmail string             `bson:"vendorEmail" json:"vendorEmail"`
	Rating      int                `bson:"rating" json:"rating"`
	Comment     string             `bson:"comment,omitempty" json:"comment,omitempty"`
	Reply       string             `bson:"reply,omitempty" json:"reply,omitempty"`
	RepliedAt   *time.Time         `bson:"repliedAt,omitempty" json:"repliedAt,omitempty"`
	Status      ReviewStatus       `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
