package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DeliveryPlatform is the fulfillment method chosen for an order.
type DeliveryPlatform string

const (
	DeliveryNone      DeliveryPlatform = "none"
	DeliveryPickup    DeliveryPlatform = "pickup"
	DeliveryStandard  DeliveryPlatform = "standard"
	DeliveryExpress   DeliveryPlatform = "express"
	DeliveryOvernight DeliveryPlatform = "overnight"
)

func ParseDeliveryPlatform(s string) (DeliveryPlatform, error) {
	switch p := DeliveryPlatform(s); p {
	case DeliveryNone, DeliveryPickup, DeliveryStandard, DeliveryExpress, DeliveryOvernight:
		return p, nil
	default:
		return "", fmt.Errorf("invalid shipping method %q", s)
	}
}

// OrderItem is a line snapshotted at purchase time.
type OrderItem struct {
	ProductID primitive.ObjectID `json:"productId" bson:"productId"`
	Name      string             `json:"name" bson:"name"`
	Price     float64            `json:"price" bson:"price"`
	Quantity  int                `json:"quantity" bson:"quantity"`
}

type Order struct {
	ID               primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID           primitive.ObjectID `json:"userId" bson:"userId"`
	Items            []OrderItem        `json:"items" bson:"items"`
	Total            float64            `json:"total" bson:"total"`
	Discount         float64            `json:"discount" bson:"discount"`
	PointsRedeemed   int64              `json:"pointsRedeemed" bson:"pointsRedeemed"`
	PointsEarned     int64              `json:"pointsEarned" bson:"pointsEarned"`
	PaymentIntentID  string             `json:"paymentIntentId,omitempty" bson:"paymentIntentId,omitempty"`
	DeliveryPlatform DeliveryPlatform   `json:"deliveryPlatform" bson:"deliveryPlatform"`
	ShippingAddress  string             `json:"shippingAddress" bson:"shippingAddress"`
	DeliveryNotes    string             `json:"deliveryNotes" bson:"deliveryNotes"`
	CreatedAt        time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// CartItem is what the storefront sends: a product reference and a quantity.
type CartItem struct {
	ProductID string `json:"productId" validate:"required,len=24,hexadecimal"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}
