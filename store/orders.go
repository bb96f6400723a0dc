package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/foodiehub/ordering-api/models"
)

// CreateOrder inserts an order. A second order for the same payment intent
// collides with the unique paymentIntentId index and yields ErrDuplicate.
func (s *Store) CreateOrder(ctx context.Context, o *models.Order) error {
	now := s.clock()
	o.ID = primitive.NilObjectID
	if o.DeliveryPlatform == "" {
		o.DeliveryPlatform = models.DeliveryNone
	}
	o.CreatedAt, o.UpdatedAt = now, now
	res, err := s.Orders.InsertOne(ctx, o)
	if err != nil {
		return fmt.Errorf("insert order: %w", mapErr(err))
	}
	o.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// OrdersForUser returns the user's orders newest first.
func (s *Store) OrdersForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.Orders.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return all[models.Order](ctx, cur)
}

// SetDeliveryPlatform updates the fulfillment method of an order owned by userID.
// Orders belonging to someone else are reported as ErrNotFound.
func (s *Store) SetDeliveryPlatform(ctx context.Context, orderID, userID primitive.ObjectID, platform models.DeliveryPlatform) (*models.Order, error) {
	filter := bson.M{"_id": orderID, "userId": userID}
	update := bson.M{"$set": bson.M{"deliveryPlatform": platform, "updatedAt": s.clock()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var o models.Order
	if err := s.Orders.FindOneAndUpdate(ctx, filter, update, opts).Decode(&o); err != nil {
		return nil, mapErr(err)
	}
	return &o, nil
}
