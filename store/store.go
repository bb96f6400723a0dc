// Package store holds the MongoDB repositories for every document type.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
)

// Store groups the collections used by the API.
type Store struct {
	Users             *mongo.Collection
	Products          *mongo.Collection
	Categories        *mongo.Collection
	Deals             *mongo.Collection
	UserDeals         *mongo.Collection
	Orders            *mongo.Collection
	Settings          *mongo.Collection
	Offers            *mongo.Collection
	Feedback          *mongo.Collection
	DeliveryPlatforms *mongo.Collection

	db  *mongo.Database
	now func() time.Time
}

func New(db *mongo.Database) *Store {
	return &Store{
		Users:             db.Collection("users"),
		Products:          db.Collection("products"),
		Categories:        db.Collection("categories"),
		Deals:             db.Collection("deals"),
		UserDeals:         db.Collection("userdeals"),
		Orders:            db.Collection("orders"),
		Settings:          db.Collection("restaurantsettings"),
		Offers:            db.Collection("offers"),
		Feedback:          db.Collection("feedback"),
		DeliveryPlatforms: db.Collection("deliveryplatforms"),
		db:                db,
		now:               time.Now,
	}
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, nil)
}

// ParseID converts a hex string into an ObjectID.
func ParseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid id %q: %w", hex, err)
	}
	return id, nil
}

func (s *Store) clock() time.Time {
	if s.now == nil {
		return time.Now().UTC()
	}
	return s.now().UTC()
}

// mapErr translates driver errors into the package's sentinel errors.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}

func all[T any](ctx context.Context, cur *mongo.Cursor) ([]T, error) {
	defer cur.Close(ctx)
	out := make([]T, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
