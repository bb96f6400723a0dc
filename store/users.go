package store

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/foodiehub/ordering-api/models"
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser inserts u and sets its ID. A taken email yields ErrDuplicate.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	now := s.clock()
	u.Email = normalizeEmail(u.Email)
	u.CreatedAt, u.UpdatedAt = now, now
	res, err := s.Users.InsertOne(ctx, u)
	if err != nil {
		return fmt.Errorf("insert user: %w", mapErr(err))
	}
	u.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.Users.FindOne(ctx, bson.M{"email": normalizeEmail(email)}).Decode(&u); err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (s *Store) UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.Users.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

// AdjustPoints applies delta to the balance in a single $inc and returns the updated user.
func (s *Store) AdjustPoints(ctx context.Context, id primitive.ObjectID, delta int64) (*models.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{
		"$inc": bson.M{"points": delta},
		"$set": bson.M{"updatedAt": s.clock()},
	}
	var u models.User
	if err := s.Users.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&u); err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

// DebitPoints subtracts cost only if the balance covers it. ErrNotFound means
// either the user is gone or the balance is short.
func (s *Store) DebitPoints(ctx context.Context, id primitive.ObjectID, cost int64) (*models.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	filter := bson.M{"_id": id, "points": bson.M{"$gte": cost}}
	update := bson.M{
		"$inc": bson.M{"points": -cost},
		"$set": bson.M{"updatedAt": s.clock()},
	}
	var u models.User
	if err := s.Users.FindOneAndUpdate(ctx, filter, update, opts).Decode(&u); err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

// EnsureUser creates the account unless the email is already registered.
func (s *Store) EnsureUser(ctx context.Context, u *models.User) (bool, error) {
	existing, err := s.UserByEmail(ctx, u.Email)
	switch {
	case err == nil:
		*u = *existing
		return false, nil
	case err != ErrNotFound:
		return false, err
	}
	if err := s.CreateUser(ctx, u); err != nil {
		return false, err
	}
	return true, nil
}
