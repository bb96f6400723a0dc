package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/foodiehub/ordering-api/models"
)

func unexpired(now time.Time) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"expiryDate": nil},
		bson.M{"expiryDate": bson.M{"$gt": now}},
	}}
}

// ListActiveDeals returns active, unexpired deals, cheapest first.
func (s *Store) ListActiveDeals(ctx context.Context) ([]models.Deal, error) {
	filter := bson.M{"isActive": true}
	for k, v := range unexpired(s.clock()) {
		filter[k] = v
	}
	opts := options.Find().SetSort(bson.D{{Key: "pointsCost", Value: 1}})
	cur, err := s.Deals.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list deals: %w", err)
	}
	return all[models.Deal](ctx, cur)
}

func (s *Store) DealByID(ctx context.Context, id primitive.ObjectID) (*models.Deal, error) {
	var d models.Deal
	if err := s.Deals.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return nil, mapErr(err)
	}
	return &d, nil
}

func (s *Store) CreateDeal(ctx context.Context, d *models.Deal) error {
	now := s.clock()
	d.ID = primitive.NilObjectID
	d.IsActive = true
	d.CreatedAt, d.UpdatedAt = now, now
	res, err := s.Deals.InsertOne(ctx, d)
	if err != nil {
		return fmt.Errorf("insert deal: %w", mapErr(err))
	}
	d.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *Store) ReplaceDeal(ctx context.Context, d *models.Deal) error {
	d.UpdatedAt = s.clock()
	res, err := s.Deals.ReplaceOne(ctx, bson.M{"_id": d.ID}, d)
	if err != nil {
		return fmt.Errorf("replace deal: %w", mapErr(err))
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeactivateDeal(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{"isActive": false, "updatedAt": s.clock()}}
	res, err := s.Deals.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("deactivate deal: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UserDeal returns the user's redemption record for the deal, if any.
func (s *Store) UserDeal(ctx context.Context, userID, dealID primitive.ObjectID) (*models.UserDeal, error) {
	var ud models.UserDeal
	err := s.UserDeals.FindOne(ctx, bson.M{"userId": userID, "dealId": dealID}).Decode(&ud)
	if err != nil {
		return nil, mapErr(err)
	}
	return &ud, nil
}

// ClaimDealUse increments the user's usage of a deal only while it is below
// maxUses. When the cap is already reached the filter misses, the upsert
// collides with the unique (userId, dealId) index and ErrDuplicate is returned.
func (s *Store) ClaimDealUse(ctx context.Context, userID, dealID primitive.ObjectID, maxUses int, expiresAt time.Time) (*models.UserDeal, error) {
	filter := bson.M{
		"userId":    userID,
		"dealId":    dealID,
		"usedCount": bson.M{"$lt": maxUses},
	}
	update := bson.M{
		"$inc": bson.M{"usedCount": 1},
		"$set": bson.M{
			"redeemedAt": s.clock(),
			"isActive":   true,
			"expiresAt":  expiresAt,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var ud models.UserDeal
	if err := s.UserDeals.FindOneAndUpdate(ctx, filter, update, opts).Decode(&ud); err != nil {
		return nil, mapErr(err)
	}
	return &ud, nil
}

// ActiveUserDeals lists the user's unexpired redemptions with their deal joined in.
func (s *Store) ActiveUserDeals(ctx context.Context, userID primitive.ObjectID) ([]models.UserDeal, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"userId":    userID,
			"isActive":  true,
			"expiresAt": bson.M{"$gt": s.clock()},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "redeemedAt", Value: -1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "deals",
			"localField":   "dealId",
			"foreignField": "_id",
			"as":           "deal",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$deal", "preserveNullAndEmptyArrays": true}}},
	}
	cur, err := s.UserDeals.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("list user deals: %w", err)
	}
	return all[models.UserDeal](ctx, cur)
}
