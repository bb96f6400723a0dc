package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/foodiehub/ordering-api/models"
)

// GetSettings returns the singleton settings document, creating the defaults on first read.
func (s *Store) GetSettings(ctx context.Context) (*models.RestaurantSettings, error) {
	defaults := models.DefaultSettings()
	defaults.UpdatedAt = s.clock()
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var out models.RestaurantSettings
	err := s.Settings.FindOneAndUpdate(ctx, bson.M{}, bson.M{"$setOnInsert": defaults}, opts).Decode(&out)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", mapErr(err))
	}
	return &out, nil
}

func (s *Store) SaveSettings(ctx context.Context, rs *models.RestaurantSettings) error {
	rs.UpdatedAt = s.clock()
	opts := options.Replace().SetUpsert(true)
	if _, err := s.Settings.ReplaceOne(ctx, bson.M{"_id": rs.ID}, rs, opts); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// SetOpeningHours replaces the entry for h.Day in place.
func (s *Store) SetOpeningHours(ctx context.Context, h models.OpeningHours) (*models.RestaurantSettings, error) {
	filter := bson.M{"openingHours.day": h.Day}
	update := bson.M{"$set": bson.M{"openingHours.$": h, "updatedAt": s.clock()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var out models.RestaurantSettings
	if err := s.Settings.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

// GetOffer returns the banner, or ErrNotFound when none has been saved.
func (s *Store) GetOffer(ctx context.Context) (*models.Offer, error) {
	var o models.Offer
	if err := s.Offers.FindOne(ctx, bson.M{}).Decode(&o); err != nil {
		return nil, mapErr(err)
	}
	return &o, nil
}

// SaveOffer writes the banner singleton. created reports whether it was inserted.
func (s *Store) SaveOffer(ctx context.Context, o *models.Offer) (created bool, err error) {
	now := s.clock()
	o.UpdatedAt = now
	if o.ID.IsZero() {
		o.CreatedAt = now
		res, err := s.Offers.InsertOne(ctx, o)
		if err != nil {
			return false, fmt.Errorf("insert offer: %w", err)
		}
		o.ID = res.InsertedID.(primitive.ObjectID)
		return true, nil
	}
	if _, err := s.Offers.ReplaceOne(ctx, bson.M{"_id": o.ID}, o); err != nil {
		return false, fmt.Errorf("replace offer: %w", err)
	}
	return false, nil
}

// GetDeliveryPlatforms returns the platform links, creating the defaults on first read.
func (s *Store) GetDeliveryPlatforms(ctx context.Context) (*models.DeliveryPlatforms, error) {
	defaults := models.DefaultDeliveryPlatforms()
	defaults.UpdatedAt = s.clock()
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var out models.DeliveryPlatforms
	err := s.DeliveryPlatforms.FindOneAndUpdate(ctx, bson.M{}, bson.M{"$setOnInsert": defaults}, opts).Decode(&out)
	if err != nil {
		return nil, fmt.Errorf("load delivery platforms: %w", mapErr(err))
	}
	return &out, nil
}

func (s *Store) SaveDeliveryPlatforms(ctx context.Context, dp *models.DeliveryPlatforms) error {
	dp.UpdatedAt = s.clock()
	opts := options.Replace().SetUpsert(true)
	if _, err := s.DeliveryPlatforms.ReplaceOne(ctx, bson.M{"_id": dp.ID}, dp, opts); err != nil {
		return fmt.Errorf("save delivery platforms: %w", err)
	}
	return nil
}
