package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/foodiehub/ordering-api/models"
)

func (s *Store) CreateFeedback(ctx context.Context, f *models.Feedback) error {
	f.ID = primitive.NilObjectID
	f.Author = nil
	if f.Type == "" {
		f.Type = models.FeedbackGeneral
	}
	f.Status = models.FeedbackPending
	f.CreatedAt = s.clock()
	res, err := s.Feedback.InsertOne(ctx, f)
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	f.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *Store) FeedbackForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Feedback, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.Feedback.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return all[models.Feedback](ctx, cur)
}

func feedbackPipeline(match bson.M) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "userId",
			"foreignField": "_id",
			"as":           "user",
			"pipeline": bson.A{
				bson.M{"$project": bson.M{"name": 1, "email": 1}},
			},
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$user", "preserveNullAndEmptyArrays": true}}},
	}
}

// AllFeedback lists every submission with its author, optionally filtered by status.
func (s *Store) AllFeedback(ctx context.Context, status models.FeedbackStatus) ([]models.Feedback, error) {
	match := bson.M{}
	if status != "" {
		match["status"] = status
	}
	cur, err := s.Feedback.Aggregate(ctx, feedbackPipeline(match))
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return all[models.Feedback](ctx, cur)
}

// UpdateFeedback sets status and admin notes and returns the entry with its author.
func (s *Store) UpdateFeedback(ctx context.Context, id primitive.ObjectID, status models.FeedbackStatus, notes string) (*models.Feedback, error) {
	set := bson.M{"adminNotes": notes}
	if status != "" {
		set["status"] = status
	}
	res, err := s.Feedback.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return nil, fmt.Errorf("update feedback: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	cur, err := s.Feedback.Aggregate(ctx, feedbackPipeline(bson.M{"_id": id}))
	if err != nil {
		return nil, fmt.Errorf("reload feedback: %w", err)
	}
	rows, err := all[models.Feedback](ctx, cur)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

func (s *Store) DeleteFeedback(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.Feedback.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete feedback: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
