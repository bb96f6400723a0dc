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

// ProductFilter narrows a product listing. Nil fields are ignored.
type ProductFilter struct {
	OffersOnly bool
	CategoryID *primitive.ObjectID
	Available  *bool
}

func (f ProductFilter) match() bson.M {
	m := bson.M{}
	if f.OffersOnly {
		m["offerPercent"] = bson.M{"$gt": 0}
	}
	if f.CategoryID != nil {
		m["categoryId"] = *f.CategoryID
	}
	if f.Available != nil {
		m["isAvailable"] = *f.Available
	}
	return m
}

func productPipeline(match bson.M) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "categories",
			"localField":   "categoryId",
			"foreignField": "_id",
			"as":           "category",
			"pipeline": bson.A{
				bson.M{"$project": bson.M{"name": 1, "icon": 1}},
			},
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$category", "preserveNullAndEmptyArrays": true}}},
	}
}

// ListProducts returns products newest first with their category joined in.
func (s *Store) ListProducts(ctx context.Context, f ProductFilter) ([]models.ProductWithCategory, error) {
	cur, err := s.Products.Aggregate(ctx, productPipeline(f.match()))
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return all[models.ProductWithCategory](ctx, cur)
}

func (s *Store) ProductWithCategory(ctx context.Context, id primitive.ObjectID) (*models.ProductWithCategory, error) {
	cur, err := s.Products.Aggregate(ctx, productPipeline(bson.M{"_id": id}))
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	rows, err := all[models.ProductWithCategory](ctx, cur)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

func (s *Store) ProductByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var p models.Product
	if err := s.Products.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

// ProductsByIDs resolves a set of products in one round trip. Missing ids are
// simply absent from the result.
func (s *Store) ProductsByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error) {
	cur, err := s.Products.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	products, err := all[models.Product](ctx, cur)
	if err != nil {
		return nil, err
	}
	out := make(map[primitive.ObjectID]models.Product, len(products))
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	now := s.clock()
	p.ID = primitive.NilObjectID
	p.CreatedAt, p.UpdatedAt = now, now
	res, err := s.Products.InsertOne(ctx, p)
	if err != nil {
		return fmt.Errorf("insert product: %w", mapErr(err))
	}
	p.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// ReplaceProduct stores p over the existing document with the same ID.
func (s *Store) ReplaceProduct(ctx context.Context, p *models.Product) error {
	p.UpdatedAt = s.clock()
	res, err := s.Products.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return fmt.Errorf("replace product: %w", mapErr(err))
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ToggleAvailability flips isAvailable server side and returns the new state.
func (s *Store) ToggleAvailability(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"isAvailable": bson.M{"$not": bson.A{"$isAvailable"}},
			"updatedAt":   s.clock(),
		}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.Product
	if err := s.Products.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&p); err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

// DeleteProduct removes the product. Historical orders keep their snapshots.
func (s *Store) DeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.Products.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListCategories returns active categories by displayOrder then name.
func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "displayOrder", Value: 1}, {Key: "name", Value: 1}})
	cur, err := s.Categories.Find(ctx, bson.M{"isActive": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return all[models.Category](ctx, cur)
}

func (s *Store) CategoryByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	var c models.Category
	if err := s.Categories.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (s *Store) CreateCategory(ctx context.Context, c *models.Category) error {
	now := s.clock()
	c.ID = primitive.NilObjectID
	if c.Icon == "" {
		c.Icon = models.DefaultCategoryIcon
	}
	c.IsActive = true
	c.CreatedAt, c.UpdatedAt = now, now
	res, err := s.Categories.InsertOne(ctx, c)
	if err != nil {
		return fmt.Errorf("insert category: %w", mapErr(err))
	}
	c.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *Store) ReplaceCategory(ctx context.Context, c *models.Category) error {
	c.UpdatedAt = s.clock()
	res, err := s.Categories.ReplaceOne(ctx, bson.M{"_id": c.ID}, c)
	if err != nil {
		return fmt.Errorf("replace category: %w", mapErr(err))
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeactivateCategory hides the category from listings. Products keep their reference.
func (s *Store) DeactivateCategory(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{"isActive": false, "updatedAt": s.clock()}}
	res, err := s.Categories.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("deactivate category: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
