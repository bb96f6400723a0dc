package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/foodiehub/ordering-api/models"
)

// SeedDemo fills an empty catalog with a few categories, products and deals.
// It does nothing when any product already exists.
func (s *Store) SeedDemo(ctx context.Context) (bool, error) {
	n, err := s.Products.CountDocuments(ctx, bson.M{})
	if err != nil {
		return false, fmt.Errorf("count products: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	mains := &models.Category{Name: "Mains", Icon: "🍔", DisplayOrder: 1}
	drinks := &models.Category{Name: "Drinks", Icon: "🥤", DisplayOrder: 2}
	for _, c := range []*models.Category{mains, drinks} {
		if err := s.CreateCategory(ctx, c); err != nil {
			return false, err
		}
	}

	products := []*models.Product{
		{Name: "Classic Burger", ImageURL: "/images/burger.jpg", Price: 14.5, CategoryID: &mains.ID, IsAvailable: true, Stock: 50},
		{Name: "Margherita Pizza", ImageURL: "/images/pizza.jpg", Price: 18, OfferPercent: 10, CategoryID: &mains.ID, IsAvailable: true, Stock: 30},
		{Name: "Iced Latte", ImageURL: "/images/latte.jpg", Price: 5.5, CategoryID: &drinks.ID, IsAvailable: true, Stock: 100},
	}
	for _, p := range products {
		if err := s.CreateProduct(ctx, p); err != nil {
			return false, err
		}
	}

	deals := []*models.Deal{
		{Title: "$5 off", Description: "Five dollars off your next order", PointsCost: 50, DiscountType: models.DiscountFixed, DiscountValue: 5, MaxUses: 3},
		{Title: "Free drink", Description: "Any drink on the house", PointsCost: 30, DiscountType: models.DiscountFreeItem, DiscountValue: 1, MaxUses: 1},
	}
	for _, d := range deals {
		if err := s.CreateDeal(ctx, d); err != nil {
			return false, err
		}
	}
	return true, nil
}
