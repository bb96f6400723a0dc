package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Category struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name" validate:"required"`
	Description  string             `json:"description" bson:"description"`
	ImageURL     string             `json:"imageUrl" bson:"imageUrl"`
	Icon         string             `json:"icon" bson:"icon"`
	DisplayOrder int                `json:"displayOrder" bson:"displayOrder"`
	IsActive     bool               `json:"isActive" bson:"isActive"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

const DefaultCategoryIcon = "🍽️"

type Product struct {
	ID           primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Name         string              `json:"name" bson:"name" validate:"required"`
	ImageURL     string              `json:"imageUrl" bson:"imageUrl" validate:"required"`
	Price        float64             `json:"price" bson:"price" validate:"gte=0"`
	Description  string              `json:"description" bson:"description"`
	OfferPercent float64             `json:"offerPercent" bson:"offerPercent" validate:"gte=0,lte=100"`
	CategoryID   *primitive.ObjectID `json:"categoryId" bson:"categoryId"`
	IsAvailable  bool                `json:"isAvailable" bson:"isAvailable"`
	Stock        int                 `json:"stock" bson:"stock" validate:"gte=0"`
	SKU          string              `json:"sku" bson:"sku"`
	Brand        string              `json:"brand" bson:"brand"`
	Weight       string              `json:"weight" bson:"weight"`
	Dimensions   string              `json:"dimensions" bson:"dimensions"`
	Tags         []string            `json:"tags" bson:"tags"`
	Rating       float64             `json:"rating" bson:"rating" validate:"gte=0,lte=5"`
	ReviewCount  int                 `json:"reviewCount" bson:"reviewCount"`
	CreatedAt    time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// ProductWithCategory is a product listing row with its category joined in.
type ProductWithCategory struct {
	Product  `bson:",inline"`
	Category *CategorySummary `json:"category,omitempty" bson:"category,omitempty"`
}

type CategorySummary struct {
	ID   primitive.ObjectID `json:"id" bson:"_id"`
	Name string             `json:"name" bson:"name"`
	Icon string             `json:"icon" bson:"icon"`
}
