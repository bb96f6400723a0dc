package models

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
	DiscountFreeItem   DiscountType = "freeItem"
)

// Deal is a points-priced voucher.
type Deal struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title         string             `json:"title" bson:"title" validate:"required"`
	Description   string             `json:"description" bson:"description" validate:"required"`
	PointsCost    int64              `json:"pointsCost" bson:"pointsCost" validate:"gt=0"`
	DiscountType  DiscountType       `json:"discountType" bson:"discountType"`
	DiscountValue float64            `json:"discountValue" bson:"discountValue" validate:"gt=0"`
	ImageURL      string             `json:"imageUrl" bson:"imageUrl"`
	IsActive      bool               `json:"isActive" bson:"isActive"`
	ExpiryDate    *time.Time         `json:"expiryDate,omitempty" bson:"expiryDate,omitempty"`
	MinOrderValue float64            `json:"minOrderValue" bson:"minOrderValue" validate:"gte=0"`
	MaxUses       int                `json:"maxUses" bson:"maxUses" validate:"gte=1"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Validate checks that the discount value makes sense for its type.
func (d *Deal) Validate() error {
	switch d.DiscountType {
	case DiscountPercentage:
		if d.DiscountValue <= 0 || d.DiscountValue > 100 {
			return fmt.Errorf("percentage discount must be in (0, 100], got %v", d.DiscountValue)
		}
	case DiscountFixed, DiscountFreeItem:
		if d.DiscountValue <= 0 {
			return errors.New("discount value must be positive")
		}
	default:
		return fmt.Errorf("unknown discount type %q", d.DiscountType)
	}
	if d.MaxUses < 1 {
		return errors.New("maxUses must be at least 1")
	}
	return nil
}

// Expired reports whether the deal's expiry date has passed at now.
func (d *Deal) Expired(now time.Time) bool {
	return d.ExpiryDate != nil && d.ExpiryDate.Before(now)
}

// UserDeal records a user's redemptions of one deal.
type UserDeal struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID     primitive.ObjectID `json:"userId" bson:"userId"`
	DealID     primitive.ObjectID `json:"dealId" bson:"dealId"`
	RedeemedAt time.Time          `json:"redeemedAt" bson:"redeemedAt"`
	UsedCount  int                `json:"usedCount" bson:"usedCount"`
	IsActive   bool               `json:"isActive" bson:"isActive"`
	ExpiresAt  *time.Time         `json:"expiresAt,omitempty" bson:"expiresAt,omitempty"`
	Deal       *Deal              `json:"deal,omitempty" bson:"deal,omitempty"`
}
