package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Offer is the storefront banner (singleton).
type Offer struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ImageURL  string             `json:"imageUrl" bson:"imageUrl"`
	Headline  string             `json:"headline" bson:"headline"`
	Subtext   string             `json:"subtext" bson:"subtext"`
	CreatedAt time.Time          `json:"createdAt,omitempty" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt,omitempty" bson:"updatedAt"`
}

// DeliveryPlatforms holds third-party delivery links (singleton).
type DeliveryPlatforms struct {
	ID          primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	UberEatsURL string             `json:"ubereats" bson:"ubereatsUrl"`
	MenulogURL  string             `json:"menulog" bson:"menulogUrl"`
	DoorDashURL string             `json:"doordash" bson:"doordashUrl"`
	IsEnabled   bool               `json:"isEnabled" bson:"isEnabled"`
	UpdatedAt   time.Time          `json:"-" bson:"updatedAt"`
}

func DefaultDeliveryPlatforms() DeliveryPlatforms {
	return DeliveryPlatforms{
		UberEatsURL: "https://www.ubereats.com/au",
		MenulogURL:  "https://www.menulog.com.au/",
		DoorDashURL: "https://www.doordash.com/en-AU",
		IsEnabled:   true,
	}
}

type FeedbackType string

const (
	FeedbackGeneral    FeedbackType = "feedback"
	FeedbackComplaint  FeedbackType = "complaint"
	FeedbackSuggestion FeedbackType = "suggestion"
	FeedbackBug        FeedbackType = "bug"
)

type FeedbackStatus string

const (
	FeedbackPending  FeedbackStatus = "pending"
	FeedbackReviewed FeedbackStatus = "reviewed"
	FeedbackResolved FeedbackStatus = "resolved"
)

type Feedback struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID     primitive.ObjectID `json:"userId" bson:"userId"`
	Type       FeedbackType       `json:"type" bson:"type"`
	Subject    string             `json:"subject" bson:"subject"`
	Message    string             `json:"message" bson:"message"`
	Status     FeedbackStatus     `json:"status" bson:"status"`
	AdminNotes string             `json:"adminNotes" bson:"adminNotes"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
	// Author is joined in on admin listings.
	Author *UserSummary `json:"user,omitempty" bson:"user,omitempty"`
}

type UserSummary struct {
	ID    primitive.ObjectID `json:"id" bson:"_id"`
	Name  string             `json:"name" bson:"name"`
	Email string             `json:"email" bson:"email"`
}
