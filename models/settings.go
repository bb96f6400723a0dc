package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OpeningHours holds one weekday's window in 24-hour "HH:MM" form.
type OpeningHours struct {
	Day           string `json:"day" bson:"day" validate:"oneof=monday tuesday wednesday thursday friday saturday sunday"`
	IsOpen        bool   `json:"isOpen" bson:"isOpen"`
	OpenTime      string `json:"openTime" bson:"openTime" validate:"omitempty,datetime=15:04"`
	CloseTime     string `json:"closeTime" bson:"closeTime" validate:"omitempty,datetime=15:04"`
	LastOrderTime string `json:"lastOrderTime" bson:"lastOrderTime" validate:"omitempty,datetime=15:04"`
}

type SocialMedia struct {
	Facebook  string `json:"facebook" bson:"facebook"`
	Instagram string `json:"instagram" bson:"instagram"`
	Twitter   string `json:"twitter" bson:"twitter"`
}

// RestaurantSettings is a singleton document.
type RestaurantSettings struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	RestaurantName string             `json:"restaurantName" bson:"restaurantName"`
	Tagline        string             `json:"tagline" bson:"tagline"`
	Description    string             `json:"description" bson:"description"`
	Phone          string             `json:"phone" bson:"phone"`
	Email          string             `json:"email" bson:"email"`
	Address        string             `json:"address" bson:"address"`
	GoogleMapsLink string             `json:"googleMapsLink" bson:"googleMapsLink"`
	OpeningHours   []OpeningHours     `json:"openingHours" bson:"openingHours" validate:"dive"`
	SocialMedia    SocialMedia        `json:"socialMedia" bson:"socialMedia"`

	AveragePreparationTime int     `json:"averagePreparationTime" bson:"averagePreparationTime"`
	DeliveryEnabled        bool    `json:"deliveryEnabled" bson:"deliveryEnabled"`
	PickupEnabled          bool    `json:"pickupEnabled" bson:"pickupEnabled"`
	DeliveryRadius         float64 `json:"deliveryRadius" bson:"deliveryRadius"`
	DeliveryFee            float64 `json:"deliveryFee" bson:"deliveryFee"`
	MinimumOrderValue      float64 `json:"minimumOrderValue" bson:"minimumOrderValue"`

	ABN        string    `json:"abn" bson:"abn"`
	TermsURL   string    `json:"termsUrl" bson:"termsUrl"`
	PrivacyURL string    `json:"privacyUrl" bson:"privacyUrl"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updatedAt"`
}

var weekdays = [...]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// Weekday maps a day name to time.Weekday.
func Weekday(day string) (time.Weekday, bool) {
	day = strings.ToLower(day)
	for i, d := range weekdays {
		if d == day {
			return time.Weekday(i), true
		}
	}
	return 0, false
}

// DefaultSettings is what a fresh install starts with.
func DefaultSettings() RestaurantSettings {
	weekday := func(day string) OpeningHours {
		return OpeningHours{Day: day, IsOpen: true, OpenTime: "09:00", CloseTime: "22:00", LastOrderTime: "21:30"}
	}
	weekend := func(day string) OpeningHours {
		return OpeningHours{Day: day, IsOpen: true, OpenTime: "09:00", CloseTime: "23:00", LastOrderTime: "22:30"}
	}
	return RestaurantSettings{
		RestaurantName: "Foodie Restaurant",
		Tagline:        "Delicious food, delivered fresh",
		Description:    "We serve the best food in town",
		OpeningHours: []OpeningHours{
			weekday("monday"), weekday("tuesday"), weekday("wednesday"), weekday("thursday"),
			weekend("friday"), weekend("saturday"),
			{Day: "sunday", IsOpen: true, OpenTime: "10:00", CloseTime: "21:00", LastOrderTime: "20:30"},
		},
		AveragePreparationTime: 20,
		PickupEnabled:          true,
		DeliveryRadius:         5,
		DeliveryFee:            5,
		MinimumOrderValue:      10,
	}
}

func (s *RestaurantSettings) hoursFor(now time.Time) (OpeningHours, bool) {
	day := weekdays[now.Weekday()]
	for _, h := range s.OpeningHours {
		if strings.EqualFold(h.Day, day) {
			return h, h.IsOpen
		}
	}
	return OpeningHours{}, false
}

// IsCurrentlyOpen compares "HH:MM" strings, so windows crossing midnight are not supported.
func (s *RestaurantSettings) IsCurrentlyOpen(now time.Time) bool {
	h, ok := s.hoursFor(now)
	if !ok {
		return false
	}
	cur := now.Format("15:04")
	return cur >= h.OpenTime && cur <= h.CloseTime
}

func (s *RestaurantSettings) IsAcceptingOrders(now time.Time) bool {
	h, ok := s.hoursFor(now)
	if !ok {
		return false
	}
	cur := now.Format("15:04")
	return cur >= h.OpenTime && cur <= h.LastOrderTime
}

// SettingsView is RestaurantSettings with its derived predicates.
type SettingsView struct {
	RestaurantSettings
	IsCurrentlyOpen   bool `json:"isCurrentlyOpen"`
	IsAcceptingOrders bool `json:"isAcceptingOrders"`
}

func (s *RestaurantSettings) View(now time.Time) SettingsView {
	return SettingsView{
		RestaurantSettings: *s,
		IsCurrentlyOpen:    s.IsCurrentlyOpen(now),
		IsAcceptingOrders:  s.IsAcceptingOrders(now),
	}
}
