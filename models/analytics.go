package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type DailySales struct {
	Day        string  `json:"_id" bson:"_id"`
	TotalSales float64 `json:"totalSales" bson:"totalSales"`
	Orders     int     `json:"orders" bson:"orders"`
}

type WeeklySales struct {
	Week       int     `json:"_id" bson:"_id"`
	Year       int     `json:"year" bson:"year"`
	TotalSales float64 `json:"totalSales" bson:"totalSales"`
	Orders     int     `json:"orders" bson:"orders"`
}

type WeeklyRevenue struct {
	Week    int     `json:"_id" bson:"_id"`
	Year    int     `json:"year" bson:"year"`
	Revenue float64 `json:"revenue" bson:"revenue"`
}

// CustomerPurchases is one row of the master panel's customer report.
type CustomerPurchases struct {
	ID         primitive.ObjectID `json:"_id" bson:"_id"`
	Name       string             `json:"name" bson:"name"`
	Email      string             `json:"email" bson:"email"`
	Points     int64              `json:"points" bson:"points"`
	TotalSpent float64            `json:"totalSpent" bson:"totalSpent"`
	Orders     []Order            `json:"orders" bson:"orders"`
}
