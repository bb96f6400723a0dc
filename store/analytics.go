package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"github.com/foodiehub/ordering-api/models"
)

const purchasesFanOut = 8

func (s *Store) aggregateOrders(ctx context.Context, since time.Time, group bson.M, sortBy bson.D) (*mongo.Cursor, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"createdAt": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: group}},
		{{Key: "$sort", Value: sortBy}},
	}
	return s.Orders.Aggregate(ctx, pipeline)
}

// DailySales groups orders of the last seven days by calendar day in tz.
func (s *Store) DailySales(ctx context.Context, tz *time.Location) ([]models.DailySales, error) {
	since := s.clock().AddDate(0, 0, -7)
	group := bson.M{
		"_id": bson.M{"$dateToString": bson.M{
			"format": "%Y-%m-%d", "date": "$createdAt", "timezone": tz.String(),
		}},
		"totalSales": bson.M{"$sum": "$total"},
		"orders":     bson.M{"$sum": 1},
	}
	cur, err := s.aggregateOrders(ctx, since, group, bson.D{{Key: "_id", Value: 1}})
	if err != nil {
		return nil, fmt.Errorf("daily sales: %w", err)
	}
	return all[models.DailySales](ctx, cur)
}

// weeklyPipeline groups orders since the given time by ISO week and ISO week
// year together, so a window spanning New Year keeps the weeks apart. The
// result rows carry the week as _id next to its year and the given totals.
func weeklyPipeline(since time.Time, totals bson.M) mongo.Pipeline {
	group := bson.M{"_id": bson.M{
		"year": bson.M{"$isoWeekYear": "$createdAt"},
		"week": bson.M{"$isoWeek": "$createdAt"},
	}}
	project := bson.M{"_id": "$_id.week", "year": "$_id.year"}
	for k, v := range totals {
		group[k] = v
		project[k] = 1
	}
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"createdAt": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: group}},
		{{Key: "$project", Value: project}},
		{{Key: "$sort", Value: bson.D{{Key: "year", Value: 1}, {Key: "_id", Value: 1}}}},
	}
}

// WeeklySales groups the last eight weeks of orders by ISO week.
func (s *Store) WeeklySales(ctx context.Context) ([]models.WeeklySales, error) {
	since := s.clock().AddDate(0, 0, -7*8)
	cur, err := s.Orders.Aggregate(ctx, weeklyPipeline(since, bson.M{
		"totalSales": bson.M{"$sum": "$total"},
		"orders":     bson.M{"$sum": 1},
	}))
	if err != nil {
		return nil, fmt.Errorf("weekly sales: %w", err)
	}
	return all[models.WeeklySales](ctx, cur)
}

func (s *Store) WeeklyRevenue(ctx context.Context) ([]models.WeeklyRevenue, error) {
	since := s.clock().AddDate(0, 0, -7*8)
	cur, err := s.Orders.Aggregate(ctx, weeklyPipeline(since, bson.M{
		"revenue": bson.M{"$sum": "$total"},
	}))
	if err != nil {
		return nil, fmt.Errorf("weekly revenue: %w", err)
	}
	return all[models.WeeklyRevenue](ctx, cur)
}

// CustomerPurchases loads every customer's order history, biggest spenders first.
func (s *Store) CustomerPurchases(ctx context.Context) ([]models.CustomerPurchases, error) {
	opts := options.Find().SetProjection(bson.M{"name": 1, "email": 1, "points": 1})
	cur, err := s.Users.Find(ctx, bson.M{"role": models.RoleCustomer}, opts)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	customers, err := all[models.User](ctx, cur)
	if err != nil {
		return nil, err
	}

	out := make([]models.CustomerPurchases, len(customers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(purchasesFanOut)
	for i, c := range customers {
		g.Go(func() error {
			orders, err := s.OrdersForUser(gctx, c.ID)
			if err != nil {
				return fmt.Errorf("orders for %s: %w", c.ID.Hex(), err)
			}
			row := models.CustomerPurchases{
				ID: c.ID, Name: c.Name, Email: c.Email, Points: c.Points, Orders: orders,
			}
			for _, o := range orders {
				row.TotalSpent += o.Total
			}
			out[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalSpent > out[j].TotalSpent })
	return out, nil
}
