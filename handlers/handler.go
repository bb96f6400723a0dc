// Package handlers implements the /api HTTP surface.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/foodiehub/ordering-api/checkout"
	"github.com/foodiehub/ordering-api/config"
	"github.com/foodiehub/ordering-api/loyalty"
	"github.com/foodiehub/ordering-api/models"
	"github.com/foodiehub/ordering-api/store"
	"github.com/foodiehub/ordering-api/telem"
)

// Store is the persistence the handlers read and write directly.
type Store interface {
	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, u *models.User) error
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)

	ListProducts(ctx context.Context, f store.ProductFilter) ([]models.ProductWithCategory, error)
	ProductWithCategory(ctx context.Context, id primitive.ObjectID) (*models.ProductWithCategory, error)
	ProductByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	ReplaceProduct(ctx context.Context, p *models.Product) error
	ToggleAvailability(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	DeleteProduct(ctx context.Context, id primitive.ObjectID) error

	ListCategories(ctx context.Context) ([]models.Category, error)
	CategoryByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	CreateCategory(ctx context.Context, c *models.Category) error
	ReplaceCategory(ctx context.Context, c *models.Category) error
	DeactivateCategory(ctx context.Context, id primitive.ObjectID) error

	ListActiveDeals(ctx context.Context) ([]models.Deal, error)
	DealByID(ctx context.Context, id primitive.ObjectID) (*models.Deal, error)
	CreateDeal(ctx context.Context, d *models.Deal) error
	ReplaceDeal(ctx context.Context, d *models.Deal) error
	DeactivateDeal(ctx context.Context, id primitive.ObjectID) error

	OrdersForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	SetDeliveryPlatform(ctx context.Context, orderID, userID primitive.ObjectID, p models.DeliveryPlatform) (*models.Order, error)

	DailySales(ctx context.Context, tz *time.Location) ([]models.DailySales, error)
	WeeklySales(ctx context.Context) ([]models.WeeklySales, error)
	WeeklyRevenue(ctx context.Context) ([]models.WeeklyRevenue, error)
	CustomerPurchases(ctx context.Context) ([]models.CustomerPurchases, error)

	GetSettings(ctx context.Context) (*models.RestaurantSettings, error)
	SaveSettings(ctx context.Context, s *models.RestaurantSettings) error
	SetOpeningHours(ctx context.Context, h models.OpeningHours) (*models.RestaurantSettings, error)
	GetOffer(ctx context.Context) (*models.Offer, error)
	SaveOffer(ctx context.Context, o *models.Offer) (bool, error)
	GetDeliveryPlatforms(ctx context.Context) (*models.DeliveryPlatforms, error)
	SaveDeliveryPlatforms(ctx context.Context, dp *models.DeliveryPlatforms) error

	CreateFeedback(ctx context.Context, f *models.Feedback) error
	FeedbackForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Feedback, error)
	AllFeedback(ctx context.Context, status models.FeedbackStatus) ([]models.Feedback, error)
	UpdateFeedback(ctx context.Context, id primitive.ObjectID, status models.FeedbackStatus, notes string) (*models.Feedback, error)
	DeleteFeedback(ctx context.Context, id primitive.ObjectID) error
}

type Checkout interface {
	CreateIntent(ctx context.Context, userID primitive.ObjectID, items []models.CartItem, points int64) (*checkout.IntentResult, error)
	Confirm(ctx context.Context, userID primitive.ObjectID, intentID string, items []models.CartItem) (*checkout.Confirmation, error)
}

type Loyalty interface {
	Redeem(ctx context.Context, userID, dealID primitive.ObjectID) (*loyalty.Redemption, error)
	ListActive(ctx context.Context, userID primitive.ObjectID) ([]models.UserDeal, error)
}

type TokenIssuer interface {
	Issue(u *models.User) (string, error)
}

// Handler carries the dependencies shared by every endpoint.
type Handler struct {
	Store       Store
	Tokens      TokenIssuer
	Checkout    Checkout
	Loyalty     Loyalty
	Feed        http.Handler
	Instruments *telem.Instruments
	Config      *config.Config
	Logger      *slog.Logger

	validate *validator.Validate
	timeout  time.Duration
	now      func() time.Time
}

func New(h Handler) *Handler {
	h.validate = newValidator()
	h.timeout = h.Config.Mongo.Timeout
	if h.timeout <= 0 {
		h.timeout = 5 * time.Second
	}
	h.now = time.Now
	return &h
}

// ctx bounds a request's store calls by the configured database timeout.
func (h *Handler) ctx(r *http.Request) (context.Context, context.CancelFunc) {
	return h.ctxFrom(r.Context())
}

func (h *Handler) ctxFrom(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, h.timeout)
}
