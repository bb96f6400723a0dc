package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/foodiehub/ordering-api/events"
	"github.com/foodiehub/ordering-api/models"
	"github.com/foodiehub/ordering-api/payment"
	"github.com/foodiehub/ordering-api/store"
)

var (
	ErrNoItems             = errors.New("no items provided")
	ErrInvalidProduct      = errors.New("invalid product")
	ErrInvalidQuantity     = errors.New("quantity must be at least 1")
	ErrUserNotFound        = errors.New("user not found")
	ErrMissingIntent       = errors.New("payment intent ID required")
	ErrPaymentNotSucceeded = errors.New("payment not succeeded")
	ErrIntentOwner         = errors.New("payment intent belongs to another user")
	ErrAlreadyConfirmed    = errors.New("payment already confirmed")
	ErrUnderpaid           = errors.New("order total exceeds the amount paid")
)

// Intent metadata keys carried between the two phases.
const (
	metaUserID         = "userId"
	metaOrderItems     = "orderItems"
	metaPointsRedeemed = "pointsRedeemed"
	metaPointValue     = "pointValue"
	metaDiscount       = "discount"
	metaSubtotal       = "subtotal"

	// Stripe caps a metadata value at 500 characters.
	maxMetadataValue = 500
)

type Catalog interface {
	ProductsByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error)
}

type Accounts interface {
	UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	AdjustPoints(ctx context.Context, id primitive.ObjectID, delta int64) (*models.User, error)
}

type OrderLedger interface {
	CreateOrder(ctx context.Context, o *models.Order) error
}

type Config struct {
	PointValue float64
	MinCharge  float64
	Currency   string
}

type Service struct {
	calc     Calculator
	currency string
	catalog  Catalog
	accounts Accounts
	orders   OrderLedger
	gateway  payment.Gateway
	events   events.Publisher
	logger   *slog.Logger
	tracer   trace.Tracer
}

func NewService(cfg Config, catalog Catalog, accounts Accounts, orders OrderLedger,
	gateway payment.Gateway, pub events.Publisher, logger *slog.Logger) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Service{
		calc:     NewCalculator(cfg.PointValue, cfg.MinCharge),
		currency: cfg.Currency,
		catalog:  catalog,
		accounts: accounts,
		orders:   orders,
		gateway:  gateway,
		events:   pub,
		logger:   logger,
		tracer:   otel.Tracer("github.com/foodiehub/ordering-api/checkout"),
	}
}

// Calculator exposes the configured arithmetic for read-only callers.
func (s *Service) Calculator() Calculator { return s.calc }

// PricedLine is a cart line resolved against the catalog.
type PricedLine struct {
	Product  models.Product
	Unit     decimal.Decimal
	Quantity int
}

// price resolves every cart line. Any unknown product fails the whole cart.
func (s *Service) price(ctx context.Context, items []models.CartItem) ([]PricedLine, error) {
	ids := make([]primitive.ObjectID, 0, len(items))
	for _, it := range items {
		if it.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		id, err := primitive.ObjectIDFromHex(it.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidProduct, it.ProductID)
		}
		ids = append(ids, id)
	}
	products, err := s.catalog.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	lines := make([]PricedLine, 0, len(items))
	for i, it := range items {
		p, ok := products[ids[i]]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrInvalidProduct, it.ProductID)
		}
		lines = append(lines, PricedLine{
			Product:  p,
			Unit:     UnitPrice(p.Price, p.OfferPercent),
			Quantity: it.Quantity,
		})
	}
	return lines, nil
}

// IntentResult is returned to the storefront after phase one.
type IntentResult struct {
	IntentID        string  `json:"paymentIntentId"`
	ClientSecret    string  `json:"clientSecret"`
	Amount          float64 `json:"amount"`
	PointsApplied   int64   `json:"pointsApplied"`
	Discount        float64 `json:"discount"`
	PointsRemaining int64   `json:"pointsRemaining"`
}

// CreateIntent prices the cart, applies points and opens a payment intent for
// the payable amount. Nothing is persisted on our side.
func (s *Service) CreateIntent(ctx context.Context, userID primitive.ObjectID, items []models.CartItem, pointsToRedeem int64) (_ *IntentResult, err error) {
	ctx, span := s.tracer.Start(ctx, "checkout.CreateIntent",
		trace.WithAttributes(attribute.String("user.id", userID.Hex()), attribute.Int("cart.lines", len(items))))
	defer endSpan(span, &err)

	if len(items) == 0 {
		return nil, ErrNoItems
	}
	user, err := s.accounts.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	lines, err := s.price(ctx, items)
	if err != nil {
		return nil, err
	}
	quote, err := s.calc.Quote(Subtotal(lines), pointsToRedeem, user.Points)
	if err != nil {
		return nil, err
	}

	meta := map[string]string{
		metaUserID:         userID.Hex(),
		metaPointsRedeemed: strconv.FormatInt(quote.PointsApplied, 10),
		metaPointValue:     s.calc.PointValue.String(),
		metaDiscount:       quote.Discount.StringFixed(2),
		metaSubtotal:       quote.Subtotal.StringFixed(2),
	}
	if raw, err := json.Marshal(items); err == nil && len(raw) <= maxMetadataValue {
		meta[metaOrderItems] = string(raw)
	}

	intent, err := s.gateway.CreateIntent(ctx, payment.IntentRequest{
		Amount:   MinorUnits(quote.Payable),
		Currency: s.currency,
		Metadata: meta,
	})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("payment.intent", intent.ID))

	return &IntentResult{
		IntentID:        intent.ID,
		ClientSecret:    intent.ClientSecret,
		Amount:          quote.Payable.InexactFloat64(),
		PointsApplied:   quote.PointsApplied,
		Discount:        quote.Discount.InexactFloat64(),
		PointsRemaining: user.Points - quote.PointsApplied,
	}, nil
}

// Confirmation is returned after phase two records the order.
type Confirmation struct {
	Order           *models.Order `json:"order"`
	OrderID         string        `json:"orderId"`
	PointsEarned    int64         `json:"pointsEarned"`
	PointsSpent     int64         `json:"pointsSpent"`
	NewPoints       int64         `json:"newPoints"`
	PaymentIntentID string        `json:"paymentIntentId"`
}

// Confirm checks the intent has been paid, re-prices the cart recorded on it,
// records the order and applies the net points delta to the customer's balance.
// The client's items are only used when the intent could not carry the cart,
// and an order is never recorded for more than the amount captured.
func (s *Service) Confirm(ctx context.Context, userID primitive.ObjectID, intentID string, items []models.CartItem) (_ *Confirmation, err error) {
	ctx, span := s.tracer.Start(ctx, "checkout.Confirm",
		trace.WithAttributes(attribute.String("user.id", userID.Hex()), attribute.String("payment.intent", intentID)))
	defer endSpan(span, &err)

	if intentID == "" {
		return nil, ErrMissingIntent
	}
	intent, err := s.gateway.GetIntent(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if intent.Status != payment.StatusSucceeded {
		return nil, ErrPaymentNotSucceeded
	}
	// intents without an owner were not opened by this service
	if intent.Metadata[metaUserID] != userID.Hex() {
		return nil, ErrIntentOwner
	}
	// the cart recorded at intent time wins over whatever the client resends
	if recorded := itemsFromMetadata(intent.Metadata); len(recorded) > 0 {
		items = recorded
	}
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	lines, err := s.price(ctx, items)
	if err != nil {
		return nil, err
	}
	quote := s.calc.Reconcile(Subtotal(lines), recordedPoints(intent.Metadata), recordedPointValue(intent.Metadata))
	if MinorUnits(quote.Payable) > intent.Amount {
		span.SetAttributes(attribute.Int64("payment.amount", intent.Amount))
		return nil, ErrUnderpaid
	}
	earned := PointsEarned(quote.Payable)

	order := &models.Order{
		UserID:          userID,
		Items:           snapshot(lines),
		Total:           quote.Payable.InexactFloat64(),
		Discount:        quote.Discount.InexactFloat64(),
		PointsRedeemed:  quote.PointsApplied,
		PointsEarned:    earned,
		PaymentIntentID: intent.ID,
	}
	if err := s.orders.CreateOrder(ctx, order); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrAlreadyConfirmed
		}
		return nil, fmt.Errorf("record order: %w", err)
	}

	user, err := s.accounts.AdjustPoints(ctx, userID, earned-quote.PointsApplied)
	if err != nil {
		s.logger.ErrorContext(ctx, "order recorded but points not applied",
			"order_id", order.ID.Hex(), "user_id", userID.Hex(),
			"points_delta", earned-quote.PointsApplied, "error", err)
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("apply points: %w", err)
	}

	if err := s.events.Publish(ctx, events.NewOrderCreated(order)); err != nil {
		s.logger.WarnContext(ctx, "publish order event", "order_id", order.ID.Hex(), "error", err)
	}

	return &Confirmation{
		Order:           order,
		OrderID:         order.ID.Hex(),
		PointsEarned:    earned,
		PointsSpent:     quote.PointsApplied,
		NewPoints:       user.Points,
		PaymentIntentID: intent.ID,
	}, nil
}

func snapshot(lines []PricedLine) []models.OrderItem {
	out := make([]models.OrderItem, 0, len(lines))
	for _, l := range lines {
		out = append(out, models.OrderItem{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			Price:     l.Unit.InexactFloat64(),
			Quantity:  l.Quantity,
		})
	}
	return out
}

func itemsFromMetadata(meta map[string]string) []models.CartItem {
	raw, ok := meta[metaOrderItems]
	if !ok {
		return nil
	}
	var items []models.CartItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}
	return items
}

// recordedPoints reads the points applied at intent time, floored and never negative.
func recordedPoints(meta map[string]string) int64 {
	d, err := decimal.NewFromString(meta[metaPointsRedeemed])
	if err != nil {
		return 0
	}
	return max(d.Floor().IntPart(), 0)
}

// recordedPointValue returns zero when absent so Reconcile falls back to the configured rate.
func recordedPointValue(meta map[string]string) decimal.Decimal {
	d, err := decimal.NewFromString(meta[metaPointValue])
	if err != nil {
		return zero
	}
	return d
}

func endSpan(span trace.Span, errp *error) {
	if *errp != nil {
		span.RecordError(*errp)
		span.SetStatus(codes.Error, (*errp).Error())
	}
	span.End()
}
