// Package loyalty exchanges points for deal vouchers.
package loyalty

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/foodiehub/ordering-api/models"
	"github.com/foodiehub/ordering-api/store"
)

var (
	ErrDealNotFound       = errors.New("deal not found")
	ErrDealExpired        = errors.New("deal has expired")
	ErrUserNotFound       = errors.New("user not found")
	ErrMaxUsesReached     = errors.New("you have already used this deal the maximum number of times")
	ErrInsufficientPoints = errors.New("insufficient points")
)

// Store is what redemption needs from persistence.
type Store interface {
	DealByID(ctx context.Context, id primitive.ObjectID) (*models.Deal, error)
	UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UserDeal(ctx context.Context, userID, dealID primitive.ObjectID) (*models.UserDeal, error)
	DebitPoints(ctx context.Context, id primitive.ObjectID, cost int64) (*models.User, error)
	AdjustPoints(ctx context.Context, id primitive.ObjectID, delta int64) (*models.User, error)
	ClaimDealUse(ctx context.Context, userID, dealID primitive.ObjectID, maxUses int, expiresAt time.Time) (*models.UserDeal, error)
	ActiveUserDeals(ctx context.Context, userID primitive.ObjectID) ([]models.UserDeal, error)
}

type Service struct {
	store  Store
	window time.Duration
	now    func() time.Time
	logger *slog.Logger
	tracer trace.Tracer
}

// NewService redeems deals into vouchers valid for window.
func NewService(s Store, window time.Duration, logger *slog.Logger) *Service {
	return &Service{
		store:  s,
		window: window,
		now:    time.Now,
		logger: logger,
		tracer: otel.Tracer("github.com/foodiehub/ordering-api/loyalty"),
	}
}

type Redemption struct {
	UserDeal        *models.UserDeal `json:"userDeal"`
	RemainingPoints int64            `json:"remainingPoints"`
}

// Redeem debits the deal's cost and records one more use of it. The debit and
// the use counter are each a single conditional update, so concurrent requests
// cannot overdraw the balance or exceed maxUses.
func (s *Service) Redeem(ctx context.Context, userID, dealID primitive.ObjectID) (*Redemption, error) {
	ctx, span := s.tracer.Start(ctx, "loyalty.Redeem", trace.WithAttributes(
		attribute.String("user.id", userID.Hex()), attribute.String("deal.id", dealID.Hex())))
	defer span.End()

	now := s.now()
	deal, err := s.store.DealByID(ctx, dealID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, ErrDealNotFound
	case err != nil:
		return nil, fmt.Errorf("load deal: %w", err)
	case !deal.IsActive:
		return nil, ErrDealNotFound
	case deal.Expired(now):
		return nil, ErrDealExpired
	}

	user, err := s.store.UserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	} else if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	maxUses := max(deal.MaxUses, 1)
	prior, err := s.store.UserDeal(ctx, userID, dealID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("load redemption: %w", err)
	}
	if prior != nil && prior.UsedCount >= maxUses {
		return nil, ErrMaxUsesReached
	}
	if user.Points < deal.PointsCost {
		return nil, insufficient(deal.PointsCost, user.Points)
	}

	debited, err := s.store.DebitPoints(ctx, userID, deal.PointsCost)
	if errors.Is(err, store.ErrNotFound) {
		return nil, insufficient(deal.PointsCost, user.Points)
	} else if err != nil {
		return nil, fmt.Errorf("debit points: %w", err)
	}

	ud, err := s.claim(ctx, userID, dealID, maxUses, now.Add(s.window))
	if err != nil {
		if _, rerr := s.store.AdjustPoints(ctx, userID, deal.PointsCost); rerr != nil {
			s.logger.ErrorContext(ctx, "refund after failed deal claim",
				"user_id", userID.Hex(), "deal_id", dealID.Hex(), "points", deal.PointsCost, "error", rerr)
		}
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrMaxUsesReached
		}
		return nil, fmt.Errorf("claim deal: %w", err)
	}
	ud.Deal = deal

	return &Redemption{UserDeal: ud, RemainingPoints: debited.Points}, nil
}

// claim retries once on a duplicate key. Two first-time claims race on the
// upsert's insert, and the loser only sees the cap once the winner's document exists.
func (s *Service) claim(ctx context.Context, userID, dealID primitive.ObjectID, maxUses int, expiresAt time.Time) (*models.UserDeal, error) {
	ud, err := s.store.ClaimDealUse(ctx, userID, dealID, maxUses, expiresAt)
	if errors.Is(err, store.ErrDuplicate) {
		return s.store.ClaimDealUse(ctx, userID, dealID, maxUses, expiresAt)
	}
	return ud, err
}

// ListActive returns the user's unexpired vouchers.
func (s *Service) ListActive(ctx context.Context, userID primitive.ObjectID) ([]models.UserDeal, error) {
	return s.store.ActiveUserDeals(ctx, userID)
}

func insufficient(need, have int64) error {
	return fmt.Errorf("%w. Need %d, have %d", ErrInsufficientPoints, need, have)
}
