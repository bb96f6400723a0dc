package telem

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Instruments are the business measurements recorded through the otel meter.
type Instruments struct {
	orderValue metric.Float64Histogram
	redeemed   metric.Int64Counter
}

func NewInstruments() (*Instruments, error) {
	meter := otel.Meter("github.com/foodiehub/ordering-api")
	orderValue, err := meter.Float64Histogram("order.value",
		metric.WithDescription("Amount charged per confirmed order"),
		metric.WithUnit("{AUD}"))
	if err != nil {
		return nil, err
	}
	redeemed, err := meter.Int64Counter("loyalty.points.redeemed",
		metric.WithDescription("Points spent at checkout and on deals"))
	if err != nil {
		return nil, err
	}
	return &Instruments{orderValue: orderValue, redeemed: redeemed}, nil
}

func (i *Instruments) OrderConfirmed(ctx context.Context, total float64, pointsSpent int64) {
	if i == nil {
		return
	}
	i.orderValue.Record(ctx, total)
	if pointsSpent > 0 {
		i.redeemed.Add(ctx, pointsSpent, metric.WithAttributes(attribute.String("channel", "checkout")))
	}
}

func (i *Instruments) DealRedeemed(ctx context.Context, cost int64) {
	if i == nil {
		return
	}
	i.redeemed.Add(ctx, cost, metric.WithAttributes(attribute.String("channel", "deal")))
}
