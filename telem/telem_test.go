package telem

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/foodiehub/ordering-api/config"
)

func TestInitWithoutExporterEndpoint(t *testing.T) {
	ctx := context.Background()
	shutdown, err := Init(ctx, config.TelemetryConfig{ServiceName: "ordering-api-test"}, "test")
	require.NoError(t, err)

	inst, err := NewInstruments()
	require.NoError(t, err)
	inst.OrderConfirmed(ctx, 12.5, 3)
	inst.DealRedeemed(ctx, 30)

	require.NoError(t, shutdown(ctx))
}

func TestNilInstrumentsAreNoops(t *testing.T) {
	var inst *Instruments
	inst.OrderConfirmed(context.Background(), 1, 1)
	inst.DealRedeemed(context.Background(), 1)
}
