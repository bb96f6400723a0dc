package ws

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/foodiehub/ordering-api/events"
	"github.com/foodiehub/ordering-api/models"
)

func TestHub_BroadcastsToClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub([]string{"*"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	go func() { _ = hub.Run(ctx) }()

	srv := httptest.NewServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	order := &models.Order{ID: primitive.NewObjectID(), Total: 12.5}
	// registration is asynchronous; keep publishing until the client sees one
	deadline := time.Now().Add(2 * time.Second)
	require.NoError(t, conn.SetReadDeadline(deadline))
	received := make(chan events.Event, 1)
	go func() {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var e events.Event
		if json.Unmarshal(msg, &e) == nil {
			received <- e
		}
	}()

	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case e := <-received:
			assert.Equal(t, events.OrderCreated, e.Type)
			assert.Equal(t, order.ID, e.Order.ID)
			return
		case <-ticker.C:
			require.NoError(t, hub.Publish(ctx, events.NewOrderCreated(order)))
		case <-time.After(time.Until(deadline)):
			t.Fatal("no event received")
		}
	}
}

func TestHub_RejectsForeignOrigin(t *testing.T) {
	hub := NewHub([]string{"https://shop.example"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = hub.Run(ctx) }()

	srv := httptest.NewServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	header := map[string][]string{"Origin": {"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 403, resp.StatusCode)
}

func TestHub_PublishAfterShutdown(t *testing.T) {
	hub := NewHub(nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { _ = hub.Run(ctx); close(done) }()
	cancel()
	<-done

	for i := 0; i < 100; i++ {
		assert.NoError(t, hub.Publish(context.Background(), events.NewOrderCreated(&models.Order{})))
	}
}
