package server

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"fypy-hub/internal/domain"
)

func TestPriceTicker(t *testing.T) {
	srv, prices := newTestServer(t)

	volume := 123.0
	err := prices.InsertBulk(context.Background(), []*domain.PricePoint{
		{Asset: "bitcoin", Timestamp: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), Price: 50000, Volume: &volume},
		{Asset: "ethereum", Timestamp: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), Price: 3000},
	})
	if err != nil {
		t.Fatalf("seed prices: %v", err)
	}

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/prices"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var frame tickerFrame
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if len(frame.Prices) != 2 {
		t.Fatalf("expected 2 prices, got %d", len(frame.Prices))
	}
	if frame.Prices[0].Asset != "bitcoin" || frame.Prices[0].Price != 50000 {
		t.Errorf("unexpected first price: %+v", frame.Prices[0])
	}
	if frame.Prices[0].Volume == nil || *frame.Prices[0].Volume != 123 {
		t.Errorf("unexpected volume: %v", frame.Prices[0].Volume)
	}
	if frame.Prices[1].Asset != "ethereum" {
		t.Errorf("unexpected second price: %+v", frame.Prices[1])
	}

	// A second frame arrives on the next tick.
	var next tickerFrame
	if err := conn.ReadJSON(&next); err != nil {
		t.Fatalf("read second frame: %v", err)
	}
}
