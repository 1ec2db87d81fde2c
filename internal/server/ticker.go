package server

import (
	"net/http"
	"time"

	"fypy-hub/internal/domain"
	"fypy-hub/internal/logger"
	"fypy-hub/internal/observability"
)

// tickerFrame is one websocket push: the newest archived price per asset.
type tickerFrame struct {
	At     time.Time     `json:"at"`
	Prices []tickerPrice `json:"prices"`
}

type tickerPrice struct {
	Asset     string    `json:"asset"`
	Price     float64   `json:"price"`
	Volume    *float64  `json:"volume,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// handlePriceTicker upgrades the connection and pushes the latest archived
// price per asset on every tick until the client disconnects.
func (s *Server) handlePriceTicker(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("ticker: upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	observability.DefaultMetrics.TickerClients.Inc()
	defer observability.DefaultMetrics.TickerClients.Dec()

	// Drain reads so close frames from the client are noticed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.tickerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
			points, err := s.prices.Latest(r.Context())
			if err != nil {
				logger.Warn("ticker: latest prices: %v", err)
				continue
			}
			if err := conn.WriteJSON(buildFrame(points)); err != nil {
				return
			}
		}
	}
}

func buildFrame(points []*domain.PricePoint) tickerFrame {
	frame := tickerFrame{At: time.Now().UTC(), Prices: make([]tickerPrice, 0, len(points))}
	for _, p := range points {
		frame.Prices = append(frame.Prices, tickerPrice{
			Asset:     p.Asset,
			Price:     p.Price,
			Volume:    p.Volume,
			Timestamp: p.Timestamp,
		})
	}
	return frame
}
