// Package server exposes the hub as a JSON API: account handling, pipeline
// runs, prediction evaluation, CSV export and a live price ticker.
package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"fypy-hub/internal/observability"
	"fypy-hub/internal/pipeline"
	"fypy-hub/internal/predlog"
	"fypy-hub/internal/session"
	"fypy-hub/internal/storage"
)

// Options configures a Server. Users, Prices and Log are required.
type Options struct {
	Users    storage.UserStore
	Prices   storage.PriceSeriesStore
	Sessions *session.Manager
	Log      *predlog.Log

	CryptoWorkbook string
	Indexes        map[string]string // index name -> workbook path

	MinVolume    float64
	MinMarketCap float64
	GroupSize    int
	Seed         int64

	RetryAttempts     int
	RetryDelay        time.Duration
	EvalThresholdDays int

	TickerInterval time.Duration
}

// Server wires the hub services behind HTTP handlers. Construct with New;
// all state lives on the instance, not in package globals.
type Server struct {
	users    storage.UserStore
	prices   storage.PriceSeriesStore
	sessions *session.Manager
	log      *predlog.Log

	cryptoWorkbook string
	indexes        map[string]string

	minVolume    float64
	minMarketCap float64
	groupSize    int
	seed         int64

	retryAttempts     int
	retryDelay        time.Duration
	evalThresholdDays int

	tickerInterval time.Duration
	upgrader       websocket.Upgrader

	mu         sync.Mutex
	lastCoins  *pipeline.CoinRunResult
	lastStocks *pipeline.StockRunResult
}

// New creates a Server. Zero option values fall back to the pipeline
// defaults.
func New(opts Options) *Server {
	s := &Server{
		users:             opts.Users,
		prices:            opts.Prices,
		sessions:          opts.Sessions,
		log:               opts.Log,
		cryptoWorkbook:    opts.CryptoWorkbook,
		indexes:           opts.Indexes,
		minVolume:         opts.MinVolume,
		minMarketCap:      opts.MinMarketCap,
		groupSize:         opts.GroupSize,
		seed:              opts.Seed,
		retryAttempts:     opts.RetryAttempts,
		retryDelay:        opts.RetryDelay,
		evalThresholdDays: opts.EvalThresholdDays,
		tickerInterval:    opts.TickerInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	if s.sessions == nil {
		s.sessions = session.NewManager()
	}
	if s.minVolume == 0 {
		s.minVolume = pipeline.DefaultMinVolume
	}
	if s.minMarketCap == 0 {
		s.minMarketCap = pipeline.DefaultMinMarketCap
	}
	if s.groupSize == 0 {
		s.groupSize = 20
	}
	if s.retryAttempts == 0 {
		s.retryAttempts = pipeline.DefaultRetryAttempts
	}
	if s.retryDelay == 0 {
		s.retryDelay = pipeline.DefaultRetryDelay
	}
	if s.evalThresholdDays == 0 {
		s.evalThresholdDays = 7
	}
	if s.tickerInterval == 0 {
		s.tickerInterval = 5 * time.Second
	}
	return s
}

// Router returns the HTTP handler for all hub endpoints.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.Handler())

	mux.HandleFunc("/api/signup", s.handleSignup)
	mux.HandleFunc("/api/login", s.handleLogin)
	mux.HandleFunc("/api/logout", s.handleLogout)
	mux.HandleFunc("/api/users", s.handleUsers)
	mux.HandleFunc("/api/crypto/run", s.handleCryptoRun)
	mux.HandleFunc("/api/crypto/evaluate", s.handleCryptoEvaluate)
	mux.HandleFunc("/api/stocks/run", s.handleStocksRun)
	mux.HandleFunc("/api/export", s.handleExport)
	mux.HandleFunc("/ws/prices", s.handlePriceTicker)

	return mux
}
