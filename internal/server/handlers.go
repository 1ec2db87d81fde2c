package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"fypy-hub/internal/dataset"
	"fypy-hub/internal/domain"
	"fypy-hub/internal/lookup"
	"fypy-hub/internal/observability"
	"fypy-hub/internal/pipeline"
	"fypy-hub/internal/predlog"
	"fypy-hub/internal/reporting"
	"fypy-hub/internal/storage"
)

// sessionHeader carries the session token on authenticated requests.
const sessionHeader = "X-Session-Token"

type signupRequest struct {
	Name            string `json:"name"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// userSummary is an account row without the password column.
type userSummary struct {
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type runResponse struct {
	RunID       string                  `json:"run_id,omitempty"`
	GeneratedAt time.Time               `json:"generated_at"`
	Clusters    int                     `json:"clusters,omitempty"`
	K           int                     `json:"k,omitempty"`
	Silhouette  float64                 `json:"silhouette,omitempty"`
	Assets      int                     `json:"assets"`
	Skips       []pipeline.Skip         `json:"skips,omitempty"`
	Warnings    []string                `json:"warnings,omitempty"`
	Coins       []domain.CoinPrediction `json:"coins,omitempty"`
	Stocks      []domain.StockCluster   `json:"stocks,omitempty"`
}

type evaluateResponse struct {
	Evaluated int                       `json:"evaluated"`
	MAE       float64                   `json:"mae"`
	Skipped   []string                  `json:"skipped,omitempty"`
	Details   []domain.EvaluationDetail `json:"details,omitempty"`
	Message   string                    `json:"message,omitempty"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" || req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "all fields are required")
		return
	}
	if req.Password != req.ConfirmPassword {
		writeError(w, http.StatusBadRequest, "passwords do not match")
		return
	}

	user := &domain.User{
		Name:      req.Name,
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		CreatedAt: time.Now().UTC(),
	}
	err := s.users.Insert(r.Context(), user)
	if errors.Is(err, storage.ErrDuplicateKey) {
		writeError(w, http.StatusConflict, "username already taken")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not create account")
		return
	}

	observability.DefaultMetrics.SignupsTotal.Inc()
	sess := s.sessions.Create(user.Username)
	observability.DefaultMetrics.ActiveSessions.Set(float64(s.sessions.Count()))
	writeJSON(w, http.StatusCreated, authResponse{Token: sess.Token, Username: sess.Username})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := s.users.GetByUsername(r.Context(), req.Username)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && user.Password != req.Password) {
		observability.RecordLogin("failure")
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not look up account")
		return
	}

	observability.RecordLogin("success")
	sess := s.sessions.Create(user.Username)
	observability.DefaultMetrics.ActiveSessions.Set(float64(s.sessions.Count()))
	writeJSON(w, http.StatusOK, authResponse{Token: sess.Token, Username: sess.Username})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	s.sessions.Delete(r.Header.Get(sessionHeader))
	observability.DefaultMetrics.ActiveSessions.Set(float64(s.sessions.Count()))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}
	if !s.requireSession(w, r) {
		return
	}

	users, err := s.users.GetAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not list accounts")
		return
	}

	out := make([]userSummary, 0, len(users))
	for _, u := range users {
		out = append(out, userSummary{
			Username:  u.Username,
			Name:      u.Name,
			Email:     u.Email,
			CreatedAt: u.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// requireSession rejects the request unless it carries a live session.
func (s *Server) requireSession(w http.ResponseWriter, r *http.Request) bool {
	sess := s.sessions.Get(r.Header.Get(sessionHeader))
	if sess == nil || !sess.LoggedIn {
		writeError(w, http.StatusUnauthorized, "login required")
		return false
	}
	return true
}

func (s *Server) handleCryptoRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	if !s.requireSession(w, r) {
		return
	}

	start := time.Now()
	ds, err := dataset.Load(s.cryptoWorkbook, dataset.ProfileCrypto)
	if err != nil {
		observability.RecordPipelineRun("crypto", "error", time.Since(start).Seconds())
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("load workbook: %v", err))
		return
	}
	s.archivePrices(r.Context(), ds)

	retrainer := pipeline.NewRetrainer(s.log).
		WithSeed(s.seed).
		WithGroupSize(s.groupSize).
		WithThresholds(s.minVolume, s.minMarketCap)

	var result *pipeline.CoinRunResult
	attempt := 0
	retrier := pipeline.NewRetrier(s.retryAttempts, s.retryDelay)
	err = retrier.Run(r.Context(), func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			observability.DefaultMetrics.RetryAttempts.Inc()
		}
		var runErr error
		result, runErr = retrainer.Run(ctx, ds)
		return runErr
	})
	if err != nil {
		observability.RecordPipelineRun("crypto", "error", time.Since(start).Seconds())
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("retrain: %v", err))
		return
	}

	s.mu.Lock()
	s.lastCoins = result
	s.mu.Unlock()

	observability.RecordPipelineRun("crypto", "success", time.Since(start).Seconds())
	observability.RecordRunOutcome("crypto", len(result.Table), len(result.Skips))
	observability.DefaultMetrics.PredictionsLogged.Add(float64(len(result.Table)))
	observability.DefaultMetrics.LastSuccessfulRun.Set(float64(time.Now().Unix()))

	writeJSON(w, http.StatusOK, runResponse{
		RunID:       result.RunID,
		GeneratedAt: result.GeneratedAt,
		Clusters:    result.Clusters,
		Assets:      len(result.Table),
		Skips:       result.Skips,
		Warnings:    ds.Warnings,
		Coins:       result.Table,
	})
}

func (s *Server) handleCryptoEvaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	if !s.requireSession(w, r) {
		return
	}

	days := s.evalThresholdDays
	if v := r.URL.Query().Get("threshold_days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "threshold_days must be a non-negative integer")
			return
		}
		days = parsed
	}

	ds, err := dataset.Load(s.cryptoWorkbook, dataset.ProfileCrypto)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("load workbook: %v", err))
		return
	}

	fresh := make(map[string]float64, len(ds.Series))
	for i := range ds.Series {
		price, err := lookup.LatestPrice(ds.Series[i].Rows)
		if err != nil {
			continue
		}
		fresh[ds.Series[i].Asset] = price
	}

	result, err := predlog.NewEvaluator(s.log).Evaluate(days, func(asset string) (float64, bool) {
		price, ok := fresh[asset]
		return price, ok
	})
	switch {
	case errors.Is(err, predlog.ErrNothingToEvaluate):
		observability.RecordEvaluation("nothing_to_evaluate", 0, 0, 0)
		writeJSON(w, http.StatusOK, evaluateResponse{Message: "no predictions old enough to evaluate"})
		return
	case errors.Is(err, predlog.ErrNoMatches):
		observability.RecordEvaluation("no_matches", 0, 0, 0)
		writeJSON(w, http.StatusOK, evaluateResponse{Message: "no logged asset found in fresh data"})
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("evaluate: %v", err))
		return
	}

	observability.RecordEvaluation("success", result.Evaluated(), len(result.Skipped), result.MAE)
	writeJSON(w, http.StatusOK, evaluateResponse{
		Evaluated: result.Evaluated(),
		MAE:       result.MAE,
		Skipped:   result.Skipped,
		Details:   result.Details,
	})
}

func (s *Server) handleStocksRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	if !s.requireSession(w, r) {
		return
	}

	index := r.URL.Query().Get("index")
	path, ok := s.indexes[index]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown index %q", index))
		return
	}

	start := time.Now()
	ds, err := dataset.Load(path, dataset.ProfileEquity)
	if err != nil {
		observability.RecordPipelineRun("equity", "error", time.Since(start).Seconds())
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("load workbook: %v", err))
		return
	}

	result, err := pipeline.NewIndexProcessor().
		WithSeed(s.seed).
		WithGroupSize(s.groupSize).
		Run(r.Context(), ds)
	if err != nil {
		observability.RecordPipelineRun("equity", "error", time.Since(start).Seconds())
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("index run: %v", err))
		return
	}

	s.mu.Lock()
	s.lastStocks = result
	s.mu.Unlock()

	observability.RecordPipelineRun("equity", "success", time.Since(start).Seconds())
	observability.RecordRunOutcome("equity", len(result.Table), len(result.Skips))

	writeJSON(w, http.StatusOK, runResponse{
		GeneratedAt: result.GeneratedAt,
		K:           result.K,
		Silhouette:  result.Silhouette,
		Assets:      len(result.Table),
		Skips:       result.Skips,
		Warnings:    ds.Warnings,
		Stocks:      result.Table,
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}
	if !s.requireSession(w, r) {
		return
	}

	kind := r.URL.Query().Get("kind")
	var (
		csv  string
		name string
	)

	s.mu.Lock()
	switch kind {
	case "coins":
		if s.lastCoins != nil {
			csv = reporting.RenderCoinsCSV(s.lastCoins.Table)
			name = "coin_clusters.csv"
		}
	case "stocks":
		if s.lastStocks != nil {
			csv = reporting.RenderStocksCSV(s.lastStocks.Table)
			name = "stock_clusters.csv"
		}
	default:
		s.mu.Unlock()
		writeError(w, http.StatusBadRequest, "kind must be coins or stocks")
		return
	}
	s.mu.Unlock()

	if csv == "" {
		writeError(w, http.StatusNotFound, "no completed run to export")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = w.Write([]byte(csv))
}

// archivePrices stores the loaded series in the price history archive.
// Duplicate batches are expected on reruns and ignored.
func (s *Server) archivePrices(ctx context.Context, ds *dataset.Dataset) {
	if s.prices == nil {
		return
	}

	var points []*domain.PricePoint
	for i := range ds.Series {
		for _, row := range ds.Series[i].Rows {
			if row.Date == nil || row.Price == nil {
				continue
			}
			points = append(points, &domain.PricePoint{
				Asset:     ds.Series[i].Asset,
				Timestamp: *row.Date,
				Price:     *row.Price,
				Volume:    row.Volume,
			})
		}
	}
	if err := s.prices.InsertBulk(ctx, points); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		// Archiving is best effort; the run proceeds without it.
		return
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
