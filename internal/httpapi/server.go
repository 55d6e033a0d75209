// Package httpapi serves backtest reports and strategy metadata over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"altair/internal/backtest"
	"altair/internal/domain"
	"altair/internal/engine"
	"altair/internal/store"
	"altair/internal/strategy"
)

const defaultListLimit = 50

// Server exposes the report store and the backtest runner over HTTP.
type Server struct {
	runner  *engine.Runner
	reports store.ReportStore
	simCfg  backtest.Config
	log     *slog.Logger
}

// NewServer creates a Server. simCfg supplies the risk parameters for runs
// triggered over the API.
func NewServer(runner *engine.Runner, reports store.ReportStore, simCfg backtest.Config) *Server {
	return &Server{
		runner:  runner,
		reports: reports,
		simCfg:  simCfg,
		log:     slog.Default().With("component", "httpapi"),
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/strategies", s.handleListStrategies)
	mux.HandleFunc("GET /api/reports", s.handleListReports)
	mux.HandleFunc("GET /api/reports/{id}", s.handleGetReport)
	mux.HandleFunc("POST /api/backtests", s.handleRunBacktest)
	mux.Handle("GET /metrics", promhttp.Handler())
}

// Handler returns an http.Handler with CORS middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// StrategyInfo describes one strategy profile in API responses.
type StrategyInfo struct {
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Rule          string  `json:"rule"`
	RSIOversold   float64 `json:"rsi_oversold"`
	RSIOverbought float64 `json:"rsi_overbought"`
	FastPeriod    int     `json:"fast_period"`
	SlowPeriod    int     `json:"slow_period"`
	RSIPeriod     int     `json:"rsi_period"`
	Default       bool    `json:"default"`
}

func (s *Server) handleListStrategies(w http.ResponseWriter, _ *http.Request) {
	var out []StrategyInfo
	for _, p := range strategy.List() {
		out = append(out, StrategyInfo{
			Name:          p.Name,
			Description:   p.Description,
			Rule:          string(p.Rule),
			RSIOversold:   p.RSIOversold,
			RSIOverbought: p.RSIOverbought,
			FastPeriod:    p.FastPeriod,
			SlowPeriod:    p.SlowPeriod,
			RSIPeriod:     p.RSIPeriod,
			Default:       p.Name == strategy.DefaultProfile,
		})
	}
	writeJSON(w, out)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	reports, err := s.reports.ListReports(r.Context(), symbol, limit)
	if err != nil {
		s.log.Error("listing reports", "error", err)
		writeError(w, http.StatusInternalServerError, "listing reports failed")
		return
	}
	if reports == nil {
		reports = []domain.BacktestReport{}
	}
	writeJSON(w, reports)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	report, err := s.reports.GetReport(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrReportNotFound) {
			writeError(w, http.StatusNotFound, "report not found")
			return
		}
		s.log.Error("loading report", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "loading report failed")
		return
	}
	writeJSON(w, report)
}

// RunBacktestRequest is the POST /api/backtests payload. Dates use the
// 2006-01-02 layout; an omitted date leaves that side of the range
// unbounded, so a bare symbol backtests all stored history.
// InitialCapital zero means the configured default.
type RunBacktestRequest struct {
	Symbol         string  `json:"symbol"`
	Start          string  `json:"start"`
	End            string  `json:"end"`
	Strategy       string  `json:"strategy"`
	InitialCapital float64 `json:"initial_capital"`
}

func (s *Server) handleRunBacktest(w http.ResponseWriter, r *http.Request) {
	var req RunBacktestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol required")
		return
	}
	var start, end time.Time
	var err error
	if req.Start != "" {
		start, err = time.Parse("2006-01-02", req.Start)
		if err != nil {
			writeError(w, http.StatusBadRequest, "start must be YYYY-MM-DD")
			return
		}
	}
	if req.End != "" {
		end, err = time.Parse("2006-01-02", req.End)
		if err != nil {
			writeError(w, http.StatusBadRequest, "end must be YYYY-MM-DD")
			return
		}
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		writeError(w, http.StatusBadRequest, "end before start")
		return
	}

	simCfg := s.simCfg
	if req.InitialCapital > 0 {
		simCfg.InitialCapital = req.InitialCapital
	}

	report, err := s.runner.Run(r.Context(), engine.RunRequest{
		Symbol:   req.Symbol,
		Start:    start,
		End:      end,
		Strategy: req.Strategy,
		Sim:      simCfg,
	})
	if err != nil {
		s.log.Error("backtest run failed", "symbol", req.Symbol, "error", err)
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, report)
}
