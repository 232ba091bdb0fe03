package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/guregu/null/v5"

	"github.com/wonny/fairvalue/internal/brain"
	"github.com/wonny/fairvalue/internal/contracts"
	"github.com/wonny/fairvalue/internal/valuationconfig"
	"github.com/wonny/fairvalue/pkg/logger"
)

// Runner executes one valuation run
type Runner interface {
	Run(ctx context.Context, config brain.RunConfig) (*brain.RunResult, error)
}

// RunObserver records run outcomes (Prometheus in production, nil in tests)
type RunObserver interface {
	ObserveRun(outcome string, duration time.Duration)
	ObserveStages(stages []contracts.Stage)
}

// Run outcomes reported to the observer
const (
	OutcomeOK           = "ok"
	OutcomeNotFound     = "not_found"
	OutcomeInsufficient = "insufficient_data"
	OutcomeBadRequest   = "bad_request"
	OutcomeUpstream     = "upstream_error"
)

// ValuationHandler serves valuation runs over HTTP
// ⭐ SSOT: 밸류에이션 API 핸들러는 여기서만
type ValuationHandler struct {
	runner   Runner
	cfg      *valuationconfig.Config
	observer RunObserver
	logger   *logger.Logger
}

// NewValuationHandler creates a new valuation handler. observer may be nil.
func NewValuationHandler(runner Runner, cfg *valuationconfig.Config, observer RunObserver, log *logger.Logger) *ValuationHandler {
	return &ValuationHandler{
		runner:   runner,
		cfg:      cfg,
		observer: observer,
		logger:   log,
	}
}

// GetValuation runs the pipeline for one ticker
// GET /api/valuation/{ticker}?growth=12&pe=18&foreign=true&download=true
func (h *ValuationHandler) GetValuation(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ticker := strings.ToUpper(mux.Vars(r)["ticker"])

	runCfg, err := parseRunQuery(r, ticker)
	if err != nil {
		h.observe(OutcomeBadRequest, start, nil)
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.runner.Run(r.Context(), runCfg)
	if err != nil {
		status, outcome := classify(err)
		h.observe(outcome, start, nil)
		h.logger.WithTicker(ticker).WithError(err).Warn("Valuation run failed")
		respondError(w, status, err.Error())
		return
	}

	h.observe(OutcomeOK, start, result.CompletedStages)
	respondJSON(w, http.StatusOK, result)
}

// GetConfig returns the active valuation config and its hash
// GET /api/config/valuation
func (h *ValuationHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	hash, err := valuationconfig.Hash(h.cfg)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to hash config")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"hash":   hash,
		"config": h.cfg,
	})
}

func (h *ValuationHandler) observe(outcome string, start time.Time, stages []contracts.Stage) {
	if h.observer == nil {
		return
	}
	h.observer.ObserveRun(outcome, time.Since(start))
	if len(stages) > 0 {
		h.observer.ObserveStages(stages)
	}
}

func parseRunQuery(r *http.Request, ticker string) (brain.RunConfig, error) {
	q := r.URL.Query()
	cfg := brain.RunConfig{Ticker: ticker}

	var err error
	if cfg.Assumptions.GrowthPercent, err = parseOptionalFloat(q.Get("growth")); err != nil {
		return cfg, errors.New("growth must be a number (percent)")
	}
	if cfg.Assumptions.NormalizedPE, err = parseOptionalFloat(q.Get("pe")); err != nil {
		return cfg, errors.New("pe must be a number")
	}
	if cfg.Foreign, err = parseOptionalBool(q.Get("foreign")); err != nil {
		return cfg, errors.New("foreign must be a boolean")
	}
	if cfg.Download, err = parseOptionalBool(q.Get("download")); err != nil {
		return cfg, errors.New("download must be a boolean")
	}
	return cfg, nil
}

func parseOptionalFloat(s string) (null.Float, error) {
	if s == "" {
		return contracts.Missing, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return contracts.Missing, err
	}
	return contracts.Num(v), nil
}

func parseOptionalBool(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}

// classify maps pipeline errors to HTTP status and outcome label
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, contracts.ErrTickerNotFound):
		return http.StatusNotFound, OutcomeNotFound
	case errors.Is(err, contracts.ErrInsufficientData), errors.Is(err, contracts.ErrNoData):
		return http.StatusUnprocessableEntity, OutcomeInsufficient
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, OutcomeUpstream
	default:
		return http.StatusBadGateway, OutcomeUpstream
	}
}
