// Package server exposes the valuation engine over an HTTP JSON API.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iwvelando/property-valuation/internal/config"
	"github.com/iwvelando/property-valuation/internal/optimizer"
	"github.com/iwvelando/property-valuation/internal/share"
	"github.com/iwvelando/property-valuation/internal/valuation"
	"github.com/iwvelando/property-valuation/pkg/policy"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type handler struct {
	logger      *zap.Logger
	engine      *valuation.Engine
	solver      *optimizer.Runner
	results     *cache.Cache
	limiter     *rate.Limiter
	metrics     *metricsRegistry
	maxBodySize int64
	version     string
}

// NewHandler constructs the HTTP handler that serves the valuation API.
// A nil cfg uses DefaultConfig.
func NewHandler(logger *zap.Logger, cfg *Config, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	engineConfig := &config.Configuration{Engine: cfg.Engine}
	engine := valuation.New(logger, engineConfig.EngineOptions()...)
	h := &handler{
		logger:      logger,
		engine:      engine,
		solver:      optimizer.NewSolver(logger, engine),
		results:     cache.New(cfg.CacheTTLDuration(), 2*cfg.CacheTTLDuration()),
		metrics:     newMetricsRegistry(),
		maxBodySize: cfg.BodySizeBytes(),
		version:     trimmedVersion,
	}
	if h.maxBodySize <= 0 {
		h.maxBodySize = DefaultConfig().BodySizeBytes()
	}
	if cfg.RateLimit.PerSecond > 0 {
		h.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.PerSecond), cfg.RateLimit.Burst)
	}

	mux := http.NewServeMux()

	// Evaluation endpoint; GET takes share-link keys, POST a JSON body
	mux.HandleFunc("/api/evaluate", h.metrics.instrument("evaluate", h.handleEvaluate))

	// Share-link encoding for a JSON body
	mux.HandleFunc("/api/share", h.metrics.instrument("share", h.handleShare))

	// Solve one input for a metric target
	mux.HandleFunc("/api/solve", h.metrics.instrument("solve", h.handleSolve))

	// Marginal tax rate choices
	mux.HandleFunc("/api/tax-brackets", h.metrics.instrument("tax-brackets", h.handleTaxBrackets))

	// Version endpoint for UI metadata
	mux.HandleFunc("/api/version", h.metrics.instrument("version", h.handleVersion))

	mux.Handle("/metrics", h.metrics.Handler())

	return mux
}

type evaluateResponse struct {
	Inputs     valuation.PropertyInputs     `json:"inputs"`
	Result     *valuation.CalculationResult `json:"result"`
	ShareQuery string                       `json:"shareQuery"`
	Duration   string                       `json:"duration"`
	Cached     bool                         `json:"cached"`
}

func (h *handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleEvaluate"
	start := time.Now()

	if !h.allow(w, op) {
		return
	}

	var in valuation.PropertyInputs
	switch r.Method {
	case http.MethodGet:
		in = share.Decode(r.URL.Query())
	case http.MethodPost:
		var err error
		in, err = h.decodeInputs(w, r)
		if err != nil {
			h.respondBodyError(w, err, op)
			return
		}
	default:
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	key := share.EncodeQuery(in)
	response := evaluateResponse{Inputs: in, ShareQuery: key}

	if cached, found := h.results.Get(key); found {
		h.metrics.CacheLookups.WithLabelValues("hit").Inc()
		response.Result = cached.(*valuation.CalculationResult)
		response.Cached = true
	} else {
		h.metrics.CacheLookups.WithLabelValues("miss").Inc()
		evalStart := time.Now()
		result, err := h.engine.Evaluate(in)
		if err != nil {
			h.metrics.EvaluationErrors.WithLabelValues(errorType(err)).Inc()
			h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
			return
		}
		h.metrics.EvaluationDuration.Observe(time.Since(evalStart).Seconds())
		h.results.Set(key, result, cache.DefaultExpiration)
		response.Result = result
	}

	response.Duration = time.Since(start).String()
	h.writeJSON(w, http.StatusOK, response)
}

func (h *handler) handleShare(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleShare"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	if !h.allow(w, op) {
		return
	}

	in, err := h.decodeInputs(w, r)
	if err != nil {
		h.respondBodyError(w, err, op)
		return
	}
	if err := in.Validate(); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"query": share.EncodeQuery(in),
	})
}

type solveRequest struct {
	Inputs map[string]interface{} `json:"inputs"`
	Solver config.SolverConfig     `json:"solver"`
}

func (h *handler) handleSolve(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSolve"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	if !h.allow(w, op) {
		return
	}

	var req solveRequest
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		h.respondBodyError(w, err, op)
		return
	}

	in, err := config.DecodeInputs(req.Inputs)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	if err := in.Validate(); err != nil {
		h.metrics.EvaluationErrors.WithLabelValues(errorType(err)).Inc()
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	summary, err := h.solver.Solve("request", in, req.Solver)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

func (h *handler) handleTaxBrackets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"brackets": policy.IncomeTaxBrackets(),
		"rates":    policy.MarginalTaxRates(),
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// allow applies the rate limiter, writing a 429 when the request is rejected.
func (h *handler) allow(w http.ResponseWriter, op string) bool {
	if h.limiter == nil || h.limiter.Allow() {
		return true
	}
	h.metrics.RateLimited.Inc()
	w.Header().Set("Retry-After", "1")
	h.respondErrorWithOp(w, http.StatusTooManyRequests, "rate limit exceeded", op)
	return false
}

// decodeInputs reads a JSON PropertyInputs on top of the defaults so a body
// may carry only the fields it changes.
func (h *handler) decodeInputs(w http.ResponseWriter, r *http.Request) (valuation.PropertyInputs, error) {
	in := valuation.DefaultInputs()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&in); err != nil && !errors.Is(err, io.EOF) {
		return in, err
	}

	if residency, err := policy.ParseResidency(string(in.Residency)); err == nil {
		in.Residency = residency
	}
	return in, nil
}

func (h *handler) respondBodyError(w http.ResponseWriter, err error, op string) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize), op)
		return
	}
	h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode inputs: %v", err), op)
}

func errorType(err error) string {
	switch {
	case errors.Is(err, policy.ErrInvalidCategory):
		return "invalid_category"
	case errors.Is(err, valuation.ErrInvalidInput):
		return "invalid_input"
	}
	return "other"
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Warn("valuation request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to encode JSON response",
			zap.String("op", "server.writeJSON"),
			zap.Error(err),
		)
		http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		h.logger.Error("failed to write JSON response",
			zap.String("op", "server.writeJSON"),
			zap.Error(err),
		)
	}
}
