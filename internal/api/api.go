// Package api implements the HTTP placement API.
//
// The API accepts a problem file in the request body and returns the packed
// solution as JSON. Each request runs its own engine instance, so concurrent
// requests never share mutable state.
package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/symplace/pkg/anneal"
	"github.com/matzehuels/symplace/pkg/config"
	"github.com/matzehuels/symplace/pkg/errors"
	"github.com/matzehuels/symplace/pkg/placefile"
	"github.com/matzehuels/symplace/pkg/watchdog"
)

// maxProblemSize bounds the request body.
const maxProblemSize = 4 << 20

// Handler serves placement requests.
type Handler struct {
	cfg     config.Config
	timeout time.Duration
	logger  *log.Logger
}

// New creates a handler with the given solver configuration and per-request
// time budget.
func New(cfg config.Config, timeout time.Duration, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{cfg: cfg, timeout: timeout, logger: logger}
}

// Routes returns the chi router for the API.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", h.health)
	r.Post("/v1/place", h.place)
	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("ok\n"))
}

// errorResponse is the JSON error document.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (h *Handler) place(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxProblemSize))
	if err != nil {
		h.writeError(w, errors.Wrap(errors.ErrCodeIO, err, "read request body"))
		return
	}

	cfg := h.cfg
	if s := r.URL.Query().Get("seed"); s != "" {
		seed, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			h.writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid seed %q", s))
			return
		}
		cfg.Annealing.Seed = seed
	}
	budget := h.timeout
	if s := r.URL.Query().Get("timeout"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil || d <= 0 {
			h.writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid timeout %q", s))
			return
		}
		budget = min(budget, d)
	}

	problem, err := placefile.Read(bytes.NewReader(body))
	if err != nil {
		h.writeError(w, err)
		return
	}
	tree, err := problem.NewTree()
	if err != nil {
		h.writeError(w, err)
		return
	}

	annealer, err := anneal.New(cfg.AnnealOptions(), h.logger)
	if err != nil {
		h.writeError(w, err)
		return
	}
	wd := watchdog.New(budget)
	wd.Start(r.Context())
	defer wd.Stop()
	annealer.SetWatchdog(wd)

	best, stats, solveErr := annealer.Run(r.Context(), tree)
	if best == nil {
		h.writeError(w, solveErr)
		return
	}
	if solveErr != nil {
		h.logger.Warn("solve hit its budget, returning best effort",
			"run", stats.RunID, "area", stats.BestArea)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := placefile.WriteJSON(w, placefile.NewResult(best, &stats)); err != nil {
		h.logger.Error("write response", "err", err)
	}
}

// writeError maps structured errors onto HTTP status codes.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeParse, errors.ErrCodeInvalidInput, errors.ErrCodeInvalidGroup,
		errors.ErrCodeDuplicateModule, errors.ErrCodeDuplicateGroup:
		status = http.StatusBadRequest
	case errors.ErrCodeInfeasible:
		status = http.StatusUnprocessableEntity
	case errors.ErrCodeTimeout:
		status = http.StatusGatewayTimeout
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{Code: string(errors.GetCode(err)), Message: errors.UserMessage(err)}
	_ = json.NewEncoder(w).Encode(resp)
}
