package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/savid/iptv-livegen/internal/history"
	"github.com/sirupsen/logrus"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 200
)

// RunLister lists recorded generation runs, newest first.
type RunLister interface {
	Recent(ctx context.Context, n int) ([]history.Run, error)
}

// RunsHandler serves the run history as JSON.
type RunsHandler struct {
	runs   RunLister
	logger *logrus.Logger
}

// NewRunsHandler creates a new run history handler.
func NewRunsHandler(runs RunLister, logger *logrus.Logger) *RunsHandler {
	return &RunsHandler{
		runs:   runs,
		logger: logger,
	}
}

func (h *RunsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, maxRunsLimit)
	}

	runs, err := h.runs.Recent(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list runs")
		http.Error(w, "Run history not available", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(runs); err != nil {
		h.logger.WithError(err).Error("Failed to encode runs")
	}
}
