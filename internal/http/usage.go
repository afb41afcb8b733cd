package http

import (
	"net/http"
	"strconv"

	"github.com/davidbz/markl/internal/domain"
	"github.com/davidbz/markl/internal/usage"
)

type eventsResponse struct {
	Events []domain.UsageEvent `json:"events"`
}

// HandleUsageStats aggregates usage over ?days=N (default 30).
func (h *Handler) HandleUsageStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	days, err := intQuery(r, "days", usage.DefaultStatsWindowDays)
	if err != nil {
		writeDomainError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, h.tracker.Stats(days))
}

// HandleUsageEvents lists recent events, newest first, limited by ?limit=N.
func (h *Handler) HandleUsageEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit, err := intQuery(r, "limit", 0)
	if err != nil {
		writeDomainError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, eventsResponse{Events: h.tracker.Events(limit)})
}

// HandleCostMonitoring reports current spend against limits.
func (h *Handler) HandleCostMonitoring(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, h.tracker.CostMonitoring())
}

// HandleCostSettings replaces the spending limits.
func (h *Handler) HandleCostSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var settings usage.CostSettings
	if err := h.decode(w, r, &settings); err != nil {
		writeDomainError(ctx, w, err)
		return
	}

	if _, err := h.tracker.UpdateSettings(ctx, settings); err != nil {
		writeDomainError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, h.tracker.CostMonitoring())
}

// HandleClearUsage drops the event history.
func (h *Handler) HandleClearUsage(w http.ResponseWriter, r *http.Request) {
	h.tracker.Clear(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func intQuery(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, &domain.ValidationError{Field: name, Message: "must be a non-negative integer"}
	}
	return n, nil
}
