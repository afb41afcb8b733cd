// Package usage records tracked AI operations and derives spend statistics and alerts.
package usage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/davidbz/markl/internal/domain"
	"github.com/davidbz/markl/internal/observability"
)

// Tracker is the single writer of persisted usage and cost settings.
// Events are kept most recent first and capped at the configured maximum.
type Tracker struct {
	mu        sync.Mutex
	store     domain.KeyValueStore
	publisher domain.EventPublisher
	clock     Clock
	maxEvents int
	events    []domain.UsageEvent
	settings  CostSettings
}

// NewTracker creates a tracker and loads any persisted state.
// Unreadable state is logged and replaced by an empty history.
func NewTracker(
	ctx context.Context,
	store domain.KeyValueStore,
	publisher domain.EventPublisher,
	config *Config,
	clock Clock,
) *Tracker {
	if clock == nil {
		clock = time.Now
	}

	t := &Tracker{
		store:     store,
		publisher: publisher,
		clock:     clock,
		maxEvents: config.MaxEvents,
		events:    []domain.UsageEvent{},
		settings: CostSettings{
			DailyLimit:     config.DailyLimit,
			MonthlyLimit:   config.MonthlyLimit,
			AlertThreshold: config.AlertThreshold,
			AlertsEnabled:  true,
		},
	}
	if t.maxEvents <= 0 {
		t.maxEvents = 1000
	}

	t.load(ctx)

	return t
}

// Record stores the event with a generated id and timestamp and checks spend alerts.
// It never fails; persistence errors are logged.
func (t *Tracker) Record(ctx context.Context, event domain.UsageEvent) domain.UsageEvent {
	t.mu.Lock()

	now := t.clock()
	dayBefore, monthBefore := t.spendLocked(now)

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = now
	}

	t.events = append([]domain.UsageEvent{event}, t.events...)
	if len(t.events) > t.maxEvents {
		t.events = t.events[:t.maxEvents]
	}
	t.persistLocked(ctx, EventsKey, t.events)

	dayAfter, monthAfter := t.spendLocked(now)
	settings := t.settings

	t.mu.Unlock()

	observability.FromContext(ctx).Debug("usage event recorded",
		observability.String("event_id", event.ID),
		observability.String("operation", string(event.Operation)),
		observability.Bool("success", event.Success),
		observability.Float64("estimated_cost", event.EstimatedCost),
	)

	if settings.AlertsEnabled && t.publisher != nil {
		t.checkLimit(ctx, settings.DailyLimit, settings.AlertThreshold, dayBefore, dayAfter,
			AlertDailyWarning, AlertDailyExceeded)
		t.checkLimit(ctx, settings.MonthlyLimit, settings.AlertThreshold, monthBefore, monthAfter,
			AlertMonthlyWarning, AlertMonthlyExceeded)
	}

	return event
}

// Events returns up to limit events, most recent first. A non-positive limit returns all.
func (t *Tracker) Events(limit int) []domain.UsageEvent {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(t.events)
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]domain.UsageEvent, n)
	copy(out, t.events[:n])
	return out
}

// Stats aggregates events within [now - windowDays, now].
func (t *Tracker) Stats(windowDays int) Stats {
	if windowDays <= 0 {
		windowDays = DefaultStatsWindowDays
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock()
	cutoff := now.Add(-time.Duration(windowDays) * 24 * time.Hour)

	stats := Stats{
		WindowDays:         windowDays,
		ByProvider:         map[string]int{},
		ByOperation:        map[string]int{},
		ByEnhancementLevel: map[string]int{},
	}

	var totalProcessing int64
	for _, ev := range t.events {
		if ev.Timestamp.Before(cutoff) || ev.Timestamp.After(now) {
			continue
		}

		stats.TotalEvents++
		if ev.Success {
			stats.SuccessfulEvents++
		} else {
			stats.FailedEvents++
		}
		stats.TotalTokens += ev.TokensUsed
		stats.TotalCost += ev.EstimatedCost
		totalProcessing += ev.ProcessingTimeMs

		stats.ByProvider[string(ev.Provider)]++
		stats.ByOperation[string(ev.Operation)]++
		if ev.EnhancementLevel != "" {
			stats.ByEnhancementLevel[string(ev.EnhancementLevel)]++
		}
	}

	if stats.TotalEvents > 0 {
		stats.SuccessRate = float64(stats.SuccessfulEvents) / float64(stats.TotalEvents)
		stats.AverageProcessingTimeMs = float64(totalProcessing) / float64(stats.TotalEvents)
	}

	return stats
}

// CostMonitoring reports today's and this month's spend with a linear monthly projection.
func (t *Tracker) CostMonitoring() CostMonitoring {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock()
	today, month := t.spendLocked(now)

	return CostMonitoring{
		CostSettings:          t.settings,
		TodaySpend:            today,
		MonthSpend:            month,
		ProjectedMonthlySpend: month / float64(now.Day()) * float64(daysInMonth(now)),
	}
}

// UpdateSettings validates and persists new cost settings.
func (t *Tracker) UpdateSettings(ctx context.Context, settings CostSettings) (CostSettings, error) {
	if settings.DailyLimit < 0 || settings.MonthlyLimit < 0 {
		return CostSettings{}, &domain.ValidationError{Field: "limits", Message: "limits cannot be negative"}
	}
	if settings.AlertThreshold <= 0 || settings.AlertThreshold > 1 {
		return CostSettings{}, &domain.ValidationError{
			Field:   "alertThreshold",
			Message: "alert threshold must be in (0, 1]",
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.settings = settings
	t.persistLocked(ctx, CostMonitoringKey, t.settings)

	return t.settings, nil
}

// Clear drops the event history. Cost settings are kept.
func (t *Tracker) Clear(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.events = []domain.UsageEvent{}
	if err := t.store.Delete(ctx, EventsKey); err != nil {
		observability.FromContext(ctx).Warn("failed to clear usage events", observability.Error(err))
	}
}

func (t *Tracker) checkLimit(
	ctx context.Context,
	limit, threshold, before, after float64,
	warning, exceeded string,
) {
	if limit <= 0 {
		return
	}

	data := map[string]interface{}{
		"limit":     limit,
		"spend":     after,
		"threshold": threshold,
	}

	switch {
	case before < limit && after >= limit:
		t.publisher.Publish(ctx, exceeded, data)
	case before < limit*threshold && after >= limit*threshold && after < limit:
		t.publisher.Publish(ctx, warning, data)
	}
}

func (t *Tracker) spendLocked(now time.Time) (float64, float64) {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var today, month float64
	for _, ev := range t.events {
		if ev.Timestamp.Before(startOfMonth) {
			continue
		}
		month += ev.EstimatedCost
		if !ev.Timestamp.Before(startOfDay) {
			today += ev.EstimatedCost
		}
	}

	return today, month
}

func (t *Tracker) persistLocked(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err == nil {
		err = t.store.Set(ctx, key, data)
	}
	if err != nil {
		observability.FromContext(ctx).Warn("failed to persist usage state",
			observability.String("key", key),
			observability.Error(err),
		)
	}
}

func (t *Tracker) load(ctx context.Context) {
	logger := observability.FromContext(ctx)

	if err := t.loadKey(ctx, EventsKey, &t.events); err != nil {
		logger.Warn("failed to load usage events", observability.Error(err))
		t.events = []domain.UsageEvent{}
	}
	if len(t.events) > t.maxEvents {
		t.events = t.events[:t.maxEvents]
	}

	if err := t.loadKey(ctx, CostMonitoringKey, &t.settings); err != nil {
		logger.Warn("failed to load cost settings", observability.Error(err))
	}
}

func (t *Tracker) loadKey(ctx context.Context, key string, target interface{}) error {
	data, err := t.store.Get(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
