package usage

import "time"

// Storage keys.
const (
	EventsKey         = "ai_usage_events"
	CostMonitoringKey = "ai_cost_monitoring"
)

// Alert event types.
const (
	AlertDailyWarning    = "daily_limit_warning"
	AlertDailyExceeded   = "daily_limit_exceeded"
	AlertMonthlyWarning  = "monthly_limit_warning"
	AlertMonthlyExceeded = "monthly_limit_exceeded"
)

// DefaultStatsWindowDays is used when no window is requested.
const DefaultStatsWindowDays = 30

// Clock returns the current time. Day and month boundaries use its location.
type Clock func() time.Time

// CostSettings are the persisted spending limits. A zero limit disables its alerts.
type CostSettings struct {
	DailyLimit     float64 `json:"dailyLimit"`
	MonthlyLimit   float64 `json:"monthlyLimit"`
	AlertThreshold float64 `json:"alertThreshold"`
	AlertsEnabled  bool    `json:"alertsEnabled"`
}

// CostMonitoring is the current spend against the configured limits.
type CostMonitoring struct {
	CostSettings

	TodaySpend            float64 `json:"todaySpend"`
	MonthSpend            float64 `json:"monthSpend"`
	ProjectedMonthlySpend float64 `json:"projectedMonthlySpend"`
}

// Stats aggregates events within a trailing window.
type Stats struct {
	WindowDays              int            `json:"windowDays"`
	TotalEvents             int            `json:"totalEvents"`
	SuccessfulEvents        int            `json:"successfulEvents"`
	FailedEvents            int            `json:"failedEvents"`
	SuccessRate             float64        `json:"successRate"`
	TotalTokens             int            `json:"totalTokens"`
	TotalCost               float64        `json:"totalCost"`
	AverageProcessingTimeMs float64        `json:"averageProcessingTime"`
	ByProvider              map[string]int `json:"byProvider"`
	ByOperation             map[string]int `json:"byOperation"`
	ByEnhancementLevel      map[string]int `json:"byEnhancementLevel"`
}
