package usage

// Config contains usage tracking configuration.
type Config struct {
	MaxEvents      int     `env:"USAGE_MAX_EVENTS"      envDefault:"1000"`
	Store          string  `env:"USAGE_STORE"           envDefault:"memory"`
	DailyLimit     float64 `env:"USAGE_DAILY_LIMIT"     envDefault:"0"`
	MonthlyLimit   float64 `env:"USAGE_MONTHLY_LIMIT"   envDefault:"0"`
	AlertThreshold float64 `env:"USAGE_ALERT_THRESHOLD" envDefault:"0.8"`
}
