package anthropic

// Config contains Anthropic adapter configuration.
type Config struct {
	APIKey       string `env:"ANTHROPIC_API_KEY"`
	BaseURL      string `env:"ANTHROPIC_BASE_URL"      envDefault:"https://api.anthropic.com"`
	Timeout      int    `env:"ANTHROPIC_TIMEOUT"       envDefault:"60"`
	DefaultModel string `env:"ANTHROPIC_DEFAULT_MODEL"`
}
