package openai

// Config contains OpenAI adapter configuration.
// The API key is optional and only used by CLI commands; HTTP callers send their own.
type Config struct {
	APIKey       string `env:"OPENAI_API_KEY"`
	BaseURL      string `env:"OPENAI_BASE_URL"      envDefault:"https://api.openai.com/v1"`
	Timeout      int    `env:"OPENAI_TIMEOUT"       envDefault:"60"`
	DefaultModel string `env:"OPENAI_DEFAULT_MODEL"`
}
