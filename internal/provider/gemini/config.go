package gemini

// Config contains Gemini adapter configuration.
// Endpoint overrides the Generative Language API host when set.
type Config struct {
	APIKey       string `env:"GEMINI_API_KEY"`
	Endpoint     string `env:"GEMINI_ENDPOINT"`
	Timeout      int    `env:"GEMINI_TIMEOUT"       envDefault:"60"`
	DefaultModel string `env:"GEMINI_DEFAULT_MODEL"`
}
