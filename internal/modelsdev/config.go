package modelsdev

// Config contains settings for the models.dev catalog and logo proxy.
type Config struct {
	BaseURL string `env:"MODELS_DEV_BASE_URL" envDefault:"https://models.dev"`
	Timeout int    `env:"MODELS_DEV_TIMEOUT"  envDefault:"10"`
}
