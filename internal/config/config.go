package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/dig"

	"github.com/davidbz/markl/internal/domain"
	"github.com/davidbz/markl/internal/modelsdev"
	"github.com/davidbz/markl/internal/observability"
	"github.com/davidbz/markl/internal/provider/anthropic"
	"github.com/davidbz/markl/internal/provider/gemini"
	"github.com/davidbz/markl/internal/provider/openai"
	"github.com/davidbz/markl/internal/storage/redis"
	"github.com/davidbz/markl/internal/usage"
)

// Config represents the service configuration.
type Config struct {
	Log         observability.LogConfig
	Server      ServerConfig
	CORS        CORSConfig
	OpenAI      openai.Config
	Anthropic   anthropic.Config
	Gemini      gemini.Config
	Enhancement domain.EnhancementConfig
	Usage       usage.Config
	Redis       redis.Config
	ModelsDev   modelsdev.Config
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port         int `env:"SERVER_PORT"          envDefault:"8080"`
	ReadTimeout  int `env:"SERVER_READ_TIMEOUT"  envDefault:"30"`
	WriteTimeout int `env:"SERVER_WRITE_TIMEOUT" envDefault:"120"`
}

// CORSConfig contains CORS policy settings. Defaults are permissive.
type CORSConfig struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS"   envSeparator:"," envDefault:"*"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS"   envSeparator:"," envDefault:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS"   envSeparator:"," envDefault:"Content-Type,Authorization"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS"                  envDefault:"false"`
	MaxAge           int      `env:"CORS_MAX_AGE"                            envDefault:"86400"`
}

// DepConfig is used for dependency injection with dig.
type DepConfig struct {
	dig.Out

	Log         *observability.LogConfig
	Server      *ServerConfig
	CORS        *CORSConfig
	OpenAI      *openai.Config
	Anthropic   *anthropic.Config
	Gemini      *gemini.Config
	Enhancement *domain.EnhancementConfig
	Usage       *usage.Config
	Redis       *redis.Config
	ModelsDev   *modelsdev.Config
}

// Load loads environment files and parses configuration.
func Load() *Config {
	for _, file := range []string{".env"} {
		_ = godotenv.Load(file)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		panic(err)
	}

	return &cfg
}

// ParseDependenciesConfig returns pointers to sub-configs for dependency injection.
func ParseDependenciesConfig(cfg *Config) DepConfig {
	return DepConfig{
		dig.Out{},
		&cfg.Log,
		&cfg.Server,
		&cfg.CORS,
		&cfg.OpenAI,
		&cfg.Anthropic,
		&cfg.Gemini,
		&cfg.Enhancement,
		&cfg.Usage,
		&cfg.Redis,
		&cfg.ModelsDev,
	}
}

// APIKeys returns the provider keys configured for CLI use.
func (c *Config) APIKeys() map[domain.ProviderID]string {
	keys := map[domain.ProviderID]string{}
	if c.OpenAI.APIKey != "" {
		keys[domain.ProviderOpenAI] = c.OpenAI.APIKey
	}
	if c.Anthropic.APIKey != "" {
		keys[domain.ProviderAnthropic] = c.Anthropic.APIKey
	}
	if c.Gemini.APIKey != "" {
		keys[domain.ProviderGemini] = c.Gemini.APIKey
	}
	return keys
}
