package config

import (
	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	// Port the HTTP server listens on
	Port string `env:"PORT" envDefault:"8000"`

	// DatabaseURL selects the store. sqlite paths ("atlas.db",
	// "file::memory:?cache=shared") or a postgres DSN/URL.
	DatabaseURL string `env:"DATABASE_URL" envDefault:"atlas.db"`

	// CORSOrigins is a comma-separated allow list; "*" allows all
	CORSOrigins string `env:"CORS_ORIGINS" envDefault:"*"`

	JWT struct {
		Secret string `env:"JWT_SECRET" envDefault:"change-me"`

		// Token lifetimes in minutes
		AccessExpires  int `env:"JWT_ACCESS_EXPIRES" envDefault:"30"`
		RefreshExpires int `env:"JWT_REFRESH_EXPIRES" envDefault:"10080"`
	}

	RentCast struct {
		BaseURL string `env:"RENTCAST_BASE_URL" envDefault:"https://api.rentcast.io"`
		APIKey  string `env:"RENTCAST_API_KEY"`
	}
}

func LoadConfig() (*Config, error) {
	// Missing .env is fine, real env vars still apply
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
