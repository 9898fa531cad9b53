package config

import (
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

func init() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, falling back to system environment variables")
	}
}

type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN"`
	Prefix       string `env:"PREFIX" envDefault:"!"`
	OwnerID      string `env:"OWNER_ID"`
	StoragePath  string `env:"STORAGE_PATH" envDefault:"datastore.json"`
	LogPath      string `env:"LOG_PATH" envDefault:"logs/sensum.log"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("[ERR] Failed to parse environment: %v", err)
	}

	if cfg.DiscordToken == "" {
		log.Fatal("DISCORD_TOKEN is not set")
	}

	return cfg
}
