package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config is the process configuration, read from the environment.
type Config struct {
	Port             string
	StoreBackend     string
	SeedDemoData     bool
	AuthDemoFallback bool
	AuthTokenSecret  string
	RabbitMQURL      string
	CORSAllowOrigins string
	AccessLog        bool
}

// SetDefaults registers every key with its default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "7071")
	v.SetDefault("STORE_BACKEND", BackendMemory)
	v.SetDefault("SEED_DEMO_DATA", true)
	v.SetDefault("AUTH_DEMO_FALLBACK", true)
	v.SetDefault("AUTH_TOKEN_SECRET", "")
	v.SetDefault("RABBITMQ_URL", "") // empty disables inventory events
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")
	v.SetDefault("ACCESS_LOG", true)
}

// Load applies defaults, binds the environment and returns the validated
// configuration.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)
	v.AutomaticEnv() // Load environment variables

	cfg := Config{
		Port:             strings.TrimPrefix(strings.TrimSpace(v.GetString("PORT")), ":"),
		StoreBackend:     strings.ToLower(strings.TrimSpace(v.GetString("STORE_BACKEND"))),
		SeedDemoData:     v.GetBool("SEED_DEMO_DATA"),
		AuthDemoFallback: v.GetBool("AUTH_DEMO_FALLBACK"),
		AuthTokenSecret:  v.GetString("AUTH_TOKEN_SECRET"),
		RabbitMQURL:      v.GetString("RABBITMQ_URL"),
		CORSAllowOrigins: v.GetString("CORS_ALLOW_ORIGINS"),
		AccessLog:        v.GetBool("ACCESS_LOG"),
	}

	if cfg.Port == "" {
		cfg.Port = "7071"
	}
	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 0 || port > 65535 {
		return Config{}, fmt.Errorf("invalid PORT %q", cfg.Port)
	}
	switch cfg.StoreBackend {
	case BackendMemory, BackendSQLite:
	default:
		return Config{}, fmt.Errorf("unknown STORE_BACKEND %q (want %s or %s)", cfg.StoreBackend, BackendMemory, BackendSQLite)
	}
	return cfg, nil
}

// ListenAddr is the address the HTTP server binds to.
func (c Config) ListenAddr() string {
	return ":" + c.Port
}
