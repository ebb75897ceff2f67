package main

import (
	"fmt"
	"strings"
	"time"

	"ecg-synth/internal/api/handlers"
	"ecg-synth/internal/observability"
	"ecg-synth/internal/store"

	"github.com/spf13/viper"
)

// serverConfig is read from the environment. Keys map to upper-case variables (api_port -> API_PORT).
type serverConfig struct {
	Port           string
	Env            string
	Log            observability.Config
	CacheTTL       time.Duration
	MaxSamples     int
	ScenarioDir    string
	StaticDir      string
	AllowedOrigins []string
	RunsDB         string
}

func (c serverConfig) production() bool { return c.Env == "production" }

func newEnv() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("api_port", "8080")
	v.SetDefault("api_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_max_size_mb", 50)
	v.SetDefault("log_max_backups", 3)
	v.SetDefault("log_max_age_days", 14)
	v.SetDefault("cache_ttl", store.DefaultCacheTTL.String())
	v.SetDefault("max_samples", handlers.DefaultMaxSamples)
	v.SetDefault("static_dir", "./web/dist")
	return v
}

func loadServerConfig(v *viper.Viper) (serverConfig, error) {
	cfg := serverConfig{
		Port: v.GetString("api_port"),
		Env:  v.GetString("api_env"),
		Log: observability.Config{
			Level:      v.GetString("log_level"),
			File:       v.GetString("log_file"),
			MaxSizeMB:  v.GetInt("log_max_size_mb"),
			MaxBackups: v.GetInt("log_max_backups"),
			MaxAgeDays: v.GetInt("log_max_age_days"),
		},
		ScenarioDir: v.GetString("scenario_dir"),
		StaticDir:   v.GetString("static_dir"),
		RunsDB:      v.GetString("runs_db"),
	}
	cfg.Log.Development = !cfg.production()

	ttl, err := time.ParseDuration(v.GetString("cache_ttl"))
	if err != nil || ttl <= 0 {
		return serverConfig{}, fmt.Errorf("invalid CACHE_TTL %q", v.GetString("cache_ttl"))
	}
	cfg.CacheTTL = ttl

	cfg.MaxSamples = v.GetInt("max_samples")
	if cfg.MaxSamples <= 0 {
		return serverConfig{}, fmt.Errorf("invalid MAX_SAMPLES %q", v.GetString("max_samples"))
	}

	if origins := v.GetString("cors_origins"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}
	return cfg, nil
}
