package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Config 服务配置
type Config struct {
	Http struct {
		Port           int      `yaml:"port"`
		TimeoutSeconds int      `yaml:"timeout_seconds"`
		AllowedOrigins []string `yaml:"allowed_origins"`
		RateLimit      float64  `yaml:"rate_limit"`
		RateBurst      int      `yaml:"rate_burst"`
	} `yaml:"http"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Log struct {
		Level      string `yaml:"level"`
		Path       string `yaml:"path"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
	} `yaml:"log"`
	Auth struct {
		JWTSecret       string `yaml:"jwt_secret"`
		TokenTTLSeconds int    `yaml:"token_ttl_seconds"`
	} `yaml:"auth"`
	ML struct {
		ArtifactsDir      string `yaml:"artifacts_dir"`
		EagerLoad         bool   `yaml:"eager_load"`
		APIURL            string `yaml:"api_url"`
		APIKey            string `yaml:"api_key"`
		APITimeoutSeconds int    `yaml:"api_timeout_seconds"`
		UseFallback       bool   `yaml:"use_fallback"`
	} `yaml:"ml"`
}

func (c *Config) HttpTimeout() time.Duration {
	return time.Duration(c.Http.TimeoutSeconds) * time.Second
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLSeconds) * time.Second
}

func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.ML.APITimeoutSeconds) * time.Second
}

// Load reads config.yaml and applies environment overrides. A .env file in the
// working directory is loaded first if present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnv(cfg)

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth.jwt_secret is required (or set JWT_SECRET_KEY)")
	}
	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}
	cfg.Http.Port = 8080
	cfg.Http.TimeoutSeconds = 30
	cfg.Http.AllowedOrigins = []string{"*"}
	cfg.Http.RateLimit = 20
	cfg.Http.RateBurst = 40
	cfg.Database.Path = "data/exoserve.db"
	cfg.Log.Level = "info"
	cfg.Log.MaxSizeMB = 100
	cfg.Log.MaxBackups = 3
	cfg.Auth.TokenTTLSeconds = 24 * 60 * 60
	cfg.ML.ArtifactsDir = "artifacts"
	cfg.ML.APITimeoutSeconds = 30
	return cfg
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Http.Port = port
		}
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("JWT_SECRET_KEY"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("ARTIFACTS_DIR"); v != "" {
		cfg.ML.ArtifactsDir = v
	}
	if v := os.Getenv("ML_API_URL"); v != "" {
		cfg.ML.APIURL = v
	}
	if v := os.Getenv("ML_API_KEY"); v != "" {
		cfg.ML.APIKey = v
	}
	if v := os.Getenv("ML_API_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			cfg.ML.APITimeoutSeconds = secs
		}
	}
	if v := os.Getenv("USE_FALLBACK_PREDICTIONS"); v != "" {
		cfg.ML.UseFallback = strings.EqualFold(v, "true")
	}
}
