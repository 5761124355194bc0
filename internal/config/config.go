package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the application configuration.
type Config struct {
	Server struct {
		Port         string   `yaml:"port" env:"PORT"`
		Mode         string   `yaml:"mode" env:"GIN_MODE"`
		CORSOrigins  []string `yaml:"cors_origins" env:"CORS_ORIGINS"`
		AuthRateRPM  int      `yaml:"auth_rate_per_minute" env:"AUTH_RATE_PER_MINUTE"`
		TrustedProxy []string `yaml:"trusted_proxies" env:"TRUSTED_PROXIES"`
	} `yaml:"server"`

	Store struct {
		Driver        string `yaml:"driver" env:"STORE_DRIVER"`
		Dir           string `yaml:"dir" env:"DATA_DIR"`
		DSN           string `yaml:"dsn" env:"DATABASE_URL"`
		MongoURI      string `yaml:"mongo_uri" env:"MONGODB_URI"`
		MongoDatabase string `yaml:"mongo_database" env:"MONGODB_DATABASE"`
		CacheSize     int    `yaml:"cache_size" env:"STORE_CACHE_SIZE"`
	} `yaml:"store"`

	Session struct {
		CookieName string `yaml:"cookie_name" env:"SESSION_COOKIE"`
		Secret     string `yaml:"secret" env:"SESSION_SECRET"`
		TTL        string `yaml:"ttl" env:"SESSION_TTL"`
		Secure     bool   `yaml:"secure" env:"SESSION_SECURE"`
	} `yaml:"session"`

	Auth struct {
		BcryptCost int `yaml:"bcrypt_cost" env:"BCRYPT_COST"`
	} `yaml:"auth"`

	Admin struct {
		Username    string `yaml:"username" env:"ADMIN_USERNAME"`
		Password    string `yaml:"password" env:"ADMIN_PASSWORD"`
		DisplayName string `yaml:"display_name" env:"ADMIN_DISPLAY_NAME"`
	} `yaml:"admin"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Pretty bool   `yaml:"pretty" env:"LOG_PRETTY"`
	} `yaml:"logging"`
}

const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Load reads .env (if any), then the yaml file at configPath (if it exists),
// then applies environment overrides.
func Load(configPath string) (*Config, error) {
	// .env is optional; system environment still applies without it
	_ = godotenv.Load()

	config := &Config{}
	setDefaults(config)

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			file, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			if err := yaml.Unmarshal(file, config); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := processStructFields(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "debug"
	config.Server.AuthRateRPM = 30

	config.Store.Driver = DriverFile
	config.Store.Dir = "./data"
	config.Store.MongoDatabase = "devsquare"
	config.Store.CacheSize = 64

	config.Session.CookieName = "devsquare_session"
	config.Session.TTL = "720h"

	config.Auth.BcryptCost = 10

	config.Admin.DisplayName = "Administrator"

	config.Logging.Level = "info"
	config.Logging.Pretty = true
}

func validateConfig(config *Config) error {
	switch config.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("unknown server mode %q", config.Server.Mode)
	}

	switch config.Store.Driver {
	case DriverFile:
		if config.Store.Dir == "" {
			return fmt.Errorf("store dir is required for the file driver")
		}
	case DriverPostgres:
		if config.Store.DSN == "" {
			return fmt.Errorf("store dsn is required for the postgres driver")
		}
	case DriverMongo:
		if config.Store.MongoURI == "" {
			return fmt.Errorf("mongo uri is required for the mongo driver")
		}
	default:
		return fmt.Errorf("unknown store driver %q", config.Store.Driver)
	}

	ttl, err := time.ParseDuration(config.Session.TTL)
	if err != nil {
		return fmt.Errorf("invalid session ttl: %w", err)
	}
	if ttl <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}

	if config.Session.Secret == "" {
		if config.Server.Mode == "release" {
			return fmt.Errorf("session secret is required in release mode")
		}
		config.Session.Secret = "devsquare_dev_secret_change_me"
	}

	if config.Admin.Username != "" && len(config.Admin.Password) < 6 {
		return fmt.Errorf("admin password must be at least 6 characters")
	}

	config.Logging.Level = strings.ToLower(config.Logging.Level)
	return nil
}

// SessionTTL returns the parsed session lifetime.
func (c *Config) SessionTTL() time.Duration {
	ttl, err := time.ParseDuration(c.Session.TTL)
	if err != nil {
		return 30 * 24 * time.Hour
	}
	return ttl
}
