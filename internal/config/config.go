// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultSessionSecret = "your-session-secret-change-in-production"
	defaultSiteURL       = "http://localhost:3000"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port                   string  `mapstructure:"PORT"`
	Env                    string  `mapstructure:"APP_ENV"`
	SiteURL                string  `mapstructure:"SITE_URL"`
	SessionSecret          string  `mapstructure:"SESSION_SECRET"`
	TwitchClientID         string  `mapstructure:"TWITCH_CLIENT_ID"`
	TwitchClientSecret     string  `mapstructure:"TWITCH_CLIENT_SECRET"`
	DBDriver               string  `mapstructure:"DB_DRIVER"`
	DBHost                 string  `mapstructure:"DB_HOST"`
	DBPort                 string  `mapstructure:"DB_PORT"`
	DBUser                 string  `mapstructure:"DB_USER"`
	DBPassword             string  `mapstructure:"DB_PASSWORD"`
	DBName                 string  `mapstructure:"DB_NAME"`
	DBSSLMode              string  `mapstructure:"DB_SSLMODE"`
	DBSQLitePath           string  `mapstructure:"DB_SQLITE_PATH"`
	RedisURL               string  `mapstructure:"REDIS_URL"`
	FeatureFlags           string  `mapstructure:"FEATURE_FLAGS"`
	CatalogSource          string  `mapstructure:"CATALOG_SOURCE"`
	CatalogCacheTTLSeconds int     `mapstructure:"CATALOG_CACHE_TTL_SECONDS"`
	EventsPageSize         int     `mapstructure:"EVENTS_PAGE_SIZE"`
	TracingEnabled         bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter        string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint           string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSampleRatio     float64 `mapstructure:"TRACING_SAMPLE_RATIO"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The base config file is optional.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	viper.SetDefault("PORT", "3000")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("SITE_URL", defaultSiteURL)
	viper.SetDefault("SESSION_SECRET", defaultSessionSecret)
	viper.SetDefault("TWITCH_CLIENT_ID", "")
	viper.SetDefault("TWITCH_CLIENT_SECRET", "")
	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "capes")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_SQLITE_PATH", "capes.db")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("FEATURE_FLAGS", "for_you=on")
	viper.SetDefault("CATALOG_SOURCE", CatalogSourceStatic)
	viper.SetDefault("CATALOG_CACHE_TTL_SECONDS", 300)
	viper.SetDefault("EVENTS_PAGE_SIZE", 6)
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLE_RATIO", 1.0)

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Catalog sources.
const (
	CatalogSourceStatic   = "static"
	CatalogSourceDatabase = "database"
)

func (c *Config) normalize() {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	c.DBSSLMode = strings.ToLower(strings.TrimSpace(c.DBSSLMode))
	c.CatalogSource = strings.ToLower(strings.TrimSpace(c.CatalogSource))
	c.SiteURL = strings.TrimRight(strings.TrimSpace(c.SiteURL), "/")
	if c.SiteURL == "" {
		c.SiteURL = defaultSiteURL
	}
}

// IsProduction reports whether the configuration targets a production environment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// CatalogCacheTTL returns the catalog cache lifetime.
func (c *Config) CatalogCacheTTL() time.Duration {
	if c.CatalogCacheTTLSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.CatalogCacheTTLSeconds) * time.Second
}

// OAuthCallbackURL is the redirect target handed to the identity provider.
func (c *Config) OAuthCallbackURL() string {
	return c.SiteURL + "/auth/callback"
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET is required")
	}
	switch c.DBDriver {
	case "", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.CatalogSource {
	case "", CatalogSourceStatic, CatalogSourceDatabase:
	default:
		return fmt.Errorf("unsupported CATALOG_SOURCE %q", c.CatalogSource)
	}
	if c.EventsPageSize < 0 {
		return errors.New("EVENTS_PAGE_SIZE must not be negative")
	}

	if c.IsProduction() {
		if c.SessionSecret == defaultSessionSecret {
			return errors.New("SESSION_SECRET must be changed from the default value in production")
		}
		if len(c.SessionSecret) < 32 {
			return errors.New("SESSION_SECRET must be at least 32 characters in production")
		}
		if c.TwitchClientID == "" || c.TwitchClientSecret == "" {
			return errors.New("TWITCH_CLIENT_ID and TWITCH_CLIENT_SECRET are required in production")
		}
		if c.DBDriver == "sqlite" {
			return errors.New("DB_DRIVER=sqlite is not supported in production")
		}
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			return errors.New("DB_SSLMODE must enable TLS in production")
		}
	} else if len(c.SessionSecret) < 32 {
		log.Println("WARNING: SESSION_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
	}

	return nil
}
