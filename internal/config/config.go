package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	S3       S3Config       `mapstructure:"s3"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Log      LogConfig      `mapstructure:"log"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Sweep    SweepConfig    `mapstructure:"sweep"`
	Meeting  MeetingConfig  `mapstructure:"meeting"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// Supported values of DatabaseConfig.Driver
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`

	// mongo
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`

	// postgres
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"` // duration string, e.g. "60m"
}

// LogConfig selects the zap preset and level.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// ScheduleConfig controls how session dates are interpreted and paged.
type ScheduleConfig struct {
	Timezone        string `mapstructure:"timezone"`
	DefaultPageSize int    `mapstructure:"default_page_size"`
	MaxPageSize     int    `mapstructure:"max_page_size"`
}

// Location resolves the configured IANA time zone.
func (c ScheduleConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule.timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// SweepConfig controls the background completion sweep.
type SweepConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Cron    string `mapstructure:"cron"`
}

// MeetingConfig is used to generate session links.
type MeetingConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Nested keys map to env vars, e.g. server.address -> SERVER_ADDRESS
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	setDefaults(v)

	err = v.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		// No file; rely on defaults and env vars
		err = nil
	} else if err != nil {
		return
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}

	if err = config.Validate(); err != nil {
		return
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")

	v.SetDefault("database.driver", DriverMongo)
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "fitcoach")
	v.SetDefault("database.dsn", "host=localhost port=5432 user=fitcoach password=fitcoach dbname=fitcoach sslmode=disable TimeZone=UTC")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 10)

	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.use_ssl", true)
	// Declared so AutomaticEnv can fill them from S3_* variables
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.bucket_name", "")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration", "1h")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("schedule.timezone", "UTC")
	v.SetDefault("schedule.default_page_size", 10)
	v.SetDefault("schedule.max_page_size", 100)

	v.SetDefault("sweep.enabled", true)
	v.SetDefault("sweep.cron", "@every 1m")

	v.SetDefault("meeting.base_url", "https://meet.jit.si")
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case DriverMongo, DriverPostgres:
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret must be set")
	}
	if _, err := c.Schedule.Location(); err != nil {
		return err
	}
	if c.Schedule.DefaultPageSize <= 0 || c.Schedule.MaxPageSize < c.Schedule.DefaultPageSize {
		return fmt.Errorf("schedule page sizes must satisfy 0 < default_page_size <= max_page_size")
	}
	return nil
}
