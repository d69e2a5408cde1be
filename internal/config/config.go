package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Calendar struct {
		CalendarID             string `yaml:"calendar_id"`
		CredentialsFile        string `yaml:"credentials_file"`
		Timezone               string `yaml:"timezone"`
		RefreshIntervalMinutes int    `yaml:"refresh_interval_minutes"`
	} `yaml:"calendar"`

	Mail struct {
		Sender     string `yaml:"sender"`
		AdminEmail string `yaml:"admin_email"`
	} `yaml:"mail"`

	Redis struct {
		Address         string `yaml:"address"`
		Password        string `yaml:"password"`
		DB              int    `yaml:"db"`
		CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	} `yaml:"redis"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Admin struct {
		APIKey string `yaml:"api_key"`
	} `yaml:"admin"`

	RateLimit struct {
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"rate_limit"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Calendar.Timezone == "" {
		cfg.Calendar.Timezone = "Asia/Karachi"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/bookdesk.db"
	}

	if cfg.Calendar.CalendarID == "" {
		return nil, fmt.Errorf("calendar.calendar_id is required")
	}
	if cfg.Calendar.CredentialsFile == "" {
		return nil, fmt.Errorf("calendar.credentials_file is required")
	}
	if cfg.Mail.AdminEmail == "" {
		return nil, fmt.Errorf("mail.admin_email is required")
	}

	return &cfg, nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Calendar.Timezone)
}

// RefreshInterval returns the schedule refresh period with a default.
func (c *Config) RefreshInterval() time.Duration {
	if c.Calendar.RefreshIntervalMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(c.Calendar.RefreshIntervalMinutes) * time.Minute
}

// CacheTTL returns the Redis response cache TTL; zero disables caching.
func (c *Config) CacheTTL() time.Duration {
	if c.Redis.CacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Redis.CacheTTLSeconds) * time.Second
}

// Credentials reads the Google service-account key file.
func (c *Config) Credentials() ([]byte, error) {
	data, err := os.ReadFile(c.Calendar.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	return data, nil
}
