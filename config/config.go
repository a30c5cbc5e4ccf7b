package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Station      StationConfig      `yaml:"station"`
	Backend      BackendConfig      `yaml:"backend"`
	Token        TokenConfig        `yaml:"token"`
	Queue        QueueConfig        `yaml:"queue"`
	Audit        AuditConfig        `yaml:"audit"`
	Notification NotificationConfig `yaml:"notification"`
	Push         PushConfig         `yaml:"push"`
	WorkerPool   WorkerPoolConfig   `yaml:"worker_pool"`
	Database     DatabaseConfig     `yaml:"database"`
}

// ServerConfig holds the HTTP server configuration for the panel API.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	RateLimitPerSec float64       `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int           `yaml:"rate_limit_burst"`
	CacheTTLSeconds int           `yaml:"cache_ttl_seconds"`
	CacheTTL        time.Duration `yaml:"-"`
}

// StationConfig identifies the polling station this panel instance serves.
type StationConfig struct {
	ID   string `yaml:"id"`
	Code string `yaml:"code"`
}

// BackendConfig holds the connection settings for the election backend.
type BackendConfig struct {
	BaseURL             string            `yaml:"base_url"`
	Headers             map[string]string `yaml:"headers"`
	TimeoutSeconds      int               `yaml:"timeout_seconds"`
	Timeout             time.Duration     `yaml:"-"`
	SyncIntervalSeconds int               `yaml:"sync_interval_seconds"`
	SyncInterval        time.Duration     `yaml:"-"`
}

// TokenConfig controls the admission token rotation.
type TokenConfig struct {
	RotationSeconds int           `yaml:"rotation_seconds"`
	Rotation        time.Duration `yaml:"-"`
}

// QueueConfig bounds the in-memory check-in queue.
type QueueConfig struct {
	Capacity int `yaml:"capacity"`
}

// AuditConfig bounds the activity log and the persisted history records.
type AuditConfig struct {
	LogRetention     int `yaml:"log_retention"`
	HistoryRetention int `yaml:"history_retention"`
}

// NotificationConfig controls the operator-facing notification slot.
type NotificationConfig struct {
	TTLSeconds int           `yaml:"ttl_seconds"`
	TTL        time.Duration `yaml:"-"`
}

// PushConfig holds the VAPID keys for operator web push notifications.
// Push delivery is disabled when the keys are left empty.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the push worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 5
	}
	cfg.Server.CacheTTL = time.Duration(cfg.Server.CacheTTLSeconds) * time.Second

	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}

	if cfg.Backend.TimeoutSeconds <= 0 {
		cfg.Backend.TimeoutSeconds = 10
	}
	cfg.Backend.Timeout = time.Duration(cfg.Backend.TimeoutSeconds) * time.Second

	if cfg.Backend.SyncIntervalSeconds <= 0 {
		cfg.Backend.SyncIntervalSeconds = 15
	}
	cfg.Backend.SyncInterval = time.Duration(cfg.Backend.SyncIntervalSeconds) * time.Second

	if cfg.Token.RotationSeconds <= 0 {
		cfg.Token.RotationSeconds = 30
	}
	cfg.Token.Rotation = time.Duration(cfg.Token.RotationSeconds) * time.Second

	if cfg.Queue.Capacity <= 0 {
		cfg.Queue.Capacity = 200
	}

	if cfg.Audit.LogRetention <= 0 {
		cfg.Audit.LogRetention = 20
	}
	if cfg.Audit.HistoryRetention <= 0 {
		cfg.Audit.HistoryRetention = 100
	}

	if cfg.Notification.TTLSeconds <= 0 {
		cfg.Notification.TTLSeconds = 5
	}
	cfg.Notification.TTL = time.Duration(cfg.Notification.TTLSeconds) * time.Second

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	return &cfg, nil
}
