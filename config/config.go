package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	SNMP      SNMPConfig      `yaml:"snmp"`
	Poller    PollerConfig    `yaml:"poller"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Alerts    AlertsConfig    `yaml:"alerts"`
	Orders    OrdersConfig    `yaml:"orders"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RequestIPHeader string  `yaml:"request_ip_header"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // "sqlite" or "postgres"
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// SNMPConfig holds the default device profile used when a printer has no
// overrides of its own.
type SNMPConfig struct {
	Community string `yaml:"community"`
	Version   string `yaml:"version"` // "1", "2c" or "3"
	Port      uint16 `yaml:"port"`
	TimeoutMs int    `yaml:"timeout_ms"`
	Retries   int    `yaml:"retries"`

	// v3 USM credentials, used only when version is "3".
	SecurityLevel  string `yaml:"security_level"` // noAuthNoPriv, authNoPriv or authPriv
	Username       string `yaml:"username"`
	AuthProtocol   string `yaml:"auth_protocol"`
	AuthPassphrase string `yaml:"auth_passphrase"`
	PrivProtocol   string `yaml:"priv_protocol"`
	PrivPassphrase string `yaml:"priv_passphrase"`
}

// Timeout returns the per-call SNMP timeout as a duration.
func (c SNMPConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// PollerConfig holds the scheduler and polling cycle configuration.
type PollerConfig struct {
	WorkerPoolSize          int  `yaml:"worker_pool_size"`
	QueueSize               int  `yaml:"queue_size"`
	AutoSyncEnabled         bool `yaml:"auto_sync_enabled"`
	AutoSyncIntervalMinutes int  `yaml:"auto_sync_interval_minutes"`
	BatchMaxAgeMinutes      int  `yaml:"batch_max_age_minutes"`
}

// AutoSyncInterval returns the minimum spacing between automatic sync batches.
func (c PollerConfig) AutoSyncInterval() time.Duration {
	return time.Duration(c.AutoSyncIntervalMinutes) * time.Minute
}

// BatchMaxAge returns the age after which a running batch is reaped.
func (c PollerConfig) BatchMaxAge() time.Duration {
	return time.Duration(c.BatchMaxAgeMinutes) * time.Minute
}

// DiscoveryConfig holds the network discovery configuration.
type DiscoveryConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

// AlertsConfig holds the alert engine thresholds.
type AlertsConfig struct {
	ConsumableCritical int      `yaml:"consumable_critical"` // critical below this percentage
	ConsumableMedium   int      `yaml:"consumable_medium"`   // medium below this percentage
	ConsumableRelease  int      `yaml:"consumable_release"`  // resolve at or above this percentage
	OfflineStatuses    []string `yaml:"offline_statuses"`
	OfflineCycles      int      `yaml:"offline_cycles"`
}

// OrdersConfig holds the automatic consumable reorder configuration.
type OrdersConfig struct {
	Enabled    bool     `yaml:"enabled"`
	Recipients []string `yaml:"recipients"`
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

	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns a configuration suitable for local development.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 30
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "fleet.db"
	}

	if cfg.SNMP.Community == "" {
		cfg.SNMP.Community = "public"
	}
	if cfg.SNMP.Version == "" {
		cfg.SNMP.Version = "2c"
	}
	if cfg.SNMP.Port == 0 {
		cfg.SNMP.Port = 161
	}
	if cfg.SNMP.TimeoutMs <= 0 {
		cfg.SNMP.TimeoutMs = 1500
	}
	if cfg.SNMP.Retries <= 0 {
		cfg.SNMP.Retries = 2
	}

	if cfg.Poller.WorkerPoolSize <= 0 {
		log.Printf("poller.worker_pool_size is not set or invalid; defaulting to 4")
		cfg.Poller.WorkerPoolSize = 4
	}
	if cfg.Poller.QueueSize <= 0 {
		cfg.Poller.QueueSize = 256
	}
	if cfg.Poller.AutoSyncIntervalMinutes <= 0 {
		cfg.Poller.AutoSyncIntervalMinutes = 15
	}
	if cfg.Poller.BatchMaxAgeMinutes <= 0 {
		cfg.Poller.BatchMaxAgeMinutes = 15
	}

	if cfg.Discovery.MaxConcurrent <= 0 {
		cfg.Discovery.MaxConcurrent = 10
	}

	if cfg.Alerts.ConsumableCritical <= 0 {
		cfg.Alerts.ConsumableCritical = 5
	}
	if cfg.Alerts.ConsumableMedium <= 0 {
		cfg.Alerts.ConsumableMedium = 15
	}
	if cfg.Alerts.ConsumableRelease <= 0 {
		cfg.Alerts.ConsumableRelease = 30
	}
	if len(cfg.Alerts.OfflineStatuses) == 0 {
		cfg.Alerts.OfflineStatuses = []string{"error", "offline", "unknown"}
	}
	if cfg.Alerts.OfflineCycles <= 0 {
		cfg.Alerts.OfflineCycles = 3
	}
}
