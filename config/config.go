package config

import (
	"errors"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type HTTP struct {
	Addr string `yaml:"addr"`
}

type Logging struct {
	Env       string `yaml:"env"`       // dev|prod
	Service   string `yaml:"service"`   // relay-service
	Version   string `yaml:"version"`   // v0.1.0
	Backend   string `yaml:"backend"`   // std|zap
	AddSource bool   `yaml:"addSource"` // false|true
	Debug     bool   `yaml:"debug"`     // false|true
}

// Retention controls the relay's time-bounded stores. Durations are Go
// duration strings ("24h", "60s").
type Retention struct {
	MessageTTL        string `yaml:"messageTTL"`        // default expiry for messages
	ReceiptVisibility string `yaml:"receiptVisibility"` // read window for receipts
	ReceiptRetention  string `yaml:"receiptRetention"`  // prune horizon for receipts
	SweepInterval     string `yaml:"sweepInterval"`     // background sweep period
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

type Config struct {
	HTTP      HTTP      `yaml:"http"`
	Logging   Logging   `yaml:"logging"`
	Retention Retention `yaml:"retention"`
	CORS      CORS      `yaml:"cors"`
}

func LoadConfig() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./config/config.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr is required")
	}
	if c.Logging.Service == "" {
		c.Logging.Service = "relay-service"
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "dev"
	}
	if c.Logging.Version == "" {
		c.Logging.Version = "v0.1.0"
	}
	if c.Logging.Backend == "" {
		c.Logging.Backend = "std"
	}
	return nil
}

// MessageTTL returns the parsed default message expiry.
func (c *Config) MessageTTL() time.Duration {
	return parseDurationOr(24*time.Hour, c.Retention.MessageTTL)
}

// ReceiptVisibility returns the parsed receipt read window.
func (c *Config) ReceiptVisibility() time.Duration {
	return parseDurationOr(24*time.Hour, c.Retention.ReceiptVisibility)
}

// ReceiptRetention returns the parsed receipt prune horizon.
func (c *Config) ReceiptRetention() time.Duration {
	return parseDurationOr(7*24*time.Hour, c.Retention.ReceiptRetention)
}

// SweepInterval returns the parsed background sweep period.
func (c *Config) SweepInterval() time.Duration {
	return parseDurationOr(time.Minute, c.Retention.SweepInterval)
}

func parseDurationOr(def time.Duration, s string) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return def
}
