package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"energy-service/internal/analytics"

	"gopkg.in/yaml.v3"
)

// Config holds the service configuration
type Config struct {
	Server    ServerConfig     `yaml:"server"`
	Database  DatabaseConfig   `yaml:"database"`
	Redis     RedisConfig      `yaml:"redis"`
	MQTT      MQTTConfig       `yaml:"mqtt"`
	AMQP      AMQPConfig       `yaml:"amqp"`
	Log       LogConfig        `yaml:"log"`
	Analytics AnalyticsConfig  `yaml:"analytics"`
	Policy    analytics.Policy `yaml:"policy"`
	Users     []User           `yaml:"users"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins,omitempty"` // empty allows any origin
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// RedisConfig enables the result cache when Addr is set.
type RedisConfig struct {
	Addr        string        `yaml:"addr,omitempty"`
	Password    string        `yaml:"password,omitempty"`
	DB          int           `yaml:"db,omitempty"`
	ResultTTL   time.Duration `yaml:"result_ttl"`
	RecentLimit int64         `yaml:"recent_limit"`
}

type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"` // host:port
	ClientID    string `yaml:"client_id,omitempty"`
	TopicPrefix string `yaml:"topic_prefix,omitempty"`
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	QoS         byte   `yaml:"qos"`
}

type AMQPConfig struct {
	Enabled  bool   `yaml:"enabled"`
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange,omitempty"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type AnalyticsConfig struct {
	WindowSize int `yaml:"window_size"`
}

// User is an account accepted by the login endpoint
type User struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	OwnerID  string `yaml:"owner_id"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{Path: "data.db"},
		Redis: RedisConfig{
			ResultTTL:   24 * time.Hour,
			RecentLimit: 100,
		},
		MQTT:      MQTTConfig{TopicPrefix: "energy", QoS: 1},
		AMQP:      AMQPConfig{Exchange: "energy.analytics"},
		Log:       LogConfig{Level: "info"},
		Analytics: AnalyticsConfig{WindowSize: 50},
		Policy:    analytics.DefaultPolicy(),
		Users: []User{
			{Username: "demo", Password: "demo123", OwnerID: "user123"},
			{Username: "john", Password: "password456", OwnerID: "user456"},
		},
	}
}

// Load reads the config file over the defaults, then applies environment
// overrides. A missing file is not an error.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := cfg.applyEnvironmentVariables(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultConfigPath returns the default config file path (local directory)
func DefaultConfigPath() string {
	return "config.yaml"
}

func (c *Config) applyEnvironmentVariables() error {
	if val := os.Getenv("PORT"); val != "" {
		c.Server.Addr = ":" + val
	}
	if val := os.Getenv("REDIS_ADDR"); val != "" {
		c.Redis.Addr = val
	}
	if val := os.Getenv("ENERGY_DB_PATH"); val != "" {
		c.Database.Path = val
	}
	if val := os.Getenv("MQTT_BROKER"); val != "" {
		c.MQTT.Broker = val
		c.MQTT.Enabled = true
	}
	if val := os.Getenv("AMQP_URL"); val != "" {
		c.AMQP.URL = val
		c.AMQP.Enabled = true
	}
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_JSON"); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("parsing LOG_JSON: %w", err)
		}
		c.Log.JSON = b
	}
	return nil
}

// Validate checks the configuration and reports every problem at once
func (c *Config) Validate() error {
	var errors []string

	if c.Server.Addr == "" {
		errors = append(errors, "server.addr is required")
	}
	if c.Database.Path == "" {
		errors = append(errors, "database.path is required")
	}
	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		errors = append(errors, "mqtt.broker is required when mqtt is enabled")
	}
	if c.MQTT.QoS > 2 {
		errors = append(errors, "mqtt.qos must be 0, 1 or 2")
	}
	if c.AMQP.Enabled && c.AMQP.URL == "" {
		errors = append(errors, "amqp.url is required when amqp is enabled")
	}
	if c.Analytics.WindowSize < 1 {
		errors = append(errors, "analytics.window_size must be positive")
	}
	for i, u := range c.Users {
		if u.Username == "" || u.Password == "" || u.OwnerID == "" {
			errors = append(errors, fmt.Sprintf("users[%d] needs username, password and owner_id", i))
		}
	}
	if err := c.Policy.Validate(); err != nil {
		errors = append(errors, err.Error())
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}
	return nil
}
