// Package config handles configuration loading from a YAML file, mounted secrets and environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"idm_bridge/internal/mapper"
)

// Request timeout bounds.
const (
	MinRequestTimeout = time.Second
	MaxRequestTimeout = 30 * time.Second
	MinReloadInterval = 30 * time.Second
)

// Config holds all configuration for the IDM bridge.
type Config struct {
	// Authentication credentials
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// Vendor API
	BaseURL        string        `yaml:"base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	ReloadInterval time.Duration `yaml:"reload_interval"`
	InsecureTLS    bool          `yaml:"insecure_tls"`

	// Server configuration
	ListenAddr string `yaml:"listen_addr"`

	// Logging configuration
	LogLevel  string `yaml:"log_level"`  // debug, info, warn, error
	LogFormat string `yaml:"log_format"` // text, json

	MQTT  MQTTConfig  `yaml:"mqtt"`
	Codes CodesConfig `yaml:"codes"`
}

// MQTTConfig configures the state tree broker connection.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// CodesConfig holds per-context icon code overrides, e.g.
//
//	codes:
//	  circuit_modes:
//	    icon_3: hot_water_boost
type CodesConfig struct {
	SystemModes   map[string]string `yaml:"system_modes"`
	CircuitModes  map[string]string `yaml:"circuit_modes"`
	SystemStates  map[string]string `yaml:"system_states"`
	CircuitStates map[string]string `yaml:"circuit_states"`
}

// Overrides converts the configured tables for the codec.
func (c CodesConfig) Overrides() mapper.Overrides {
	return mapper.Overrides{
		SystemModes:   c.SystemModes,
		CircuitModes:  c.CircuitModes,
		SystemStates:  c.SystemStates,
		CircuitStates: c.CircuitStates,
	}
}

func defaults() *Config {
	return &Config{
		BaseURL:        "https://www.myidm.at",
		RequestTimeout: 5 * time.Second,
		ReloadInterval: 5 * time.Minute,
		ListenAddr:     ":9810",
		LogLevel:       "info",
		LogFormat:      "text",
		MQTT: MQTTConfig{
			Broker: "tcp://localhost:1883",
			Topic:  "idm",
		},
	}
}

// LoadConfig loads configuration. Later sources win:
// defaults, the YAML file named by IDM_CONFIG_FILE, mounted secrets, environment variables.
func LoadConfig() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("IDM_CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	// Kubernetes secrets take precedence over env credentials
	secrets, err := tryLoadFromSecrets()
	if err != nil {
		return nil, fmt.Errorf("failed to read secrets: %w", err)
	}
	if secrets.username != "" && secrets.password != "" {
		cfg.Username = secrets.username
		cfg.Password = secrets.password
	} else {
		setString(&cfg.Username, "IDM_USERNAME")
		setString(&cfg.Password, "IDM_PASSWORD")
	}

	setString(&cfg.BaseURL, "IDM_BASE_URL")
	setString(&cfg.ListenAddr, "IDM_ADDR")
	setString(&cfg.LogLevel, "IDM_LOG_LEVEL")
	setString(&cfg.LogFormat, "IDM_LOG_FORMAT")

	if timeout := os.Getenv("IDM_REQUEST_TIMEOUT"); timeout != "" {
		if seconds, err := strconv.Atoi(timeout); err == nil && seconds > 0 {
			cfg.RequestTimeout = time.Duration(seconds) * time.Second
		}
	}

	if interval := os.Getenv("IDM_RELOAD_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err != nil {
			return nil, fmt.Errorf("invalid IDM_RELOAD_INTERVAL: %w", err)
		}
		cfg.ReloadInterval = d
	}

	if insecure := os.Getenv("IDM_INSECURE_TLS"); insecure != "" {
		b, err := strconv.ParseBool(insecure)
		if err != nil {
			return nil, fmt.Errorf("invalid IDM_INSECURE_TLS: %w", err)
		}
		cfg.InsecureTLS = b
	}

	setString(&cfg.MQTT.Broker, "IDM_MQTT_BROKER")
	setString(&cfg.MQTT.Topic, "IDM_MQTT_TOPIC")
	setString(&cfg.MQTT.ClientID, "IDM_MQTT_CLIENT_ID")
	setString(&cfg.MQTT.Username, "IDM_MQTT_USERNAME")
	setString(&cfg.MQTT.Password, "IDM_MQTT_PASSWORD")
	if cfg.MQTT.Password == "" {
		cfg.MQTT.Password = secrets.mqttPassword
	}

	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = "idm-bridge-" + uuid.NewString()[:8]
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Username == "" {
		return errors.New("username is required (set IDM_USERNAME or mount K8s secret)")
	}
	if c.Password == "" {
		return errors.New("password is required (set IDM_PASSWORD or mount K8s secret)")
	}
	if c.RequestTimeout < MinRequestTimeout || c.RequestTimeout > MaxRequestTimeout {
		return fmt.Errorf("request timeout must be between %s and %s", MinRequestTimeout, MaxRequestTimeout)
	}
	if c.ReloadInterval < MinReloadInterval {
		return fmt.Errorf("reload interval must be at least %s", MinReloadInterval)
	}
	if _, err := url.ParseRequestURI(c.BaseURL); err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if c.MQTT.Topic == "" {
		return errors.New("mqtt topic is required")
	}

	u, err := url.Parse(c.MQTT.Broker)
	if err != nil {
		return fmt.Errorf("invalid mqtt broker: %w", err)
	}
	switch u.Scheme {
	case "tcp", "ssl", "tls", "mqtt", "mqtts", "ws", "wss":
	default:
		return fmt.Errorf("unsupported mqtt broker scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("mqtt broker host is required")
	}

	return nil
}
