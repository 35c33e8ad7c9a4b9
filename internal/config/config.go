// Package config loads the settings for the avrserver binary.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/abates/denonavr"
	"gopkg.in/yaml.v3"
)

// Config is the root of the YAML configuration file
type Config struct {
	Serial   SerialConfig   `yaml:"serial"`
	Receiver ReceiverConfig `yaml:"receiver"`
	API      APIConfig      `yaml:"api"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// SerialConfig describes the port the receiver is attached to
type SerialConfig struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

// ReceiverConfig selects the receiver model and protocol timing
type ReceiverConfig struct {
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// APIConfig contains HTTP server settings
type APIConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// LoggingConfig contains logging settings.  Format is "console" or "json".
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port: "/dev/ttyUSB0",
			Baud: denonavr.DefaultBaud,
		},
		Receiver: ReceiverConfig{
			Model:   "AVR-3805",
			Timeout: denonavr.DefaultTimeout,
		},
		API: APIConfig{
			Host:         "127.0.0.1",
			Port:         8000,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads the YAML file at path over the defaults and then applies
// DENONAVR_* environment overrides.  An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("DENONAVR_SERIAL_PORT"); v != "" {
		cfg.Serial.Port = v
	}
	if v := os.Getenv("DENONAVR_SERIAL_BAUD"); v != "" {
		baud, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DENONAVR_SERIAL_BAUD: %w", err)
		}
		cfg.Serial.Baud = baud
	}
	if v := os.Getenv("DENONAVR_MODEL"); v != "" {
		cfg.Receiver.Model = v
	}
	if v := os.Getenv("DENONAVR_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("DENONAVR_API_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DENONAVR_API_PORT: %w", err)
		}
		cfg.API.Port = port
	}
	if v := os.Getenv("DENONAVR_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	return nil
}

// Validate checks the configuration for values the server can not run with
func (c *Config) Validate() error {
	var errs []error

	if c.Serial.Port == "" {
		errs = append(errs, errors.New("serial.port is required"))
	}
	if c.Serial.Baud <= 0 {
		errs = append(errs, fmt.Errorf("serial.baud must be positive, got %d", c.Serial.Baud))
	}
	if _, err := denonavr.LookupModel(c.Receiver.Model); err != nil {
		errs = append(errs, fmt.Errorf("receiver.model: %w (known: %s)", err, strings.Join(denonavr.Models(), ", ")))
	}
	if c.Receiver.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("receiver.timeout must be positive, got %v", c.Receiver.Timeout))
	}
	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, fmt.Errorf("api.port must be between 1 and 65535, got %d", c.API.Port))
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format))
	}
	return errors.Join(errs...)
}

// Model returns the receiver model named in the configuration
func (c *Config) Model() (denonavr.Model, error) {
	return denonavr.LookupModel(c.Receiver.Model)
}

// Addr is the listen address of the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}
