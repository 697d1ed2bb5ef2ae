package app

import (
	"errors"
	"fmt"
	"math"

	"github.com/specialistvlad/graphua/internal/config"
)

// Default settings, applied after the file `server` block.
const (
	DefaultListen     = ":8080"
	DefaultLogFormat  = "json"
	DefaultLogLevel   = "info"
	DefaultWorkers    = 10
	DefaultEventQueue = 1024
	DefaultNamespace  = 1
)

// Config holds all the necessary configuration for an App instance to run.
// Zero values mean "not set": the file `server` block fills them, then the
// defaults do.
type Config struct {
	ConfigPaths []string // .hcl, .yaml and .yml files or directories

	Listen          string
	HealthcheckPort int
	LogFormat       string
	LogLevel        string
	Workers         int
	EventQueue      int
	Namespace       int
}

// NewConfig validates the explicitly set fields.
func NewConfig(cfg Config) (*Config, error) {
	if err := cfg.validate(false); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyServer fills every unset field from the file settings.
func (c *Config) applyServer(s *config.Server) {
	if s == nil {
		return
	}
	if c.Listen == "" {
		c.Listen = s.Listen
	}
	if c.HealthcheckPort == 0 {
		c.HealthcheckPort = s.HealthcheckPort
	}
	if c.LogFormat == "" {
		c.LogFormat = s.LogFormat
	}
	if c.LogLevel == "" {
		c.LogLevel = s.LogLevel
	}
	if c.Workers == 0 {
		c.Workers = s.Workers
	}
	if c.EventQueue == 0 {
		c.EventQueue = s.EventQueue
	}
	if c.Namespace == 0 {
		c.Namespace = s.Namespace
	}
}

func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
	if c.EventQueue == 0 {
		c.EventQueue = DefaultEventQueue
	}
	if c.Namespace == 0 {
		c.Namespace = DefaultNamespace
	}
}

// validate checks the fields. With complete set, unset fields are errors too.
func (c *Config) validate(complete bool) error {
	var errs []error
	switch c.LogFormat {
	case "text", "json":
	case "":
		if complete {
			errs = append(errs, errors.New("log format is not set"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", c.LogFormat))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	case "":
		if complete {
			errs = append(errs, errors.New("log level is not set"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", c.LogLevel))
	}
	if c.HealthcheckPort < 0 || c.HealthcheckPort > math.MaxUint16 {
		errs = append(errs, fmt.Errorf("invalid healthcheck port %d", c.HealthcheckPort))
	}
	if c.Workers < 0 || (complete && c.Workers == 0) {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", c.Workers))
	}
	if c.EventQueue < 0 || (complete && c.EventQueue == 0) {
		errs = append(errs, fmt.Errorf("event queue must be positive, got %d", c.EventQueue))
	}
	// Namespace 0 holds the standard nodes.
	if c.Namespace < 0 || c.Namespace > math.MaxUint16 || (complete && c.Namespace == 0) {
		errs = append(errs, fmt.Errorf("namespace must be between 1 and %d, got %d", math.MaxUint16, c.Namespace))
	}
	if complete && c.Listen == "" {
		errs = append(errs, errors.New("listen address is not set"))
	}
	return errors.Join(errs...)
}
