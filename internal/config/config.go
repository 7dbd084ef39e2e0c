package config

import (
	"errors"
	"fmt"
	"net"
	"time"
)

//go:generate go tool optgen -output zz_generated.configuration.go . Configuration

const (
	ServerModeDev  = "dev"
	ServerModeProd = "prod"

	CaptureDevicePattern = "pattern"
	CaptureDeviceCommand = "command"

	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

type Configuration struct {
	Server    Server         `debugmap:"visible"`
	Pool      Pool           `debugmap:"visible"`
	Capture   Capture        `debugmap:"visible"`
	Admin     Admin          `debugmap:"visible"`
	Auth      Authentication `debugmap:"hidden"`
	Store     Store          `debugmap:"visible"`
	Events    Events         `debugmap:"visible"`
	LogFormat string         `debugmap:"visible" default:"console"`
	LogLevel  string         `debugmap:"visible" default:"info"`
}

type Server struct {
	Address       string        `debugmap:"visible" default:"0.0.0.0:49000"`
	StaticsFolder string        `debugmap:"visible"`
	ReadTimeout   time.Duration `debugmap:"visible" default:"10s"`
	WriteTimeout  time.Duration `debugmap:"visible" default:"30s"`
}

type Pool struct {
	NumWorkers int `debugmap:"visible" default:"4"`
}

type Capture struct {
	Device  string        `debugmap:"visible" default:"pattern"`
	Command string        `debugmap:"visible" default:"rpicam-still"`
	Width   int           `debugmap:"visible" default:"640"`
	Height  int           `debugmap:"visible" default:"480"`
	Timeout time.Duration `debugmap:"visible" default:"5s"`
	Retries uint          `debugmap:"visible" default:"2"`
}

type Admin struct {
	Enabled bool   `debugmap:"visible" default:"true"`
	Mode    string `debugmap:"visible" default:"dev"`
	Address string `debugmap:"visible" default:"127.0.0.1:8000"`
}

type Authentication struct {
	Enabled   bool
	JWTSecret string
}

type Store struct {
	// DataFolder holds campi.duckdb. Empty keeps the access log in memory.
	DataFolder string `debugmap:"visible"`
}

type Events struct {
	NatsURL       string `debugmap:"visible"`
	SubjectPrefix string `debugmap:"visible" default:"campi"`
}

// Validate checks the configuration after defaults, file, env and flags were applied.
func (c *Configuration) Validate() error {
	var errs []error

	if _, _, err := net.SplitHostPort(c.Server.Address); err != nil {
		errs = append(errs, fmt.Errorf("invalid server address %q: %w", c.Server.Address, err))
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		errs = append(errs, errors.New("server timeouts must be positive"))
	}
	if c.Pool.NumWorkers <= 0 {
		errs = append(errs, fmt.Errorf("pool workers must be positive, got %d", c.Pool.NumWorkers))
	}

	switch c.Capture.Device {
	case CaptureDevicePattern, CaptureDeviceCommand:
	default:
		errs = append(errs, fmt.Errorf("invalid capture device %q: must be %q or %q", c.Capture.Device, CaptureDevicePattern, CaptureDeviceCommand))
	}
	if c.Capture.Device == CaptureDeviceCommand && c.Capture.Command == "" {
		errs = append(errs, errors.New("capture command is required for the command device"))
	}
	if c.Capture.Width <= 0 || c.Capture.Height <= 0 {
		errs = append(errs, errors.New("capture size must be positive"))
	}
	if c.Capture.Timeout <= 0 {
		errs = append(errs, errors.New("capture timeout must be positive"))
	}

	if c.Admin.Enabled {
		if c.Admin.Mode != ServerModeDev && c.Admin.Mode != ServerModeProd {
			errs = append(errs, fmt.Errorf("invalid admin mode %q: must be %q or %q", c.Admin.Mode, ServerModeDev, ServerModeProd))
		}
		if _, _, err := net.SplitHostPort(c.Admin.Address); err != nil {
			errs = append(errs, fmt.Errorf("invalid admin address %q: %w", c.Admin.Address, err))
		}
	}
	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("jwt secret is required when authentication is enabled"))
	}

	switch c.LogFormat {
	case LogFormatConsole, LogFormatJSON:
	default:
		errs = append(errs, fmt.Errorf("invalid log format %q", c.LogFormat))
	}

	return errors.Join(errs...)
}
