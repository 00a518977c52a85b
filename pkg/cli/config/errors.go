package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound  = goerr.New("configuration file not found")
	ErrInvalidConfig   = goerr.New("invalid configuration")
	ErrInvalidBackend  = goerr.New("invalid backend")
	ErrMissingSecret   = goerr.New("required secret is missing")
	ErrInvalidLogLevel = goerr.New("invalid log level")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	BackendKey    = "backend"
	FieldKey      = "field"
)
