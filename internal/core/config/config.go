// Package config provides configuration management for catalogd services.
package config

import (
	"fmt"
	"time"
)

// ServerConfig holds configuration for the HTTP API service.
type ServerConfig struct {
	Host           string
	Port           int
	RequestTimeout time.Duration
	DefaultLimit   int
	MaxLimit       int
}

// DefaultServerConfig returns configuration with default values.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Host:           "0.0.0.0",
		Port:           8080,
		RequestTimeout: 10 * time.Second,
		DefaultLimit:   12,
		MaxLimit:       50,
	}
}

// Validate checks port range and positive values for timeout and limits.
func (cfg *ServerConfig) Validate() error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", cfg.Port)
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %v", cfg.RequestTimeout)
	}
	if cfg.DefaultLimit <= 0 {
		return fmt.Errorf("default_limit must be positive, got %d", cfg.DefaultLimit)
	}
	if cfg.MaxLimit < cfg.DefaultLimit {
		return fmt.Errorf("max_limit must be at least default_limit, got %d < %d", cfg.MaxLimit, cfg.DefaultLimit)
	}
	return nil
}
