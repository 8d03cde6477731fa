package config

import (
	"fmt"
	"net/url"
	"strings"
)

func validateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}
	if err := validateCMSConfig(&config.CMS); err != nil {
		return fmt.Errorf("cms config validation failed: %w", err)
	}
	if err := validateSearchConfig(&config.Search); err != nil {
		return fmt.Errorf("search config validation failed: %w", err)
	}
	if err := validateFeedsConfig(&config.Feeds); err != nil {
		return fmt.Errorf("feeds config validation failed: %w", err)
	}
	if err := validateRateLimitConfig(&config.RateLimit); err != nil {
		return fmt.Errorf("rate limit config validation failed: %w", err)
	}
	if err := validateLoggingConfig(&config.Logging); err != nil {
		return fmt.Errorf("logging config validation failed: %w", err)
	}
	if err := validateOTelConfig(&config.OTel); err != nil {
		return fmt.Errorf("otel config validation failed: %w", err)
	}
	return nil
}

func validateServerConfig(config *ServerConfig) error {
	if config.Port < 1 || config.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", config.Port)
	}
	if config.ReadTimeout <= 0 || config.WriteTimeout <= 0 || config.IdleTimeout <= 0 {
		return fmt.Errorf("timeout values must be positive")
	}
	return nil
}

func validateCMSConfig(config *CMSConfig) error {
	u, err := url.Parse(config.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("base URL must be an absolute URL, got %q", config.BaseURL)
	}
	if config.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", config.Timeout)
	}
	if config.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative, got %d", config.MaxRetries)
	}
	if config.RequestsPerS <= 0 {
		return fmt.Errorf("requests per second must be positive, got %v", config.RequestsPerS)
	}
	return nil
}

func validateSearchConfig(config *SearchConfig) error {
	if config.FetchPageSize < 1 {
		return fmt.Errorf("fetch page size must be positive, got %d", config.FetchPageSize)
	}
	if config.DefaultLimit < 1 || config.DefaultLimit > config.MaxLimit {
		return fmt.Errorf("default limit must be between 1 and max limit %d, got %d", config.MaxLimit, config.DefaultLimit)
	}
	if config.FanOutTimeout < 0 {
		return fmt.Errorf("fan-out timeout must not be negative, got %v", config.FanOutTimeout)
	}
	return nil
}

func validateFeedsConfig(config *FeedsConfig) error {
	if len(config.NewsFeedURLs) == 0 {
		return nil
	}
	if config.Refresh <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %v", config.Refresh)
	}
	return nil
}

func validateRateLimitConfig(config *RateLimitConfig) error {
	if !config.Enabled {
		return nil
	}
	if config.RPS <= 0 {
		return fmt.Errorf("rps must be positive, got %v", config.RPS)
	}
	if config.Burst < 1 {
		return fmt.Errorf("burst must be at least 1, got %d", config.Burst)
	}
	return nil
}

func validateLoggingConfig(config *LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[strings.ToLower(config.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", config.Level)
	}
	return nil
}

func validateOTelConfig(config *OTelConfig) error {
	if config.SampleRatio < 0 || config.SampleRatio > 1 {
		return fmt.Errorf("sample ratio must be within [0, 1], got %v", config.SampleRatio)
	}
	return nil
}
