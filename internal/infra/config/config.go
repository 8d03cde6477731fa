package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig    `json:"server"`
	CMS       CMSConfig       `json:"cms"`
	Search    SearchConfig    `json:"search"`
	RateLimit RateLimitConfig `json:"rate_limit"`
	Feeds     FeedsConfig     `json:"feeds"`
	Logging   LoggingConfig   `json:"logging"`
	OTel      OTelConfig      `json:"otel"`
}

type ServerConfig struct {
	Port            int           `json:"port" env:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `json:"read_timeout" env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `json:"write_timeout" env:"SERVER_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `json:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" default:"120s"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
	AllowedOrigins  []string      `json:"allowed_origins" env:"SERVER_ALLOWED_ORIGINS" default:"*"`
}

type CMSConfig struct {
	BaseURL       string        `json:"base_url" env:"CMS_BASE_URL" default:"http://localhost:1337"`
	APIToken      string        `json:"-" env:"CMS_API_TOKEN"`
	APITokenFile  string        `json:"-" env:"CMS_API_TOKEN_FILE"`
	Timeout       time.Duration `json:"timeout" env:"CMS_TIMEOUT" default:"10s"`
	MaxRetries    int           `json:"max_retries" env:"CMS_MAX_RETRIES" default:"2"`
	RetryInterval time.Duration `json:"retry_interval" env:"CMS_RETRY_INTERVAL" default:"200ms"`
	RequestsPerS  float64       `json:"requests_per_second" env:"CMS_REQUESTS_PER_SECOND" default:"20"`
	ToolsPath     string        `json:"tools_path" env:"CMS_TOOLS_PATH" default:"tools"`
	NewsPath      string        `json:"news_path" env:"CMS_NEWS_PATH" default:"news"`
	ResourcesPath string        `json:"resources_path" env:"CMS_RESOURCES_PATH" default:"resources"`
}

type SearchConfig struct {
	FetchPageSize  int           `json:"fetch_page_size" env:"SEARCH_FETCH_PAGE_SIZE" default:"100"`
	DefaultLimit   int           `json:"default_limit" env:"SEARCH_DEFAULT_LIMIT" default:"20"`
	MaxLimit       int           `json:"max_limit" env:"SEARCH_MAX_LIMIT" default:"100"`
	PartialResults bool          `json:"partial_results" env:"SEARCH_PARTIAL_RESULTS" default:"false"`
	FanOutTimeout  time.Duration `json:"fan_out_timeout" env:"SEARCH_FANOUT_TIMEOUT" default:"0s"`
	PatternCache   int           `json:"pattern_cache" env:"SEARCH_PATTERN_CACHE_SIZE" default:"1024"`
}

type RateLimitConfig struct {
	Enabled bool    `json:"enabled" env:"RATE_LIMIT_ENABLED" default:"true"`
	RPS     float64 `json:"rps" env:"RATE_LIMIT_RPS" default:"10"`
	Burst   int     `json:"burst" env:"RATE_LIMIT_BURST" default:"20"`
}

type FeedsConfig struct {
	NewsFeedURLs []string      `json:"news_feed_urls" env:"NEWS_FEED_URLS"`
	Timeout      time.Duration `json:"timeout" env:"NEWS_FEED_TIMEOUT" default:"8s"`
	Refresh      time.Duration `json:"refresh" env:"NEWS_FEED_REFRESH_INTERVAL" default:"10m"`
}

type LoggingConfig struct {
	Level string `json:"level" env:"LOG_LEVEL" default:"info"`
}

type OTelConfig struct {
	Enabled      bool    `json:"enabled" env:"OTEL_ENABLED" default:"false"`
	ServiceName  string  `json:"service_name" env:"OTEL_SERVICE_NAME" default:"jiaoxue-search"`
	Version      string  `json:"version" env:"SERVICE_VERSION" default:"0.0.0"`
	Environment  string  `json:"environment" env:"DEPLOYMENT_ENV" default:"development"`
	OTLPEndpoint string  `json:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"http://localhost:4318"`
	SampleRatio  float64 `json:"sample_ratio" env:"OTEL_TRACE_SAMPLE_RATIO" default:"0.1"`
}

// NewConfig loads configuration from the environment. A .env file in the
// working directory is applied first when present; real environment
// variables win over it.
func NewConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	config := &Config{}
	if err := loadFromEnvironment(config); err != nil {
		return nil, err
	}

	if config.CMS.APITokenFile != "" {
		content, err := os.ReadFile(config.CMS.APITokenFile)
		if err == nil {
			config.CMS.APIToken = strings.TrimSpace(string(content))
		}
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

func Load() (*Config, error) {
	return NewConfig()
}
