package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Queun/ai-teach-platform-sub000/internal/driver/historystore"
)

// Config is the CLI configuration read from .jiaoxue.yaml and JIAOXUE_*
// environment variables.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	History HistoryConfig `mapstructure:"history"`
	Output  OutputConfig  `mapstructure:"output"`
	Suggest SuggestConfig `mapstructure:"suggest"`
}

type ServerConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type HistoryConfig struct {
	Backend       string `mapstructure:"backend"`
	FilePath      string `mapstructure:"file_path"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	KeyPrefix     string `mapstructure:"key_prefix"`
}

type OutputConfig struct {
	Colors bool `mapstructure:"colors"`
}

type SuggestConfig struct {
	Delay time.Duration `mapstructure:"delay"`
}

// StoreConfig converts the history section for historystore.Open.
func (h HistoryConfig) StoreConfig() historystore.Config {
	return historystore.Config{
		Backend:       h.Backend,
		FilePath:      h.FilePath,
		RedisAddr:     h.RedisAddr,
		RedisPassword: h.RedisPassword,
		RedisDB:       h.RedisDB,
		KeyPrefix:     h.KeyPrefix,
	}
}

// LoadConfig reads configuration with v. cfgFile overrides the search path.
func LoadConfig(v *viper.Viper, cfgFile string) (*Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".jiaoxue")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/jiaoxue")
	}

	v.SetEnvPrefix("JIAOXUE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.url", "http://localhost:8080")
	v.SetDefault("server.timeout", 15*time.Second)

	v.SetDefault("history.backend", "file")
	v.SetDefault("history.file_path", defaultHistoryPath())
	v.SetDefault("history.redis_addr", "localhost:6379")
	v.SetDefault("history.redis_db", 0)
	v.SetDefault("history.key_prefix", "jiaoxue:")

	v.SetDefault("output.colors", true)
	v.SetDefault("suggest.delay", 300*time.Millisecond)
}

func defaultHistoryPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "search-history.json"
	}
	return filepath.Join(dir, "jiaoxue", "search-history.json")
}

func validate(cfg *Config) error {
	if cfg.Server.URL == "" {
		return errors.New("server.url is required")
	}
	switch strings.ToLower(cfg.History.Backend) {
	case "memory", "file", "redis":
	default:
		return fmt.Errorf("history.backend must be memory, file or redis, got %q", cfg.History.Backend)
	}
	if cfg.Suggest.Delay < 0 {
		return errors.New("suggest.delay must not be negative")
	}
	return nil
}
