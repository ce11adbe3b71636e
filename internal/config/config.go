// Package config loads application configuration from config.yaml and the
// FIELDLINK_* environment.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/fieldlink/internal/crm"
	"github.com/sells-group/fieldlink/internal/fieldservice"
	"github.com/sells-group/fieldlink/internal/store"
)

// Config holds the full application configuration.
type Config struct {
	FieldService FieldServiceConfig `yaml:"fieldservice" mapstructure:"fieldservice"`
	CRM          crm.ClientConfig   `yaml:"crm" mapstructure:"crm"`
	Cache        store.Config       `yaml:"cache" mapstructure:"cache"`
	Linkage      LinkageConfig      `yaml:"linkage" mapstructure:"linkage"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
}

// FieldServiceConfig groups the client and fetcher settings.
type FieldServiceConfig struct {
	fieldservice.ClientConfig  `yaml:",inline" mapstructure:",squash"`
	fieldservice.FetcherConfig `yaml:",inline" mapstructure:",squash"`
}

// LinkageConfig configures the candidate collector.
type LinkageConfig struct {
	// TagPrefix is the deal-id tag prefix ("deal" matches "deal-12345").
	TagPrefix string `yaml:"tag_prefix" mapstructure:"tag_prefix"`
	// CategoryID re-filters fetched jobs; the search API may return jobs
	// outside the requested category.
	CategoryID string `yaml:"category_id" mapstructure:"category_id"`
}

// ServerConfig configures the JSON API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("FIELDLINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("fieldservice.rps", 5)
	v.SetDefault("fieldservice.page_size", 100)
	v.SetDefault("fieldservice.max_pages", 25)
	v.SetDefault("fieldservice.include_unscheduled", true)
	v.SetDefault("crm.base_url", "https://api.hubapi.com")
	v.SetDefault("crm.rps", 8)
	v.SetDefault("linkage.tag_prefix", "deal")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
