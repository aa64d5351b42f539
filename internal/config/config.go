// Package config loads application configuration from file and
// environment, and wires the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Map    MapConfig    `yaml:"map" mapstructure:"map"`
	Tags   TagsConfig   `yaml:"tags" mapstructure:"tags"`
	Ingest IngestConfig `yaml:"ingest" mapstructure:"ingest"`
	Render RenderConfig `yaml:"render" mapstructure:"render"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// MapConfig configures the default map viewport.
type MapConfig struct {
	CenterLat float64 `yaml:"center_lat" mapstructure:"center_lat"`
	CenterLng float64 `yaml:"center_lng" mapstructure:"center_lng"`
	Zoom      int     `yaml:"zoom" mapstructure:"zoom"`
}

// TagsConfig configures per-cluster tag summarization.
type TagsConfig struct {
	TopN    int      `yaml:"top_n" mapstructure:"top_n"`
	Exclude []string `yaml:"exclude" mapstructure:"exclude"`
}

// IngestConfig configures point-table parsing.
type IngestConfig struct {
	TagSeparator string `yaml:"tag_separator" mapstructure:"tag_separator"`
	Encoding     string `yaml:"encoding" mapstructure:"encoding"`
}

// RenderConfig configures artifact output.
type RenderConfig struct {
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
	StylePath string `yaml:"style_path" mapstructure:"style_path"`
}

// StoreConfig configures the local run store.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the artifact server.
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
	v.SetEnvPrefix("CLUSTERMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("map.center_lat", 45.7615)
	v.SetDefault("map.center_lng", 4.83)
	v.SetDefault("map.zoom", 16)
	v.SetDefault("tags.top_n", 5)
	v.SetDefault("tags.exclude", []string{})
	v.SetDefault("ingest.tag_separator", ";")
	v.SetDefault("render.output_dir", "./data/explore")
	v.SetDefault("store.path", "clustermap.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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
