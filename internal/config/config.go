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
	Workspace WorkspaceConfig `yaml:"workspace" mapstructure:"workspace"`
	Export    ExportConfig    `yaml:"export" mapstructure:"export"`
	Map       MapConfig       `yaml:"map" mapstructure:"map"`
	Classify  ClassifyConfig  `yaml:"classify" mapstructure:"classify"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// WorkspaceConfig locates the input shapefiles.
type WorkspaceConfig struct {
	Dir     string `yaml:"dir" mapstructure:"dir"`
	Charset string `yaml:"charset" mapstructure:"charset"`
	Planar  bool   `yaml:"planar" mapstructure:"planar"`
}

// ExportConfig configures map and report exports.
type ExportConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
	DPI int    `yaml:"dpi" mapstructure:"dpi"`
}

// MapConfig sets the rendered map dimensions in inches.
type MapConfig struct {
	WidthIn  float64 `yaml:"width_in" mapstructure:"width_in"`
	HeightIn float64 `yaml:"height_in" mapstructure:"height_in"`
}

// ClassifyConfig points at an optional YAML rules file. Empty means the
// built-in OSM defaults.
type ClassifyConfig struct {
	RulesPath string `yaml:"rules_path" mapstructure:"rules_path"`
}

// StoreConfig configures the results database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// FetchConfig configures extract downloads.
type FetchConfig struct {
	MaxRPS float64 `yaml:"max_rps" mapstructure:"max_rps"`
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
	v.SetEnvPrefix("GREENSPACE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("workspace.dir", ".")
	v.SetDefault("export.dir", "exports")
	v.SetDefault("export.dpi", 300)
	v.SetDefault("map.width_in", 12.0)
	v.SetDefault("map.height_in", 8.0)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "greenspace.db")
	v.SetDefault("fetch.max_rps", 1.0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

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
