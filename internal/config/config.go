package config

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// Config holds the full application configuration.
type Config struct {
	Boundary BoundaryConfig `yaml:"boundary" mapstructure:"boundary"`
	Lanes    LanesConfig    `yaml:"lanes" mapstructure:"lanes"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
	Join     JoinConfig     `yaml:"join" mapstructure:"join"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// BoundaryConfig describes the neighborhood polygon file.
type BoundaryConfig struct {
	Path      string `yaml:"path" mapstructure:"path"`
	NameField string `yaml:"name_field" mapstructure:"name_field"`
	CRS       string `yaml:"crs" mapstructure:"crs"`
}

// LanesConfig describes the delimited bike-lane file and the columns the
// report reads from it.
type LanesConfig struct {
	Path       string `yaml:"path" mapstructure:"path"`
	Delimiter  string `yaml:"delimiter" mapstructure:"delimiter"`
	PointField string `yaml:"point_field" mapstructure:"point_field"`
	YearField  string `yaml:"year_field" mapstructure:"year_field"`
	AAAField   string `yaml:"aaa_field" mapstructure:"aaa_field"`
	AAAValue   string `yaml:"aaa_value" mapstructure:"aaa_value"`
}

// OutputConfig configures the report CSV.
type OutputConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// JoinConfig configures the spatial join. Workers <= 0 means one per CPU.
type JoinConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// StoreConfig configures the optional SQL sink. An empty driver disables it.
type StoreConfig struct {
	Driver         string `yaml:"driver" mapstructure:"driver"`
	DSN            string `yaml:"dsn" mapstructure:"dsn"`
	Host           string `yaml:"host" mapstructure:"host"`
	Port           string `yaml:"port" mapstructure:"port"`
	Service        string `yaml:"service" mapstructure:"service"`
	Username       string `yaml:"username" mapstructure:"username"`
	Password       string `yaml:"password" mapstructure:"password"`
	WalletLocation string `yaml:"wallet_location" mapstructure:"wallet_location"`
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
	v.SetEnvPrefix("BIKEWAYS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("boundary.path", "local-area-boundary.geojson")
	v.SetDefault("boundary.name_field", "name")
	v.SetDefault("boundary.crs", "EPSG:4326")
	v.SetDefault("lanes.path", "bikeways.csv")
	v.SetDefault("lanes.delimiter", ";")
	v.SetDefault("lanes.point_field", "geo_point_2d")
	v.SetDefault("lanes.year_field", "Year of Construction")
	v.SetDefault("lanes.aaa_field", "AAA Segment")
	v.SetDefault("lanes.aaa_value", "YES")
	v.SetDefault("output.path", "bike_lanes_count_by_neighborhood_year.csv")
	v.SetDefault("join.workers", 0)
	v.SetDefault("store.driver", "")
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.host", "localhost")
	v.SetDefault("store.port", "1521")
	v.SetDefault("store.service", "XE")
	v.SetDefault("store.username", "")
	v.SetDefault("store.password", "")
	v.SetDefault("store.wallet_location", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "auto")

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

// Validate checks values that would otherwise fail deep inside the pipeline.
func (c *Config) Validate() error {
	if len([]rune(c.Lanes.Delimiter)) != 1 {
		return eris.Errorf("config: lanes.delimiter must be a single character, got %q", c.Lanes.Delimiter)
	}
	if c.Boundary.NameField == "" {
		return eris.New("config: boundary.name_field is required")
	}
	switch c.Boundary.CRS {
	case "EPSG:4326", "EPSG:2276":
	default:
		return eris.Errorf("config: unsupported boundary.crs %q", c.Boundary.CRS)
	}
	switch c.Store.Driver {
	case "", "sqlite", "oracle":
	default:
		return eris.Errorf("config: unsupported store.driver %q", c.Store.Driver)
	}
	return nil
}

// InitLogger initializes the global zap logger. Format "auto" picks the
// console encoder when stderr is a terminal and JSON otherwise.
func InitLogger(cfg LogConfig) error {
	format := cfg.Format
	if format == "auto" {
		format = "json"
		if term.IsTerminal(int(os.Stderr.Fd())) {
			format = "console"
		}
	}

	var zapCfg zap.Config
	if format == "console" {
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
