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
	Data   DataConfig   `yaml:"data" mapstructure:"data"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Chart  ChartConfig  `yaml:"chart" mapstructure:"chart"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the employee dataset and its optional schema descriptor.
type DataConfig struct {
	Path       string `yaml:"path" mapstructure:"path"`
	SchemaFile string `yaml:"schema_file" mapstructure:"schema_file"`
}

// ServerConfig configures the dashboard HTTP server.
type ServerConfig struct {
	Port             int      `yaml:"port" mapstructure:"port"`
	ReadTimeoutSecs  int      `yaml:"read_timeout_secs" mapstructure:"read_timeout_secs"`
	WriteTimeoutSecs int      `yaml:"write_timeout_secs" mapstructure:"write_timeout_secs"`
	MaxRPS           float64  `yaml:"max_rps" mapstructure:"max_rps"`
	Burst            int      `yaml:"burst" mapstructure:"burst"`
	AllowedOrigins   []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// ChartConfig sets rendered chart dimensions in inches.
type ChartConfig struct {
	WidthIn   float64 `yaml:"width_in" mapstructure:"width_in"`
	HeightIn  float64 `yaml:"height_in" mapstructure:"height_in"`
	PieSizeIn float64 `yaml:"pie_size_in" mapstructure:"pie_size_in"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from ./config.yaml, if present, and environment.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file. An empty path falls back to
// ./config.yaml; a named file must exist.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	// Config file
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}
	v.SetConfigType("yaml")

	// Environment
	v.SetEnvPrefix("ATTRITION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.path", "data/employee_data.csv")
	v.SetDefault("data.schema_file", "")
	v.SetDefault("server.port", 8501)
	v.SetDefault("server.read_timeout_secs", 15)
	v.SetDefault("server.write_timeout_secs", 30)
	v.SetDefault("server.max_rps", 20.0)
	v.SetDefault("server.burst", 40)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("chart.width_in", 6.0)
	v.SetDefault("chart.height_in", 4.0)
	v.SetDefault("chart.pie_size_in", 4.0)
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

// Validate checks that the settings required by mode are present.
// Modes: "serve", "report", "export".
func (c *Config) Validate(mode string) error {
	var errs []string

	if strings.TrimSpace(c.Data.Path) == "" {
		errs = append(errs, "data.path is required")
	}

	switch mode {
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
		if c.Server.MaxRPS < 0 {
			errs = append(errs, "server.max_rps must be >= 0")
		}
		if c.Server.MaxRPS > 0 && c.Server.Burst < 1 {
			errs = append(errs, "server.burst must be >= 1 when rate limiting")
		}
		if c.Chart.WidthIn <= 0 || c.Chart.HeightIn <= 0 || c.Chart.PieSizeIn <= 0 {
			errs = append(errs, "chart dimensions must be > 0")
		}
	case "report", "export":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
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
