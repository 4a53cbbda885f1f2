package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/example/market-stats/pkg/transaction"
)

// EnvPrefix is prepended to every environment override, e.g. MARKET_STATS_INPUT
const EnvPrefix = "MARKET_STATS"

// Config represents the application configuration
type Config struct {
	Input     string         `mapstructure:"input"`
	Currency  string         `mapstructure:"currency"` // label printed next to amounts
	LogLevel  string         `mapstructure:"log_level"`
	LogFormat string         `mapstructure:"log_format"` // "text" or "json"
	Defaults  DefaultsConfig `mapstructure:"defaults"`
	Charts    ChartsConfig   `mapstructure:"charts"`
	Export    ExportConfig   `mapstructure:"export"`
}

// DefaultsConfig holds the values the loader substitutes for absent fields
type DefaultsConfig struct {
	Name     string `mapstructure:"name"`
	Currency string `mapstructure:"currency"`
}

// ChartsConfig defines where and how large charts are rendered
type ChartsConfig struct {
	Dir     string `mapstructure:"dir"`
	ByName  string `mapstructure:"by_name"`
	ByMonth string `mapstructure:"by_month"`
	Width   int    `mapstructure:"width"`
	Height  int    `mapstructure:"height"`
}

// ExportConfig defines the SQLite snapshot target
type ExportConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// flag name -> config key
var flagKeys = map[string]string{
	"input":     "input",
	"currency":  "currency",
	"log-level": "log_level",
	"out-dir":   "charts.dir",
	"db":        "export.db_path",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("input", "steam_history_market.json")
	v.SetDefault("currency", "USD")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("defaults.name", "No Name")
	v.SetDefault("defaults.currency", "USD")
	v.SetDefault("charts.dir", ".")
	v.SetDefault("charts.by_name", "total_price_by_name.png")
	v.SetDefault("charts.by_month", "total_price_by_month.png")
	v.SetDefault("charts.width", 1000)
	v.SetDefault("charts.height", 600)
	v.SetDefault("export.db_path", "market_stats.db")
}

// LoadConfig loads configuration from an optional TOML file, environment
// variables and, when flags is non-nil, any matching flags that were set.
func LoadConfig(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil || !f.Changed {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Input) == "" {
		errs = append(errs, errors.New("input path must not be empty"))
	}
	if c.Charts.Width <= 0 || c.Charts.Height <= 0 {
		errs = append(errs, fmt.Errorf("invalid chart size %dx%d: must be positive", c.Charts.Width, c.Charts.Height))
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("invalid log level %q", c.LogLevel))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log format %q: must be text or json", c.LogFormat))
	}

	return errors.Join(errs...)
}

// LoadOptions converts the configured defaults for the record loader
func (c *Config) LoadOptions() transaction.LoadOptions {
	return transaction.LoadOptions{
		DefaultName:     c.Defaults.Name,
		DefaultCurrency: transaction.Currency(strings.ToUpper(c.Defaults.Currency)),
	}
}
