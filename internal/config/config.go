package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. POLYCACHE_DB_PATH.
const EnvPrefix = "POLYCACHE"

type Config struct {
	DB       DBConfig       `mapstructure:"db"`
	Log      LogConfig      `mapstructure:"log"`
	Gamma    GammaConfig    `mapstructure:"gamma"`
	ClobREST ClobRESTConfig `mapstructure:"clob_rest"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Cron     CronConfig     `mapstructure:"cron"`
}

type DBConfig struct {
	Path        string        `mapstructure:"path"`
	BusyTimeout time.Duration `mapstructure:"busy_timeout"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type GammaConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type ClobRESTConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Interval string        `mapstructure:"interval"`
	Fidelity int           `mapstructure:"fidelity"`
}

// CatalogConfig controls the catalog fetch used when a request names no
// event.
type CatalogConfig struct {
	Mode     string `mapstructure:"mode"`
	Limit    int    `mapstructure:"limit"`
	SoonDays int    `mapstructure:"soon_days"`
}

type CronConfig struct {
	Expire string `mapstructure:"expire"`
}

// Load reads the YAML file at path, then applies POLYCACHE_* environment
// overrides. An empty path means defaults plus environment only.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("db.path", "data/polycache.db")
	v.SetDefault("db.busy_timeout", "30s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", false)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", true)
	v.SetDefault("log.disable_stacktrace", true)
	v.SetDefault("gamma.base_url", "https://gamma-api.polymarket.com")
	v.SetDefault("gamma.timeout", "15s")
	v.SetDefault("clob_rest.base_url", "https://clob.polymarket.com")
	v.SetDefault("clob_rest.timeout", "15s")
	v.SetDefault("clob_rest.interval", "1d")
	v.SetDefault("clob_rest.fidelity", 60)
	v.SetDefault("catalog.mode", "top")
	v.SetDefault("catalog.limit", 100)
	v.SetDefault("catalog.soon_days", 3)
	v.SetDefault("cron.expire", "@every 1h")

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
