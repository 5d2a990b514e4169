// Package config loads PhishGuard service configuration from a YAML file,
// PHISHGUARD_* environment variables and built-in defaults, in that order of
// precedence (env wins).
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmerrifield20/phishguard/internal/threat"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. PHISHGUARD_SERVER_PORT.
const EnvPrefix = "PHISHGUARD"

// Config is the full service configuration.
type Config struct {
	Server ServerConfig   `mapstructure:"server"`
	Log    LogConfig      `mapstructure:"log"`
	Rules  threat.RuleSet `mapstructure:"rules"`

	// File is the config file that was read, or "" when none was found.
	File string `mapstructure:"-"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Port              int           `mapstructure:"port" validate:"gte=1,lte=65535"`
	CORSOrigins       []string      `mapstructure:"cors_origins"`
	RateLimitRPS      int           `mapstructure:"rate_limit_rps" validate:"gte=0"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" validate:"gt=0"`
}

// LogConfig controls logger construction.
type LogConfig struct {
	// Env is the runtime environment, either "dev" or "prod".
	Env string `mapstructure:"env" validate:"required,oneof=dev prod"`

	// Level controls log verbosity: "debug", "info", "warn", or "error".
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// Load reads configuration. When path is empty, phishguard.yaml is searched
// for in ./configs and the working directory and a missing file is not an
// error. When path is set, the file must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("phishguard")
		v.SetConfigType("yaml")
		v.AddConfigPath("configs")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var cfgNotFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &cfgNotFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return &cfg, nil
}

// setDefaults registers every key so env overrides resolve and absent rule
// keys fall back to the built-in rule set.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.rate_limit_rps", 20)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("server.read_header_timeout", 10*time.Second)

	v.SetDefault("log.env", "prod")
	v.SetDefault("log.level", "info")

	rs := threat.DefaultRuleSet()
	w := rs.Weights
	v.SetDefault("rules.weights.ip_host", w.IPHost)
	v.SetDefault("rules.weights.long_url", w.LongURL)
	v.SetDefault("rules.weights.at_symbol", w.AtSymbol)
	v.SetDefault("rules.weights.no_https", w.NoHTTPS)
	v.SetDefault("rules.weights.keyword", w.Keyword)
	v.SetDefault("rules.weights.subdomains", w.Subdomains)
	v.SetDefault("rules.weights.digits_in_host", w.DigitsInHost)
	v.SetDefault("rules.weights.hyphen_in_host", w.HyphenInHost)
	v.SetDefault("rules.weights.shortener", w.Shortener)
	v.SetDefault("rules.weights.slashes", w.Slashes)
	v.SetDefault("rules.weights.impersonation", w.Impersonation)
	v.SetDefault("rules.weights.domain_structure", w.DomainStructure)
	v.SetDefault("rules.weights.suspicious_tld", w.SuspiciousTLD)
	v.SetDefault("rules.weights.misspelling", w.Misspelling)

	v.SetDefault("rules.long_url_length", rs.LongURLLength)
	v.SetDefault("rules.max_slashes", rs.MaxSlashes)
	v.SetDefault("rules.max_keyword_reasons", rs.MaxKeywordReasons)
	v.SetDefault("rules.keywords", rs.Keywords)
	v.SetDefault("rules.shorteners", rs.Shorteners)
	v.SetDefault("rules.brands", rs.Brands)
	v.SetDefault("rules.brand_context", rs.BrandContext)
	v.SetDefault("rules.suspicious_tlds", rs.SuspiciousTLDs)
	v.SetDefault("rules.misspellings", rs.Misspellings)
}
