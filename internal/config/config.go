package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	OLWLG  OLWLG  `mapstructure:"olwlg"`
	BGG    BGG    `mapstructure:"bgg"`
	Logger Logger `mapstructure:"logger"`
	Labels Labels `mapstructure:"labels"`
}

// OLWLG holds the configuration for the OLWLG results server.
type OLWLG struct {
	BaseURL        string  `mapstructure:"base_url"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
	MaxRetries     int     `mapstructure:"max_retries"`
}

// BGG holds the configuration for the BGG API.
type BGG struct {
	BaseURL        string  `mapstructure:"base_url"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
	MaxRetries     int     `mapstructure:"max_retries"`
}

// Labels holds the configuration for the label sheet layout.
type Labels struct {
	Groups  int `mapstructure:"groups"`
	PerPage int `mapstructure:"per_page"`
	PerRow  int `mapstructure:"per_row"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig reads configuration from file or environment variables.
// A missing config file is not an error: the defaults cover every key, so
// the tool runs with nothing but its two positional arguments.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or yaml, json

	// Allow environment variables to override config file
	viper.SetEnvPrefix("olwlg_nametags")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("olwlg.base_url", "http://bgg.activityclub.org/olwlg")
	viper.SetDefault("olwlg.rate_limit", 2) // requests per second
	viper.SetDefault("olwlg.rate_limit_burst", 1)
	viper.SetDefault("olwlg.max_retries", 3)
	viper.SetDefault("bgg.base_url", "https://boardgamegeek.com/xmlapi2")
	viper.SetDefault("bgg.rate_limit", 2)
	viper.SetDefault("bgg.rate_limit_burst", 1)
	viper.SetDefault("bgg.max_retries", 5)
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("labels.groups", 3)
	viper.SetDefault("labels.per_page", 10)
	viper.SetDefault("labels.per_row", 2)

	err = viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return
		}
		err = nil
	}

	err = viper.Unmarshal(&config)
	return
}
