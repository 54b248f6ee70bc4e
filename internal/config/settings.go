package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Settings are runtime tunables read from settings.yml, overridable
// through PEDIDOFACIL_* environment variables.
type Settings struct {
	DefaultPageSize int `mapstructure:"defaultPageSize"`
	MaxPageSize     int `mapstructure:"maxPageSize"`
	SessionTTLDays  int `mapstructure:"sessionTtlDays"`
	BcryptCost      int `mapstructure:"bcryptCost"`
}

func DefaultSettings() Settings {
	return Settings{
		DefaultPageSize: 10,
		MaxPageSize:     100,
		SessionTTLDays:  7,
		BcryptCost:      12,
	}
}

// LoadSettings reads settings.yml from the usual locations, falling back
// to defaults when the file is absent.
func LoadSettings() (Settings, error) {
	v := viper.New()

	v.SetConfigName("settings")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/pedidofacil")
	v.AddConfigPath(".")

	v.SetEnvPrefix("PEDIDOFACIL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultSettings()
	v.SetDefault("app.defaultPageSize", defaults.DefaultPageSize)
	v.SetDefault("app.maxPageSize", defaults.MaxPageSize)
	v.SetDefault("app.sessionTtlDays", defaults.SessionTTLDays)
	v.SetDefault("app.bcryptCost", defaults.BcryptCost)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Settings{}, err
		}
	}

	var settings Settings
	if err := v.UnmarshalKey("app", &settings); err != nil {
		return Settings{}, err
	}
	if settings.DefaultPageSize <= 0 {
		settings.DefaultPageSize = defaults.DefaultPageSize
	}
	if settings.MaxPageSize < settings.DefaultPageSize {
		settings.MaxPageSize = defaults.MaxPageSize
	}
	if settings.SessionTTLDays <= 0 {
		settings.SessionTTLDays = defaults.SessionTTLDays
	}
	if settings.BcryptCost <= 0 {
		settings.BcryptCost = defaults.BcryptCost
	}
	return settings, nil
}
