// Package config loads process and per-site configuration via Viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// App captures process-level settings shared by every command.
type App struct {
	DataDir     string `mapstructure:"data_dir"`
	ConfigDir   string `mapstructure:"config_dir"`
	LogsDir     string `mapstructure:"logs_dir"`
	Listen      string `mapstructure:"listen"`
	LogLevel    string `mapstructure:"log_level"`
	Development bool   `mapstructure:"development"`
}

// InitApp wires defaults and environment overrides into the global viper
// instance used by the CLI.
func InitApp(v *viper.Viper) {
	v.SetEnvPrefix("MEDIAHARVEST") // e.g. MEDIAHARVEST_DATA_DIR=/srv/data
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("data_dir", "database")
	v.SetDefault("config_dir", "configs")
	v.SetDefault("logs_dir", "logs")
	v.SetDefault("listen", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("development", true)
}

// LoadApp unmarshals the process config.
func LoadApp(v *viper.Viper) (App, error) {
	var app App
	if err := v.Unmarshal(&app); err != nil {
		return App{}, fmt.Errorf("unmarshal app config: %w", err)
	}
	return app, nil
}
