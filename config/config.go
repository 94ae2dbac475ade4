package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Data   DataConfig   `mapstructure:"data"`
	Game   GameConfig   `mapstructure:"game"`
}

type ServerConfig struct {
	HTTPAddress    string `mapstructure:"http_address"`
	RPCAddress     string `mapstructure:"rpc_address"`
	MonitorAddress string `mapstructure:"monitor_address"`
}

type DataConfig struct {
	CharactersFile string `mapstructure:"characters_file"`
	ArcsFile       string `mapstructure:"arcs_file"`
}

type GameConfig struct {
	DefaultMode         string        `mapstructure:"default_mode"`
	DefaultTimerSeconds int           `mapstructure:"default_timer_seconds"`
	RoomIdleTimeout     time.Duration `mapstructure:"room_idle_timeout"`
	SearchLimit         int           `mapstructure:"search_limit"`
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.http_address", ":8080")
	viper.SetDefault("server.rpc_address", ":8081")
	viper.SetDefault("server.monitor_address", ":9090")
	viper.SetDefault("data.characters_file", "Characters.txt")
	viper.SetDefault("data.arcs_file", "Arcs.txt")
	viper.SetDefault("game.default_mode", "timed")
	viper.SetDefault("game.default_timer_seconds", 120)
	viper.SetDefault("game.room_idle_timeout", time.Hour)
	viper.SetDefault("game.search_limit", 20)

	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		// A missing config file falls back to defaults and env vars.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return
		}
		err = nil
	}

	err = viper.Unmarshal(&config)
	return
}
