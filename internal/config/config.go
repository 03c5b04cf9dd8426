package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode string `mapstructure:"mode"`
	Port int    `mapstructure:"port"`

	// Secret signs the session cookie; TokenSecret verifies participant JWTs.
	Secret      string `mapstructure:"secret"`
	TokenSecret string `mapstructure:"token_secret"`

	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	WriteWait  time.Duration `mapstructure:"write_wait"`
	SendBuffer int           `mapstructure:"send_buffer"`

	// GatewayURL empty means standalone: messages persist in the embedded
	// store and the /api/messages surface is served locally.
	GatewayURL     string        `mapstructure:"gateway_url"`
	GatewayToken   string        `mapstructure:"gateway_token"`
	GatewayTimeout time.Duration `mapstructure:"gateway_timeout"`
	StorePath      string        `mapstructure:"store_path"`

	RoomIdleTTL time.Duration `mapstructure:"room_idle_ttl"`
	RoomSweep   time.Duration `mapstructure:"room_sweep"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("secret", "dev-cookie-secret")
	v.SetDefault("token_secret", "dev-token-secret")
	v.SetDefault("read_limit", 65536)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("write_wait", "5s")
	v.SetDefault("send_buffer", 32)
	v.SetDefault("gateway_url", "")
	v.SetDefault("gateway_token", "")
	v.SetDefault("gateway_timeout", "10s")
	v.SetDefault("store_path", "./data/messages")
	v.SetDefault("room_idle_ttl", "30m")
	v.SetDefault("room_sweep", "1m")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("config file not found (%s), using defaults\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
