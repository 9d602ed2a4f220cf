package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode   string `mapstructure:"mode"`
	Port   int    `mapstructure:"port"`
	Secret string `mapstructure:"secret"`

	Store     string `mapstructure:"store"` // "redis" or "memory"
	RedisAddr string `mapstructure:"redis_addr"`

	SongLookupURL  string `mapstructure:"song_lookup_url"`
	IdentityPrefix string `mapstructure:"identity_prefix"`

	ReadLimit  int64         `mapstructure:"read_limit"`
	SendBuffer int           `mapstructure:"send_buffer"`
	PingPeriod time.Duration `mapstructure:"ping_period"`

	// Reconciliation tuning. Broadcast threshold must stay above the
	// apply threshold, otherwise the server emits corrections too small
	// for followers to act on.
	HeartbeatInterval  time.Duration `mapstructure:"heartbeat_interval"`
	BroadcastThreshold float64       `mapstructure:"broadcast_threshold"`
	ApplyThreshold     float64       `mapstructure:"apply_threshold"`
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
	v.SetDefault("store", "redis")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("identity_prefix", "kp_")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("send_buffer", 32)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("heartbeat_interval", "2500ms")
	v.SetDefault("broadcast_threshold", 1.0)
	v.SetDefault("apply_threshold", 0.5)

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("config file not found (%s), using defaults\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
