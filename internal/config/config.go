// Package config loads process configuration via viper, the way the
// teacher repo does: a YAML file for dev defaults, layered under
// environment variables for everything the spec's deployment surface
// needs (§6 "Environment / config").
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	StaticPath string        `mapstructure:"static_path"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	Secret     string        `mapstructure:"secret"`

	CORSOrigin string `mapstructure:"cors_origin"`

	MediasoupAnnouncedIP string `mapstructure:"mediasoup_announced_ip"`
	MediasoupPort        int    `mapstructure:"mediasoup_port"`
	MediasoupNumWorkers  int    `mapstructure:"mediasoup_num_workers"`

	TURNURL        string `mapstructure:"turn_url"`
	TURNUsername   string `mapstructure:"turn_username"`
	TURNCredential string `mapstructure:"turn_credential"`

	InvidiousInstances []string `mapstructure:"-"`
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
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("cors_origin", "*")
	v.SetDefault("mediasoup_announced_ip", "127.0.0.1")
	v.SetDefault("mediasoup_port", 40000)
	v.SetDefault("mediasoup_num_workers", 2)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("cors_origin", "CORS_ORIGIN")
	_ = v.BindEnv("mediasoup_announced_ip", "MEDIASOUP_ANNOUNCED_IP")
	_ = v.BindEnv("mediasoup_port", "MEDIASOUP_PORT")
	_ = v.BindEnv("mediasoup_num_workers", "MEDIASOUP_NUM_WORKERS")
	_ = v.BindEnv("turn_url", "TURN_URL")
	_ = v.BindEnv("turn_username", "TURN_USERNAME")
	_ = v.BindEnv("turn_credential", "TURN_CREDENTIAL")
	_ = v.BindEnv("port", "PORT")
	_ = v.BindEnv("secret", "SESSION_SECRET")

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults and env")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if raw := os.Getenv("INVIDIOUS_INSTANCES"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				cfg.InvidiousInstances = append(cfg.InvidiousInstances, trimmed)
			}
		}
	}

	log.Info().Str("module", "config").
		Str("mode", cfg.Mode).
		Int("port", cfg.Port).
		Int("mediasoup_workers", cfg.MediasoupNumWorkers).
		Msg("configuration resolved")
	return &cfg, nil
}
