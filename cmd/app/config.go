package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fandyandika/miqra/internal/localstore"
	"github.com/fandyandika/miqra/internal/remote"

	"github.com/spf13/viper"
)

const (
	configPath   = "./"
	configName   = "config"
	configFormat = "yaml"
)

type Config struct {
	LocalStore localstore.Config `yaml:"localStore"`
	Remote     remote.Config     `yaml:"remote"`
	Server     ServerConfig      `yaml:"server"`
	Sync       SyncConfig        `yaml:"sync"`

	// IANA timezone used for calendar-day boundaries.
	Timezone string `yaml:"timezone"`

	// Path to the full per-ayah letter-count dataset; empty uses the
	// bundled subset.
	LetterCountsPath string `yaml:"letterCountsPath"`

	LogLevel string `yaml:"logLevel"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type SyncConfig struct {
	Interval time.Duration `yaml:"interval"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(configName)
	viper.AddConfigPath(configPath)
	viper.SetConfigType(configFormat)

	viper.SetDefault("timezone", "Asia/Jakarta")
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("sync.interval", 2*time.Minute)

	viper.AutomaticEnv()
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
