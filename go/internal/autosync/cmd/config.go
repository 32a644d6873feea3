package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mcdev12/reckoning/go/internal/autosync"
)

type Config struct {
	Sync       autosync.Config `yaml:"sync"`
	LocalPath  string          `yaml:"local_path"`
	APIURL     string          `yaml:"api_url"`
	Token      string          `yaml:"token"`
	NATSURL    string          `yaml:"nats_url"`
	HealthAddr string          `yaml:"health_addr"`
	LogLevel   string          `yaml:"log_level"`
}

func defaultConfig() Config {
	return Config{
		Sync:       autosync.DefaultConfig(),
		LocalPath:  "reckoning.db",
		APIURL:     "http://localhost:8080",
		HealthAddr: ":9090",
		LogLevel:   "info",
	}
}

// loadConfig reads path over the defaults; a missing file keeps the defaults.
// RECKON_TOKEN, RECKON_API_URL and NATS_URL override the file.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if v := os.Getenv("RECKON_TOKEN"); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv("RECKON_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATSURL = v
	}
	return cfg, nil
}
