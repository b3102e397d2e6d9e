package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults. The recognition model is a text-out vision model; the inpainting
// model must support image output.
const (
	DefaultPort             = "8888"
	DefaultRecognitionModel = "gemini-2.5-flash"
	DefaultInpaintingModel  = "gemini-2.5-flash-image"
	DefaultMaxUploadBytes   = 10 * 1024 * 1024
	DefaultCallTimeout      = 5 * time.Minute
)

// Config holds server and model settings. Values come from an optional YAML
// file, with environment variables taking precedence.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Models struct {
		Recognition string `yaml:"recognition"`
		Inpainting  string `yaml:"inpainting"`
	} `yaml:"models"`
	Upload struct {
		MaxBytes int64 `yaml:"max_bytes"`
	} `yaml:"upload"`
	CallTimeout time.Duration `yaml:"call_timeout"`
}

// Load reads the config file at path (missing file is fine) and applies
// environment overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
			// fall through to env and defaults
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PAGELATE_PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("PAGELATE_RECOGNITION_MODEL"); v != "" {
		cfg.Models.Recognition = v
	}
	if v := os.Getenv("PAGELATE_INPAINTING_MODEL"); v != "" {
		cfg.Models.Inpainting = v
	}
	if v := os.Getenv("PAGELATE_CALL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.CallTimeout = d
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = DefaultPort
	}
	if cfg.Models.Recognition == "" {
		cfg.Models.Recognition = DefaultRecognitionModel
	}
	if cfg.Models.Inpainting == "" {
		cfg.Models.Inpainting = DefaultInpaintingModel
	}
	if cfg.Upload.MaxBytes <= 0 {
		cfg.Upload.MaxBytes = DefaultMaxUploadBytes
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultCallTimeout
	}
}
