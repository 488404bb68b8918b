package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds everything the storefront needs to talk to the backend.
// Values come from an optional YAML file, with environment variables
// (optionally loaded from a .env file) taking precedence.
type Config struct {
	API struct {
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"api"`

	Pricing struct {
		FreeShippingThreshold int64 `yaml:"free_shipping_threshold"` // paise
		ShippingFee           int64 `yaml:"shipping_fee"`            // paise
		CODFee                int64 `yaml:"cod_fee"`                 // paise
	} `yaml:"pricing"`

	Orders struct {
		PollInterval time.Duration `yaml:"poll_interval"`
	} `yaml:"orders"`

	Payment struct {
		CallbackAddr string `yaml:"callback_addr"`
	} `yaml:"payment"`
}

func defaults() *Config {
	cfg := &Config{}
	cfg.API.Timeout = 30 * time.Second
	cfg.Pricing.FreeShippingThreshold = 49900
	cfg.Pricing.ShippingFee = 4900
	cfg.Pricing.CODFee = 3000
	cfg.Orders.PollInterval = 30 * time.Second
	cfg.Payment.CallbackAddr = "127.0.0.1:0"
	return cfg
}

// Load reads config from yamlPath (skipped when empty or missing) and then
// applies environment overrides. envPath points at a .env file; a missing
// .env is not an error.
func Load(yamlPath, envPath string) (*Config, error) {
	cfg := defaults()

	if yamlPath != "" {
		file, err := os.Open(yamlPath)
		if err == nil {
			defer file.Close()
			if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
				return nil, fmt.Errorf("config: invalid config file %s: %w", yamlPath, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: failed to open config file %s: %w", yamlPath, err)
		}
	}

	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: failed to load .env: %w", err)
		}
	}

	if v := os.Getenv("STOREFRONT_API_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("STOREFRONT_API_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("config: invalid STOREFRONT_API_TIMEOUT: %w", err)
		}
		cfg.API.Timeout = d
	}
	if v := os.Getenv("STOREFRONT_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("config: invalid STOREFRONT_POLL_INTERVAL: %w", err)
		}
		cfg.Orders.PollInterval = d
	}
	if v := os.Getenv("STOREFRONT_CALLBACK_ADDR"); v != "" {
		cfg.Payment.CallbackAddr = v
	}

	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("config: api base url is required (set api.base_url or STOREFRONT_API_BASE_URL)")
	}

	return cfg, nil
}
