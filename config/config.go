package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// EnvPrefix marks the environment variables that override file settings,
// e.g. WIZARD_REDIS_ADDR for redis_addr.
const EnvPrefix = "WIZARD_"

// FileEnv names the config file; it is not a Config field.
const FileEnv = "WIZARD_CONFIG_FILE"

type Config struct {
	HTTPAddr           string `json:"http_addr"`
	RedisAddr          string `json:"redis_addr"`
	RedisPassword      string `json:"redis_password"`
	RedisDB            int    `json:"redis_db"`
	MySQLDSN           string `json:"mysql_dsn"`
	JWTSecret          string `json:"jwt_secret"`
	TokenTTLMinutes    int    `json:"token_ttl_minutes"`
	TurnTimeoutSeconds int    `json:"turn_timeout_seconds"`
	AutoplayScript     string `json:"autoplay_script"`
	ForbidExactBids    bool   `json:"forbid_exact_bids"`
	TieBreak           string `json:"tie_break"`
	LogLevel           string `json:"log_level"`
	Development        bool   `json:"development"`
}

func Default() Config {
	return Config{
		HTTPAddr:        ":8000",
		JWTSecret:       "access-secret",
		TokenTTLMinutes: 720,
		ForbidExactBids: true,
		TieBreak:        "shared",
		LogLevel:        "info",
	}
}

// Load reads path if it is set and exists, then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := json.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to unmarshal config: %w", err)
			}
		}
	}
	if err := applyEnv(&cfg, os.Environ()); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv decodes WIZARD_* variables over cfg. Values arrive as strings, so
// the decoder runs weakly typed.
func applyEnv(cfg *Config, environ []string) error {
	overrides := map[string]interface{}{}
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		overrides[strings.ToLower(strings.TrimPrefix(key, EnvPrefix))] = value
	}
	if len(overrides) == 0 {
		return nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(overrides); err != nil {
		return fmt.Errorf("failed to apply environment: %w", err)
	}
	return nil
}
