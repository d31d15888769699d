// Package config loads CLI defaults from an optional YAML file with
// environment variable fallbacks. A .env file is honoured if present.
//
// Precedence, lowest to highest: built-in defaults, config file,
// environment, command line flags.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultRedirect is where the bank sends the user after authorising; any
// reachable page works, the CLI polls the requisition rather than listening
// for the redirect.
const DefaultRedirect = "https://bankaccountdata.gocardless.com/"

type Config struct {
	Secrets  SecretsConfig `yaml:"secrets"`
	Redirect string        `yaml:"redirect"`
	Country  string        `yaml:"country"`
	Out      string        `yaml:"out"`
	State    string        `yaml:"state"`
	StateKey string        `yaml:"state_key"`
}

// SecretsConfig holds the GoCardless bank-account-data portal credentials.
type SecretsConfig struct {
	ID  string `yaml:"id"`
	Key string `yaml:"key"`
}

// Load reads path if it exists and applies env overrides. A missing file is
// fine; a malformed one is not.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Redirect: DefaultRedirect,
		Out:      "csv:ledger.csv",
	}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	cfg.Secrets.ID = getEnv("NORDIGEN_SECRET_ID", cfg.Secrets.ID)
	cfg.Secrets.Key = getEnv("NORDIGEN_SECRET_KEY", cfg.Secrets.Key)
	cfg.Redirect = getEnv("BANKMATCH_REDIRECT", cfg.Redirect)
	cfg.Country = getEnv("BANKMATCH_COUNTRY", cfg.Country)
	cfg.Out = getEnv("BANKMATCH_OUT", cfg.Out)
	cfg.State = getEnv("BANKMATCH_STATE", cfg.State)
	cfg.StateKey = getEnv("BANKMATCH_STATE_KEY", cfg.StateKey)

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
