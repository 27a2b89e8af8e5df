// Package config loads and resolves Salesforce Marketing Cloud credentials.
//
// Load reads the process environment (and an optional .env file) once at
// startup into a Config value. Resolve merges explicit parameters over a
// Config and validates the result; it never touches the environment itself.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds Marketing Cloud credentials and tenant information for one
// client instance. Values are immutable after resolution.
type Config struct {
	ClientID        string
	ClientSecret    string
	TenantSubdomain string

	// AccountID is the MID of the business unit to authenticate against.
	// Optional; some endpoints do not require an account context.
	AccountID string

	// AccountName is a logical name resolved to an AccountID through the
	// AccountIDs registry when AccountID is not given directly.
	AccountName string

	// AccountIDs maps logical account names to MIDs.
	AccountIDs map[string]string

	// Explicit base URIs. When set they override the URLs normally derived
	// from TenantSubdomain (useful for sandboxes and tests).
	AuthBaseURI string
	RestBaseURI string
	SoapBaseURI string
}

// Params are the explicit constructor parameters for a client. Non-empty
// fields take precedence over the corresponding Config values.
type Params struct {
	ClientID        string
	ClientSecret    string
	TenantSubdomain string
	AccountID       string
	AccountName     string
}

// ConfigurationError indicates missing or unresolvable credentials. It is
// fatal at construction and never retried.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// Load reads configuration from the process environment, optionally seeded
// from a .env file. The SFMC_ACCOUNT_IDS variable carries the account
// registry as a JSON object of {name: mid}.
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	registry, err := parseAccountRegistry(os.Getenv("SFMC_ACCOUNT_IDS"))
	if err != nil {
		return nil, err
	}

	return &Config{
		ClientID:        os.Getenv("SFMC_CLIENT_ID"),
		ClientSecret:    os.Getenv("SFMC_CLIENT_SECRET"),
		TenantSubdomain: os.Getenv("SFMC_TENANT_SUBDOMAIN"),
		AccountID:       os.Getenv("SFMC_ACCOUNT_ID"),
		AccountName:     os.Getenv("SFMC_ACCOUNT_NAME"),
		AccountIDs:      registry,
		AuthBaseURI:     os.Getenv("SFMC_AUTH_BASE_URI"),
		RestBaseURI:     os.Getenv("SFMC_REST_BASE_URI"),
		SoapBaseURI:     os.Getenv("SFMC_SOAP_BASE_URI"),
	}, nil
}

// Resolve merges explicit parameters over the process-wide configuration and
// validates the result. The account context is resolved from AccountID when
// given, otherwise looked up by AccountName in the registry; leaving both
// empty is allowed.
func Resolve(params Params, base *Config) (*Config, error) {
	if base == nil {
		base = &Config{}
	}

	cfg := &Config{
		ClientID:        firstNonEmpty(params.ClientID, base.ClientID),
		ClientSecret:    firstNonEmpty(params.ClientSecret, base.ClientSecret),
		TenantSubdomain: firstNonEmpty(params.TenantSubdomain, base.TenantSubdomain),
		AccountID:       firstNonEmpty(params.AccountID, base.AccountID),
		AccountName:     firstNonEmpty(params.AccountName, base.AccountName),
		AccountIDs:      base.AccountIDs,
		AuthBaseURI:     base.AuthBaseURI,
		RestBaseURI:     base.RestBaseURI,
		SoapBaseURI:     base.SoapBaseURI,
	}

	if cfg.ClientID == "" {
		return nil, &ConfigurationError{Reason: "client id is missing"}
	}
	if cfg.ClientSecret == "" {
		return nil, &ConfigurationError{Reason: "client secret is missing"}
	}
	if cfg.TenantSubdomain == "" {
		return nil, &ConfigurationError{Reason: "tenant subdomain is missing"}
	}

	if cfg.AccountID == "" && cfg.AccountName != "" {
		id, ok := cfg.AccountIDs[cfg.AccountName]
		if !ok {
			return nil, &ConfigurationError{
				Reason: fmt.Sprintf("account name %q is not present in the account registry", cfg.AccountName),
			}
		}
		cfg.AccountID = id
	}

	return cfg, nil
}

func parseAccountRegistry(raw string) (map[string]string, error) {
	if raw == "" {
		return nil, nil
	}
	registry := make(map[string]string)
	if err := json.Unmarshal([]byte(raw), &registry); err != nil {
		return nil, &ConfigurationError{Reason: "SFMC_ACCOUNT_IDS is not a valid JSON object: " + err.Error()}
	}
	return registry, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
