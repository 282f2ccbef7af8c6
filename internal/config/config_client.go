package config

import (
	"fmt"
	"time"
)

// ClientAdapter holds network settings used by the sync client.
type ClientAdapter struct {
	// HTTPAddress is the base URL of the sync server.
	HTTPAddress string
	// RequestTimeout is the timeout for every outbound request.
	RequestTimeout time.Duration
	// Token is the bearer token attached to every request.
	Token string
}

// ClientConfig is the configuration of the sync client binary.
type ClientConfig struct {
	Adapter ClientAdapter
	// LogFile, when set, routes client logs to a rotated file.
	LogFile string
}

// GetClientConfig builds and validates the client configuration from
// environment variables, an optional JSON file and defaults. Command-line
// flags belong to the client binary itself and are not parsed here.
func GetClientConfig(jsonFilePath string) (*ClientConfig, error) {
	builder := newConfigBuilder()
	if jsonFilePath != "" {
		builder.configs = append(builder.configs, &StructuredConfig{JSONFilePath: jsonFilePath})
	}

	cfg, err := builder.withEnv().withJSON().withDefaults().build()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := &ClientConfig{
		Adapter: ClientAdapter{
			HTTPAddress:    cfg.Adapter.HTTPAddress,
			RequestTimeout: cfg.Adapter.RequestTimeout,
			Token:          cfg.Adapter.Token,
		},
		LogFile: cfg.App.LogFile,
	}

	return clientCfg, clientCfg.validate()
}
