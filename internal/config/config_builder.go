package config

import (
	"errors"
	"fmt"
	"time"

	"dario.cat/mergo"
)

const (
	defaultHTTPAddress         = "localhost:8080"
	defaultRequestTimeout      = 30 * time.Second
	defaultIdempotencyTTL      = 24 * time.Hour
	defaultMaxBatchSize        = 500
	defaultMaxMigrationRecords = 20000
	defaultTokenIssuer         = "trip-keeper"
)

type configBuilder struct {
	configs []*StructuredConfig
	err     error
}

func newConfigBuilder() *configBuilder {
	return &configBuilder{
		configs: make([]*StructuredConfig, 0, 4),
	}
}

func (b *configBuilder) build() (*StructuredConfig, error) {
	if b.err != nil {
		return nil, fmt.Errorf("error occured during building config: %w", b.err)
	}

	config := new(StructuredConfig)
	for _, cfg := range b.configs {
		if err := mergo.Merge(config, cfg); err != nil {
			return nil, fmt.Errorf("error merging configs: %w", err)
		}
	}

	return config, nil
}

func (b *configBuilder) withEnv() *configBuilder {
	envCfg := &StructuredConfig{}
	if err := parseEnv(envCfg); err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}

	b.configs = append(b.configs, envCfg)
	return b
}

func (b *configBuilder) withFlags(args []string) *configBuilder {
	flagsCfg, err := parseFlags(args)
	if err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}

	b.configs = append(b.configs, flagsCfg)
	return b
}

func (b *configBuilder) withJSON() *configBuilder {
	var jsonPath string
	for _, cfg := range b.configs {
		if cfg.JSONFilePath != "" {
			jsonPath = cfg.JSONFilePath
			break
		}
	}

	if jsonPath == "" {
		return b
	}

	jsonCfg, err := parseJSON(jsonPath)
	if err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}
	b.configs = append(b.configs, jsonCfg)

	return b
}

// withDefaults must be the last source: mergo only fills zero fields, so
// anything set earlier takes precedence.
func (b *configBuilder) withDefaults() *configBuilder {
	b.configs = append(b.configs, &StructuredConfig{
		App: App{
			TokenIssuer: defaultTokenIssuer,
		},
		Storage: Storage{
			DB: DB{Driver: DriverPostgres},
			Redis: Redis{
				IdempotencyTTL: defaultIdempotencyTTL,
			},
		},
		Server: Server{
			HTTPAddress:    defaultHTTPAddress,
			RequestTimeout: defaultRequestTimeout,
		},
		Sync: Sync{
			MaxBatchSize:        defaultMaxBatchSize,
			MaxMigrationRecords: defaultMaxMigrationRecords,
		},
		Adapter: Adapter{
			HTTPAddress:    "http://" + defaultHTTPAddress,
			RequestTimeout: defaultRequestTimeout,
		},
	})
	return b
}
