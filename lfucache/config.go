/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package lfucache

import (
	"fmt"

	"github.com/acronis/go-appkit/config"
)

const cfgDefaultKeyPrefix = "lfucache"

const (
	cfgKeyCapacity         = "capacity"
	cfgKeyMetricsEnabled   = "metrics.enabled"
	cfgKeyMetricsNamespace = "metrics.namespace"
)

// DefaultCapacity is the default maximum number of entries in the cache.
const DefaultCapacity = 1024

// Config represents a set of configuration parameters for the cache.
type Config struct {
	Capacity int           `mapstructure:"capacity" yaml:"capacity" json:"capacity"`
	Metrics  MetricsConfig `mapstructure:"metrics" yaml:"metrics" json:"metrics"`

	keyPrefix string
}

// MetricsConfig represents a set of configuration parameters for the cache metrics.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Namespace string `mapstructure:"namespace" yaml:"namespace" json:"namespace"`
}

var _ config.Config = (*Config)(nil)
var _ config.KeyPrefixProvider = (*Config)(nil)

// NewConfig creates a new instance of the Config with the default key prefix ("lfucache").
func NewConfig() *Config {
	return NewConfigWithKeyPrefix(cfgDefaultKeyPrefix)
}

// NewConfigWithKeyPrefix creates a new instance of the Config.
// Allows specifying key prefix which will be used for parsing configuration parameters.
func NewConfigWithKeyPrefix(keyPrefix string) *Config {
	return &Config{keyPrefix: keyPrefix}
}

// KeyPrefix returns a key prefix with which all configuration parameters should be presented.
func (c *Config) KeyPrefix() string {
	return c.keyPrefix
}

// SetProviderDefaults sets default configuration values for the cache in config.DataProvider.
func (c *Config) SetProviderDefaults(dp config.DataProvider) {
	dp.SetDefault(cfgKeyCapacity, DefaultCapacity)
	dp.SetDefault(cfgKeyMetricsEnabled, false)
	dp.SetDefault(cfgKeyMetricsNamespace, "")
}

// Set sets cache configuration values from config.DataProvider.
func (c *Config) Set(dp config.DataProvider) error {
	var err error
	if c.Capacity, err = dp.GetInt(cfgKeyCapacity); err != nil {
		return err
	}
	if c.Capacity <= 0 {
		return dp.WrapKeyErr(cfgKeyCapacity, fmt.Errorf("%w, got %d", ErrInvalidCapacity, c.Capacity))
	}
	if c.Metrics.Enabled, err = dp.GetBool(cfgKeyMetricsEnabled); err != nil {
		return err
	}
	if c.Metrics.Namespace, err = dp.GetString(cfgKeyMetricsNamespace); err != nil {
		return err
	}
	return nil
}

// NewFromConfig creates a new LFUCache using the provided configuration.
// If metrics are enabled, a new PrometheusMetrics collector is created and returned (it's not registered),
// otherwise the returned collector is nil.
func NewFromConfig[K comparable, V any](
	cfg *Config, opts Options[K, V],
) (*LFUCache[K, V], *PrometheusMetrics, error) {
	var promMetrics *PrometheusMetrics
	var collector MetricsCollector
	if cfg.Metrics.Enabled {
		promMetrics = NewPrometheusMetricsWithOpts(PrometheusMetricsOpts{Namespace: cfg.Metrics.Namespace})
		collector = promMetrics
	}
	cache, err := NewWithOpts[K, V](cfg.Capacity, collector, opts)
	if err != nil {
		return nil, nil, err
	}
	return cache, promMetrics, nil
}
