/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package lfucache

import (
	"bytes"
	"testing"

	"github.com/acronis/go-appkit/config"
	"github.com/stretchr/testify/require"
)

func TestConfig(t *testing.T) {
	tests := []struct {
		name           string
		cfgData        string
		expectedCfg    Config
		expectedErrMsg string
		expectedErr    error
	}{
		{
			name:        "defaults",
			cfgData:     `{}`,
			expectedCfg: Config{Capacity: DefaultCapacity},
		},
		{
			name:    "all values",
			cfgData: `{"lfucache": {"capacity": 3, "metrics": {"enabled": true, "namespace": "myservice"}}}`,
			expectedCfg: Config{
				Capacity: 3,
				Metrics:  MetricsConfig{Enabled: true, Namespace: "myservice"},
			},
		},
		{
			name:           "zero capacity",
			cfgData:        `{"lfucache": {"capacity": 0}}`,
			expectedErrMsg: "lfucache.capacity: capacity must be greater than 0, got 0",
			expectedErr:    ErrInvalidCapacity,
		},
		{
			name:           "negative capacity",
			cfgData:        `{"lfucache": {"capacity": -5}}`,
			expectedErrMsg: "lfucache.capacity: capacity must be greater than 0, got -5",
			expectedErr:    ErrInvalidCapacity,
		},
		{
			name:           "invalid capacity",
			cfgData:        `{"lfucache": {"capacity": "many"}}`,
			expectedErrMsg: `lfucache.capacity: unable to cast "many"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			err := config.NewLoader(config.NewViperAdapter()).LoadFromReader(
				bytes.NewBufferString(tt.cfgData), config.DataTypeJSON, cfg)
			if tt.expectedErrMsg != "" {
				require.ErrorContains(t, err, tt.expectedErrMsg)
				if tt.expectedErr != nil {
					require.ErrorIs(t, err, tt.expectedErr)
				}
				return
			}
			require.NoError(t, err)
			tt.expectedCfg.keyPrefix = cfg.keyPrefix
			require.Equal(t, tt.expectedCfg, *cfg)
		})
	}
}

func TestNewFromConfig(t *testing.T) {
	t.Run("metrics disabled", func(t *testing.T) {
		cache, metrics, err := NewFromConfig[string, int](&Config{Capacity: 5}, Options[string, int]{})
		require.NoError(t, err)
		require.Nil(t, metrics)
		require.Equal(t, 5, cache.Capacity())
	})

	t.Run("metrics enabled", func(t *testing.T) {
		cfg := &Config{Capacity: 1, Metrics: MetricsConfig{Enabled: true, Namespace: "test"}}
		cache, metrics, err := NewFromConfig[string, int](cfg, Options[string, int]{})
		require.NoError(t, err)
		require.NotNil(t, metrics)
		cache.Set("a", 1)
		cache.Set("b", 2)
		_, _ = cache.Get("a")
		assertMetrics(t, testMetrics{Amount: 1, Misses: 1, Evictions: 1}, metrics)
	})

	t.Run("invalid capacity", func(t *testing.T) {
		_, _, err := NewFromConfig[string, int](&Config{}, Options[string, int]{})
		require.ErrorIs(t, err, ErrInvalidCapacity)
	})
}
