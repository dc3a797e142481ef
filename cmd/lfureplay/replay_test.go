/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/acronis/go-appkit/log/logtest"
	"github.com/stretchr/testify/require"

	"github.com/acronis/go-lfucache/lfucache"
)

const testScript = `
ops:
  - {op: set, key: a, value: "1"}
  - {op: set, key: b, value: "2"}
  - {op: get, key: a}
  - {op: set, key: c, value: "3"}
  - {op: get, key: b}
  - {op: dump}
  - {op: delete, key: c}
  - {op: delete, key: c}
`

func TestParseScript(t *testing.T) {
	tests := []struct {
		name           string
		data           string
		wantOps        int
		expectedErrMsg string
	}{
		{name: "valid", data: testScript, wantOps: 8},
		{name: "empty", data: "", wantOps: 0},
		{name: "unknown operation", data: "ops:\n  - {op: set, key: a}\n  - {op: put, key: b}\n",
			expectedErrMsg: `op #2: unknown operation "put"`},
		{name: "unknown field", data: "ops:\n  - {op: set, name: a}\n", expectedErrMsg: "decode script"},
		{name: "malformed", data: "ops: [", expectedErrMsg: "decode script"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := parseScript(strings.NewReader(tt.data))
			if tt.expectedErrMsg != "" {
				require.ErrorContains(t, err, tt.expectedErrMsg)
				return
			}
			require.NoError(t, err)
			require.Len(t, s.Ops, tt.wantOps)
		})
	}
}

func TestReplayer_Run(t *testing.T) {
	s, err := parseScript(strings.NewReader(testScript))
	require.NoError(t, err)

	logRecorder := logtest.NewRecorder()
	cache, err := lfucache.NewWithOpts[string, string](2, nil, lfucache.Options[string, string]{
		OnEvict: lfucache.NewLoggingEvictCallback[string, string](logRecorder),
	})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, newReplayer(cache, &out, logRecorder).run(s))
	require.Equal(t, `a=1
b (miss)
--- dump (2/2)
c=3 uses=1
a=1 uses=2
--- final (1/2)
a=1 uses=2
`, out.String())

	require.Equal(t, 1, countLogEntries(logRecorder, "cache entry evicted"))
	require.Equal(t, 1, countLogEntries(logRecorder, "nothing to delete"))
	require.Equal(t, len(s.Ops), countLogEntries(logRecorder, "applying operation"))
	_, found := logRecorder.FindEntry("replay finished")
	require.True(t, found)
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "script.yaml")
	require.NoError(t, os.WriteFile(scriptPath, []byte(testScript), 0o600))

	t.Run("config file and metrics", func(t *testing.T) {
		cfgPath := filepath.Join(dir, "config.yaml")
		cfgData := `
lfucache:
  capacity: 2
log:
  level: debug
  output: stderr
`
		require.NoError(t, os.WriteFile(cfgPath, []byte(cfgData), 0o600))

		var stdout, stderr bytes.Buffer
		err := run([]string{"--config", cfgPath, "--script", scriptPath, "--metrics"}, &stdout, &stderr)
		require.NoError(t, err)

		require.Contains(t, stdout.String(), "--- final (1/2)\na=1 uses=2\n")
		require.Contains(t, stdout.String(), "lfu_cache_entries_amount 1\n")
		require.Contains(t, stdout.String(), "lfu_cache_hits_total 1\n")
		require.Contains(t, stdout.String(), "lfu_cache_misses_total 1\n")
		require.Contains(t, stdout.String(), "lfu_cache_evictions_total 1\n")
		require.Contains(t, stderr.String(), "cache entry evicted")
	})

	t.Run("env vars", func(t *testing.T) {
		t.Setenv("LFUREPLAY_LFUCACHE_CAPACITY", "1")
		t.Setenv("LFUREPLAY_LOG_OUTPUT", "stderr")

		var stdout, stderr bytes.Buffer
		require.NoError(t, run([]string{"--script", scriptPath}, &stdout, &stderr))
		require.Contains(t, stdout.String(), "--- dump (1/1)\nc=3 uses=1\n")
		require.NotContains(t, stdout.String(), "lfu_cache_")
		require.Contains(t, stderr.String(), "replay finished")
	})

	t.Run("invalid config", func(t *testing.T) {
		t.Setenv("LFUREPLAY_LFUCACHE_CAPACITY", "0")
		err := run([]string{"--script", scriptPath}, &bytes.Buffer{}, &bytes.Buffer{})
		require.EqualError(t, err, "load config: lfucache.capacity: capacity must be greater than 0, got 0")
	})

	t.Run("missing script", func(t *testing.T) {
		err := run(nil, &bytes.Buffer{}, &bytes.Buffer{})
		require.EqualError(t, err, "--script is required")

		err = run([]string{"--script", filepath.Join(dir, "missing.yaml")}, &bytes.Buffer{}, &bytes.Buffer{})
		require.ErrorContains(t, err, "open script")
	})
}

func countLogEntries(logRecorder *logtest.Recorder, msg string) int {
	n := 0
	for _, entry := range logRecorder.Entries() {
		if entry.Text == msg {
			n++
		}
	}
	return n
}
