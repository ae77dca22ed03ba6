package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestEmptyBridgeConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg := EmptyBridgeConfig()
	assert.Equal(t, DefaultListen, cfg.GetListen())
	assert.Equal(t, DefaultPortPath, cfg.GetPortPath())
	assert.Equal(t, DefaultBaudRate, cfg.GetBaudRate())
	assert.Equal(t, DefaultReadTimeout, cfg.GetReadTimeout())
	assert.Equal(t, PolicyDegrade, cfg.GetUnavailablePolicy())
	assert.Equal(t, DefaultWebDir, cfg.GetWebDir())
	assert.False(t, cfg.GetDisableSerial())
}

func TestLoadBridgeConfig(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "bridge.json", `{
		"listen": ":9000",
		"port_path": "/dev/cu.usbmodem1",
		"baud_rate": 9600,
		"read_timeout": "250ms",
		"unavailable_policy": "fail",
		"web_dir": "",
		"disable_serial": true
	}`)

	cfg, err := LoadBridgeConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.GetListen())
	assert.Equal(t, "/dev/cu.usbmodem1", cfg.GetPortPath())
	assert.Equal(t, 9600, cfg.GetBaudRate())
	assert.Equal(t, 250*time.Millisecond, cfg.GetReadTimeout())
	assert.Equal(t, PolicyFail, cfg.GetUnavailablePolicy())
	assert.Equal(t, "", cfg.GetWebDir())
	assert.True(t, cfg.GetDisableSerial())
}

func TestLoadBridgeConfig_PartialKeepsDefaults(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "partial.json", `{"baud_rate": 57600}`)

	cfg, err := LoadBridgeConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 57600, cfg.GetBaudRate())
	assert.Equal(t, DefaultPortPath, cfg.GetPortPath())
	assert.Equal(t, PolicyDegrade, cfg.GetUnavailablePolicy())
}

func TestLoadBridgeConfig_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		body    string
		wantErr string
	}{
		{name: "wrong extension", file: "bridge.yaml", body: `{}`, wantErr: ".json extension"},
		{name: "bad json", file: "bad.json", body: `{`, wantErr: "failed to parse"},
		{name: "unknown field", file: "unknown.json", body: `{"colour": "red"}`, wantErr: "unknown field"},
		{name: "negative baud", file: "baud.json", body: `{"baud_rate": -1}`, wantErr: "baud_rate must be positive"},
		{name: "bad timeout", file: "timeout.json", body: `{"read_timeout": "soon"}`, wantErr: "invalid read_timeout"},
		{name: "zero timeout", file: "zero.json", body: `{"read_timeout": "0s"}`, wantErr: "read_timeout must be positive"},
		{name: "bad policy", file: "policy.json", body: `{"unavailable_policy": "ignore"}`, wantErr: "unknown unavailable policy"},
		{name: "empty listen", file: "listen.json", body: `{"listen": ""}`, wantErr: "listen must not be empty"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := writeConfig(t, tt.file, tt.body)
			_, err := LoadBridgeConfig(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadBridgeConfig_Missing(t *testing.T) {
	t.Parallel()

	_, err := LoadBridgeConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "failed to stat"))
}

func TestLoadBridgeConfig_Example(t *testing.T) {
	t.Parallel()

	cfg, err := LoadBridgeConfig(filepath.Join("..", "..", ExampleConfigPath))
	require.NoError(t, err)
	assert.Equal(t, PolicyDegrade, cfg.GetUnavailablePolicy())
}

func TestParseUnavailablePolicy(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]UnavailablePolicy{
		"":          PolicyDegrade,
		"degrade":   PolicyDegrade,
		" FAIL ":    PolicyFail,
		"Degrade\n": PolicyDegrade,
	} {
		got, err := ParseUnavailablePolicy(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, want, got, "input %q", in)
	}

	_, err := ParseUnavailablePolicy("retry")
	assert.Error(t, err)
}
