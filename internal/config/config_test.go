package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveConfigRoundTrips(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 8080
	cfg.Symbols = []SymbolSpec{{Name: "BTC-USD", TickSize: 1, SchemaVersion: CurrentSchemaVersion}}

	path := filepath.Join(t.TempDir(), "nested", "config.json")
	require.NoError(t, SaveConfig(cfg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var loaded Config
	require.NoError(t, json.Unmarshal(data, &loaded))
	assert.Equal(t, cfg.Server.Port, loaded.Server.Port)
	require.Len(t, loaded.Symbols, 1)
	assert.Equal(t, "BTC-USD", loaded.Symbols[0].Name)
}

func TestInitLoggerDefaultsToProduction(t *testing.T) {
	cfg := &Config{}
	cfg.Monitoring.LogLevel = "unrecognized"
	logger, err := InitLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestInitLoggerDebug(t *testing.T) {
	cfg := &Config{}
	cfg.Monitoring.LogLevel = "debug"
	logger, err := InitLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, logger)
}
