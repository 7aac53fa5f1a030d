package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWritesJSONToFile(t *testing.T) {
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	path := filepath.Join(t.TempDir(), "stockledger.log")
	closeFn, err := Setup(LogConfig{Level: "debug", Format: "json", Output: path})
	require.NoError(t, err)

	l := WithDocument("warehouse", "INV-1234ABCD")
	l.Info().Str("payment_status", "paid").Msg("Payment status updated")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry))
	assert.Equal(t, "warehouse", entry["component"])
	assert.Equal(t, "INV-1234ABCD", entry["document_id"])
	assert.Equal(t, "paid", entry["payment_status"])
	assert.Equal(t, "info", entry["level"])
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	closeFn, err := Setup(LogConfig{Level: "loud", Output: "stderr"})
	assert.Error(t, err)
	assert.NoError(t, closeFn())
}

func TestDefaultConfigUsesStderr(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "stderr", cfg.Output)
	assert.Equal(t, "info", cfg.Level)
}
