package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/extraction"
	"stockledger/internal/locale"
	"stockledger/internal/store"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"EXTRACTOR", "LOCAL_STORE", "DATA_DIR", "DATABASE_URL", "EXTRACTION_TIMEOUT", "LANGUAGE", "REDIS_DB"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, extraction.BackendGemini, cfg.Extractor)
	assert.Equal(t, 25*time.Second, cfg.ExtractionTimeout)
	assert.Equal(t, store.LocalFile, cfg.LocalStore)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, locale.Italian, cfg.Lang())
	assert.Equal(t, 0, cfg.RedisDB)

	sc := cfg.GetStoreConfig()
	assert.Empty(t, sc.DatabaseURL, "no remote store means local-only mode")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("EXTRACTOR", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("EXTRACTION_TIMEOUT", "40s")
	t.Setenv("LOCAL_STORE", "redis")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("LANGUAGE", "en")

	cfg, err := Load()
	require.NoError(t, err)

	ec := cfg.GetExtractionConfig()
	assert.Equal(t, extraction.BackendOpenAI, ec.Backend)
	assert.Equal(t, 40*time.Second, ec.Timeout)
	assert.NoError(t, cfg.ValidateExtraction())

	sc := cfg.GetStoreConfig()
	assert.Equal(t, "localhost:6379", sc.Redis.Addr)
	assert.Equal(t, 2, sc.Redis.DB)
	assert.Equal(t, locale.English, cfg.Lang())
}

func TestLoadRejectsInconsistentSettings(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown extractor", map[string]string{"EXTRACTOR": "tesseract"}},
		{"redis without address", map[string]string{"LOCAL_STORE": "redis", "REDIS_ADDR": ""}},
		{"unknown local store", map[string]string{"LOCAL_STORE": "sqlite"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestValidateExtractionNeedsKey(t *testing.T) {
	t.Setenv("EXTRACTOR", "gemini")
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.ErrorIs(t, cfg.ValidateExtraction(), extraction.ErrInvalidConfiguration)
}
