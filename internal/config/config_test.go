package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CRAWLING_BOT_DB", "postgres://localhost/crawling_bot")
	t.Setenv("HTTP_TIMEOUT", "")
	t.Setenv("BROWSER_TIMEOUT", "")
	t.Setenv("CRAWL_FORCE", "")
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 45*time.Second, cfg.BrowserTimeout)
	assert.False(t, cfg.Force)
	assert.Empty(t, cfg.GeminiAPIKey)
}

func TestLoadRequiresDatabase(t *testing.T) {
	t.Setenv("CRAWLING_BOT_DB", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CrawlingBotDB")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CRAWLING_BOT_DB", "postgres://localhost/crawling_bot")
	t.Setenv("HTTP_TIMEOUT", "30s")
	t.Setenv("BROWSER_TIMEOUT", "2m")
	t.Setenv("CRAWL_FORCE", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 2*time.Minute, cfg.BrowserTimeout)
	assert.True(t, cfg.Force)
}

func TestLoadIgnoresBadDurations(t *testing.T) {
	t.Setenv("CRAWLING_BOT_DB", "postgres://localhost/crawling_bot")
	t.Setenv("HTTP_TIMEOUT", "soon")
	t.Setenv("BROWSER_TIMEOUT", "-5s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 45*time.Second, cfg.BrowserTimeout)
}
