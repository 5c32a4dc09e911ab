package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFile_Defaults(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, "environment:\n  name: test\n"))
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Environment.Name)
	assert.Equal(t, 8080, cfg.HTTPServer.Port)
	assert.Equal(t, 30*time.Second, cfg.Extraction.ModelTimeout)
	assert.Equal(t, "부모님", cfg.Extraction.DefaultParentName)
	assert.Equal(t, "Asia/Seoul", cfg.Extraction.Timezone)
	assert.Equal(t, 1, cfg.LLM.RetryAttempts)
	assert.Zero(t, cfg.Notification.SweepInterval)
	assert.Empty(t, cfg.LLM.Providers)
	assert.False(t, cfg.LLM.HasEnabledProvider())
}

func TestLoadFile_ProvidersAndEnvExpansion(t *testing.T) {
	t.Setenv("CARE_TEST_ANTHROPIC_KEY", "sk-test")

	cfg, err := LoadFile(writeConfig(t, `
extraction:
  model_timeout: 5s
llm:
  providers:
    - name: anthropic
      enabled: true
      priority: 1
      api_key: ${CARE_TEST_ANTHROPIC_KEY}
      model: claude-sonnet-4-20250514
    - name: gemini
      enabled: false
      priority: 1
      model: gemini-2.5-flash
`))
	require.NoError(t, err)

	require.Len(t, cfg.LLM.Providers, 2)
	assert.Equal(t, "sk-test", cfg.LLM.Providers[0].APIKey)
	assert.True(t, cfg.LLM.HasEnabledProvider())
	assert.Equal(t, 5*time.Second, cfg.Extraction.ModelTimeout)
}

func TestLoadFile_DuplicatePriority(t *testing.T) {
	_, err := LoadFile(writeConfig(t, `
llm:
  providers:
    - name: anthropic
      enabled: true
      priority: 1
      model: a
    - name: gemini
      enabled: true
      priority: 1
      model: b
`))
	assert.Error(t, err)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
