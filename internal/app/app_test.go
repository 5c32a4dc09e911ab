package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parent-care-assistant/config"
	"parent-care-assistant/internal/extraction"
	"parent-care-assistant/pkg/datemath"
	"parent-care-assistant/pkg/log"
)

func baseConfig() *config.Config {
	return &config.Config{
		Extraction: config.ExtractionConfig{
			Timezone:          "Asia/Seoul",
			ModelTimeout:      time.Second,
			DefaultParentName: "부모님",
		},
		// Offline builds must ignore these.
		Postgres: config.PostgresConfig{URL: "postgres://nowhere:5432/db"},
		NATS:     config.NATSConfig{URL: "nats://nowhere:4222"},
	}
}

func TestBuild_OfflineRulesOnly(t *testing.T) {
	a, err := Build(context.Background(), baseConfig(), log.NewNop(), Options{Offline: true})
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.Pool)
	assert.Nil(t, a.Broker)
	assert.Nil(t, a.Notification)
	require.NotNil(t, a.Extraction)

	res := a.Extraction.ExtractSchedulesFromConversation(context.Background(), "다음 주에 병원 가", "어머니")
	assert.Equal(t, extraction.SourceRules, res.Source)
}

func TestBuild_FailedProvidersFallBackToRules(t *testing.T) {
	cfg := baseConfig()
	cfg.LLM = config.LLMConfig{
		RetryAttempts: 1,
		Providers: []config.ProviderConfig{
			{Name: "anthropic", Enabled: true, Priority: 1, Model: "claude"},
		},
	}

	a, err := Build(context.Background(), cfg, log.NewNop(), Options{Offline: true})
	require.NoError(t, err)
	defer a.Close()

	res := a.Extraction.ExtractSchedulesFromConversation(context.Background(), "오늘 날씨 좋네", "아버지")
	assert.Equal(t, extraction.SourceRules, res.Source)
}

func TestBuild_BadTimezoneFallsBackToUTC(t *testing.T) {
	cfg := baseConfig()
	cfg.Extraction.Timezone = "Mars/Olympus"

	a, err := Build(context.Background(), cfg, log.NewNop(), Options{Offline: true})
	require.NoError(t, err)
	assert.Equal(t, "UTC", a.Dates.Location().String())
}

func TestBuild_RulesPath(t *testing.T) {
	cfg := baseConfig()
	cfg.Extraction.RulesPath = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := Build(context.Background(), cfg, log.NewNop(), Options{Offline: true})
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules: [::"), 0o600))
	cfg.Extraction.RulesPath = path
	_, err = Build(context.Background(), cfg, log.NewNop(), Options{Offline: true})
	assert.Error(t, err)
}

func TestBuild_SharedRegistererIsReusable(t *testing.T) {
	cfg := baseConfig()
	reg := prometheus.NewRegistry()

	for i := 0; i < 2; i++ {
		a, err := Build(context.Background(), cfg, log.NewNop(), Options{Offline: true, Registerer: reg})
		require.NoError(t, err)
		a.Close()
	}
}

func TestBuild_DatesOverride(t *testing.T) {
	dates, err := datemath.NewParser("America/Los_Angeles")
	require.NoError(t, err)
	day, err := dates.ParseDate("2024-02-04")
	require.NoError(t, err)

	a, err := Build(context.Background(), baseConfig(), log.NewNop(), Options{
		Offline: true,
		Dates:   dates,
		Clock:   func() time.Time { return day },
	})
	require.NoError(t, err)
	defer a.Close()

	assert.Same(t, dates, a.Dates)
	res := a.Extraction.ExtractSchedulesFromConversation(context.Background(), "다음 주에 병원 가", "어머니")
	require.NotEmpty(t, res.Schedules)
	assert.Equal(t, "2024-02-11", res.Schedules[0].DueDate)
}
