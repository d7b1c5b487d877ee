package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("TIMEZONE", "UTC")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DB.Type)
	assert.Equal(t, "data/progress.db", cfg.DB.Path)
	assert.Equal(t, 30, cfg.Report.Days)
	assert.Equal(t, 21, cfg.Report.Hour)
	assert.True(t, cfg.Report.Enabled)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("TIMEZONE", "Europe/Berlin")
	t.Setenv("REPORT_DAYS", "7")
	t.Setenv("REPORT_HOUR", "6")
	t.Setenv("REPORT_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 7, cfg.Report.Days)
	assert.Equal(t, 6, cfg.Report.Hour)
	assert.False(t, cfg.Report.Enabled)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", loc.String())
}

func TestLoad_ImportFiles(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("IMPORT_FILE", "data/history.csv")
	t.Setenv("IMPORT_FLASHCARDS_FILE", "data/cards.xlsx")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/history.csv", cfg.Import.File)
	assert.Equal(t, "data/cards.xlsx", cfg.Import.FlashcardsFile)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown db type", env: map[string]string{"DB_TYPE": "mysql"}},
		{name: "postgres without url", env: map[string]string{"DB_TYPE": "postgres", "DATABASE_URL": ""}},
		{name: "report hour out of range", env: map[string]string{"REPORT_HOUR": "24"}},
		{name: "report days zero", env: map[string]string{"REPORT_DAYS": "0"}},
		{name: "bad timezone", env: map[string]string{"TIMEZONE": "Mars/Olympus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("APP_ENV", "production")
			t.Setenv("TIMEZONE", "UTC")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
