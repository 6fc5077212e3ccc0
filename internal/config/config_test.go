package config

import (
	"testing"

	"churnboard/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "GIN_MODE", "DATA_FILE", "PREVIEW_ROWS", "HISTOGRAM_BINS", "PPROF_ENABLED", "PPROF_PORT"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.GinMode)
	assert.Equal(t, DefaultDataFile, cfg.Data.File)
	assert.Equal(t, 10, cfg.Data.PreviewRows)
	assert.Equal(t, 30, cfg.Data.HistogramBins)
	assert.False(t, cfg.Profiling.Enabled)
	assert.Equal(t, "6060", cfg.Profiling.Port)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATA_FILE", "/data/churn.xlsx")
	t.Setenv("PREVIEW_ROWS", "25")
	t.Setenv("HISTOGRAM_BINS", "not-a-number")
	t.Setenv("PPROF_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "/data/churn.xlsx", cfg.Data.File)
	assert.Equal(t, 25, cfg.Data.PreviewRows)
	assert.Equal(t, 30, cfg.Data.HistogramBins, "unparsable ints fall back to the default")
	assert.True(t, cfg.Profiling.Enabled)
}

func TestLoadRejectsNonPositiveSizes(t *testing.T) {
	t.Setenv("PREVIEW_ROWS", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}
