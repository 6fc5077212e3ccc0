package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"churnboard/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = "../../internal/dataset/testdata/telco_sample.csv"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--data", sampleCSV}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestSummaryCommand(t *testing.T) {
	out, err := run(t, "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "13 rows")
	assert.Contains(t, out, "30.77%")
	assert.Contains(t, out, "21.92 months")
	assert.Contains(t, out, "Repaired: 1 TotalCharges cells")

	out, err = run(t, "summary", "--churn", "Yes", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":4,"churn_rate":100,"avg_tenure":10}`, out)
}

func TestSummaryRejectsBadSelection(t *testing.T) {
	_, err := run(t, "summary", "--churn", "Maybe")
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = run(t, "summary", "--min", "90", "--max", "40")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestPreviewCommand(t *testing.T) {
	out, err := run(t, "preview", "--rows", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "customerID")
	assert.Contains(t, out, "7590-VHVEG")
	assert.Contains(t, out, "5575-GNVDE")
	assert.NotContains(t, out, "3668-QPYBK")
}

func TestCorrelationCommand(t *testing.T) {
	out, err := run(t, "correlation", "--churn", "Yes")
	require.NoError(t, err)
	assert.Contains(t, out, "MonthlyCharges")
	assert.Contains(t, out, "n/a")
	assert.Contains(t, out, "1.00")
}

func TestChartCommand(t *testing.T) {
	target := filepath.Join(t.TempDir(), "churn.png")
	out, err := run(t, "chart", "churn", "-o", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+target)

	img, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, []byte("\x89PNG")))

	_, err = run(t, "chart", "pie", "-o", filepath.Join(t.TempDir(), "pie.png"))
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestMissingDataFile(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--data", filepath.Join(t.TempDir(), "missing.csv"), "summary"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, errors.CodeDataSource, errors.GetCode(err))
}

func TestConfigCommand(t *testing.T) {
	t.Setenv("PREVIEW_ROWS", "")
	path := filepath.Join(t.TempDir(), "churnboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data:\n  file: elsewhere.csv\n  preview_rows: 3\n"), 0o644))

	out, err := run(t, "--config", path, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "preview_rows: 3")
	assert.Contains(t, out, "file: "+sampleCSV, "--data beats the config file")

	out, err = run(t, "--config", path, "preview")
	require.NoError(t, err)
	assert.Contains(t, out, "3668-QPYBK")
	assert.NotContains(t, out, "7795-CFOCW")
}
