package excel

import (
	"os"
	"path/filepath"
	"testing"

	"churnboard/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadCSV(t *testing.T) {
	path := writeFile(t, "customers.csv", "\ufeffcustomerID, Churn ,TotalCharges\n0001, Yes ,29.85\n0002,No, \n")

	data, err := NewDataReader(path).ReadData()
	require.NoError(t, err)

	assert.Equal(t, []string{"customerID", "Churn", "TotalCharges"}, data.Headers)
	require.Len(t, data.Rows, 2)
	assert.Equal(t, "Yes", data.Rows[0]["Churn"])
	assert.Equal(t, "", data.Rows[1]["TotalCharges"], "cells are trimmed")
	assert.Len(t, data.Fingerprint.String(), 64)
	assert.True(t, data.HasColumn("Churn"))
	assert.False(t, data.HasColumn("churn"))
}

func TestReadCSVFingerprintStable(t *testing.T) {
	path := writeFile(t, "customers.csv", "customerID,Churn\n0001,Yes\n")

	first, err := NewDataReader(path).ReadData()
	require.NoError(t, err)
	second, err := NewDataReader(path).ReadData()
	require.NoError(t, err)

	assert.Equal(t, first.Fingerprint, second.Fingerprint)
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"customerID", "Churn", "MonthlyCharges"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"0001", "No", "70.35"}))
	path := filepath.Join(t.TempDir(), "customers.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	data, err := NewDataReader(path).ReadData()
	require.NoError(t, err)

	assert.Equal(t, []string{"customerID", "Churn", "MonthlyCharges"}, data.Headers)
	require.Len(t, data.Rows, 1)
	assert.Equal(t, "70.35", data.Rows[0]["MonthlyCharges"])
}

func TestReadDataSourceErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(t.TempDir(), "absent.csv")},
		{"header only", writeFile(t, "header.csv", "customerID,Churn\n")},
		{"ragged row", writeFile(t, "ragged.csv", "customerID,Churn\n0001,Yes,extra\n")},
		{"broken quote", writeFile(t, "quote.csv", "customerID,Churn\n\"0001,Yes\n")},
		{"not a workbook", writeFile(t, "fake.xlsx", "customerID,Churn\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDataReader(tt.path).ReadData()
			require.Error(t, err)
			assert.Equal(t, errors.CodeDataSource, errors.GetCode(err))
		})
	}
}
