package excel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"churnboard/domain/core"
	"churnboard/internal/errors"

	"github.com/xuri/excelize/v2"
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "csv"
	if ext == ".xlsx" || ext == ".xlsm" {
		fileType = "xlsx"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// FilePath returns the source path.
func (r *DataReader) FilePath() string {
	return r.filePath
}

// ReadData reads data from Excel or CSV files into structured format.
// Every failure is a DATA_SOURCE_ERROR.
func (r *DataReader) ReadData() (*ExcelData, error) {
	log.Printf("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	readStart := time.Now()
	content, err := os.ReadFile(r.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.DataSourceError(r.filePath, fmt.Errorf("%s file not found: %w", strings.ToUpper(r.fileType), err))
		}
		return nil, errors.DataSourceError(r.filePath, fmt.Errorf("failed to read file: %w", err))
	}
	log.Printf("[DataReader] %d bytes read in %.2fms", len(content), float64(time.Since(readStart).Nanoseconds())/1e6)

	var rows [][]string
	switch r.fileType {
	case "xlsx":
		rows, err = readExcelRows(content)
	default:
		rows, err = readCSVRows(content)
	}
	if err != nil {
		return nil, errors.DataSourceError(r.filePath, err)
	}

	if len(rows) < 2 {
		return nil, errors.DataSourceError(r.filePath, fmt.Errorf("%s file must have at least a header row and one data row", strings.ToUpper(r.fileType)))
	}

	data := r.processRows(rows)
	data.Fingerprint = core.NewHash(content)
	return data, nil
}

// readExcelRows reads all rows of the first sheet
func readExcelRows(content []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("Excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

// readCSVRows parses CSV content; rows must match the header width
func readCSVRows(content []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV file: %w", err)
	}
	return rows, nil
}

// processRows converts raw string rows into ExcelData format
func (r *DataReader) processRows(rows [][]string) *ExcelData {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
	}

	dataRows := make([]RawRowData, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rowData := make(RawRowData, len(headers))
		for j, cell := range row {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}
		dataRows = append(dataRows, rowData)
	}

	log.Printf("[DataReader] %s file processed (%d columns, %d rows)",
		strings.ToUpper(r.fileType), len(headers), len(dataRows))

	return &ExcelData{
		Headers: headers,
		Rows:    dataRows,
	}
}
