package excel

import "churnboard/domain/core"

// RawRowData represents a row of raw cells keyed by trimmed header
type RawRowData map[string]string

// ExcelData represents the complete raw dataset read from a CSV or Excel source
type ExcelData struct {
	Headers     []string     // Column headers
	Rows        []RawRowData // Data rows
	Fingerprint core.Hash    // SHA-256 of the source bytes
}

// HasColumn reports whether the header row contains name exactly.
func (d *ExcelData) HasColumn(name string) bool {
	for _, h := range d.Headers {
		if h == name {
			return true
		}
	}
	return false
}
