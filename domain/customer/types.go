// Package customer holds the typed row schema of the churn dataset and the
// immutable containers built from it.
package customer

import (
	"slices"

	"churnboard/domain/core"
)

// Churn outcomes as they appear in the source file.
const (
	ChurnYes = "Yes"
	ChurnNo  = "No"
)

// Source column names the loader depends on.
const (
	ColumnCustomerID     = "customerID"
	ColumnGender         = "gender"
	ColumnSeniorCitizen  = "SeniorCitizen"
	ColumnPartner        = "Partner"
	ColumnDependents     = "Dependents"
	ColumnTenure         = "tenure"
	ColumnPhoneService   = "PhoneService"
	ColumnMultipleLines  = "MultipleLines"
	ColumnInternet       = "InternetService"
	ColumnOnlineSecurity = "OnlineSecurity"
	ColumnOnlineBackup   = "OnlineBackup"
	ColumnDeviceProtect  = "DeviceProtection"
	ColumnTechSupport    = "TechSupport"
	ColumnStreamingTV    = "StreamingTV"
	ColumnStreamingMovie = "StreamingMovies"
	ColumnContract       = "Contract"
	ColumnPaperless      = "PaperlessBilling"
	ColumnPaymentMethod  = "PaymentMethod"
	ColumnMonthlyCharges = "MonthlyCharges"
	ColumnTotalCharges   = "TotalCharges"
	ColumnChurn          = "Churn"
)

// RequiredColumns must all be present in the header row.
var RequiredColumns = []string{
	ColumnCustomerID,
	ColumnChurn,
	ColumnMonthlyCharges,
	ColumnTotalCharges,
	ColumnTenure,
}

// Record is one customer row.
type Record struct {
	CustomerID       string  `json:"customerID"`
	Gender           string  `json:"gender,omitempty"`
	SeniorCitizen    int     `json:"SeniorCitizen"`
	Partner          string  `json:"Partner,omitempty"`
	Dependents       string  `json:"Dependents,omitempty"`
	Tenure           int     `json:"tenure"`
	PhoneService     string  `json:"PhoneService,omitempty"`
	MultipleLines    string  `json:"MultipleLines,omitempty"`
	InternetService  string  `json:"InternetService,omitempty"`
	OnlineSecurity   string  `json:"OnlineSecurity,omitempty"`
	OnlineBackup     string  `json:"OnlineBackup,omitempty"`
	DeviceProtection string  `json:"DeviceProtection,omitempty"`
	TechSupport      string  `json:"TechSupport,omitempty"`
	StreamingTV      string  `json:"StreamingTV,omitempty"`
	StreamingMovies  string  `json:"StreamingMovies,omitempty"`
	Contract         string  `json:"Contract,omitempty"`
	PaperlessBilling string  `json:"PaperlessBilling,omitempty"`
	PaymentMethod    string  `json:"PaymentMethod,omitempty"`
	MonthlyCharges   float64 `json:"MonthlyCharges"`
	TotalCharges     float64 `json:"TotalCharges"`
	Churn            string  `json:"Churn"`
}

// Repair describes the TotalCharges coercion applied at load time.
type Repair struct {
	Median  float64 `json:"median"`
	Coerced int     `json:"coerced"`
}

// Dataset is the repaired, read-only table. It is never mutated after New returns.
type Dataset struct {
	source      string
	fingerprint core.Hash
	columns     []string
	records     []Record
	repair      Repair
}

// NewDataset takes ownership of records and columns.
func NewDataset(source string, fingerprint core.Hash, columns []string, records []Record, repair Repair) *Dataset {
	return &Dataset{
		source:      source,
		fingerprint: fingerprint,
		columns:     columns,
		records:     records,
		repair:      repair,
	}
}

// Source returns the path the dataset was read from.
func (d *Dataset) Source() string { return d.source }

// Fingerprint returns the SHA-256 of the source bytes.
func (d *Dataset) Fingerprint() core.Hash { return d.fingerprint }

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.records) }

// Repair returns the TotalCharges repair summary.
func (d *Dataset) Repair() Repair { return d.repair }

// Columns returns a copy of the source header.
func (d *Dataset) Columns() []string { return slices.Clone(d.columns) }

// Records returns a copy of all records in source order.
func (d *Dataset) Records() []Record { return slices.Clone(d.records) }

// View is a filtered subset of a Dataset, valid for one render.
type View struct {
	Records []Record
}

// NewView wraps records without copying.
func NewView(records []Record) View {
	return View{Records: records}
}

// Len returns the number of rows in the view.
func (v View) Len() int { return len(v.Records) }

// IsEmpty reports whether the filters eliminated every row.
func (v View) IsEmpty() bool { return len(v.Records) == 0 }

// MonthlyCharges returns the MonthlyCharges column of the view.
func (v View) MonthlyCharges() []float64 {
	out := make([]float64, len(v.Records))
	for i, r := range v.Records {
		out[i] = r.MonthlyCharges
	}
	return out
}

// TotalCharges returns the TotalCharges column of the view.
func (v View) TotalCharges() []float64 {
	out := make([]float64, len(v.Records))
	for i, r := range v.Records {
		out[i] = r.TotalCharges
	}
	return out
}

// Tenures returns tenure as float64 for aggregate functions.
func (v View) Tenures() []float64 {
	out := make([]float64, len(v.Records))
	for i, r := range v.Records {
		out[i] = float64(r.Tenure)
	}
	return out
}

// SeniorCitizens returns the SeniorCitizen flag as float64.
func (v View) SeniorCitizens() []float64 {
	out := make([]float64, len(v.Records))
	for i, r := range v.Records {
		out[i] = float64(r.SeniorCitizen)
	}
	return out
}
