// Package intake loads batches of patient vitals from CSV files, Excel
// workbooks or a Postgres table. All sources share one header contract:
// the four vital columns are required, patient_id is optional and anything
// else is ignored.
package intake

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/domain/triage"
)

var (
	ErrMissingColumn     = errors.New("missing column")
	ErrUnsupportedFormat = errors.New("unsupported input format")
	ErrInvalidTable      = errors.New("invalid table name")
)

const ColumnPatientID = "patient_id"

// RequiredColumns must all be present in the header row.
var RequiredColumns = []string{
	triage.VarHeartRate,
	triage.VarSpO2,
	triage.VarTemperature,
	triage.VarRespiratoryRate,
}

type Source interface {
	Load(ctx context.Context) ([]triage.PatientVitals, error)
}

// Open picks a file source from the extension.
func Open(path string) (Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return CSVFile(path), nil
	case ".xlsx", ".xlsm":
		return XLSXFile(path), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Base(path))
	}
}

// parseTable converts a header row and records into vitals. Blank rows are
// skipped, missing ids become the 1-based row position, and blank, NaN or
// non-numeric cells are left absent so the scorer treats them as missing.
func parseTable(rows [][]string) ([]triage.PatientVitals, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, RequiredColumns[0])
	}

	header := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := header[h]; !dup {
			header[h] = i
		}
	}
	for _, c := range RequiredColumns {
		if _, ok := header[c]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, c)
		}
	}
	idCol, hasID := header[ColumnPatientID]

	out := make([]triage.PatientVitals, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		v := triage.PatientVitals{
			HeartRate:       number(cell(row, header[triage.VarHeartRate])),
			SpO2:            number(cell(row, header[triage.VarSpO2])),
			Temperature:     number(cell(row, header[triage.VarTemperature])),
			RespiratoryRate: number(cell(row, header[triage.VarRespiratoryRate])),
		}
		if hasID {
			v.PatientID = cell(row, idCol)
		}
		if v.PatientID == "" {
			v.PatientID = strconv.Itoa(len(out) + 1)
		}
		out = append(out, v)
	}
	return out, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func number(s string) *float64 {
	switch strings.ToLower(s) {
	case "", "nan", "na", "n/a", "null":
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return nil
	}
	return &f
}
